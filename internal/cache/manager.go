// Package cache owns the team-scoped persistent copy of a team's test
// cases: a TTL-bounded list entry, a per-entity lookaside, the per-team
// filter state, and the cross-view change broadcast.
//
// Storage failures never propagate past this package. A failed read is
// a cache miss; a failed write degrades (slim projection, then the
// largest fitting prefix, then nothing) and only costs the next load a
// refetch. The in-memory working set stays authoritative either way.
package cache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/kvstore"
)

// Entry is the persisted envelope for a team's cached list.
type Entry struct {
	Timestamp int64             `json:"timestamp"`
	Entities  []testcase.Entity `json:"entities"`
}

// entityEntry is the persisted envelope for one lookaside record.
type entityEntry struct {
	Timestamp int64           `json:"timestamp"`
	Entity    testcase.Entity `json:"entity"`
}

// Options configures a Manager.
type Options struct {
	// TTL is the maximum entry age before Get treats it as stale.
	TTL time.Duration
	// Strict disables the remembered-team fallback during team
	// resolution.
	Strict bool
	Logger *slog.Logger
	// Clock overrides the time source; nil means time.Now.
	Clock func() time.Time
}

// Manager is the team-scoped cache over a size-limited persistent
// store. Team id resolution on every operation: the explicit argument,
// then the active team, then (non-strict only) the remembered team key.
// When none resolve the operation is a no-op; the manager never guesses
// another team's data.
type Manager struct {
	store       kvstore.Store
	broadcaster *Broadcaster
	ttl         time.Duration
	strict      bool
	logger      *slog.Logger
	now         func() time.Time

	mu         sync.Mutex
	activeTeam string
	generation uint64
}

// NewManager creates a cache manager over the given store.
func NewManager(store kvstore.Store, broadcaster *Broadcaster, opts Options) *Manager {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := opts.Clock
	if now == nil {
		now = time.Now
	}
	ttl := opts.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &Manager{
		store:       store,
		broadcaster: broadcaster,
		ttl:         ttl,
		strict:      opts.Strict,
		logger:      logger,
		now:         now,
	}
}

// SetActiveTeam switches the manager to a team, remembers it in the
// store, and bumps the generation so writes staged for the previous
// team are discarded.
func (m *Manager) SetActiveTeam(teamID string) {
	m.mu.Lock()
	m.activeTeam = teamID
	m.generation++
	m.mu.Unlock()

	if teamID != "" {
		if err := m.store.Set(rememberedTeamKey, teamID); err != nil {
			m.logger.Debug("remember team failed", "error", err)
		}
	}
}

// Generation returns the current team generation. Capture it before a
// fetch and pass it to SetIfGeneration to drop writes that raced a team
// switch.
func (m *Manager) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// resolveTeam applies the resolution order. Empty result means every
// cache operation fails closed as a no-op.
func (m *Manager) resolveTeam(teamID string) string {
	if teamID != "" {
		return teamID
	}
	m.mu.Lock()
	active := m.activeTeam
	m.mu.Unlock()
	if active != "" {
		return active
	}
	if m.strict {
		return ""
	}
	remembered, err := m.store.Get(rememberedTeamKey)
	if err != nil {
		return ""
	}
	return remembered
}

// Get returns the cached list for the team, or nil on any miss: no
// resolvable team, no entry, unreadable entry, or an entry older than
// the TTL. A nil result tells the caller to fetch from the source of
// truth.
func (m *Manager) Get(teamID string) []testcase.Entity {
	team := m.resolveTeam(teamID)
	if team == "" {
		return nil
	}

	raw, err := m.store.Get(listKey(team))
	if err != nil {
		if !errors.Is(err, kvstore.ErrNotFound) {
			m.logger.Debug("cache read failed", "team", team, "error", err)
		}
		return nil
	}

	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		m.logger.Warn("cache entry corrupt, treating as miss", "team", team)
		return nil
	}

	age := m.now().UnixMilli() - entry.Timestamp
	if age >= m.ttl.Milliseconds() {
		return nil
	}
	return entry.Entities
}

// Set persists the team's list. On quota failure it retries with a slim
// per-entity projection, then binary-searches the largest prefix that
// fits, and finally gives up silently; the caller's in-memory list
// remains usable regardless.
func (m *Manager) Set(teamID string, entities []testcase.Entity) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}
	m.persistList(team, entities)
}

// SetIfGeneration behaves like Set but discards the write when the
// generation has moved on since the caller captured it, which means the
// fetch raced a team switch.
func (m *Manager) SetIfGeneration(teamID string, entities []testcase.Entity, generation uint64) {
	m.mu.Lock()
	current := m.generation
	m.mu.Unlock()
	if current != generation {
		m.logger.Debug("discarding stale cache write", "team", teamID,
			"captured", generation, "current", current)
		return
	}
	m.Set(teamID, entities)
}

func (m *Manager) persistList(team string, entities []testcase.Entity) {
	entry := Entry{Timestamp: m.now().UnixMilli(), Entities: entities}
	if m.trySet(listKey(team), entry) {
		return
	}

	// Full payload over quota: retry with only the fields the list
	// rendering needs.
	slim := make([]testcase.Entity, len(entities))
	for i, e := range entities {
		slim[i] = e.Slim()
	}
	entry.Entities = slim
	if m.trySet(listKey(team), entry) {
		m.logger.Warn("cache stored slim projection", "team", team, "count", len(slim))
		return
	}

	// Still over quota: find the largest prefix that fits.
	lo, hi := 0, len(slim)-1
	best := 0
	for lo <= hi {
		mid := (lo + hi) / 2
		entry.Entities = slim[:mid+1]
		if m.trySet(listKey(team), entry) {
			best = mid + 1
			lo = mid + 1
		} else {
			hi = mid - 1
		}
	}

	if best == 0 {
		// Nothing fits; drop any partial leftover so a reload doesn't
		// see a truncated list from an earlier probe.
		_ = m.store.Remove(listKey(team))
		m.logger.Warn("cache skipped, no prefix fits quota", "team", team)
		return
	}

	// The search may have left a smaller prefix persisted than the best
	// one found.
	entry.Entities = slim[:best]
	if !m.trySet(listKey(team), entry) {
		_ = m.store.Remove(listKey(team))
		return
	}
	m.logger.Warn("cache stored prefix", "team", team, "stored", best, "total", len(slim))
}

// trySet reports whether the write landed. Quota failures are expected;
// anything else is logged.
func (m *Manager) trySet(key string, entry Entry) bool {
	data, err := json.Marshal(entry)
	if err != nil {
		m.logger.Warn("cache marshal failed", "key", key, "error", err)
		return false
	}
	err = m.store.Set(key, string(data))
	if err == nil {
		return true
	}
	if !errors.Is(err, kvstore.ErrQuotaExceeded) {
		m.logger.Debug("cache write failed", "key", key, "error", err)
	}
	return false
}

// PatchOne replaces a single entity in the cached list, locating it by
// number first and record id second, preserving the cached record id.
// Absent entry or entity is a logged no-op.
func (m *Manager) PatchOne(teamID string, entity testcase.Entity) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}

	raw, err := m.store.Get(listKey(team))
	if err != nil {
		m.logger.Debug("patch skipped, no cache entry", "team", team,
			"test_case_number", entity.Number)
		return
	}
	var entry Entry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		m.logger.Warn("patch skipped, cache entry corrupt", "team", team)
		return
	}

	idx := -1
	for i, e := range entry.Entities {
		if e.Number == entity.Number {
			idx = i
			break
		}
	}
	if idx < 0 {
		for i, e := range entry.Entities {
			if e.RecordID == entity.RecordID {
				idx = i
				break
			}
		}
	}
	if idx < 0 {
		m.logger.Debug("patch skipped, entity not cached", "team", team,
			"test_case_number", entity.Number)
		return
	}

	entity.RecordID = entry.Entities[idx].RecordID
	entry.Entities[idx] = entity
	entry.Timestamp = m.now().UnixMilli()
	m.trySet(listKey(team), entry)

	m.SetOne(team, entity)
}

// RemoveOne deletes the record from the cached list if present, evicts
// its lookaside entry, and broadcasts a deletion so other views evict
// their own copy. fallback supplies the business key when the record is
// no longer in the list.
func (m *Manager) RemoveOne(teamID, recordID string, fallback *testcase.Entity) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}

	var removed *testcase.Entity

	if raw, err := m.store.Get(listKey(team)); err == nil {
		var entry Entry
		if err := json.Unmarshal([]byte(raw), &entry); err == nil {
			kept := entry.Entities[:0]
			for _, e := range entry.Entities {
				if e.RecordID == recordID {
					found := e
					removed = &found
					continue
				}
				kept = append(kept, e)
			}
			if removed != nil {
				entry.Entities = kept
				entry.Timestamp = m.now().UnixMilli()
				m.trySet(listKey(team), entry)
			}
		}
	}

	if removed == nil {
		removed = fallback
	}
	if removed == nil {
		m.logger.Debug("remove without entity details", "team", team, "record_id", recordID)
		return
	}

	if err := m.store.Remove(entityKey(team, removed.Number)); err != nil {
		m.logger.Debug("lookaside evict failed", "team", team, "error", err)
	}

	if m.broadcaster != nil {
		m.broadcaster.Publish(Envelope{
			TeamID:   team,
			Number:   removed.Number,
			Title:    removed.Title,
			Priority: removed.Priority,
			Deleted:  true,
		})
	}
}

// Invalidate removes the team's list entry and every lookaside entry
// scoped to it.
func (m *Manager) Invalidate(teamID string) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}

	if err := m.store.Remove(listKey(team)); err != nil {
		m.logger.Debug("invalidate list failed", "team", team, "error", err)
	}
	keys, err := m.store.Keys(entityPrefix(team))
	if err != nil {
		m.logger.Debug("invalidate lookaside scan failed", "team", team, "error", err)
		return
	}
	for _, key := range keys {
		_ = m.store.Remove(key)
	}
}

// GetOne returns the lookaside copy of a single record, subject to the
// same TTL as the list.
func (m *Manager) GetOne(teamID, number string) *testcase.Entity {
	team := m.resolveTeam(teamID)
	if team == "" {
		return nil
	}
	raw, err := m.store.Get(entityKey(team, number))
	if err != nil {
		return nil
	}
	var entry entityEntry
	if err := json.Unmarshal([]byte(raw), &entry); err != nil {
		return nil
	}
	if m.now().UnixMilli()-entry.Timestamp >= m.ttl.Milliseconds() {
		return nil
	}
	return &entry.Entity
}

// SetOne stores the lookaside copy of a single record. Quota failures
// are swallowed; the lookaside is purely an accelerator.
func (m *Manager) SetOne(teamID string, entity testcase.Entity) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}
	data, err := json.Marshal(entityEntry{Timestamp: m.now().UnixMilli(), Entity: entity})
	if err != nil {
		return
	}
	if err := m.store.Set(entityKey(team, entity.Number), string(data)); err != nil {
		m.logger.Debug("lookaside write failed", "team", team, "error", err)
	}
}

// Broadcast publishes an update envelope for the entity, with optional
// field overrides applied on top of the entity's own values.
func (m *Manager) Broadcast(teamID string, entity testcase.Entity, overrides func(*Envelope)) {
	team := m.resolveTeam(teamID)
	if team == "" || m.broadcaster == nil {
		return
	}
	env := Envelope{
		TeamID:         team,
		Number:         entity.Number,
		Title:          entity.Title,
		Priority:       entity.Priority,
		Precondition:   entity.Precondition,
		Steps:          entity.Steps,
		ExpectedResult: entity.ExpectedResult,
	}
	if overrides != nil {
		overrides(&env)
	}
	m.broadcaster.Publish(env)
}

// SaveFilters persists the team's filter state so it survives reloads.
func (m *Manager) SaveFilters(teamID string, state testcase.FilterState) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}
	data, err := json.Marshal(state)
	if err != nil {
		return
	}
	if err := m.store.Set(filtersKey(team), string(data)); err != nil {
		m.logger.Debug("filter state write failed", "team", team, "error", err)
	}
}

// LoadFilters restores the team's persisted filter state; missing or
// unreadable state yields the identity filter.
func (m *Manager) LoadFilters(teamID string) testcase.FilterState {
	team := m.resolveTeam(teamID)
	if team == "" {
		return testcase.FilterState{}
	}
	raw, err := m.store.Get(filtersKey(team))
	if err != nil {
		return testcase.FilterState{}
	}
	var state testcase.FilterState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		return testcase.FilterState{}
	}
	return state
}

// ClearFilters removes the team's persisted filter state.
func (m *Manager) ClearFilters(teamID string) {
	team := m.resolveTeam(teamID)
	if team == "" {
		return
	}
	_ = m.store.Remove(filtersKey(team))
}
