package cache

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/rpggio/casedeck/internal/domain/testcase"
	"github.com/rpggio/casedeck/internal/kvstore"
)

// Envelope is the change notification written to the shared broadcast
// key. Other views react to it instead of polling the list cache.
type Envelope struct {
	TeamID         string            `json:"teamId"`
	Number         string            `json:"test_case_number"`
	Title          string            `json:"title"`
	Priority       testcase.Priority `json:"priority"`
	Precondition   string            `json:"precondition,omitempty"`
	Steps          string            `json:"steps,omitempty"`
	ExpectedResult string            `json:"expected_result,omitempty"`
	Deleted        bool              `json:"deleted,omitempty"`
	Timestamp      int64             `json:"timestamp"`
}

// Broadcaster publishes change envelopes to a single shared store key
// and fans them out to in-process subscribers. Delivery is at most once,
// best effort: a view not subscribed at publish time relies on the TTL
// of the persisted cache instead.
type Broadcaster struct {
	store  kvstore.Store
	logger *slog.Logger

	mu   sync.Mutex
	subs []func(Envelope)
}

// NewBroadcaster creates a broadcaster over the shared store.
func NewBroadcaster(store kvstore.Store, logger *slog.Logger) *Broadcaster {
	if logger == nil {
		logger = slog.Default()
	}
	return &Broadcaster{store: store, logger: logger}
}

// Subscribe registers a handler for future envelopes. Handlers run on
// the publishing goroutine and must not block.
func (b *Broadcaster) Subscribe(handler func(Envelope)) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = append(b.subs, handler)
}

// Publish writes the envelope to the shared key and notifies
// subscribers. Storage failures are logged and swallowed; the envelope
// is still delivered in process.
func (b *Broadcaster) Publish(env Envelope) {
	if env.Timestamp == 0 {
		env.Timestamp = time.Now().UnixMilli()
	}

	if data, err := json.Marshal(env); err == nil {
		if err := b.store.Set(broadcastKey, string(data)); err != nil {
			b.logger.Debug("broadcast write failed", "error", err)
		}
	}

	b.mu.Lock()
	subs := make([]func(Envelope), len(b.subs))
	copy(subs, b.subs)
	b.mu.Unlock()

	for _, handler := range subs {
		handler(env)
	}
}

// Last returns the most recently persisted envelope, if any. Views
// opening late can use it to decide whether their cache is suspect.
func (b *Broadcaster) Last() (Envelope, bool) {
	raw, err := b.store.Get(broadcastKey)
	if err != nil {
		return Envelope{}, false
	}
	var env Envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return Envelope{}, false
	}
	return env, true
}
