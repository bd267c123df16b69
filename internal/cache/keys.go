package cache

// Key layout in the persistent store. The broadcast key is shared by
// all teams; its payload self-identifies the team.
const (
	listKeyPrefix     = "cases:"
	entityKeyPrefix   = "tc:"
	filtersKeyPrefix  = "filters:"
	rememberedTeamKey = "team:last"
	broadcastKey      = "broadcast"
)

func listKey(teamID string) string {
	return listKeyPrefix + teamID
}

func entityKey(teamID, number string) string {
	return entityKeyPrefix + teamID + ":" + number
}

func entityPrefix(teamID string) string {
	return entityKeyPrefix + teamID + ":"
}

func filtersKey(teamID string) string {
	return filtersKeyPrefix + teamID
}
