package domain

// ViewKey identifies a cached view that can be invalidated
type ViewKey string

const (
	ViewLedger   ViewKey = "ledger.status"
	ViewLeveling ViewKey = "leveling.status"
	ViewTeam     ViewKey = "team.status"
)

// SharedViews are the views every game writes to
func SharedViews() []ViewKey {
	return []ViewKey{ViewLedger, ViewLeveling, ViewTeam}
}

// StatusView returns the key of a game's own status view
func StatusView(game GameType) ViewKey {
	return ViewKey(string(game) + ".status")
}

// DependentViewSet is the fixed set of views every successful play of game makes stale.
// Any game may credit the ledger and award leveling experience, so the set is the same
// superset for every game type.
func DependentViewSet(game GameType) []ViewKey {
	return []ViewKey{
		StatusView(game),
		ViewLedger,
		ViewLeveling,
		ViewTeam,
	}
}
