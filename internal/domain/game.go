package domain

// GameType identifies one of the mini-games offered by the arcade.
type GameType string

const (
	GameWheel GameType = "wheel"
	GameDice  GameType = "dice"
	GameCard  GameType = "card"
)

// AllGames lists every playable game in display order
var AllGames = []GameType{GameWheel, GameDice, GameCard}

// Valid reports whether g is a known game type
func (g GameType) Valid() bool {
	switch g {
	case GameWheel, GameDice, GameCard:
		return true
	default:
		return false
	}
}

func (g GameType) String() string {
	return string(g)
}

// GameStatus is the cached status view of a single game (ticket balance and availability)
type GameStatus struct {
	Game           GameType `json:"game"`
	Enabled        bool     `json:"enabled"`
	RemainingPlays int      `json:"remaining_plays"`
	PlaysToday     int      `json:"plays_today"`
	DailyLimit     int      `json:"daily_limit"`
	TokenCost      int      `json:"token_cost"`
}

// LedgerStatus is the shared currency (vault) balance view
type LedgerStatus struct {
	Balance     int64 `json:"balance"`
	LastAccrual int64 `json:"last_accrual"`
}

// LevelingStatus is the season leveling/progress view
type LevelingStatus struct {
	Season      string `json:"season"`
	Level       int    `json:"level"`
	XP          int64  `json:"xp"`
	NextLevelXP int64  `json:"next_level_xp"`
}

// TeamStatus is the team-competition membership and score view
type TeamStatus struct {
	TeamID   string `json:"team_id"`
	TeamName string `json:"team_name"`
	Score    int64  `json:"score"`
	Rank     int    `json:"rank"`
	Members  int    `json:"members"`
}
