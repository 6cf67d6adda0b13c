// Package devserver is an in-memory game server speaking the arcade API, used for local
// play and end-to-end tests of the client.
package devserver

import (
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/osse101/TokenArcade_Go/internal/domain"
)

// Settings are the per-user rules every account starts with
type Settings struct {
	DailyLimit    int `validate:"gt=0"`
	InitialTokens int `validate:"gte=0"`
	TrialTokens   int `validate:"gt=0"`
	TokenCost     int `validate:"gt=0"`
	Season        string
}

// Feature is a game's availability. An empty Days list runs the game every day.
type Feature struct {
	Enabled bool
	Days    []time.Weekday
}

func (f Feature) validSchedule() bool {
	for _, d := range f.Days {
		if d < time.Sunday || d > time.Saturday {
			return false
		}
	}
	return true
}

func (f Feature) runsOn(day time.Weekday) bool {
	if len(f.Days) == 0 {
		return true
	}
	for _, d := range f.Days {
		if d == day {
			return true
		}
	}
	return false
}

// PlayBody is the JSON answer to a successful play. Exactly one game result is set.
type PlayBody struct {
	RewardType     *string `json:"reward_type,omitempty"`
	RewardValue    *int64  `json:"reward_value,omitempty"`
	RemainingPlays int     `json:"remaining_plays"`
	LedgerAccrual  int64   `json:"ledger_accrual,omitempty"`
	Message        string  `json:"message,omitempty"`

	*domain.WheelResult
	*domain.DiceResult
	*domain.CardResult
}

type account struct {
	tokens     int
	day        string
	playsToday map[domain.GameType]int
	trialDay   string
	ledger     domain.LedgerStatus
	xp         int64
	team       *team
}

type team struct {
	id      string
	name    string
	score   int64
	members []string
}

// Store keeps every account, team and feature schedule in memory
type Store struct {
	mu       sync.Mutex
	settings Settings
	features map[domain.GameType]Feature
	accounts map[string]*account
	teams    []*team
	rng      Rand
	now      func() time.Time
}

// NewStore creates a store with every game enabled on every day
func NewStore(settings Settings, rng Rand, now func() time.Time) *Store {
	if settings.Season == "" {
		settings.Season = DefaultSeason
	}
	if now == nil {
		now = time.Now
	}
	s := &Store{
		settings: settings,
		features: make(map[domain.GameType]Feature),
		accounts: make(map[string]*account),
		rng:      rng,
		now:      now,
	}
	for _, g := range domain.AllGames {
		s.features[g] = Feature{Enabled: true}
	}
	for _, t := range defaultTeams {
		s.teams = append(s.teams, &team{id: t.ID, name: t.Name})
	}
	return s
}

// SetFeature replaces a game's availability
func (s *Store) SetFeature(game domain.GameType, f Feature) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.features[game] = f
}

// SetTokens overwrites a user's token balance
func (s *Store) SetTokens(userID string, tokens int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.account(userID).tokens = tokens
}

// Play applies one play for userID, spending TokenCost tokens. The returned payload
// describes what changed so pushes can be sent.
func (s *Store) Play(userID string, game domain.GameType) (PlayBody, domain.PlaySettledPayload, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(userID)
	if err := s.checkPlayable(a, game); err != nil {
		return PlayBody{}, domain.PlaySettledPayload{}, err
	}

	d, err := drawOutcome(s.rng, game)
	if err != nil {
		return PlayBody{}, domain.PlaySettledPayload{}, err
	}

	a.tokens -= s.settings.TokenCost
	a.playsToday[game]++
	if d.reward.Type == "BONUS_TOKEN" {
		a.tokens += int(d.reward.Value)
	}
	if d.accrual > 0 {
		a.ledger.Balance += d.accrual
		a.ledger.LastAccrual = d.accrual
	}
	a.xp += XPPerPlay
	a.team.score += XPPerPlay

	body := d.body
	rewardType, rewardValue := d.reward.Type, d.reward.Value
	body.RewardType = &rewardType
	body.RewardValue = &rewardValue
	body.LedgerAccrual = d.accrual
	body.RemainingPlays = s.remaining(a, game)

	return body, domain.PlaySettledPayload{
		UserID:        userID,
		TeamID:        a.team.id,
		Game:          game,
		LedgerAccrual: d.accrual,
		XPGained:      XPPerPlay,
		TeamScore:     a.team.score,
	}, nil
}

// checkPlayable applies the rules in the order the error vocabulary is reported
func (s *Store) checkPlayable(a *account, game domain.GameType) error {
	f := s.features[game]
	switch {
	case !f.Enabled:
		return upstream(domain.CodeFeatureDisabled, ErrMsgFeatureDisabled, http.StatusForbidden)
	case !f.validSchedule():
		return upstream(domain.CodeInvalidFeatureSchedule, ErrMsgInvalidSchedule, http.StatusUnprocessableEntity)
	case !f.runsOn(s.now().Weekday()):
		return upstream(domain.CodeNoFeatureToday, ErrMsgNoFeatureToday, http.StatusForbidden)
	case a.playsToday[game] >= s.settings.DailyLimit:
		return upstream(domain.CodeDailyLimitReached, ErrMsgDailyLimit, http.StatusTooManyRequests)
	case a.tokens < s.settings.TokenCost:
		return upstream(domain.CodeNotEnoughTokens, ErrMsgNotEnoughTokens, http.StatusPaymentRequired)
	}
	return nil
}

// GrantTrial tops up an exhausted account once per day. Accounts that can still play
// are left untouched.
func (s *Store) GrantTrial(userID string, game domain.GameType) (domain.GameStatus, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	a := s.account(userID)
	today := s.today()
	granted := false
	if a.tokens < s.settings.TokenCost && a.trialDay != today {
		a.tokens += s.settings.TrialTokens
		a.trialDay = today
		granted = true
	}
	return s.status(a, game), granted
}

// Status returns the game status view for userID
func (s *Store) Status(userID string, game domain.GameType) domain.GameStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status(s.account(userID), game)
}

// Ledger returns the vault balance view for userID
func (s *Store) Ledger(userID string) domain.LedgerStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.account(userID).ledger
}

// Leveling returns the season progress view for userID
func (s *Store) Leveling(userID string) domain.LevelingStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	xp := s.account(userID).xp
	level := int(xp/XPPerLevel) + 1
	return domain.LevelingStatus{
		Season:      s.settings.Season,
		Level:       level,
		XP:          xp,
		NextLevelXP: int64(level) * XPPerLevel,
	}
}

// Team returns the team standing view for userID. Rank 1 is the highest score.
func (s *Store) Team(userID string) domain.TeamStatus {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.account(userID).team
	ranked := append([]*team(nil), s.teams...)
	sort.SliceStable(ranked, func(i, j int) bool { return ranked[i].score > ranked[j].score })
	rank := 0
	for i, r := range ranked {
		if r == t {
			rank = i + 1
			break
		}
	}
	return domain.TeamStatus{
		TeamID:   t.id,
		TeamName: t.name,
		Score:    t.score,
		Rank:     rank,
		Members:  len(t.members),
	}
}

// Members lists the users on a team
func (s *Store) Members(teamID string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.teams {
		if t.id == teamID {
			return append([]string(nil), t.members...)
		}
	}
	return nil
}

// account returns userID's account, creating it and rolling the daily counters over.
// Must be called with mu held.
func (s *Store) account(userID string) *account {
	a, ok := s.accounts[userID]
	if !ok {
		a = &account{
			tokens:     s.settings.InitialTokens,
			playsToday: make(map[domain.GameType]int),
			team:       s.smallestTeam(),
		}
		a.team.members = append(a.team.members, userID)
		s.accounts[userID] = a
	}
	if today := s.today(); a.day != today {
		a.day = today
		a.playsToday = make(map[domain.GameType]int)
	}
	return a
}

func (s *Store) smallestTeam() *team {
	best := s.teams[0]
	for _, t := range s.teams[1:] {
		if len(t.members) < len(best.members) {
			best = t
		}
	}
	return best
}

func (s *Store) status(a *account, game domain.GameType) domain.GameStatus {
	return domain.GameStatus{
		Game:           game,
		Enabled:        s.available(game),
		RemainingPlays: s.remaining(a, game),
		PlaysToday:     a.playsToday[game],
		DailyLimit:     s.settings.DailyLimit,
		TokenCost:      s.settings.TokenCost,
	}
}

// remaining is how many more plays the account can afford today
func (s *Store) remaining(a *account, game domain.GameType) int {
	if !s.available(game) {
		return 0
	}
	byTokens := a.tokens / s.settings.TokenCost
	byLimit := s.settings.DailyLimit - a.playsToday[game]
	return max(0, min(byTokens, byLimit))
}

func (s *Store) available(game domain.GameType) bool {
	f := s.features[game]
	return f.Enabled && f.validSchedule() && f.runsOn(s.now().Weekday())
}

func (s *Store) today() string {
	return s.now().Format(time.DateOnly)
}

func upstream(code domain.ErrorCode, msg string, status int) *domain.UpstreamError {
	return &domain.UpstreamError{Code: code, Message: msg, Status: status}
}
