package models

import "time"

// Level is the proficiency tier derived from accumulated XP.
type Level string

const (
	LevelBeginner     Level = "Beginner"
	LevelIntermediate Level = "Intermediate"
	LevelAdvanced     Level = "Advanced"
)

// LevelForXP maps accumulated XP to a proficiency tier. Call it wherever
// xp changes; the stored level is not refreshed otherwise.
func LevelForXP(xp int) Level {
	switch {
	case xp >= 1500:
		return LevelAdvanced
	case xp >= 600:
		return LevelIntermediate
	default:
		return LevelBeginner
	}
}

// User is the aggregate mutated on every authenticated touch. The id is
// the Telegram user id.
type User struct {
	ID                int64      `json:"id"`
	Name              string     `json:"name"`
	Username          string     `json:"username,omitempty"`
	Level             Level      `json:"level"`
	Goal              string     `json:"goal,omitempty"`
	Interests         []string   `json:"interests"`
	Coins             int        `json:"coins"`
	XP                int        `json:"xp"`
	Streak            int        `json:"streak"`
	StreakFreezeCount int        `json:"streak_freeze_count"`
	IsPremium         bool       `json:"is_premium"`
	TelegramStars     int        `json:"telegram_stars"`
	JoinedAt          time.Time  `json:"joined_at"`
	LastActive        time.Time  `json:"last_active"`
	LastRewardedAt    *time.Time `json:"last_rewarded_at,omitempty"`
}

// NewUser seeds a user created on first contact.
func NewUser(id int64, name, username string, now time.Time) *User {
	return &User{
		ID:         id,
		Name:       name,
		Username:   username,
		Level:      LevelBeginner,
		Interests:  []string{},
		JoinedAt:   now,
		LastActive: now,
	}
}

// ProfileResponse is the public view of a user returned by the API.
type ProfileResponse struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	Username      string    `json:"username,omitempty"`
	Level         Level     `json:"level"`
	Goal          string    `json:"goal,omitempty"`
	Interests     []string  `json:"interests"`
	Coins         int       `json:"coins"`
	XP            int       `json:"xp"`
	Streak        int       `json:"streak"`
	IsPremium     bool      `json:"is_premium"`
	TelegramStars int       `json:"telegram_stars"`
	JoinedAt      time.Time `json:"joined_at"`
	LastActive    time.Time `json:"last_active"`
}

// LeaderboardEntry is one ranked row of the leaderboard.
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	UserID   int64  `json:"user_id"`
	Name     string `json:"name"`
	Username string `json:"username,omitempty"`
	XP       int    `json:"xp"`
}
