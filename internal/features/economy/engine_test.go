package economy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Davlaati/humo-ai/internal/features/user/models"
)

var testRules = Rules{DailyRewardCoins: 25, DailyRewardXP: 10}

func newTestUser(lastActive time.Time) *models.User {
	u := models.NewUser(1, "Test", "test", lastActive)
	return u
}

func TestApplyGrantsDailyRewardOncePerDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	yesterday := now.Add(-20 * time.Hour)

	u := newTestUser(yesterday)
	rewarded := yesterday
	u.LastRewardedAt = &rewarded

	testRules.Apply(u, now)

	assert.Equal(t, 25, u.Coins)
	assert.Equal(t, 10, u.XP)
	require.NotNil(t, u.LastRewardedAt)
	assert.Equal(t, now, *u.LastRewardedAt)

	// Second call the same day grants nothing more.
	testRules.Apply(u, now.Add(2*time.Hour))

	assert.Equal(t, 25, u.Coins)
	assert.Equal(t, 10, u.XP)
}

func TestApplyIsIdempotentForSameInstant(t *testing.T) {
	now := time.Date(2024, 6, 10, 9, 0, 0, 0, time.UTC)
	u := newTestUser(now.Add(-25 * time.Hour))
	u.Streak = 3

	testRules.Apply(u, now)

	coins, xp, streak, freezes := u.Coins, u.XP, u.Streak, u.StreakFreezeCount

	testRules.Apply(u, now)

	assert.Equal(t, coins, u.Coins)
	assert.Equal(t, xp, u.XP)
	assert.Equal(t, streak, u.Streak)
	assert.Equal(t, freezes, u.StreakFreezeCount)
	assert.Equal(t, now.UTC(), u.LastActive)
}

func TestApplyConsumesFreezeInsteadOfBreakingStreak(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	u := newTestUser(now.Add(-50 * time.Hour))
	u.Streak = 5
	u.StreakFreezeCount = 1

	testRules.Apply(u, now)

	assert.Equal(t, 0, u.StreakFreezeCount)
	// Frozen, not incremented either: the gap exceeded the 48h window.
	assert.Equal(t, 5, u.Streak)
}

func TestApplyResetsStreakWithoutFreeze(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	u := newTestUser(now.Add(-50 * time.Hour))
	u.Streak = 5

	testRules.Apply(u, now)

	assert.Equal(t, 0, u.Streak)
	assert.Equal(t, 0, u.StreakFreezeCount)
}

func TestApplyIncrementsStreakAcrossDayBoundary(t *testing.T) {
	now := time.Date(2024, 6, 10, 8, 0, 0, 0, time.UTC)

	u := newTestUser(now.Add(-12 * time.Hour)) // yesterday evening
	u.Streak = 2

	testRules.Apply(u, now)

	assert.Equal(t, 3, u.Streak)
}

func TestApplyKeepsStreakWithinSameDay(t *testing.T) {
	now := time.Date(2024, 6, 10, 18, 0, 0, 0, time.UTC)

	u := newTestUser(now.Add(-3 * time.Hour))
	u.Streak = 2

	testRules.Apply(u, now)

	assert.Equal(t, 2, u.Streak)
}

func TestApplyRewardAndStreakResetInSameCall(t *testing.T) {
	// A user inactive for a week still collects the daily reward while
	// losing the streak: the reward is a calendar-day check, the reset a
	// rolling-window check.
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	u := newTestUser(now.Add(-7 * 24 * time.Hour))
	u.Streak = 10
	rewarded := now.Add(-7 * 24 * time.Hour)
	u.LastRewardedAt = &rewarded

	testRules.Apply(u, now)

	assert.Equal(t, 0, u.Streak)
	assert.Equal(t, 25, u.Coins)
}

func TestApplyNeverProducesNegativeCounters(t *testing.T) {
	now := time.Date(2024, 6, 10, 12, 0, 0, 0, time.UTC)

	cases := []struct {
		name    string
		user    *models.User
		moments []time.Time
	}{
		{
			name:    "fresh user",
			user:    newTestUser(now.Add(-time.Hour)),
			moments: []time.Time{now, now.Add(24 * time.Hour), now.Add(96 * time.Hour)},
		},
		{
			name: "long inactive with freezes",
			user: func() *models.User {
				u := newTestUser(now.Add(-200 * time.Hour))
				u.Streak = 1
				u.StreakFreezeCount = 1
				return u
			}(),
			moments: []time.Time{now, now.Add(72 * time.Hour), now.Add(144 * time.Hour)},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			for _, moment := range tc.moments {
				testRules.Apply(tc.user, moment)
				assert.GreaterOrEqual(t, tc.user.Coins, 0)
				assert.GreaterOrEqual(t, tc.user.XP, 0)
				assert.GreaterOrEqual(t, tc.user.Streak, 0)
				assert.GreaterOrEqual(t, tc.user.StreakFreezeCount, 0)
				assert.GreaterOrEqual(t, tc.user.TelegramStars, 0)
			}
		})
	}
}

func TestLevelForXP(t *testing.T) {
	assert.Equal(t, models.LevelBeginner, models.LevelForXP(0))
	assert.Equal(t, models.LevelBeginner, models.LevelForXP(599))
	assert.Equal(t, models.LevelIntermediate, models.LevelForXP(600))
	assert.Equal(t, models.LevelIntermediate, models.LevelForXP(1499))
	assert.Equal(t, models.LevelAdvanced, models.LevelForXP(1500))
}
