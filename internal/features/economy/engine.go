// Package economy applies the streak and daily-reward rules to a user
// aggregate. The engine is a pure transformation over the user's temporal
// fields; persistence happens at the call site.
package economy

import (
	"time"

	"github.com/Davlaati/humo-ai/internal/features/user/models"
)

// activityWindow is the rolling inactivity window after which a streak
// breaks (or a freeze credit is consumed).
const activityWindow = 48 * time.Hour

// Rules holds the configured daily reward amounts.
type Rules struct {
	DailyRewardCoins int
	DailyRewardXP    int
}

// Apply runs the streak and daily-reward rules against u at the given
// time. The step order matters: freeze consumption and the streak
// increment both read the activity gap computed before last_active is
// overwritten.
//
// Calling Apply twice with the same now only rewrites last_active; the
// calendar-day and gap checks make the second call a no-op on the
// reward and streak counters.
func (r Rules) Apply(u *models.User, now time.Time) {
	now = now.UTC()
	lastActive := u.LastActive.UTC()
	gap := now.Sub(lastActive)

	if gap > activityWindow {
		if u.StreakFreezeCount > 0 {
			u.StreakFreezeCount--
		} else {
			u.Streak = 0
		}
	}

	// Daily reward is a calendar-day boundary, independent of the rolling
	// 48h window: a long-inactive user can collect the reward and lose
	// the streak in the same call.
	if u.LastRewardedAt == nil || beforeDay(u.LastRewardedAt.UTC(), now) {
		u.Coins += r.DailyRewardCoins
		u.XP += r.DailyRewardXP
		rewarded := now
		u.LastRewardedAt = &rewarded
	}

	if beforeDay(lastActive, now) && gap <= activityWindow {
		u.Streak++
	}

	u.LastActive = now
}

// beforeDay reports whether a's UTC calendar date is earlier than b's.
func beforeDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	if ay != by {
		return ay < by
	}
	if am != bm {
		return am < bm
	}
	return ad < bd
}
