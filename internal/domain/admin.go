package domain

import "time"

// Admin is a dashboard operator. Passwords are stored as entered.
type Admin struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Password string `json:"password"`
}

func (a Admin) RecordID() string { return a.ID }

// Activity is one entry of the dashboard activity feed.
type Activity struct {
	ID        string `json:"id"`
	Action    string `json:"action"`
	Timestamp string `json:"timestamp"`
}

func (a Activity) RecordID() string { return a.ID }

// LockoutState is the persisted admin login throttle for one client.
// LockUntil is a unix millisecond timestamp, zero when unlocked.
type LockoutState struct {
	Failed    int   `json:"failed"`
	LockUntil int64 `json:"lockUntil"`
}

func (s LockoutState) LockedAt(now time.Time) bool {
	return s.LockUntil > 0 && now.UnixMilli() < s.LockUntil
}

func (s LockoutState) UnlockTime() time.Time {
	return time.UnixMilli(s.LockUntil)
}
