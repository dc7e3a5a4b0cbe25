package services

import "time"

// today returns the current date truncated to midnight UTC. All
// lifecycle arithmetic (due dates, overdue days, expiries) works on
// whole days.
func today() time.Time {
	return time.Now().UTC().Truncate(24 * time.Hour)
}
