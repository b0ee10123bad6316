package domain

import "time"

// Event represents a sporting event participants register for.
type Event struct {
	ID       string
	Name     string
	City     string
	StartsAt time.Time
}

// Batch is a time-boxed pricing tier within an event ("early bird" etc.).
type Batch struct {
	ID      string
	EventID string
	Name    string
	OpensAt time.Time
	EndsAt  time.Time
}

// Open reports whether the batch sells at the given instant.
func (b Batch) Open(now time.Time) bool {
	return !now.Before(b.OpensAt) && now.Before(b.EndsAt)
}
