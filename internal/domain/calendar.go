package domain

import "time"

// CalendarEvent is a read-only event window from the remote calendar.
// For all-day events Start and End are dates at midnight and End is exclusive.
type CalendarEvent struct {
	Start  time.Time
	End    time.Time
	AllDay bool
}

// CalendarDay is one cell of a displayed month grid.
type CalendarDay struct {
	Date           time.Time `json:"-"`
	IsOccupied     bool      `json:"occupied"`
	IsCurrentMonth bool      `json:"currentMonth"`
}

// MonthView is the result of one availability computation.
type MonthView struct {
	Year    int
	Month   int // zero-based
	Phase   Phase
	Message string
	Days    []CalendarDay
}
