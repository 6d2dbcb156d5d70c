// Package countdown classifies a sale date relative to "now" into an urgency
// bucket with the label, style class, icon and advisory the UI renders.
//
// Classification is pure: callers pass now explicitly. Services inject a
// Clock so handlers and the alerts feed stay testable.
package countdown

import (
	"fmt"
	"time"
)

// Bucket is an urgency state derived from the days remaining until a sale
type Bucket string

const (
	BucketDue       Bucket = "due"
	BucketImminent  Bucket = "imminent"
	BucketUpcoming  Bucket = "upcoming"
	BucketScheduled Bucket = "scheduled"
)

// Bucket thresholds in whole days
const (
	ImminentMaxDays = 7
	UpcomingMaxDays = 30
)

// Advisory messages
const (
	AdvisoryFinalCountdown = "Final countdown to sale day"
	AdvisoryPreSale        = "Pre-sale program active"
)

// Icon identifiers
const (
	IconDue       = "alert-triangle"
	IconImminent  = "clock"
	IconUpcoming  = "calendar"
	IconScheduled = "calendar-days"
)

// Style classes
const (
	StyleDue       = "badge-due"
	StyleImminent  = "badge-imminent animate-pulse"
	StyleUpcoming  = "badge-upcoming"
	StyleScheduled = "badge-scheduled"
)

// Status is the rendered classification of one target date
type Status struct {
	Bucket        Bucket `json:"bucket"`
	DaysRemaining int    `json:"days_remaining"`
	Label         string `json:"label"`
	StyleClass    string `json:"style_class"`
	Icon          string `json:"icon"`
	Advisory      string `json:"advisory,omitempty"`
	Target        string `json:"target"`
}

// Clock returns the current time
type Clock func() time.Time

// SystemClock reads the wall clock
func SystemClock() time.Time {
	return time.Now()
}

// Classify buckets target relative to now. It never fails.
func Classify(target, now time.Time) Status {
	days := DaysBetween(target, now)
	local := target.In(now.Location())

	s := Status{
		DaysRemaining: days,
		Target:        local.Format(DateLayout),
	}

	switch {
	case days <= 0:
		s.Bucket = BucketDue
		s.Label = "Sale Day!"
		s.Icon = IconDue
		s.StyleClass = StyleDue
	case days <= ImminentMaxDays:
		s.Bucket = BucketImminent
		s.Label = fmt.Sprintf("%dd left", days)
		s.Icon = IconImminent
		s.StyleClass = StyleImminent
		s.Advisory = AdvisoryFinalCountdown
	case days <= UpcomingMaxDays:
		s.Bucket = BucketUpcoming
		s.Label = fmt.Sprintf("%dd to sale", days)
		s.Icon = IconUpcoming
		s.StyleClass = StyleUpcoming
		s.Advisory = AdvisoryPreSale
	default:
		s.Bucket = BucketScheduled
		s.Label = "Sale: " + local.Format("Jan 2")
		s.Icon = IconScheduled
		s.StyleClass = StyleScheduled
	}

	return s
}

// DaysBetween counts whole calendar days from now's date to target's date,
// both read in now's location. Same day is 0, earlier days are negative.
func DaysBetween(target, now time.Time) int {
	loc := now.Location()
	ty, tm, td := target.In(loc).Date()
	ny, nm, nd := now.Date()

	// civil dates compared at UTC midnight so DST shifts do not skew the count
	t := time.Date(ty, tm, td, 0, 0, 0, 0, time.UTC)
	n := time.Date(ny, nm, nd, 0, 0, 0, 0, time.UTC)
	return int((t.Unix() - n.Unix()) / 86400)
}
