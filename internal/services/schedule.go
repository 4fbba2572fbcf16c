package services

import "time"

// Polling intervals by time-of-day band.
const (
	PeakInterval      = 15 * time.Minute
	InterPeakInterval = 45 * time.Minute
	OffPeakInterval   = 120 * time.Minute
)

// One time-of-day rule: [StartHour, EndHour) in local time.
type IntervalBand struct {
	StartHour int
	EndHour   int
	Interval  time.Duration
}

// The named bands; any hour not covered here is off-peak. Together with
// the off-peak default the table is exhaustive and non-overlapping over
// the full 24-hour domain.
var bands = []IntervalBand{
	{StartHour: 8, EndHour: 11, Interval: PeakInterval},
	{StartHour: 17, EndHour: 20, Interval: PeakInterval},
	{StartHour: 11, EndHour: 17, Interval: InterPeakInterval},
	{StartHour: 20, EndHour: 23, Interval: InterPeakInterval},
}

// Map a local hour to the polling interval for that band.
// Pure function of the hour so the schedule is independently testable.
func IntervalFor(hour int) time.Duration {
	for _, b := range bands {
		if hour >= b.StartHour && hour < b.EndHour {
			return b.Interval
		}
	}
	return OffPeakInterval
}
