package timestamp

// Interval is a signed relative calendar interval. Each field may
// independently be negative, meaning "subtract this many units here".
type Interval struct {
	Years, Months, Days     int
	Hours, Minutes, Seconds int
}

// Invert returns the interval with every field's sign flipped. Used to turn
// a window size into an "N days ago" cutoff.
func (d Interval) Invert() Interval {
	return Interval{
		Years:   -d.Years,
		Months:  -d.Months,
		Days:    -d.Days,
		Hours:   -d.Hours,
		Minutes: -d.Minutes,
		Seconds: -d.Seconds,
	}
}

// Days returns an interval spanning n whole days.
func Days(n int) Interval {
	return Interval{Days: n}
}
