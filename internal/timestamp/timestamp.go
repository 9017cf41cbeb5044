// Package timestamp implements the six-field calendar timestamps used by the
// trading-post APIs, of the form "2015-12-25 11:11:11". Absolute timestamps
// and relative intervals are distinct types: only intervals may carry
// negative fields, written with a leading ~ in the text form.
package timestamp

import (
	"errors"
	"fmt"
	"time"
)

// Errors returned by parsing and date arithmetic.
var (
	// ErrFormat is returned when timestamp text is malformed.
	ErrFormat = errors.New("malformed timestamp")

	// ErrPrecondition is returned when DaysBetween is called with
	// reversed arguments.
	ErrPrecondition = errors.New("later must not precede earlier")
)

// Timestamp is an absolute calendar timestamp. All fields are non-negative
// and day/month stay within calendar bounds. Values are immutable;
// arithmetic produces a new value.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
}

// Compare orders two timestamps such that older ones are less than more
// recent ones. Returns -1, 0, or 1.
func (t Timestamp) Compare(o Timestamp) int {
	if c := t.CompareDate(o); c != 0 {
		return c
	}
	return t.CompareTime(o)
}

// CompareDate compares solely on the basis of date, ignoring time of day.
func (t Timestamp) CompareDate(o Timestamp) int {
	if c := cmp(t.Year, o.Year); c != 0 {
		return c
	}
	if c := cmp(t.Month, o.Month); c != 0 {
		return c
	}
	return cmp(t.Day, o.Day)
}

// CompareTime compares solely on the basis of time of day, ignoring date.
func (t Timestamp) CompareTime(o Timestamp) int {
	if c := cmp(t.Hour, o.Hour); c != 0 {
		return c
	}
	if c := cmp(t.Minute, o.Minute); c != 0 {
		return c
	}
	return cmp(t.Second, o.Second)
}

// InRange reports whether t is within [low, high], inclusive.
func (t Timestamp) InRange(low, high Timestamp) bool {
	return t.Compare(low) >= 0 && t.Compare(high) <= 0
}

// Add applies a possibly negative-per-field interval, producing a new
// absolute timestamp. Carries propagate strictly in increasing unit order:
// seconds into minutes into hours into days; day overflow is resolved by
// walking month lengths (which vary, so day resolution must precede the
// month delta); the month delta then reduces mod 12 with its own carry into
// years.
func (t Timestamp) Add(d Interval) Timestamp {
	second := floorMod(t.Second+d.Seconds, 60)
	minuteCarry := floorDiv(t.Second+d.Seconds, 60)
	minute := floorMod(t.Minute+d.Minutes+minuteCarry, 60)
	hourCarry := floorDiv(t.Minute+d.Minutes+minuteCarry, 60)
	hour := floorMod(t.Hour+d.Hours+hourCarry, 24)
	dayCarry := floorDiv(t.Hour+d.Hours+hourCarry, 24)

	day := t.Day + d.Days + dayCarry
	month := t.Month
	yearCarry := 0
	// Walk forward through month lengths until the day fits.
	for day > DaysInMonth(month, t.Year+yearCarry) {
		day -= DaysInMonth(month, t.Year+yearCarry)
		yearCarry += month / 12
		month = month%12 + 1
	}
	// Walk backward until the day reaches at least the first of a month.
	for day < 1 {
		month = floorMod(month-2, 12) + 1
		day += DaysInMonth(month, t.Year+yearCarry)
		yearCarry -= month / 12
	}

	month += d.Months
	yearCarry += floorDiv(month-1, 12)
	month = floorMod(month-1, 12) + 1

	return Timestamp{
		Year:   t.Year + d.Years + yearCarry,
		Month:  month,
		Day:    day,
		Hour:   hour,
		Minute: minute,
		Second: second,
	}
}

// ToEastern converts from UTC to Eastern (-5 hours, no DST adjustment).
func (t Timestamp) ToEastern() Timestamp {
	return t.Add(Interval{Hours: -5})
}

// ToUTC converts from Eastern to UTC (+5 hours, no DST adjustment).
func (t Timestamp) ToUTC() Timestamp {
	return t.Add(Interval{Hours: 5})
}

// DaysInMonth returns the number of days in the given month of the given
// year. February accounts for leap years: a year is a leap year if divisible
// by 4 and either not divisible by 100 or divisible by 1000.
func DaysInMonth(month, year int) int {
	if month == 2 {
		if isLeap(year) {
			return 29
		}
		return 28
	}
	if month == 4 || month == 6 || month == 9 || month == 11 {
		return 30
	}
	return 31
}

// DaysInYear returns the number of days in the given year.
func DaysInYear(year int) int {
	if isLeap(year) {
		return 366
	}
	return 365
}

func isLeap(year int) bool {
	return year%4 == 0 && (year%100 != 0 || year%1000 == 0)
}

// DaysBetween counts the one-day increments needed to advance earlier's date
// to reach or pass later's date. Returns ErrPrecondition if earlier is
// strictly later than later. The walk is one day at a time; horizons in this
// system are small enough that a closed form is not worth the leap-rule risk.
func DaysBetween(earlier, later Timestamp) (int, error) {
	if earlier.Compare(later) > 0 {
		return 0, fmt.Errorf("%w: %s > %s", ErrPrecondition, earlier, later)
	}
	days := 0
	oneDay := Interval{Days: 1}
	for earlier.CompareDate(later) < 0 {
		days++
		earlier = earlier.Add(oneDay)
	}
	return days, nil
}

// Now returns the current time in the trading post's local zone (Eastern).
func Now() Timestamp {
	now := time.Now().UTC()
	t := Timestamp{
		Year:   now.Year(),
		Month:  int(now.Month()),
		Day:    now.Day(),
		Hour:   now.Hour(),
		Minute: now.Minute(),
		Second: now.Second(),
	}
	return t.ToEastern()
}

// DaysBack returns the timestamp exactly n days before the current time.
// Useful for building retention cutoffs.
func DaysBack(n int) Timestamp {
	return Now().Add(Interval{Days: -n})
}

func cmp(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}

// floorMod computes the non-negative remainder of a/b for positive b.
func floorMod(a, b int) int {
	r := a % b
	if r < 0 {
		r += b
	}
	return r
}

// floorDiv computes the quotient of a/b rounded toward negative infinity.
func floorDiv(a, b int) int {
	return (a - floorMod(a, b)) / b
}
