package timestamp

import (
	"fmt"
	"strconv"
	"strings"
)

// The negation sentinel used in interval text. A field like "~5" reads as -5.
const negationSentinel = '~'

// Parse parses an absolute timestamp of the form "2015-12-25 11:11:11".
// Fields need not be zero-padded. The negation sentinel is rejected here;
// it is valid only in intervals.
func Parse(text string) (Timestamp, error) {
	fields, err := splitFields(text)
	if err != nil {
		return Timestamp{}, err
	}
	var vals [6]int
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil || v < 0 {
			return Timestamp{}, fmt.Errorf("%w: field %q in %q", ErrFormat, f, text)
		}
		vals[i] = v
	}
	return Timestamp{
		Year: vals[0], Month: vals[1], Day: vals[2],
		Hour: vals[3], Minute: vals[4], Second: vals[5],
	}, nil
}

// ParseInterval parses a relative interval in the same grammar, where any
// field may carry a leading ~ to negate the following magnitude, e.g.
// "0000-00-00 ~5:00:00" for "5 hours earlier".
func ParseInterval(text string) (Interval, error) {
	fields, err := splitFields(text)
	if err != nil {
		return Interval{}, err
	}
	var vals [6]int
	for i, f := range fields {
		v, err := parseSigned(f)
		if err != nil {
			return Interval{}, fmt.Errorf("%w: field %q in %q", ErrFormat, f, text)
		}
		vals[i] = v
	}
	return Interval{
		Years: vals[0], Months: vals[1], Days: vals[2],
		Hours: vals[3], Minutes: vals[4], Seconds: vals[5],
	}, nil
}

// String formats the timestamp as "Y-M-D H:M:S" without zero padding,
// the inverse of Parse.
func (t Timestamp) String() string {
	return fmt.Sprintf("%d-%d-%d %d:%d:%d", t.Year, t.Month, t.Day, t.Hour, t.Minute, t.Second)
}

// String formats the interval, re-emitting the ~ sentinel for any negative
// field. Format(Parse(s)) == s for any s produced by Format.
func (d Interval) String() string {
	return fmt.Sprintf("%s-%s-%s %s:%s:%s",
		formatSigned(d.Years), formatSigned(d.Months), formatSigned(d.Days),
		formatSigned(d.Hours), formatSigned(d.Minutes), formatSigned(d.Seconds))
}

// splitFields breaks "Y-M-D H:M:S" into its six fields.
func splitFields(text string) ([6]string, error) {
	var out [6]string
	halves := strings.Split(text, " ")
	if len(halves) != 2 {
		return out, fmt.Errorf("%w: %q", ErrFormat, text)
	}
	date := strings.Split(halves[0], "-")
	clock := strings.Split(halves[1], ":")
	if len(date) != 3 || len(clock) != 3 {
		return out, fmt.Errorf("%w: %q", ErrFormat, text)
	}
	copy(out[0:3], date)
	copy(out[3:6], clock)
	return out, nil
}

func parseSigned(field string) (int, error) {
	if field != "" && field[0] == negationSentinel {
		v, err := strconv.Atoi(field[1:])
		if err != nil || v < 0 {
			return 0, fmt.Errorf("bad magnitude %q", field)
		}
		return -v, nil
	}
	v, err := strconv.Atoi(field)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("bad field %q", field)
	}
	return v, nil
}

func formatSigned(v int) string {
	if v < 0 {
		return string(negationSentinel) + strconv.Itoa(-v)
	}
	return strconv.Itoa(v)
}
