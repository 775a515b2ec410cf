package engine

import "strings"

// ============================================================================
// TIME CONVERTER — seconds → display unit
// ============================================================================
// Fixed ratios. A year is 365 days; no leap years, no calendar.
// ============================================================================

// TimeUnit is a display unit for time axes.
type TimeUnit string

const (
	Second TimeUnit = "second"
	Minute TimeUnit = "minute"
	Hour   TimeUnit = "hour"
	Day    TimeUnit = "day"
	Year   TimeUnit = "year"
)

const (
	secondsPerMinute = 60.0
	secondsPerHour   = 3600.0
	secondsPerDay    = 86400.0
	secondsPerYear   = 365 * secondsPerDay
)

// Seconds returns the number of seconds in one unit.
func (u TimeUnit) Seconds() (float64, error) {
	switch u {
	case Second:
		return 1, nil
	case Minute:
		return secondsPerMinute, nil
	case Hour:
		return secondsPerHour, nil
	case Day:
		return secondsPerDay, nil
	case Year:
		return secondsPerYear, nil
	default:
		return 0, configErrorf("unknown time unit %q", string(u))
	}
}

// ParseTimeUnit accepts canonical names, plurals and short forms ("s", "min",
// "h", "d", "yr"). An empty string means seconds.
func ParseTimeUnit(s string) (TimeUnit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "s", "sec", "secs", "second", "seconds":
		return Second, nil
	case "min", "mins", "minute", "minutes":
		return Minute, nil
	case "h", "hr", "hrs", "hour", "hours":
		return Hour, nil
	case "d", "day", "days":
		return Day, nil
	case "y", "yr", "yrs", "year", "years":
		return Year, nil
	default:
		return "", configErrorf("unknown time unit %q (want second, minute, hour, day or year)", s)
	}
}

// ConvertTime converts a time axis in seconds to unit. The input is left
// untouched; Second returns an exact copy.
func ConvertTime(seconds Series, unit TimeUnit) (Series, error) {
	ratio, err := unit.Seconds()
	if err != nil {
		return nil, err
	}
	out := make(Series, len(seconds))
	if ratio == 1 {
		copy(out, seconds)
		return out, nil
	}
	// Division, not scaling by 1/ratio: whole units stay exact
	for i, v := range seconds {
		out[i] = v / ratio
	}
	return out, nil
}
