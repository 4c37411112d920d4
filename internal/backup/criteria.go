package backup

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"experiment-setup/internal/errors"
)

// Criteria holds the optional list-backups constraints.
// End is exclusive and already adjusted: a date-only end is moved to the next midnight
// and a full timestamp end to the following second.
type Criteria struct {
	Start   *time.Time
	End     *time.Time
	Pattern *regexp.Regexp
}

// IsEmpty reports whether no constraint is set
func (c Criteria) IsEmpty() bool {
	return c.Start == nil && c.End == nil && c.Pattern == nil
}

// ParseCriteria builds Criteria from raw flag values. Empty strings leave a constraint unset.
func ParseCriteria(start, end, pattern string, loc *time.Location) (Criteria, error) {
	var c Criteria

	if start != "" {
		t, err := ParseStart(start, loc)
		if err != nil {
			return Criteria{}, err
		}
		c.Start = &t
	}

	if end != "" {
		t, err := ParseEnd(end, loc)
		if err != nil {
			return Criteria{}, err
		}
		c.End = &t
	}

	if c.Start != nil && c.End != nil && !c.Start.Before(*c.End) {
		return Criteria{}, errors.NewParseError(
			fmt.Sprintf("start %q is not before end %q", start, end), nil).
			WithContext("start", start).
			WithContext("end", end)
	}

	if pattern != "" {
		re, err := ParsePattern(pattern)
		if err != nil {
			return Criteria{}, err
		}
		c.Pattern = re
	}

	return c, nil
}

// ParseStart parses an inclusive lower bound; a date means the start of that day
func ParseStart(value string, loc *time.Location) (time.Time, error) {
	t, _, err := parseTimestamp(value, loc, "start")
	return t, err
}

// ParseEnd parses an upper bound and returns it as an exclusive bound.
// A date includes the whole day; a full timestamp includes that second.
func ParseEnd(value string, loc *time.Location) (time.Time, error) {
	t, dateOnly, err := parseTimestamp(value, loc, "end")
	if err != nil {
		return time.Time{}, err
	}
	if dateOnly {
		return t.AddDate(0, 0, 1), nil
	}
	return t.Add(time.Second), nil
}

func parseTimestamp(value string, loc *time.Location, flag string) (time.Time, bool, error) {
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.ParseInLocation(DateLayout, value, loc); err == nil {
		return t, true, nil
	}

	t, err := time.ParseInLocation(TimestampLayout, value, loc)
	if err == nil && t.Format(TimestampLayout) != value {
		// time.Parse accepts a fractional second after a seconds field
		err = fmt.Errorf("unexpected text after seconds in %q", value)
	}
	if err != nil {
		return time.Time{}, false, errors.NewParseError(
			fmt.Sprintf("invalid %s time %q (expected YYYY-MM-DD or YYYY-MM-DDTHH:MM:SS)", flag, value), err).
			WithContext("flag", "--"+flag).
			WithContext("value", value)
	}

	return t, false, nil
}

// ParsePattern compiles a /pattern/ argument. The expression is matched from the start of the stem.
func ParsePattern(value string) (*regexp.Regexp, error) {
	if len(value) < 2 || !strings.HasPrefix(value, "/") || !strings.HasSuffix(value, "/") {
		return nil, errors.NewParseError(
			fmt.Sprintf("invalid regex %q (expected /pattern/)", value), nil).
			WithContext("flag", "--regex").
			WithContext("value", value)
	}

	body := value[1 : len(value)-1]
	re, err := regexp.Compile("^(?:" + body + ")")
	if err != nil {
		return nil, errors.NewParseError(fmt.Sprintf("invalid regex %q", value), err).
			WithContext("flag", "--regex").
			WithContext("value", value)
	}

	return re, nil
}
