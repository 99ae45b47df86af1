package calendar

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Layout is the wire and storage format of a Date.
const Layout = "2006-01-02"

// Date represents a calendar day with no time-of-day or zone component.
// The zero value is not a valid day; use IsZero to detect it.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// New normalizes year/month/day through time.Date, so New(2025, 1, 32) is 2025-02-01.
func New(year int, month time.Month, day int) Date {
	return FromTime(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// FromTime returns the calendar day of t in t's own location.
func FromTime(t time.Time) Date {
	y, m, d := t.Date()
	return Date{Year: y, Month: m, Day: d}
}

// Today returns the calendar day of now in now's location.
func Today(now time.Time) Date {
	return FromTime(now)
}

// ParseDate converts a yyyy-mm-dd formatted string into a Date
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(Layout, s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q, expected yyyy-mm-dd", s)
	}
	return FromTime(t), nil
}

// MustParse is ParseDate for literals known to be valid.
func MustParse(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

func (d Date) IsZero() bool {
	return d == Date{}
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Time().Format(Layout)
}

func (d Date) AddDays(n int) Date {
	return FromTime(d.Time().AddDate(0, 0, n))
}

func (d Date) Before(o Date) bool { return d.Compare(o) < 0 }
func (d Date) After(o Date) bool  { return d.Compare(o) > 0 }

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
func (d Date) Compare(o Date) int {
	switch {
	case d.Year != o.Year:
		return cmpInt(d.Year, o.Year)
	case d.Month != o.Month:
		return cmpInt(int(d.Month), int(o.Month))
	default:
		return cmpInt(d.Day, o.Day)
	}
}

func cmpInt(a, b int) int {
	if a < b {
		return -1
	}
	if a > b {
		return 1
	}
	return 0
}

// Gap is the signed number of calendar days from a to b; adjacent days have a gap of 1.
func Gap(a, b Date) int {
	// Both sides are UTC midnights, so the division is exact across DST changes.
	return int(b.Time().Sub(a.Time()).Hours() / 24)
}

// DaysBetween returns 1 when a == b and the calendar-day difference otherwise.
func DaysBetween(a, b Date) int {
	if a == b {
		return 1
	}
	return Gap(a, b)
}

// EnumerateRange returns every day from start to end inclusive in ascending order.
// It returns nil when end is before start.
func EnumerateRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	days := make([]Date, 0, Gap(start, end)+1)
	for d := start; !d.After(end); d = d.AddDays(1) {
		days = append(days, d)
	}
	return days
}

// HalfOpen returns the days of [start, end).
func HalfOpen(start, end Date) []Date {
	if !start.Before(end) {
		return nil
	}
	return EnumerateRange(start, end.AddDays(-1))
}

// IsPast reports whether d is strictly before the calendar day containing now.
func IsPast(d Date, now time.Time) bool {
	return d.Before(Today(now))
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" {
		*d = Date{}
		return nil
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Value stores the day as a DATE-compatible string.
func (d Date) Value() (driver.Value, error) {
	if d.IsZero() {
		return nil, nil
	}
	return d.String(), nil
}

// Scan accepts time.Time (lib/pq DATE columns), string and []byte.
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = Date{}
		return nil
	case time.Time:
		*d = FromTime(v)
		return nil
	case string:
		return d.scanString(v)
	case []byte:
		return d.scanString(string(v))
	default:
		return fmt.Errorf("calendar: cannot scan %T into Date", src)
	}
}

func (d *Date) scanString(s string) error {
	if len(s) > len(Layout) {
		s = s[:len(Layout)]
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
