// Package selection maintains a farmer's in-progress multi-day pick for one piece of equipment.
//
// A Selection is an immutable value: Select and Deselect return a new Selection and never
// mutate their input, so callers can hold the previous state for undo or comparison.
package selection

import (
	"sort"

	"agrirent-backend/internal/calendar"
)

// AvailabilityFunc reports whether a date may be added to a selection.
type AvailabilityFunc func(calendar.Date) bool

// Selection is a sorted set of unique dates.
type Selection struct {
	dates []calendar.Date
}

// New builds a Selection from arbitrary dates, dropping duplicates.
func New(dates ...calendar.Date) Selection {
	return Selection{dates: normalize(dates)}
}

func (s Selection) Dates() []calendar.Date {
	out := make([]calendar.Date, len(s.dates))
	copy(out, s.dates)
	return out
}

func (s Selection) Len() int { return len(s.dates) }

func (s Selection) IsEmpty() bool { return len(s.dates) == 0 }

func (s Selection) Contains(d calendar.Date) bool {
	i := sort.Search(len(s.dates), func(i int) bool { return !s.dates[i].Before(d) })
	return i < len(s.dates) && s.dates[i] == d
}

// Window returns the half-open range [first, last+1) a rental request for this selection occupies.
func (s Selection) Window() (start, end calendar.Date, ok bool) {
	if s.IsEmpty() {
		return calendar.Date{}, calendar.Date{}, false
	}
	return s.dates[0], s.dates[len(s.dates)-1].AddDays(1), true
}

// Select adds d and fills every gap between adjacent selected dates with the days available
// reports as bookable. Unavailable days in a gap are skipped without stopping the fill.
// Selecting an unavailable day leaves s unchanged.
func Select(s Selection, d calendar.Date, available AvailabilityFunc) Selection {
	if !available(d) {
		return s
	}
	if s.IsEmpty() {
		return Selection{dates: []calendar.Date{d}}
	}
	if s.Contains(d) {
		return s
	}

	merged := normalize(append(s.Dates(), d))
	filled := make([]calendar.Date, 0, len(merged))
	for i, cur := range merged {
		if i > 0 {
			prev := merged[i-1]
			for gap := prev.AddDays(1); gap.Before(cur); gap = gap.AddDays(1) {
				if available(gap) {
					filled = append(filled, gap)
				}
			}
		}
		filled = append(filled, cur)
	}
	return Selection{dates: filled}
}

// Deselect removes d and collapses what is left to its longest run of consecutive days.
// On equal lengths the earliest run is kept. Removing a date that is not selected is a no-op.
func Deselect(s Selection, d calendar.Date) Selection {
	if !s.Contains(d) {
		return s
	}

	remaining := make([]calendar.Date, 0, len(s.dates)-1)
	for _, x := range s.dates {
		if x != d {
			remaining = append(remaining, x)
		}
	}
	if len(remaining) == 0 {
		return Selection{}
	}

	bestStart, bestLen := 0, 0
	runStart := 0
	for i := 1; i <= len(remaining); i++ {
		if i < len(remaining) && calendar.Gap(remaining[i-1], remaining[i]) == 1 {
			continue
		}
		if n := i - runStart; n > bestLen {
			bestStart, bestLen = runStart, n
		}
		runStart = i
	}

	out := make([]calendar.Date, bestLen)
	copy(out, remaining[bestStart:bestStart+bestLen])
	return Selection{dates: out}
}

// Runs splits the selection into maximal runs of consecutive days.
func (s Selection) Runs() [][]calendar.Date {
	var runs [][]calendar.Date
	for i, d := range s.dates {
		if i == 0 || calendar.Gap(s.dates[i-1], d) != 1 {
			runs = append(runs, nil)
		}
		runs[len(runs)-1] = append(runs[len(runs)-1], d)
	}
	return runs
}

func normalize(dates []calendar.Date) []calendar.Date {
	if len(dates) == 0 {
		return nil
	}
	sorted := make([]calendar.Date, len(dates))
	copy(sorted, dates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	out := sorted[:1]
	for _, d := range sorted[1:] {
		if d != out[len(out)-1] {
			out = append(out, d)
		}
	}
	return out
}
