package availability

import (
	"time"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
)

const (
	ReasonBooked               = "booked"
	ReasonEquipmentUnavailable = "equipment unavailable"
	ReasonPastDate             = "past date"
	// ReasonBlackout is used when a blackout override carries no reason text.
	ReasonBlackout = "unavailable"
)

// DayAvailability is the resolved state of a single date.
type DayAvailability struct {
	Date      calendar.Date `json:"date"`
	Available bool          `json:"available"`
	Reason    string        `json:"reason,omitempty"`
}

// Calendar is the resolved availability of one equipment over an inclusive window.
type Calendar struct {
	EquipmentID int32
	From        calendar.Date
	To          calendar.Date
	days        []DayAvailability
	index       map[calendar.Date]int
}

func newCalendar(equipmentID int32, from, to calendar.Date, days []DayAvailability) *Calendar {
	c := &Calendar{EquipmentID: equipmentID, From: from, To: to, days: days, index: make(map[calendar.Date]int, len(days))}
	for i, d := range days {
		c.index[d.Date] = i
	}
	return c
}

// FromDays rebuilds a Calendar from previously resolved days (e.g. a cache hit).
func FromDays(equipmentID int32, from, to calendar.Date, days []DayAvailability) *Calendar {
	return newCalendar(equipmentID, from, to, days)
}

// Days returns the window in ascending order.
func (c *Calendar) Days() []DayAvailability {
	out := make([]DayAvailability, len(c.days))
	copy(out, c.days)
	return out
}

// Day returns the resolved state of d; dates outside the window are reported unavailable.
func (c *Calendar) Day(d calendar.Date) (DayAvailability, bool) {
	i, ok := c.index[d]
	if !ok {
		return DayAvailability{Date: d}, false
	}
	return c.days[i], true
}

// IsAvailable reports whether d is inside the window and bookable.
func (c *Calendar) IsAvailable(d calendar.Date) bool {
	day, ok := c.Day(d)
	return ok && day.Available
}

// Unavailable returns the dates that are not bookable along with their reasons.
func (c *Calendar) Unavailable() ([]calendar.Date, map[calendar.Date]string) {
	var dates []calendar.Date
	reasons := make(map[calendar.Date]string)
	for _, d := range c.days {
		if !d.Available {
			dates = append(dates, d.Date)
			reasons[d.Date] = d.Reason
		}
	}
	return dates, reasons
}

// Map returns the date-keyed view used by the external API.
func (c *Calendar) Map() map[string]DayAvailability {
	out := make(map[string]DayAvailability, len(c.days))
	for _, d := range c.days {
		out[d.Date.String()] = d
	}
	return out
}

// Resolve computes availability for every date in [from, to] from a snapshot.
// It is pure: the same snapshot and now always give the same calendar.
//
// Precedence per date: past, equipment switched off, held by a blocking request, latest
// override, then available. Overrides cannot reopen a date that any of the earlier rules
// closed; an open override only supersedes an earlier blackout for the same date.
func Resolve(snap *domain.AvailabilitySnapshot, from, to calendar.Date, now time.Time) *Calendar {
	overrides := latestOverrides(snap.Overrides)
	days := make([]DayAvailability, 0, calendar.Gap(from, to)+1)

	for _, d := range calendar.EnumerateRange(from, to) {
		days = append(days, resolveDay(snap, overrides, d, now))
	}

	var equipmentID int32
	if snap.Equipment != nil {
		equipmentID = snap.Equipment.ID
	}
	return newCalendar(equipmentID, from, to, days)
}

func resolveDay(snap *domain.AvailabilitySnapshot, overrides map[calendar.Date]domain.AvailabilityOverride, d calendar.Date, now time.Time) DayAvailability {
	if calendar.IsPast(d, now) {
		return DayAvailability{Date: d, Reason: ReasonPastDate}
	}
	if snap.Equipment == nil || !snap.Equipment.IsAvailable {
		return DayAvailability{Date: d, Reason: ReasonEquipmentUnavailable}
	}
	for i := range snap.Blocking {
		rt := &snap.Blocking[i]
		if rt.Status.Blocks() && rt.EquipmentID == snap.Equipment.ID && rt.Holds(d) {
			return DayAvailability{Date: d, Reason: ReasonBooked}
		}
	}
	if o, ok := overrides[d]; ok && !o.IsAvailable {
		reason := o.Reason
		if reason == "" {
			reason = ReasonBlackout
		}
		return DayAvailability{Date: d, Reason: reason}
	}
	return DayAvailability{Date: d, Available: true}
}

// latestOverrides keeps the most recently created override per date; ID breaks timestamp ties.
func latestOverrides(all []domain.AvailabilityOverride) map[calendar.Date]domain.AvailabilityOverride {
	out := make(map[calendar.Date]domain.AvailabilityOverride, len(all))
	for _, o := range all {
		cur, ok := out[o.Date]
		if !ok || o.CreatedOn.After(cur.CreatedOn) || (o.CreatedOn.Equal(cur.CreatedOn) && o.ID > cur.ID) {
			out[o.Date] = o
		}
	}
	return out
}

// Verify checks that every day of the half-open window [start, end) is bookable.
// It returns a *domain.UnavailableDatesError naming the offending days otherwise.
func Verify(snap *domain.AvailabilitySnapshot, start, end calendar.Date, now time.Time) error {
	if !start.Before(end) {
		return domain.InvalidRange("end date %s must be after start date %s", end, start)
	}
	cal := Resolve(snap, start, end.AddDays(-1), now)
	dates, reasons := cal.Unavailable()
	if len(dates) > 0 {
		return &domain.UnavailableDatesError{Dates: dates, Reasons: reasons}
	}
	return nil
}
