package service

import (
	"context"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/cache"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
	"agrirent-backend/internal/selection"
	"agrirent-backend/internal/utils"
)

type availabilityService struct {
	availRepo     repository.AvailabilityRepository
	equipmentRepo repository.EquipmentRepository
	cache         cache.AvailabilityCache
	clock         Clock
	maxWindowDays int
}

func NewAvailabilityService(
	availRepo repository.AvailabilityRepository,
	equipmentRepo repository.EquipmentRepository,
	availabilityCache cache.AvailabilityCache,
	clock Clock,
	maxWindowDays int,
) AvailabilityService {
	return &availabilityService{
		availRepo:     availRepo,
		equipmentRepo: equipmentRepo,
		cache:         availabilityCache,
		clock:         clock,
		maxWindowDays: maxWindowDays,
	}
}

func (s *availabilityService) GetAvailability(ctx context.Context, equipmentID int32, from, to calendar.Date) (*availability.Calendar, error) {
	logger.EnterMethod("availabilityService.GetAvailability", "equipmentID", equipmentID, "from", from, "to", to)

	if err := s.checkWindow(from, to); err != nil {
		logger.ExitMethodWithError("availabilityService.GetAvailability", err, "equipmentID", equipmentID)
		return nil, err
	}
	cal, cached, err := s.resolve(ctx, equipmentID, from, to)
	if err != nil {
		logger.ExitMethodWithError("availabilityService.GetAvailability", err, "equipmentID", equipmentID)
		return nil, err
	}

	logger.ExitMethod("availabilityService.GetAvailability", "equipmentID", equipmentID, "days", len(cal.Days()), "cached", cached)
	return cal, nil
}

// checkWindow bounds the calendar a client may request for display.
func (s *availabilityService) checkWindow(from, to calendar.Date) error {
	if from.IsZero() || to.IsZero() {
		return domain.InvalidRange("from and to are required")
	}
	if to.Before(from) {
		return domain.InvalidRange("to %s is before from %s", to, from)
	}
	if s.maxWindowDays > 0 && calendar.Gap(from, to)+1 > s.maxWindowDays {
		return domain.InvalidRange("window exceeds %d days", s.maxWindowDays)
	}
	return nil
}

// resolve reads [from, to] through the cache. The cache key is taken before the store
// is read so that an invalidation racing the read leaves the stored entry unreachable.
func (s *availabilityService) resolve(ctx context.Context, equipmentID int32, from, to calendar.Date) (*availability.Calendar, bool, error) {
	now := s.clock()
	today := calendar.Today(now)

	var cacheKey string
	if s.cache != nil {
		cal, key, ok := s.cache.Get(ctx, equipmentID, today, from, to)
		if ok {
			return cal, true, nil
		}
		cacheKey = key
	}

	snap, err := s.availRepo.Snapshot(ctx, equipmentID, from, to)
	if err != nil {
		return nil, false, err
	}
	cal := availability.Resolve(snap, from, to, now)
	if s.cache != nil {
		s.cache.Put(ctx, cacheKey, cal)
	}
	return cal, false, nil
}

func (s *availabilityService) ApplySelection(ctx context.Context, equipmentID int32, current []calendar.Date, action SelectionAction, date calendar.Date) (selection.Selection, utils.FeeQuote, error) {
	const method = "availabilityService.ApplySelection"
	logger.EnterMethod(method, "equipmentID", equipmentID, "action", action, "date", date)

	fail := func(err error) (selection.Selection, utils.FeeQuote, error) {
		logger.ExitMethodWithError(method, err, "equipmentID", equipmentID, "action", action)
		return selection.Selection{}, utils.FeeQuote{}, err
	}

	if date.IsZero() {
		return fail(domain.NewValidationError("date is required"))
	}
	eq, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return fail(err)
	}

	sel := selection.New(current...)
	switch action {
	case SelectionSelect:
		// The resolver window covers every date a gap fill could touch. It is not held to
		// the display cap: a selection may span as long as a submission may.
		from, to := date, date
		if start, end, ok := sel.Window(); ok {
			from, to = minDate(from, start), maxDate(to, end.AddDays(-1))
		}
		cal, _, err := s.resolve(ctx, equipmentID, from, to)
		if err != nil {
			return fail(err)
		}
		sel = selection.Select(sel, date, cal.IsAvailable)
	case SelectionDeselect:
		sel = selection.Deselect(sel, date)
	default:
		return fail(domain.NewValidationError("unknown selection action %q", action))
	}

	quote := utils.ComputeFees(sel.Len(), eq)
	logger.ExitMethod(method, "equipmentID", equipmentID, "selected", sel.Len())
	return sel, quote, nil
}

func (s *availabilityService) Quote(ctx context.Context, equipmentID int32, days int) (utils.FeeQuote, error) {
	eq, err := s.equipmentRepo.GetByID(ctx, equipmentID)
	if err != nil {
		return utils.FeeQuote{}, err
	}
	return utils.ComputeFees(days, eq), nil
}

func minDate(a, b calendar.Date) calendar.Date {
	if b.Before(a) {
		return b
	}
	return a
}

func maxDate(a, b calendar.Date) calendar.Date {
	if b.After(a) {
		return b
	}
	return a
}
