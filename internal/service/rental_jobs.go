package service

import (
	"context"

	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/repository"
)

type reminderService struct {
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	events        EventPublisher
	clock         Clock
}

func NewReminderService(rentalRepo repository.RentalRepository, equipmentRepo repository.EquipmentRepository, events EventPublisher, clock Clock) ReminderService {
	return &reminderService{
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		events:        events,
		clock:         clock,
	}
}

// SendPickupReminders notifies approved requests that start tomorrow.
func (s *reminderService) SendPickupReminders(ctx context.Context) (int, error) {
	tomorrow := calendar.Today(s.clock()).AddDays(1)
	logger.EnterMethod("reminderService.SendPickupReminders", "startDate", tomorrow)

	rentals, err := s.rentalRepo.ListByStatusAndStart(ctx, domain.RentalStatusApproved, tomorrow)
	if err != nil {
		logger.ExitMethodWithError("reminderService.SendPickupReminders", err)
		return 0, err
	}
	s.notifyAll(ctx, notification.EventPickupReminder, rentals)

	logger.ExitMethod("reminderService.SendPickupReminders", "count", len(rentals))
	return len(rentals), nil
}

// SendReturnReminders notifies active requests whose last held day is today.
func (s *reminderService) SendReturnReminders(ctx context.Context) (int, error) {
	end := calendar.Today(s.clock()).AddDays(1)
	logger.EnterMethod("reminderService.SendReturnReminders", "endDate", end)

	rentals, err := s.rentalRepo.ListByStatusAndEnd(ctx, domain.RentalStatusActive, end)
	if err != nil {
		logger.ExitMethodWithError("reminderService.SendReturnReminders", err)
		return 0, err
	}
	s.notifyAll(ctx, notification.EventReturnReminder, rentals)

	logger.ExitMethod("reminderService.SendReturnReminders", "count", len(rentals))
	return len(rentals), nil
}

// FlagOverdueRentals reports active requests whose window has closed. Status is left alone.
func (s *reminderService) FlagOverdueRentals(ctx context.Context) (int, error) {
	today := calendar.Today(s.clock())
	logger.EnterMethod("reminderService.FlagOverdueRentals", "today", today)

	rentals, err := s.rentalRepo.ListOverdue(ctx, today)
	if err != nil {
		logger.ExitMethodWithError("reminderService.FlagOverdueRentals", err)
		return 0, err
	}
	for _, rt := range rentals {
		logger.Warn("Rental overdue", "rentalID", rt.ID, "equipmentID", rt.EquipmentID, "endDate", rt.EndDate,
			"daysLate", calendar.Gap(rt.EndDate, today)+1)
	}
	s.notifyAll(ctx, notification.EventOverdue, rentals)

	logger.ExitMethod("reminderService.FlagOverdueRentals", "count", len(rentals))
	return len(rentals), nil
}

func (s *reminderService) notifyAll(ctx context.Context, t notification.EventType, rentals []domain.RentalRequest) {
	if s.events == nil {
		return
	}
	equipment := make(map[int32]*domain.Equipment)
	for i := range rentals {
		rt := &rentals[i]
		eq, ok := equipment[rt.EquipmentID]
		if !ok {
			var err error
			eq, err = s.equipmentRepo.GetByID(ctx, rt.EquipmentID)
			if err != nil {
				logger.Warn("Equipment lookup for reminder failed", "equipmentID", rt.EquipmentID, "error", err)
			}
			equipment[rt.EquipmentID] = eq
		}
		s.events.Dispatch(notification.NewEvent(t, rt, eq))
	}
}
