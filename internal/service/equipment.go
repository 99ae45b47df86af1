package service

import (
	"context"

	"agrirent-backend/internal/cache"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/repository"
)

type equipmentService struct {
	equipmentRepo repository.EquipmentRepository
	overrideRepo  repository.OverrideRepository
	cache         cache.AvailabilityCache
}

func NewEquipmentService(equipmentRepo repository.EquipmentRepository, overrideRepo repository.OverrideRepository, availabilityCache cache.AvailabilityCache) EquipmentService {
	return &equipmentService{
		equipmentRepo: equipmentRepo,
		overrideRepo:  overrideRepo,
		cache:         availabilityCache,
	}
}

func (s *equipmentService) CreateEquipment(ctx context.Context, eq *domain.Equipment) error {
	logger.EnterMethod("equipmentService.CreateEquipment", "name", eq.Name)
	if err := eq.Validate(); err != nil {
		logger.ExitMethodWithError("equipmentService.CreateEquipment", err)
		return err
	}
	if err := s.equipmentRepo.Create(ctx, eq); err != nil {
		logger.ExitMethodWithError("equipmentService.CreateEquipment", err)
		return err
	}
	logger.ExitMethod("equipmentService.CreateEquipment", "equipmentID", eq.ID)
	return nil
}

func (s *equipmentService) GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error) {
	return s.equipmentRepo.GetByID(ctx, id)
}

func (s *equipmentService) UpdateEquipment(ctx context.Context, eq *domain.Equipment) error {
	logger.EnterMethod("equipmentService.UpdateEquipment", "equipmentID", eq.ID)
	if err := eq.Validate(); err != nil {
		logger.ExitMethodWithError("equipmentService.UpdateEquipment", err, "equipmentID", eq.ID)
		return err
	}
	if err := s.equipmentRepo.Update(ctx, eq); err != nil {
		logger.ExitMethodWithError("equipmentService.UpdateEquipment", err, "equipmentID", eq.ID)
		return err
	}
	s.invalidate(ctx, eq.ID)
	logger.ExitMethod("equipmentService.UpdateEquipment", "equipmentID", eq.ID, "isAvailable", eq.IsAvailable)
	return nil
}

func (s *equipmentService) ListEquipment(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	return s.equipmentRepo.List(ctx, category, page, pageSize)
}

func (s *equipmentService) SetOverride(ctx context.Context, adminID int32, o *domain.AvailabilityOverride) error {
	logger.EnterMethod("equipmentService.SetOverride", "equipmentID", o.EquipmentID, "date", o.Date, "isAvailable", o.IsAvailable)
	if o.Date.IsZero() {
		err := domain.NewValidationError("date is required")
		logger.ExitMethodWithError("equipmentService.SetOverride", err, "equipmentID", o.EquipmentID)
		return err
	}
	if _, err := s.equipmentRepo.GetByID(ctx, o.EquipmentID); err != nil {
		logger.ExitMethodWithError("equipmentService.SetOverride", err, "equipmentID", o.EquipmentID)
		return err
	}
	o.CreatedBy = adminID
	if err := s.overrideRepo.Upsert(ctx, o); err != nil {
		logger.ExitMethodWithError("equipmentService.SetOverride", err, "equipmentID", o.EquipmentID)
		return err
	}
	s.invalidate(ctx, o.EquipmentID)
	logger.ExitMethod("equipmentService.SetOverride", "overrideID", o.ID)
	return nil
}

func (s *equipmentService) ListOverrides(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error) {
	if to.Before(from) {
		return nil, domain.InvalidRange("to %s is before from %s", to, from)
	}
	return s.overrideRepo.ListByEquipment(ctx, equipmentID, from, to)
}

func (s *equipmentService) invalidate(ctx context.Context, equipmentID int32) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, equipmentID)
	}
}
