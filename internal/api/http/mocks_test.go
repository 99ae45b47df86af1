package http

import (
	"context"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/selection"
	"agrirent-backend/internal/service"
	"agrirent-backend/internal/utils"

	"github.com/stretchr/testify/mock"
)

type MockAvailabilityService struct {
	mock.Mock
}

func (m *MockAvailabilityService) GetAvailability(ctx context.Context, equipmentID int32, from, to calendar.Date) (*availability.Calendar, error) {
	args := m.Called(ctx, equipmentID, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*availability.Calendar), args.Error(1)
}
func (m *MockAvailabilityService) ApplySelection(ctx context.Context, equipmentID int32, current []calendar.Date, action service.SelectionAction, date calendar.Date) (selection.Selection, utils.FeeQuote, error) {
	args := m.Called(ctx, equipmentID, current, action, date)
	return args.Get(0).(selection.Selection), args.Get(1).(utils.FeeQuote), args.Error(2)
}
func (m *MockAvailabilityService) Quote(ctx context.Context, equipmentID int32, days int) (utils.FeeQuote, error) {
	args := m.Called(ctx, equipmentID, days)
	return args.Get(0).(utils.FeeQuote), args.Error(1)
}

type MockEquipmentService struct {
	mock.Mock
}

func (m *MockEquipmentService) CreateEquipment(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentService) GetEquipment(ctx context.Context, id int32) (*domain.Equipment, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Equipment), args.Error(1)
}
func (m *MockEquipmentService) UpdateEquipment(ctx context.Context, eq *domain.Equipment) error {
	args := m.Called(ctx, eq)
	return args.Error(0)
}
func (m *MockEquipmentService) ListEquipment(ctx context.Context, category string, page, pageSize int32) ([]domain.Equipment, int32, error) {
	args := m.Called(ctx, category, page, pageSize)
	return args.Get(0).([]domain.Equipment), args.Get(1).(int32), args.Error(2)
}
func (m *MockEquipmentService) SetOverride(ctx context.Context, adminID int32, o *domain.AvailabilityOverride) error {
	args := m.Called(ctx, adminID, o)
	return args.Error(0)
}
func (m *MockEquipmentService) ListOverrides(ctx context.Context, equipmentID int32, from, to calendar.Date) ([]domain.AvailabilityOverride, error) {
	args := m.Called(ctx, equipmentID, from, to)
	return args.Get(0).([]domain.AvailabilityOverride), args.Error(1)
}

type MockRentalService struct {
	mock.Mock
}

func (m *MockRentalService) SubmitRentalRequest(ctx context.Context, farmerID int32, in service.SubmitRentalInput) (*domain.RentalRequest, bool, error) {
	args := m.Called(ctx, farmerID, in)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*domain.RentalRequest), args.Bool(1), args.Error(2)
}
func (m *MockRentalService) GetRentalRequest(ctx context.Context, actor service.Actor, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, actor, id)
	return rentalOrNil(args)
}
func (m *MockRentalService) ApproveRentalRequest(ctx context.Context, adminID, id int32, adminNotes string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, adminID, id, adminNotes)
	return rentalOrNil(args)
}
func (m *MockRentalService) RejectRentalRequest(ctx context.Context, adminID, id int32, reason, adminNotes string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, adminID, id, reason, adminNotes)
	return rentalOrNil(args)
}
func (m *MockRentalService) CancelRentalRequest(ctx context.Context, farmerID, id int32) (*domain.RentalRequest, error) {
	args := m.Called(ctx, farmerID, id)
	return rentalOrNil(args)
}
func (m *MockRentalService) ConfirmPickup(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, adminID, id, credential)
	return rentalOrNil(args)
}
func (m *MockRentalService) ConfirmReturn(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error) {
	args := m.Called(ctx, adminID, id, credential)
	return rentalOrNil(args)
}
func (m *MockRentalService) IssueCredentials(ctx context.Context, id int32) (*service.Credentials, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Credentials), args.Error(1)
}
func (m *MockRentalService) ListMyRentalRequests(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, farmerID, status, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) ListRentalRequests(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	args := m.Called(ctx, filter, page, pageSize)
	return args.Get(0).([]domain.RentalRequest), args.Get(1).(int32), args.Error(2)
}
func (m *MockRentalService) ExportRentalRequests(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalRequest, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]domain.RentalRequest), args.Error(1)
}

func rentalOrNil(args mock.Arguments) (*domain.RentalRequest, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.RentalRequest), args.Error(1)
}
