package service

import (
	"context"
	"strings"
	"errors"
	"fmt"
	"time"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/cache"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"
	"agrirent-backend/internal/logger"
	"agrirent-backend/internal/metrics"
	"agrirent-backend/internal/notification"
	"agrirent-backend/internal/repository"
	"agrirent-backend/internal/security"
	"agrirent-backend/internal/selection"
	"agrirent-backend/internal/utils"
)

const exportPageSize = 500

type rentalService struct {
	rentalRepo    repository.RentalRepository
	equipmentRepo repository.EquipmentRepository
	issuer        security.CredentialIssuer
	cache         cache.AvailabilityCache
	events        EventPublisher
	clock         Clock
}

func NewRentalService(
	rentalRepo repository.RentalRepository,
	equipmentRepo repository.EquipmentRepository,
	issuer security.CredentialIssuer,
	availabilityCache cache.AvailabilityCache,
	events EventPublisher,
	clock Clock,
) RentalService {
	return &rentalService{
		rentalRepo:    rentalRepo,
		equipmentRepo: equipmentRepo,
		issuer:        issuer,
		cache:         availabilityCache,
		events:        events,
		clock:         clock,
	}
}

func (s *rentalService) SubmitRentalRequest(ctx context.Context, farmerID int32, in SubmitRentalInput) (*domain.RentalRequest, bool, error) {
	logger.EnterMethod("rentalService.SubmitRentalRequest", "farmerID", farmerID, "equipmentID", in.EquipmentID,
		"start", in.StartDate, "end", in.EndDate)

	now := s.clock()
	billedDays, err := validateSubmission(in, now)
	if err != nil {
		metrics.IncRentalSubmitted("invalid")
		logger.ExitMethodWithError("rentalService.SubmitRentalRequest", err, "farmerID", farmerID)
		return nil, false, err
	}

	eq, err := s.equipmentRepo.GetByID(ctx, in.EquipmentID)
	if err != nil {
		metrics.IncRentalSubmitted("error")
		logger.ExitMethodWithError("rentalService.SubmitRentalRequest", err, "equipmentID", in.EquipmentID)
		return nil, false, err
	}

	rt := &domain.RentalRequest{
		EquipmentID:     in.EquipmentID,
		FarmerID:        farmerID,
		StartDate:       in.StartDate,
		EndDate:         in.EndDate,
		ReceiverName:    in.ReceiverName,
		ReceiverPhone:   in.ReceiverPhone,
		DeliveryAddress: in.DeliveryAddress,
		Location:        in.Location,
		Notes:           in.Notes,
		Status:          domain.RentalStatusPending,
		IdempotencyKey:  in.IdempotencyKey,
	}
	utils.ApplyCharges(rt, utils.ComputeFees(billedDays, eq))

	// The whole held window is re-resolved under the equipment row lock, not only the billed days.
	replayed, err := s.rentalRepo.CreateIfAvailable(ctx, rt, func(snap *domain.AvailabilitySnapshot) error {
		return availability.Verify(snap, rt.StartDate, rt.EndDate, now)
	})
	if err != nil {
		if errors.Is(err, domain.ErrDateUnavailable) {
			metrics.IncRentalSubmitted("unavailable")
		} else {
			metrics.IncRentalSubmitted("error")
		}
		logger.ExitMethodWithError("rentalService.SubmitRentalRequest", err, "farmerID", farmerID, "equipmentID", in.EquipmentID)
		return nil, false, err
	}

	if replayed {
		metrics.IncRentalSubmitted("replayed")
		logger.ExitMethod("rentalService.SubmitRentalRequest", "rentalID", rt.ID, "replayed", true)
		return rt, true, nil
	}

	metrics.IncRentalSubmitted("created")
	logger.Transition(rt.ID, "", string(rt.Status), farmerID, "equipment_id", rt.EquipmentID)
	s.invalidate(ctx, rt.EquipmentID)
	s.publish(notification.EventSubmitted, rt, eq)

	logger.ExitMethod("rentalService.SubmitRentalRequest", "rentalID", rt.ID, "days", rt.RentalDurationDays,
		"totalCents", rt.TotalAmountCents)
	return rt, false, nil
}

// validateSubmission checks the window and returns the number of billed days.
func validateSubmission(in SubmitRentalInput, now time.Time) (int, error) {
	if in.EquipmentID <= 0 {
		return 0, domain.NewValidationError("equipment_id is required")
	}
	if in.ReceiverName == "" || in.ReceiverPhone == "" || in.DeliveryAddress == "" {
		return 0, domain.NewValidationError("receiver_name, receiver_phone and delivery_address are required")
	}
	if in.StartDate.IsZero() || in.EndDate.IsZero() {
		return 0, domain.InvalidRange("start_date and end_date are required")
	}
	if !in.StartDate.Before(in.EndDate) {
		return 0, domain.InvalidRange("end_date %s must be after start_date %s", in.EndDate, in.StartDate)
	}
	if calendar.IsPast(in.StartDate, now) {
		return 0, domain.InvalidRange("start_date %s is in the past", in.StartDate)
	}

	if len(in.SelectedDates) == 0 {
		return calendar.Gap(in.StartDate, in.EndDate), nil
	}
	sel := selection.New(in.SelectedDates...)
	for _, d := range sel.Dates() {
		if d.Before(in.StartDate) || !d.Before(in.EndDate) {
			return 0, domain.InvalidRange("selected date %s is outside [%s, %s)", d, in.StartDate, in.EndDate)
		}
	}
	return sel.Len(), nil
}

func (s *rentalService) GetRentalRequest(ctx context.Context, actor Actor, id int32) (*domain.RentalRequest, error) {
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !actor.Admin && rt.FarmerID != actor.UserID {
		return nil, domain.ErrForbidden
	}
	return rt, nil
}

func (s *rentalService) ApproveRentalRequest(ctx context.Context, adminID, id int32, adminNotes string) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.ApproveRentalRequest", "adminID", adminID, "rentalID", id)

	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("rentalService.ApproveRentalRequest", err, "rentalID", id)
		return nil, err
	}
	to, err := domain.NextStatus(rt.Status, domain.RentalEventApprove)
	if err != nil {
		logger.ExitMethodWithError("rentalService.ApproveRentalRequest", err, "rentalID", id, "status", rt.Status)
		return nil, err
	}

	if err := s.issuer.Prepare(rt); err != nil {
		logger.ExitMethodWithError("rentalService.ApproveRentalRequest", err, "rentalID", id)
		return nil, err
	}
	now := s.clock()
	rt.ApprovedBy = &adminID
	rt.ApprovedAt = &now
	if adminNotes != "" {
		rt.AdminNotes = adminNotes
	}

	if err := s.transition(ctx, rt, to, adminID); err != nil {
		logger.ExitMethodWithError("rentalService.ApproveRentalRequest", err, "rentalID", id)
		return nil, err
	}
	logger.ExitMethod("rentalService.ApproveRentalRequest", "rentalID", id)
	return rt, nil
}

func (s *rentalService) RejectRentalRequest(ctx context.Context, adminID, id int32, reason, adminNotes string) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.RejectRentalRequest", "adminID", adminID, "rentalID", id)

	if strings.TrimSpace(reason) == "" {
		err := domain.NewValidationError("rejection reason is required")
		logger.ExitMethodWithError("rentalService.RejectRentalRequest", err, "rentalID", id)
		return nil, err
	}
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("rentalService.RejectRentalRequest", err, "rentalID", id)
		return nil, err
	}
	to, err := domain.NextStatus(rt.Status, domain.RentalEventReject)
	if err != nil {
		logger.ExitMethodWithError("rentalService.RejectRentalRequest", err, "rentalID", id, "status", rt.Status)
		return nil, err
	}

	rt.RejectionReason = reason
	if adminNotes != "" {
		rt.AdminNotes = adminNotes
	}
	if err := s.transition(ctx, rt, to, adminID); err != nil {
		logger.ExitMethodWithError("rentalService.RejectRentalRequest", err, "rentalID", id)
		return nil, err
	}
	logger.ExitMethod("rentalService.RejectRentalRequest", "rentalID", id)
	return rt, nil
}

func (s *rentalService) CancelRentalRequest(ctx context.Context, farmerID, id int32) (*domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.CancelRentalRequest", "farmerID", farmerID, "rentalID", id)

	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CancelRentalRequest", err, "rentalID", id)
		return nil, err
	}
	if rt.FarmerID != farmerID {
		logger.ExitMethodWithError("rentalService.CancelRentalRequest", domain.ErrForbidden, "rentalID", id)
		return nil, domain.ErrForbidden
	}
	to, err := domain.NextStatus(rt.Status, domain.RentalEventCancel)
	if err != nil {
		logger.ExitMethodWithError("rentalService.CancelRentalRequest", err, "rentalID", id, "status", rt.Status)
		return nil, err
	}
	if err := s.transition(ctx, rt, to, farmerID); err != nil {
		logger.ExitMethodWithError("rentalService.CancelRentalRequest", err, "rentalID", id)
		return nil, err
	}
	logger.ExitMethod("rentalService.CancelRentalRequest", "rentalID", id)
	return rt, nil
}

func (s *rentalService) ConfirmPickup(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error) {
	return s.confirm(ctx, "rentalService.ConfirmPickup", adminID, id, credential,
		domain.CredentialPurposePickup, domain.RentalEventConfirmPickup)
}

func (s *rentalService) ConfirmReturn(ctx context.Context, adminID, id int32, credential string) (*domain.RentalRequest, error) {
	return s.confirm(ctx, "rentalService.ConfirmReturn", adminID, id, credential,
		domain.CredentialPurposeReturn, domain.RentalEventConfirmReturn)
}

func (s *rentalService) confirm(ctx context.Context, method string, adminID, id int32, credential string,
	purpose domain.CredentialPurpose, event domain.RentalEvent) (*domain.RentalRequest, error) {
	logger.EnterMethod(method, "adminID", adminID, "rentalID", id)

	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", id)
		return nil, err
	}

	fail := func(result string, err error) (*domain.RentalRequest, error) {
		metrics.IncCredentialCheck(string(purpose), result)
		logger.CredentialCheck(id, string(purpose), result, adminID)
		logger.ExitMethodWithError(method, err, "rentalID", id, "status", rt.Status)
		return nil, err
	}

	if err := s.issuer.CheckBinding(credential, rt, purpose); err != nil {
		return fail("invalid", err)
	}
	if rt.CredentialConsumed(purpose) {
		return fail("consumed", domain.ErrCredentialAlreadyConsumed)
	}
	to, err := domain.NextStatus(rt.Status, event)
	if err != nil {
		return fail("state", err)
	}
	if err := s.issuer.Verify(credential, rt, purpose); err != nil {
		return fail("invalid", err)
	}

	now := s.clock()
	if purpose == domain.CredentialPurposePickup {
		rt.PickupConfirmedAt = &now
	} else {
		rt.ReturnConfirmedAt = &now
	}
	if err := s.transition(ctx, rt, to, adminID); err != nil {
		logger.ExitMethodWithError(method, err, "rentalID", id)
		return nil, err
	}
	metrics.IncCredentialCheck(string(purpose), "ok")
	logger.CredentialCheck(id, string(purpose), "ok", adminID)
	logger.ExitMethod(method, "rentalID", id, "status", rt.Status)
	return rt, nil
}

func (s *rentalService) IssueCredentials(ctx context.Context, id int32) (*Credentials, error) {
	rt, err := s.rentalRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	creds := &Credentials{}
	switch rt.Status {
	case domain.RentalStatusApproved:
		if creds.Pickup, err = s.issuer.Issue(rt, domain.CredentialPurposePickup); err != nil {
			return nil, err
		}
		fallthrough
	case domain.RentalStatusActive:
		if creds.Return, err = s.issuer.Issue(rt, domain.CredentialPurposeReturn); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: a %s request has no open credentials", domain.ErrInvalidStateTransition, rt.Status)
	}
	return creds, nil
}

func (s *rentalService) ListMyRentalRequests(ctx context.Context, farmerID int32, status domain.RentalStatus, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	if status != "" && !status.Valid() {
		return nil, 0, domain.NewValidationError("unknown status %q", status)
	}
	return s.rentalRepo.ListByFarmer(ctx, farmerID, status, page, pageSize)
}

func (s *rentalService) ListRentalRequests(ctx context.Context, filter domain.RentalFilter, page, pageSize int32) ([]domain.RentalRequest, int32, error) {
	if filter.Status != "" && !filter.Status.Valid() {
		return nil, 0, domain.NewValidationError("unknown status %q", filter.Status)
	}
	return s.rentalRepo.List(ctx, filter, page, pageSize)
}

func (s *rentalService) ExportRentalRequests(ctx context.Context, filter domain.RentalFilter) ([]domain.RentalRequest, error) {
	logger.EnterMethod("rentalService.ExportRentalRequests", "from", filter.From, "to", filter.To)

	var all []domain.RentalRequest
	for page := int32(1); ; page++ {
		batch, total, err := s.ListRentalRequests(ctx, filter, page, exportPageSize)
		if err != nil {
			logger.ExitMethodWithError("rentalService.ExportRentalRequests", err)
			return nil, err
		}
		all = append(all, batch...)
		if len(batch) == 0 || int32(len(all)) >= total {
			break
		}
	}

	logger.ExitMethod("rentalService.ExportRentalRequests", "count", len(all))
	return all, nil
}

// transition persists rt in status to, provided nobody moved it since it was read.
func (s *rentalService) transition(ctx context.Context, rt *domain.RentalRequest, to domain.RentalStatus, actorID int32) error {
	from := rt.Status
	rt.Status = to
	if err := s.rentalRepo.Transition(ctx, rt, from); err != nil {
		rt.Status = from
		return err
	}

	metrics.IncTransition(string(from), string(to))
	logger.Transition(rt.ID, string(from), string(to), actorID)
	if from.Blocks() != to.Blocks() {
		s.invalidate(ctx, rt.EquipmentID)
	}
	if ev, ok := notification.EventForStatus(to); ok {
		eq, err := s.equipmentRepo.GetByID(ctx, rt.EquipmentID)
		if err != nil {
			logger.Warn("Equipment lookup for notification failed", "equipmentID", rt.EquipmentID, "error", err)
		}
		s.publish(ev, rt, eq)
	}
	return nil
}

func (s *rentalService) invalidate(ctx context.Context, equipmentID int32) {
	if s.cache != nil {
		s.cache.Invalidate(ctx, equipmentID)
	}
}

func (s *rentalService) publish(t notification.EventType, rt *domain.RentalRequest, eq *domain.Equipment) {
	if s.events != nil {
		s.events.Dispatch(notification.NewEvent(t, rt, eq))
	}
}
