package utils

import (
	"agrirent-backend/internal/domain"
)

// FeeQuote is the breakdown shown to a farmer for a selection.
// TotalCents excludes the security deposit, which is disclosed separately.
type FeeQuote struct {
	Days                 int   `json:"days"`
	MachineFeeCents      int64 `json:"machine_fee_cents"`
	DeliveryFeeCents     int64 `json:"delivery_fee_cents"`
	TotalCents           int64 `json:"total_fee_cents"`
	SecurityDepositCents int64 `json:"security_deposit_cents"`
}

// ComputeFees prices selectedDays of equipment at its daily rate plus the flat delivery fee.
// A non-positive day count yields an all-zero quote except for the disclosed deposit.
func ComputeFees(selectedDays int, eq *domain.Equipment) FeeQuote {
	q := FeeQuote{SecurityDepositCents: eq.SecurityDepositCents}
	if selectedDays <= 0 {
		return q
	}

	q.Days = selectedDays
	q.MachineFeeCents = int64(selectedDays) * eq.DailyRateCents
	q.DeliveryFeeCents = eq.DeliveryFeeCents
	q.TotalCents = q.MachineFeeCents + q.DeliveryFeeCents
	return q
}

// ApplyCharges copies a quote onto a rental request. The persisted total includes the deposit.
func ApplyCharges(rt *domain.RentalRequest, q FeeQuote) {
	rt.RentalDurationDays = int32(q.Days)
	rt.MachineFeeCents = q.MachineFeeCents
	rt.DeliveryFeeCents = q.DeliveryFeeCents
	rt.SecurityDepositCents = q.SecurityDepositCents
	rt.TotalAmountCents = q.MachineFeeCents + q.DeliveryFeeCents + q.SecurityDepositCents
}
