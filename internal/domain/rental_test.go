package domain

import (
	"errors"
	"testing"

	"agrirent-backend/internal/calendar"

	"github.com/stretchr/testify/assert"
)

func TestNextStatus(t *testing.T) {
	tests := []struct {
		from    RentalStatus
		event   RentalEvent
		want    RentalStatus
		wantErr bool
	}{
		{RentalStatusPending, RentalEventApprove, RentalStatusApproved, false},
		{RentalStatusPending, RentalEventReject, RentalStatusRejected, false},
		{RentalStatusPending, RentalEventCancel, RentalStatusCancelled, false},
		{RentalStatusApproved, RentalEventConfirmPickup, RentalStatusActive, false},
		{RentalStatusActive, RentalEventConfirmReturn, RentalStatusReturned, false},

		{RentalStatusApproved, RentalEventApprove, "", true},
		{RentalStatusApproved, RentalEventCancel, "", true},
		{RentalStatusActive, RentalEventCancel, "", true},
		{RentalStatusRejected, RentalEventConfirmPickup, "", true},
		{RentalStatusPending, RentalEventConfirmPickup, "", true},
		{RentalStatusApproved, RentalEventConfirmReturn, "", true},
		{RentalStatusReturned, RentalEventConfirmReturn, "", true},
		{RentalStatusCancelled, RentalEventApprove, "", true},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_"+string(tt.event), func(t *testing.T) {
			got, err := NextStatus(tt.from, tt.event)
			if tt.wantErr {
				assert.True(t, errors.Is(err, ErrInvalidStateTransition))
				var te *TransitionError
				assert.True(t, errors.As(err, &te))
				assert.Equal(t, tt.from, te.From)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRentalStatus_Blocks(t *testing.T) {
	assert.True(t, RentalStatusPending.Blocks())
	assert.True(t, RentalStatusApproved.Blocks())
	assert.True(t, RentalStatusActive.Blocks())
	assert.False(t, RentalStatusRejected.Blocks())
	assert.False(t, RentalStatusCancelled.Blocks())
	assert.False(t, RentalStatusCompleted.Blocks())
	assert.False(t, RentalStatusReturned.Blocks())
}

func TestRentalRequest_Window(t *testing.T) {
	rt := &RentalRequest{StartDate: calendar.MustParse("2024-05-10"), EndDate: calendar.MustParse("2024-05-13")}

	assert.Len(t, rt.HeldDates(), 3)
	assert.True(t, rt.Holds(calendar.MustParse("2024-05-10")))
	assert.True(t, rt.Holds(calendar.MustParse("2024-05-12")))
	assert.False(t, rt.Holds(calendar.MustParse("2024-05-13")), "end date is exclusive")

	assert.True(t, rt.Overlaps(calendar.MustParse("2024-05-12"), calendar.MustParse("2024-05-20")))
	assert.False(t, rt.Overlaps(calendar.MustParse("2024-05-13"), calendar.MustParse("2024-05-20")))
	assert.False(t, rt.Overlaps(calendar.MustParse("2024-05-01"), calendar.MustParse("2024-05-10")))
}

func TestUnavailableDatesError(t *testing.T) {
	d := calendar.MustParse("2024-05-11")
	err := &UnavailableDatesError{Dates: []calendar.Date{d}, Reasons: map[calendar.Date]string{d: "booked"}}

	assert.True(t, errors.Is(err, ErrDateUnavailable))
	assert.Contains(t, err.Error(), "2024-05-11 (booked)")
}
