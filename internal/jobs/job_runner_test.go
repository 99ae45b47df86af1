package jobs

import (
	"context"
	"errors"
	"testing"

	"agrirent-backend/internal/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type MockReminderService struct {
	mock.Mock
}

func (m *MockReminderService) SendPickupReminders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockReminderService) SendReturnReminders(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
func (m *MockReminderService) FlagOverdueRentals(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}

func TestJobRunner_RunAllDailyJobs(t *testing.T) {
	reminders := new(MockReminderService)
	reminders.On("FlagOverdueRentals", mock.Anything).Return(1, nil).Once()
	reminders.On("SendReturnReminders", mock.Anything).Return(0, errors.New("db down")).Once()
	reminders.On("SendPickupReminders", mock.Anything).Return(3, nil).Once()

	jr := NewJobRunner(reminders, &config.Config{})
	jr.RunAllDailyJobs()

	reminders.AssertExpectations(t)
}

func TestJobRunner_RecoversFromPanic(t *testing.T) {
	reminders := new(MockReminderService)
	reminders.On("SendPickupReminders", mock.Anything).Run(func(mock.Arguments) {
		panic("boom")
	}).Return(0, nil)

	jr := NewJobRunner(reminders, &config.Config{})
	assert.NotPanics(t, jr.SendPickupReminders)
}

func TestJobRunner_PassesDeadline(t *testing.T) {
	reminders := new(MockReminderService)
	reminders.On("FlagOverdueRentals", mock.MatchedBy(func(ctx context.Context) bool {
		_, ok := ctx.Deadline()
		return ok
	})).Return(0, nil).Once()

	NewJobRunner(reminders, &config.Config{}).FlagOverdueRentals()
	reminders.AssertExpectations(t)
}

func TestJobRunner_Lookup(t *testing.T) {
	reminders := new(MockReminderService)
	reminders.On("SendReturnReminders", mock.Anything).Return(2, nil).Once()
	jr := NewJobRunner(reminders, &config.Config{})

	for _, name := range Names() {
		_, ok := jr.Lookup(name)
		assert.True(t, ok, name)
	}
	_, ok := jr.Lookup("rebuild-index")
	assert.False(t, ok)

	run, _ := jr.Lookup("return-reminders")
	run()
	reminders.AssertExpectations(t)
}
