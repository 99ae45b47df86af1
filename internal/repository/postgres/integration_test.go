//go:build integration

package postgres

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"sync"
	"testing"
	"time"

	"agrirent-backend/internal/availability"
	"agrirent-backend/internal/calendar"
	"agrirent-backend/internal/domain"

	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// prepareDB connects to AGRIRENT_TEST_DATABASE_URL, retrying while the database starts up.
func prepareDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("AGRIRENT_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("AGRIRENT_TEST_DATABASE_URL not set")
	}

	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				break
			}
		}
		time.Sleep(2 * time.Second)
	}
	require.NoError(t, err, "failed to connect to database")
	t.Cleanup(func() { db.Close() })

	require.NoError(t, Migrate(context.Background(), db))
	return db
}

func TestIntegration_ConcurrentSubmissionsNeverDoubleBook(t *testing.T) {
	db := prepareDB(t)
	store := NewStore(db)
	ctx := context.Background()

	eq := &domain.Equipment{
		Name:           "Combine harvester",
		Category:       "harvester",
		DailyRateCents: 25000,
		CurrentStatus:  domain.EquipmentStatusAvailable,
		IsAvailable:    true,
	}
	require.NoError(t, store.EquipmentRepository.Create(ctx, eq))

	now := time.Now().UTC()
	start := calendar.Today(now).AddDays(200)
	end := start.AddDays(3)

	const farmers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < farmers; i++ {
		wg.Add(1)
		go func(farmerID int32) {
			defer wg.Done()
			rt := &domain.RentalRequest{
				EquipmentID:     eq.ID,
				FarmerID:        farmerID,
				StartDate:       start.AddDays(int(farmerID) % 2),
				EndDate:         end,
				ReceiverName:    "Receiver",
				ReceiverPhone:   "+15550100",
				DeliveryAddress: "Field 9",
				Status:          domain.RentalStatusPending,
			}
			_, err := store.RentalRepository.CreateIfAvailable(ctx, rt, func(snap *domain.AvailabilitySnapshot) error {
				return availability.Verify(snap, rt.StartDate, rt.EndDate, now)
			})

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case errors.Is(err, domain.ErrDateUnavailable):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(int32(1000 + i))
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, farmers-1, conflicts)

	snap, err := store.AvailabilityRepository.Snapshot(ctx, eq.ID, start, end)
	require.NoError(t, err)
	assert.Len(t, snap.Blocking, 1)
}
