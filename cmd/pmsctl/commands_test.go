package main

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hotel_pms/internal/domain"
	"hotel_pms/internal/storage"
)

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := rootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestMigrateAndAddHotel(t *testing.T) {
	dsn := "file:pmsctl_hotels?mode=memory&cache=shared"
	t.Setenv("STORE_DSN", dsn)

	// keep the in-memory database alive across commands
	keep, err := storage.Open(context.Background(), dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keep.Close() })

	out, err := run(t, "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema up to date (gorm)")

	out, err = run(t, "hotels", "add", "--name", "Hotel 1", "--city", "Amsterdam",
		"--pms", "Apaleo", "--pms-hotel-id", "851DF8C8-90F2-4C4A-8E01-A4FC46B25178")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "hotel "), out)

	h, err := keep.FindHotelByPMSID(context.Background(), "apaleo", "851df8c8-90f2-4c4a-8e01-a4fc46b25178")
	require.NoError(t, err)
	assert.Equal(t, "Hotel 1", h.Name)
}

func TestAddHotel_UnknownPMS(t *testing.T) {
	_, err := run(t, "hotels", "add", "--name", "X", "--pms", "opera", "--pms-hotel-id", "1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown pms")
}

func TestCheckins_BadDate(t *testing.T) {
	_, err := run(t, "checkins", "--date", "05/01/2024")
	assert.Error(t, err)
}

func TestReplay_RequiresFile(t *testing.T) {
	_, err := run(t, "replay", "--pms", "apaleo")
	assert.Error(t, err)
}

func TestStatsAndStaysShow(t *testing.T) {
	dsn := "file:pmsctl_stats?mode=memory&cache=shared"
	t.Setenv("STORE_DSN", dsn)
	ctx := context.Background()

	keep, err := storage.Open(ctx, dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = keep.Close() })
	require.NoError(t, keep.Migrate(ctx, ""))

	h, err := keep.CreateHotel(ctx, domain.Hotel{Name: "Hotel 1", PMS: "apaleo", PMSHotelID: "x"})
	require.NoError(t, err)
	g, err := keep.CreateGuest(ctx, domain.Guest{Name: "Ana", Phone: "+3161"})
	require.NoError(t, err)
	_, err = keep.UpsertStay(ctx, domain.Stay{
		HotelID: h.ID, GuestID: g.ID, PMSReservationID: "R-1", PMSGuestID: "G-1", Status: domain.StayBefore,
		CheckIn:  time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		CheckOut: time.Date(2024, 5, 3, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	out, err := run(t, "stats")
	require.NoError(t, err)
	assert.Contains(t, out, "guests: 1")
	assert.Contains(t, out, "stays (all hotels): 1")

	out, err = run(t, "stats", "--hotel-id", "999")
	require.NoError(t, err)
	assert.Contains(t, out, "stays (hotel 999): 0")

	out, err = run(t, "stays", "show", "--reservation", "R-1")
	require.NoError(t, err)
	assert.Contains(t, out, "BEFORE 2024-05-01..2024-05-03 (pms guest G-1)")

	_, err = run(t, "stays", "show", "--reservation", "R-404")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no stay for reservation")
}
