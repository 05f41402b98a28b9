package apaleo_test

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
	"hotel_pms/internal/pms/apaleo"
	"hotel_pms/internal/storage/gormstore"
)

const (
	vendorHotel = "851df8c8-90f2-4c4a-8e01-a4fc46b25178"
	otherHotel  = "0a6c4f4e-5b1b-4b2e-9d1c-0e6d5e3c7a11"
)

type mockClient struct{ mock.Mock }

func (m *mockClient) GetReservationDetails(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockClient) GetGuestDetails(ctx context.Context, id string) ([]byte, error) {
	args := m.Called(ctx, id)
	b, _ := args.Get(0).([]byte)
	return b, args.Error(1)
}

func (m *mockClient) GetReservationsForCheckinDate(ctx context.Context, date time.Time) ([]string, error) {
	args := m.Called(ctx, date)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

type fixture struct {
	store  *gormstore.Store
	client *mockClient
	hotel  domain.Hotel
	deps   pms.Deps
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	db, err := gormstore.Open(fmt.Sprintf("file:apaleo_%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	s := gormstore.New(db)
	require.NoError(t, s.AutoMigrate())
	t.Cleanup(func() { _ = s.Close() })

	h, err := s.CreateHotel(context.Background(), domain.Hotel{
		Name: "Hotel 1", City: "Amsterdam", PMS: apaleo.Name, PMSHotelID: vendorHotel,
	})
	require.NoError(t, err)

	c := &mockClient{}
	opts := pms.DefaultOptions()
	opts.RetryWait = time.Millisecond
	return &fixture{
		store:  s,
		client: c,
		hotel:  h,
		deps: pms.Deps{
			Store:   s,
			Client:  c,
			Locker:  app.NewLocalLocker(),
			Options: opts,
		},
	}
}

func (f *fixture) reconciler() *apaleo.Reconciler { return apaleo.NewReconciler(f.hotel, f.deps) }

func webhookData(t *testing.T, hotelID string, reservationIDs ...string) map[string]any {
	t.Helper()
	events := make([]map[string]any, 0, len(reservationIDs))
	for _, id := range reservationIDs {
		events = append(events, map[string]any{"Name": "ReservationUpdated", "Value": map[string]any{"ReservationId": id}})
	}
	b, err := json.Marshal(map[string]any{"HotelId": hotelID, "IdSequence": 1, "Events": events})
	require.NoError(t, err)
	var out map[string]any
	require.NoError(t, json.Unmarshal(b, &out))
	return out
}

func reservationJSON(hotelID, resID, guestID, status, in, out string) []byte {
	b, _ := json.Marshal(map[string]string{
		"HotelId": hotelID, "ReservationId": resID, "GuestId": guestID,
		"Status": status, "CheckInDate": in, "CheckOutDate": out,
	})
	return b
}

func guestJSON(guestID, phone, name, country string) []byte {
	b, _ := json.Marshal(map[string]string{"GuestId": guestID, "Phone": phone, "Name": name, "Country": country})
	return b
}
