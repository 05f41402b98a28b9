package domain

import (
	"context"
	"time"
)

type HotelRepository interface {
	GetHotel(ctx context.Context, id int64) (Hotel, error)
	// FindHotelByPMSID returns the first hotel registered for (pms, pmsHotelID).
	FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (Hotel, error)
	CreateHotel(ctx context.Context, h Hotel) (Hotel, error)
}

type GuestRepository interface {
	FindGuestByPhone(ctx context.Context, phone string) (Guest, error)
	// FindPhonelessGuest returns the lowest-id guest without a phone whose name
	// matches case-insensitively after trimming and whose language is equal.
	FindPhonelessGuest(ctx context.Context, name string, lang *Language) (Guest, error)
	CreateGuest(ctx context.Context, g Guest) (Guest, error)
	// RelocateGuest moves guest id to newPhone and creates newcomer, atomically.
	RelocateGuest(ctx context.Context, id int64, newPhone string, newcomer Guest) (Guest, error)
	CountGuests(ctx context.Context) (int64, error)
}

type StayRepository interface {
	UpsertStay(ctx context.Context, s Stay) (Stay, error)
	GetStayByReservation(ctx context.Context, pmsReservationID string) (Stay, error)
	CountStays(ctx context.Context, hotelID int64) (int64, error)
}

type Store interface {
	HotelRepository
	GuestRepository
	StayRepository
}

// PMSClient is the vendor API. Detail calls return the raw JSON document.
type PMSClient interface {
	GetReservationDetails(ctx context.Context, reservationID string) ([]byte, error)
	GetGuestDetails(ctx context.Context, guestID string) ([]byte, error)
	GetReservationsForCheckinDate(ctx context.Context, date time.Time) ([]string, error)
}

type Cache interface {
	Get(ctx context.Context, key string, dst any) (bool, error)
	Set(ctx context.Context, key string, v any, ttlSec int) error
}

type Locker interface {
	// Lock blocks until key is held or ctx is done. The returned func releases it.
	Lock(ctx context.Context, key string) (func(), error)
}
