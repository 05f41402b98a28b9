package app_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
)

func TestHotelLookup_CacheMissThenHit(t *testing.T) {
	repo := &fakeHotels{hotels: []domain.Hotel{{ID: 3, Name: "Hotel 1", PMS: "apaleo", PMSHotelID: "851df8c8-90f2-4c4a-8e01-a4fc46b25178"}}}
	cache := &fakeCache{}
	l := app.NewHotelLookup(repo, cache, 10*time.Minute)

	for i := 0; i < 2; i++ {
		h, err := l.FindHotelByPMSID(context.Background(), "apaleo", "851df8c8-90f2-4c4a-8e01-a4fc46b25178")
		if err != nil {
			t.Fatalf("err: %v", err)
		}
		if h.ID != 3 {
			t.Fatalf("unexpected hotel: %+v", h)
		}
	}
	if repo.finds != 1 {
		t.Fatalf("expected second lookup from cache, repo hit %d times", repo.finds)
	}
}

func TestHotelLookup_MissIsNotCached(t *testing.T) {
	repo := &fakeHotels{}
	cache := &fakeCache{}
	l := app.NewHotelLookup(repo, cache, time.Minute)

	_, err := l.FindHotelByPMSID(context.Background(), "apaleo", "nope")
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if len(cache.store) != 0 {
		t.Fatalf("misses must not be cached: %v", cache.store)
	}
}

func TestHotelLookup_NilCache(t *testing.T) {
	repo := &fakeHotels{hotels: []domain.Hotel{{ID: 1, PMS: "apaleo", PMSHotelID: "x"}}}
	l := app.NewHotelLookup(repo, nil, time.Minute)
	if _, err := l.FindHotelByPMSID(context.Background(), "apaleo", "x"); err != nil {
		t.Fatalf("err: %v", err)
	}
}
