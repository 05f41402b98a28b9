package app_test

import (
	"context"
	"errors"
	"strings"
	"sync"

	"hotel_pms/internal/domain"
)

// ---- fakes ----

type fakeGuests struct {
	mu      sync.Mutex
	byID    map[int64]domain.Guest
	nextID  int64
	writes  int
	findErr error
}

func newFakeGuests(seed ...domain.Guest) *fakeGuests {
	f := &fakeGuests{byID: map[int64]domain.Guest{}}
	for _, g := range seed {
		f.nextID++
		g.ID = f.nextID
		f.byID[g.ID] = g
	}
	return f
}

func (f *fakeGuests) FindGuestByPhone(ctx context.Context, phone string) (domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.Guest{}, f.findErr
	}
	for _, g := range f.byID {
		if g.Phone == phone {
			return g, nil
		}
	}
	return domain.Guest{}, domain.ErrNotFound
}

func (f *fakeGuests) FindPhonelessGuest(ctx context.Context, name string, lang *domain.Language) (domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.findErr != nil {
		return domain.Guest{}, f.findErr
	}
	var best domain.Guest
	for _, g := range f.byID {
		if g.Phone != "" || !strings.EqualFold(strings.TrimSpace(g.Name), strings.TrimSpace(name)) {
			continue
		}
		if (g.Language == nil) != (lang == nil) || (lang != nil && *g.Language != *lang) {
			continue
		}
		if best.ID == 0 || g.ID < best.ID {
			best = g
		}
	}
	if best.ID == 0 {
		return domain.Guest{}, domain.ErrNotFound
	}
	return best, nil
}

func (f *fakeGuests) CreateGuest(ctx context.Context, g domain.Guest) (domain.Guest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, o := range f.byID {
		if g.Phone != "" && o.Phone == g.Phone {
			return domain.Guest{}, domain.ErrDuplicate
		}
	}
	f.nextID++
	g.ID = f.nextID
	f.byID[g.ID] = g
	f.writes++
	return g, nil
}

func (f *fakeGuests) RelocateGuest(ctx context.Context, id int64, newPhone string, newcomer domain.Guest) (domain.Guest, error) {
	f.mu.Lock()
	old, ok := f.byID[id]
	if !ok {
		f.mu.Unlock()
		return domain.Guest{}, errors.New("relocate: unknown guest")
	}
	old.Phone = newPhone
	f.byID[id] = old
	f.writes++
	f.mu.Unlock()
	return f.CreateGuest(ctx, newcomer)
}

func (f *fakeGuests) CountGuests(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.byID)), nil
}

func (f *fakeGuests) byPhone(phone string) (domain.Guest, bool) {
	g, err := f.FindGuestByPhone(context.Background(), phone)
	return g, err == nil
}

type recordingLocker struct {
	mu   sync.Mutex
	keys []string
}

func (l *recordingLocker) Lock(ctx context.Context, key string) (func(), error) {
	l.mu.Lock()
	l.keys = append(l.keys, key)
	l.mu.Unlock()
	return func() {}, nil
}

type fakeHotels struct {
	hotels []domain.Hotel
	finds  int
}

func (f *fakeHotels) GetHotel(ctx context.Context, id int64) (domain.Hotel, error) {
	for _, h := range f.hotels {
		if h.ID == id {
			return h, nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (f *fakeHotels) FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (domain.Hotel, error) {
	f.finds++
	for _, h := range f.hotels {
		if h.PMS == pms && h.PMSHotelID == pmsHotelID {
			return h, nil
		}
	}
	return domain.Hotel{}, domain.ErrNotFound
}

func (f *fakeHotels) CreateHotel(ctx context.Context, h domain.Hotel) (domain.Hotel, error) {
	h.ID = int64(len(f.hotels) + 1)
	f.hotels = append(f.hotels, h)
	return h, nil
}

type fakeCache struct {
	store map[string]any
}

func (c *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, ok := c.store[key]
	if !ok {
		return false, nil
	}
	if d, ok := dst.(*domain.Hotel); ok {
		*d = v.(domain.Hotel)
	}
	return true, nil
}

func (c *fakeCache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	if c.store == nil {
		c.store = map[string]any{}
	}
	c.store[key] = v
	return nil
}

func ptr[T any](v T) *T { return &v }
