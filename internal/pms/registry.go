package pms

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"hotel_pms/internal/domain"
)

// CanonicalPayload is a vendor webhook after validation: the local hotel it
// belongs to and the full parsed body.
type CanonicalPayload struct {
	HotelID int64
	Data    map[string]any
}

type Normalizer interface {
	// Normalize returns nil for anything that is not a usable webhook.
	Normalize(ctx context.Context, raw []byte) *CanonicalPayload
}

type Reconciler interface {
	Handle(ctx context.Context, p *CanonicalPayload) bool
}

type HotelFinder interface {
	FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (domain.Hotel, error)
}

// Deps are the collaborators a driver builds its normalizer and reconciler from.
type Deps struct {
	Hotels  HotelFinder
	Store   domain.Store
	Client  domain.PMSClient
	Locker  domain.Locker
	Options Options
}

// Driver pairs a vendor's normalizer and reconciler constructors.
type Driver struct {
	Name          string
	NewNormalizer func(d Deps) Normalizer
	NewReconciler func(h domain.Hotel, d Deps) Reconciler
}

type Registry struct {
	mu      sync.RWMutex
	drivers map[string]Driver
	deps    Deps
}

func NewRegistry(d Deps) *Registry {
	d.Options = d.Options.WithDefaults()
	return &Registry{drivers: map[string]Driver{}, deps: d}
}

func (r *Registry) Register(d Driver) {
	name := normalizeName(d.Name)
	if name == "" || d.NewNormalizer == nil || d.NewReconciler == nil {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.drivers[name] = d
}

func (r *Registry) lookup(name string) (Driver, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	d, ok := r.drivers[normalizeName(name)]
	if !ok {
		return Driver{}, fmt.Errorf("%w: %q", domain.ErrNoDriver, name)
	}
	return d, nil
}

func (r *Registry) Normalizer(name string) (Normalizer, error) {
	d, err := r.lookup(name)
	if err != nil {
		return nil, err
	}
	return d.NewNormalizer(r.deps), nil
}

// Reconciler builds a reconciler bound to h, using the driver of h's own vendor.
func (r *Registry) Reconciler(h domain.Hotel) (Reconciler, error) {
	d, err := r.lookup(h.PMS)
	if err != nil {
		return nil, err
	}
	return d.NewReconciler(h, r.deps), nil
}

func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.drivers))
	for n := range r.drivers {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

func normalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
