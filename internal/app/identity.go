package app

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
)

// Candidate is a guest as described by the vendor, before identity resolution.
type Candidate struct {
	Phone    string
	Name     string
	Language *domain.Language
}

// IdentityResolver decides whether a candidate is an existing guest, using the
// phone number as the lookup key. There is no globally unique personal id, so
// a phone match with a different name or language is a conflict and one of the
// two records is moved to a suffixed phone.
type IdentityResolver struct {
	guests   domain.GuestRepository
	locker   domain.Locker
	suffix   string
	mode     pms.ConflictMode
	maxDepth int
}

func NewIdentityResolver(g domain.GuestRepository, l domain.Locker, o pms.Options) *IdentityResolver {
	d := pms.DefaultOptions()
	r := &IdentityResolver{guests: g, locker: l, suffix: o.PhoneSuffix, mode: o.ConflictMode, maxDepth: o.MaxConflictDepth}
	if r.suffix == "" {
		r.suffix = d.PhoneSuffix
	}
	if r.mode == "" {
		r.mode = d.ConflictMode
	}
	if r.maxDepth <= 0 {
		r.maxDepth = d.MaxConflictDepth
	}
	return r
}

// Resolve returns the persisted guest for c, creating or relocating records as needed.
// A candidate without a phone has no dedup key: it reuses a phoneless guest
// with the same name and language, or gets a new one. It never takes part in
// suffixing.
func (r *IdentityResolver) Resolve(ctx context.Context, c Candidate) (domain.Guest, error) {
	if r.locker != nil {
		unlock, err := r.locker.Lock(ctx, r.lockKey(c))
		if err != nil {
			return domain.Guest{}, fmt.Errorf("lock phone: %w", err)
		}
		defer unlock()
	}

	var (
		g       domain.Guest
		outcome string
		err     error
	)
	if c.Phone == "" {
		g, outcome, err = r.resolvePhoneless(ctx, c)
	} else {
		g, outcome, err = r.resolve(ctx, c, c.Phone, nil, 0)
	}
	if err != nil {
		observability.ObserveGuest("failed")
		log.Warn().Err(err).Str("phone", c.Phone).Msg("guest resolution failed")
		return domain.Guest{}, err
	}
	observability.ObserveGuest(outcome)
	log.Debug().Int64("guest_id", g.ID).Str("phone", g.Phone).Str("outcome", outcome).Msg("guest resolved")
	return g, nil
}

// resolve inspects phone. incumbent is the guest holding c.Phone that has to
// make room once a free phone is found (relocate-incumbent mode only).
// Each step either returns or grows phone by one suffix.
func (r *IdentityResolver) resolve(ctx context.Context, c Candidate, phone string, incumbent *domain.Guest, depth int) (domain.Guest, string, error) {
	existing, err := r.guests.FindGuestByPhone(ctx, phone)
	switch {
	case err == nil:
		if sameIdentity(existing, c) {
			return existing, "reused", nil
		}
		if depth >= r.maxDepth {
			return domain.Guest{}, "", fmt.Errorf("%w: phone %q after %d suffixes", domain.ErrUnresolvedConflict, c.Phone, depth)
		}
		if incumbent == nil && r.mode == pms.ModeRelocateIncumbent {
			incumbent = &existing
		}
		return r.resolve(ctx, c, phone+r.suffix, incumbent, depth+1)
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Guest{}, "", fmt.Errorf("find guest by phone: %w", err)
	}

	newcomer := domain.Guest{Name: c.Name, Phone: phone, Language: c.Language}
	if incumbent != nil {
		newcomer.Phone = c.Phone
		g, err := r.guests.RelocateGuest(ctx, incumbent.ID, phone, newcomer)
		if err != nil {
			return domain.Guest{}, "", fmt.Errorf("relocate guest %d to %q: %w", incumbent.ID, phone, err)
		}
		return g, "relocated", nil
	}
	g, err := r.guests.CreateGuest(ctx, newcomer)
	if err != nil {
		return domain.Guest{}, "", fmt.Errorf("create guest: %w", err)
	}
	if phone != c.Phone {
		return g, "suffixed", nil
	}
	return g, "created", nil
}

// lockKey covers the whole suffix chain of a number: "+3161" and "+3161-dup"
// share one key, so a vendor phone that already carries the suffix cannot race
// a relocation walking through it.
func (r *IdentityResolver) lockKey(c Candidate) string {
	if c.Phone == "" {
		return "guest:nophone:" + strings.ToLower(strings.TrimSpace(c.Name))
	}
	base := c.Phone
	for len(base) > len(r.suffix) && strings.HasSuffix(base, r.suffix) {
		base = strings.TrimSuffix(base, r.suffix)
	}
	return "guest:phone:" + base
}

func (r *IdentityResolver) resolvePhoneless(ctx context.Context, c Candidate) (domain.Guest, string, error) {
	existing, err := r.guests.FindPhonelessGuest(ctx, c.Name, c.Language)
	switch {
	case err == nil:
		return existing, "reused", nil
	case errors.Is(err, domain.ErrNotFound):
	default:
		return domain.Guest{}, "", fmt.Errorf("find phoneless guest: %w", err)
	}
	g, err := r.guests.CreateGuest(ctx, domain.Guest{Name: c.Name, Language: c.Language})
	if err != nil {
		return domain.Guest{}, "", fmt.Errorf("create guest: %w", err)
	}
	return g, "created", nil
}

func sameIdentity(g domain.Guest, c Candidate) bool {
	if !strings.EqualFold(strings.TrimSpace(g.Name), strings.TrimSpace(c.Name)) {
		return false
	}
	switch {
	case g.Language == nil && c.Language == nil:
		return true
	case g.Language == nil || c.Language == nil:
		return false
	default:
		return *g.Language == *c.Language
	}
}
