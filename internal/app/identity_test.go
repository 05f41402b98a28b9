package app_test

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
)

func newResolver(g *fakeGuests, mutate ...func(*pms.Options)) *app.IdentityResolver {
	o := pms.DefaultOptions()
	for _, m := range mutate {
		m(&o)
	}
	return app.NewIdentityResolver(g, app.NewLocalLocker(), o)
}

func TestResolve_CreatesWhenPhoneUnknown(t *testing.T) {
	guests := newFakeGuests()
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "Ana", Language: ptr(domain.LangGerman)})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.ID == 0 || g.Phone != "+4911" || g.Name != "Ana" || *g.Language != domain.LangGerman {
		t.Fatalf("unexpected guest: %+v", g)
	}
	if n, _ := guests.CountGuests(context.Background()); n != 1 {
		t.Fatalf("expected 1 guest, got %d", n)
	}
}

func TestResolve_ReusesSameIdentityWithoutWrites(t *testing.T) {
	guests := newFakeGuests(domain.Guest{Phone: "+4911", Name: "Ana Lima", Language: ptr(domain.LangEnglish)})
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "  ana lima ", Language: ptr(domain.LangEnglish)})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.ID != 1 {
		t.Fatalf("expected existing guest 1, got %+v", g)
	}
	if guests.writes != 0 {
		t.Fatalf("expected zero writes, got %d", guests.writes)
	}
}

func TestResolve_ConflictRelocatesIncumbent(t *testing.T) {
	guests := newFakeGuests(domain.Guest{Phone: "+4911", Name: "Ana", Language: ptr(domain.LangGerman)})
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "Bob", Language: ptr(domain.LangFrench)})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.Phone != "+4911" || g.Name != "Bob" {
		t.Fatalf("newcomer should hold the clean number: %+v", g)
	}
	moved, ok := guests.byPhone("+4911" + pms.DefaultPhoneSuffix)
	if !ok || moved.ID != 1 || moved.Name != "Ana" {
		t.Fatalf("incumbent not relocated: %+v", moved)
	}
	if n, _ := guests.CountGuests(context.Background()); n != 2 {
		t.Fatalf("expected 2 guests, got %d", n)
	}
}

func TestResolve_RepeatedConflictsAccumulateSuffix(t *testing.T) {
	guests := newFakeGuests(
		domain.Guest{Phone: "+4911", Name: "Ana"},
		domain.Guest{Phone: "+4911-dup", Name: "Carl"},
	)
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "Dora"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.Phone != "+4911" || g.Name != "Dora" {
		t.Fatalf("unexpected newcomer: %+v", g)
	}
	if moved, ok := guests.byPhone("+4911-dup-dup"); !ok || moved.Name != "Ana" {
		t.Fatalf("expected Ana at +4911-dup-dup, got %+v", moved)
	}
	if kept, ok := guests.byPhone("+4911-dup"); !ok || kept.Name != "Carl" {
		t.Fatalf("expected Carl untouched, got %+v", kept)
	}
}

func TestResolve_SuffixedRecordMatchingIdentityIsReused(t *testing.T) {
	guests := newFakeGuests(
		domain.Guest{Phone: "+4911", Name: "Bob"},
		domain.Guest{Phone: "+4911-dup", Name: "Ana"},
	)
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "Ana"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.ID != 2 || guests.writes != 0 {
		t.Fatalf("expected reuse of guest 2 without writes, got %+v (writes=%d)", g, guests.writes)
	}
}

func TestResolve_SuffixNewcomerMode(t *testing.T) {
	guests := newFakeGuests(domain.Guest{Phone: "+4911", Name: "Ana"})
	r := newResolver(guests, func(o *pms.Options) { o.ConflictMode = pms.ModeSuffixNewcomer; o.PhoneSuffix = "#" })

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+4911", Name: "Bob"})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.Phone != "+4911#" || g.Name != "Bob" {
		t.Fatalf("expected newcomer at suffixed phone, got %+v", g)
	}
	if kept, _ := guests.byPhone("+4911"); kept.Name != "Ana" {
		t.Fatalf("incumbent should keep the clean number, got %+v", kept)
	}
}

func TestResolve_DepthCap(t *testing.T) {
	guests := newFakeGuests(
		domain.Guest{Phone: "p", Name: "a"},
		domain.Guest{Phone: "p-dup", Name: "b"},
		domain.Guest{Phone: "p-dup-dup", Name: "c"},
	)
	r := newResolver(guests, func(o *pms.Options) { o.MaxConflictDepth = 2 })

	_, err := r.Resolve(context.Background(), app.Candidate{Phone: "p", Name: "z"})
	if !errors.Is(err, domain.ErrUnresolvedConflict) {
		t.Fatalf("expected ErrUnresolvedConflict, got %v", err)
	}
	if guests.writes != 0 {
		t.Fatalf("expected no writes, got %d", guests.writes)
	}
}

func TestResolve_LanguageMismatchIsConflict(t *testing.T) {
	guests := newFakeGuests(domain.Guest{Phone: "+1", Name: "Ana"})
	r := newResolver(guests)

	g, err := r.Resolve(context.Background(), app.Candidate{Phone: "+1", Name: "Ana", Language: ptr(domain.LangSpanish)})
	if err != nil {
		t.Fatalf("err: %v", err)
	}
	if g.ID == 1 {
		t.Fatalf("nil vs non-nil language must not be treated as the same guest")
	}
}

func TestResolve_LookupErrorSurfaces(t *testing.T) {
	guests := newFakeGuests()
	guests.findErr = errors.New("db down")
	r := newResolver(guests)

	if _, err := r.Resolve(context.Background(), app.Candidate{Phone: "+1"}); err == nil {
		t.Fatalf("expected error")
	}
}

func TestResolve_PhonelessGuestsNeverHitDepthCap(t *testing.T) {
	guests := newFakeGuests()
	r := newResolver(guests)
	ctx := context.Background()

	n := pms.DefaultOptions().MaxConflictDepth + 4
	for i := 0; i < n; i++ {
		g, err := r.Resolve(ctx, app.Candidate{Name: fmt.Sprintf("Guest %d", i)})
		if err != nil {
			t.Fatalf("guest %d: %v", i, err)
		}
		if g.Phone != "" {
			t.Fatalf("phoneless guest got phone %q", g.Phone)
		}
	}
	if c, _ := guests.CountGuests(ctx); c != int64(n) {
		t.Fatalf("expected %d guests, got %d", n, c)
	}
}

func TestResolve_PhonelessReuseOnSameNameAndLanguage(t *testing.T) {
	guests := newFakeGuests(domain.Guest{Name: "Ana", Language: ptr(domain.LangDutch)})
	r := newResolver(guests)
	ctx := context.Background()

	g, err := r.Resolve(ctx, app.Candidate{Name: " ana ", Language: ptr(domain.LangDutch)})
	if err != nil || g.ID != 1 {
		t.Fatalf("expected reuse of guest 1, got %+v %v", g, err)
	}
	if guests.writes != 0 {
		t.Fatalf("expected zero writes, got %d", guests.writes)
	}

	g, err = r.Resolve(ctx, app.Candidate{Name: "Ana"})
	if err != nil || g.ID == 1 {
		t.Fatalf("different language must create a new guest, got %+v %v", g, err)
	}
}

func TestResolve_LockCoversSuffixChain(t *testing.T) {
	locks := &recordingLocker{}
	r := app.NewIdentityResolver(newFakeGuests(), locks, pms.DefaultOptions())
	ctx := context.Background()

	for _, phone := range []string{"+3161", "+3161-dup", "+3161-dup-dup"} {
		if _, err := r.Resolve(ctx, app.Candidate{Phone: phone, Name: "Ana"}); err != nil {
			t.Fatalf("%s: %v", phone, err)
		}
	}
	if _, err := r.Resolve(ctx, app.Candidate{Name: "Ana"}); err != nil {
		t.Fatalf("phoneless: %v", err)
	}

	want := []string{"guest:phone:+3161", "guest:phone:+3161", "guest:phone:+3161", "guest:nophone:ana"}
	if fmt.Sprint(locks.keys) != fmt.Sprint(want) {
		t.Fatalf("lock keys = %v, want %v", locks.keys, want)
	}
}
