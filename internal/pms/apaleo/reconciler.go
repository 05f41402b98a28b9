package apaleo

import (
	"context"
	"encoding/json"
	"fmt"
	"runtime/debug"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
)

// Reconciler merges one hotel's webhooks into Stay and Guest records.
type Reconciler struct {
	hotel  domain.Hotel
	stays  domain.StayRepository
	client domain.PMSClient
	guests *app.IdentityResolver
	opts   pms.Options
}

func NewReconciler(h domain.Hotel, d pms.Deps) *Reconciler {
	return &Reconciler{
		hotel:  h,
		stays:  d.Store,
		client: d.Client,
		guests: app.NewIdentityResolver(d.Store, d.Locker, d.Options.WithDefaults()),
		opts:   d.Options.WithDefaults(),
	}
}

// Driver registers the apaleo normalizer and reconciler.
func Driver() pms.Driver {
	return pms.Driver{
		Name: Name,
		NewNormalizer: func(d pms.Deps) pms.Normalizer {
			if d.Hotels != nil {
				return NewNormalizer(d.Hotels)
			}
			return NewNormalizer(d.Store)
		},
		NewReconciler: func(h domain.Hotel, d pms.Deps) pms.Reconciler { return NewReconciler(h, d) },
	}
}

// Handle returns false only for a nil payload, a payload for another hotel, a
// malformed header, a context that ends before the batch is merged, or a panic.
// Failures of a single reservation are logged and skipped.
//
// Each reservation's dates are parsed before its guest is fetched or resolved,
// so a reservation with a bad date never leaves a guest row behind.
func (r *Reconciler) Handle(ctx context.Context, p *pms.CanonicalPayload) (ok bool) {
	lg := log.With().Str("pms", Name).Int64("hotel_id", r.hotel.ID).Logger()
	defer func() {
		if rec := recover(); rec != nil {
			lg.Error().Interface("panic", rec).Bytes("stack", debug.Stack()).Msg("webhook reconciliation panicked")
			ok = false
		}
	}()

	if p == nil {
		lg.Warn().Msg("nil webhook payload")
		return false
	}
	if p.HotelID != r.hotel.ID {
		lg.Warn().Int64("payload_hotel_id", p.HotelID).Msg("webhook for another hotel")
		return false
	}
	hdr, err := parseHeader(p.Data)
	if err != nil {
		lg.Warn().Err(err).Msg("cannot parse webhook header")
		return false
	}

	details := r.fetchReservations(ctx, hdr, lg)
	if err := ctx.Err(); err != nil {
		// fetches failing on an expired deadline are not an empty webhook
		lg.Warn().Err(err).Int("fetched", len(details)).Msg("webhook deadline reached while fetching reservations")
		return false
	}
	if len(details) == 0 {
		lg.Info().Int("events", len(hdr.Events)).Msg("no actionable reservations in webhook")
		return true
	}

	for _, d := range details {
		if err := ctx.Err(); err != nil {
			lg.Warn().Err(err).Msg("webhook deadline reached before all reservations were merged")
			return false
		}
		rlg := lg.With().Str("reservation_id", d.ReservationID).Str("guest_id", d.GuestID).Logger()
		if err := r.mergeReservation(ctx, d); err != nil {
			observability.ObserveReservation(Name, "skipped")
			rlg.Warn().Err(err).Msg("reservation skipped")
			continue
		}
		observability.ObserveReservation(Name, "ok")
		rlg.Debug().Msg("reservation merged")
	}
	return true
}

// fetchReservations keeps ReservationUpdated events and loads their details.
// A reservation whose fetch fails or whose detail names another hotel is dropped.
func (r *Reconciler) fetchReservations(ctx context.Context, hdr header, lg zerolog.Logger) []reservationDetail {
	var out []reservationDetail
	seen := make(map[string]struct{}, len(hdr.Events))
	for _, ev := range hdr.Events {
		if ev.Name != eventReservationUpdated {
			continue
		}
		if ev.ReservationID == "" {
			lg.Debug().Msg("ReservationUpdated event without reservation id")
			continue
		}
		if _, dup := seen[ev.ReservationID]; dup {
			continue
		}
		seen[ev.ReservationID] = struct{}{}

		rlg := lg.With().Str("reservation_id", ev.ReservationID).Logger()
		raw, err := app.CallWithRetry(ctx, "reservation", r.client.GetReservationDetails, ev.ReservationID, r.opts.MaxRetries, r.opts.RetryWait)
		if err != nil {
			observability.ObserveReservation(Name, "skipped")
			rlg.Warn().Err(err).Msg("reservation details unavailable")
			continue
		}
		var d reservationDetail
		if err := json.Unmarshal(raw, &d); err != nil {
			observability.ObserveReservation(Name, "skipped")
			rlg.Warn().Err(err).Msg("reservation details are not valid JSON")
			continue
		}
		if !sameVendorID(d.HotelID, hdr.HotelID) {
			observability.ObserveReservation(Name, "skipped")
			rlg.Warn().Str("detail_hotel_id", d.HotelID).Str("webhook_hotel_id", hdr.HotelID).Msg("reservation belongs to another hotel")
			continue
		}
		if d.ReservationID == "" {
			d.ReservationID = ev.ReservationID
		}
		out = append(out, d)
	}
	return out
}

func (r *Reconciler) mergeReservation(ctx context.Context, d reservationDetail) error {
	if d.GuestID == "" {
		return fmt.Errorf("reservation has no GuestId")
	}
	checkIn, err := parseDate(d.CheckInDate)
	if err != nil {
		return fmt.Errorf("check-in date %q: %w", d.CheckInDate, err)
	}
	checkOut, err := parseDate(d.CheckOutDate)
	if err != nil {
		return fmt.Errorf("check-out date %q: %w", d.CheckOutDate, err)
	}

	raw, err := app.CallWithRetry(ctx, "guest", r.client.GetGuestDetails, d.GuestID, r.opts.MaxRetries, r.opts.RetryWait)
	if err != nil {
		return fmt.Errorf("guest details: %w", err)
	}
	var gd guestDetail
	if err := json.Unmarshal(raw, &gd); err != nil {
		return fmt.Errorf("guest details are not valid JSON: %w", err)
	}

	guest, err := r.guests.Resolve(ctx, app.Candidate{
		Phone:    cleanPhone(gd.Phone, r.opts.StrictPhone),
		Name:     gd.Name,
		Language: mapLanguage(gd.Country),
	})
	if err != nil {
		return fmt.Errorf("resolve guest: %w", err)
	}

	_, err = r.stays.UpsertStay(ctx, domain.Stay{
		HotelID:          r.hotel.ID,
		GuestID:          guest.ID,
		PMSReservationID: d.ReservationID,
		PMSGuestID:       d.GuestID,
		Status:           mapStatus(d.Status),
		CheckIn:          checkIn,
		CheckOut:         checkOut,
	})
	if err != nil {
		return fmt.Errorf("upsert stay: %w", err)
	}
	return nil
}
