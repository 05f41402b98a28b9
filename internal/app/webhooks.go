package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
)

// WebhookService is the single inbound operation: one vendor webhook body in,
// pass/fail out.
type WebhookService struct {
	registry *pms.Registry
	hotels   domain.HotelRepository
	timeout  time.Duration
}

func NewWebhookService(reg *pms.Registry, hotels domain.HotelRepository, timeout time.Duration) *WebhookService {
	return &WebhookService{registry: reg, hotels: hotels, timeout: timeout}
}

// HandleWebhook returns (false, nil) for payloads that are invalid or were
// rejected by the reconciler, and an error only when no driver exists for
// vendor or the hotel could not be loaded.
func (s *WebhookService) HandleWebhook(ctx context.Context, vendor string, raw []byte) (bool, error) {
	if s.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.timeout)
		defer cancel()
	}
	lg := log.With().Str("pms", vendor).Logger()

	norm, err := s.registry.Normalizer(vendor)
	if err != nil {
		observability.ObserveWebhook(vendor, "no_driver")
		lg.Warn().Err(err).Msg("webhook for unknown pms")
		return false, err
	}

	p := norm.Normalize(ctx, raw)
	if p == nil {
		observability.ObserveWebhook(vendor, "invalid")
		lg.Warn().Int("bytes", len(raw)).Msg("webhook payload rejected by normalizer")
		return false, nil
	}

	hotel, err := s.hotels.GetHotel(ctx, p.HotelID)
	if err != nil {
		observability.ObserveWebhook(vendor, "error")
		if errors.Is(err, domain.ErrNotFound) {
			return false, fmt.Errorf("hotel %d vanished after normalization: %w", p.HotelID, err)
		}
		return false, fmt.Errorf("load hotel %d: %w", p.HotelID, err)
	}

	rec, err := s.registry.Reconciler(hotel)
	if err != nil {
		observability.ObserveWebhook(vendor, "no_driver")
		return false, err
	}

	start := time.Now()
	ok := rec.Handle(ctx, p)
	result := "ok"
	if !ok {
		result = "rejected"
	}
	observability.ObserveWebhook(vendor, result)
	lg.Info().Int64("hotel_id", hotel.ID).Bool("success", ok).Dur("took", time.Since(start)).Msg("webhook handled")
	return ok, nil
}
