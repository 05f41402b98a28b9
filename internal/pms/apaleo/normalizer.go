package apaleo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/santhosh-tekuri/jsonschema/v6"

	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
)

type Normalizer struct {
	hotels pms.HotelFinder
}

func NewNormalizer(h pms.HotelFinder) *Normalizer {
	return &Normalizer{hotels: h}
}

// Normalize validates raw and resolves its HotelId to a local hotel. The
// parsed body is carried forward untouched, HotelId included. Every failure
// is logged and yields nil.
func (n *Normalizer) Normalize(ctx context.Context, raw []byte) *pms.CanonicalPayload {
	lg := log.With().Str("pms", Name).Logger()
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		lg.Warn().Msg("empty webhook payload")
		return nil
	}

	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		lg.Warn().Err(err).Msg("webhook payload is not valid JSON")
		return nil
	}
	if err := webhookSchema.Validate(inst); err != nil {
		lg.Warn().Err(err).Msg("webhook payload failed envelope validation")
		return nil
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil {
		lg.Warn().Err(err).Msg("webhook payload is not a JSON object")
		return nil
	}

	pmsHotelID, err := uuid.Parse(data[hotelIDField].(string))
	if err != nil {
		lg.Warn().Err(err).Interface("hotel_id", data[hotelIDField]).Msg("webhook HotelId is not a UUID")
		return nil
	}

	h, err := n.hotels.FindHotelByPMSID(ctx, Name, pmsHotelID.String())
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			lg.Warn().Str("pms_hotel_id", pmsHotelID.String()).Msg("no hotel for webhook HotelId")
		} else {
			lg.Error().Err(err).Str("pms_hotel_id", pmsHotelID.String()).Msg("hotel lookup failed")
		}
		return nil
	}

	return &pms.CanonicalPayload{HotelID: h.ID, Data: data}
}
