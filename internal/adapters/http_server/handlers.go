package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/domain"
)

const (
	maxWebhookBody = 1 << 20
	thanks         = "Thanks for the update."
)

// WebhookHandler is satisfied by app.WebhookService.
type WebhookHandler interface {
	HandleWebhook(ctx context.Context, vendor string, raw []byte) (bool, error)
}

type Handlers struct {
	Webhooks WebhookHandler
	// MaxInFlight caps concurrent webhook processing; 0 means 1.
	MaxInFlight int64
}

type problem struct {
	Type   string `json:"type"`
	Title  string `json:"title"`
	Status int    `json:"status"`
	Detail string `json:"detail,omitempty"`
}

func (s *Server) MountHandlers(h *Handlers) {
	s.mux.Get("/healthz", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(200); _, _ = w.Write([]byte("ok")) })
	s.mux.With(Concurrency(h.MaxInFlight)).Post("/webhook/{pms}", h.webhook)
}

func writeProblem(w http.ResponseWriter, status int, title, detail string) {
	w.Header().Set("Content-Type", "application/problem+json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(problem{Type: "about:blank", Title: title, Status: status, Detail: detail}); err != nil {
		log.Error().Err(err).Msg("write JSON problem response failed")
	}
}

func (h *Handlers) webhook(w http.ResponseWriter, r *http.Request) {
	vendor := chi.URLParam(r, "pms")

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			writeProblem(w, http.StatusRequestEntityTooLarge, "Payload Too Large", "webhook body exceeds 1 MiB")
			return
		}
		writeProblem(w, http.StatusBadRequest, "Bad Request", "could not read body")
		return
	}

	ok, err := h.Webhooks.HandleWebhook(r.Context(), vendor, body)
	switch {
	case errors.Is(err, domain.ErrNoDriver):
		writeProblem(w, http.StatusNotFound, "Not Found", "unknown PMS "+vendor)
		return
	case err != nil:
		log.Error().Err(err).Str("pms", vendor).Msg("webhook failed")
		writeProblem(w, http.StatusInternalServerError, "Internal Server Error", "webhook could not be processed")
		return
	case !ok:
		writeProblem(w, http.StatusBadRequest, "Bad Request", "webhook was not processed")
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(thanks))
}
