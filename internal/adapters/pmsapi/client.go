package pmsapi

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"hotel_pms/internal/adapters/observability"
	"hotel_pms/internal/domain"
)

const (
	service     = "pms"
	maxBodySize = 4 << 20
	dateLayout  = "2006-01-02"
)

// Client talks to the vendor PMS API. It never retries: every failure is
// wrapped in domain.ErrVendorAPI and the caller decides what to do.
type Client struct {
	base string
	hc   *http.Client
	key  string
	rl   *rate.Limiter
}

func New(base, key string, rps int) (*Client, error) {
	if base == "" {
		return nil, fmt.Errorf("PMS base URL is required")
	}
	if rps <= 0 {
		rps = 5
	}
	return &Client{
		base: strings.TrimRight(base, "/"),
		hc:   &http.Client{Timeout: 20 * time.Second},
		key:  key,
		rl:   rate.NewLimiter(rate.Limit(rps), rps),
	}, nil
}

func (c *Client) GetReservationDetails(ctx context.Context, reservationID string) ([]byte, error) {
	return c.get(ctx, "reservation", c.base+"/reservations/"+url.PathEscape(reservationID))
}

func (c *Client) GetGuestDetails(ctx context.Context, guestID string) ([]byte, error) {
	return c.get(ctx, "guest", c.base+"/guests/"+url.PathEscape(guestID))
}

// GetReservationsForCheckinDate returns the ids of reservations arriving on date.
// The endpoint answers with a JSON array of reservation ids.
func (c *Client) GetReservationsForCheckinDate(ctx context.Context, date time.Time) ([]string, error) {
	q := url.Values{"checkin": {date.Format(dateLayout)}}
	body, err := c.get(ctx, "checkins", c.base+"/reservations?"+q.Encode())
	if err != nil {
		return nil, err
	}
	var ids []string
	if err := json.Unmarshal(body, &ids); err != nil {
		return nil, fmt.Errorf("%w: decode checkins: %v", domain.ErrVendorAPI, err)
	}
	return ids, nil
}

func (c *Client) get(ctx context.Context, endpoint, u string) ([]byte, error) {
	if err := c.rl.Wait(ctx); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrVendorAPI, endpoint, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	if c.key != "" {
		req.Header.Set("X-API-Key", c.key)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hotel-pms/1.0")

	start := time.Now()
	resp, err := c.hc.Do(req)
	if err != nil {
		observability.ObserveExternal(service, endpoint, 0, time.Since(start))
		return nil, fmt.Errorf("%w: %s: %v", domain.ErrVendorAPI, endpoint, err)
	}
	defer resp.Body.Close()
	observability.ObserveExternal(service, endpoint, resp.StatusCode, time.Since(start))

	b, err := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: read body: %v", domain.ErrVendorAPI, endpoint, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		msg := strings.TrimSpace(string(b))
		if len(msg) > 256 {
			msg = msg[:256]
		}
		return nil, fmt.Errorf("%w: %s: status %d: %s", domain.ErrVendorAPI, endpoint, resp.StatusCode, msg)
	}
	if len(b) == 0 {
		return nil, fmt.Errorf("%w: %s: empty body", domain.ErrVendorAPI, endpoint)
	}
	return b, nil
}
