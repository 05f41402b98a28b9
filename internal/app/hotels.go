package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"hotel_pms/internal/domain"
)

// HotelLookup is a read-through cache over HotelRepository.FindHotelByPMSID.
type HotelLookup struct {
	repo     domain.HotelRepository
	cache    domain.Cache
	cacheTTL time.Duration
}

func NewHotelLookup(r domain.HotelRepository, c domain.Cache, ttl time.Duration) *HotelLookup {
	return &HotelLookup{repo: r, cache: c, cacheTTL: ttl}
}

func (s *HotelLookup) FindHotelByPMSID(ctx context.Context, pms, pmsHotelID string) (domain.Hotel, error) {
	key := fmt.Sprintf("hotel:pms:%s:%s", strings.ToLower(pms), pmsHotelID)
	var h domain.Hotel
	if s.cache != nil {
		if ok, _ := s.cache.Get(ctx, key, &h); ok {
			return h, nil
		}
	}
	h, err := s.repo.FindHotelByPMSID(ctx, pms, pmsHotelID)
	if err != nil {
		return domain.Hotel{}, err
	}
	if s.cache != nil && s.cacheTTL > 0 {
		_ = s.cache.Set(ctx, key, h, int(s.cacheTTL.Seconds()))
	}
	return h, nil
}
