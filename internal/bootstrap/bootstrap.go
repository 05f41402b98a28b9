// Package bootstrap assembles the webhook pipeline from configuration. Both
// the API server and pmsctl start from here.
package bootstrap

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"hotel_pms/internal/adapters/pmsapi"
	redisad "hotel_pms/internal/adapters/redis"
	"hotel_pms/internal/app"
	"hotel_pms/internal/domain"
	"hotel_pms/internal/pms"
	"hotel_pms/internal/pms/apaleo"
	"hotel_pms/internal/shared"
	"hotel_pms/internal/storage"
)

type Pipeline struct {
	Backend  *storage.Backend
	Client   *pmsapi.Client
	Registry *pms.Registry
	Webhooks *app.WebhookService

	rdb *redis.Client
}

// Drivers lists every vendor integration compiled into the binary.
func Drivers() []pms.Driver {
	return []pms.Driver{apaleo.Driver()}
}

func Build(ctx context.Context, cfg shared.Config) (*Pipeline, error) {
	backend, err := storage.Open(ctx, cfg.StoreDSN)
	if err != nil {
		return nil, err
	}

	client, err := pmsapi.New(cfg.PMSBase, cfg.PMSKey, cfg.PMSRPS)
	if err != nil {
		_ = backend.Close()
		return nil, fmt.Errorf("pms client: %w", err)
	}

	p := &Pipeline{Backend: backend, Client: client}

	var (
		cache  domain.Cache
		locker domain.Locker
	)
	if cfg.RedisAddr != "" {
		p.rdb = redisad.NewClient(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
		if err := p.rdb.Ping(ctx).Err(); err != nil {
			_ = p.Close()
			return nil, fmt.Errorf("redis ping: %w", err)
		}
		cache = redisad.NewCache(p.rdb)
		locker = redisad.NewLocker(p.rdb, cfg.LockTTL)
		log.Info().Str("addr", cfg.RedisAddr).Msg("redis cache and locks enabled")
	} else {
		locker = app.NewLocalLocker()
		log.Warn().Msg("REDIS_ADDR empty: hotel cache off, guest locks are per-process")
	}

	hotels := app.NewHotelLookup(backend, cache, cfg.HotelCacheTTL)
	p.Registry = pms.NewRegistry(pms.Deps{
		Hotels:  hotels,
		Store:   backend,
		Client:  client,
		Locker:  locker,
		Options: cfg.ReconcileOptions(),
	})
	for _, d := range Drivers() {
		p.Registry.Register(d)
	}
	p.Webhooks = app.NewWebhookService(p.Registry, backend, cfg.WebhookTimeout)
	log.Info().Strs("drivers", p.Registry.Names()).Msg("pipeline ready")
	return p, nil
}

func (p *Pipeline) Close() error {
	if p.rdb != nil {
		_ = p.rdb.Close()
	}
	return p.Backend.Close()
}
