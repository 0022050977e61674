package progress

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/HartBrook/keyfit/internal/config"
)

// Open returns the store selected by cfg. The "none" backend still returns
// an in-memory store so batch runs inside one process can be tracked.
func Open(ctx context.Context, cfg config.ProgressConfig, paths *config.Paths, logger *zap.Logger) (Store, error) {
	switch cfg.Backend {
	case "redis":
		return NewRedisStore(ctx, cfg.RedisAddr, cfg.TTLDuration())
	case "badger":
		dir := cfg.BadgerDir
		if dir == "" {
			dir = paths.RunsDir
		}
		return OpenBadger(BadgerOptions{Dir: dir, TTL: cfg.TTLDuration(), Logger: logger})
	case "", "none":
		return OpenBadger(BadgerOptions{TTL: cfg.TTLDuration()})
	default:
		return nil, fmt.Errorf("unknown progress backend %q", cfg.Backend)
	}
}

// Persistent reports whether runs written under cfg outlive the process.
func Persistent(cfg config.ProgressConfig) bool {
	return cfg.Backend == "redis" || cfg.Backend == "badger"
}
