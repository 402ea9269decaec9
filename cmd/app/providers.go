package main

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/valkey-io/valkey-go"

	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/profile"
	"github.com/yanqian/rencard-user/internal/domain/user"
	"github.com/yanqian/rencard-user/internal/infra/config"
	"github.com/yanqian/rencard-user/internal/infra/migrate"
	"github.com/yanqian/rencard-user/internal/infra/profilerepo"
	"github.com/yanqian/rencard-user/internal/infra/sessionstore"
	"github.com/yanqian/rencard-user/internal/infra/tokenstore"
	"github.com/yanqian/rencard-user/internal/infra/userrepo"
	httpiface "github.com/yanqian/rencard-user/internal/interface/http"
	"github.com/yanqian/rencard-user/pkg/password"
)

func provideAuthConfig(cfg *config.Config) auth.Config {
	return auth.Config{
		DefaultMode:    auth.ModeFromUseJWT(cfg.Auth.UseJWTByDefault),
		CookieLifetime: cfg.Auth.CookieLifetime,
		Token: auth.TokenConfig{
			Secret:              []byte(cfg.JWT.Secret),
			Issuer:              cfg.JWT.Issuer,
			Audience:            cfg.JWT.Audience,
			AccessTokenLifetime: cfg.JWT.AccessTokenLifetime,
		},
	}
}

func provideCookieConfig(cfg *config.Config) httpiface.CookieConfig {
	return httpiface.CookieConfig{Name: cfg.Auth.CookieName, Secure: cfg.Auth.CookieSecure}
}

// providePasswordHasher hashes with the configured algorithm and still
// verifies hashes written by the other one.
func providePasswordHasher(cfg *config.Config) (password.Hasher, error) {
	primary, err := password.New(cfg.Auth.PasswordHasher)
	if err != nil {
		return nil, err
	}
	return password.NewAuto(primary), nil
}

// providePostgresPool returns a nil pool when no DSN is configured; callers
// fall back to in-memory storage in that case.
func providePostgresPool(cfg *config.Config, logger *slog.Logger) (*pgxpool.Pool, func(), error) {
	dsn := strings.TrimSpace(cfg.Postgres.DSN)
	if dsn == "" {
		logger.Info("postgres dsn not set, using memory repositories")
		return nil, func() {}, nil
	}
	poolConfig, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Postgres.MaxConns > 0 {
		poolConfig.MaxConns = cfg.Postgres.MaxConns
	}
	if cfg.Postgres.MinConns > 0 {
		poolConfig.MinConns = cfg.Postgres.MinConns
	}
	pool, err := pgxpool.NewWithConfig(context.Background(), poolConfig)
	if err != nil {
		return nil, nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, err
	}
	if cfg.Postgres.Migrate {
		if err := migrate.Run(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
	}
	logger.Info("postgres storage enabled")
	return pool, pool.Close, nil
}

func provideUserRepository(pool *pgxpool.Pool) user.Repository {
	if pool == nil {
		return userrepo.NewMemoryRepository()
	}
	return userrepo.NewPostgresRepository(pool)
}

func provideProfileRepository(pool *pgxpool.Pool) profile.Repository {
	if pool == nil {
		return profilerepo.NewMemoryRepository()
	}
	return profilerepo.NewPostgresRepository(pool)
}

func provideProvisioner(svc profile.Service) user.Provisioner {
	return svc
}

// provideRefreshTokenStore prefers valkey, then postgres, then memory.
func provideRefreshTokenStore(cfg *config.Config, pool *pgxpool.Pool, logger *slog.Logger) (auth.RefreshTokenStore, func(), error) {
	if cfg.Valkey.Enabled {
		opt, err := buildValkeyOptions(cfg.Valkey.Addr)
		if err != nil {
			return nil, nil, err
		}
		client, err := valkey.NewClient(opt)
		if err != nil {
			return nil, nil, err
		}
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Do(ctx, client.B().Ping().Build()).Error(); err != nil {
			client.Close()
			return nil, nil, err
		}
		logger.Info("refresh tokens stored in valkey", "addr", cfg.Valkey.Addr)
		return tokenstore.NewValkeyStore(client, cfg.Valkey.Prefix), client.Close, nil
	}
	if pool != nil {
		logger.Info("refresh tokens stored in postgres")
		return tokenstore.NewPostgresStore(pool), func() {}, nil
	}
	logger.Info("refresh tokens stored in memory")
	return tokenstore.NewMemoryStore(), func() {}, nil
}

func buildValkeyOptions(addr string) (valkey.ClientOption, error) {
	if strings.Contains(addr, "://") {
		return valkey.ParseURL(addr)
	}
	return valkey.ClientOption{InitAddress: []string{addr}}, nil
}

func provideSessionStore(cfg *config.Config, logger *slog.Logger) (auth.SessionStore, func(), error) {
	if !cfg.Redis.Enabled {
		logger.Info("cookie sessions stored in memory")
		return sessionstore.NewMemoryStore(), func() {}, nil
	}
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, nil, err
	}
	cleanup := func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}
	logger.Info("cookie sessions stored in redis", "addr", cfg.Redis.Addr)
	return sessionstore.NewRedisStore(client, cfg.Redis.Prefix), cleanup, nil
}
