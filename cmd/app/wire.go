//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/rencard-user/internal/bootstrap"
	"github.com/yanqian/rencard-user/internal/domain/auth"
	"github.com/yanqian/rencard-user/internal/domain/profile"
	"github.com/yanqian/rencard-user/internal/domain/user"
	"github.com/yanqian/rencard-user/internal/infra/config"
	httpiface "github.com/yanqian/rencard-user/internal/interface/http"
	"github.com/yanqian/rencard-user/pkg/logger"
	"github.com/yanqian/rencard-user/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		provideAuthConfig,
		provideCookieConfig,
		providePasswordHasher,
		providePostgresPool,
		provideUserRepository,
		provideProfileRepository,
		provideProvisioner,
		provideRefreshTokenStore,
		provideSessionStore,
		metrics.NewAuthMetrics,
		profile.NewService,
		user.NewDirectory,
		auth.NewService,
		wire.Bind(new(auth.UserDirectory), new(*user.Directory)),
		wire.Bind(new(httpiface.DemographicsUpdater), new(*user.Directory)),
		wire.Bind(new(auth.Recorder), new(*metrics.AuthMetrics)),
		httpiface.NewHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
