//go:build wireinject
// +build wireinject

package main

import (
	"github.com/google/wire"

	"github.com/yanqian/breatheeasy/internal/bootstrap"
	"github.com/yanqian/breatheeasy/internal/domain/action"
	"github.com/yanqian/breatheeasy/internal/domain/airquality"
	"github.com/yanqian/breatheeasy/internal/domain/dashboard"
	"github.com/yanqian/breatheeasy/internal/domain/oracle"
	"github.com/yanqian/breatheeasy/internal/domain/speech"
	"github.com/yanqian/breatheeasy/internal/infra/config"
	httpiface "github.com/yanqian/breatheeasy/internal/interface/http"
	"github.com/yanqian/breatheeasy/pkg/logger"
	"github.com/yanqian/breatheeasy/pkg/metrics"
)

func initializeApp() (*bootstrap.App, func(), error) {
	wire.Build(
		config.Load,
		logger.New,
		metrics.NewRecorder,
		provideLLMClients,
		provideOracle,
		provideSynthesizer,
		provideSpeechArchive,
		provideTokenCounter,
		provideAirQualityConfig,
		provideActionConfig,
		provideActivityLog,
		provideTrending,
		provideRegistryConfig,
		provideSessionConfig,
		provideTokenIssuer,
		oracle.NewClient,
		airquality.NewService,
		speech.NewService,
		action.NewRunner,
		action.NewActions,
		dashboard.NewRegistry,
		wire.Bind(new(dashboard.Capabilities), new(*action.Actions)),
		wire.Bind(new(httpiface.ActionService), new(*action.Actions)),
		httpiface.NewHandler,
		httpiface.NewSessionHandler,
		httpiface.NewRouter,
		bootstrap.NewApp,
	)
	return nil, nil, nil
}
