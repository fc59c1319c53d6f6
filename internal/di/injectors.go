//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"

	"starbot/internal"
	"starbot/internal/controllers"
	"starbot/internal/models"
	"starbot/internal/providers"
	"starbot/internal/services"
	"starbot/internal/snapshot"
	"starbot/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewInstrumentedCacheProvider,
		providers.NewMetricsProvider,
		providers.NewNotifierProvider,

		models.NewStarStore,
		snapshot.NewZstdCompressor,
		snapshot.NewFileManager,
		snapshot.NewScheduler,
		services.NewStarService,
		services.NewAnalysisService,
		controllers.NewSlackController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
