package app

import (
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/noah-isme/cronograma-api/api/swagger"
	"github.com/noah-isme/cronograma-api/internal/handler"
	internalmiddleware "github.com/noah-isme/cronograma-api/internal/middleware"
	"github.com/noah-isme/cronograma-api/pkg/config"
	"github.com/noah-isme/cronograma-api/pkg/logger"
	corsmiddleware "github.com/noah-isme/cronograma-api/pkg/middleware/cors"
	reqidmiddleware "github.com/noah-isme/cronograma-api/pkg/middleware/requestid"
)

// Router builds the gin engine with every API route registered.
func (a *App) Router() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(a.Logger))
	r.Use(corsmiddleware.New(a.Config.CORS.AllowedOrigins))
	r.Use(internalmiddleware.Metrics(a.Metrics))

	metricsHandler := handler.NewMetricsHandler(a.Metrics, a.DB, a.Cache)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if a.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	importHandler := handler.NewScheduleImportHandler(a.Importer, a.Files)
	rulesHandler := handler.NewPlanRulesHandler(a.Rules)

	api := r.Group(a.Config.APIPrefix)
	{
		schedule := api.Group("/schedule/imports")
		schedule.POST("", importHandler.Import)
		schedule.GET("/files", importHandler.Files)

		students := api.Group("/students/:id")
		students.GET("/electives", rulesHandler.Electives)
		students.GET("/orientations", rulesHandler.Orientations)
		students.GET("/orientation-rule", rulesHandler.OrientationRule)
		students.GET("/plan-coherence", rulesHandler.Coherence)
		students.GET("/risk-report", rulesHandler.RiskReport)
		students.GET("/reconciliation", rulesHandler.Reconciliation)

		api.GET("/reports/at-risk", rulesHandler.AtRisk)
	}

	return r
}
