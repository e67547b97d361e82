// Package apiserver wires the HTTP surface: routing, middleware and the
// handlers that expose the pipeline's records.
package apiserver

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/housingpipeline/housingpipeline/pkg/apiserver/handlers"
	"github.com/housingpipeline/housingpipeline/pkg/apiserver/middleware"
	"github.com/housingpipeline/housingpipeline/pkg/config"
	"github.com/housingpipeline/housingpipeline/pkg/sharepoint"
	"github.com/housingpipeline/housingpipeline/pkg/store/postgres"
	redisclient "github.com/housingpipeline/housingpipeline/pkg/store/redis"
)

type Server struct {
	router *gin.Engine
	db     *postgres.Store
	cache  *redisclient.Cache
	cfg    *config.Config
	logger *zap.Logger
}

// NewServer builds the router. cache may be nil; the stats endpoints then
// recompute on every request.
func NewServer(db *postgres.Store, cache *redisclient.Cache, cfg *config.Config, logger *zap.Logger) *Server {
	s := &Server{
		db:     db,
		cache:  cache,
		cfg:    cfg,
		logger: logger,
	}
	s.setupRouter()
	return s
}

func (s *Server) setupRouter() {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(gin.Recovery())
	r.Use(middleware.Logger(s.logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS())

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	graphClient := sharepoint.NewClient(&s.cfg.Graph, s.logger)
	provisioner := sharepoint.NewProvisioner(graphClient, &s.cfg.Graph, s.logger)

	api := r.Group("/api")
	{
		projectHandler := handlers.NewProjectHandler(s.db, s.cache, s.logger)
		api.GET("/projects", projectHandler.List)
		api.POST("/projects", projectHandler.Create)
		api.GET("/projects/dashboard-stats", projectHandler.DashboardStats)
		api.GET("/projects/:id", projectHandler.Get)
		api.PUT("/projects/:id", projectHandler.Update)
		api.GET("/projects/:id/funding-recommendations", projectHandler.Recommendations)
		api.GET("/projects/:id/insights", projectHandler.Insights)

		clientHandler := handlers.NewClientHandler(s.db, s.logger)
		api.GET("/clients", clientHandler.List)
		api.POST("/clients", clientHandler.Create)
		api.GET("/clients/:id", clientHandler.Get)
		api.PUT("/clients/:id", clientHandler.Update)

		fundingSourceHandler := handlers.NewFundingSourceHandler(s.db, s.logger)
		api.GET("/funding-sources", fundingSourceHandler.List)
		api.POST("/funding-sources", fundingSourceHandler.Create)
		api.GET("/funding-sources/types", fundingSourceHandler.Types)
		api.GET("/funding-sources/:id", fundingSourceHandler.Get)
		api.PUT("/funding-sources/:id", fundingSourceHandler.Update)

		applicationHandler := handlers.NewApplicationHandler(s.db, s.cache, s.logger)
		api.GET("/applications", applicationHandler.List)
		api.POST("/applications", applicationHandler.Create)
		api.GET("/applications/dashboard-stats", applicationHandler.DashboardStats)
		api.GET("/applications/:id", applicationHandler.Get)
		api.PUT("/applications/:id", applicationHandler.Update)

		timeTrackingHandler := handlers.NewTimeTrackingHandler(s.db, s.logger)
		api.GET("/time-tracking", timeTrackingHandler.List)
		api.POST("/time-tracking", timeTrackingHandler.Create)
		api.PUT("/time-tracking/:id", timeTrackingHandler.Update)
		api.DELETE("/time-tracking/:id", timeTrackingHandler.Delete)
		api.GET("/time-tracking/summary", timeTrackingHandler.Summary)
		api.GET("/time-tracking/invoice-data", timeTrackingHandler.InvoiceData)
		api.POST("/time-tracking/mark-invoiced", timeTrackingHandler.MarkInvoiced)

		sharePointHandler := handlers.NewSharePointHandler(s.db, graphClient, provisioner, &s.cfg.Graph, s.logger)
		sp := api.Group("/sharepoint")
		sp.POST("/projects/:id/create-site", sharePointHandler.CreateSite)
		sp.POST("/projects/:id/add-member", sharePointHandler.AddMember)
		sp.POST("/projects/:id/upload-document", sharePointHandler.UploadDocument)
		sp.GET("/projects/:id/sharepoint-info", sharePointHandler.Info)
		sp.GET("/config/check", sharePointHandler.ConfigCheck)
		sp.GET("/folder-structure/default", sharePointHandler.FolderStructure)
	}

	s.router = r
}

func (s *Server) Router() *gin.Engine {
	return s.router
}
