// @title Meeting Tracker API
// @version 1.0
// @description Backend API for zone meetings, attendance and the attendance dashboard
// @contact.name API Support
// @contact.email support@example.com
// @license.name MIT
// @license.url https://opensource.org/licenses/MIT
// @host localhost:8080
// @BasePath /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"meetingtracker-be/config"
	"meetingtracker-be/internal/access"
	"meetingtracker-be/internal/database"
	"meetingtracker-be/internal/handlers"
	"meetingtracker-be/internal/logger"
	"meetingtracker-be/internal/middleware"
	"meetingtracker-be/internal/repository"
	"meetingtracker-be/internal/services"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	_ "meetingtracker-be/docs"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func main() {
	// Load configuration
	cfg := config.Load()
	appLog := logger.Setup(cfg.LogLevel, cfg.LogFormat, "meetingtracker-api")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Connect to MongoDB
	mongodb, err := database.NewMongoDB(cfg.MongoDBURI, cfg.MongoDBDatabase)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to MongoDB")
	}
	defer mongodb.Disconnect()

	if err := mongodb.EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to create indexes")
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(mongodb.Database)
	orgRepo := repository.NewOrgRepository(mongodb.Database)
	committeeRepo := repository.NewCommitteeRepository(mongodb.Database)
	agendaRepo := repository.NewAgendaRepository(mongodb.Database)
	meetingRepo := repository.NewMeetingRepository(mongodb.Database)

	// Legacy spreadsheet import
	var syncer services.Syncer
	if cfg.SheetsEnabled() {
		syncService := services.NewSheetsSyncService(services.NewGoogleSheetsSource(cfg), meetingRepo, appLog)
		syncer = syncService
		if cfg.SheetsSyncInterval > 0 {
			services.StartSheetsSyncWorker(ctx, cfg.SheetsSyncInterval, syncService)
			log.Info().Dur("interval", cfg.SheetsSyncInterval).Msg("sheets sync worker started")
		}
	} else {
		log.Info().Msg("google sheets import not configured")
	}

	r := newRouter(cfg, appLog, mongodb, routeHandlers{
		auth:       handlers.NewAuthHandler(cfg, userRepo),
		users:      handlers.NewUserHandler(userRepo, cfg.RequestTimeout),
		org:        handlers.NewOrgHandler(orgRepo, cfg.RequestTimeout),
		committees: handlers.NewCommitteeHandler(committeeRepo, cfg.RequestTimeout),
		agendas:    handlers.NewAgendaHandler(agendaRepo, cfg.RequestTimeout),
		meetings:   handlers.NewMeetingHandler(meetingRepo, cfg.RequestTimeout),
		dashboard:  handlers.NewDashboardHandler(meetingRepo, orgRepo, cfg.RequestTimeout),
		sync:       handlers.NewSyncHandler(syncer),
	})

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.Port).Str("database", cfg.MongoDBDatabase).Msg("server starting")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}

type routeHandlers struct {
	auth       *handlers.AuthHandler
	users      *handlers.UserHandler
	org        *handlers.OrgHandler
	committees *handlers.CommitteeHandler
	agendas    *handlers.AgendaHandler
	meetings   *handlers.MeetingHandler
	dashboard  *handlers.DashboardHandler
	sync       *handlers.SyncHandler
}

func newRouter(cfg *config.Config, appLog zerolog.Logger, mongodb *database.MongoDB, h routeHandlers) *gin.Engine {
	if cfg.LogFormat == "json" {
		gin.SetMode(gin.ReleaseMode)
	}
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(appLog))
	r.Use(middleware.Metrics())
	r.Use(middleware.CORS(cfg))

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Public routes
	public := r.Group("/api")
	{
		public.GET("/health", func(c *gin.Context) {
			ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
			defer cancel()
			if err := mongodb.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "degraded", "database": "unreachable"})
				return
			}
			c.JSON(http.StatusOK, gin.H{
				"status":   "ok",
				"message":  "Meeting Tracker API is running",
				"database": "MongoDB connected",
			})
		})

		auth := public.Group("/auth")
		{
			auth.POST("/login", h.auth.Login)
			auth.POST("/refresh", h.auth.RefreshToken)
		}
	}

	admin := middleware.RequireRole(access.RoleAdmin)
	districtWide := middleware.RequireRole(access.RoleAdmin, access.RoleDistrictLeader)
	managers := middleware.RequireRole(access.RoleAdmin, access.RoleDistrictLeader, access.RoleZoneLeader)

	// Protected routes
	protected := r.Group("/api")
	protected.Use(middleware.AuthMiddleware(cfg))
	{
		protected.POST("/auth/logout", h.auth.Logout)
		protected.GET("/auth/me", h.auth.GetMe)
		protected.PUT("/auth/password", h.auth.ChangePassword)

		// Organization
		protected.GET("/districts", h.org.ListDistricts)
		protected.GET("/districts/:id", h.org.GetDistrict)
		protected.POST("/districts", admin, h.org.CreateDistrict)
		protected.PUT("/districts/:id", admin, h.org.UpdateDistrict)
		protected.DELETE("/districts/:id", admin, h.org.DeleteDistrict)

		protected.GET("/zones", h.org.ListZones)
		protected.GET("/zones/:id", h.org.GetZone)
		protected.POST("/zones", districtWide, h.org.CreateZone)
		protected.PUT("/zones/:id", districtWide, h.org.UpdateZone)
		protected.DELETE("/zones/:id", districtWide, h.org.DeleteZone)

		protected.GET("/units", h.org.ListUnits)
		protected.POST("/units", managers, h.org.CreateUnit)
		protected.PUT("/units/:id", managers, h.org.UpdateUnit)
		protected.DELETE("/units/:id", managers, h.org.DeleteUnit)

		// Users
		protected.GET("/users", admin, h.users.List)
		protected.POST("/users", admin, h.users.Create)
		protected.GET("/users/:id", admin, h.users.Get)
		protected.PUT("/users/:id", admin, h.users.Update)
		protected.DELETE("/users/:id", admin, h.users.Delete)

		// Committees
		protected.GET("/committees", h.committees.List)
		protected.GET("/committees/:id", h.committees.Get)
		protected.POST("/committees", admin, h.committees.Create)
		protected.PUT("/committees/:id", admin, h.committees.Update)
		protected.DELETE("/committees/:id", admin, h.committees.Delete)
		protected.GET("/committees/:id/roles", h.committees.ListRoles)
		protected.POST("/committees/:id/roles", admin, h.committees.CreateRole)
		protected.DELETE("/committee-roles/:id", admin, h.committees.DeleteRole)

		// Agendas
		protected.GET("/agendas", h.agendas.List)
		protected.POST("/agendas", managers, h.agendas.Create)
		protected.PUT("/agendas/:id", managers, h.agendas.Update)
		protected.DELETE("/agendas/:id", managers, h.agendas.Delete)

		// Meetings
		protected.GET("/meetings", h.meetings.List)
		protected.GET("/meetings/week", h.meetings.Week)
		protected.GET("/meetings/:id", h.meetings.Get)
		protected.POST("/meetings", managers, h.meetings.Create)
		protected.PUT("/meetings/:id", managers, h.meetings.Update)
		protected.DELETE("/meetings/:id", managers, h.meetings.Delete)

		// Dashboard
		protected.GET("/dashboard/attendance", h.dashboard.Attendance)
		protected.GET("/dashboard/pending-zones", h.dashboard.PendingZones)
		protected.GET("/people/suggest", h.dashboard.SuggestPeople)

		protected.POST("/sync/sheets", admin, h.sync.SyncSheets)
	}

	return r
}
