package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/morevans/booking-service/pkg/errors"
	"github.com/morevans/booking-service/pkg/logging"
	"github.com/morevans/booking-service/pkg/metrics"
	"github.com/morevans/booking-service/pkg/middleware"
	"github.com/morevans/booking-service/pkg/mongodb"
	"github.com/morevans/booking-service/pkg/resilience"

	"github.com/morevans/booking-service/internal/api/dto"
	"github.com/morevans/booking-service/internal/application"
	"github.com/morevans/booking-service/internal/domain"
	"github.com/morevans/booking-service/internal/infrastructure/clients"
	mongoRepo "github.com/morevans/booking-service/internal/infrastructure/mongodb"
)

const serviceName = "booking-service"

func main() {
	_ = godotenv.Load()

	logConfig := logging.DefaultConfig(serviceName)
	logConfig.Level = logging.LogLevel(getEnv("LOG_LEVEL", "info"))
	logger := logging.New(logConfig)
	logger.SetDefault()

	logger.Info("Starting booking-service API")

	config := loadConfig()
	ctx := context.Background()

	// Initialize Prometheus metrics
	metricsConfig := metrics.DefaultConfig(serviceName)
	m := metrics.New(metricsConfig)
	logger.Info("Metrics initialized")

	// Initialize MongoDB with instrumentation
	mongoClient, err := mongodb.NewClient(ctx, config.MongoDB)
	if err != nil {
		logger.WithError(err).Error("Failed to connect to MongoDB")
		os.Exit(1)
	}
	instrumentedMongo := mongodb.NewInstrumentedClient(mongoClient, m, logger)
	defer instrumentedMongo.Close(ctx)
	logger.Info("Connected to MongoDB", "database", config.MongoDB.Database)

	// Initialize repositories
	sessionRepo := mongoRepo.NewSessionRepository(instrumentedMongo)

	// Initialize collaborator clients behind circuit breakers
	breakers := resilience.NewCircuitBreakerRegistry(logger.Logger, m)
	geocodingClient := clients.NewGeocodingClient(config.GeocodingURL, breakers, m, logger)
	storageClient := clients.NewStorageClient(config.StorageURL, breakers, m, logger)
	pricingClient := clients.NewPricingClient(config.PricingURL, breakers, m, logger)
	logger.Info("Collaborator clients initialized",
		"geocoding", config.GeocodingURL,
		"storage", config.StorageURL,
		"pricing", config.PricingURL)

	// Initialize application services
	wizardService := application.NewWizardApplicationService(sessionRepo, geocodingClient, m, logger)
	submissionService := application.NewSubmissionApplicationService(wizardService, storageClient, pricingClient, m, logger)

	// Setup Gin router with middleware
	router := gin.New()
	middleware.Setup(router, middleware.DefaultConfig(serviceName, logger.Logger))
	router.Use(middleware.Metrics(m))

	router.NoRoute(middleware.NoRoute())
	router.NoMethod(middleware.NoMethod())

	router.GET("/health", middleware.HealthCheck(serviceName))
	router.GET("/ready", middleware.ReadinessCheck(serviceName, func() error {
		return instrumentedMongo.HealthCheck(ctx)
	}))
	router.GET("/metrics", middleware.MetricsEndpoint(m))

	// API v1 routes
	api := router.Group("/api/v1")
	{
		sessions := api.Group("/wizard/sessions")
		{
			sessions.POST("", createSessionHandler(wizardService, logger))
			sessions.GET("", listDraftsHandler(wizardService, logger))
			sessions.GET("/:sessionId", getSessionHandler(wizardService, logger))
			sessions.DELETE("/:sessionId", deleteSessionHandler(wizardService, logger))
			sessions.PUT("/:sessionId/mode", setModeHandler(wizardService, logger))
			sessions.POST("/:sessionId/stops", addStopHandler(wizardService, logger))
			sessions.PATCH("/:sessionId/stops/:stopId", patchStopHandler(wizardService, logger))
			sessions.DELETE("/:sessionId/stops/:stopId", removeStopHandler(wizardService, logger))
			sessions.POST("/:sessionId/stops/move", moveStopHandler(wizardService, logger))
			sessions.POST("/:sessionId/stops/:stopId/geocode", geocodeStopHandler(wizardService, logger))
			sessions.POST("/:sessionId/stops/:stopId/items", addItemHandler(wizardService, logger))
			sessions.PATCH("/:sessionId/stops/:stopId/items/:itemId", patchItemHandler(wizardService, logger))
			sessions.DELETE("/:sessionId/stops/:stopId/items/:itemId", removeItemHandler(wizardService, logger))
			sessions.GET("/:sessionId/linkable-items", linkableItemsHandler(wizardService, logger))
			sessions.POST("/:sessionId/links/toggle", toggleLinkHandler(wizardService, logger))
			sessions.POST("/:sessionId/links/toggle-pickup", togglePickupLinksHandler(wizardService, logger))
			sessions.POST("/:sessionId/links/toggle-all", toggleAllLinksHandler(wizardService, logger))
			sessions.GET("/:sessionId/preview", previewHandler(wizardService, logger))
			sessions.POST("/:sessionId/steps/:step/submit", submitStepHandler(submissionService, logger))
		}
		api.GET("/catalog/items", catalogHandler())
	}

	// Start server
	srv := &http.Server{
		Addr:         config.ServerAddr,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	// Graceful shutdown
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.WithError(err).Error("Server error")
		}
	}()
	logger.Info("Server started", "addr", config.ServerAddr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.WithError(err).Error("Server forced to shutdown")
	}

	logger.Info("Server stopped")
}

// Config holds application configuration
type Config struct {
	ServerAddr   string
	MongoDB      *mongodb.Config
	GeocodingURL string
	StorageURL   string
	PricingURL   string
}

func loadConfig() *Config {
	return &Config{
		ServerAddr: getEnv("SERVER_ADDR", ":8080"),
		MongoDB: &mongodb.Config{
			URI:            getEnv("MONGODB_URI", "mongodb://localhost:27017"),
			Database:       getEnv("MONGODB_DATABASE", "morevans"),
			ConnectTimeout: 10 * time.Second,
			MaxPoolSize:    100,
			MinPoolSize:    10,
		},
		GeocodingURL: getEnv("GEOCODING_URL", "http://localhost:8091"),
		StorageURL:   getEnv("STORAGE_URL", "http://localhost:8092"),
		PricingURL:   getEnv("PRICING_URL", "http://localhost:8093"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// HTTP Handlers

func respond(c *gin.Context, responder *middleware.ErrorResponder, status int, result interface{}, err error) {
	if err != nil {
		if appErr, ok := err.(*errors.AppError); ok {
			responder.RespondWithAppError(appErr)
		} else {
			responder.RespondInternalError(err)
		}
		return
	}
	c.JSON(status, result)
}

func createSessionHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.CreateSessionRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		cmd := application.CreateSessionCommand{
			Mode:  domain.RequestMode(req.Mode),
			Flat:  req.Flat,
			Stops: req.Stops,
		}

		session, err := service.CreateSession(c.Request.Context(), cmd)
		respond(c, responder, http.StatusCreated, session, err)
	}
}

func listDraftsHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		limit, _ := strconv.ParseInt(c.DefaultQuery("limit", "20"), 10, 64)
		offset, _ := strconv.ParseInt(c.DefaultQuery("offset", "0"), 10, 64)

		drafts, err := service.ListDrafts(c.Request.Context(), application.ListDraftsQuery{
			Limit:  limit,
			Offset: offset,
		})
		respond(c, responder, http.StatusOK, drafts, err)
	}
}

func getSessionHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		session, err := service.GetSession(c.Request.Context(), c.Param("sessionId"))
		respond(c, responder, http.StatusOK, session, err)
	}
}

func deleteSessionHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		if err := service.DeleteSession(c.Request.Context(), c.Param("sessionId")); err != nil {
			respond(c, responder, 0, nil, err)
			return
		}
		c.Status(http.StatusNoContent)
	}
}

func setModeHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.SetModeRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.SetMode(c.Request.Context(), application.SetModeCommand{
			SessionID: c.Param("sessionId"),
			Mode:      domain.RequestMode(req.Mode),
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func addStopHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.AddStopRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.AddStop(c.Request.Context(), application.AddStopCommand{
			SessionID:  c.Param("sessionId"),
			Kind:       domain.StopKind(req.Type),
			AfterIndex: req.InsertAfter(),
		})
		respond(c, responder, http.StatusCreated, session, err)
	}
}

func patchStopHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.PatchStopRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.PatchStop(c.Request.Context(), application.PatchStopCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
			Patch:     req.ToDomain(),
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func removeStopHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		session, err := service.RemoveStop(c.Request.Context(), application.RemoveStopCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func moveStopHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.MoveStopRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.MoveStop(c.Request.Context(), application.MoveStopCommand{
			SessionID: c.Param("sessionId"),
			FromIndex: *req.FromIndex,
			ToIndex:   *req.ToIndex,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func geocodeStopHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.GeocodeRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.GeocodeStop(c.Request.Context(), application.GeocodeStopCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
			Query:     req.Query,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func addItemHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.AddItemRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}
		if req.PresetKey == "" && req.Item == nil {
			responder.RespondBadRequest("either preset_key or item is required")
			return
		}

		cmd := application.AddItemCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
			PresetKey: req.PresetKey,
		}
		if req.Item != nil {
			cmd.Item = req.Item.ToDomain()
		}

		session, err := service.AddItem(c.Request.Context(), cmd)
		respond(c, responder, http.StatusCreated, session, err)
	}
}

func patchItemHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.PatchItemRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.PatchItem(c.Request.Context(), application.PatchItemCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
			ItemID:    c.Param("itemId"),
			Patch:     req.ItemPatch,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func removeItemHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		session, err := service.RemoveItem(c.Request.Context(), application.RemoveItemCommand{
			SessionID: c.Param("sessionId"),
			StopID:    c.Param("stopId"),
			ItemID:    c.Param("itemId"),
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func linkableItemsHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		items, err := service.LinkableItems(c.Request.Context(), c.Param("sessionId"))
		respond(c, responder, http.StatusOK, items, err)
	}
}

func toggleLinkHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.ToggleLinkRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.ToggleLink(c.Request.Context(), application.ToggleLinkCommand{
			SessionID:     c.Param("sessionId"),
			DropoffStopID: req.DropoffStopID,
			ItemID:        req.ItemID,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func togglePickupLinksHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.TogglePickupLinksRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.TogglePickupLinks(c.Request.Context(), application.TogglePickupLinksCommand{
			SessionID:     c.Param("sessionId"),
			DropoffStopID: req.DropoffStopID,
			PickupStopID:  req.PickupStopID,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func toggleAllLinksHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		var req dto.ToggleAllLinksRequest
		if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
			responder.RespondWithAppError(appErr)
			return
		}

		session, err := service.ToggleAllLinks(c.Request.Context(), application.ToggleAllLinksCommand{
			SessionID:     c.Param("sessionId"),
			DropoffStopID: req.DropoffStopID,
		})
		respond(c, responder, http.StatusOK, session, err)
	}
}

func previewHandler(service *application.WizardApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		payload, err := service.Preview(c.Request.Context(), c.Param("sessionId"))
		respond(c, responder, http.StatusOK, payload, err)
	}
}

func submitStepHandler(service *application.SubmissionApplicationService, logger *logging.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		responder := middleware.NewErrorResponder(c, logger.Logger)

		step, err := strconv.Atoi(c.Param("step"))
		if err != nil {
			responder.RespondBadRequest("step must be a number")
			return
		}

		// The flat snapshot is optional; a bare submit reuses what the
		// session already holds
		var req dto.SubmitStepRequest
		if c.Request.ContentLength > 0 {
			if appErr := middleware.BindAndValidate(c, &req); appErr != nil {
				responder.RespondWithAppError(appErr)
				return
			}
		}

		result, err := service.SubmitStep(c.Request.Context(), application.SubmitStepCommand{
			SessionID: c.Param("sessionId"),
			Step:      step,
			Flat:      req.Flat,
		})
		respond(c, responder, http.StatusOK, result, err)
	}
}

func catalogHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"items": domain.Catalog()})
	}
}
