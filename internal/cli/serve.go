package cli

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/goodcabs/tripsense/internal/cache"
	"github.com/goodcabs/tripsense/internal/config"
	"github.com/goodcabs/tripsense/internal/database"
	"github.com/goodcabs/tripsense/internal/errors"
	"github.com/goodcabs/tripsense/internal/monitoring"
	"github.com/goodcabs/tripsense/internal/ratelimit"
	"github.com/goodcabs/tripsense/internal/reports"
	"github.com/goodcabs/tripsense/internal/satisfaction"
	"github.com/goodcabs/tripsense/internal/types"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the prediction API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		return runServer(cfg)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

// serverDeps bundles the collaborators of the HTTP layer.
type serverDeps struct {
	repo      *database.TripRepository
	store     *satisfaction.FileModelStore
	trainer   *satisfaction.Trainer
	predictor *satisfaction.Predictor
	reports   *reports.Service
	metrics   *monitoring.Metrics
	logger    *monitoring.Logger
	cache     *cache.Cache
}

func buildDeps(cfg *config.Config, db *database.DB) *serverDeps {
	repo := database.NewTripRepository(db)
	store := satisfaction.NewFileModelStore(cfg.Data.ModelDir)
	trainer := satisfaction.NewTrainer(repo, store, satisfaction.TrainerConfig{
		MinRows:   cfg.Training.MinRows,
		TestRatio: cfg.Training.TestRatio,
		Folds:     cfg.Training.Folds,
		Seed:      cfg.Training.Seed,
	})
	predictor := satisfaction.NewPredictor(repo, store, trainer, satisfaction.PredictorConfig{
		DistanceWindowKM: cfg.Cohort.DistanceWindowKM,
		FareWindow:       cfg.Cohort.FareWindow,
	})

	return &serverDeps{
		repo:      repo,
		store:     store,
		trainer:   trainer,
		predictor: predictor,
		reports:   reports.NewService(db),
		metrics:   monitoring.NewMetrics(),
		logger:    monitoring.NewLogger(),
		cache:     cache.NewCache(cfg.Cache.Size, cfg.Cache.TTL),
	}
}

func runServer(cfg *config.Config) error {
	db, err := database.NewDB(cfg.Data.Dir)
	if err != nil {
		return err
	}
	defer db.Close()

	r := newRouter(cfg, buildDeps(cfg, db))

	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: r,
	}

	go func() {
		slog.Info("Starting server", "port", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("Server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	slog.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		slog.Error("Server forced to shutdown", "error", err)
		return err
	}

	slog.Info("Server exited")
	return nil
}

// newRouter assembles the middleware chain and routes.
func newRouter(cfg *config.Config, deps *serverDeps) *gin.Engine {
	repo := deps.repo
	trainer := deps.trainer
	predictor := deps.predictor
	reportsService := deps.reports
	appMetrics := deps.metrics
	appLogger := deps.logger
	appCache := deps.cache

	r := gin.New()

	// Request ID first so every log line downstream can carry it
	r.Use(requestIDMiddleware())
	r.Use(monitoring.MonitoringMiddleware(appMetrics, appLogger))
	r.Use(errors.ErrorHandler())
	r.Use(errors.RecoveryHandler())

	corsConfig := cors.DefaultConfig()
	corsConfig.AllowAllOrigins = true
	corsConfig.AllowHeaders = append(corsConfig.AllowHeaders, "X-Request-ID")
	r.Use(cors.New(corsConfig))

	limiter := ratelimit.NewRateLimiter(ratelimit.Config{
		IPLimitPerMin:   cfg.Limits.IPPerMinute,
		BurstMultiplier: cfg.Limits.BurstMultiplier,
	}, appMetrics)
	r.Use(limiter.IPRateLimitMiddleware())

	r.Use(appCache.Middleware(appMetrics))

	r.GET("/health", func(c *gin.Context) {
		tripCount, err := repo.Count(c.Request.Context())
		status := "ok"
		httpStatus := http.StatusOK
		if err != nil {
			status = "degraded"
			httpStatus = http.StatusServiceUnavailable
		}

		modelState := "ready"
		if model, _, loadErr := deps.store.Load(); loadErr != nil {
			modelState = "degraded"
		} else if model == nil {
			modelState = "uninitialized"
		}

		c.JSON(httpStatus, gin.H{
			"status":    status,
			"model":     modelState,
			"timestamp": time.Now().Format(time.RFC3339),
			"version":   "1.0.0",
			"trips":     tripCount,
			"metrics":   appMetrics.GetStats(),
		})
	})

	r.GET("/metrics", func(c *gin.Context) {
		c.JSON(http.StatusOK, appMetrics.GetStats())
	})

	r.GET("/cache/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, appCache.Stats())
	})

	r.POST("/train", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		start := time.Now()
		report, err := trainer.Train(ctx)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appMetrics.IncrementTraining()
		appLogger.TrainingLogger(
			report.Metadata.TotalSamples,
			report.ModelPerformance.RMSE,
			report.ModelPerformance.R2,
			report.ModelPerformance.CVMean,
			time.Since(start),
		)

		// Any cached prediction was produced by the replaced model
		appCache.Clear()

		c.JSON(http.StatusOK, report)
	})

	r.POST("/predict", func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), cfg.Server.RequestTimeout)
		defer cancel()

		var req types.PredictionRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			appErr := errors.NewValidationError("invalid prediction request", err.Error())
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		start := time.Now()
		result, err := predictor.Predict(ctx, req)
		if err != nil {
			appErr := errors.ToAppError(err)
			errors.LogError(c, appErr)
			c.JSON(appErr.HTTPStatus, appErr)
			return
		}

		appMetrics.RecordPrediction(string(result.Prediction.Status))
		appLogger.PredictionLogger(
			result.Prediction.SatisfactionScore,
			result.Prediction.ReliabilityScore,
			string(result.Prediction.Status),
			result.Analysis.SimilarTripsCount,
			time.Since(start),
			false,
		)

		c.JSON(http.StatusOK, result)
	})

	analysis := r.Group("/analysis")
	{
		analysis.GET("/city-fares", func(c *gin.Context) {
			report, err := reportsService.CityFares(c.Request.Context())
			if err != nil {
				appErr := errors.ToAppError(err)
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}
			c.JSON(http.StatusOK, report)
		})

		analysis.GET("/city-ratings", func(c *gin.Context) {
			report, err := reportsService.CityRatings(c.Request.Context())
			if err != nil {
				appErr := errors.ToAppError(err)
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}
			c.JSON(http.StatusOK, report)
		})

		analysis.GET("/demand", func(c *gin.Context) {
			report, err := reportsService.Demand(c.Request.Context())
			if err != nil {
				appErr := errors.ToAppError(err)
				errors.LogError(c, appErr)
				c.JSON(appErr.HTTPStatus, appErr)
				return
			}
			c.JSON(http.StatusOK, report)
		})
	}

	return r
}

// requestIDMiddleware tags each request with an X-Request-ID, honoring one
// supplied by the client.
func requestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}
