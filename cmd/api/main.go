package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/cache"
	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/api/handlers"
	"github.com/mr-jafner/TravelTogether-sub000/internal/api/routes"
	"github.com/mr-jafner/TravelTogether-sub000/internal/application/services"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/providers"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/redis"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	queryservices "github.com/mr-jafner/TravelTogether-sub000/internal/query/services"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/secrets"
)

func main() {
	// Store credentials may come from Vault; they must be in the
	// environment before the configuration is read.
	vault, vaultErr := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv())

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	observability.InitLogger(cfg.OTEL.ServiceName, cfg.Log.Env, cfg.Log.Level)

	if vaultErr != nil {
		log.Fatal().Err(vaultErr).Str("path", vault.Path).Msg("Failed to load secrets from Vault")
	} else if vault.Enabled {
		log.Info().Str("path", vault.Path).Int("loaded", vault.Loaded).Int("skipped", vault.Skipped).Msg("Secrets loaded from Vault")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize OpenTelemetry if enabled
	if cfg.OTEL.Enabled && cfg.OTEL.Endpoint != "" {
		shutdown, err := observability.Setup(ctx, cfg.OTEL.ServiceName, cfg.OTEL.ServiceVersion, cfg.OTEL.Endpoint)
		if err != nil {
			log.Warn().Err(err).Msg("Failed to set up OpenTelemetry")
		} else {
			observability.EnableOTelLogs()
			defer func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := shutdown(ctx); err != nil {
					log.Error().Err(err).Msg("Error shutting down OpenTelemetry")
				}
			}()
			log.Info().Str("endpoint", cfg.OTEL.Endpoint).Msg("OpenTelemetry initialized")
		}
	}

	metrics, err := observability.InitMetrics()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize metrics")
	}

	// Initialize database client
	dbClient, err := dbclient.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Database.Driver).Msg("Failed to initialize database client")
	}
	defer dbClient.Close()

	repos := database.NewRegistry(dbClient)

	// Trips created before roles existed get their first participant as creator.
	if n, err := repos.Participants.AssignMissingCreators(ctx); err != nil {
		log.Fatal().Err(err).Msg("Failed to assign missing trip creators")
	} else if n > 0 {
		log.Info().Int64("participants", n).Msg("Assigned creator role to legacy trips")
	}

	// Initialize Redis client; the service works without the view cache.
	var (
		cacheProvider providers.CacheProvider
		cachePinger   handlers.Pinger
	)
	if cfg.Redis.Enabled {
		redisClient, err := redis.NewClient(ctx, &cfg.Redis)
		if err != nil {
			log.Warn().Err(err).Msg("Redis unavailable, trip view cache disabled")
		} else {
			defer redisClient.Close()
			cacheProvider = cache.NewRedisAdapter(redisClient)
			cachePinger = redisClient
			log.Info().Str("addr", cfg.Redis.RedisAddr()).Msg("Redis client initialized")
		}
	}

	// Initialize services
	reads := queryservices.NewTripQueryService(repos, cacheProvider, cfg.Cache.TripViewTTLSeconds, metrics)
	tripService := services.NewTripService(dbClient, repos, reads)
	participantService := services.NewParticipantService(dbClient, repos, reads)
	itemService := services.NewItemService(dbClient, repos, reads)
	ratingService := services.NewRatingService(repos, reads, reads, metrics)
	recordService := services.NewRecordService(repos, reads)

	// Set up router
	router := routes.NewRouter(routes.Handlers{
		Trip:        handlers.NewTripHandler(tripService, reads),
		Participant: handlers.NewParticipantHandler(participantService),
		Item:        handlers.NewItemHandler(itemService, ratingService, reads),
		Record:      handlers.NewRecordHandler(recordService),
		Consensus:   handlers.NewConsensusHandler(),
		Health:      handlers.NewHealthHandler(dbClient, cachePinger),
	}, repos.Ratings, cfg.CORS.AllowedOrigins, metrics)

	serverAddr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         serverAddr,
		Handler:      router.SetupRoutes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Str("addr", serverAddr).Msg("Server starting")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed to start")
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Server shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Error during server shutdown")
	}

	log.Info().Msg("Server stopped")
}
