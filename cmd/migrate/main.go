// Command migrate applies the schema and the one-time data migrations without
// starting the API server.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/secrets"
)

func main() {
	var creators bool
	flag.BoolVar(&creators, "creators", true, "give the creator role to the first participant of trips that have none")
	flag.Parse()

	if _, err := secrets.ApplyVaultSecrets(context.Background(), secrets.LoadVaultConfigFromEnv()); err != nil {
		log.Fatal().Err(err).Msg("Failed to load secrets from Vault")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("traveltogether-migrate", cfg.Log.Env, cfg.Log.Level)

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	start := time.Now()

	// Opening the client applies the schema.
	client, err := dbclient.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer client.Close()
	log.Info().Str("driver", client.Driver()).Msg("Schema is up to date")

	if creators {
		repos := database.NewRegistry(client)
		n, err := repos.Participants.AssignMissingCreators(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Creator migration failed")
		}
		log.Info().Int64("participants", n).Msg("Creator migration complete")
	}

	log.Info().Dur("elapsed", time.Since(start)).Msg("Migration finished")
}
