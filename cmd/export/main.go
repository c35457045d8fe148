// Command export writes the export bundle of one trip, or of every trip, as
// JSON files.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/rs/zerolog/log"

	"github.com/mr-jafner/TravelTogether-sub000/internal/adapters/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	dbclient "github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/clients/database"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
	queryservices "github.com/mr-jafner/TravelTogether-sub000/internal/query/services"
	"github.com/mr-jafner/TravelTogether-sub000/pkg/config"
)

const pageSize = 100

func main() {
	var tripID int64
	var outDir string
	flag.Int64Var(&tripID, "trip", 0, "trip ID to export (0 exports every trip)")
	flag.StringVar(&outDir, "out", ".", "directory the JSON files are written to")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	observability.InitLogger("traveltogether-export", cfg.Log.Env, cfg.Log.Level)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := dbclient.NewClient(ctx, &cfg.Database)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer client.Close()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		log.Fatal().Err(err).Str("dir", outDir).Msg("Failed to create output directory")
	}

	reads := queryservices.NewTripQueryService(database.NewRegistry(client), nil, 0, nil)

	ids := []int64{tripID}
	if tripID == 0 {
		if ids, err = allTripIDs(ctx, reads); err != nil {
			log.Fatal().Err(err).Msg("Failed to list trips")
		}
	}

	for _, id := range ids {
		path, err := exportOne(ctx, reads, id, outDir)
		if err != nil {
			log.Fatal().Err(err).Int64("trip_id", id).Msg("Export failed")
		}
		log.Info().Int64("trip_id", id).Str("file", path).Msg("Trip exported")
	}
	log.Info().Int("trips", len(ids)).Msg("Export complete")
}

func allTripIDs(ctx context.Context, reads *queryservices.TripQueryService) ([]int64, error) {
	var ids []int64
	for offset := 0; ; offset += pageSize {
		page, err := reads.ListTrips(ctx, entities.TripFilter{Limit: pageSize, Offset: offset})
		if err != nil {
			return nil, err
		}
		for _, t := range page {
			ids = append(ids, t.ID)
		}
		if len(page) < pageSize {
			return ids, nil
		}
	}
}

func exportOne(ctx context.Context, reads *queryservices.TripQueryService, tripID int64, outDir string) (string, error) {
	bundle, err := reads.BuildExportView(ctx, tripID)
	if err != nil {
		return "", err
	}

	path := filepath.Join(outDir, fmt.Sprintf("trip-%d.json", tripID))
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	if err := enc.Encode(bundle); err != nil {
		return "", err
	}
	return path, f.Close()
}
