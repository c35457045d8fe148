package routes

import (
	"net/http"

	"github.com/mr-jafner/TravelTogether-sub000/internal/api/handlers"
	"github.com/mr-jafner/TravelTogether-sub000/internal/api/middleware"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/entities"
	"github.com/mr-jafner/TravelTogether-sub000/internal/domain/repositories"
	"github.com/mr-jafner/TravelTogether-sub000/internal/infrastructure/observability"
)

// Router holds all route handlers
type Router struct {
	mux *http.ServeMux

	tripHandler        *handlers.TripHandler
	participantHandler *handlers.ParticipantHandler
	itemHandler        *handlers.ItemHandler
	recordHandler      *handlers.RecordHandler
	consensusHandler   *handlers.ConsensusHandler
	healthHandler      *handlers.HealthHandler

	ratings        repositories.RatingRepository
	allowedOrigins []string
	metrics        *observability.Metrics
}

// Handlers groups the route handlers passed to NewRouter
type Handlers struct {
	Trip        *handlers.TripHandler
	Participant *handlers.ParticipantHandler
	Item        *handlers.ItemHandler
	Record      *handlers.RecordHandler
	Consensus   *handlers.ConsensusHandler
	Health      *handlers.HealthHandler
}

// NewRouter creates a new router. ratings backs the per-request loaders;
// metrics may be nil.
func NewRouter(
	h Handlers,
	ratings repositories.RatingRepository,
	allowedOrigins []string,
	metrics *observability.Metrics,
) *Router {
	return &Router{
		mux: http.NewServeMux(),

		tripHandler:        h.Trip,
		participantHandler: h.Participant,
		itemHandler:        h.Item,
		recordHandler:      h.Record,
		consensusHandler:   h.Consensus,
		healthHandler:      h.Health,

		ratings:        ratings,
		allowedOrigins: allowedOrigins,
		metrics:        metrics,
	}
}

// SetupRoutes configures all application routes
func (r *Router) SetupRoutes() http.Handler {
	r.mux.HandleFunc("GET /health", r.healthHandler.Health)

	// Trip endpoints
	r.mux.HandleFunc("GET /api/trips", r.tripHandler.ListTrips)
	r.mux.HandleFunc("POST /api/trips", r.tripHandler.CreateTrip)
	r.mux.HandleFunc("GET /api/trips/{id}", r.tripHandler.GetTrip)
	r.mux.HandleFunc("PUT /api/trips/{id}", r.tripHandler.UpdateTrip)
	r.mux.HandleFunc("DELETE /api/trips/{id}", r.tripHandler.DeleteTrip)
	r.mux.HandleFunc("GET /api/trips/{id}/export", r.tripHandler.ExportTrip)

	// Participant endpoints
	r.mux.HandleFunc("POST /api/trips/{id}/participants", r.participantHandler.AddParticipant)
	r.mux.HandleFunc("PUT /api/trips/{id}/participants/{participantId}", r.participantHandler.UpdateParticipant)
	r.mux.HandleFunc("DELETE /api/trips/{id}/participants/{participantId}", r.participantHandler.RemoveParticipant)

	// Activity and restaurant endpoints share one handler per kind
	for _, kind := range []entities.ItemKind{entities.KindActivity, entities.KindRestaurant} {
		base := "/api/trips/{id}/" + kind.Plural()
		r.mux.HandleFunc("GET "+base, r.itemHandler.ListItems(kind))
		r.mux.HandleFunc("POST "+base, r.itemHandler.AddItem(kind))
		r.mux.HandleFunc("PUT "+base+"/{itemId}", r.itemHandler.UpdateItem(kind))
		r.mux.HandleFunc("DELETE "+base+"/{itemId}", r.itemHandler.DeleteItem(kind))
		r.mux.HandleFunc("POST "+base+"/{itemId}/rate", r.itemHandler.Rate(kind))
		r.mux.HandleFunc("POST "+base+"/{itemId}/rate/{username}", r.itemHandler.Rate(kind))
		r.mux.HandleFunc("GET "+base+"/{itemId}/ratings", r.itemHandler.ItemRatings(kind))
	}

	// Travel, lodging and logistics endpoints
	r.mux.HandleFunc("GET /api/trips/{id}/travel", r.recordHandler.ListTravel)
	r.mux.HandleFunc("POST /api/trips/{id}/travel", r.recordHandler.AddTravel)
	r.mux.HandleFunc("PUT /api/trips/{id}/travel/{recordId}", r.recordHandler.UpdateTravel)
	r.mux.HandleFunc("DELETE /api/trips/{id}/travel/{recordId}", r.recordHandler.DeleteTravel)

	r.mux.HandleFunc("GET /api/trips/{id}/lodging", r.recordHandler.ListLodging)
	r.mux.HandleFunc("POST /api/trips/{id}/lodging", r.recordHandler.AddLodging)
	r.mux.HandleFunc("PUT /api/trips/{id}/lodging/{recordId}", r.recordHandler.UpdateLodging)
	r.mux.HandleFunc("DELETE /api/trips/{id}/lodging/{recordId}", r.recordHandler.DeleteLodging)

	r.mux.HandleFunc("GET /api/trips/{id}/logistics", r.recordHandler.ListLogistics)
	r.mux.HandleFunc("POST /api/trips/{id}/logistics", r.recordHandler.AddLogistics)
	r.mux.HandleFunc("PUT /api/trips/{id}/logistics/{recordId}", r.recordHandler.UpdateLogistics)
	r.mux.HandleFunc("DELETE /api/trips/{id}/logistics/{recordId}", r.recordHandler.DeleteLogistics)

	// Consensus engine endpoints
	r.mux.HandleFunc("POST /api/consensus/preview", r.consensusHandler.Preview)
	r.mux.HandleFunc("GET /api/consensus/rules", r.consensusHandler.Rules)

	// Apply middleware in reverse order (last middleware wraps first).
	// Logging wraps the mux directly so it sees the matched pattern.
	var handler http.Handler = r.mux
	handler = middleware.LoggingMiddleware(handler)
	handler = middleware.ObservabilityMiddleware(r.metrics)(handler)
	handler = middleware.LoadersMiddleware(r.ratings)(handler)

	// Apply HTTP performance optimizations (compression, ETag, cache headers)
	handler = middleware.ResponseOptimization(handler)

	// CORS wraps everything so preflight never reaches the handlers
	handler = middleware.CORSMiddleware(r.allowedOrigins)(handler)

	return handler
}
