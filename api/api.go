package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/ledger"
	"github.com/vocdoni/qf-z-sandbox/rounds"
	"github.com/vocdoni/qf-z-sandbox/settlement"
	stg "github.com/vocdoni/qf-z-sandbox/storage"
)

// APIConfig type represents the configuration for the API HTTP server. It
// includes the network options and the engine components the handlers
// delegate to.
type APIConfig struct {
	Host       string
	Port       int
	Storage    *stg.Storage
	Ledger     *ledger.Ledger
	Rounds     *rounds.Manager
	Settlement *settlement.Settlement
	ChainID    uint32
}

// API type represents the funding engine HTTP API server.
type API struct {
	router     *chi.Mux
	storage    *stg.Storage
	ledger     *ledger.Ledger
	rounds     *rounds.Manager
	settlement *settlement.Settlement
	chainID    uint32
}

// New creates a new API instance with the given configuration and starts the
// HTTP server.
func New(conf *APIConfig) (*API, error) {
	if conf == nil {
		return nil, fmt.Errorf("missing API configuration")
	}
	if conf.Storage == nil || conf.Ledger == nil || conf.Rounds == nil || conf.Settlement == nil {
		return nil, fmt.Errorf("missing engine components")
	}
	a := &API{
		storage:    conf.Storage,
		ledger:     conf.Ledger,
		rounds:     conf.Rounds,
		settlement: conf.Settlement,
		chainID:    conf.ChainID,
	}

	// Initialize router
	a.initRouter()
	go func() {
		log.Infow("Starting API server", "host", conf.Host, "port", conf.Port)
		if err := http.ListenAndServe(fmt.Sprintf("%s:%d", conf.Host, conf.Port), a.router); err != nil {
			log.Fatalf("failed to start the API server: %v", err)
		}
	}()
	return a, nil
}

// Router returns the chi router for testing purposes
func (a *API) Router() *chi.Mux {
	return a.router
}

// registerHandlers registers all the API handlers.
func (a *API) registerHandlers() {
	log.Infow("register handler", "endpoint", PingEndpoint, "method", "GET")
	a.router.Get(PingEndpoint, func(w http.ResponseWriter, r *http.Request) {
		httpWriteOK(w)
	})
	log.Infow("register handler", "endpoint", RoundsEndpoint, "method", "POST")
	a.router.Post(RoundsEndpoint, a.newRound)
	log.Infow("register handler", "endpoint", RoundsEndpoint, "method", "GET")
	a.router.Get(RoundsEndpoint, a.listRounds)
	log.Infow("register handler", "endpoint", RoundEndpoint, "method", "GET")
	a.router.Get(RoundEndpoint, a.round)
	log.Infow("register handler", "endpoint", TopUpEndpoint, "method", "POST")
	a.router.Post(TopUpEndpoint, a.topUp)
	log.Infow("register handler", "endpoint", MatchingEndpoint, "method", "POST")
	a.router.Post(MatchingEndpoint, a.computeMatching)
	log.Infow("register handler", "endpoint", FinalizeEndpoint, "method", "POST")
	a.router.Post(FinalizeEndpoint, a.finalizeRound)
	log.Infow("register handler", "endpoint", DonationsEndpoint, "method", "POST")
	a.router.Post(DonationsEndpoint, a.newDonation)
	log.Infow("register handler", "endpoint", DonationBatchEndpoint, "method", "POST")
	a.router.Post(DonationBatchEndpoint, a.newDonationBatch)
	log.Infow("register handler", "endpoint", ContributionEndpoint, "method", "GET")
	a.router.Get(ContributionEndpoint, a.contribution)
	log.Infow("register handler", "endpoint", ProjectEndpoint, "method", "GET")
	a.router.Get(ProjectEndpoint, a.projectAggregate)
	log.Infow("register handler", "endpoint", EventsEndpoint, "method", "GET")
	a.router.Get(EventsEndpoint, a.donationEvents)
	log.Infow("register handler", "endpoint", AllocationsEndpoint, "method", "GET")
	a.router.Get(AllocationsEndpoint, a.allocations)
	log.Infow("register handler", "endpoint", ClaimEndpoint, "method", "POST")
	a.router.Post(ClaimEndpoint, a.claim)
}

// initRouter creates the router with all the routes and middleware.
func (a *API) initRouter() {
	// Create the router with a basic middleware stack
	a.router = chi.NewRouter()
	a.router.Use(cors.New(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any of major browsers
	}).Handler)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Throttle(100))
	a.router.Use(middleware.ThrottleBacklog(5000, 40000, 60*time.Second))
	a.router.Use(middleware.Timeout(45 * time.Second))

	// Register the API handlers
	a.registerHandlers()
}
