package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/ethereum/go-ethereum/common"
	"go.vocdoni.io/dvote/db"
	"go.vocdoni.io/dvote/db/metadb"
	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/crypto/ecc/curves"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/cleartext"
	"github.com/vocdoni/qf-z-sandbox/crypto/encint/schemes"
	"github.com/vocdoni/qf-z-sandbox/ledger"
	"github.com/vocdoni/qf-z-sandbox/matching"
	"github.com/vocdoni/qf-z-sandbox/oracle"
	"github.com/vocdoni/qf-z-sandbox/rounds"
	"github.com/vocdoni/qf-z-sandbox/service"
	"github.com/vocdoni/qf-z-sandbox/settlement"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

func main() {
	host := flag.String("host", "0.0.0.0", "API host to bind to")
	port := flag.Int("port", 8080, "API port to listen on")
	dataDir := flag.String("dataDir", "./qfd-data", "data directory for the database")
	scheme := flag.String("scheme", cleartext.SchemeType, "encrypted integer scheme (cleartext or elgamal)")
	curve := flag.String("curve", curves.CurveTypeBabyJubJub, "elliptic curve backend for elgamal keys (bjj_gnark or bjj_iden3)")
	chainID := flag.Uint32("chainId", 1, "chain identifier included in round IDs")
	minProjects := flag.Uint64("minProjects", types.DefaultMinProjects, "minimum verified projects required to compute matching")
	projectCapBps := flag.Uint64("projectCapBps", types.DefaultProjectCapBps, "per-project matching cap in basis points")
	sealAllocations := flag.Bool("sealAllocations", false, "store allocation amounts encrypted until claim time")
	autoMatching := flag.Bool("autoMatching", true, "automatically compute matching when rounds end")
	monitorInterval := flag.Duration("monitorInterval", 10*time.Second, "round monitor polling interval")
	logLevel := flag.String("logLevel", "info", "log level (debug, info, warn, error)")

	flag.Parse()
	log.Init(*logLevel, "stdout", nil)

	database, err := metadb.New(db.TypePebble, *dataDir)
	if err != nil {
		log.Fatal(err)
	}
	stg := storage.New(database)

	provider, err := schemes.NewProvider(*scheme, stg)
	if err != nil {
		log.Fatal(err)
	}
	if err := provider.SetCurve(*curve); err != nil {
		log.Fatal(err)
	}

	engine := matching.New(stg, provider, &matching.EqualSplitPolicy{CapBps: *projectCapBps})
	engine.SealAllocations(*sealAllocations)
	manager := rounds.New(stg, provider, engine, *chainID, *minProjects)
	registry := &openRegistry{}
	ldg := ledger.New(stg, provider, registry, &openVerifier{})
	orc := oracle.NewLocal(provider)
	stl := settlement.New(stg, registry, &logCustody{}, orc)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	apiService := service.NewAPI(stg, ldg, manager, stl, *chainID, *host, *port)
	if err := apiService.Start(ctx); err != nil {
		log.Fatal(err)
	}
	monitor := service.NewRoundMonitor(manager, stg, *monitorInterval, *autoMatching)
	if err := monitor.Start(ctx); err != nil {
		log.Fatal(err)
	}
	log.Infow("qfd started", "host", *host, "port", *port, "scheme", provider.Type(), "chainId", *chainID)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	<-sigChan

	log.Info("shutting down")
	monitor.Stop()
	apiService.Stop()
}

// openRegistry accepts any project and reports the project address as its own
// owner. It stands in for an on-chain registry in local deployments.
type openRegistry struct{}

func (r *openRegistry) IsActiveAndVerified(project common.Address) (bool, error) {
	return true, nil
}

func (r *openRegistry) OwnerOf(project common.Address) (common.Address, error) {
	return project, nil
}

// openVerifier considers every donor eligible.
type openVerifier struct{}

func (v *openVerifier) IsEligible(donor common.Address) (bool, error) {
	return true, nil
}

// logCustody records transfers in the log instead of moving tokens. It is the
// default custody backend when no token bridge is configured.
type logCustody struct{}

func (c *logCustody) Transfer(to common.Address, amount uint64) error {
	log.Infow("payout transfer", "to", to.Hex(), "amount", amount)
	return nil
}
