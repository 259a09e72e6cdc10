// Package service wires the engine components into long-running services:
// the HTTP API server and the round monitor.
package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.vocdoni.io/dvote/log"

	"github.com/vocdoni/qf-z-sandbox/rounds"
	"github.com/vocdoni/qf-z-sandbox/storage"
	"github.com/vocdoni/qf-z-sandbox/types"
)

// RoundMonitor is a service that polls the stored rounds, logs their
// lifecycle transitions and, when enabled, computes matching automatically
// as soon as a round ends.
type RoundMonitor struct {
	manager      *rounds.Manager
	storage      *storage.Storage
	interval     time.Duration
	autoMatching bool

	mu     sync.Mutex
	cancel context.CancelFunc
	states map[string]types.RoundState
}

// NewRoundMonitor creates a new RoundMonitor service.
func NewRoundMonitor(manager *rounds.Manager, stg *storage.Storage, interval time.Duration, autoMatching bool) *RoundMonitor {
	return &RoundMonitor{
		manager:      manager,
		storage:      stg,
		interval:     interval,
		autoMatching: autoMatching,
		states:       make(map[string]types.RoundState),
	}
}

// Start begins monitoring. It returns an error if the service is already
// running.
func (rm *RoundMonitor) Start(ctx context.Context) error {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.cancel != nil {
		return fmt.Errorf("service already running")
	}

	ctx, cancel := context.WithCancel(ctx)
	rm.cancel = cancel

	go rm.monitorRounds(ctx)
	return nil
}

// Stop halts the monitoring service.
func (rm *RoundMonitor) Stop() {
	rm.mu.Lock()
	defer rm.mu.Unlock()

	if rm.cancel != nil {
		rm.cancel()
		rm.cancel = nil
	}
}

func (rm *RoundMonitor) monitorRounds(ctx context.Context) {
	ticker := time.NewTicker(rm.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			rm.tick()
		}
	}
}

// tick inspects every round once and reacts to state transitions.
func (rm *RoundMonitor) tick() {
	ids, err := rm.storage.ListRounds()
	if err != nil {
		log.Warnw("failed to list rounds", "error", err.Error())
		return
	}
	now := time.Now()
	for _, rid := range ids {
		round, err := rm.storage.Round(rid)
		if err != nil {
			log.Warnw("failed to load round", "roundId", rid.String(), "error", err.Error())
			continue
		}
		state := round.State(now)
		rm.mu.Lock()
		prev, seen := rm.states[rid.String()]
		rm.states[rid.String()] = state
		rm.mu.Unlock()
		if seen && prev != state {
			log.Infow("round state transition",
				"roundId", rid.String(), "from", prev.String(), "to", state.String())
		}
		if rm.autoMatching && state == types.RoundEnded && !round.MatchingDone {
			rm.computeMatching(rid)
		}
	}
}

func (rm *RoundMonitor) computeMatching(rid *types.RoundID) {
	err := rm.manager.ComputeMatching(rid)
	switch {
	case err == nil:
		log.Infow("matching computed automatically", "roundId", rid.String())
	case errors.Is(err, rounds.ErrMatchingAlreadyDone):
	case errors.Is(err, rounds.ErrNotEnoughProjects):
		log.Debugw("round not eligible for matching",
			"roundId", rid.String(), "error", err.Error())
	default:
		log.Warnw("automatic matching failed",
			"roundId", rid.String(), "error", err.Error())
	}
}
