package usecase

import (
	"context"
	"errors"
	"strings"

	"github.com/jsamit27/ava/internal/contextkeys"
	"github.com/jsamit27/ava/internal/core/domain"
	"github.com/jsamit27/ava/internal/core/port"
	"golang.org/x/sync/errgroup"
)

const (
	DefaultMaxMiles          = 100.0
	DefaultAddressesPerState = 25
	stateSearchParallelism   = 4
)

// ClosestAuctionFinder ищет ближайшую площадку слоями: свой штат, соседи, вся страна
type ClosestAuctionFinder struct {
	distance  port.DistanceMatrixPort
	locations port.AuctionLocationsPort
	maxMiles  float64
	perState  int
}

func NewClosestAuctionFinder(distance port.DistanceMatrixPort, locations port.AuctionLocationsPort, maxMiles float64, perState int) *ClosestAuctionFinder {
	if maxMiles <= 0 {
		maxMiles = DefaultMaxMiles
	}
	if perState <= 0 {
		perState = DefaultAddressesPerState
	}
	return &ClosestAuctionFinder{distance: distance, locations: locations, maxMiles: maxMiles, perState: perState}
}

// Find возвращает nil, если ни одна площадка не найдена
func (f *ClosestAuctionFinder) Find(ctx context.Context, userAddress, state string) (*domain.ClosestAuction, error) {
	state = strings.ToUpper(strings.TrimSpace(state))
	logger := contextkeys.LoggerFromContext(ctx).WithFields(port.Fields{"component": "ClosestAuctionFinder", "state": state})

	available, err := f.locations.States(ctx)
	if err != nil {
		return nil, err
	}
	has := make(map[string]bool, len(available))
	for _, s := range available {
		has[s] = true
	}

	var inState *domain.ClosestAuction
	if has[state] {
		inState = f.bestInState(ctx, userAddress, state)
	}

	neighbors := []string{}
	for _, s := range domain.StateNeighbors[state] {
		if has[s] {
			neighbors = append(neighbors, s)
		}
	}
	var neighborBest *domain.ClosestAuction
	if len(neighbors) > 0 {
		if neighborBest, err = f.bestAmong(ctx, userAddress, neighbors); err != nil {
			return nil, err
		}
	}

	var under []*domain.ClosestAuction
	if inState != nil && inState.DistanceMiles <= f.maxMiles {
		inState.Layer = domain.LayerInState
		under = append(under, inState)
	}
	if neighborBest != nil && neighborBest.DistanceMiles <= f.maxMiles {
		neighborBest.Layer = domain.LayerNeighbor
		under = append(under, neighborBest)
	}
	if best := nearest(under); best != nil {
		best.NeighborsChecked = neighbors
		best.ThresholdExceeded = false
		logger.Info("Closest auction found near the user", port.Fields{"layer": best.Layer, "miles": best.DistanceMiles})
		return best, nil
	}

	excluded := map[string]bool{state: true}
	for _, s := range neighbors {
		excluded[s] = true
	}
	remaining := make([]string, 0, len(available))
	for _, s := range available {
		if !excluded[s] {
			remaining = append(remaining, s)
		}
	}
	national, err := f.bestAmong(ctx, userAddress, remaining)
	if err != nil {
		return nil, err
	}

	var all []*domain.ClosestAuction
	if inState != nil {
		inState.Layer = domain.LayerInState
		all = append(all, inState)
	}
	if neighborBest != nil {
		neighborBest.Layer = domain.LayerNeighbor
		all = append(all, neighborBest)
	}
	if national != nil {
		national.Layer = domain.LayerNational
		all = append(all, national)
	}
	best := nearest(all)
	if best == nil {
		logger.Warn("No auction locations reachable", nil)
		return nil, nil
	}
	best.NeighborsChecked = neighbors
	best.ThresholdExceeded = best.DistanceMiles > f.maxMiles
	logger.Info("Closest auction found", port.Fields{"layer": best.Layer, "miles": best.DistanceMiles})
	return best, nil
}

// nearest первый из минимальных по расстоянию
func nearest(candidates []*domain.ClosestAuction) *domain.ClosestAuction {
	var best *domain.ClosestAuction
	for _, c := range candidates {
		if best == nil || c.DistanceMiles < best.DistanceMiles {
			best = c
		}
	}
	return best
}

func (f *ClosestAuctionFinder) bestInState(ctx context.Context, userAddress, state string) *domain.ClosestAuction {
	logger := contextkeys.LoggerFromContext(ctx)

	dests, err := f.locations.Addresses(ctx, state, f.perState)
	if err != nil {
		if !errors.Is(err, domain.ErrStateCSVMissing) {
			logger.Warn("Failed to read auction addresses", port.Fields{"state": state, "error": err.Error()})
		}
		return nil
	}
	if len(dests) == 0 {
		return nil
	}

	origin := userAddress
	if state != "" && !strings.Contains(strings.ToUpper(userAddress), state) {
		origin = userAddress + ", " + state
	}

	match, err := f.distance.Closest(ctx, origin, dests)
	if err != nil {
		logger.Warn("Distance lookup failed", port.Fields{"state": state, "error": err.Error()})
		return nil
	}
	if match == nil {
		return nil
	}
	return &domain.ClosestAuction{
		Address:       match.Address,
		DurationText:  match.DurationText,
		DistanceMiles: domain.MetersToMiles(match.DistanceMeters),
		State:         state,
		StateCSV:      f.locations.Source(state),
	}
}

// bestAmong по одному запросу на штат, параллельно
func (f *ClosestAuctionFinder) bestAmong(ctx context.Context, userAddress string, states []string) (*domain.ClosestAuction, error) {
	results := make([]*domain.ClosestAuction, len(states))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(stateSearchParallelism)
	for i, st := range states {
		i, st := i, st
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			results[i] = f.bestInState(gctx, userAddress, st)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var found []*domain.ClosestAuction
	for _, r := range results {
		if r != nil {
			found = append(found, r)
		}
	}
	return nearest(found), nil
}

// Tool обертка для диспетчера
func (f *ClosestAuctionFinder) Tool(ctx context.Context, _ domain.Session, args map[string]interface{}) domain.ToolResult {
	addr, _ := argText(args["user_address"])
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return domain.ToolFailure(domain.CodeInvalidInput, "user_address is required.", nil)
	}
	rawState, _ := argText(args["state"])
	state := domain.NormalizeStateCode(rawState)
	if state == "" {
		state = strings.ToUpper(strings.TrimSpace(rawState))
	}

	best, err := f.Find(ctx, addr, state)
	if err != nil {
		contextkeys.LoggerFromContext(ctx).Error("Closest auction search failed", err, port.Fields{"tool": "get_closest"})
		return domain.ToolFailure(domain.CodeTxnFailed, "Lookup failed: "+err.Error(), nil)
	}
	if best == nil {
		return domain.ToolFailure(domain.CodeNotFound, "No nearby locations found.", nil)
	}
	return domain.ToolSuccess("Closest auction found.", map[string]interface{}{
		"address":            best.Address,
		"duration_text":      best.DurationText,
		"distance_miles":     best.DistanceMiles,
		"state":              best.State,
		"state_csv":          best.StateCSV,
		"layer":              best.Layer,
		"neighbors_checked":  best.NeighborsChecked,
		"threshold_exceeded": best.ThresholdExceeded,
	})
}
