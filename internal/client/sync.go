package client

import (
	"context"
	"sync"
	"time"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

const defaultPollInterval = 5 * time.Second

type Stats struct {
	Total     int
	Pending   int
	Delivered int
}

// Synchronizer keeps a local dashboard snapshot fresh: one initial fetch
// whose failure is surfaced, then a fixed-interval poll whose failures are
// swallowed so the views stay responsive. Order mutations go through the
// API and are followed by one full refetch, picking up server-computed
// metrics and the ticker's effect; there are no optimistic local updates.
type Synchronizer struct {
	api      *API
	interval time.Duration

	mu       sync.Mutex
	snapshot DashboardSnapshot
}

func NewSynchronizer(api *API) *Synchronizer {
	return &Synchronizer{api: api, interval: defaultPollInterval}
}

// Start performs the initial fetch and launches the polling loop, which
// runs until ctx is cancelled.
func (s *Synchronizer) Start(ctx context.Context) error {
	if err := s.refresh(ctx); err != nil {
		return err
	}

	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				// A stale poll completing after a mutation refetch simply
				// loses by write order; no cancellation.
				_ = s.refresh(ctx)
			case <-ctx.Done():
				return
			}
		}
	}()

	return nil
}

func (s *Synchronizer) refresh(ctx context.Context) error {
	snap, err := s.api.Dashboard(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.snapshot = *snap
	s.mu.Unlock()
	return nil
}

func (s *Synchronizer) AddOrder(ctx context.Context, order OrderRequest) error {
	if _, err := s.api.CreateOrder(ctx, order); err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *Synchronizer) UpdateOrderStatus(ctx context.Context, id string, status store.OrderStatus) error {
	if _, err := s.api.UpdateOrderStatus(ctx, id, status); err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *Synchronizer) DeleteOrder(ctx context.Context, id string) error {
	if _, err := s.api.DeleteOrder(ctx, id); err != nil {
		return err
	}
	return s.refresh(ctx)
}

func (s *Synchronizer) Snapshot() DashboardSnapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	snap := s.snapshot
	snap.Orders = append([]store.Order(nil), s.snapshot.Orders...)
	snap.ChartData = append([]store.ChartPoint(nil), s.snapshot.ChartData...)
	return snap
}

// Stats derives the header counters locally from the held order list.
func (s *Synchronizer) Stats() Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	stats := Stats{Total: len(s.snapshot.Orders)}
	for _, o := range s.snapshot.Orders {
		switch o.Status {
		case store.StatusPending, store.StatusProcessing:
			stats.Pending++
		case store.StatusDelivered, store.StatusShipped:
			stats.Delivered++
		}
	}
	return stats
}
