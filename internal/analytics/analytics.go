// Package analytics derives the dashboard metrics and drives the
// live-traffic ticker. Both take an explicit random source so tests can
// substitute a deterministic one.
package analytics

import (
	"math/rand"
	"time"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/store"
)

type Metrics struct {
	Revenue        float64 `json:"revenue"`
	ActiveUsers    int     `json:"activeUsers"`
	Leads          int     `json:"leads"`
	ConversionRate float64 `json:"conversionRate"`
}

// Compute derives metrics from the current order list. Revenue excludes
// cancelled orders; activeUsers is an intentionally random 1..3, recomputed
// on every read and never persisted. Inputs are not mutated.
func Compute(orders []store.Order, rng *rand.Rand) Metrics {
	var revenue float64
	for _, o := range orders {
		if o.Status != store.StatusCancelled {
			revenue += o.Amount
		}
	}

	leads := len(orders) + 10
	if leads < 15 {
		leads = 15
	}

	return Metrics{
		Revenue:        revenue,
		ActiveUsers:    1 + rng.Intn(3),
		Leads:          leads,
		ConversionRate: float64(len(orders)) / float64(leads) * 100,
	}
}

// Tick bumps today's traffic bucket: conversations by 1..4, sales by 0..79.
// It runs on every dashboard read and order mutation, right before the
// document is persisted, so the chart looks alive without real events.
func Tick(doc *store.Document, now time.Time, rng *rand.Rand) {
	label := weekdayLabel(doc, now)
	for i := range doc.ChartData {
		if doc.ChartData[i].Name == label {
			doc.ChartData[i].Conversations += rng.Intn(4) + 1
			doc.ChartData[i].Sales += float64(rng.Intn(80))
			return
		}
	}
}

func weekdayLabel(doc *store.Document, now time.Time) string {
	label := now.Weekday().String()[:3]
	for _, p := range doc.ChartData {
		if p.Name == label {
			return label
		}
	}
	// Defensive fallback for documents with unexpected bucket names.
	return "Sun"
}
