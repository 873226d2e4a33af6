// Package report summarizes a collection: rating distribution, the
// price/rating trend and the market segment breakdown.
package report

import (
	"math"
	"sort"

	"scentlog/internal/inventory"
	"scentlog/internal/record"
	"scentlog/internal/view"
)

// binTolerance is how close a rating must be to a half-point bin to count.
const binTolerance = 0.2

// Bin is one half-point bucket of the rating histogram.
type Bin struct {
	Rating float64 `json:"rating"`
	Count  int     `json:"count"`
	// Cumulative counts ratings at or above this bin.
	Cumulative int     `json:"cumulative"`
	Trend      float64 `json:"trend"`
}

// PriceTrend is the fit rating = Slope*ln(price) + Intercept.
type PriceTrend struct {
	Points    int     `json:"points"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	MinPrice  float64 `json:"minPrice"`
	MaxPrice  float64 `json:"maxPrice"`
}

// At evaluates the fit at price.
func (p PriceTrend) At(price float64) float64 {
	return p.Slope*math.Log(price) + p.Intercept
}

// Stats is the computed summary.
type Stats struct {
	Count        int               `json:"count"`
	Mean         float64           `json:"mean"`
	Median       float64           `json:"median"`
	Histogram    []Bin             `json:"histogram"`
	Price        *PriceTrend       `json:"price,omitempty"`
	SegmentField string            `json:"segmentField,omitempty"`
	Segments     []inventory.Entry `json:"segments,omitempty"`
}

// Compute summarizes records.
func Compute(records []record.Record) Stats {
	stats := Stats{Count: len(records)}
	if len(records) == 0 {
		return stats
	}

	ratings := make([]float64, len(records))
	var sum float64
	for i, r := range records {
		ratings[i] = r.Rating
		sum += r.Rating
	}
	stats.Mean = sum / float64(len(ratings))
	stats.Median = median(ratings)
	stats.Histogram = histogram(ratings, stats.Mean)
	stats.Price = priceTrend(records)

	if field := view.DetectSegmentField(records); field != "" {
		stats.SegmentField = field
		stats.Segments = inventory.Entries(records, field)
	}
	return stats
}

func median(values []float64) float64 {
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	n := len(sorted)
	mid := n / 2
	if n%2 == 1 {
		return sorted[mid]
	}
	return (sorted[mid-1] + sorted[mid]) / 2
}

func histogram(ratings []float64, mean float64) []Bin {
	n := float64(len(ratings))
	var variance float64
	if len(ratings) > 1 {
		for _, r := range ratings {
			variance += (r - mean) * (r - mean)
		}
		variance /= n - 1
	}
	stdDev := math.Sqrt(variance)
	if stdDev == 0 {
		stdDev = 0.5
	}
	bandwidth := math.Max(0.3, 1.06*stdDev*math.Pow(n, -0.2))
	norm := 1 / (n * bandwidth * math.Sqrt(2*math.Pi))

	bins := make([]Bin, 21)
	for i := range bins {
		x := float64(i) / 2
		bin := Bin{Rating: x}
		var kernel float64
		for _, r := range ratings {
			if math.Abs(r-x) < binTolerance {
				bin.Count++
			}
			u := (x - r) / bandwidth
			kernel += math.Exp(-0.5 * u * u)
		}
		bin.Trend = norm * kernel * n * 0.5
		bins[i] = bin
	}
	running := 0
	for i := len(bins) - 1; i >= 0; i-- {
		running += bins[i].Count
		bins[i].Cumulative = running
	}
	return bins
}

func priceTrend(records []record.Record) *PriceTrend {
	var (
		n                           int
		sumLogX, sumY, sumXY, sumXX float64
		minPrice, maxPrice          = math.Inf(1), math.Inf(-1)
	)
	for _, r := range records {
		if !r.HasPrice || r.Price <= 0 {
			continue
		}
		logX := math.Log(r.Price)
		n++
		sumLogX += logX
		sumY += r.Rating
		sumXY += logX * r.Rating
		sumXX += logX * logX
		minPrice = math.Min(minPrice, r.Price)
		maxPrice = math.Max(maxPrice, r.Price)
	}
	if n < 2 {
		return nil
	}
	fn := float64(n)
	denom := fn*sumXX - sumLogX*sumLogX
	if denom == 0 {
		return nil
	}
	slope := (fn*sumXY - sumLogX*sumY) / denom
	return &PriceTrend{
		Points:    n,
		Slope:     slope,
		Intercept: (sumY - slope*sumLogX) / fn,
		MinPrice:  minPrice,
		MaxPrice:  maxPrice,
	}
}
