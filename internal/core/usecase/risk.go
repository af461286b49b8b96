package usecase

import (
	"math"
	"sort"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

// AnalyzeRisk computes aggregate and per-sector health metrics over one
// quote batch. Failed records are filtered here, so callers pass the
// whole batch. The function is total: absent data degrades to zeros and
// placeholder statuses, never to an error.
func AnalyzeRisk(quotes []domain.QuoteRecord) domain.RiskMetricsBundle {
	var (
		marketCaps []float64
		prices     []float64
		peRatios   []float64
		totalCap   int64
	)
	sectorDist := make(map[string]int)
	valid := 0

	for _, quote := range quotes {
		if !quote.Valid() {
			continue
		}
		valid++

		marketCaps = append(marketCaps, float64(quote.MarketCap))
		totalCap += quote.MarketCap

		price := 0.0
		if quote.CurrentPrice != nil {
			price = *quote.CurrentPrice
		}
		prices = append(prices, price)

		if quote.PERatio != nil {
			peRatios = append(peRatios, *quote.PERatio)
		}

		sector := quote.Sector
		if sector == "" {
			sector = domain.SectorUnknown
		}
		sectorDist[sector]++
	}

	return domain.RiskMetricsBundle{
		TotalStocks:        valid,
		TotalMarketCap:     totalCap,
		AvgMarketCap:       mean(marketCaps),
		MarketCapStdDev:    stdDev(marketCaps),
		AvgPrice:           mean(prices),
		PriceVolatility:    stdDev(prices),
		AvgPERatio:         mean(peRatios),
		PERatioVolatility:  stdDev(peRatios),
		SectorDistribution: sectorDist,
		Health: domain.HealthIndicators{
			DiversificationScore: diversificationScore(sectorDist, valid),
			SectorConcentration:  sectorConcentration(sectorDist, valid),
			MarketCapTiers:       marketCapTiers(marketCaps),
			Valuation:            valuationHealth(peRatios),
		},
	}
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// stdDev is the population standard deviation, defined as 0 under two
// samples.
func stdDev(values []float64) float64 {
	if len(values) < 2 {
		return 0
	}
	m := mean(values)
	var sum float64
	for _, v := range values {
		d := v - m
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(values)))
}

// diversificationScore is the normalized Shannon entropy of the sector
// distribution scaled to [0,100]. Zero or one sectors score 0; the
// normalization by ln(numSectors) would otherwise divide by zero.
func diversificationScore(dist map[string]int, total int) float64 {
	if total == 0 || len(dist) <= 1 {
		return 0
	}
	var entropy float64
	for _, count := range dist {
		if count == 0 {
			continue
		}
		p := float64(count) / float64(total)
		entropy += -p * math.Log(p)
	}
	score := entropy / math.Log(float64(len(dist))) * 100
	return math.Min(math.Max(score, 0), 100)
}

// sectorConcentration reports the highest-share sector; ties go to the
// first sector in sorted key order.
func sectorConcentration(dist map[string]int, total int) domain.SectorConcentration {
	out := domain.SectorConcentration{
		TopSector:   "N/A",
		Percentages: make(map[string]float64, len(dist)),
	}
	if total == 0 {
		return out
	}

	sectors := make([]string, 0, len(dist))
	for sector := range dist {
		sectors = append(sectors, sector)
	}
	sort.Strings(sectors)

	for _, sector := range sectors {
		pct := float64(dist[sector]) / float64(total) * 100
		out.Percentages[sector] = pct
		if pct > out.TopPercentage {
			out.TopSector = sector
			out.TopPercentage = pct
		}
	}
	return out
}

func marketCapTiers(marketCaps []float64) domain.MarketCapTiers {
	if len(marketCaps) == 0 {
		return domain.MarketCapTiers{}
	}
	var large, mid, small int
	for _, c := range marketCaps {
		switch {
		case c >= float64(domain.LargeCapThreshold):
			large++
		case c >= float64(domain.MidCapThreshold):
			mid++
		default:
			small++
		}
	}
	n := float64(len(marketCaps))
	return domain.MarketCapTiers{
		LargeCapPct: float64(large) / n * 100,
		MidCapPct:   float64(mid) / n * 100,
		SmallCapPct: float64(small) / n * 100,
	}
}

func valuationHealth(peRatios []float64) domain.ValuationHealth {
	if len(peRatios) == 0 {
		return domain.ValuationHealth{Status: domain.ValuationInsufficientData}
	}

	avg := mean(peRatios)
	minPE, maxPE := peRatios[0], peRatios[0]
	for _, pe := range peRatios[1:] {
		if pe < minPE {
			minPE = pe
		}
		if pe > maxPE {
			maxPE = pe
		}
	}

	var status string
	switch {
	case avg < 10:
		status = domain.ValuationUndervalued
	case avg < 20:
		status = domain.ValuationFair
	case avg < 30:
		status = domain.ValuationSlightlyOver
	default:
		status = domain.ValuationOvervalued
	}

	return domain.ValuationHealth{
		AvgPERatio: avg,
		MinPERatio: minPE,
		MaxPERatio: maxPE,
		Status:     status,
	}
}
