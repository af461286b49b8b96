package usecase

import (
	"math"
	"testing"

	"github.com/kirillkom/market-brief-agent/internal/core/domain"
)

func quoteWithCap(ticker, sector string, marketCap int64, price float64, pe *float64) domain.QuoteRecord {
	return domain.QuoteRecord{
		Ticker:       ticker,
		Sector:       sector,
		MarketCap:    marketCap,
		CurrentPrice: floatPtr(price),
		PERatio:      pe,
	}
}

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestAnalyzeRiskEmptyBatch(t *testing.T) {
	bundle := AnalyzeRisk(nil)

	if bundle.TotalStocks != 0 || bundle.TotalMarketCap != 0 {
		t.Fatalf("expected zeroed bundle, got %+v", bundle)
	}
	if bundle.AvgMarketCap != 0 || bundle.AvgPrice != 0 || bundle.AvgPERatio != 0 {
		t.Fatalf("expected zero averages, got %+v", bundle)
	}
	if bundle.Health.DiversificationScore != 0 {
		t.Fatalf("expected zero diversification, got %v", bundle.Health.DiversificationScore)
	}
	if bundle.Health.SectorConcentration.TopSector != "N/A" {
		t.Fatalf("expected N/A top sector, got %q", bundle.Health.SectorConcentration.TopSector)
	}
	if bundle.Health.Valuation.Status != domain.ValuationInsufficientData {
		t.Fatalf("expected insufficient data status, got %q", bundle.Health.Valuation.Status)
	}
}

func TestAnalyzeRiskSkipsFailedRecords(t *testing.T) {
	bundle := AnalyzeRisk([]domain.QuoteRecord{
		quoteWithCap("AAPL", "Technology", 3_000_000_000_000, 190, floatPtr(30)),
		domain.FailedQuote("DOWN", nil),
	})

	if bundle.TotalStocks != 1 {
		t.Fatalf("failed record counted: %+v", bundle)
	}
	if bundle.TotalMarketCap != 3_000_000_000_000 {
		t.Fatalf("unexpected total market cap %d", bundle.TotalMarketCap)
	}
	if len(bundle.SectorDistribution) != 1 || bundle.SectorDistribution["Technology"] != 1 {
		t.Fatalf("unexpected sector distribution %v", bundle.SectorDistribution)
	}
}

func TestAnalyzeRiskMissingSectorBucketsAsUnknown(t *testing.T) {
	bundle := AnalyzeRisk([]domain.QuoteRecord{
		quoteWithCap("XYZ", "", 1_000_000_000, 10, nil),
	})
	if bundle.SectorDistribution[domain.SectorUnknown] != 1 {
		t.Fatalf("expected Unknown bucket, got %v", bundle.SectorDistribution)
	}
}

func TestAnalyzeRiskAverages(t *testing.T) {
	bundle := AnalyzeRisk([]domain.QuoteRecord{
		quoteWithCap("A", "Technology", 100, 10, floatPtr(10)),
		quoteWithCap("B", "Healthcare", 300, 30, floatPtr(20)),
	})

	if !almostEqual(bundle.AvgMarketCap, 200) {
		t.Fatalf("AvgMarketCap = %v, want 200", bundle.AvgMarketCap)
	}
	if !almostEqual(bundle.AvgPrice, 20) {
		t.Fatalf("AvgPrice = %v, want 20", bundle.AvgPrice)
	}
	if !almostEqual(bundle.AvgPERatio, 15) {
		t.Fatalf("AvgPERatio = %v, want 15", bundle.AvgPERatio)
	}
	if !almostEqual(bundle.MarketCapStdDev, 100) {
		t.Fatalf("MarketCapStdDev = %v, want 100 (population)", bundle.MarketCapStdDev)
	}
}

func TestAnalyzeRiskMissingPriceCountsAsZero(t *testing.T) {
	quote := domain.QuoteRecord{Ticker: "A", Sector: "Technology", MarketCap: 100}
	bundle := AnalyzeRisk([]domain.QuoteRecord{
		quote,
		quoteWithCap("B", "Technology", 100, 40, nil),
	})
	if !almostEqual(bundle.AvgPrice, 20) {
		t.Fatalf("AvgPrice = %v, want 20 with nil price as zero", bundle.AvgPrice)
	}
}

func TestStdDevUnderTwoSamples(t *testing.T) {
	if got := stdDev(nil); got != 0 {
		t.Fatalf("stdDev(nil) = %v", got)
	}
	if got := stdDev([]float64{42}); got != 0 {
		t.Fatalf("stdDev(one sample) = %v", got)
	}
}

func TestDiversificationScoreSingleSector(t *testing.T) {
	score := diversificationScore(map[string]int{"Technology": 4}, 4)
	if score != 0 {
		t.Fatalf("single sector score = %v, want 0", score)
	}
}

func TestDiversificationScoreUniformIsMax(t *testing.T) {
	score := diversificationScore(map[string]int{"A": 2, "B": 2, "C": 2}, 6)
	if !almostEqual(score, 100) {
		t.Fatalf("uniform distribution score = %v, want 100", score)
	}
}

func TestDiversificationScoreSkewedIsLower(t *testing.T) {
	skewed := diversificationScore(map[string]int{"A": 9, "B": 1}, 10)
	uniform := diversificationScore(map[string]int{"A": 5, "B": 5}, 10)
	if skewed <= 0 || skewed >= uniform {
		t.Fatalf("skewed score %v should be in (0, %v)", skewed, uniform)
	}
}

func TestSectorConcentrationTieBreaksAlphabetically(t *testing.T) {
	conc := sectorConcentration(map[string]int{"Technology": 2, "Energy": 2}, 4)
	if conc.TopSector != "Energy" {
		t.Fatalf("tie should go to first sorted sector, got %q", conc.TopSector)
	}
	if !almostEqual(conc.TopPercentage, 50) {
		t.Fatalf("TopPercentage = %v, want 50", conc.TopPercentage)
	}
	if !almostEqual(conc.Percentages["Technology"], 50) || !almostEqual(conc.Percentages["Energy"], 50) {
		t.Fatalf("unexpected percentages %v", conc.Percentages)
	}
}

func TestMarketCapTierBoundaries(t *testing.T) {
	tiers := marketCapTiers([]float64{
		float64(domain.LargeCapThreshold),     // exactly large
		float64(domain.LargeCapThreshold) - 1, // mid
		float64(domain.MidCapThreshold),       // exactly mid
		float64(domain.MidCapThreshold) - 1,   // small
	})
	if !almostEqual(tiers.LargeCapPct, 25) || !almostEqual(tiers.MidCapPct, 50) || !almostEqual(tiers.SmallCapPct, 25) {
		t.Fatalf("unexpected tiers %+v", tiers)
	}
}

func TestValuationHealthBuckets(t *testing.T) {
	cases := []struct {
		name string
		pes  []float64
		want string
	}{
		{"undervalued", []float64{5, 9}, domain.ValuationUndervalued},
		{"fair_low_boundary", []float64{10}, domain.ValuationFair},
		{"fair", []float64{15, 19}, domain.ValuationFair},
		{"slightly_over_boundary", []float64{20}, domain.ValuationSlightlyOver},
		{"overvalued_boundary", []float64{30}, domain.ValuationOvervalued},
		{"overvalued", []float64{55}, domain.ValuationOvervalued},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := valuationHealth(tc.pes)
			if got.Status != tc.want {
				t.Fatalf("status = %q, want %q", got.Status, tc.want)
			}
		})
	}
}

func TestValuationHealthMinMax(t *testing.T) {
	health := valuationHealth([]float64{22, 8, 31})
	if !almostEqual(health.MinPERatio, 8) || !almostEqual(health.MaxPERatio, 31) {
		t.Fatalf("min/max = %v/%v, want 8/31", health.MinPERatio, health.MaxPERatio)
	}
}
