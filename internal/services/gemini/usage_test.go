package gemini

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestUsageAdd(t *testing.T) {
	sum := Usage{InputTokens: 10, OutputTokens: 20, AudioInputTokens: 30}.
		Add(Usage{InputTokens: 1, OutputTokens: 2, AudioInputTokens: 3})
	if sum != (Usage{InputTokens: 11, OutputTokens: 22, AudioInputTokens: 33}) {
		t.Fatalf("unexpected sum: %+v", sum)
	}
	if sum.Total() != 66 {
		t.Fatalf("unexpected total: %d", sum.Total())
	}
}

func TestCostUSDFlashPricing(t *testing.T) {
	usage := Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000, AudioInputTokens: 1_000_000}
	got := usage.CostUSD("gemini-2.5-flash")
	if !almostEqual(got, 0.30+1.00+2.50) {
		t.Fatalf("unexpected flash cost: %v", got)
	}
}

func TestCostUSDProPricing(t *testing.T) {
	usage := Usage{InputTokens: 2_000_000, OutputTokens: 500_000}
	got := usage.CostUSD("gemini-2.5-pro")
	if !almostEqual(got, 2*1.25+0.5*10.00) {
		t.Fatalf("unexpected pro cost: %v", got)
	}
}

func TestCostUSDUnknownModelIsZero(t *testing.T) {
	usage := Usage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	if got := usage.CostUSD("experimental-model"); got != 0 {
		t.Fatalf("unknown model must price at zero, got %v", got)
	}
}

func TestSummarizeIncludesJPYConversion(t *testing.T) {
	usage := Usage{InputTokens: 1_000_000}
	summary := usage.Summarize("gemini-2.5-flash")
	if summary.TotalTokens != 1_000_000 || summary.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if !almostEqual(summary.CostUSD, 0.30) {
		t.Fatalf("unexpected usd cost: %v", summary.CostUSD)
	}
	if !almostEqual(summary.CostJPY, 0.30*usdToJPY) {
		t.Fatalf("unexpected jpy cost: %v", summary.CostJPY)
	}
}
