package gemini

import "strings"

// Usage counts tokens consumed by remote calls. Audio-bearing prompt tokens
// are tracked separately from text prompt tokens because they are billed at
// a different rate.
type Usage struct {
	InputTokens      int64
	OutputTokens     int64
	AudioInputTokens int64
}

// Total returns the combined token count.
func (u Usage) Total() int64 {
	return u.InputTokens + u.OutputTokens + u.AudioInputTokens
}

// Add returns the element-wise sum of two usage records.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:      u.InputTokens + other.InputTokens,
		OutputTokens:     u.OutputTokens + other.OutputTokens,
		AudioInputTokens: u.AudioInputTokens + other.AudioInputTokens,
	}
}

// modelPricing holds per-million-token USD rates.
type modelPricing struct {
	match      string
	textInput  float64
	audioInput float64
	output     float64
}

// priceTable is matched against the model identifier in order. Models not
// listed price at zero.
var priceTable = []modelPricing{
	{match: "2.5-flash", textInput: 0.30, audioInput: 1.00, output: 2.50},
	{match: "2.5-pro", textInput: 1.25, audioInput: 1.25, output: 10.00},
}

// usdToJPY is a fixed reference rate for the secondary cost figure.
const usdToJPY = 150.0

// CostUSD prices the usage for the given model identifier.
func (u Usage) CostUSD(model string) float64 {
	model = strings.ToLower(model)
	for _, pricing := range priceTable {
		if strings.Contains(model, pricing.match) {
			const million = 1_000_000
			return float64(u.InputTokens)/million*pricing.textInput +
				float64(u.AudioInputTokens)/million*pricing.audioInput +
				float64(u.OutputTokens)/million*pricing.output
		}
	}
	return 0
}

// CostSummary is the reporting record for one run's remote usage.
type CostSummary struct {
	TotalTokens      int64
	InputTokens      int64
	OutputTokens     int64
	AudioInputTokens int64
	CostUSD          float64
	CostJPY          float64
	Model            string
}

// Summarize builds the cost report for the given model identifier.
func (u Usage) Summarize(model string) CostSummary {
	costUSD := u.CostUSD(model)
	return CostSummary{
		TotalTokens:      u.Total(),
		InputTokens:      u.InputTokens,
		OutputTokens:     u.OutputTokens,
		AudioInputTokens: u.AudioInputTokens,
		CostUSD:          costUSD,
		CostJPY:          costUSD * usdToJPY,
		Model:            model,
	}
}
