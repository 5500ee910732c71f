package segment

import (
	"scribe/internal/media/ffmpeg"
)

// silenceSkipFactor disables silence analysis once the file exceeds this
// multiple of the segment cap.
const silenceSkipFactor = 3

// Span is a planned time range within the source audio, in seconds.
type Span struct {
	Start float64
	End   float64
}

// Duration returns the span length in seconds.
func (s Span) Duration() float64 {
	return s.End - s.Start
}

// PlanFixed cuts the total duration into spans of at most maxSeconds each.
// The final span absorbs any remainder shorter than maxSeconds.
func PlanFixed(totalSeconds, maxSeconds float64) []Span {
	if totalSeconds <= 0 || maxSeconds <= 0 {
		return nil
	}
	var spans []Span
	for start := 0.0; start < totalSeconds; start += maxSeconds {
		end := start + maxSeconds
		if end > totalSeconds {
			end = totalSeconds
		}
		spans = append(spans, Span{Start: start, End: end})
	}
	return spans
}

// PlanSilence cuts at the first silence whose preceding span has accumulated
// at least maxSeconds, resuming after the silence so the quiet stretch itself
// is not transcribed. A trailing span covers whatever follows the last cut.
// An empty silence list yields nil; callers fall back to PlanFixed.
func PlanSilence(totalSeconds, maxSeconds float64, silences []ffmpeg.Silence) []Span {
	if totalSeconds <= 0 || maxSeconds <= 0 || len(silences) == 0 {
		return nil
	}
	var spans []Span
	cursor := 0.0
	for _, silence := range silences {
		if silence.Start-cursor >= maxSeconds {
			spans = append(spans, Span{Start: cursor, End: silence.Start})
			cursor = silence.End
		}
	}
	if cursor < totalSeconds {
		spans = append(spans, Span{Start: cursor, End: totalSeconds})
	}
	return spans
}
