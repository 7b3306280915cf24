package media

// Window is one planned time-slice of a media file, in seconds.
// Windows are half-open [Start, End) and time-ascending by Index.
type Window struct {
	Index int
	Start float64
	End   float64
}

// Duration returns the window length in seconds.
func (w Window) Duration() float64 { return w.End - w.Start }

// PlanWindows splits a total duration into fixed-size windows. The last
// window is clamped to the total; windows shorter than minSeconds are
// dropped to avoid pathological tiny-segment processing. The kept windows
// retain their original time-order indexes.
func PlanWindows(totalSeconds, segmentSeconds, minSeconds float64) []Window {
	if totalSeconds <= 0 || segmentSeconds <= 0 {
		return nil
	}

	var out []Window
	for i := 0; ; i++ {
		start := float64(i) * segmentSeconds
		if start >= totalSeconds {
			break
		}
		end := start + segmentSeconds
		if end > totalSeconds {
			end = totalSeconds
		}
		if end-start < minSeconds {
			continue
		}
		out = append(out, Window{Index: i, Start: start, End: end})
	}
	return out
}
