package session

// Pattern detection thresholds. The detector inspects a fixed-size
// window of the most recent buffered activities after every Track call.
const (
	patternWindow            = 20
	debuggingErrorThreshold  = 5
	debuggingSearchThreshold = 10
	explorationFileThreshold = 10
	repeatedSearchThreshold  = 3
	errorSpikeThreshold      = 5
)

// detectPatterns scans the rolling window for behavioural patterns and
// flags them on the session. Both flags are idempotent; each fires at
// most once per session. Caller holds mu.
func (t *Tracker) detectPatterns(s *Session) {
	window := t.buffer
	if len(window) > patternWindow {
		window = window[len(window)-patternWindow:]
	}
	if len(window) == 0 {
		return
	}

	var errorCount, searchCount int
	files := make(map[string]bool)
	for _, a := range window {
		switch a.Type {
		case ActivityError:
			errorCount++
		case ActivitySearch:
			searchCount++
		case ActivityFileAccess:
			if p := stringField(a.Data, "path"); p != "" {
				files[p] = true
			} else if p := stringField(a.Data, "file"); p != "" {
				files[p] = true
			}
		}
	}

	elapsed := window[len(window)-1].Timestamp.Sub(window[0].Timestamp)

	if errorCount > debuggingErrorThreshold && searchCount > debuggingSearchThreshold && !s.Context.DebuggingDetected {
		s.Context.DebuggingDetected = true
		s.KeyMoments = append(s.KeyMoments, KeyMoment{
			Type:      MomentDebuggingSession,
			Timestamp: t.now(),
			Data: map[string]any{
				"errors":   errorCount,
				"searches": searchCount,
				"window":   elapsed.String(),
			},
		})
	}

	if len(files) > explorationFileThreshold && !s.Context.ExplorationDetected {
		s.Context.ExplorationDetected = true
		s.KeyMoments = append(s.KeyMoments, KeyMoment{
			Type:      MomentExplorationSession,
			Timestamp: t.now(),
			Data: map[string]any{
				"files":  len(files),
				"window": elapsed.String(),
			},
		})
	}
}
