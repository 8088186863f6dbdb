package pipeline

import (
	"aibc/config"
	"aibc/types"
)

// FilterSignals retains only signals at or above the global confidence
// threshold, preserving input order. This is the single point where
// low-quality signals are discarded.
func FilterSignals(signals []types.Signal) []types.Signal {
	kept := make([]types.Signal, 0, len(signals))
	for _, sig := range signals {
		if sig.Confidence >= config.MinConfidence {
			kept = append(kept, sig)
		}
	}
	return kept
}
