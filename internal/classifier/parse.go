package classifier

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mphakathi/guardian/internal/types"
)

// extractJSON trims everything outside the outermost braces. Models
// occasionally wrap structured output in markdown fences or prose.
func extractJSON(raw string) string {
	clean := strings.TrimSpace(raw)
	start := strings.Index(clean, "{")
	end := strings.LastIndex(clean, "}")
	if start >= 0 && end > start {
		clean = clean[start : end+1]
	}
	return clean
}

func parseEmotion(raw string) (types.EmotionState, error) {
	var state types.EmotionState
	if err := json.Unmarshal([]byte(extractJSON(raw)), &state); err != nil {
		return types.EmotionState{}, fmt.Errorf("failed to parse emotion output: %w", err)
	}

	switch state.Emotion {
	case types.EmotionNeutral, types.EmotionCalm, types.EmotionHappy, types.EmotionSad,
		types.EmotionStressed, types.EmotionFearful, types.EmotionAngry, types.EmotionDanger:
	case "":
		return types.EmotionState{}, fmt.Errorf("missing emotion label")
	default:
		return types.EmotionState{}, fmt.Errorf("invalid emotion label: %s", state.Emotion)
	}

	state.Intensity = clampInt(state.Intensity, 0, 100)
	state.Confidence = clampFloat(state.Confidence, 0, 1)
	return state, nil
}

func parseAcoustic(raw string) (types.AcousticAnalysis, error) {
	var analysis types.AcousticAnalysis
	if err := json.Unmarshal([]byte(extractJSON(raw)), &analysis); err != nil {
		return types.AcousticAnalysis{}, fmt.Errorf("failed to parse acoustic output: %w", err)
	}

	switch analysis.DistressType {
	case types.DistressNone, types.DistressScream, types.DistressCry, types.DistressYell, types.DistressFearful:
	default:
		analysis.DistressType = types.DistressNone
	}
	switch analysis.TriggerStatus {
	case types.TriggerStatusNone, types.TriggerStatusMedium, types.TriggerStatusHigh:
	default:
		analysis.TriggerStatus = types.TriggerStatusNone
	}
	switch analysis.RecommendedAction {
	case types.ActionContinueMonitoring, types.ActionActivateEmergency, types.ActionEscalateListening:
	default:
		analysis.RecommendedAction = types.ActionContinueMonitoring
	}

	analysis.DetectionConfidence = clampFloat(analysis.DetectionConfidence, 0, 1)
	return analysis, nil
}

func parseSafetyAction(raw string) (*types.SafetyAction, error) {
	var action types.SafetyAction
	if err := json.Unmarshal([]byte(extractJSON(raw)), &action); err != nil {
		return nil, fmt.Errorf("failed to parse safety action output: %w", err)
	}
	if strings.TrimSpace(action.Suggestion) == "" {
		return nil, fmt.Errorf("missing suggestion")
	}
	return &action, nil
}

func clampInt(v, lo, hi int) int {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}

func clampFloat(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo
	case v > hi:
		return hi
	default:
		return v
	}
}
