// Package fusion combines the three independent distress signals into a
// single dominant trigger and a calm/not-calm verdict. It is pure: no state,
// no side effects, re-run on every change to any input.
package fusion

import "github.com/mphakathi/guardian/internal/types"

// Tier buckets the fused confidence for the escalation machine.
type Tier int

const (
	TierLow Tier = iota
	TierModerate
	TierHigh
)

func (t Tier) String() string {
	switch t {
	case TierHigh:
		return "high"
	case TierModerate:
		return "moderate"
	default:
		return "low"
	}
}

// Policy holds the fusion tuning parameters. The literal defaults preserve
// the behavior of the deployed thresholds; they are deliberately
// externally configurable rather than hardcoded at use sites.
type Policy struct {
	Multipliers        map[types.SensitivityLevel]float64
	HighConfidence     float64
	ModerateConfidence float64
	CalmIntensity      int
	CalmConfidence     float64
}

// DefaultPolicy returns the production tuning.
func DefaultPolicy() Policy {
	return Policy{
		Multipliers: map[types.SensitivityLevel]float64{
			types.SensitivityLow:    0.8,
			types.SensitivityMedium: 1.0,
			types.SensitivityHigh:   1.2,
		},
		HighConfidence:     0.85,
		ModerateConfidence: 0.70,
		CalmIntensity:      40,
		CalmConfidence:     0.5,
	}
}

// Multiplier returns the confidence multiplier for a sensitivity level,
// defaulting to 1.0 for unknown levels.
func (p Policy) Multiplier(level types.SensitivityLevel) float64 {
	if m, ok := p.Multipliers[level]; ok {
		return m
	}
	return 1.0
}

// Input is a snapshot of the latest evidence. Acoustic and SafeCodeMatch
// may be nil when no utterance has produced them yet.
type Input struct {
	Emotion             types.EmotionState
	Acoustic            *types.AcousticAnalysis
	SafeCodeMatch       *types.VoiceSafeCodeMatch
	GeneralSensitivity  types.SensitivityLevel
	SafeCodeSensitivity types.SensitivityLevel
}

// Assessment is the fused verdict consumed by the escalation machine and
// the calm-assist watcher.
type Assessment struct {
	OverallConfidence float64
	Trigger           types.Trigger
	Tier              Tier
	IsCalm            bool
	AcousticStatus    types.TriggerStatus
}

// Evaluate fuses the current evidence. Candidates are compared with a
// strict greater-than in declaration order, so Danger Keyword wins all ties.
func (p Policy) Evaluate(in Input) Assessment {
	langConfidence := 0.0
	if in.Emotion.Emotion == types.EmotionDanger {
		langConfidence = in.Emotion.Confidence
	}

	acousticConfidence := 0.0
	acousticStatus := types.TriggerStatusNone
	acousticDistress := types.DistressNone
	if in.Acoustic != nil {
		acousticConfidence = in.Acoustic.DetectionConfidence
		acousticStatus = in.Acoustic.TriggerStatus
		acousticDistress = in.Acoustic.DistressType
	}

	safeCodeConfidence := 0.0
	if in.SafeCodeMatch != nil {
		safeCodeConfidence = in.SafeCodeMatch.Probability
	}

	candidates := []struct {
		value   float64
		trigger types.Trigger
	}{
		{langConfidence, types.Trigger{Kind: types.TriggerDangerKeyword}},
		{acousticConfidence * p.Multiplier(in.GeneralSensitivity), types.Trigger{Kind: types.TriggerAcoustic, Distress: acousticDistress}},
		{safeCodeConfidence * p.Multiplier(in.SafeCodeSensitivity), types.Trigger{Kind: types.TriggerSafeCode}},
	}

	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.value > best.value {
			best = c
		}
	}

	isCalm := in.Emotion.Intensity < p.CalmIntensity &&
		in.Emotion.Emotion != types.EmotionDanger &&
		in.Emotion.Emotion != types.EmotionAngry &&
		in.Emotion.Emotion != types.EmotionFearful &&
		in.Emotion.Confidence < p.CalmConfidence &&
		acousticStatus == types.TriggerStatusNone

	return Assessment{
		OverallConfidence: best.value,
		Trigger:           best.trigger,
		Tier:              p.tier(best.value, acousticStatus),
		IsCalm:            isCalm,
		AcousticStatus:    acousticStatus,
	}
}

func (p Policy) tier(overall float64, status types.TriggerStatus) Tier {
	switch {
	case overall >= p.HighConfidence || status == types.TriggerStatusHigh:
		return TierHigh
	case overall >= p.ModerateConfidence || status == types.TriggerStatusMedium:
		return TierModerate
	default:
		return TierLow
	}
}
