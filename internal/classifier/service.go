// Package classifier issues the language-understanding calls that turn
// transcript text into distress signals. Every call fails closed: on any
// error the caller receives a safe default and the error is only logged.
package classifier

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/rs/zerolog"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/mphakathi/guardian/internal/types"
)

// Service classifies utterances through a configured LLM.
type Service struct {
	model model.LLM
	log   zerolog.Logger
}

// New returns a Service backed by m.
func New(m model.LLM, log zerolog.Logger) *Service {
	return &Service{model: m, log: log.With().Str("component", "classifier").Logger()}
}

// AnalyzeEmotion returns the emotion verdict for one finalized utterance.
// Empty input and every failure produce the neutral default.
func (s *Service) AnalyzeEmotion(ctx context.Context, text string) (types.EmotionState, error) {
	neutral := types.EmotionState{Emotion: types.EmotionNeutral}
	if strings.TrimSpace(text) == "" {
		return neutral, nil
	}

	raw, err := s.generate(ctx, emotionSystemPrompt,
		fmt.Sprintf("Analyze the following transcribed text for emotional distress: %q", text),
		structuredConfig(emotionSchema, 0.1))
	if err != nil {
		s.log.Warn().Err(err).Msg("emotion analysis failed, using neutral default")
		return neutral, err
	}

	state, err := parseEmotion(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("raw", raw).Msg("emotion output unparseable, using neutral default")
		return neutral, err
	}
	return state, nil
}

// AnalyzeAcoustic returns the acoustic-pattern verdict for one utterance.
// Failures produce the monitoring default with the error reason recorded.
func (s *Service) AnalyzeAcoustic(ctx context.Context, text string) (types.AcousticAnalysis, error) {
	if strings.TrimSpace(text) == "" {
		return acousticDefault("No text provided."), nil
	}

	raw, err := s.generate(ctx, acousticSystemPrompt,
		fmt.Sprintf("Analyze the following transcribed text for acoustic signs of distress: %q", text),
		structuredConfig(acousticSchema, 0.1))
	if err != nil {
		s.log.Warn().Err(err).Msg("acoustic analysis failed, using default")
		return acousticDefault("AI analysis failed."), err
	}

	analysis, err := parseAcoustic(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("raw", raw).Msg("acoustic output unparseable, using default")
		return acousticDefault("AI analysis failed."), err
	}
	return analysis, nil
}

// SuggestSafetyAction returns a contextual suggestion, or nil when the
// combined state is unremarkable or generation fails.
func (s *Service) SuggestSafetyAction(ctx context.Context, emotion types.EmotionState, acoustic types.AcousticAnalysis) (*types.SafetyAction, error) {
	unremarkable := (emotion.Emotion == types.EmotionNeutral ||
		emotion.Emotion == types.EmotionCalm ||
		emotion.Emotion == types.EmotionHappy) &&
		acoustic.DistressType == types.DistressNone &&
		emotion.Intensity < 40
	if unremarkable {
		return nil, nil
	}

	prompt := fmt.Sprintf(
		"Based on this data: Emotion - %s (Intensity: %d), Acoustic Distress - %s (Confidence: %.2f), provide a relevant safety action.",
		emotion.Emotion, emotion.Intensity, acoustic.DistressType, acoustic.DetectionConfidence)

	raw, err := s.generate(ctx, safetyActionSystemPrompt, prompt, structuredConfig(safetyActionSchema, 0.5))
	if err != nil {
		s.log.Warn().Err(err).Msg("safety action generation failed")
		return nil, err
	}

	action, err := parseSafetyAction(raw)
	if err != nil {
		s.log.Warn().Err(err).Str("raw", raw).Msg("safety action output unparseable")
		return nil, err
	}
	return action, nil
}

// CalmingMessage returns a short calming line in the requested style,
// falling back to a fixed message on error.
func (s *Service) CalmingMessage(ctx context.Context, style types.CalmAssistStyle) string {
	prompt := fmt.Sprintf(
		`Act as a compassionate de-escalation coach. Provide a single, short, calming message for someone feeling stressed or angry. The tone should be %q. Do not include any preamble or quotation marks.`,
		style)

	raw, err := s.generate(ctx, "", prompt, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("calming message generation failed, using fallback")
		return fallbackCalmingMessage
	}

	message := strings.ReplaceAll(strings.TrimSpace(raw), `"`, "")
	if message == "" {
		return fallbackCalmingMessage
	}
	return message
}

// SafetyTip returns a personalized safety tip, falling back to a fixed
// message on error.
func (s *Service) SafetyTip(ctx context.Context, gender types.Gender, isSurvivor bool) string {
	survivorContext := ""
	if isSurvivor {
		survivorContext = " Crucially, the user is a survivor of gender-based violence, so the tip must be trauma-informed, focusing on empowerment, grounding techniques, setting boundaries, or recognizing personal triggers rather than generic stranger-danger advice."
	}

	prompt := fmt.Sprintf(
		"Act as a safety and empowerment coach. Provide a single, concise, practical, and encouraging safety tip for a %s to help them avoid or navigate dangerous situations, particularly related to gender-based violence.%s The tip should be empowering, not fear-mongering. Make it short and impactful.",
		gender, survivorContext)

	raw, err := s.generate(ctx, "", prompt, nil)
	if err != nil {
		s.log.Warn().Err(err).Msg("safety tip generation failed, using fallback")
		return fallbackSafetyTip
	}

	tip := strings.TrimSpace(raw)
	if tip == "" {
		return fallbackSafetyTip
	}
	return tip
}

func (s *Service) generate(ctx context.Context, system, user string, cfg *genai.GenerateContentConfig) (string, error) {
	if s == nil || s.model == nil {
		return "", fmt.Errorf("classifier not configured")
	}

	var contents []*genai.Content
	if system != "" {
		contents = append(contents, genai.NewContentFromText(system, "system"))
	}
	contents = append(contents, genai.NewContentFromText(user, "user"))

	req := &model.LLMRequest{
		Contents: contents,
		Config:   cfg,
	}

	seq := s.model.GenerateContent(ctx, req, false)
	var resp *model.LLMResponse
	var err error
	seq(func(r *model.LLMResponse, e error) bool {
		resp = r
		err = e
		return false
	})
	if err != nil {
		return "", err
	}
	return collectText(resp), nil
}

func collectText(resp *model.LLMResponse) string {
	if resp == nil || resp.Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}

// structuredConfig requests JSON output. The jsonschema form rides along so
// OpenAI-compatible backends can re-render the schema their own way.
func structuredConfig(schema *jsonschema.Schema, temperature float32) *genai.GenerateContentConfig {
	return &genai.GenerateContentConfig{
		Temperature:        genai.Ptr(temperature),
		ResponseMIMEType:   "application/json",
		ResponseSchema:     toGenaiSchema(schema),
		ResponseJsonSchema: schema,
	}
}

func acousticDefault(reason string) types.AcousticAnalysis {
	return types.AcousticAnalysis{
		DistressType:      types.DistressNone,
		TriggerStatus:     types.TriggerStatusNone,
		Reasoning:         reason,
		RecommendedAction: types.ActionContinueMonitoring,
	}
}
