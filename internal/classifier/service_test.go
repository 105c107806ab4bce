package classifier

import (
	"context"
	"fmt"
	"iter"
	"testing"

	"github.com/rs/zerolog"
	"google.golang.org/adk/model"
	"google.golang.org/genai"

	"github.com/mphakathi/guardian/internal/types"
)

type fakeLLM struct {
	response string
	err      error
	requests []*model.LLMRequest
}

func (f *fakeLLM) Name() string { return "fake" }

func (f *fakeLLM) GenerateContent(ctx context.Context, req *model.LLMRequest, stream bool) iter.Seq2[*model.LLMResponse, error] {
	f.requests = append(f.requests, req)
	return func(yield func(*model.LLMResponse, error) bool) {
		if f.err != nil {
			yield(nil, f.err)
			return
		}
		yield(&model.LLMResponse{
			Content: &genai.Content{
				Parts: []*genai.Part{{Text: f.response}},
			},
		}, nil)
	}
}

func TestAnalyzeEmotionParsesVerdict(t *testing.T) {
	llm := &fakeLLM{response: `{"emotion": "Danger", "intensity": 95, "confidence": 0.9}`}
	svc := New(llm, zerolog.Nop())

	state, err := svc.AnalyzeEmotion(context.Background(), "HELP HELP")
	if err != nil {
		t.Fatalf("AnalyzeEmotion returned error: %v", err)
	}
	if state.Emotion != types.EmotionDanger || state.Intensity != 95 || state.Confidence != 0.9 {
		t.Fatalf("unexpected state %+v", state)
	}

	if len(llm.requests) != 1 {
		t.Fatalf("expected one model call, got %d", len(llm.requests))
	}
	req := llm.requests[0]
	if req.Config == nil || req.Config.ResponseMIMEType != "application/json" {
		t.Fatal("expected a structured JSON request")
	}
	if req.Config.ResponseSchema == nil || req.Config.ResponseJsonSchema == nil {
		t.Fatal("expected the response schema in both forms")
	}
	if len(req.Contents) != 2 || req.Contents[0].Role != "system" {
		t.Fatalf("expected system+user contents, got %d", len(req.Contents))
	}
}

func TestAnalyzeEmotionEmptyInputSkipsModel(t *testing.T) {
	llm := &fakeLLM{}
	svc := New(llm, zerolog.Nop())

	state, err := svc.AnalyzeEmotion(context.Background(), "   ")
	if err != nil {
		t.Fatalf("AnalyzeEmotion returned error: %v", err)
	}
	if state.Emotion != types.EmotionNeutral {
		t.Fatalf("expected neutral default, got %+v", state)
	}
	if len(llm.requests) != 0 {
		t.Fatal("empty input must not call the model")
	}
}

func TestAnalyzeEmotionFailsClosed(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("quota exceeded")}
	svc := New(llm, zerolog.Nop())

	state, err := svc.AnalyzeEmotion(context.Background(), "hello")
	if err == nil {
		t.Fatal("expected the model error to surface")
	}
	if state.Emotion != types.EmotionNeutral || state.Intensity != 0 || state.Confidence != 0 {
		t.Fatalf("expected neutral default on failure, got %+v", state)
	}
}

func TestAnalyzeAcousticFailsClosed(t *testing.T) {
	llm := &fakeLLM{response: "not json at all"}
	svc := New(llm, zerolog.Nop())

	analysis, err := svc.AnalyzeAcoustic(context.Background(), "some text")
	if err == nil {
		t.Fatal("expected a parse error")
	}
	if analysis.DistressType != types.DistressNone {
		t.Fatalf("expected safe default distress, got %s", analysis.DistressType)
	}
	if analysis.RecommendedAction != types.ActionContinueMonitoring {
		t.Fatalf("expected continue_monitoring default, got %s", analysis.RecommendedAction)
	}
}

func TestSuggestSafetyActionSkipsUnremarkableState(t *testing.T) {
	llm := &fakeLLM{}
	svc := New(llm, zerolog.Nop())

	action, err := svc.SuggestSafetyAction(context.Background(),
		types.EmotionState{Emotion: types.EmotionNeutral, Intensity: 10},
		types.AcousticAnalysis{DistressType: types.DistressNone})
	if err != nil {
		t.Fatalf("SuggestSafetyAction returned error: %v", err)
	}
	if action != nil {
		t.Fatalf("expected nil action, got %+v", action)
	}
	if len(llm.requests) != 0 {
		t.Fatal("unremarkable state must not call the model")
	}
}

func TestSuggestSafetyActionReturnsSuggestion(t *testing.T) {
	llm := &fakeLLM{response: `{"action_type": "MOVE", "headline": "Stay visible", "suggestion": "Move toward a busy area."}`}
	svc := New(llm, zerolog.Nop())

	action, err := svc.SuggestSafetyAction(context.Background(),
		types.EmotionState{Emotion: types.EmotionFearful, Intensity: 70},
		types.AcousticAnalysis{DistressType: types.DistressCry, DetectionConfidence: 0.6})
	if err != nil {
		t.Fatalf("SuggestSafetyAction returned error: %v", err)
	}
	if action == nil || action.Headline != "Stay visible" {
		t.Fatalf("unexpected action %+v", action)
	}
}

func TestCalmingMessageStripsQuotes(t *testing.T) {
	llm := &fakeLLM{response: `"You are safe. Breathe slowly."`}
	svc := New(llm, zerolog.Nop())

	msg := svc.CalmingMessage(context.Background(), types.CalmStyleSoothing)
	if msg != "You are safe. Breathe slowly." {
		t.Fatalf("unexpected message %q", msg)
	}
}

func TestCalmingMessageFallsBack(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("unavailable")}
	svc := New(llm, zerolog.Nop())

	if msg := svc.CalmingMessage(context.Background(), types.CalmStyleSoothing); msg != fallbackCalmingMessage {
		t.Fatalf("expected fallback, got %q", msg)
	}
}

func TestSafetyTipFallsBack(t *testing.T) {
	llm := &fakeLLM{err: fmt.Errorf("unavailable")}
	svc := New(llm, zerolog.Nop())

	if tip := svc.SafetyTip(context.Background(), types.GenderWoman, true); tip != fallbackSafetyTip {
		t.Fatalf("expected fallback, got %q", tip)
	}
}
