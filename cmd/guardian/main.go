// Package main runs the distress-monitoring engine with a console front
// end: stdin lines stand in for finalized transcript utterances.
package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"google.golang.org/adk/model"

	"github.com/mphakathi/guardian/internal/alerting"
	"github.com/mphakathi/guardian/internal/calmassist"
	"github.com/mphakathi/guardian/internal/classifier"
	"github.com/mphakathi/guardian/internal/clock"
	"github.com/mphakathi/guardian/internal/config"
	"github.com/mphakathi/guardian/internal/escalation"
	"github.com/mphakathi/guardian/internal/fusion"
	"github.com/mphakathi/guardian/internal/logging"
	"github.com/mphakathi/guardian/internal/models"
	"github.com/mphakathi/guardian/internal/recording"
	"github.com/mphakathi/guardian/internal/repository"
	"github.com/mphakathi/guardian/internal/session"
	"github.com/mphakathi/guardian/internal/types"
)

func main() {
	cfg := config.Load()
	logger := logging.New(cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	store, err := repository.NewStore(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer store.Close()
	bound := repository.Bind(ctx, store)

	var llm model.LLM
	switch cfg.ModelProvider {
	case "openai":
		llm, err = models.NewOpenAIModel(cfg.ModelName, cfg.OpenAIAPIKey, cfg.OpenAIBaseURL)
	default:
		llm, err = models.NewGeminiModel(ctx, cfg.ModelName, cfg.GoogleAPIKey)
	}
	if err != nil {
		log.Fatalf("failed to create model: %v", err)
	}
	classify := classifier.New(llm, logger)

	clk := clock.Real{}
	sink := consoleSink{}
	ref := &sessionRef{}
	contacts := &contactSource{settings: store.Settings, sessions: ref}

	dispatcher := alerting.NewDispatcher(clk, contacts, sink, bound, logger)
	if len(os.Args) > 1 && os.Args[1] == "test-alert" {
		dispatcher.SendTest()
		return
	}

	logbook := alerting.NewLogbook(clk, contacts, bound, logger)
	recorder := recording.New(clk, bound, sink, cfg.RollingSegment, logger)
	watcher := calmassist.NewWatcher(clk, calmassist.DefaultConfig(), classify, store.Settings, sink, logger)

	policy := fusion.DefaultPolicy()
	policy.HighConfidence = cfg.HighConfidence
	policy.ModerateConfidence = cfg.ModerateConfidence

	timing := escalation.Timing{
		CountdownSeconds:  cfg.CountdownSeconds,
		ModerateHold:      cfg.ModerateHold,
		DeEscalationDelay: cfg.DeEscalationDelay,
		OfferTimeout:      cfg.OfferTimeout,
		SilentCooldown:    cfg.SilentCooldown,
		ClipDuration:      cfg.ClipDuration,
	}
	machine := escalation.New(timing, policy, escalation.Deps{
		Clock:      clk,
		Dispatcher: dispatcher,
		Recorder:   recorder,
		Logbook:    logbook,
		Emotions:   ref,
		Sessions:   ref,
		CalmAssist: watcher,
		Device:     noopDevice{},
		Sink:       sink,
		Log:        logger,
	})

	manager := session.NewManager(ctx, session.Deps{
		Capture:     &stdinCapture{},
		Locator:     envLocator{},
		Classifier:  classify,
		Machine:     machine,
		CalmWatcher: watcher,
		Recorder:    recorder,
		Settings:    store.Settings,
		Transcripts: bound,
		Policy:      policy,
		Sink:        sink,
		Clock:       clk,
		Log:         logger,
	})
	ref.m = manager

	if err := manager.Start(true); err != nil {
		log.Fatalf("failed to start session: %v", err)
	}

	<-ctx.Done()
	manager.Stop()
}

// sessionRef breaks the construction cycle between the escalation machine
// and the session manager.
type sessionRef struct {
	m *session.Manager
}

func (r *sessionRef) Listening() bool {
	if r.m == nil {
		return false
	}
	return r.m.Listening()
}

func (r *sessionRef) StartListening(record bool) error {
	return r.m.StartListening(record)
}

func (r *sessionRef) CurrentEmotion() types.EmotionState {
	if r.m == nil {
		return types.EmotionState{Emotion: types.EmotionNeutral}
	}
	return r.m.CurrentEmotion()
}

// contactSource joins the stored contact settings with the live session fix.
type contactSource struct {
	settings *repository.SettingsRepo
	sessions *sessionRef
}

func (c *contactSource) Contacts() []types.EmergencyContact {
	return c.settings.Contacts()
}

func (c *contactSource) UserName() string {
	return c.settings.UserName()
}

func (c *contactSource) Location() *types.Location {
	if c.sessions.m == nil {
		return nil
	}
	return c.sessions.m.Location()
}
