package main

import (
	"fmt"

	"github.com/mphakathi/guardian/internal/escalation"
	"github.com/mphakathi/guardian/internal/types"
)

// consoleSink renders every engine event as a console line. It backs all
// the display interfaces at once.
type consoleSink struct{}

func (consoleSink) Alert(alert types.Alert) {
	fmt.Printf("[%s] %s\n", alert.Level, alert.Message)
}

func (consoleSink) Countdown(remaining int, active bool) {
	if active {
		fmt.Printf("[SOS] countdown: %ds\n", remaining)
		return
	}
	fmt.Println("[SOS] countdown cleared")
}

func (consoleSink) ModerateHold(hold *escalation.Hold) {
	if hold == nil {
		fmt.Println("[HOLD] cleared")
		return
	}
	fmt.Printf("[HOLD] %s at %.2f, validating...\n", hold.Trigger.Label(), hold.Confidence)
}

func (consoleSink) DeEscalationOffer(open bool) {
	if open {
		fmt.Println("[OFFER] You seem calmer. Cancel the SOS, keep monitoring, or send anyway?")
		return
	}
	fmt.Println("[OFFER] closed")
}

func (consoleSink) Status(text string) {
	fmt.Printf("[STATUS] %s\n", text)
}

func (consoleSink) SafetyAction(action *types.SafetyAction) {
	if action == nil {
		return
	}
	fmt.Printf("[SUGGESTION] %s: %s\n", action.Headline, action.Suggestion)
}

func (consoleSink) Transcript(entry types.TranscriptionEntry) {
	if entry.Emotion != nil {
		fmt.Printf("[HEARD] %q (%s %d)\n", entry.Text, entry.Emotion.Emotion, entry.Emotion.Intensity)
		return
	}
	fmt.Printf("[HEARD] %q\n", entry.Text)
}

func (consoleSink) CheckInPrompt() {
	fmt.Println("[CHECK-IN] Are you still safe?")
}

func (consoleSink) Tip(text string) {
	fmt.Printf("[TIP] %s\n", text)
}

func (consoleSink) SafeCodeReminder(phrase string) {
	fmt.Printf("[REMINDER] Your voice secret code is %q.\n", phrase)
}

func (consoleSink) CalmAssistOffer(open bool, message string) {
	if open {
		fmt.Printf("[CALM] %s\n", message)
		return
	}
	fmt.Println("[CALM] dismissed")
}

// noopDevice stands in for haptics on the dev console.
type noopDevice struct{}

func (noopDevice) Vibrate(patternMs ...int) {}
