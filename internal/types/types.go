// Package types holds the domain model shared across the engine.
package types

import "time"

// Emotion is the dominant emotion detected in one utterance.
type Emotion string

const (
	EmotionNeutral  Emotion = "Neutral"
	EmotionCalm     Emotion = "Calm"
	EmotionHappy    Emotion = "Happy"
	EmotionSad      Emotion = "Sad"
	EmotionStressed Emotion = "Stressed"
	EmotionFearful  Emotion = "Fearful"
	EmotionAngry    Emotion = "Angry"
	EmotionDanger   Emotion = "Danger"
)

// EmotionState is the classifier's verdict for one finalized utterance.
// Intensity is 0-100, Confidence is 0.0-1.0.
type EmotionState struct {
	Emotion    Emotion `json:"emotion"`
	Intensity  int     `json:"intensity"`
	Confidence float64 `json:"confidence"`
}

// DistressType labels the inferred acoustic pattern.
type DistressType string

const (
	DistressNone    DistressType = "none"
	DistressScream  DistressType = "scream"
	DistressCry     DistressType = "cry"
	DistressYell    DistressType = "yell"
	DistressFearful DistressType = "fearful"
)

// TriggerStatus is the acoustic analyzer's escalation hint.
type TriggerStatus string

const (
	TriggerStatusNone   TriggerStatus = "none"
	TriggerStatusMedium TriggerStatus = "medium"
	TriggerStatusHigh   TriggerStatus = "high"
)

// RecommendedAction is the acoustic analyzer's suggested next step.
type RecommendedAction string

const (
	ActionContinueMonitoring RecommendedAction = "continue_monitoring"
	ActionActivateEmergency  RecommendedAction = "activate_emergency"
	ActionEscalateListening  RecommendedAction = "escalate_listening"
)

// AcousticAnalysis is the acoustic-pattern verdict for one utterance,
// scored independently of the emotion verdict.
type AcousticAnalysis struct {
	DetectionConfidence float64           `json:"detection_confidence"`
	DistressType        DistressType      `json:"distress_type"`
	TriggerStatus       TriggerStatus     `json:"trigger_status"`
	Reasoning           string            `json:"reasoning"`
	RecommendedAction   RecommendedAction `json:"recommended_action"`
}

// VoiceSafeCodeMatch is set transiently when an utterance contains the
// configured secret phrase and cleared once the fusion step consumes it.
type VoiceSafeCodeMatch struct {
	Probability float64
}

// SafetyAction is a contextual suggestion surfaced alongside distress.
type SafetyAction struct {
	ActionType string `json:"action_type"`
	Headline   string `json:"headline"`
	Suggestion string `json:"suggestion"`
}

// SensitivityLevel scales a raw signal confidence before fusion.
type SensitivityLevel string

const (
	SensitivityLow    SensitivityLevel = "Low"
	SensitivityMedium SensitivityLevel = "Medium"
	SensitivityHigh   SensitivityLevel = "High"
)

// AlertLevel grades user-facing banners.
type AlertLevel string

const (
	AlertNone     AlertLevel = "None"
	AlertWarning  AlertLevel = "Warning"
	AlertCritical AlertLevel = "Critical"
	AlertSuccess  AlertLevel = "Success"
)

// Alert is a transient user-facing banner.
type Alert struct {
	Level   AlertLevel
	Message string
}

// TriggerKind tags the source of an escalation trigger so downstream
// handling is exhaustively checked instead of string-matched.
type TriggerKind int

const (
	TriggerDangerKeyword TriggerKind = iota
	TriggerAcoustic
	TriggerSafeCode
	TriggerEscalated
)

// Trigger identifies what caused an escalation.
type Trigger struct {
	Kind     TriggerKind
	Distress DistressType // only meaningful for TriggerAcoustic
}

// Label returns the display and log text for the trigger.
func (t Trigger) Label() string {
	switch t.Kind {
	case TriggerDangerKeyword:
		return "Danger Keyword"
	case TriggerAcoustic:
		if t.Distress != "" && t.Distress != DistressNone {
			return "Acoustic: " + string(t.Distress)
		}
		return "Acoustic Event"
	case TriggerSafeCode:
		return "Voice Secret Code"
	case TriggerEscalated:
		return "Situation Escalated"
	default:
		return "Unknown"
	}
}

// CheckInInterval is how often the "are you still safe?" prompt appears.
type CheckInInterval string

const (
	CheckInFifteenMinutes CheckInInterval = "15 Minutes"
	CheckInThirtyMinutes  CheckInInterval = "30 Minutes"
	CheckInOneHour        CheckInInterval = "1 Hour"
	CheckInNever          CheckInInterval = "Never"
)

// Duration returns the prompt interval; ok is false for Never.
func (i CheckInInterval) Duration() (time.Duration, bool) {
	switch i {
	case CheckInFifteenMinutes:
		return 15 * time.Minute, true
	case CheckInThirtyMinutes:
		return 30 * time.Minute, true
	case CheckInOneHour:
		return time.Hour, true
	default:
		return 0, false
	}
}

// ReminderInterval is how often the safe-code reminder appears.
type ReminderInterval string

const (
	ReminderOneHour   ReminderInterval = "1 Hour"
	ReminderTwoHours  ReminderInterval = "2 Hours"
	ReminderFourHours ReminderInterval = "4 Hours"
	ReminderNever     ReminderInterval = "Never"
)

// Duration returns the reminder interval; ok is false for Never.
func (i ReminderInterval) Duration() (time.Duration, bool) {
	switch i {
	case ReminderOneHour:
		return time.Hour, true
	case ReminderTwoHours:
		return 2 * time.Hour, true
	case ReminderFourHours:
		return 4 * time.Hour, true
	default:
		return 0, false
	}
}

// CalmAssistStyle selects the tone of generated calming messages.
type CalmAssistStyle string

const (
	CalmStyleSoothing    CalmAssistStyle = "Soft and soothing"
	CalmStyleEmpowering  CalmAssistStyle = "Strong and encouraging"
	CalmStyleMindfulness CalmAssistStyle = "Mindfulness mode"
)

// Gender is used only to personalize safety tips.
type Gender string

const (
	GenderWoman          Gender = "Woman"
	GenderMan            Gender = "Man"
	GenderNonBinary      Gender = "Non-Binary person"
	GenderPreferNotToSay Gender = "Person"
)

// Location is a best-effort GPS fix; nil where unavailable.
type Location struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// EmergencyContact is one configured alert recipient.
type EmergencyContact struct {
	Name string `json:"name"`
	Tel  string `json:"tel"`
}

// VoiceSafeCode is the covert activation phrase. The voiceprint is a
// placeholder token; matching is a verbatim substring check on transcripts.
type VoiceSafeCode struct {
	Phrase     string `json:"phrase"`
	Voiceprint string `json:"voiceprint"`
}

// SecurityLogEntry records one escalation trigger. The log is append-only;
// entries are removed only by an explicit full clear.
type SecurityLogEntry struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	TriggerType string    `json:"triggerType"`
	Details     string    `json:"details"`
	Confidence  float64   `json:"confidence"`
}

// TranscriptionEntry is one finalized utterance with its emotion verdict.
type TranscriptionEntry struct {
	ID        string        `json:"id"`
	Text      string        `json:"text"`
	Timestamp time.Time     `json:"timestamp"`
	Emotion   *EmotionState `json:"emotionState"`
}

// RecordingKind distinguishes how a recording was initiated.
type RecordingKind string

const (
	RecordingRolling         RecordingKind = "rolling"
	RecordingEmergency       RecordingKind = "emergency"
	RecordingSilentEmergency RecordingKind = "silent_emergency"
)

// CompletedRecording is a finished audio capture.
type CompletedRecording struct {
	ID        string
	Kind      RecordingKind
	Data      []byte
	Timestamp time.Time
}

// InboxStatus is the state of a safety-inbox thread.
type InboxStatus string

const (
	InboxSafe         InboxStatus = "Safe"
	InboxActiveDanger InboxStatus = "Active Danger"
	InboxNoResponse   InboxStatus = "No Response"
)

// InboxMessage is one message within a safety-inbox thread.
type InboxMessage struct {
	ID        string    `json:"id"`
	Sender    string    `json:"sender"` // "user" or "contact"
	Type      string    `json:"type"`   // "text" or "audio"
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// InboxThread is a simulated peer-network distress conversation.
type InboxThread struct {
	ID        string         `json:"id"`
	UserName  string         `json:"userName"`
	Avatar    string         `json:"avatar"`
	Location  *Location      `json:"location"`
	Timestamp time.Time      `json:"timestamp"`
	Status    InboxStatus    `json:"status"`
	Messages  []InboxMessage `json:"messages"`
}

// SimulatedUser is a synthetic peer used to populate the safety inbox.
type SimulatedUser struct {
	ID     string
	Name   string
	Avatar string
}
