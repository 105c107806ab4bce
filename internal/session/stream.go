package session

import (
	"context"

	"github.com/mphakathi/guardian/internal/recording"
	"github.com/mphakathi/guardian/internal/types"
)

// Stream delivers finalized transcript utterances from an open capture.
// The channel closes when the capture ends.
type Stream interface {
	Utterances() <-chan string
	Close() error
}

// CaptureSource opens the microphone, yielding the transcription stream and
// the raw audio buffer recordings are cut from.
type CaptureSource interface {
	Open(ctx context.Context) (Stream, recording.AudioStream, error)
}

// Locator resolves the device position. Best effort; sessions proceed
// without a fix.
type Locator interface {
	Current(ctx context.Context) (*types.Location, error)
}
