package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/mphakathi/guardian/internal/recording"
	"github.com/mphakathi/guardian/internal/session"
	"github.com/mphakathi/guardian/internal/types"
)

// stdinCapture simulates microphone capture for the dev console: each stdin
// line is one finalized utterance and its bytes double as the audio feed.
type stdinCapture struct {
	mu     sync.Mutex
	opened bool
}

func (c *stdinCapture) Open(ctx context.Context) (session.Stream, recording.AudioStream, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opened {
		return nil, nil, fmt.Errorf("capture already open")
	}
	c.opened = true

	buf := &captureBuffer{}
	stream := &stdinStream{
		utterances: make(chan string),
		done:       make(chan struct{}),
	}

	go func() {
		defer close(stream.utterances)
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			line := scanner.Text()
			buf.append([]byte(line + "\n"))
			select {
			case stream.utterances <- line:
			case <-stream.done:
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	return stream, buf, nil
}

type stdinStream struct {
	utterances chan string
	once       sync.Once
	done       chan struct{}
}

func (s *stdinStream) Utterances() <-chan string {
	return s.utterances
}

func (s *stdinStream) Close() error {
	s.once.Do(func() { close(s.done) })
	return nil
}

// captureBuffer is an append-only audio buffer.
type captureBuffer struct {
	mu   sync.Mutex
	data []byte
}

func (b *captureBuffer) append(p []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.data = append(b.data, p...)
}

func (b *captureBuffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.data)
}

func (b *captureBuffer) ReadFrom(offset int) []byte {
	b.mu.Lock()
	defer b.mu.Unlock()
	if offset < 0 || offset >= len(b.data) {
		return nil
	}
	return append([]byte(nil), b.data[offset:]...)
}

// envLocator reads a fixed position from LOCATION_LAT / LOCATION_LNG.
type envLocator struct{}

func (envLocator) Current(ctx context.Context) (*types.Location, error) {
	lat, latErr := strconv.ParseFloat(os.Getenv("LOCATION_LAT"), 64)
	lng, lngErr := strconv.ParseFloat(os.Getenv("LOCATION_LNG"), 64)
	if latErr != nil || lngErr != nil {
		return nil, fmt.Errorf("no location configured")
	}
	return &types.Location{Latitude: lat, Longitude: lng}, nil
}
