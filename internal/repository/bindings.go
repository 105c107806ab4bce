package repository

import (
	"context"

	"github.com/mphakathi/guardian/internal/types"
)

// Bound adapts the context-taking repositories to the context-free sink
// interfaces the engine calls from timer callbacks.
type Bound struct {
	ctx   context.Context
	store *Store
}

// Bind returns a Bound view of store scoped to ctx.
func Bind(ctx context.Context, store *Store) *Bound {
	return &Bound{ctx: ctx, store: store}
}

func (b *Bound) AppendSecurityLog(entry types.SecurityLogEntry) error {
	return b.store.SecurityLog.Append(b.ctx, entry)
}

func (b *Bound) SaveRecording(rec types.CompletedRecording) error {
	return b.store.Recordings.Save(b.ctx, rec)
}

func (b *Bound) AppendTranscript(entry types.TranscriptionEntry) error {
	return b.store.Transcripts.Append(b.ctx, entry)
}

func (b *Bound) AddThread(thread types.InboxThread) {
	_ = b.store.Inbox.AddThread(b.ctx, thread)
}
