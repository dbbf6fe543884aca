package mocks

import (
	"context"
	"sync"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/model"
)

// RecordingFeed is a change feed that remembers what was published
type RecordingFeed struct {
	mu        sync.Mutex
	published []model.Change

	// PublishErr, when set, is returned from every Publish
	PublishErr error
}

var _ changefeed.Feed = (*RecordingFeed)(nil)

// NewRecordingFeed creates an empty RecordingFeed
func NewRecordingFeed() *RecordingFeed {
	return &RecordingFeed{}
}

func (f *RecordingFeed) Publish(ctx context.Context, change model.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.PublishErr != nil {
		return f.PublishErr
	}
	f.published = append(f.published, change)
	return nil
}

// Subscribe returns a channel that never delivers
func (f *RecordingFeed) Subscribe(ctx context.Context) (<-chan model.Change, func()) {
	return make(chan model.Change), func() {}
}

func (f *RecordingFeed) Close() error {
	return nil
}

// Published returns a copy of every change published so far
func (f *RecordingFeed) Published() []model.Change {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]model.Change(nil), f.published...)
}

// Reset forgets recorded changes
func (f *RecordingFeed) Reset() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.published = nil
}
