package memory

import (
	"context"
	"log/slog"
	"sync"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/model"
)

// Feed fans changes out to subscribers within one process
type Feed struct {
	mu     sync.Mutex
	subs   map[*subscriber]struct{}
	closed bool
	logger *slog.Logger
}

type subscriber struct {
	ch   chan model.Change
	once sync.Once
}

// New creates an in-process feed
func New(logger *slog.Logger) *Feed {
	return &Feed{
		subs:   make(map[*subscriber]struct{}),
		logger: logger,
	}
}

var _ changefeed.Feed = (*Feed)(nil)

func (f *Feed) Publish(ctx context.Context, change model.Change) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for sub := range f.subs {
		select {
		case sub.ch <- change:
		default:
			f.logger.Warn("change dropped - subscriber buffer full",
				slog.String("group", string(change.GroupSlug)))
		}
	}
	return nil
}

func (f *Feed) Subscribe(ctx context.Context) (<-chan model.Change, func()) {
	sub := &subscriber{ch: make(chan model.Change, changefeed.SubscriberBuffer)}

	f.mu.Lock()
	if f.closed {
		f.mu.Unlock()
		close(sub.ch)
		return sub.ch, func() {}
	}
	f.subs[sub] = struct{}{}
	f.mu.Unlock()

	stop := make(chan struct{})
	cancel := func() {
		sub.once.Do(func() {
			close(stop)
			f.remove(sub)
		})
	}

	go func() {
		select {
		case <-ctx.Done():
			cancel()
		case <-stop:
		}
	}()

	return sub.ch, cancel
}

func (f *Feed) remove(sub *subscriber) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.subs[sub]; ok {
		delete(f.subs, sub)
		close(sub.ch)
	}
}

// SubscriberCount returns the number of live subscriptions
func (f *Feed) SubscriberCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

// Close ends every subscription
func (f *Feed) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	for sub := range f.subs {
		delete(f.subs, sub)
		close(sub.ch)
	}
	return nil
}
