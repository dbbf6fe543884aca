package redis

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	"github.com/mcoot/whamageddon/internal/changefeed"
	"github.com/mcoot/whamageddon/internal/model"
	redisstorage "github.com/mcoot/whamageddon/internal/storage/redis"
)

// Feed distributes changes over Redis pub/sub so every server instance
// sharing the database sees every write
type Feed struct {
	client  *redis.Client
	channel string
	logger  *slog.Logger
}

// New creates a feed on the given client. The client is shared with
// storage and is not closed by the feed.
func New(client *redis.Client, logger *slog.Logger) *Feed {
	return &Feed{
		client:  client,
		channel: redisstorage.ChangesChannel(),
		logger:  logger,
	}
}

var _ changefeed.Feed = (*Feed)(nil)

func (f *Feed) Publish(ctx context.Context, change model.Change) error {
	data, err := json.Marshal(change)
	if err != nil {
		return err
	}
	return f.client.Publish(ctx, f.channel, data).Err()
}

func (f *Feed) Subscribe(ctx context.Context) (<-chan model.Change, func()) {
	out := make(chan model.Change, changefeed.SubscriberBuffer)

	ps := f.client.Subscribe(ctx, f.channel)
	// Wait for confirmation so changes published after Subscribe returns arrive
	if _, err := ps.Receive(ctx); err != nil {
		f.logger.Error("change feed subscribe failed", slog.String("error", err.Error()))
		_ = ps.Close()
		close(out)
		return out, func() {}
	}

	stop := make(chan struct{})
	var once sync.Once
	cancel := func() {
		once.Do(func() { close(stop) })
	}

	go func() {
		defer close(out)
		defer func() { _ = ps.Close() }()

		msgs := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case <-stop:
				return
			case msg, ok := <-msgs:
				if !ok {
					return
				}
				var change model.Change
				if err := json.Unmarshal([]byte(msg.Payload), &change); err != nil {
					f.logger.Warn("malformed change ignored", slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- change:
				default:
					f.logger.Warn("change dropped - subscriber buffer full",
						slog.String("group", string(change.GroupSlug)))
				}
			}
		}
	}()

	return out, cancel
}

// Close is a no-op; the client belongs to storage
func (f *Feed) Close() error {
	return nil
}
