// Package changefeed carries "rows of this group changed" notifications
// from the services to every live viewer.
package changefeed

import (
	"context"
	"log/slog"

	"github.com/mcoot/whamageddon/internal/model"
)

// Feed publishes and fans out change notifications
type Feed interface {
	// Publish announces a change. Delivery is best effort.
	Publish(ctx context.Context, change model.Change) error

	// Subscribe returns a channel of changes and a function that cancels the
	// subscription. The channel is closed after cancel or when ctx is done.
	Subscribe(ctx context.Context) (<-chan model.Change, func())

	Close() error
}

// SubscriberBuffer is the per-subscriber queue length. Changes beyond it
// are dropped; the next change for the group triggers a full re-fetch.
const SubscriberBuffer = 64

// Announce publishes a change and logs instead of failing when the feed is
// unavailable; the write it describes has already succeeded.
func Announce(ctx context.Context, feed Feed, logger *slog.Logger, change model.Change) {
	if err := feed.Publish(ctx, change); err != nil {
		logger.Warn("change publish failed",
			slog.String("group", string(change.GroupSlug)),
			slog.String("table", string(change.Table)),
			slog.String("error", err.Error()))
	}
}
