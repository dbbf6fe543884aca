package factory

import (
	"time"

	"github.com/mcoot/whamageddon/internal/changefeed/memory"
	"github.com/mcoot/whamageddon/internal/dependencies/mocks"
	memorystorage "github.com/mcoot/whamageddon/internal/storage/memory"
	"github.com/mcoot/whamageddon/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
	MemoryFeed *memory.Feed
}

// NewTestApp creates an App configured for testing with mocked dependencies.
// The clock starts on 10 December so the season is active.
func NewTestApp() *TestApp {
	logger := testutil.NopLogger()
	store := memorystorage.New()
	feed := memory.New(logger)
	mockClock := mocks.NewMockClock(time.Date(2025, 12, 10, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(store, feed, mockClock, mockRandom, time.UTC, logger)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
		MemoryFeed: feed,
	}
}
