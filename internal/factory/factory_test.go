package factory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/whamageddon/internal/dependencies/clock"
)

func TestNew_ClockUsesConfiguredLocation(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	app, err := New(Config{Location: loc})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	rc, ok := app.Clock.(*clock.RealClock)
	require.True(t, ok)
	assert.Equal(t, loc, rc.Location())
	assert.Equal(t, loc, app.Clock.Now().Location())
	assert.Equal(t, loc, app.SeasonService.Countdown().Cutoff.Location())
}

func TestNew_DefaultsToUTC(t *testing.T) {
	app, err := New(Config{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })

	assert.Equal(t, time.UTC, app.Clock.Now().Location())
	assert.Equal(t, time.UTC, app.SeasonService.Countdown().Cutoff.Location())
}

func TestNew_RejectsUnknownStorage(t *testing.T) {
	_, err := New(Config{StorageType: "cassandra"})
	assert.Error(t, err)
}
