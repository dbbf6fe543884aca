package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRealClock_DefaultsToUTC(t *testing.T) {
	c := New(nil)
	assert.Equal(t, time.UTC, c.Location())
	assert.Equal(t, time.UTC, c.Now().Location())
}

func TestRealClock_ReportsInLocation(t *testing.T) {
	loc, err := time.LoadLocation("Pacific/Auckland")
	require.NoError(t, err)

	c := New(loc)
	assert.Equal(t, loc, c.Location())
	assert.Equal(t, loc, c.Now().Location())
	assert.WithinDuration(t, time.Now(), c.Now(), time.Second)
}
