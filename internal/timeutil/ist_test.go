package timeutil

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestBusinessDate(t *testing.T) {
	// 20:00 UTC is 01:30 IST the next day; the ledger key follows IST.
	utc := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-11", BusinessDate(utc))

	morning := time.Date(2026, 3, 10, 6, 0, 0, 0, time.UTC)
	assert.Equal(t, "2026-03-10", BusinessDate(morning))
}

func TestStartOfDay(t *testing.T) {
	utc := time.Date(2026, 3, 10, 20, 0, 0, 0, time.UTC)
	start := StartOfDay(utc)

	assert.Equal(t, 2026, start.Year())
	assert.Equal(t, time.March, start.Month())
	assert.Equal(t, 11, start.Day())
	assert.Equal(t, 0, start.Hour())
	assert.Equal(t, IST, start.Location())
}
