package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLiveClassIsLive(t *testing.T) {
	start := time.Date(2026, 3, 10, 18, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	lc := &LiveClass{StartsAt: start, EndsAt: end}

	assert.False(t, lc.IsLive(start.Add(-time.Minute)), "before start")
	assert.True(t, lc.IsLive(start), "window start is inclusive")
	assert.True(t, lc.IsLive(start.Add(30*time.Minute)), "mid window")
	assert.True(t, lc.IsLive(end), "window end is inclusive")
	assert.False(t, lc.IsLive(end.Add(time.Second)), "after end")
}
