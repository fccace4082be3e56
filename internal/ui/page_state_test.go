package ui

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPageStateStatusExpiry(t *testing.T) {
	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	p := NewPageState(DefaultLayout(), func() time.Time { return now })

	p.SetFailure("Pin", errors.New("boom"), 3*time.Second)
	assert.Equal(t, "Pin failed: boom", p.StatusMsg)
	assert.True(t, p.StatusFailed)

	now = now.Add(2 * time.Second)
	p.ClearExpiredStatus()
	assert.True(t, p.HasStatus())

	now = now.Add(2 * time.Second)
	p.ClearExpiredStatus()
	assert.False(t, p.HasStatus())
	assert.False(t, p.StatusFailed)

	p.SetStatus("sticky", 0)
	now = now.Add(time.Hour)
	p.ClearExpiredStatus()
	assert.Equal(t, "sticky", p.StatusMsg)
}

func TestPageStateUpdateLayout(t *testing.T) {
	p := NewPageState(NewLayout(120, 40), nil)
	assert.False(t, p.UpdateLayout(120, 40))
	assert.True(t, p.UpdateLayout(80, 24))
	assert.Equal(t, NewLayout(80, 24), p.Layout)
}
