package ui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
)

func TestLoadSpinnerFinishes(t *testing.T) {
	m := loadSpinner{spinner: NewAppSpinner(), title: "Loading issues..."}
	assert.Contains(t, m.View(), "Loading issues...")

	boom := errors.New("boom")
	next, cmd := m.Update(loadDoneMsg{err: boom})
	done := next.(loadSpinner)
	assert.True(t, done.finished)
	assert.ErrorIs(t, done.err, boom)
	assert.NotNil(t, cmd)
	assert.Empty(t, done.View())
}

func TestLoadSpinnerCancel(t *testing.T) {
	m := loadSpinner{spinner: NewAppSpinner(), title: "Loading issues..."}
	next, _ := m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	assert.True(t, next.(loadSpinner).cancelled)
}
