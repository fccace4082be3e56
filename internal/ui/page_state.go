package ui

import (
	"fmt"
	"time"
)

// PageState is the status line and layout shared by browser pages
type PageState struct {
	Layout Layout

	StatusMsg    string
	StatusFailed bool      // render StatusMsg as an error
	StatusExpiry time.Time // zero means the message stays until replaced
	Quitting     bool

	clock func() time.Time
}

// NewPageState returns page state for layout. A nil clock uses time.Now.
func NewPageState(layout Layout, clock func() time.Time) PageState {
	if clock == nil {
		clock = time.Now
	}
	return PageState{Layout: layout, clock: clock}
}

// SetStatus shows msg for ttl, or until replaced when ttl is 0
func (p *PageState) SetStatus(msg string, ttl time.Duration) {
	p.setStatus(msg, false, ttl)
}

// SetFailure shows "<action> failed: <err>" as an error status
func (p *PageState) SetFailure(action string, err error, ttl time.Duration) {
	p.setStatus(fmt.Sprintf("%s failed: %v", action, err), true, ttl)
}

func (p *PageState) setStatus(msg string, failed bool, ttl time.Duration) {
	p.StatusMsg = msg
	p.StatusFailed = failed
	p.StatusExpiry = time.Time{}
	if ttl > 0 {
		p.StatusExpiry = p.now().Add(ttl)
	}
}

// ClearExpiredStatus drops the status once its expiry has passed
func (p *PageState) ClearExpiredStatus() {
	if p.StatusExpiry.IsZero() || !p.now().After(p.StatusExpiry) {
		return
	}
	p.StatusMsg = ""
	p.StatusFailed = false
	p.StatusExpiry = time.Time{}
}

func (p *PageState) HasStatus() bool {
	return p.StatusMsg != ""
}

// RenderStatus styles the status for the footer
func (p *PageState) RenderStatus() string {
	if p.StatusFailed {
		return ErrorStyle.Render(p.StatusMsg)
	}
	return AccentStyle.Render(p.StatusMsg)
}

// UpdateLayout recomputes the layout for a resize and reports whether it changed
func (p *PageState) UpdateLayout(width, height int) bool {
	layout := NewLayout(width, height)
	if layout == p.Layout {
		return false
	}
	p.Layout = layout
	return true
}

func (p *PageState) now() time.Time {
	if p.clock == nil {
		return time.Now()
	}
	return p.clock()
}
