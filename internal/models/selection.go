package models

import "time"

// DefaultStatsPeriod is substituted when a selection carries no datetime at all
const DefaultStatsPeriod = "14d"

// DateTime is either a relative period ("14d") or an absolute Start/End range
type DateTime struct {
	Period string
	Start  *time.Time
	End    *time.Time
	UTC    bool
}

// IsAbsolute reports whether the absolute range is the meaningful half
func (d DateTime) IsAbsolute() bool {
	return d.Period == "" && d.Start != nil && d.End != nil
}

// EffectivePeriod returns the relative period, falling back to DefaultStatsPeriod
// when neither a period nor an absolute range is set
func (d DateTime) EffectivePeriod() string {
	if d.Period != "" {
		return d.Period
	}
	if d.IsAbsolute() {
		return ""
	}
	return DefaultStatsPeriod
}

// PageSelection is the global project/environment/time filter
type PageSelection struct {
	Projects     []int64 // nil or empty = use defaults
	Environments []string
	DateTime     DateTime
}
