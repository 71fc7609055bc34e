package model

import "strconv"

// Metric is a numeric value that may be unknown. Unknown values propagate
// through arithmetic instead of failing.
type Metric struct {
	Value float64
	Known bool
}

// Unknown is the zero Metric.
var Unknown = Metric{}

// KnownMetric wraps v as a known value.
func KnownMetric(v float64) Metric { return Metric{Value: v, Known: true} }

// Div returns m/d. The result is unknown when either side is unknown or d is zero.
func (m Metric) Div(d Metric) Metric {
	if !m.Known || !d.Known || d.Value == 0 {
		return Unknown
	}
	return KnownMetric(m.Value / d.Value)
}

// String renders the value, or "Unknown".
func (m Metric) String() string {
	if !m.Known {
		return "Unknown"
	}
	return strconv.FormatFloat(m.Value, 'g', -1, 64)
}
