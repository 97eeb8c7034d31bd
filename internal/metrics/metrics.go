// Package metrics accumulates per-operation measurements and emits them as a
// single structured log event. One Recorder covers one operation; a flush writes
// every dimension, metric and property as top-level fields so that log tooling
// (jq, Loki, CloudWatch Logs Insights) can aggregate runs without a metrics backend.
package metrics

import (
	"sort"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Metric units.
const (
	UnitMilliseconds = "Milliseconds"
	UnitCount        = "Count"
	UnitBytes        = "Bytes"
)

type metricDef struct {
	Name  string
	Unit  string
	Value float64
}

// Recorder accumulates dimensions, metrics, and properties for a single flush.
// It is NOT safe for concurrent use from multiple goroutines; create one per operation.
type Recorder struct {
	namespace  string
	logger     *zerolog.Logger
	dimensions map[string]string
	metrics    map[string]metricDef
	properties map[string]interface{}
}

// New creates a Recorder that flushes to the global logger under namespace.
func New(namespace string) *Recorder {
	return &Recorder{
		namespace:  namespace,
		dimensions: make(map[string]string),
		metrics:    make(map[string]metricDef),
		properties: make(map[string]interface{}),
	}
}

// WithLogger routes the flush to l instead of the global logger.
func (r *Recorder) WithLogger(l *zerolog.Logger) *Recorder {
	r.logger = l
	return r
}

// Dimension adds a dimension key-value pair.
func (r *Recorder) Dimension(key, value string) *Recorder {
	r.dimensions[key] = value
	return r
}

// Metric records a named metric value with a unit.
// Use the Unit* constants (UnitMilliseconds, UnitCount, UnitBytes).
func (r *Recorder) Metric(name string, value float64, unit string) *Recorder {
	r.metrics[name] = metricDef{Name: name, Unit: unit, Value: value}
	return r
}

// Count is a convenience for recording a count metric (value = 1).
func (r *Recorder) Count(name string) *Recorder {
	return r.Metric(name, 1, UnitCount)
}

// Property adds a non-metric field to the event.
func (r *Recorder) Property(key string, value interface{}) *Recorder {
	r.properties[key] = value
	return r
}

// Flush writes the accumulated values as one debug-level event.
// After flushing, the Recorder should not be reused.
func (r *Recorder) Flush() {
	if len(r.metrics) == 0 {
		return // Nothing to emit
	}

	l := r.logger
	if l == nil {
		l = &log.Logger
	}

	units := zerolog.Dict()
	e := l.Debug().Str("namespace", r.namespace)
	for _, k := range sortedKeys(r.dimensions) {
		e = e.Str(k, r.dimensions[k])
	}
	for _, k := range sortedKeys(r.metrics) {
		m := r.metrics[k]
		e = e.Float64(k, m.Value)
		units = units.Str(k, m.Unit)
	}
	for _, k := range sortedKeys(r.properties) {
		e = e.Interface(k, r.properties[k])
	}
	e.Dict("units", units).Msg("metrics")
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
