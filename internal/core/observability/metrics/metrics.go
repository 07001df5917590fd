// Package metrics keeps in-process counters, gauges and histograms keyed by
// name and tags.
package metrics

import (
	"math"
	"sort"
	"strings"
	"sync"
)

type Counter interface {
	Inc()
	Add(float64)
	Value() float64
}

type Gauge interface {
	Set(float64)
	Inc()
	Dec()
	Add(float64)
	Sub(float64)
	Value() float64
}

type Histogram interface {
	Observe(float64)
	Count() uint64
	Sum() float64
	Mean() float64
	Min() float64
	Max() float64
	Reset()
}

type Kind uint8

const (
	KindCounter Kind = iota
	KindGauge
	KindHistogram
)

func (k Kind) String() string {
	switch k {
	case KindCounter:
		return "counter"
	case KindGauge:
		return "gauge"
	default:
		return "histogram"
	}
}

// Sample is one exported series.
type Sample struct {
	Name  string
	Kind  Kind
	Tags  map[string]string
	Value float64 // counter and gauge value, histogram mean
	Count uint64  // histogram only
	Min   float64 // histogram only
	Max   float64 // histogram only
}

type Collector struct {
	mu     sync.Mutex
	series map[string]*series
}

type series struct {
	name string
	kind Kind
	tags map[string]string
	val  *value
	hist *histogram
}

func NewCollector() *Collector {
	return &Collector{series: make(map[string]*series)}
}

func (c *Collector) Counter(name string, tags map[string]string) Counter {
	return c.get(name, KindCounter, tags).val
}

func (c *Collector) Gauge(name string, tags map[string]string) Gauge {
	return c.get(name, KindGauge, tags).val
}

func (c *Collector) Histogram(name string, tags map[string]string) Histogram {
	return c.get(name, KindHistogram, tags).hist
}

// get returns the series for name and tags, creating it on first use. A name
// keeps the kind it was first registered with.
func (c *Collector) get(name string, kind Kind, tags map[string]string) *series {
	key := seriesKey(name, tags)
	c.mu.Lock()
	defer c.mu.Unlock()
	if s, ok := c.series[key]; ok {
		return s
	}
	s := &series{name: name, kind: kind, tags: copyTags(tags)}
	if kind == KindHistogram {
		s.hist = &histogram{}
	} else {
		s.val = &value{}
	}
	c.series[key] = s
	return s
}

// Export returns every series sorted by name, then tags.
func (c *Collector) Export() []Sample {
	c.mu.Lock()
	keys := make([]string, 0, len(c.series))
	for k := range c.series {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	list := make([]*series, len(keys))
	for i, k := range keys {
		list[i] = c.series[k]
	}
	c.mu.Unlock()

	out := make([]Sample, 0, len(list))
	for _, s := range list {
		sample := Sample{Name: s.name, Kind: s.kind, Tags: copyTags(s.tags)}
		switch {
		case s.hist != nil:
			sample.Value = s.hist.Mean()
			sample.Count = s.hist.Count()
			sample.Min = s.hist.Min()
			sample.Max = s.hist.Max()
		case s.val != nil:
			sample.Value = s.val.Value()
		}
		out = append(out, sample)
	}
	return out
}

func seriesKey(name string, tags map[string]string) string {
	if len(tags) == 0 {
		return name
	}
	keys := make([]string, 0, len(tags))
	for k := range tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(name)
	for _, k := range keys {
		b.WriteByte('|')
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(tags[k])
	}
	return b.String()
}

func copyTags(tags map[string]string) map[string]string {
	if len(tags) == 0 {
		return nil
	}
	out := make(map[string]string, len(tags))
	for k, v := range tags {
		out[k] = v
	}
	return out
}

type value struct {
	mu sync.Mutex
	v  float64
}

func (v *value) Set(x float64) { v.mu.Lock(); v.v = x; v.mu.Unlock() }
func (v *value) Add(x float64) { v.mu.Lock(); v.v += x; v.mu.Unlock() }
func (v *value) Sub(x float64) { v.Add(-x) }
func (v *value) Inc()          { v.Add(1) }
func (v *value) Dec()          { v.Add(-1) }

func (v *value) Value() float64 {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.v
}

type histogram struct {
	mu    sync.Mutex
	count uint64
	sum   float64
	min   float64
	max   float64
}

func (h *histogram) Observe(x float64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		h.min, h.max = x, x
	} else {
		h.min = math.Min(h.min, x)
		h.max = math.Max(h.max, x)
	}
	h.count++
	h.sum += x
}

func (h *histogram) Count() uint64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.count
}

func (h *histogram) Sum() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.sum
}

func (h *histogram) Mean() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.count == 0 {
		return 0
	}
	return h.sum / float64(h.count)
}

func (h *histogram) Min() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.min
}

func (h *histogram) Max() float64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.max
}

func (h *histogram) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.count, h.sum, h.min, h.max = 0, 0, 0, 0
}
