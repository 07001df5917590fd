package metrics

import (
	"github.com/zeusync/ecs/internal/core/events/bus"
	"github.com/zeusync/ecs/internal/core/observability/log"
)

// BusObserver records signal traffic into a Collector.
type BusObserver struct {
	c *Collector
}

var _ bus.EventBusObserver = (*BusObserver)(nil)

func NewBusObserver(c *Collector) *BusObserver {
	return &BusObserver{c: c}
}

func (o *BusObserver) OnPublish(eventType string, _ bus.Event) {
	o.c.Counter("bus.published", map[string]string{"type": eventType}).Inc()
}

func (o *BusObserver) OnDelivered(eventType string, handlers int, err error, durationMicros int64) {
	tags := map[string]string{"type": eventType}
	o.c.Counter("bus.handlers", tags).Add(float64(handlers))
	o.c.Histogram("bus.delivery_us", tags).Observe(float64(durationMicros))
	if err != nil {
		o.c.Counter("bus.errors", tags).Inc()
	}
}

// LogSummary writes every exported series at info level.
func LogSummary(logger log.Log, c *Collector) {
	for _, s := range c.Export() {
		fields := []log.Field{
			log.String("metric", s.Name),
			log.Stringer("kind", s.Kind),
			log.Float64("value", s.Value),
		}
		for k, v := range s.Tags {
			fields = append(fields, log.String(k, v))
		}
		if s.Kind == KindHistogram {
			fields = append(fields,
				log.Uint64("count", s.Count),
				log.Float64("min", s.Min),
				log.Float64("max", s.Max),
			)
		}
		logger.Info("metric", fields...)
	}
}
