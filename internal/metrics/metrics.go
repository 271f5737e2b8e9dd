package metrics

import "github.com/prometheus/client_golang/prometheus"

type Counter interface {
	Inc(labels ...string)
}

// Counters groups every counter the client records.
type Counters struct {
	// StreamRecords counts accepted log records, labelled by level.
	StreamRecords Counter
	// StreamDropped counts malformed stream payloads.
	StreamDropped Counter
	// StreamReconnects counts reconnect attempts after a failed or lost connection.
	StreamReconnects Counter
	// TokenRefreshes counts refresh attempts, labelled success or failure.
	TokenRefreshes Counter
}

type PrometheusCounter struct {
	counter *prometheus.CounterVec
}

func newCounter(name, help string, labels []string) *PrometheusCounter {
	return &PrometheusCounter{
		counter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "logminer",
			Name:      name,
			Help:      help,
		}, labels),
	}
}

func (p *PrometheusCounter) Inc(labels ...string) {
	p.counter.WithLabelValues(labels...).Inc()
}

// Vec exposes the underlying collector, mostly for assertions in tests.
func (p *PrometheusCounter) Vec() *prometheus.CounterVec {
	return p.counter
}

func newCounters() (*Counters, []prometheus.Collector) {
	records := newCounter("stream_records_total", "Log records received over the live stream", []string{"level"})
	dropped := newCounter("stream_dropped_total", "Stream payloads dropped as malformed", nil)
	reconnects := newCounter("stream_reconnects_total", "Stream reconnect attempts", nil)
	refreshes := newCounter("token_refresh_total", "Access token refresh attempts", []string{"result"})

	c := &Counters{
		StreamRecords:    records,
		StreamDropped:    dropped,
		StreamReconnects: reconnects,
		TokenRefreshes:   refreshes,
	}
	return c, []prometheus.Collector{records.counter, dropped.counter, reconnects.counter, refreshes.counter}
}

// New creates the counters and registers them with the default registry.
// Call it once per process.
func New() *Counters {
	return NewWithRegistry(prometheus.DefaultRegisterer)
}

func NewWithRegistry(reg prometheus.Registerer) *Counters {
	c, collectors := newCounters()
	reg.MustRegister(collectors...)
	return c
}

func NewTestCounters() *Counters {
	return NewWithRegistry(prometheus.NewRegistry())
}

type nopCounter struct{}

func (nopCounter) Inc(...string) {}

// Nop returns counters that record nothing.
func Nop() *Counters {
	return &Counters{
		StreamRecords:    nopCounter{},
		StreamDropped:    nopCounter{},
		StreamReconnects: nopCounter{},
		TokenRefreshes:   nopCounter{},
	}
}
