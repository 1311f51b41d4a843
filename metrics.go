package gochan

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the Prometheus collectors shared by every channel it is
// attached to. Series are labelled by channel name, so give channels that
// share a Metrics distinct names with WithName.
type Metrics struct {
	sent             *prometheus.CounterVec
	received         *prometheus.CounterVec
	discarded        *prometheus.CounterVec
	queueLength      *prometheus.GaugeVec
	blockedSenders   *prometheus.GaugeVec
	blockedReceivers *prometheus.GaugeVec
	senders          *prometheus.GaugeVec
	receivers        *prometheus.GaugeVec
}

// NewMetrics creates the channel collectors under namespace and registers
// them with reg. A nil reg leaves them unregistered, which is handy in
// tests. Registration errors (e.g. duplicate registration) are returned.
func NewMetrics(reg prometheus.Registerer, namespace string) (*Metrics, error) {
	labels := []string{"channel"}
	counter := func(name, help string) *prometheus.CounterVec {
		return prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      name,
			Help:      help,
		}, labels)
	}
	gauge := func(name, help string) *prometheus.GaugeVec {
		return prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "channel",
			Name:      name,
			Help:      help,
		}, labels)
	}
	m := &Metrics{
		sent:             counter("sent_total", "Values successfully enqueued"),
		received:         counter("received_total", "Values dequeued by a receiver"),
		discarded:        counter("discarded_total", "Buffered values dropped when the last receiver closed"),
		queueLength:      gauge("queue_length", "Values currently buffered"),
		blockedSenders:   gauge("blocked_senders", "Senders parked waiting for space"),
		blockedReceivers: gauge("blocked_receivers", "Receivers parked waiting for a value"),
		senders:          gauge("senders", "Live sender handles"),
		receivers:        gauge("receivers", "Live receiver handles"),
	}
	if reg != nil {
		for _, c := range m.collectors() {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return m, nil
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.sent, m.received, m.discarded, m.queueLength,
		m.blockedSenders, m.blockedReceivers, m.senders, m.receivers,
	}
}

// channelMetrics is the per-channel view with label values bound once. A
// nil *channelMetrics is valid and records nothing.
type channelMetrics struct {
	sent             prometheus.Counter
	received         prometheus.Counter
	discarded        prometheus.Counter
	queueLength      prometheus.Gauge
	blockedSenders   prometheus.Gauge
	blockedReceivers prometheus.Gauge
	senders          prometheus.Gauge
	receivers        prometheus.Gauge
}

func (m *Metrics) forChannel(name string) *channelMetrics {
	if m == nil {
		return nil
	}
	return &channelMetrics{
		sent:             m.sent.WithLabelValues(name),
		received:         m.received.WithLabelValues(name),
		discarded:        m.discarded.WithLabelValues(name),
		queueLength:      m.queueLength.WithLabelValues(name),
		blockedSenders:   m.blockedSenders.WithLabelValues(name),
		blockedReceivers: m.blockedReceivers.WithLabelValues(name),
		senders:          m.senders.WithLabelValues(name),
		receivers:        m.receivers.WithLabelValues(name),
	}
}

// observe copies the core's counters into the gauges. Called with the core
// lock held.
func (cm *channelMetrics) observe(length, blockedSenders, blockedReceivers, senders, receivers int) {
	if cm == nil {
		return
	}
	cm.queueLength.Set(float64(length))
	cm.blockedSenders.Set(float64(blockedSenders))
	cm.blockedReceivers.Set(float64(blockedReceivers))
	cm.senders.Set(float64(senders))
	cm.receivers.Set(float64(receivers))
}

func (cm *channelMetrics) addSent() {
	if cm != nil {
		cm.sent.Inc()
	}
}

func (cm *channelMetrics) addReceived() {
	if cm != nil {
		cm.received.Inc()
	}
}

func (cm *channelMetrics) addDiscarded(n int) {
	if cm != nil && n > 0 {
		cm.discarded.Add(float64(n))
	}
}
