package metrics

import "github.com/prometheus/client_golang/prometheus"

// MessagingMetrics exposes counters for webhook and outbound send flows.
type MessagingMetrics struct {
	inboundTotal  *prometheus.CounterVec
	outboundTotal *prometheus.CounterVec
}

func NewMessagingMetrics(reg prometheus.Registerer) *MessagingMetrics {
	m := &MessagingMetrics{
		inboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "messaging",
			Name:      "inbound_webhook_total",
			Help:      "Total inbound WhatsApp webhooks",
		}, []string{"status"}),
		outboundTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "messaging",
			Name:      "outbound_total",
			Help:      "Total outbound WhatsApp sends",
		}, []string{"status"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.inboundTotal, m.outboundTotal)
	return m
}

func (m *MessagingMetrics) ObserveInbound(status string) {
	if m == nil {
		return
	}
	m.inboundTotal.WithLabelValues(status).Inc()
}

func (m *MessagingMetrics) ObserveOutbound(status string) {
	if m == nil {
		return
	}
	m.outboundTotal.WithLabelValues(status).Inc()
}

// ConversationMetrics exposes counters/histograms for the reply pipeline.
type ConversationMetrics struct {
	repliesTotal      *prometheus.CounterVec
	appointmentsTotal *prometheus.CounterVec
	replyLatency      prometheus.Histogram
}

func NewConversationMetrics(reg prometheus.Registerer) *ConversationMetrics {
	m := &ConversationMetrics{
		repliesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "replies_total",
			Help:      "Total generated replies",
		}, []string{"with_appointment"}),
		appointmentsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "appointments_total",
			Help:      "Total appointment attempts from structured action calls",
		}, []string{"success"}),
		replyLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "concierge",
			Subsystem: "conversation",
			Name:      "reply_latency_seconds",
			Help:      "Latency from inbound message to generated reply",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	reg.MustRegister(m.repliesTotal, m.appointmentsTotal, m.replyLatency)
	return m
}

func (m *ConversationMetrics) ObserveReply(withAppointment bool, seconds float64) {
	if m == nil {
		return
	}
	label := "false"
	if withAppointment {
		label = "true"
	}
	m.repliesTotal.WithLabelValues(label).Inc()
	m.replyLatency.Observe(seconds)
}

func (m *ConversationMetrics) ObserveAppointment(success bool) {
	if m == nil {
		return
	}
	label := "false"
	if success {
		label = "true"
	}
	m.appointmentsTotal.WithLabelValues(label).Inc()
}
