package consumer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	messagesProcessed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workoutlog",
			Subsystem: "consumer",
			Name:      "messages_processed_total",
			Help:      "Messages successfully handled and committed.",
		},
		[]string{"topic", "event_type"},
	)

	handlerErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workoutlog",
			Subsystem: "consumer",
			Name:      "handler_errors_total",
			Help:      "Messages that failed in the handler and will be retried.",
		},
		[]string{"topic", "event_type"},
	)

	decodeErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "workoutlog",
			Subsystem: "consumer",
			Name:      "decode_errors_total",
			Help:      "Messages skipped because they could not be decoded.",
		},
		[]string{"topic"},
	)
)

func init() {
	prometheus.MustRegister(messagesProcessed, handlerErrors, decodeErrors)
}

func recordProcessed(msg Message) {
	messagesProcessed.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordHandlerError(msg Message) {
	handlerErrors.WithLabelValues(msg.Topic, msg.EventType).Inc()
}

func recordDecodeError(topic string) {
	decodeErrors.WithLabelValues(topic).Inc()
}
