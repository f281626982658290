package observability

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registerOnce sync.Once

	requests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tftp",
			Subsystem: "server",
			Name:      "requests_total",
			Help:      "Datagrams received on the listening port, by opcode.",
		},
		[]string{"opcode"},
	)
	validations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tftp",
			Subsystem: "transfer",
			Name:      "validations_total",
			Help:      "Replies checked against the expected opcode and block.",
		},
		[]string{"expected", "result"},
	)
	errorPackets = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tftp",
			Subsystem: "responder",
			Name:      "error_packets_total",
			Help:      "Error packets handed to the transport.",
		},
		[]string{"code", "sent"},
	)
	transfers = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tftp",
			Subsystem: "server",
			Name:      "transfers_total",
			Help:      "Finished transfers by direction and outcome.",
		},
		[]string{"direction", "outcome"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(requests, validations, errorPackets, transfers)
	})
}

func Handler() http.Handler {
	RegisterMetrics()

	return promhttp.Handler()
}

func RecordRequest(opcode string) {
	RegisterMetrics()
	requests.WithLabelValues(opcode).Inc()
}

func RecordValidation(expected, result string) {
	RegisterMetrics()
	validations.WithLabelValues(expected, result).Inc()
}

func RecordErrorPacket(code uint16, sent bool) {
	RegisterMetrics()
	errorPackets.WithLabelValues(strconv.Itoa(int(code)), strconv.FormatBool(sent)).Inc()
}

func RecordTransfer(direction, outcome string) {
	RegisterMetrics()
	transfers.WithLabelValues(direction, outcome).Inc()
}
