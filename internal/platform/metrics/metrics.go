// Package metrics expone contadores Prometheus del store de pesajes.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ObservationsUpserted cuenta escrituras aceptadas por el store.
	ObservationsUpserted = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "herdweight",
		Name:      "observations_upserted_total",
		Help:      "Weight observations written (inserted or overwritten).",
	})

	// MalformedCells cuenta celdas salteadas al leer la grilla.
	MalformedCells = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "herdweight",
		Name:      "malformed_cells_total",
		Help:      "Stored cells skipped because the timestamp header or weight could not be parsed.",
	})

	// IngestMessages cuenta mensajes AMQP por resultado (ok, invalid, failed).
	IngestMessages = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "herdweight",
		Name:      "ingest_messages_total",
		Help:      "Weighing event messages consumed, by result.",
	}, []string{"result"})
)
