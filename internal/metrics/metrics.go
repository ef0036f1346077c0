// Package metrics aggregates contract results and exports run counters
// to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/mohdibrahimai/HELMSMAN/internal/model"
)

// PassRate returns the fraction of true values, 0 for an empty input.
func PassRate(results []bool) float64 {
	if len(results) == 0 {
		return 0
	}
	passed := 0
	for _, r := range results {
		if r {
			passed++
		}
	}
	return float64(passed) / float64(len(results))
}

// Combine averages numeric metric maps key by key.
func Combine(metrics []map[string]float64) map[string]float64 {
	combined := make(map[string]float64)
	counts := make(map[string]int)
	for _, m := range metrics {
		for k, v := range m {
			combined[k] += v
			counts[k]++
		}
	}
	for k := range combined {
		combined[k] /= float64(counts[k])
	}
	return combined
}

// Recorder exports verdict and record counters. Collectors register on a
// process-global registry exactly once, so NewRecorder is safe to call
// from multiple components.
type Recorder struct {
	records  *prometheus.CounterVec
	verdicts *prometheus.CounterVec
	timeouts prometheus.Counter
}

var (
	recorderOnce sync.Once
	recorder     *Recorder
	registry     *prometheus.Registry
)

// NewRecorder returns the process-wide recorder.
func NewRecorder() *Recorder {
	recorderOnce.Do(func() {
		registry = prometheus.NewRegistry()
		recorder = &Recorder{
			records: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "helmsman_records_total",
				Help: "Run records emitted, by status",
			}, []string{"status"}),
			verdicts: prometheus.NewCounterVec(prometheus.CounterOpts{
				Name: "helmsman_verdicts_total",
				Help: "Contract verdicts, by contract id and outcome",
			}, []string{"contract_id", "outcome"}),
			timeouts: prometheus.NewCounter(prometheus.CounterOpts{
				Name: "helmsman_answer_timeouts_total",
				Help: "Records whose answering collaborator timed out",
			}),
		}
		registry.MustRegister(recorder.records, recorder.verdicts, recorder.timeouts)
	})
	return recorder
}

// ObserveRecord counts one emitted run record and its verdicts.
func (r *Recorder) ObserveRecord(rec *model.RunRecord) {
	status := rec.Status
	if status == "" {
		status = model.StatusOK
	}
	r.records.WithLabelValues(status).Inc()
	if status == model.StatusAnswerTimeout {
		r.timeouts.Inc()
	}
	for _, v := range rec.ContractResults {
		outcome := "fail"
		if v.Passed {
			outcome = "pass"
		}
		r.verdicts.WithLabelValues(v.ID, outcome).Inc()
	}
}

// Handler serves the harness metrics registry.
func Handler() http.Handler {
	NewRecorder()
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
