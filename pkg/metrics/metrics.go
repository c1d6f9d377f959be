package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Resultados posibles de una operación de negocio.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultError    = "error"
)

// Recorder registra métricas de las operaciones de stock y tareas y de la capa HTTP.
// Un *Recorder nil es válido y no registra nada.
type Recorder struct {
	operations     *prometheus.CounterVec
	violations     *prometheus.CounterVec
	unitsMoved     *prometheus.CounterVec
	requestLatency *prometheus.HistogramVec
}

// New registra las métricas en el registerer indicado.
func New(reg prometheus.Registerer) *Recorder {
	if reg == nil {
		return &Recorder{}
	}
	operations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geststore",
		Name:      "operations_total",
		Help:      "Operaciones de negocio ejecutadas, por operación y resultado.",
	}, []string{"operation", "result"})
	violations := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geststore",
		Name:      "business_rule_violations_total",
		Help:      "Operaciones rechazadas por una regla de negocio, por código.",
	}, []string{"code"})
	unitsMoved := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "geststore",
		Name:      "stock_units_moved_total",
		Help:      "Unidades movidas en el libro de stock, por tipo de movimiento.",
	}, []string{"type"})
	requestLatency := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "geststore",
		Name:      "http_request_duration_seconds",
		Help:      "Duración de las peticiones HTTP.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})
	reg.MustRegister(operations, violations, unitsMoved, requestLatency)
	return &Recorder{
		operations:     operations,
		violations:     violations,
		unitsMoved:     unitsMoved,
		requestLatency: requestLatency,
	}
}

// Operation cuenta una ejecución de la operación con su resultado.
func (r *Recorder) Operation(operation, result string) {
	if r == nil || r.operations == nil {
		return
	}
	r.operations.WithLabelValues(normalizeLabel(operation), normalizeLabel(result)).Inc()
}

// Violation cuenta un rechazo por regla de negocio.
func (r *Recorder) Violation(code string) {
	if r == nil || r.violations == nil {
		return
	}
	r.violations.WithLabelValues(normalizeLabel(code)).Inc()
}

// UnitsMoved acumula unidades movidas por tipo de movimiento.
func (r *Recorder) UnitsMoved(movementType string, qty int) {
	if r == nil || r.unitsMoved == nil || qty <= 0 {
		return
	}
	r.unitsMoved.WithLabelValues(normalizeLabel(movementType)).Add(float64(qty))
}

// ObserveRequest registra la latencia de una petición HTTP.
func (r *Recorder) ObserveRequest(method, route, status string, d time.Duration) {
	if r == nil || r.requestLatency == nil {
		return
	}
	r.requestLatency.WithLabelValues(method, normalizeLabel(route), status).Observe(d.Seconds())
}

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
