package utils

import (
	"sync"
	"time"
)

// Metrics contiene las métricas de la aplicación
type Metrics struct {
	mu sync.RWMutex

	// Métricas de peticiones
	TotalRequests   int64
	FailedRequests  int64
	RequestLatency  time.Duration
	AverageLatency  time.Duration
	LastRequestTime time.Time

	// Métricas del libro
	TotalAbonos          int64
	TotalMovimientos     int64
	TotalLiquidaciones   int64
	ClientesCancelados   int64
	UltimaOperacionLibro time.Time

	// Métricas de errores
	ErrorCount    int64
	LastErrorTime time.Time
	ErrorTypes    map[string]int64
}

var (
	metrics     *Metrics
	metricsOnce sync.Once
)

// GetMetrics devuelve la instancia de métricas
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		metrics = &Metrics{
			ErrorTypes: make(map[string]int64),
		}
	})
	return metrics
}

// RecordRequest registra las métricas de una petición
func (m *Metrics) RecordRequest(duration time.Duration, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests++
	m.RequestLatency += duration
	m.AverageLatency = m.RequestLatency / time.Duration(m.TotalRequests)
	m.LastRequestTime = time.Now()

	if err != nil {
		m.FailedRequests++
		m.recordError(err)
	}
}

// RecordLibroOperation registra una operación sobre el libro
func (m *Metrics) RecordLibroOperation(operacion string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.UltimaOperacionLibro = time.Now()

	switch operacion {
	case "abono":
		m.TotalAbonos++
	case "movimiento":
		m.TotalMovimientos++
	case "liquidacion":
		m.TotalLiquidaciones++
	case "cancelacion":
		m.ClientesCancelados++
	}

	if err != nil {
		m.recordError(err)
	}
}

// RecordError registra las métricas de un error
func (m *Metrics) RecordError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.recordError(err)
}

func (m *Metrics) recordError(err error) {
	m.ErrorCount++
	m.LastErrorTime = time.Now()

	errorType := "unknown"
	if err != nil {
		errorType = err.Error()
	}

	m.ErrorTypes[errorType]++
}

// GetMetricsSnapshot devuelve una instantánea de las métricas actuales
func (m *Metrics) GetMetricsSnapshot() map[string]interface{} {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return map[string]interface{}{
		"total_requests":      m.TotalRequests,
		"failed_requests":     m.FailedRequests,
		"average_latency":     m.AverageLatency.String(),
		"total_abonos":        m.TotalAbonos,
		"total_movimientos":   m.TotalMovimientos,
		"total_liquidaciones": m.TotalLiquidaciones,
		"clientes_cancelados": m.ClientesCancelados,
		"error_count":         m.ErrorCount,
		"last_error_time":     m.LastErrorTime,
		"error_types":         m.ErrorTypes,
	}
}

// ResetMetrics reinicia todas las métricas
func (m *Metrics) ResetMetrics() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.TotalRequests = 0
	m.FailedRequests = 0
	m.RequestLatency = 0
	m.AverageLatency = 0
	m.TotalAbonos = 0
	m.TotalMovimientos = 0
	m.TotalLiquidaciones = 0
	m.ClientesCancelados = 0
	m.ErrorCount = 0
	m.ErrorTypes = make(map[string]int64)
}
