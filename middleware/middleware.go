package middleware

import (
	"creditosSystem/utils"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"
)

// RateLimitMiddleware limita las peticiones por IP usando una ventana
// deslizante
func RateLimitMiddleware(limiter *utils.RateLimiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}

			if !limiter.Allow(ip) {
				utils.GetMetrics().RecordError(errors.New("rate_limit"))
				http.Error(w, "Demasiadas peticiones, intente más tarde", http.StatusTooManyRequests)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// RecoveryMiddleware captura panics de los handlers y responde 500 en vez
// de botar el proceso
func RecoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				utils.LogError("Panic en %s %s: %v", r.Method, r.URL.Path, err)
				utils.GetMetrics().RecordError(fmt.Errorf("panic: %v", err))
				http.Error(w, "Error interno del servidor", http.StatusInternalServerError)
			}
		}()

		next.ServeHTTP(w, r)
	})
}

// MetricsMiddleware registra cada petición en las métricas del proceso
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		var err error
		if lrw.statusCode >= http.StatusInternalServerError {
			err = fmt.Errorf("respuesta %d en %s", lrw.statusCode, r.URL.Path)
		}
		utils.GetMetrics().RecordRequest(time.Since(start), err)
	})
}

// CORSMiddleware agrega los encabezados CORS y resuelve el preflight
func CORSMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, r)
	})
}
