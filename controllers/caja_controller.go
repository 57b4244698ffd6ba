package controllers

import (
	"creditosSystem/models"
	"creditosSystem/services"
	"creditosSystem/utils"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
)

type CajaController struct {
	caja  *services.CajaService
	liq   *services.LiquidacionService
	email *services.EmailService
}

func NewCajaController(caja *services.CajaService, liq *services.LiquidacionService, email *services.EmailService) *CajaController {
	return &CajaController{caja: caja, liq: liq, email: email}
}

// RegistrarMovimiento registra una entrada manual, salida o gasto
func (c *CajaController) RegistrarMovimiento(w http.ResponseWriter, r *http.Request) {
	tipo := models.TipoMovimiento(mux.Vars(r)["tipo"])

	var req struct {
		Monto       float64 `json:"monto"`
		Descripcion string  `json:"descripcion"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	movimiento, err := c.caja.RegistrarMovimiento(tipo, req.Monto, req.Descripcion, time.Time{})
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(movimiento)
}

// EliminarMovimiento borra un movimiento manual registrado por error
func (c *CajaController) EliminarMovimiento(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "ID de movimiento inválido", http.StatusBadRequest)
		return
	}

	if err := c.caja.EliminarMovimiento(uint(id)); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"mensaje": "Movimiento eliminado correctamente"})
}

// LiquidacionDelDia recalcula y devuelve la liquidación de hoy junto con el
// resumen acumulado
func (c *CajaController) LiquidacionDelDia(w http.ResponseWriter, r *http.Request) {
	liq, err := c.liq.ActualizarLiquidacion(utils.FechaLocal())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resumen, err := c.caja.ObtenerResumenTotal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"liquidacion": liq,
		"resumen":     resumen,
	})
}

// EnviarLiquidacion recalcula la liquidación de hoy y envía el cierre de
// caja por correo al dueño
func (c *CajaController) EnviarLiquidacion(w http.ResponseWriter, r *http.Request) {
	liq, err := c.liq.ActualizarLiquidacion(utils.FechaLocal())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	if c.email != nil {
		if err := c.email.SendResumenLiquidacion(liq); err != nil {
			utils.LogError("No se pudo enviar el resumen de la liquidación: %v", err)
		}
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"mensaje":     "Liquidación enviada",
		"liquidacion": liq,
	})
}

// Liquidaciones devuelve el histórico. Con desde/hasta entrega el rango
// completo, rellenando en cero los días sin registro; sin rango, las
// últimas 10.
func (c *CajaController) Liquidaciones(w http.ResponseWriter, r *http.Request) {
	desde := r.URL.Query().Get("desde")
	hasta := r.URL.Query().Get("hasta")

	w.Header().Set("Content-Type", "application/json")

	if desde == "" || hasta == "" {
		liquidaciones, err := c.liq.UltimasLiquidaciones(10)
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]interface{}{"liquidaciones": liquidaciones})
		return
	}

	fechaDesde, err := time.ParseInLocation("2006-01-02", desde, utils.FechaLocal().Location())
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	fechaHasta, err := time.ParseInLocation("2006-01-02", hasta, utils.FechaLocal().Location())
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	liquidaciones, totales, err := c.liq.ObtenerLiquidaciones(fechaDesde, fechaHasta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	json.NewEncoder(w).Encode(map[string]interface{}{
		"liquidaciones": liquidaciones,
		"totales":       totales,
	})
}

// Dashboard devuelve los totales del día y el resumen acumulado
func (c *CajaController) Dashboard(w http.ResponseWriter, r *http.Request) {
	resumenDia, err := c.liq.ResumenDia(utils.FechaLocal())
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	resumenTotal, err := c.caja.ObtenerResumenTotal()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"dia":   resumenDia,
		"total": resumenTotal,
	})
}

// VerificarCaja informa cuántos movimientos duplican abonos
func (c *CajaController) VerificarCaja(w http.ResponseWriter, r *http.Request) {
	errores, err := c.caja.ContarAbonosMalClasificados()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"errores": errores})
}

// RepararCaja elimina los movimientos mal clasificados y recalcula
func (c *CajaController) RepararCaja(w http.ResponseWriter, r *http.Request) {
	eliminados, err := c.caja.RepararCaja()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"eliminados": eliminados})
}

// ReconstruirPrestamos regenera los movimientos de préstamo desde la tabla
// de préstamos
func (c *CajaController) ReconstruirPrestamos(w http.ResponseWriter, r *http.Request) {
	creados, err := c.caja.ReconstruirMovimientosPrestamos()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int64{"creados": creados})
}

// Estado expone las métricas del proceso
func (c *CajaController) Estado(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(utils.GetMetrics().GetMetricsSnapshot())
}
