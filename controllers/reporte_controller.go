package controllers

import (
	"creditosSystem/services"
	"creditosSystem/utils"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

type ReporteController struct {
	reportes *services.ReporteService
}

func NewReporteController(reportes *services.ReporteService) *ReporteController {
	return &ReporteController{reportes: reportes}
}

func parseFecha(valor string) (time.Time, error) {
	return time.ParseInLocation("2006-01-02", valor, utils.FechaLocal().Location())
}

// MovimientosPorDia devuelve el detalle de un tipo de movimiento en una
// fecha
func (c *ReporteController) MovimientosPorDia(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	fecha, err := parseFecha(vars["fecha"])
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	reporte, err := c.reportes.MovimientosPorDia(vars["tipo"], fecha)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(reporte)
}

// PrestamosPorDia devuelve los préstamos otorgados en una fecha
func (c *ReporteController) PrestamosPorDia(w http.ResponseWriter, r *http.Request) {
	fecha, err := parseFecha(mux.Vars(r)["fecha"])
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	prestamos, total, err := c.reportes.PrestamosPorDia(fecha)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"prestamos": prestamos,
		"total":     total,
	})
}

// LiquidacionesXML exporta las liquidaciones de un rango como XML
func (c *ReporteController) LiquidacionesXML(w http.ResponseWriter, r *http.Request) {
	desde, err := parseFecha(r.URL.Query().Get("desde"))
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}
	hasta, err := parseFecha(r.URL.Query().Get("hasta"))
	if err != nil {
		http.Error(w, "Formato de fecha inválido (use YYYY-MM-DD)", http.StatusBadRequest)
		return
	}

	documento, err := c.reportes.LiquidacionesXML(desde, hasta)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Write(documento)
}
