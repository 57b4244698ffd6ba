package controllers

import (
	"creditosSystem/services"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type AbonoController struct {
	abonos *services.AbonoService
}

func NewAbonoController(abonos *services.AbonoService) *AbonoController {
	return &AbonoController{abonos: abonos}
}

// RegistrarPorCodigo registra un abono buscando al cliente por código
func (c *AbonoController) RegistrarPorCodigo(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Codigo string  `json:"codigo"`
		Monto  float64 `json:"monto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	resultado, err := c.abonos.RegistrarAbonoPorCodigo(req.Codigo, req.Monto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resultado)
}

// RegistrarDirecto registra un abono sobre el último préstamo del cliente
func (c *AbonoController) RegistrarDirecto(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	var req struct {
		Monto float64 `json:"monto"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	resultado, err := c.abonos.RegistrarAbono(uint(id), req.Monto)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(resultado)
}

// Eliminar revierte un abono registrado por error
func (c *AbonoController) Eliminar(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "ID de abono inválido", http.StatusBadRequest)
		return
	}

	resultado, err := c.abonos.EliminarAbono(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(resultado)
}

// Historial devuelve los abonos del último préstamo del cliente
func (c *AbonoController) Historial(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	historial, err := c.abonos.HistorialAbonos(uint(id))
	if err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(historial)
}
