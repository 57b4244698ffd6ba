package controllers

import (
	"creditosSystem/services"
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
)

type ClienteController struct {
	clientes *services.ClienteService
}

func NewClienteController(clientes *services.ClienteService) *ClienteController {
	return &ClienteController{clientes: clientes}
}

func clienteIDFromRequest(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(mux.Vars(r)["id"], 10, 32)
	return uint(id), err
}

// CrearCliente crea un cliente con su préstamo inicial opcional. Un código
// de un cliente cancelado lo reactiva.
func (c *ClienteController) CrearCliente(w http.ResponseWriter, r *http.Request) {
	var req services.CrearClienteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	cliente, err := c.clientes.CrearCliente(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(cliente)
}

// ListarActivos devuelve los clientes activos con sus datos derivados
func (c *ClienteController) ListarActivos(w http.ResponseWriter, r *http.Request) {
	listado, err := c.clientes.ListarActivos()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listado)
}

// ListarCancelados devuelve los clientes cancelados con su historial
func (c *ClienteController) ListarCancelados(w http.ResponseWriter, r *http.Request) {
	listado, err := c.clientes.ListarCancelados()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(listado)
}

// GenerarCodigo sugiere un código de cliente disponible
func (c *ClienteController) GenerarCodigo(w http.ResponseWriter, r *http.Request) {
	codigo, err := c.clientes.GenerarCodigoCliente()
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"codigo": codigo})
}

// OtorgarPrestamo crea un préstamo nuevo para el cliente
func (c *ClienteController) OtorgarPrestamo(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	var req services.OtorgarPrestamoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	prestamo, err := c.clientes.OtorgarPrestamo(id, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(prestamo)
}

// ObtenerPrestamo devuelve el último préstamo del cliente
func (c *ClienteController) ObtenerPrestamo(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	prestamo, err := c.clientes.UltimoPrestamo(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	if prestamo == nil {
		http.Error(w, "El cliente no tiene préstamo activo", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prestamo)
}

// EditarPrestamo actualiza el último préstamo del cliente
func (c *ClienteController) EditarPrestamo(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	var req services.EditarPrestamoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	prestamo, err := c.clientes.EditarPrestamo(id, req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(prestamo)
}

// EliminarCliente cancela al cliente y reconcilia la caja
func (c *ClienteController) EliminarCliente(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	if err := c.clientes.EliminarCliente(id); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{"mensaje": "Cliente eliminado correctamente"})
}

// ReactivarCliente devuelve un cliente cancelado al listado activo
func (c *ClienteController) ReactivarCliente(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	var req struct {
		Deuda float64 `json:"deuda"`
	}
	if r.Body != nil {
		// La deuda pendiente es opcional
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	cliente, err := c.clientes.ReactivarCliente(id, req.Deuda)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"id":     cliente.ID,
		"nombre": cliente.Nombre,
		"saldo":  cliente.Saldo,
		"deuda":  req.Deuda,
	})
}

// RepararCliente devuelve el saldo pendiente a la caja y cancela al cliente
func (c *ClienteController) RepararCliente(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	devuelto, err := c.clientes.RepararCliente(id)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]float64{"devuelto": devuelto})
}

// ActualizarOrden cambia la posición del cliente en la ruta de cobro
func (c *ClienteController) ActualizarOrden(w http.ResponseWriter, r *http.Request) {
	id, err := clienteIDFromRequest(r)
	if err != nil {
		http.Error(w, "ID de cliente inválido", http.StatusBadRequest)
		return
	}

	var req struct {
		Orden int `json:"orden"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	if err := c.clientes.ActualizarOrden(id, req.Orden); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]int{"orden": req.Orden})
}
