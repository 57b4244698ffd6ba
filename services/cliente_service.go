package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"errors"
	"fmt"
	"math/rand"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// CrearClienteRequest representa los datos para crear (o reactivar por
// código) un cliente, con su préstamo inicial opcional
type CrearClienteRequest struct {
	Codigo     string  `json:"codigo" validate:"required"`
	Nombre     string  `json:"nombre"`
	Direccion  string  `json:"direccion"`
	Telefono   string  `json:"telefono"`
	Orden      int     `json:"orden" validate:"gte=0"`
	Monto      float64 `json:"monto" validate:"gte=0"`
	Interes    float64 `json:"interes" validate:"gte=0"`
	Plazo      int     `json:"plazo" validate:"gte=0"`
	Frecuencia string  `json:"frecuencia"`
}

// OtorgarPrestamoRequest representa los datos de un nuevo préstamo para un
// cliente existente
type OtorgarPrestamoRequest struct {
	Monto      float64 `json:"monto" validate:"required,gt=0"`
	Interes    float64 `json:"interes" validate:"gte=0"`
	Plazo      int     `json:"plazo" validate:"gte=0"`
	Frecuencia string  `json:"frecuencia"`
}

// EditarPrestamoRequest permite actualizar campos puntuales del último
// préstamo de un cliente. Los campos en nil no se tocan.
type EditarPrestamoRequest struct {
	Monto      *float64 `json:"monto" validate:"omitempty,gt=0"`
	Interes    *float64 `json:"interes" validate:"omitempty,gte=0"`
	Plazo      *int     `json:"plazo" validate:"omitempty,gte=0"`
	Frecuencia *string  `json:"frecuencia"`
}

// ClienteConEstado es un cliente activo enriquecido con los datos derivados
// que muestra el listado principal
type ClienteConEstado struct {
	models.Cliente
	EstadoPlazo      models.EstadoPlazo `json:"estado_plazo"`
	CuotaTotal       float64            `json:"cuota_total"`
	CuotasAtrasadas  int                `json:"cuotas_atrasadas"`
	UltimoAbonoMonto float64            `json:"ultimo_abono_monto"`
}

// ClienteCanceladoDTO es la fila del listado de clientes cancelados
type ClienteCanceladoDTO struct {
	ID               uint    `json:"id"`
	Orden            int     `json:"orden"`
	Codigo           string  `json:"codigo"`
	Nombre           string  `json:"nombre"`
	Dias             int     `json:"dias"`
	FechaSalida      string  `json:"fecha_salida"`
	SalidaTotal      float64 `json:"salida_total"`
	UltimoAbonoMonto float64 `json:"ultimo_abono_monto"`
	Saldo            float64 `json:"saldo"`
}

// ClienteService provee métodos para el ciclo de vida de los clientes:
// creación, préstamos, cancelación, reactivación y reparación
type ClienteService struct {
	db        *gorm.DB
	validator *validator.Validate
	liq       *LiquidacionService
	email     *EmailService
}

// NewClienteService crea una nueva instancia de ClienteService
func NewClienteService(db *gorm.DB, liq *LiquidacionService, email *EmailService) *ClienteService {
	return &ClienteService{
		db:        db,
		validator: validator.New(),
		liq:       liq,
		email:     email,
	}
}

func (s *ClienteService) validateStruct(req interface{}) error {
	if err := s.validator.Struct(req); err != nil {
		for _, err := range err.(validator.ValidationErrors) {
			switch err.Tag() {
			case "required":
				return fmt.Errorf("el campo %s es obligatorio", err.Field())
			case "gt":
				return fmt.Errorf("el campo %s debe ser mayor a cero", err.Field())
			case "gte":
				return fmt.Errorf("el campo %s no puede ser negativo", err.Field())
			default:
				return fmt.Errorf("el campo %s no es válido", err.Field())
			}
		}
	}
	return nil
}

// GenerarCodigoCliente genera un código numérico de 6 dígitos que no esté
// en uso
func (s *ClienteService) GenerarCodigoCliente() (string, error) {
	for intento := 0; intento < 20; intento++ {
		codigo := fmt.Sprintf("%06d", rand.Intn(1000000))

		var total int64
		if err := s.db.Model(&models.Cliente{}).
			Where("codigo = ?", codigo).
			Count(&total).Error; err != nil {
			return "", errors.New("error al verificar el código")
		}
		if total == 0 {
			return codigo, nil
		}
	}
	return "", errors.New("no fue posible generar un código disponible")
}

// UltimoPrestamo devuelve el préstamo más reciente de un cliente, o nil si
// no tiene ninguno
func (s *ClienteService) UltimoPrestamo(clienteID uint) (*models.Prestamo, error) {
	var prestamo models.Prestamo
	err := s.db.Where("cliente_id = ?", clienteID).
		Order("fecha DESC, id DESC").
		First(&prestamo).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, errors.New("error al buscar el préstamo del cliente")
	}
	return &prestamo, nil
}

// saldoTotalCliente suma los saldos de todos los préstamos del cliente
func (s *ClienteService) saldoTotalCliente(tx *gorm.DB, clienteID uint) (float64, error) {
	var total float64
	err := tx.Model(&models.Prestamo{}).
		Where("cliente_id = ?", clienteID).
		Select("COALESCE(SUM(saldo), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.New("error al sumar los saldos del cliente")
	}
	return total, nil
}

// CrearCliente crea un cliente nuevo con su préstamo inicial opcional. Si el
// código pertenece a un cliente cancelado, lo reactiva con los datos nuevos.
// Un código en uso por un cliente activo es un error.
func (s *ClienteService) CrearCliente(req CrearClienteRequest) (*models.Cliente, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	req.Codigo = strings.TrimSpace(req.Codigo)
	if req.Codigo == "" {
		return nil, errors.New("debe ingresar un código de cliente")
	}

	frecuencia := models.Frecuencia(strings.ToLower(strings.TrimSpace(req.Frecuencia)))
	if !frecuencia.EsValida() {
		frecuencia = models.FrecuenciaDiaria
	}

	var existente models.Cliente
	err := s.db.Where("codigo = ?", req.Codigo).First(&existente).Error
	switch {
	case err == nil && existente.Cancelado:
		return s.reactivarPorCodigo(&existente, req, frecuencia)
	case err == nil:
		return nil, errors.New("ese código ya pertenece a un cliente activo")
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, errors.New("error al buscar el cliente")
	}

	// Sin nombre usamos el código como nombre visible
	nombre := strings.TrimSpace(req.Nombre)
	if nombre == "" {
		nombre = req.Codigo
	}

	cliente := models.Cliente{
		Codigo:        req.Codigo,
		Nombre:        nombre,
		Direccion:     strings.TrimSpace(req.Direccion),
		Telefono:      strings.TrimSpace(req.Telefono),
		Orden:         req.Orden,
		FechaCreacion: utils.FechaLocal(),
		Cancelado:     false,
	}

	tx := s.db.Begin()

	if err := tx.Create(&cliente).Error; err != nil {
		tx.Rollback()
		utils.LogError("Error al crear cliente: %v", err)
		return nil, errors.New("error al crear el cliente")
	}

	if req.Monto > 0 {
		prestamo := models.Prestamo{
			ClienteID:  cliente.ID,
			Monto:      req.Monto,
			Interes:    req.Interes,
			Plazo:      req.Plazo,
			Frecuencia: frecuencia,
			Fecha:      utils.FechaLocal(),
		}
		prestamo.Saldo = prestamo.SaldoInicial()

		if err := tx.Create(&prestamo).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al crear el préstamo inicial")
		}

		movimiento := models.MovimientoCaja{
			Tipo:        models.MovimientoPrestamo,
			Monto:       req.Monto,
			Descripcion: fmt.Sprintf("Préstamo inicial a %s", cliente.Nombre),
			Fecha:       utils.HoraActual(),
		}
		if err := tx.Create(&movimiento).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al registrar el movimiento del préstamo")
		}

		cliente.Saldo = prestamo.Saldo
		if err := tx.Model(&cliente).Update("saldo", cliente.Saldo).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al actualizar el saldo del cliente")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar la creación del cliente")
	}

	if req.Monto > 0 {
		if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
			return nil, err
		}
	}

	utils.LogOperation("CrearCliente", fmt.Sprintf("codigo=%s monto=%.2f", cliente.Codigo, req.Monto))
	return &cliente, nil
}

// reactivarPorCodigo reactiva un cliente cancelado cuyo código se reutilizó
// en el formulario de creación
func (s *ClienteService) reactivarPorCodigo(cliente *models.Cliente, req CrearClienteRequest, frecuencia models.Frecuencia) (*models.Cliente, error) {
	cliente.Cancelado = false
	cliente.FechaCreacion = utils.FechaLocal()
	if nombre := strings.TrimSpace(req.Nombre); nombre != "" {
		cliente.Nombre = nombre
	}
	if direccion := strings.TrimSpace(req.Direccion); direccion != "" {
		cliente.Direccion = direccion
	}
	if telefono := strings.TrimSpace(req.Telefono); telefono != "" {
		cliente.Telefono = telefono
	}
	if req.Orden > 0 {
		cliente.Orden = req.Orden
	}

	tx := s.db.Begin()

	if req.Monto > 0 {
		prestamo := models.Prestamo{
			ClienteID:  cliente.ID,
			Monto:      req.Monto,
			Interes:    req.Interes,
			Plazo:      req.Plazo,
			Frecuencia: frecuencia,
			Fecha:      utils.FechaLocal(),
		}
		prestamo.Saldo = prestamo.SaldoInicial()

		if err := tx.Create(&prestamo).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al crear el préstamo de reactivación")
		}

		movimiento := models.MovimientoCaja{
			Tipo:        models.MovimientoPrestamo,
			Monto:       req.Monto,
			Descripcion: fmt.Sprintf("Nuevo préstamo (reactivado) a %s", cliente.Nombre),
			Fecha:       utils.HoraActual(),
		}
		if err := tx.Create(&movimiento).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al registrar el movimiento del préstamo")
		}

		cliente.Saldo = prestamo.Saldo
	}

	if err := tx.Save(cliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al reactivar el cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar la reactivación")
	}

	if req.Monto > 0 {
		if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
			return nil, err
		}
	}

	utils.LogOperation("ReactivarClientePorCodigo", fmt.Sprintf("codigo=%s", cliente.Codigo))
	return cliente, nil
}

// OtorgarPrestamo crea un préstamo nuevo para un cliente activo, registra la
// salida de caja y recalcula la liquidación del día
func (s *ClienteService) OtorgarPrestamo(clienteID uint, req OtorgarPrestamoRequest) (*models.Prestamo, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cliente no encontrado")
		}
		return nil, errors.New("error al buscar el cliente")
	}

	frecuencia := models.Frecuencia(strings.ToLower(strings.TrimSpace(req.Frecuencia)))
	if !frecuencia.EsValida() {
		frecuencia = models.FrecuenciaDiaria
	}

	prestamo := models.Prestamo{
		ClienteID:  cliente.ID,
		Monto:      req.Monto,
		Interes:    req.Interes,
		Plazo:      req.Plazo,
		Frecuencia: frecuencia,
		Fecha:      utils.FechaLocal(),
	}
	prestamo.Saldo = prestamo.SaldoInicial()

	tx := s.db.Begin()

	if err := tx.Create(&prestamo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al crear el préstamo")
	}

	movimiento := models.MovimientoCaja{
		Tipo:        models.MovimientoPrestamo,
		Monto:       req.Monto,
		Descripcion: fmt.Sprintf("Préstamo a %s", cliente.Nombre),
		Fecha:       utils.HoraActual(),
	}
	if err := tx.Create(&movimiento).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al registrar el movimiento del préstamo")
	}

	saldo, err := s.saldoTotalCliente(tx, cliente.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&cliente).Update("saldo", saldo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el saldo del cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar el préstamo")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return nil, err
	}

	utils.LogOperation("OtorgarPrestamo", fmt.Sprintf("cliente=%d monto=%.2f", cliente.ID, req.Monto))
	return &prestamo, nil
}

// EditarPrestamo actualiza los campos del último préstamo del cliente. Si el
// préstamo aún no tiene abonos, su saldo se recalcula desde monto e interés;
// con abonos registrados el saldo se conserva.
func (s *ClienteService) EditarPrestamo(clienteID uint, req EditarPrestamoRequest) (*models.Prestamo, error) {
	if err := s.validateStruct(req); err != nil {
		return nil, err
	}

	prestamo, err := s.UltimoPrestamo(clienteID)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, errors.New("el cliente no tiene préstamo activo")
	}

	if req.Monto != nil {
		prestamo.Monto = *req.Monto
	}
	if req.Interes != nil {
		prestamo.Interes = *req.Interes
	}
	if req.Plazo != nil {
		prestamo.Plazo = *req.Plazo
	}
	if req.Frecuencia != nil {
		frecuencia := models.Frecuencia(strings.ToLower(strings.TrimSpace(*req.Frecuencia)))
		if !frecuencia.EsValida() {
			return nil, errors.New("frecuencia no válida")
		}
		prestamo.Frecuencia = frecuencia
	}

	var totalAbonos int64
	if err := s.db.Model(&models.Abono{}).
		Where("prestamo_id = ?", prestamo.ID).
		Count(&totalAbonos).Error; err != nil {
		return nil, errors.New("error al contar los abonos del préstamo")
	}
	if totalAbonos == 0 {
		prestamo.Saldo = prestamo.SaldoInicial()
	}

	tx := s.db.Begin()

	if err := tx.Save(prestamo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el préstamo")
	}

	saldo, err := s.saldoTotalCliente(tx, clienteID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Model(&models.Cliente{}).
		Where("id = ?", clienteID).
		Update("saldo", saldo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el saldo del cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar la edición del préstamo")
	}

	return prestamo, nil
}

// EliminarCliente cancela un cliente y reconcilia la caja: elimina sus
// préstamos con sus abonos, borra los movimientos que lo mencionan y
// registra un único reintegro por el capital prestado
func (s *ClienteService) EliminarCliente(clienteID uint) error {
	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("cliente no encontrado")
		}
		return errors.New("error al buscar el cliente")
	}

	if cliente.Cancelado {
		return errors.New("el cliente ya estaba cancelado")
	}

	var prestamos []models.Prestamo
	if err := s.db.Where("cliente_id = ?", cliente.ID).Find(&prestamos).Error; err != nil {
		return errors.New("error al buscar los préstamos del cliente")
	}

	var montoPrestado float64
	prestamoIDs := make([]uint, 0, len(prestamos))
	for _, p := range prestamos {
		montoPrestado += p.Monto
		prestamoIDs = append(prestamoIDs, p.ID)
	}

	tx := s.db.Begin()

	// Primero los abonos, luego los préstamos: el borrado es explícito
	// para no depender de cascadas del motor
	if len(prestamoIDs) > 0 {
		if err := tx.Where("prestamo_id IN ?", prestamoIDs).
			Delete(&models.Abono{}).Error; err != nil {
			tx.Rollback()
			return errors.New("error al eliminar los abonos del cliente")
		}
		if err := tx.Where("cliente_id = ?", cliente.ID).
			Delete(&models.Prestamo{}).Error; err != nil {
			tx.Rollback()
			return errors.New("error al eliminar los préstamos del cliente")
		}
	}

	if cliente.Nombre != "" {
		if err := tx.Where("LOWER(descripcion) LIKE ?", "%"+strings.ToLower(cliente.Nombre)+"%").
			Delete(&models.MovimientoCaja{}).Error; err != nil {
			tx.Rollback()
			return errors.New("error al eliminar los movimientos del cliente")
		}
	}

	if err := tx.Model(&cliente).
		Updates(map[string]interface{}{"cancelado": true, "saldo": 0.0}).Error; err != nil {
		tx.Rollback()
		return errors.New("error al cancelar el cliente")
	}

	if montoPrestado > 0 {
		reintegro := models.MovimientoCaja{
			Tipo:        models.MovimientoEntradaManual,
			Monto:       montoPrestado,
			Descripcion: fmt.Sprintf("Reintegro único de cliente %s", cliente.Nombre),
			Fecha:       utils.HoraActual(),
		}
		if err := tx.Create(&reintegro).Error; err != nil {
			tx.Rollback()
			return errors.New("error al registrar el reintegro")
		}
	}

	if err := tx.Commit().Error; err != nil {
		return errors.New("error al confirmar la eliminación del cliente")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return err
	}

	utils.GetMetrics().RecordLibroOperation("cancelacion", nil)
	utils.LogOperation("EliminarCliente", fmt.Sprintf("cliente=%d reintegro=%.2f", cliente.ID, montoPrestado))

	if s.email != nil {
		if err := s.email.SendClienteCancelado(&cliente); err != nil {
			utils.LogError("No se pudo notificar la cancelación del cliente %d: %v", cliente.ID, err)
		}
	}
	return nil
}

// ReactivarCliente devuelve un cliente cancelado al listado activo. La deuda
// pendiente informada se suma al último préstamo (o crea uno nuevo) y sale
// de la caja como ajuste.
func (s *ClienteService) ReactivarCliente(clienteID uint, deudaPendiente float64) (*models.Cliente, error) {
	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cliente no encontrado")
		}
		return nil, errors.New("error al buscar el cliente")
	}

	if !cliente.Cancelado {
		return nil, errors.New("el cliente ya está activo")
	}
	if deudaPendiente < 0 {
		deudaPendiente = 0
	}

	tx := s.db.Begin()

	if deudaPendiente > 0 {
		prestamo, err := s.UltimoPrestamo(cliente.ID)
		if err != nil {
			tx.Rollback()
			return nil, err
		}

		if prestamo != nil {
			prestamo.Saldo += deudaPendiente
			if err := tx.Save(prestamo).Error; err != nil {
				tx.Rollback()
				return nil, errors.New("error al actualizar el préstamo")
			}
		} else {
			nuevo := models.Prestamo{
				ClienteID:  cliente.ID,
				Monto:      deudaPendiente,
				Saldo:      deudaPendiente,
				Frecuencia: models.FrecuenciaDiaria,
				Fecha:      utils.FechaLocal(),
			}
			if err := tx.Create(&nuevo).Error; err != nil {
				tx.Rollback()
				return nil, errors.New("error al crear el préstamo de reactivación")
			}
		}

		ajuste := models.MovimientoCaja{
			Tipo:        models.MovimientoSalida,
			Monto:       deudaPendiente,
			Descripcion: fmt.Sprintf("Ajuste reactivación – deuda pendiente de %s", cliente.Nombre),
			Fecha:       utils.HoraActual(),
		}
		if err := tx.Create(&ajuste).Error; err != nil {
			tx.Rollback()
			return nil, errors.New("error al registrar el ajuste de caja")
		}
	}

	cliente.Cancelado = false
	saldo, err := s.saldoTotalCliente(tx, cliente.ID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	cliente.Saldo = saldo
	if cliente.Orden <= 0 {
		cliente.Orden = 1
	}

	if err := tx.Save(&cliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al reactivar el cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar la reactivación")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return nil, err
	}

	utils.LogOperation("ReactivarCliente", fmt.Sprintf("cliente=%d deuda=%.2f", cliente.ID, deudaPendiente))
	return &cliente, nil
}

// RepararCliente cancela manualmente un cliente con saldo pendiente y
// devuelve ese saldo a la caja como entrada manual. Pensado para clientes
// eliminados por vías antiguas que dejaron la caja descuadrada.
func (s *ClienteService) RepararCliente(clienteID uint) (float64, error) {
	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, errors.New("cliente no encontrado")
		}
		return 0, errors.New("error al buscar el cliente")
	}

	if cliente.Saldo <= 0 {
		return 0, errors.New("el cliente no tiene saldo para revertir")
	}

	saldoDevuelto := cliente.Saldo

	tx := s.db.Begin()

	reverso := models.MovimientoCaja{
		Tipo:        models.MovimientoEntradaManual,
		Monto:       saldoDevuelto,
		Descripcion: fmt.Sprintf("Reverso manual cliente %s", cliente.Nombre),
		Fecha:       utils.HoraActual(),
	}
	if err := tx.Create(&reverso).Error; err != nil {
		tx.Rollback()
		return 0, errors.New("error al registrar el reverso")
	}

	if err := tx.Model(&cliente).
		Updates(map[string]interface{}{"cancelado": true, "saldo": 0.0}).Error; err != nil {
		tx.Rollback()
		return 0, errors.New("error al cancelar el cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return 0, errors.New("error al confirmar la reparación")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return 0, err
	}

	utils.LogOperation("RepararCliente", fmt.Sprintf("cliente=%d devuelto=%.2f", cliente.ID, saldoDevuelto))
	return saldoDevuelto, nil
}

// ActualizarOrden cambia la posición del cliente en el listado de cobro
func (s *ClienteService) ActualizarOrden(clienteID uint, orden int) error {
	if orden <= 0 {
		return errors.New("debe ingresar un número de orden válido")
	}

	resultado := s.db.Model(&models.Cliente{}).
		Where("id = ?", clienteID).
		Update("orden", orden)
	if resultado.Error != nil {
		return errors.New("error al actualizar el orden")
	}
	if resultado.RowsAffected == 0 {
		return errors.New("cliente no encontrado")
	}
	return nil
}

// EstadoPlazo deriva el estado de pago de un préstamo a una fecha dada:
// normal dentro del plazo, vencido hasta 30 días después del vencimiento y
// moroso desde ahí en adelante
func (s *ClienteService) EstadoPlazo(prestamo *models.Prestamo, hoy time.Time) models.EstadoPlazo {
	if prestamo == nil || prestamo.Plazo <= 0 {
		return models.EstadoNormal
	}

	vencimiento := utils.Dia(prestamo.Fecha).AddDate(0, 0, prestamo.Plazo)
	diasPasados := int(utils.Dia(hoy).Sub(vencimiento).Hours() / 24)

	switch {
	case diasPasados >= 30:
		return models.EstadoMoroso
	case diasPasados >= 0:
		return models.EstadoVencido
	default:
		return models.EstadoNormal
	}
}

// CuotaTotal calcula el valor de cada cuota del préstamo: el total con
// interés dividido en el número de cuotas que caben en el plazo
func (s *ClienteService) CuotaTotal(prestamo *models.Prestamo) float64 {
	if prestamo == nil {
		return 0
	}
	return utils.Redondear2(prestamo.ValorCuota())
}

// CuotasAtrasadas cuenta las cuotas vencidas desde la fecha del préstamo,
// con tope en el plazo
func (s *ClienteService) CuotasAtrasadas(prestamo *models.Prestamo, hoy time.Time) int {
	if prestamo == nil || prestamo.Plazo <= 0 {
		return 0
	}

	diasPasados := int(utils.Dia(hoy).Sub(utils.Dia(prestamo.Fecha)).Hours() / 24)
	if diasPasados < 0 {
		return 0
	}

	var cuotas int
	switch prestamo.Frecuencia {
	case models.FrecuenciaDiaria:
		cuotas = diasPasados
	case models.FrecuenciaSemanal:
		cuotas = diasPasados / 7
	case models.FrecuenciaQuincenal:
		cuotas = diasPasados / 15
	case models.FrecuenciaMensual:
		cuotas = diasPasados / 30
	default:
		cuotas = 0
	}

	if cuotas > prestamo.Plazo {
		cuotas = prestamo.Plazo
	}
	return cuotas
}

// UltimoAbonoMonto devuelve el monto del abono más reciente de un préstamo
func (s *ClienteService) UltimoAbonoMonto(prestamoID uint) (float64, error) {
	var abono models.Abono
	err := s.db.Where("prestamo_id = ?", prestamoID).
		Order("fecha DESC, id DESC").
		First(&abono).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, errors.New("error al buscar el último abono")
	}
	return abono.Monto, nil
}

// ListarActivos devuelve los clientes activos en orden de cobro, con su
// estado de plazo y los valores derivados del último préstamo. También
// renumera el orden cuando está roto (saltos o ceros).
func (s *ClienteService) ListarActivos() ([]ClienteConEstado, error) {
	var clientes []models.Cliente
	if err := s.db.Where("cancelado = ?", false).
		Order("orden ASC, id ASC").
		Find(&clientes).Error; err != nil {
		return nil, errors.New("error al buscar los clientes")
	}

	hoy := utils.FechaLocal()
	listado := make([]ClienteConEstado, 0, len(clientes))

	for i := range clientes {
		cliente := &clientes[i]

		if esperado := i + 1; cliente.Orden != esperado {
			cliente.Orden = esperado
			if err := s.db.Model(cliente).Update("orden", esperado).Error; err != nil {
				return nil, errors.New("error al renumerar el orden")
			}
		}

		fila := ClienteConEstado{Cliente: *cliente, EstadoPlazo: models.EstadoNormal}

		prestamo, err := s.UltimoPrestamo(cliente.ID)
		if err != nil {
			return nil, err
		}
		if prestamo != nil {
			fila.EstadoPlazo = s.EstadoPlazo(prestamo, hoy)
			fila.CuotaTotal = s.CuotaTotal(prestamo)
			fila.CuotasAtrasadas = s.CuotasAtrasadas(prestamo, hoy)
			if fila.UltimoAbonoMonto, err = s.UltimoAbonoMonto(prestamo.ID); err != nil {
				return nil, err
			}
		}

		listado = append(listado, fila)
	}

	return listado, nil
}

// ListarCancelados devuelve los clientes cancelados con saldo cerrado y al
// menos un préstamo, con la duración del crédito y su último abono
func (s *ClienteService) ListarCancelados() ([]ClienteCanceladoDTO, error) {
	var clientes []models.Cliente
	if err := s.db.Where("cancelado = ? AND saldo <= ?", true, 0.01).
		Order("orden ASC, id ASC").
		Find(&clientes).Error; err != nil {
		return nil, errors.New("error al buscar los clientes cancelados")
	}

	listado := make([]ClienteCanceladoDTO, 0, len(clientes))
	for _, cliente := range clientes {
		prestamo, err := s.UltimoPrestamo(cliente.ID)
		if err != nil {
			return nil, err
		}
		if prestamo == nil {
			// Sin préstamos no hay historial que mostrar
			continue
		}

		fila := ClienteCanceladoDTO{
			ID:          cliente.ID,
			Orden:       cliente.Orden,
			Codigo:      cliente.Codigo,
			Nombre:      cliente.Nombre,
			SalidaTotal: prestamo.SaldoInicial(),
			Saldo:       utils.Redondear2(cliente.Saldo),
		}

		if cliente.UltimoAbonoFecha != nil {
			fila.FechaSalida = cliente.UltimoAbonoFecha.Format("02-01-2006")
			fila.Dias = int(utils.Dia(*cliente.UltimoAbonoFecha).Sub(utils.Dia(prestamo.Fecha)).Hours() / 24)
			if fila.Dias < 0 {
				fila.Dias = 0
			}
		} else {
			fila.FechaSalida = prestamo.Fecha.Format("02-01-2006")
		}

		if fila.UltimoAbonoMonto, err = s.UltimoAbonoMonto(prestamo.ID); err != nil {
			return nil, err
		}

		listado = append(listado, fila)
	}

	return listado, nil
}
