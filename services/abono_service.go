package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// AbonoResultado resume el efecto de registrar o eliminar un abono
type AbonoResultado struct {
	ClienteID       uint    `json:"cliente_id"`
	Nombre          string  `json:"nombre"`
	Monto           float64 `json:"monto"`
	Saldo           float64 `json:"saldo"`
	Cancelado       bool    `json:"cancelado"`
	InteresAplicado bool    `json:"interes_aplicado"`
}

// AbonoHistorialFila es una fila del historial de abonos con el saldo
// restante después de cada pago
type AbonoHistorialFila struct {
	ID     uint    `json:"id"`
	Codigo string  `json:"codigo"`
	Fecha  string  `json:"fecha"`
	Hora   string  `json:"hora"`
	Monto  float64 `json:"monto"`
	Saldo  float64 `json:"saldo"`
}

// AbonoHistorial agrupa los datos del préstamo con sus abonos en orden
// cronológico
type AbonoHistorial struct {
	Nombre       string               `json:"nombre"`
	FechaInicial string               `json:"fecha_inicial"`
	Monto        float64              `json:"monto"`
	Total        float64              `json:"total"`
	Cuota        float64              `json:"cuota"`
	Modo         string               `json:"modo"`
	Saldo        float64              `json:"saldo"`
	Abonos       []AbonoHistorialFila `json:"abonos"`
}

// AbonoService provee métodos para registrar y revertir abonos de clientes
type AbonoService struct {
	db    *gorm.DB
	liq   *LiquidacionService
	email *EmailService
}

// NewAbonoService crea una nueva instancia de AbonoService
func NewAbonoService(db *gorm.DB, liq *LiquidacionService, email *EmailService) *AbonoService {
	return &AbonoService{db: db, liq: liq, email: email}
}

// prestamoActivo busca el préstamo con saldo pendiente más reciente del
// cliente
func (s *AbonoService) prestamoActivo(clienteID uint) (*models.Prestamo, error) {
	var prestamo models.Prestamo
	err := s.db.Where("cliente_id = ? AND saldo > 0", clienteID).
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

// ultimoPrestamo busca el préstamo más reciente del cliente, tenga o no
// saldo pendiente
func (s *AbonoService) ultimoPrestamo(clienteID uint) (*models.Prestamo, error) {
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

// RegistrarAbonoPorCodigo registra un abono buscando al cliente por su
// código. Para préstamos de frecuencia mensual con más de 30 días desde la
// última aplicación, primero recarga el interés del período.
func (s *AbonoService) RegistrarAbonoPorCodigo(codigo string, monto float64) (*AbonoResultado, error) {
	if monto <= 0 {
		return nil, errors.New("el monto del abono debe ser mayor a cero")
	}

	var cliente models.Cliente
	if err := s.db.Where("codigo = ?", codigo).First(&cliente).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("código no encontrado")
		}
		return nil, errors.New("error al buscar el cliente")
	}

	prestamo, err := s.prestamoActivo(cliente.ID)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, errors.New("el cliente no tiene préstamos pendientes")
	}

	return s.registrarAbono(&cliente, prestamo, monto, true)
}

// RegistrarAbono registra un abono directo sobre el último préstamo del
// cliente
func (s *AbonoService) RegistrarAbono(clienteID uint, monto float64) (*AbonoResultado, error) {
	if monto <= 0 {
		return nil, errors.New("el monto del abono debe ser mayor a cero")
	}

	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cliente no encontrado")
		}
		return nil, errors.New("error al buscar el cliente")
	}

	prestamo, err := s.ultimoPrestamo(cliente.ID)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, errors.New("el cliente no tiene préstamos activos")
	}

	return s.registrarAbono(&cliente, prestamo, monto, false)
}

func (s *AbonoService) registrarAbono(cliente *models.Cliente, prestamo *models.Prestamo, monto float64, conInteresMensual bool) (*AbonoResultado, error) {
	resultado := &AbonoResultado{
		ClienteID: cliente.ID,
		Nombre:    cliente.Nombre,
		Monto:     monto,
	}

	tx := s.db.Begin()

	// Interés mensual acumulado desde la última aplicación
	if conInteresMensual && prestamo.Frecuencia == models.FrecuenciaMensual {
		desde := prestamo.Fecha
		if prestamo.UltimaAplicacionInteres != nil {
			desde = *prestamo.UltimaAplicacionInteres
		}
		dias := int(utils.FechaLocal().Sub(utils.Dia(desde)).Hours() / 24)

		if dias >= 30 {
			interesExtra := prestamo.Monto * prestamo.Interes / 100
			prestamo.Saldo += interesExtra
			aplicacion := utils.FechaLocal()
			prestamo.UltimaAplicacionInteres = &aplicacion

			movimiento := models.MovimientoCaja{
				Tipo:        models.MovimientoEntradaManual,
				Monto:       interesExtra,
				Descripcion: fmt.Sprintf("Interés mensual aplicado a %s", cliente.Nombre),
				Fecha:       utils.HoraActual(),
			}
			if err := tx.Create(&movimiento).Error; err != nil {
				tx.Rollback()
				return nil, errors.New("error al registrar el interés mensual")
			}
			resultado.InteresAplicado = true
		}
	}

	abono := models.Abono{
		PrestamoID: prestamo.ID,
		Monto:      monto,
		Fecha:      utils.HoraActual(),
	}
	if err := tx.Create(&abono).Error; err != nil {
		tx.Rollback()
		utils.LogError("Error al crear abono: %v", err)
		return nil, errors.New("error al registrar el abono")
	}

	prestamo.Saldo -= monto
	if prestamo.Saldo < 0 {
		prestamo.Saldo = 0
	}
	if err := tx.Save(prestamo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el préstamo")
	}

	var saldoCliente float64
	if err := tx.Model(&models.Prestamo{}).
		Where("cliente_id = ?", cliente.ID).
		Select("COALESCE(SUM(saldo), 0)").
		Scan(&saldoCliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al sumar los saldos del cliente")
	}

	cliente.Saldo = saldoCliente
	fechaAbono := utils.FechaLocal()
	cliente.UltimoAbonoFecha = &fechaAbono

	// Con saldo en cero el cliente pasa a cancelados
	if utils.Redondear2(cliente.Saldo) <= 0 {
		cliente.Saldo = 0
		cliente.Cancelado = true
		resultado.Cancelado = true
	}

	if err := tx.Save(cliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar el abono")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return nil, err
	}

	resultado.Saldo = cliente.Saldo
	utils.GetMetrics().RecordLibroOperation("abono", nil)
	utils.LogOperation("RegistrarAbono", fmt.Sprintf("cliente=%d monto=%.2f saldo=%.2f", cliente.ID, monto, cliente.Saldo))

	if resultado.Cancelado {
		utils.GetMetrics().RecordLibroOperation("cancelacion", nil)
		if s.email != nil {
			if err := s.email.SendClienteCancelado(cliente); err != nil {
				utils.LogError("No se pudo notificar la cancelación del cliente %d: %v", cliente.ID, err)
			}
		}
	}

	return resultado, nil
}

// EliminarAbono revierte un abono: lo borra, devuelve su monto al saldo del
// préstamo y reactiva al cliente si había quedado cancelado
func (s *AbonoService) EliminarAbono(abonoID uint) (*AbonoResultado, error) {
	var abono models.Abono
	if err := s.db.First(&abono, abonoID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("abono no encontrado")
		}
		return nil, errors.New("error al buscar el abono")
	}

	var prestamo models.Prestamo
	if err := s.db.First(&prestamo, abono.PrestamoID).Error; err != nil {
		return nil, errors.New("error al buscar el préstamo del abono")
	}

	var cliente models.Cliente
	if err := s.db.First(&cliente, prestamo.ClienteID).Error; err != nil {
		return nil, errors.New("error al buscar el cliente del abono")
	}

	tx := s.db.Begin()

	prestamo.Saldo += abono.Monto
	if err := tx.Save(&prestamo).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el préstamo")
	}

	if err := tx.Delete(&abono).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al eliminar el abono")
	}

	var saldoCliente float64
	if err := tx.Model(&models.Prestamo{}).
		Where("cliente_id = ?", cliente.ID).
		Select("COALESCE(SUM(saldo), 0)").
		Scan(&saldoCliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al sumar los saldos del cliente")
	}
	cliente.Saldo = saldoCliente

	// Si vuelve a deber, sale de cancelados
	if cliente.Cancelado && utils.Redondear2(cliente.Saldo) > 0 {
		cliente.Cancelado = false
	}

	if err := tx.Save(&cliente).Error; err != nil {
		tx.Rollback()
		return nil, errors.New("error al actualizar el cliente")
	}

	if err := tx.Commit().Error; err != nil {
		return nil, errors.New("error al confirmar la eliminación del abono")
	}

	if _, err := s.liq.ActualizarLiquidacion(utils.FechaLocal()); err != nil {
		return nil, err
	}

	utils.LogOperation("EliminarAbono", fmt.Sprintf("abono=%d cliente=%d monto=%.2f", abono.ID, cliente.ID, abono.Monto))
	return &AbonoResultado{
		ClienteID: cliente.ID,
		Nombre:    cliente.Nombre,
		Monto:     abono.Monto,
		Saldo:     cliente.Saldo,
		Cancelado: cliente.Cancelado,
	}, nil
}

// HistorialAbonos devuelve los abonos del último préstamo del cliente en
// orden cronológico, con el saldo restante después de cada uno
func (s *AbonoService) HistorialAbonos(clienteID uint) (*AbonoHistorial, error) {
	var cliente models.Cliente
	if err := s.db.First(&cliente, clienteID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("cliente no encontrado")
		}
		return nil, errors.New("error al buscar el cliente")
	}

	prestamo, err := s.ultimoPrestamo(cliente.ID)
	if err != nil {
		return nil, err
	}
	if prestamo == nil {
		return nil, errors.New("el cliente no tiene préstamos registrados")
	}

	var abonos []models.Abono
	if err := s.db.Where("prestamo_id = ?", prestamo.ID).
		Order("fecha ASC, id ASC").
		Find(&abonos).Error; err != nil {
		return nil, errors.New("error al buscar los abonos")
	}
	if len(abonos) == 0 {
		return nil, errors.New("no se registran abonos para este cliente")
	}

	historial := &AbonoHistorial{
		Nombre:       cliente.Nombre,
		FechaInicial: prestamo.Fecha.Format("02-01-2006"),
		Monto:        prestamo.Monto,
		Total:        utils.Redondear2(prestamo.SaldoInicial()),
		Cuota:        utils.Redondear2(prestamo.ValorCuota()),
		Modo:         string(prestamo.Frecuencia),
		Saldo:        prestamo.Saldo,
	}

	saldoRestante := prestamo.SaldoInicial()
	for _, abono := range abonos {
		saldoRestante -= abono.Monto
		saldo := utils.Redondear2(saldoRestante)
		if saldo < 0 {
			saldo = 0
		}
		historial.Abonos = append(historial.Abonos, AbonoHistorialFila{
			ID:     abono.ID,
			Codigo: cliente.Codigo,
			Fecha:  abono.Fecha.Format("02-01-2006"),
			Hora:   abono.Fecha.Format("15:04:05"),
			Monto:  abono.Monto,
			Saldo:  saldo,
		})
	}

	return historial, nil
}
