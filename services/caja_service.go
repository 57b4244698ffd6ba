package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
)

// ResumenTotalDTO representa el estado acumulado de la caja y la cartera
type ResumenTotalDTO struct {
	CajaTotal    float64 `json:"caja_total"`
	CarteraTotal float64 `json:"cartera_total"`
}

// CajaService provee métodos para registrar y reparar movimientos de caja
type CajaService struct {
	db  *gorm.DB
	liq *LiquidacionService
}

// NewCajaService crea una nueva instancia de CajaService
func NewCajaService(db *gorm.DB, liq *LiquidacionService) *CajaService {
	return &CajaService{db: db, liq: liq}
}

// RegistrarMovimiento registra un movimiento manual de caja y recalcula la
// liquidación del día. Los movimientos de tipo "prestamo" no se aceptan por
// esta vía: los crea el otorgamiento de préstamos.
func (s *CajaService) RegistrarMovimiento(tipo models.TipoMovimiento, monto float64, descripcion string, fecha time.Time) (*models.MovimientoCaja, error) {
	switch tipo {
	case models.MovimientoEntradaManual, models.MovimientoSalida, models.MovimientoGasto:
	case models.MovimientoPrestamo:
		return nil, errors.New("los movimientos de préstamo se registran al otorgar el préstamo")
	default:
		return nil, errors.New("tipo de movimiento no válido")
	}

	if monto <= 0 {
		return nil, errors.New("el monto debe ser mayor a cero")
	}

	descripcion = strings.TrimSpace(descripcion)
	if descripcion == "" {
		return nil, errors.New("la descripción es obligatoria")
	}

	// Una salida que menciona un préstamo casi siempre es un préstamo mal
	// registrado; lo rechazamos para no duplicar la cartera
	if tipo == models.MovimientoSalida {
		bajo := strings.ToLower(descripcion)
		if strings.Contains(bajo, "préstamo") || strings.Contains(bajo, "prestamo") {
			return nil, errors.New("las salidas por préstamo deben registrarse otorgando el préstamo al cliente")
		}
	}

	if fecha.IsZero() {
		fecha = utils.HoraActual()
	}

	movimiento := models.MovimientoCaja{
		Tipo:        tipo,
		Monto:       utils.Redondear2(monto),
		Descripcion: descripcion,
		Fecha:       fecha,
	}

	if err := s.db.Create(&movimiento).Error; err != nil {
		utils.LogError("Error al crear movimiento de caja: %v", err)
		return nil, errors.New("error al registrar el movimiento de caja")
	}

	if _, err := s.liq.ActualizarLiquidacion(fecha); err != nil {
		return nil, err
	}

	utils.GetMetrics().RecordLibroOperation("movimiento", nil)
	utils.LogOperation("RegistrarMovimiento", fmt.Sprintf("tipo=%s monto=%.2f", tipo, movimiento.Monto))
	return &movimiento, nil
}

// MovimientosPorRango devuelve los movimientos de caja de la ventana
// [start, end), del más reciente al más antiguo
func (s *CajaService) MovimientosPorRango(start, end time.Time) ([]models.MovimientoCaja, error) {
	var movimientos []models.MovimientoCaja
	if err := s.db.Where("fecha >= ? AND fecha < ?", start, end).
		Order("fecha DESC").
		Find(&movimientos).Error; err != nil {
		return nil, errors.New("error al buscar los movimientos de caja")
	}
	return movimientos, nil
}

// EliminarMovimiento elimina un movimiento manual y recalcula la liquidación
// del día del movimiento
func (s *CajaService) EliminarMovimiento(id uint) error {
	var movimiento models.MovimientoCaja
	if err := s.db.First(&movimiento, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.New("movimiento no encontrado")
		}
		return errors.New("error al buscar el movimiento")
	}

	if movimiento.Tipo == models.MovimientoPrestamo {
		return errors.New("los movimientos de préstamo no se eliminan manualmente")
	}

	if err := s.db.Delete(&movimiento).Error; err != nil {
		return errors.New("error al eliminar el movimiento")
	}

	if _, err := s.liq.ActualizarLiquidacion(movimiento.Fecha); err != nil {
		return err
	}
	return nil
}

// ObtenerResumenTotal calcula la caja acumulada de movimientos manuales y
// la cartera total (suma de los saldos de todos los préstamos)
func (s *CajaService) ObtenerResumenTotal() (*ResumenTotalDTO, error) {
	resumen := &ResumenTotalDTO{}

	sumarTipo := func(tipo models.TipoMovimiento) (float64, error) {
		var total float64
		err := s.db.Model(&models.MovimientoCaja{}).
			Where("tipo = ?", tipo).
			Select("COALESCE(SUM(monto), 0)").
			Scan(&total).Error
		if err != nil {
			return 0, errors.New("error al sumar los movimientos de caja")
		}
		return total, nil
	}

	entradas, err := sumarTipo(models.MovimientoEntradaManual)
	if err != nil {
		return nil, err
	}
	salidas, err := sumarTipo(models.MovimientoSalida)
	if err != nil {
		return nil, err
	}
	gastos, err := sumarTipo(models.MovimientoGasto)
	if err != nil {
		return nil, err
	}

	resumen.CajaTotal = utils.Redondear2(entradas - salidas - gastos)

	if err := s.db.Model(&models.Prestamo{}).
		Select("COALESCE(SUM(saldo), 0)").
		Scan(&resumen.CarteraTotal).Error; err != nil {
		return nil, errors.New("error al sumar la cartera")
	}
	resumen.CarteraTotal = utils.Redondear2(resumen.CarteraTotal)

	return resumen, nil
}

// ContarAbonosMalClasificados cuenta las entradas manuales que en realidad
// describen abonos de clientes. Los abonos ya se suman desde su propia tabla,
// así que estos registros duplican la entrada en la liquidación.
func (s *CajaService) ContarAbonosMalClasificados() (int64, error) {
	var total int64
	if err := s.db.Model(&models.MovimientoCaja{}).
		Where("tipo = ? AND LOWER(descripcion) LIKE ?", models.MovimientoEntradaManual, "%abono%").
		Count(&total).Error; err != nil {
		return 0, errors.New("error al verificar los movimientos de caja")
	}
	return total, nil
}

// RepararCaja elimina las entradas manuales mal clasificadas como abonos y
// recalcula las liquidaciones de las fechas afectadas. Devuelve cuántas
// eliminó.
func (s *CajaService) RepararCaja() (int64, error) {
	var sospechosos []models.MovimientoCaja
	if err := s.db.Where("tipo = ? AND LOWER(descripcion) LIKE ?", models.MovimientoEntradaManual, "%abono%").
		Find(&sospechosos).Error; err != nil {
		return 0, errors.New("error al buscar los movimientos de caja")
	}

	if len(sospechosos) == 0 {
		return 0, nil
	}

	fechas := make(map[time.Time]bool)
	tx := s.db.Begin()
	for _, m := range sospechosos {
		if err := tx.Delete(&models.MovimientoCaja{}, m.ID).Error; err != nil {
			tx.Rollback()
			return 0, errors.New("error al eliminar los movimientos mal clasificados")
		}
		fechas[utils.Dia(m.Fecha)] = true
	}
	if err := tx.Commit().Error; err != nil {
		return 0, errors.New("error al confirmar la reparación de caja")
	}

	for fecha := range fechas {
		if _, err := s.liq.ActualizarLiquidacion(fecha); err != nil {
			return 0, err
		}
	}

	utils.LogOperation("RepararCaja", fmt.Sprintf("eliminados=%d", len(sospechosos)))
	return int64(len(sospechosos)), nil
}

// ReconstruirMovimientosPrestamos borra todos los movimientos de tipo
// préstamo y los vuelve a crear desde la tabla de préstamos de clientes
// activos. Devuelve cuántos movimientos creó.
func (s *CajaService) ReconstruirMovimientosPrestamos() (int64, error) {
	var prestamos []models.Prestamo
	if err := s.db.Joins("JOIN clientes ON clientes.id = prestamos.cliente_id").
		Where("clientes.cancelado = ?", false).
		Find(&prestamos).Error; err != nil {
		return 0, errors.New("error al buscar los préstamos")
	}

	var existentes []models.MovimientoCaja
	if err := s.db.Where("tipo = ?", models.MovimientoPrestamo).Find(&existentes).Error; err != nil {
		return 0, errors.New("error al buscar los movimientos de préstamo")
	}

	fechas := make(map[time.Time]bool)
	for _, m := range existentes {
		fechas[utils.Dia(m.Fecha)] = true
	}

	tx := s.db.Begin()

	if err := tx.Where("tipo = ?", models.MovimientoPrestamo).
		Delete(&models.MovimientoCaja{}).Error; err != nil {
		tx.Rollback()
		return 0, errors.New("error al eliminar los movimientos de préstamo")
	}

	var creados int64
	for _, p := range prestamos {
		var cliente models.Cliente
		if err := tx.First(&cliente, p.ClienteID).Error; err != nil {
			tx.Rollback()
			return 0, errors.New("error al buscar el cliente del préstamo")
		}

		movimiento := models.MovimientoCaja{
			Tipo:        models.MovimientoPrestamo,
			Monto:       p.Monto,
			Descripcion: fmt.Sprintf("Préstamo a %s", cliente.Nombre),
			Fecha:       utils.Dia(p.Fecha),
		}
		if err := tx.Create(&movimiento).Error; err != nil {
			tx.Rollback()
			return 0, errors.New("error al recrear el movimiento de préstamo")
		}
		fechas[utils.Dia(p.Fecha)] = true
		creados++
	}

	if err := tx.Commit().Error; err != nil {
		return 0, errors.New("error al confirmar la reconstrucción")
	}

	for fecha := range fechas {
		if _, err := s.liq.ActualizarLiquidacion(fecha); err != nil {
			return 0, err
		}
	}

	utils.LogOperation("ReconstruirMovimientosPrestamos", fmt.Sprintf("creados=%d", creados))
	return creados, nil
}
