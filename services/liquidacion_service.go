package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"errors"
	"time"

	"gorm.io/gorm"
)

// TotalesLiquidacion representa los totales de un rango de liquidaciones
type TotalesLiquidacion struct {
	Entradas     float64 `json:"entradas"`
	EntradasCaja float64 `json:"entradas_caja"`
	PrestamosHoy float64 `json:"prestamos_hoy"`
	Salidas      float64 `json:"salidas"`
	Gastos       float64 `json:"gastos"`
	Caja         float64 `json:"caja"`
}

// ResumenDiaDTO representa el resumen del día para el tablero
type ResumenDiaDTO struct {
	Fecha                time.Time `json:"fecha"`
	TotalClientesActivos int64     `json:"total_clientes_activos"`
	TotalAbonos          float64   `json:"total_abonos"`
	TotalPrestamos       float64   `json:"total_prestamos"`
	TotalEntradas        float64   `json:"total_entradas"`
	TotalSalidas         float64   `json:"total_salidas"`
	TotalGastos          float64   `json:"total_gastos"`
	CajaTotal            float64   `json:"caja_total"`
}

// LiquidacionService provee métodos para trabajar con las liquidaciones diarias.
// Es el único punto que mantiene la caja internamente consistente: toda
// operación que muta el libro termina llamando a ActualizarLiquidacion.
type LiquidacionService struct {
	db *gorm.DB
}

// NewLiquidacionService crea una nueva instancia de LiquidacionService
func NewLiquidacionService(db *gorm.DB) *LiquidacionService {
	return &LiquidacionService{db: db}
}

// SumarAbonos suma los abonos registrados en la ventana [start, end).
// Devuelve 0 si no hay ninguno.
func (s *LiquidacionService) SumarAbonos(start, end time.Time) (float64, error) {
	var total float64
	err := s.db.Model(&models.Abono{}).
		Joins("JOIN prestamos ON prestamos.id = abonos.prestamo_id").
		Where("abonos.fecha >= ? AND abonos.fecha < ?", start, end).
		Select("COALESCE(SUM(abonos.monto), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.New("error al sumar los abonos")
	}
	return total, nil
}

// SumarMovimientos suma los movimientos de caja de un tipo en la ventana
// [start, end). Devuelve 0 si no hay ninguno.
func (s *LiquidacionService) SumarMovimientos(tipo models.TipoMovimiento, start, end time.Time) (float64, error) {
	switch tipo {
	case models.MovimientoEntradaManual, models.MovimientoSalida, models.MovimientoGasto, models.MovimientoPrestamo:
	default:
		return 0, errors.New("tipo de movimiento no válido")
	}

	var total float64
	err := s.db.Model(&models.MovimientoCaja{}).
		Where("tipo = ? AND fecha >= ? AND fecha < ?", tipo, start, end).
		Select("COALESCE(SUM(monto), 0)").
		Scan(&total).Error
	if err != nil {
		return 0, errors.New("error al sumar los movimientos de caja")
	}
	return total, nil
}

// CrearLiquidacionParaFecha busca la liquidación de una fecha y la crea en
// cero si no existe
func (s *LiquidacionService) CrearLiquidacionParaFecha(fecha time.Time) (*models.Liquidacion, error) {
	fecha = utils.Dia(fecha)

	var liq models.Liquidacion
	err := s.db.Where("fecha = ?", fecha).First(&liq).Error
	if err == nil {
		return &liq, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("error al buscar la liquidación")
	}

	liq = models.Liquidacion{Fecha: fecha}
	if err := s.db.Create(&liq).Error; err != nil {
		return nil, errors.New("error al crear la liquidación")
	}
	return &liq, nil
}

// cajaAnterior devuelve la caja de cierre de la liquidación más reciente
// estrictamente anterior a la fecha (0 si aún no hay historial)
func (s *LiquidacionService) cajaAnterior(fecha time.Time) (float64, error) {
	var anterior models.Liquidacion
	err := s.db.Where("fecha < ?", utils.Dia(fecha)).
		Order("fecha DESC").
		First(&anterior).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return 0, nil
		}
		return 0, errors.New("error al buscar la liquidación anterior")
	}
	return anterior.Caja, nil
}

// ActualizarLiquidacion recalcula y persiste la liquidación de una fecha.
// Es idempotente: con los mismos datos de fondo produce los mismos totales.
// Nunca falla por falta de datos; todos los agregados parten en cero.
func (s *LiquidacionService) ActualizarLiquidacion(fecha time.Time) (*models.Liquidacion, error) {
	fecha = utils.Dia(fecha)
	start, end := utils.RangoDia(fecha)

	// Abonos de clientes
	entradasAbonos, err := s.SumarAbonos(start, end)
	if err != nil {
		return nil, err
	}

	// Entradas manuales
	entradasManual, err := s.SumarMovimientos(models.MovimientoEntradaManual, start, end)
	if err != nil {
		return nil, err
	}

	// Salidas manuales
	salidasManual, err := s.SumarMovimientos(models.MovimientoSalida, start, end)
	if err != nil {
		return nil, err
	}

	// Gastos
	gastos, err := s.SumarMovimientos(models.MovimientoGasto, start, end)
	if err != nil {
		return nil, err
	}

	// Préstamos entregados
	prestamosEntregados, err := s.SumarMovimientos(models.MovimientoPrestamo, start, end)
	if err != nil {
		return nil, err
	}

	// Caja del día anterior
	cajaAnterior, err := s.cajaAnterior(fecha)
	if err != nil {
		return nil, err
	}

	// Calculamos la caja de cierre
	totalEntradas := entradasAbonos + entradasManual
	cajaActual := cajaAnterior + totalEntradas - (prestamosEntregados + salidasManual + gastos)

	// Creamos o sobrescribimos el registro
	liq, err := s.CrearLiquidacionParaFecha(fecha)
	if err != nil {
		return nil, err
	}

	liq.Entradas = entradasAbonos
	liq.EntradasCaja = entradasManual
	liq.PrestamosHoy = prestamosEntregados
	liq.Salidas = salidasManual
	liq.Gastos = gastos
	liq.CajaManual = cajaAnterior
	liq.Caja = cajaActual

	if err := s.db.Save(liq).Error; err != nil {
		return nil, errors.New("error al guardar la liquidación")
	}

	utils.GetMetrics().RecordLibroOperation("liquidacion", nil)
	return liq, nil
}

// ObtenerLiquidacion devuelve la liquidación de una fecha, calculándola si
// aún no existe (totales en cero y caja arrastrada del día anterior)
func (s *LiquidacionService) ObtenerLiquidacion(fecha time.Time) (*models.Liquidacion, error) {
	fecha = utils.Dia(fecha)

	var liq models.Liquidacion
	err := s.db.Where("fecha = ?", fecha).First(&liq).Error
	if err == nil {
		return &liq, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, errors.New("error al buscar la liquidación")
	}

	return s.ActualizarLiquidacion(fecha)
}

// ObtenerLiquidaciones devuelve una liquidación por cada fecha del rango
// cerrado [desde, hasta], rellenando con registros en cero (no persistidos)
// las fechas sin liquidación, junto con los totales del rango
func (s *LiquidacionService) ObtenerLiquidaciones(desde, hasta time.Time) ([]models.Liquidacion, *TotalesLiquidacion, error) {
	desde = utils.Dia(desde)
	hasta = utils.Dia(hasta)
	if hasta.Before(desde) {
		return nil, nil, errors.New("el rango de fechas no es válido")
	}

	var registros []models.Liquidacion
	if err := s.db.Where("fecha >= ? AND fecha <= ?", desde, hasta).
		Order("fecha ASC").
		Find(&registros).Error; err != nil {
		return nil, nil, errors.New("error al buscar las liquidaciones")
	}

	porFecha := make(map[string]models.Liquidacion, len(registros))
	for _, l := range registros {
		porFecha[utils.Dia(l.Fecha).Format("2006-01-02")] = l
	}

	var liquidaciones []models.Liquidacion
	totales := &TotalesLiquidacion{}
	for fecha := desde; !fecha.After(hasta); fecha = fecha.AddDate(0, 0, 1) {
		liq, ok := porFecha[fecha.Format("2006-01-02")]
		if !ok {
			// Registro vacío solo para mostrar, no se persiste
			liq = models.Liquidacion{Fecha: fecha}
		}
		liquidaciones = append(liquidaciones, liq)

		totales.Entradas += liq.Entradas
		totales.EntradasCaja += liq.EntradasCaja
		totales.PrestamosHoy += liq.PrestamosHoy
		totales.Salidas += liq.Salidas
		totales.Gastos += liq.Gastos
		totales.Caja += liq.Caja
	}

	return liquidaciones, totales, nil
}

// UltimasLiquidaciones devuelve las últimas n liquidaciones registradas,
// de la más reciente a la más antigua
func (s *LiquidacionService) UltimasLiquidaciones(n int) ([]models.Liquidacion, error) {
	if n <= 0 {
		n = 10
	}
	var liquidaciones []models.Liquidacion
	if err := s.db.Order("fecha DESC").Limit(n).Find(&liquidaciones).Error; err != nil {
		return nil, errors.New("error al buscar las liquidaciones")
	}
	return liquidaciones, nil
}

// ResumenDia calcula los totales del día para el tablero
func (s *LiquidacionService) ResumenDia(fecha time.Time) (*ResumenDiaDTO, error) {
	fecha = utils.Dia(fecha)
	start, end := utils.RangoDia(fecha)

	resumen := &ResumenDiaDTO{Fecha: fecha}

	// Total de clientes activos
	if err := s.db.Model(&models.Cliente{}).
		Where("cancelado = ?", false).
		Count(&resumen.TotalClientesActivos).Error; err != nil {
		return nil, errors.New("error al contar los clientes activos")
	}

	// Total de abonos del día
	totalAbonos, err := s.SumarAbonos(start, end)
	if err != nil {
		return nil, err
	}
	resumen.TotalAbonos = totalAbonos

	// Total de préstamos del día, desde la tabla de préstamos y solo de
	// clientes activos
	if err := s.db.Model(&models.Prestamo{}).
		Joins("JOIN clientes ON clientes.id = prestamos.cliente_id").
		Where("clientes.cancelado = ? AND prestamos.fecha >= ? AND prestamos.fecha < ?", false, start, end).
		Select("COALESCE(SUM(prestamos.monto), 0)").
		Scan(&resumen.TotalPrestamos).Error; err != nil {
		return nil, errors.New("error al sumar los préstamos del día")
	}

	// Entradas manuales, salidas y gastos del día
	if resumen.TotalEntradas, err = s.SumarMovimientos(models.MovimientoEntradaManual, start, end); err != nil {
		return nil, err
	}
	if resumen.TotalSalidas, err = s.SumarMovimientos(models.MovimientoSalida, start, end); err != nil {
		return nil, err
	}
	if resumen.TotalGastos, err = s.SumarMovimientos(models.MovimientoGasto, start, end); err != nil {
		return nil, err
	}

	// Caja total del día
	resumen.CajaTotal = resumen.TotalAbonos + resumen.TotalEntradas -
		(resumen.TotalPrestamos + resumen.TotalSalidas + resumen.TotalGastos)

	return resumen, nil
}
