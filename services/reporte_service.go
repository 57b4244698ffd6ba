package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"errors"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"gorm.io/gorm"
)

// MovimientoReporteFila es una fila del reporte de movimientos de un día
type MovimientoReporteFila struct {
	Fecha       time.Time `json:"fecha"`
	Nombre      string    `json:"nombre,omitempty"`
	Descripcion string    `json:"descripcion,omitempty"`
	Monto       float64   `json:"monto"`
}

// MovimientosReporte agrupa las filas de un tipo de movimiento con su total
type MovimientosReporte struct {
	Tipo   string                  `json:"tipo"`
	Titulo string                  `json:"titulo"`
	Fecha  time.Time               `json:"fecha"`
	Total  float64                 `json:"total"`
	Filas  []MovimientoReporteFila `json:"filas"`
}

// PrestamoReporteFila es una fila del reporte de préstamos de un día
type PrestamoReporteFila struct {
	Nombre string    `json:"nombre"`
	Monto  float64   `json:"monto"`
	Fecha  time.Time `json:"fecha"`
}

// ReporteService provee los reportes diarios y la exportación de
// liquidaciones
type ReporteService struct {
	db  *gorm.DB
	liq *LiquidacionService
}

// NewReporteService crea una nueva instancia de ReporteService
func NewReporteService(db *gorm.DB, liq *LiquidacionService) *ReporteService {
	return &ReporteService{db: db, liq: liq}
}

// MovimientosPorDia devuelve el detalle de un tipo de movimiento en una
// fecha. El tipo "abono" sale de la tabla de abonos con el nombre del
// cliente; el resto, de los movimientos de caja.
func (s *ReporteService) MovimientosPorDia(tipo string, fecha time.Time) (*MovimientosReporte, error) {
	start, end := utils.RangoDia(fecha)
	reporte := &MovimientosReporte{Tipo: tipo, Fecha: utils.Dia(fecha)}

	switch tipo {
	case "abono":
		reporte.Titulo = "Ingresos por abonos"

		rows, err := s.db.Model(&models.Abono{}).
			Joins("JOIN prestamos ON prestamos.id = abonos.prestamo_id").
			Joins("JOIN clientes ON clientes.id = prestamos.cliente_id").
			Where("abonos.fecha >= ? AND abonos.fecha < ?", start, end).
			Select("abonos.fecha AS fecha, clientes.nombre AS nombre, abonos.monto AS monto").
			Order("abonos.fecha DESC").
			Rows()
		if err != nil {
			return nil, errors.New("error al buscar los abonos del día")
		}
		defer rows.Close()

		for rows.Next() {
			var fila MovimientoReporteFila
			if err := rows.Scan(&fila.Fecha, &fila.Nombre, &fila.Monto); err != nil {
				return nil, errors.New("error al leer los abonos del día")
			}
			reporte.Filas = append(reporte.Filas, fila)
			reporte.Total += fila.Monto
		}

	case string(models.MovimientoEntradaManual):
		reporte.Titulo = "Entradas manuales"
		if err := s.filasMovimientos(models.MovimientoEntradaManual, start, end, reporte); err != nil {
			return nil, err
		}

	case string(models.MovimientoSalida):
		reporte.Titulo = "Salidas"
		if err := s.filasMovimientos(models.MovimientoSalida, start, end, reporte); err != nil {
			return nil, err
		}

	case string(models.MovimientoGasto):
		reporte.Titulo = "Gastos"
		if err := s.filasMovimientos(models.MovimientoGasto, start, end, reporte); err != nil {
			return nil, err
		}

	default:
		return nil, errors.New("tipo de movimiento no válido")
	}

	return reporte, nil
}

func (s *ReporteService) filasMovimientos(tipo models.TipoMovimiento, start, end time.Time, reporte *MovimientosReporte) error {
	var movimientos []models.MovimientoCaja
	if err := s.db.Where("tipo = ? AND fecha >= ? AND fecha < ?", tipo, start, end).
		Order("fecha DESC").
		Find(&movimientos).Error; err != nil {
		return errors.New("error al buscar los movimientos del día")
	}

	for _, m := range movimientos {
		reporte.Filas = append(reporte.Filas, MovimientoReporteFila{
			Fecha:       m.Fecha,
			Descripcion: m.Descripcion,
			Monto:       m.Monto,
		})
		reporte.Total += m.Monto
	}
	return nil
}

// PrestamosPorDia devuelve los préstamos otorgados en una fecha a clientes
// activos, con el total del día
func (s *ReporteService) PrestamosPorDia(fecha time.Time) ([]PrestamoReporteFila, float64, error) {
	start, end := utils.RangoDia(fecha)

	rows, err := s.db.Model(&models.Prestamo{}).
		Joins("JOIN clientes ON clientes.id = prestamos.cliente_id").
		Where("clientes.cancelado = ? AND prestamos.fecha >= ? AND prestamos.fecha < ?", false, start, end).
		Select("clientes.nombre AS nombre, prestamos.monto AS monto, prestamos.fecha AS fecha").
		Order("prestamos.fecha DESC").
		Rows()
	if err != nil {
		return nil, 0, errors.New("error al buscar los préstamos del día")
	}
	defer rows.Close()

	var filas []PrestamoReporteFila
	var total float64
	for rows.Next() {
		var fila PrestamoReporteFila
		if err := rows.Scan(&fila.Nombre, &fila.Monto, &fila.Fecha); err != nil {
			return nil, 0, errors.New("error al leer los préstamos del día")
		}
		filas = append(filas, fila)
		total += fila.Monto
	}

	return filas, total, nil
}

// LiquidacionesXML exporta las liquidaciones de un rango como documento XML
// para respaldo o importación en planillas
func (s *ReporteService) LiquidacionesXML(desde, hasta time.Time) ([]byte, error) {
	liquidaciones, totales, err := s.liq.ObtenerLiquidaciones(desde, hasta)
	if err != nil {
		return nil, err
	}

	doc := etree.NewDocument()
	doc.CreateProcInst("xml", `version="1.0" encoding="UTF-8"`)

	raiz := doc.CreateElement("liquidaciones")
	raiz.CreateAttr("desde", utils.Dia(desde).Format("2006-01-02"))
	raiz.CreateAttr("hasta", utils.Dia(hasta).Format("2006-01-02"))

	for _, liq := range liquidaciones {
		e := raiz.CreateElement("liquidacion")
		e.CreateAttr("fecha", liq.Fecha.Format("2006-01-02"))
		e.CreateElement("entradas").SetText(fmt.Sprintf("%.2f", liq.Entradas))
		e.CreateElement("entradas_caja").SetText(fmt.Sprintf("%.2f", liq.EntradasCaja))
		e.CreateElement("prestamos_hoy").SetText(fmt.Sprintf("%.2f", liq.PrestamosHoy))
		e.CreateElement("salidas").SetText(fmt.Sprintf("%.2f", liq.Salidas))
		e.CreateElement("gastos").SetText(fmt.Sprintf("%.2f", liq.Gastos))
		e.CreateElement("caja_anterior").SetText(fmt.Sprintf("%.2f", liq.CajaManual))
		e.CreateElement("caja").SetText(fmt.Sprintf("%.2f", liq.Caja))
	}

	t := raiz.CreateElement("totales")
	t.CreateElement("entradas").SetText(fmt.Sprintf("%.2f", totales.Entradas))
	t.CreateElement("entradas_caja").SetText(fmt.Sprintf("%.2f", totales.EntradasCaja))
	t.CreateElement("prestamos_hoy").SetText(fmt.Sprintf("%.2f", totales.PrestamosHoy))
	t.CreateElement("salidas").SetText(fmt.Sprintf("%.2f", totales.Salidas))
	t.CreateElement("gastos").SetText(fmt.Sprintf("%.2f", totales.Gastos))
	t.CreateElement("caja").SetText(fmt.Sprintf("%.2f", totales.Caja))

	doc.Indent(2)
	return doc.WriteToBytes()
}
