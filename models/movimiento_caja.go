package models

import (
	"time"
)

// TipoMovimiento representa la categoría de un movimiento de caja
type TipoMovimiento string

const (
	MovimientoEntradaManual TipoMovimiento = "entrada_manual" // Entrada manual de efectivo
	MovimientoSalida        TipoMovimiento = "salida"         // Salida manual de efectivo
	MovimientoGasto         TipoMovimiento = "gasto"          // Gasto
	MovimientoPrestamo      TipoMovimiento = "prestamo"       // Préstamo entregado (registro de caja del desembolso)
)

// MovimientoCaja representa una anotación en el libro de caja
type MovimientoCaja struct {
	ID          uint           `gorm:"primaryKey;autoIncrement"`
	Tipo        TipoMovimiento `gorm:"column:tipo;not null;size:20;index"`
	Monto       float64        `gorm:"column:monto;not null"`
	Descripcion string         `gorm:"column:descripcion;size:255"`
	Fecha       time.Time      `gorm:"column:fecha"`
}

func (MovimientoCaja) TableName() string {
	return "movimientos_caja"
}
