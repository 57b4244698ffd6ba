package models

import (
	"time"
)

// Liquidacion representa el cierre de caja de una fecha calendario.
// Existe a lo más un registro por fecha; se recalcula (sobrescribe) cada vez
// que una operación muta el libro ese día.
type Liquidacion struct {
	ID            uint      `gorm:"primaryKey;autoIncrement"`
	Fecha         time.Time `gorm:"column:fecha;unique;not null"`
	Entradas      float64   `gorm:"column:entradas;not null;default:0.0"`       // Total de abonos del día
	EntradasCaja  float64   `gorm:"column:entradas_caja;not null;default:0.0"`  // Entradas manuales del día
	Salidas       float64   `gorm:"column:salidas;not null;default:0.0"`        // Salidas manuales del día
	Gastos        float64   `gorm:"column:gastos;not null;default:0.0"`         // Gastos del día
	PrestamosHoy  float64   `gorm:"column:prestamos_hoy;not null;default:0.0"`  // Préstamos entregados el día
	CajaManual    float64   `gorm:"column:caja_manual;not null;default:0.0"`    // Caja de cierre del día anterior
	Caja          float64   `gorm:"column:caja;not null;default:0.0"`           // Caja de cierre del día
}

func (Liquidacion) TableName() string {
	return "liquidaciones"
}

// TotalEntradas devuelve todo lo que entró a la caja el día (abonos + entradas manuales)
func (l *Liquidacion) TotalEntradas() float64 {
	return l.Entradas + l.EntradasCaja
}

// TotalSalidas devuelve todo lo que salió de la caja el día
func (l *Liquidacion) TotalSalidas() float64 {
	return l.PrestamosHoy + l.Salidas + l.Gastos
}
