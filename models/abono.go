package models

import (
	"time"
)

// Abono representa un pago en cuota contra un préstamo
type Abono struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	PrestamoID uint      `gorm:"column:prestamo_id;not null;index"`
	Prestamo   *Prestamo `gorm:"foreignKey:PrestamoID"`
	Monto      float64   `gorm:"column:monto;not null"`
	Fecha      time.Time `gorm:"column:fecha"`
}

func (Abono) TableName() string {
	return "abonos"
}
