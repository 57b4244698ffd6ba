package models

import (
	"time"
)

type Cliente struct {
	ID               uint       `gorm:"primaryKey;autoIncrement"`
	Codigo           string     `gorm:"column:codigo;unique;not null;size:50"`
	Nombre           string     `gorm:"column:nombre;not null;size:200"`
	Direccion        string     `gorm:"column:direccion;size:255"`
	Telefono         string     `gorm:"column:telefono;size:50"`
	Orden            int        `gorm:"column:orden"`
	FechaCreacion    time.Time  `gorm:"column:fecha_creacion"`
	Cancelado        bool       `gorm:"column:cancelado;not null;default:false"`
	Saldo            float64    `gorm:"column:saldo;not null;default:0.0"`
	UltimoAbonoFecha *time.Time `gorm:"column:ultimo_abono_fecha"`
	Prestamos        []Prestamo `gorm:"foreignKey:ClienteID"`
}

func (Cliente) TableName() string {
	return "clientes"
}

// EstadoPlazo representa el estado de un cliente respecto al plazo de su último préstamo
type EstadoPlazo string

const (
	EstadoNormal  EstadoPlazo = "normal"  // Dentro del plazo
	EstadoVencido EstadoPlazo = "vencido" // Vencido hace menos de 30 días
	EstadoMoroso  EstadoPlazo = "moroso"  // Vencido hace 30 días o más
)
