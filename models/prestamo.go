package models

import (
	"time"
)

// Frecuencia representa la frecuencia de pago de un préstamo
type Frecuencia string

const (
	FrecuenciaDiaria    Frecuencia = "diario"
	FrecuenciaSemanal   Frecuencia = "semanal"
	FrecuenciaQuincenal Frecuencia = "quincenal"
	FrecuenciaMensual   Frecuencia = "mensual"
)

// DiasPorPeriodo devuelve los días que dura un período de pago (0 si la frecuencia no se reconoce)
func (f Frecuencia) DiasPorPeriodo() int {
	switch f {
	case FrecuenciaDiaria:
		return 1
	case FrecuenciaSemanal:
		return 7
	case FrecuenciaQuincenal:
		return 15
	case FrecuenciaMensual:
		return 30
	default:
		return 0
	}
}

// EsValida indica si la frecuencia es una de las reconocidas
func (f Frecuencia) EsValida() bool {
	return f.DiasPorPeriodo() != 0
}

// Prestamo representa un desembolso a un cliente
type Prestamo struct {
	ID                      uint       `gorm:"primaryKey;autoIncrement"`
	ClienteID               uint       `gorm:"column:cliente_id;not null;index"`
	Cliente                 *Cliente   `gorm:"foreignKey:ClienteID"`
	Monto                   float64    `gorm:"column:monto;not null"`
	Interes                 float64    `gorm:"column:interes;not null;default:0.0"` // Porcentaje plano, no compuesto
	Plazo                   int        `gorm:"column:plazo"`                        // Plazo en días
	Fecha                   time.Time  `gorm:"column:fecha"`                        // Fecha de otorgamiento
	Saldo                   float64    `gorm:"column:saldo;not null;default:0.0"`
	Frecuencia              Frecuencia `gorm:"column:frecuencia;size:20;default:'diario'"`
	UltimaAplicacionInteres *time.Time `gorm:"column:ultima_aplicacion_interes"` // Solo relevante para frecuencia mensual
	Abonos                  []Abono    `gorm:"foreignKey:PrestamoID;constraint:OnDelete:CASCADE"`
}

func (Prestamo) TableName() string {
	return "prestamos"
}

// SaldoInicial calcula el saldo con interés cargado: monto + monto*interés/100
func (p *Prestamo) SaldoInicial() float64 {
	return p.Monto + p.Monto*p.Interes/100
}

// ValorCuota divide el saldo inicial en el número de cuotas que caben en el
// plazo según la frecuencia (0 si no hay plazo). Sin redondear.
func (p *Prestamo) ValorCuota() float64 {
	if p.Plazo <= 0 {
		return 0
	}

	diasPorPeriodo := p.Frecuencia.DiasPorPeriodo()
	if diasPorPeriodo <= 0 {
		diasPorPeriodo = 1
	}

	numeroCuotas := p.Plazo / diasPorPeriodo
	if numeroCuotas < 1 {
		numeroCuotas = 1
	}
	return p.SaldoInicial() / float64(numeroCuotas)
}
