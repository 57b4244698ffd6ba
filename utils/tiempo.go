package utils

import (
	"log"
	"math"
	"time"
)

// Zona horaria local del negocio. Por defecto hora de Chile; main puede
// cambiarla una sola vez al arrancar según la configuración.
var zonaLocal *time.Location

func init() {
	loc, err := time.LoadLocation("America/Santiago")
	if err != nil {
		log.Printf("No se pudo cargar la zona horaria America/Santiago: %v", err)
		loc = time.Local
	}
	zonaLocal = loc
}

// ConfigurarZona fija la zona horaria local del sistema
func ConfigurarZona(nombre string) error {
	loc, err := time.LoadLocation(nombre)
	if err != nil {
		return err
	}
	zonaLocal = loc
	return nil
}

// HoraActual devuelve la hora local actual
func HoraActual() time.Time {
	return time.Now().In(zonaLocal)
}

// FechaLocal devuelve la fecha local actual (medianoche local)
func FechaLocal() time.Time {
	return Dia(HoraActual())
}

// Dia normaliza un instante a la medianoche local de su fecha
func Dia(t time.Time) time.Time {
	t = t.In(zonaLocal)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, zonaLocal)
}

// RangoDia devuelve el inicio y el fin del día completo de una fecha,
// como ventana semiabierta [inicio, fin)
func RangoDia(fecha time.Time) (time.Time, time.Time) {
	inicio := Dia(fecha)
	fin := inicio.AddDate(0, 0, 1)
	return inicio, fin
}

// Redondear2 redondea un monto a 2 decimales
func Redondear2(monto float64) float64 {
	return math.Round(monto*100) / 100
}
