package utils

import (
	"testing"
	"time"
)

func TestDiaNormalizaAMedianoche(t *testing.T) {
	instante := time.Date(2026, 3, 15, 18, 45, 30, 0, zonaLocal)
	dia := Dia(instante)

	if dia.Hour() != 0 || dia.Minute() != 0 || dia.Second() != 0 {
		t.Errorf("El día debe quedar en medianoche: %v", dia)
	}
	if dia.Year() != 2026 || dia.Month() != time.March || dia.Day() != 15 {
		t.Errorf("La fecha no debe cambiar: %v", dia)
	}
}

func TestRangoDiaEsVentanaSemiabierta(t *testing.T) {
	fecha := time.Date(2026, 3, 15, 12, 0, 0, 0, zonaLocal)
	inicio, fin := RangoDia(fecha)

	if !inicio.Equal(Dia(fecha)) {
		t.Errorf("El rango debe empezar en la medianoche del día: %v", inicio)
	}
	if !fin.Equal(inicio.AddDate(0, 0, 1)) {
		t.Errorf("El rango debe terminar en la medianoche siguiente: %v", fin)
	}
}

func TestRedondear2(t *testing.T) {
	casos := []struct {
		entrada  float64
		esperado float64
	}{
		{10.004, 10.00},
		{10.006, 10.01},
		{36.666666, 36.67},
		{-1.234, -1.23},
		{0, 0},
	}

	for _, caso := range casos {
		if resultado := Redondear2(caso.entrada); resultado != caso.esperado {
			t.Errorf("Redondear2(%v) = %v, se esperaba %v", caso.entrada, resultado, caso.esperado)
		}
	}
}

func TestConfigurarZonaInvalida(t *testing.T) {
	if err := ConfigurarZona("Continente/CiudadInexistente"); err == nil {
		t.Error("Una zona horaria inexistente debe rechazarse")
	}
}
