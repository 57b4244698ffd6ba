package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"math"
	"testing"
	"time"
)

func casiIgual(a, b float64) bool {
	return math.Abs(a-b) < 0.001
}

func TestActualizarLiquidacionSinDatos(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	fecha := utils.Dia(time.Now().AddDate(0, 0, -5))
	resultado, err := liq.ActualizarLiquidacion(fecha)
	if err != nil {
		t.Fatalf("No se esperaba error con la base vacía: %v", err)
	}

	if resultado.Entradas != 0 || resultado.EntradasCaja != 0 ||
		resultado.Salidas != 0 || resultado.Gastos != 0 ||
		resultado.PrestamosHoy != 0 || resultado.Caja != 0 {
		t.Errorf("Con la base vacía todos los totales deben ser cero: %+v", resultado)
	}
}

func TestActualizarLiquidacionFormula(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	fecha := utils.Dia(time.Now().AddDate(0, 0, -3))
	hora := fecha.Add(10 * time.Hour)

	_, prestamo := crearClientePrueba(t, db, "100001", "Juan", 1000, 10, 30, models.FrecuenciaDiaria, fecha)
	crearAbonoPrueba(t, db, prestamo.ID, 150, hora)
	crearAbonoPrueba(t, db, prestamo.ID, 50, hora.Add(time.Hour))
	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 300, "Aporte de capital", hora)
	crearMovimientoPrueba(t, db, models.MovimientoPrestamo, 1000, "Prestamo a Juan", hora)
	crearMovimientoPrueba(t, db, models.MovimientoSalida, 120, "Retiro del dueno", hora)
	crearMovimientoPrueba(t, db, models.MovimientoGasto, 80, "Combustible", hora)

	resultado, err := liq.ActualizarLiquidacion(fecha)
	if err != nil {
		t.Fatalf("Error al actualizar la liquidación: %v", err)
	}

	if !casiIgual(resultado.Entradas, 200) {
		t.Errorf("Entradas esperadas 200, se obtuvo %.2f", resultado.Entradas)
	}
	if !casiIgual(resultado.EntradasCaja, 300) {
		t.Errorf("Entradas de caja esperadas 300, se obtuvo %.2f", resultado.EntradasCaja)
	}
	if !casiIgual(resultado.PrestamosHoy, 1000) {
		t.Errorf("Préstamos esperados 1000, se obtuvo %.2f", resultado.PrestamosHoy)
	}
	if !casiIgual(resultado.Salidas, 120) {
		t.Errorf("Salidas esperadas 120, se obtuvo %.2f", resultado.Salidas)
	}
	if !casiIgual(resultado.Gastos, 80) {
		t.Errorf("Gastos esperados 80, se obtuvo %.2f", resultado.Gastos)
	}

	// caja = anterior + entradas - (prestamos + salidas + gastos)
	esperado := 0 + (200 + 300) - (1000 + 120 + 80)
	if !casiIgual(resultado.Caja, float64(esperado)) {
		t.Errorf("Caja esperada %.2f, se obtuvo %.2f", float64(esperado), resultado.Caja)
	}

	// Recalcular con los mismos datos no debe cambiar nada ni duplicar filas
	otraVez, err := liq.ActualizarLiquidacion(fecha)
	if err != nil {
		t.Fatalf("Error al recalcular la liquidación: %v", err)
	}
	if !casiIgual(otraVez.Caja, resultado.Caja) || otraVez.ID != resultado.ID {
		t.Errorf("El recálculo debe ser idempotente: antes %+v, después %+v", resultado, otraVez)
	}

	var total int64
	db.Model(&models.Liquidacion{}).Count(&total)
	if total != 1 {
		t.Errorf("Debe existir una sola liquidación por fecha, hay %d", total)
	}
}

func TestLiquidacionArrastraCajaAnterior(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	dia1 := utils.Dia(time.Now().AddDate(0, 0, -2))
	dia2 := utils.Dia(time.Now().AddDate(0, 0, -1))

	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 1000, "Apertura", dia1.Add(9*time.Hour))
	if _, err := liq.ActualizarLiquidacion(dia1); err != nil {
		t.Fatalf("Error en el primer día: %v", err)
	}

	crearMovimientoPrueba(t, db, models.MovimientoGasto, 200, "Arriendo", dia2.Add(9*time.Hour))
	resultado, err := liq.ActualizarLiquidacion(dia2)
	if err != nil {
		t.Fatalf("Error en el segundo día: %v", err)
	}

	if !casiIgual(resultado.CajaManual, 1000) {
		t.Errorf("La caja anterior debe ser 1000, se obtuvo %.2f", resultado.CajaManual)
	}
	if !casiIgual(resultado.Caja, 800) {
		t.Errorf("La caja de cierre debe ser 800, se obtuvo %.2f", resultado.Caja)
	}
}

func TestObtenerLiquidacionCreaRegistroVacio(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	dia1 := utils.Dia(time.Now().AddDate(0, 0, -4))
	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 500, "Apertura", dia1.Add(9*time.Hour))
	if _, err := liq.ActualizarLiquidacion(dia1); err != nil {
		t.Fatalf("Error al liquidar el primer día: %v", err)
	}

	// Un día sin movimientos hereda la caja y queda con totales en cero
	dia2 := utils.Dia(time.Now().AddDate(0, 0, -3))
	resultado, err := liq.ObtenerLiquidacion(dia2)
	if err != nil {
		t.Fatalf("Error al obtener la liquidación: %v", err)
	}

	if resultado.Entradas != 0 || resultado.Gastos != 0 {
		t.Errorf("Los totales de un día vacío deben ser cero: %+v", resultado)
	}
	if !casiIgual(resultado.Caja, 500) {
		t.Errorf("La caja debe arrastrar 500, se obtuvo %.2f", resultado.Caja)
	}
}

func TestObtenerLiquidacionesRellenaDiasVacios(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	dia1 := utils.Dia(time.Now().AddDate(0, 0, -6))
	dia3 := utils.Dia(time.Now().AddDate(0, 0, -4))

	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 100, "Apertura", dia1.Add(9*time.Hour))
	crearMovimientoPrueba(t, db, models.MovimientoGasto, 30, "Peaje", dia3.Add(9*time.Hour))
	if _, err := liq.ActualizarLiquidacion(dia1); err != nil {
		t.Fatal(err)
	}
	if _, err := liq.ActualizarLiquidacion(dia3); err != nil {
		t.Fatal(err)
	}

	liquidaciones, totales, err := liq.ObtenerLiquidaciones(dia1, dia3)
	if err != nil {
		t.Fatalf("Error al obtener el rango: %v", err)
	}

	if len(liquidaciones) != 3 {
		t.Fatalf("El rango de 3 días debe traer 3 filas, trajo %d", len(liquidaciones))
	}
	if liquidaciones[1].Entradas != 0 || liquidaciones[1].EntradasCaja != 0 || liquidaciones[1].ID != 0 {
		t.Errorf("El día intermedio debe ser una fila vacía: %+v", liquidaciones[1])
	}
	if !casiIgual(totales.EntradasCaja, 100) || !casiIgual(totales.Gastos, 30) {
		t.Errorf("Totales del rango incorrectos: %+v", totales)
	}

	// El relleno no se persiste
	var total int64
	db.Model(&models.Liquidacion{}).Count(&total)
	if total != 2 {
		t.Errorf("Solo deben existir 2 liquidaciones persistidas, hay %d", total)
	}
}

func TestSumarMovimientosTipoInvalido(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	start, end := utils.RangoDia(time.Now())
	if _, err := liq.SumarMovimientos(models.TipoMovimiento("transferencia"), start, end); err == nil {
		t.Error("Un tipo desconocido debe producir error")
	}
}

func TestResumenDia(t *testing.T) {
	db := setupTestDB(t)
	liq := NewLiquidacionService(db)

	fecha := utils.Dia(time.Now().AddDate(0, 0, -1))
	hora := fecha.Add(12 * time.Hour)

	_, prestamo := crearClientePrueba(t, db, "200001", "Maria", 500, 20, 30, models.FrecuenciaDiaria, fecha)
	crearAbonoPrueba(t, db, prestamo.ID, 60, hora)
	crearMovimientoPrueba(t, db, models.MovimientoSalida, 40, "Retiro", hora)

	resumen, err := liq.ResumenDia(fecha)
	if err != nil {
		t.Fatalf("Error al calcular el resumen: %v", err)
	}

	if resumen.TotalClientesActivos != 1 {
		t.Errorf("Clientes activos esperados 1, se obtuvo %d", resumen.TotalClientesActivos)
	}
	if !casiIgual(resumen.TotalAbonos, 60) {
		t.Errorf("Abonos esperados 60, se obtuvo %.2f", resumen.TotalAbonos)
	}
	if !casiIgual(resumen.TotalPrestamos, 500) {
		t.Errorf("Préstamos esperados 500, se obtuvo %.2f", resumen.TotalPrestamos)
	}
	if !casiIgual(resumen.CajaTotal, 60-(500+40)) {
		t.Errorf("Caja del día esperada %.2f, se obtuvo %.2f", 60-(500.0+40), resumen.CajaTotal)
	}
}
