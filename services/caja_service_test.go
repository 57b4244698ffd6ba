package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"testing"
	"time"

	"gorm.io/gorm"
)

func nuevoCajaService(db *gorm.DB) (*CajaService, *LiquidacionService) {
	liq := NewLiquidacionService(db)
	return NewCajaService(db, liq), liq
}

func TestRegistrarMovimientoActualizaLiquidacion(t *testing.T) {
	db := setupTestDB(t)
	caja, liq := nuevoCajaService(db)

	movimiento, err := caja.RegistrarMovimiento(models.MovimientoEntradaManual, 500, "Aporte de socio", time.Time{})
	if err != nil {
		t.Fatalf("Error al registrar el movimiento: %v", err)
	}
	if movimiento.ID == 0 {
		t.Fatal("El movimiento debe quedar persistido")
	}

	liquidacion, err := liq.ObtenerLiquidacion(utils.FechaLocal())
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.EntradasCaja, 500) || !casiIgual(liquidacion.Caja, 500) {
		t.Errorf("La liquidación debe reflejar la entrada: %+v", liquidacion)
	}
}

func TestRegistrarMovimientoValidaciones(t *testing.T) {
	db := setupTestDB(t)
	caja, _ := nuevoCajaService(db)

	casos := []struct {
		nombre      string
		tipo        models.TipoMovimiento
		monto       float64
		descripcion string
	}{
		{"tipo préstamo reservado", models.MovimientoPrestamo, 100, "Entrega directa"},
		{"tipo desconocido", models.TipoMovimiento("transferencia"), 100, "Giro"},
		{"monto en cero", models.MovimientoGasto, 0, "Papelería"},
		{"monto negativo", models.MovimientoGasto, -50, "Papelería"},
		{"sin descripción", models.MovimientoGasto, 100, "   "},
		{"salida que menciona préstamo", models.MovimientoSalida, 100, "Salida por prestamo a Juan"},
	}

	for _, caso := range casos {
		if _, err := caja.RegistrarMovimiento(caso.tipo, caso.monto, caso.descripcion, time.Time{}); err == nil {
			t.Errorf("%s: el movimiento debe rechazarse", caso.nombre)
		}
	}
}

func TestEliminarMovimientoRecalculaDia(t *testing.T) {
	db := setupTestDB(t)
	caja, liq := nuevoCajaService(db)

	movimiento, err := caja.RegistrarMovimiento(models.MovimientoGasto, 300, "Combustible", time.Time{})
	if err != nil {
		t.Fatal(err)
	}

	if err := caja.EliminarMovimiento(movimiento.ID); err != nil {
		t.Fatalf("Error al eliminar el movimiento: %v", err)
	}

	liquidacion, err := liq.ObtenerLiquidacion(utils.FechaLocal())
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.Gastos, 0) || !casiIgual(liquidacion.Caja, 0) {
		t.Errorf("La liquidación debe recalcularse sin el gasto: %+v", liquidacion)
	}
}

func TestEliminarMovimientoPrestamoRechazado(t *testing.T) {
	db := setupTestDB(t)
	caja, _ := nuevoCajaService(db)

	movimiento := crearMovimientoPrueba(t, db, models.MovimientoPrestamo, 1000, "Prestamo a Juan", utils.HoraActual())
	if err := caja.EliminarMovimiento(movimiento.ID); err == nil {
		t.Error("Los movimientos de préstamo no se eliminan por caja")
	}
}

func TestObtenerResumenTotal(t *testing.T) {
	db := setupTestDB(t)
	caja, _ := nuevoCajaService(db)

	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 1000, "Base inicial", utils.HoraActual())
	crearMovimientoPrueba(t, db, models.MovimientoSalida, 200, "Retiro", utils.HoraActual())
	crearMovimientoPrueba(t, db, models.MovimientoGasto, 100, "Papeleria", utils.HoraActual())
	// Los desembolsos no tocan la caja total: salen de la cartera
	crearMovimientoPrueba(t, db, models.MovimientoPrestamo, 400, "Prestamo a Juan", utils.HoraActual())

	crearClientePrueba(t, db, "500001", "Juan", 400, 10, 30, models.FrecuenciaDiaria, utils.FechaLocal())
	cancelado, prestamoViejo := crearClientePrueba(t, db, "500002", "Vieja", 100, 0, 30, models.FrecuenciaDiaria, utils.FechaLocal())
	db.Model(cancelado).Update("cancelado", true)
	db.Model(prestamoViejo).Update("saldo", 60.0)

	resumen, err := caja.ObtenerResumenTotal()
	if err != nil {
		t.Fatalf("Error al calcular el resumen: %v", err)
	}

	if !casiIgual(resumen.CajaTotal, 700) {
		t.Errorf("La caja total debe ser 1000-200-100=700, se obtuvo %.2f", resumen.CajaTotal)
	}
	// La cartera suma los saldos de todos los préstamos, incluso de cancelados
	if !casiIgual(resumen.CarteraTotal, 500) {
		t.Errorf("La cartera debe ser 440+60=500, se obtuvo %.2f", resumen.CarteraTotal)
	}
}

func TestRepararCajaEliminaAbonosMalClasificados(t *testing.T) {
	db := setupTestDB(t)
	caja, liq := nuevoCajaService(db)

	ayer := utils.HoraActual().AddDate(0, 0, -1)
	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 150, "Abono de Juan", utils.HoraActual())
	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 80, "abono cliente 500003", ayer)
	legitimo := crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 1000, "Base inicial", utils.HoraActual())

	total, err := caja.ContarAbonosMalClasificados()
	if err != nil {
		t.Fatal(err)
	}
	if total != 2 {
		t.Fatalf("Deben detectarse 2 movimientos sospechosos, se obtuvo %d", total)
	}

	eliminados, err := caja.RepararCaja()
	if err != nil {
		t.Fatalf("Error al reparar la caja: %v", err)
	}
	if eliminados != 2 {
		t.Errorf("Deben eliminarse 2 movimientos, se obtuvo %d", eliminados)
	}

	var restantes []models.MovimientoCaja
	db.Find(&restantes)
	if len(restantes) != 1 || restantes[0].ID != legitimo.ID {
		t.Errorf("Solo debe quedar la entrada legítima: %+v", restantes)
	}

	liquidacion, err := liq.ObtenerLiquidacion(utils.FechaLocal())
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.EntradasCaja, 1000) {
		t.Errorf("La liquidación de hoy debe recalcularse: %+v", liquidacion)
	}

	liquidacionAyer, err := liq.ObtenerLiquidacion(utils.Dia(ayer))
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacionAyer.EntradasCaja, 0) {
		t.Errorf("La liquidación de ayer también debe recalcularse: %+v", liquidacionAyer)
	}
}

func TestReconstruirMovimientosPrestamos(t *testing.T) {
	db := setupTestDB(t)
	caja, liq := nuevoCajaService(db)

	hace5Dias := utils.FechaLocal().AddDate(0, 0, -5)
	crearClientePrueba(t, db, "500004", "Marta", 1000, 10, 30, models.FrecuenciaDiaria, hace5Dias)
	crearClientePrueba(t, db, "500005", "Julio", 600, 0, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	// Un registro suelto de otro préstamo que ya no existe
	crearMovimientoPrueba(t, db, models.MovimientoPrestamo, 999, "Prestamo a Nadie", utils.HoraActual())

	creados, err := caja.ReconstruirMovimientosPrestamos()
	if err != nil {
		t.Fatalf("Error al reconstruir: %v", err)
	}
	if creados != 2 {
		t.Errorf("Deben recrearse 2 movimientos, se obtuvo %d", creados)
	}

	var movimientos []models.MovimientoCaja
	db.Where("tipo = ?", models.MovimientoPrestamo).Order("monto ASC").Find(&movimientos)
	if len(movimientos) != 2 {
		t.Fatalf("Deben quedar exactamente 2 movimientos de préstamo: %+v", movimientos)
	}
	if !casiIgual(movimientos[0].Monto, 600) || !casiIgual(movimientos[1].Monto, 1000) {
		t.Errorf("Los montos deben salir de los préstamos reales: %+v", movimientos)
	}

	liquidacion, err := liq.ObtenerLiquidacion(hace5Dias)
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.PrestamosHoy, 1000) {
		t.Errorf("La liquidación del día del préstamo debe recalcularse: %+v", liquidacion)
	}
}

func TestMovimientosPorRango(t *testing.T) {
	db := setupTestDB(t)
	caja, _ := nuevoCajaService(db)

	hoy := utils.FechaLocal()
	crearMovimientoPrueba(t, db, models.MovimientoEntradaManual, 100, "De hoy", utils.HoraActual())
	crearMovimientoPrueba(t, db, models.MovimientoGasto, 50, "De ayer", utils.HoraActual().AddDate(0, 0, -1))

	inicio, fin := utils.RangoDia(hoy)
	movimientos, err := caja.MovimientosPorRango(inicio, fin)
	if err != nil {
		t.Fatalf("Error al consultar el rango: %v", err)
	}
	if len(movimientos) != 1 || movimientos[0].Descripcion != "De hoy" {
		t.Errorf("Solo debe entrar el movimiento del día: %+v", movimientos)
	}
}
