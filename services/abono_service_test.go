package services

import (
	"creditosSystem/models"
	"creditosSystem/utils"
	"testing"

	"gorm.io/gorm"
)

func nuevoAbonoService(db *gorm.DB) (*AbonoService, *LiquidacionService) {
	liq := NewLiquidacionService(db)
	return NewAbonoService(db, liq, nil), liq
}

func TestRegistrarAbonoPorCodigo(t *testing.T) {
	db := setupTestDB(t)
	abonos, liq := nuevoAbonoService(db)

	crearClientePrueba(t, db, "400001", "Mario", 1000, 10, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	resultado, err := abonos.RegistrarAbonoPorCodigo("400001", 100)
	if err != nil {
		t.Fatalf("Error al registrar el abono: %v", err)
	}

	if !casiIgual(resultado.Saldo, 1000) {
		t.Errorf("El saldo debe bajar de 1100 a 1000, se obtuvo %.2f", resultado.Saldo)
	}
	if resultado.Cancelado {
		t.Error("Con saldo pendiente el préstamo no debe cancelarse")
	}

	var cliente models.Cliente
	db.Where("codigo = ?", "400001").First(&cliente)
	if !casiIgual(cliente.Saldo, 1000) {
		t.Errorf("El saldo del cliente debe actualizarse, se obtuvo %.2f", cliente.Saldo)
	}
	if cliente.UltimoAbonoFecha == nil {
		t.Error("La fecha del último abono debe quedar registrada")
	}

	liquidacion, err := liq.ObtenerLiquidacion(utils.FechaLocal())
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.Entradas, 100) {
		t.Errorf("La liquidación del día debe sumar el abono: %+v", liquidacion)
	}
}

func TestRegistrarAbonoCodigoInexistente(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	if _, err := abonos.RegistrarAbonoPorCodigo("999999", 100); err == nil {
		t.Error("Un código inexistente debe rechazarse")
	}
	if _, err := abonos.RegistrarAbonoPorCodigo("400001", 0); err == nil {
		t.Error("Un abono sin monto debe rechazarse")
	}
}

func TestAbonoCompletoCancelaCliente(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	cliente, prestamo := crearClientePrueba(t, db, "400002", "Elena", 1000, 10, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	resultado, err := abonos.RegistrarAbonoPorCodigo("400002", 1100)
	if err != nil {
		t.Fatalf("Error al registrar el abono: %v", err)
	}

	if !resultado.Cancelado || resultado.Saldo != 0 {
		t.Errorf("Al pagar todo el préstamo debe cancelarse: %+v", resultado)
	}

	var recargado models.Prestamo
	db.First(&recargado, prestamo.ID)
	if recargado.Saldo != 0 {
		t.Errorf("El préstamo debe quedar con saldo cero: %+v", recargado)
	}

	db.First(cliente, cliente.ID)
	if !cliente.Cancelado || cliente.Saldo != 0 {
		t.Errorf("El cliente debe quedar cancelado con saldo cero: %+v", cliente)
	}
}

func TestAbonoAplicaInteresMensual(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	hace40Dias := utils.FechaLocal().AddDate(0, 0, -40)
	_, prestamo := crearClientePrueba(t, db, "400003", "Diego", 1000, 10, 60, models.FrecuenciaMensual, hace40Dias)

	resultado, err := abonos.RegistrarAbonoPorCodigo("400003", 100)
	if err != nil {
		t.Fatalf("Error al registrar el abono: %v", err)
	}

	if !resultado.InteresAplicado {
		t.Fatal("Pasados 30 días debe aplicarse el interés mensual")
	}
	// 1100 + 100 de interés − 100 del abono
	if !casiIgual(resultado.Saldo, 1100) {
		t.Errorf("El saldo con interés mensual debe ser 1100, se obtuvo %.2f", resultado.Saldo)
	}

	var recargado models.Prestamo
	db.First(&recargado, prestamo.ID)
	if recargado.UltimaAplicacionInteres == nil {
		t.Error("La fecha de aplicación del interés debe quedar registrada")
	}

	var movimiento models.MovimientoCaja
	err = db.Where("tipo = ? AND LOWER(descripcion) LIKE ?", models.MovimientoEntradaManual, "%inter%").
		First(&movimiento).Error
	if err != nil {
		t.Fatalf("Debe registrarse el movimiento del interés: %v", err)
	}
	if !casiIgual(movimiento.Monto, 100) {
		t.Errorf("El interés mensual debe ser 100, se obtuvo %.2f", movimiento.Monto)
	}

	// Un segundo abono el mismo día no vuelve a aplicar interés
	resultado, err = abonos.RegistrarAbonoPorCodigo("400003", 100)
	if err != nil {
		t.Fatal(err)
	}
	if resultado.InteresAplicado {
		t.Error("El interés mensual no debe aplicarse dos veces en el mismo período")
	}
}

func TestAbonoNoAplicaInteresAntesDelMes(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	hace20Dias := utils.FechaLocal().AddDate(0, 0, -20)
	crearClientePrueba(t, db, "400004", "Sara", 1000, 10, 60, models.FrecuenciaMensual, hace20Dias)

	resultado, err := abonos.RegistrarAbonoPorCodigo("400004", 100)
	if err != nil {
		t.Fatal(err)
	}
	if resultado.InteresAplicado {
		t.Error("Antes de los 30 días no debe aplicarse interés")
	}
	if !casiIgual(resultado.Saldo, 1000) {
		t.Errorf("El saldo debe ser 1000, se obtuvo %.2f", resultado.Saldo)
	}
}

func TestEliminarAbonoReviertePago(t *testing.T) {
	db := setupTestDB(t)
	abonos, liq := nuevoAbonoService(db)

	cliente, prestamo := crearClientePrueba(t, db, "400005", "Irene", 500, 0, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	if _, err := abonos.RegistrarAbonoPorCodigo("400005", 200); err != nil {
		t.Fatal(err)
	}

	var abono models.Abono
	db.Where("prestamo_id = ?", prestamo.ID).First(&abono)

	resultado, err := abonos.EliminarAbono(abono.ID)
	if err != nil {
		t.Fatalf("Error al eliminar el abono: %v", err)
	}
	if !casiIgual(resultado.Saldo, 500) {
		t.Errorf("El saldo debe volver a 500, se obtuvo %.2f", resultado.Saldo)
	}

	db.First(cliente, cliente.ID)
	if !casiIgual(cliente.Saldo, 500) {
		t.Errorf("El saldo del cliente debe restaurarse, se obtuvo %.2f", cliente.Saldo)
	}

	var total int64
	db.Model(&models.Abono{}).Count(&total)
	if total != 0 {
		t.Errorf("El abono debe eliminarse, quedan %d", total)
	}

	liquidacion, err := liq.ObtenerLiquidacion(utils.FechaLocal())
	if err != nil {
		t.Fatal(err)
	}
	if !casiIgual(liquidacion.Entradas, 0) {
		t.Errorf("La liquidación debe recalcularse sin el abono: %+v", liquidacion)
	}
}

func TestEliminarAbonoReactivaClienteCancelado(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	cliente, prestamo := crearClientePrueba(t, db, "400006", "Oscar", 500, 0, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	resultado, err := abonos.RegistrarAbonoPorCodigo("400006", 500)
	if err != nil {
		t.Fatal(err)
	}
	if !resultado.Cancelado {
		t.Fatal("El pago completo debe cancelar al cliente")
	}

	var abono models.Abono
	db.Where("prestamo_id = ?", prestamo.ID).First(&abono)

	if _, err := abonos.EliminarAbono(abono.ID); err != nil {
		t.Fatalf("Error al eliminar el abono: %v", err)
	}

	var recargado models.Prestamo
	db.First(&recargado, prestamo.ID)
	if !casiIgual(recargado.Saldo, 500) {
		t.Errorf("El saldo debe volver a 500, se obtuvo %.2f", recargado.Saldo)
	}

	db.First(cliente, cliente.ID)
	if cliente.Cancelado {
		t.Error("Al revertir el pago el cliente debe reactivarse")
	}
}

func TestHistorialAbonos(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	cliente, prestamo := crearClientePrueba(t, db, "400007", "Nora", 1000, 10, 30, models.FrecuenciaDiaria, utils.FechaLocal())

	crearAbonoPrueba(t, db, prestamo.ID, 300, utils.HoraActual().AddDate(0, 0, -2))
	crearAbonoPrueba(t, db, prestamo.ID, 200, utils.HoraActual().AddDate(0, 0, -1))

	historial, err := abonos.HistorialAbonos(cliente.ID)
	if err != nil {
		t.Fatalf("Error al consultar el historial: %v", err)
	}

	if len(historial.Abonos) != 2 {
		t.Fatalf("Se esperaban 2 abonos, se obtuvo %d", len(historial.Abonos))
	}
	if !casiIgual(historial.Total, 1100) {
		t.Errorf("El total con interés debe ser 1100, se obtuvo %.2f", historial.Total)
	}
	if !casiIgual(historial.Cuota, 36.67) {
		t.Errorf("La cuota diaria debe ser 36.67, se obtuvo %.2f", historial.Cuota)
	}
	if !casiIgual(historial.Abonos[0].Saldo, 800) {
		t.Errorf("Tras el primer abono el saldo restante debe ser 800, se obtuvo %.2f", historial.Abonos[0].Saldo)
	}
	if !casiIgual(historial.Abonos[1].Saldo, 600) {
		t.Errorf("Tras el segundo abono el saldo restante debe ser 600, se obtuvo %.2f", historial.Abonos[1].Saldo)
	}
}

func TestHistorialAbonosSinPrestamo(t *testing.T) {
	db := setupTestDB(t)
	abonos, _ := nuevoAbonoService(db)

	cliente := &models.Cliente{Codigo: "400008", Nombre: "Vacio"}
	if err := db.Create(cliente).Error; err != nil {
		t.Fatal(err)
	}

	if _, err := abonos.HistorialAbonos(cliente.ID); err == nil {
		t.Error("Sin préstamos el historial debe fallar")
	}
}
