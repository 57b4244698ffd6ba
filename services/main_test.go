package services

import (
	"creditosSystem/database"
	"creditosSystem/models"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "test.db")
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("No se pudo abrir la base de datos de prueba: %v", err)
	}

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("No se pudo migrar la base de datos de prueba: %v", err)
	}

	return db
}

// crearClientePrueba inserta un cliente con un préstamo en la fecha indicada,
// sin pasar por el servicio, para armar escenarios con fechas pasadas
func crearClientePrueba(t *testing.T, db *gorm.DB, codigo, nombre string, monto, interes float64, plazo int, frecuencia models.Frecuencia, fecha time.Time) (*models.Cliente, *models.Prestamo) {
	t.Helper()

	cliente := &models.Cliente{
		Codigo:        codigo,
		Nombre:        nombre,
		FechaCreacion: fecha,
	}
	if err := db.Create(cliente).Error; err != nil {
		t.Fatalf("No se pudo crear el cliente de prueba: %v", err)
	}

	prestamo := &models.Prestamo{
		ClienteID:  cliente.ID,
		Monto:      monto,
		Interes:    interes,
		Plazo:      plazo,
		Frecuencia: frecuencia,
		Fecha:      fecha,
	}
	prestamo.Saldo = prestamo.SaldoInicial()
	if err := db.Create(prestamo).Error; err != nil {
		t.Fatalf("No se pudo crear el préstamo de prueba: %v", err)
	}

	cliente.Saldo = prestamo.Saldo
	if err := db.Model(cliente).Update("saldo", cliente.Saldo).Error; err != nil {
		t.Fatalf("No se pudo actualizar el saldo de prueba: %v", err)
	}

	return cliente, prestamo
}

func crearMovimientoPrueba(t *testing.T, db *gorm.DB, tipo models.TipoMovimiento, monto float64, descripcion string, fecha time.Time) *models.MovimientoCaja {
	t.Helper()

	movimiento := &models.MovimientoCaja{
		Tipo:        tipo,
		Monto:       monto,
		Descripcion: descripcion,
		Fecha:       fecha,
	}
	if err := db.Create(movimiento).Error; err != nil {
		t.Fatalf("No se pudo crear el movimiento de prueba: %v", err)
	}
	return movimiento
}

func crearAbonoPrueba(t *testing.T, db *gorm.DB, prestamoID uint, monto float64, fecha time.Time) *models.Abono {
	t.Helper()

	abono := &models.Abono{
		PrestamoID: prestamoID,
		Monto:      monto,
		Fecha:      fecha,
	}
	if err := db.Create(abono).Error; err != nil {
		t.Fatalf("No se pudo crear el abono de prueba: %v", err)
	}
	return abono
}
