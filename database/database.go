package database

import (
	"creditosSystem/config"
	"creditosSystem/models"
	"errors"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// Database representa la conexión a la base de datos
type Database struct {
	DB *gorm.DB
}

// NewDatabase crea una nueva conexión a la base de datos
func NewDatabase(cfg *config.Config) (*Database, error) {
	db, err := Connect(cfg)
	if err != nil {
		return nil, err
	}
	return &Database{DB: db}, nil
}

// GetDB devuelve la instancia de GORM
func (d *Database) GetDB() *gorm.DB {
	return d.DB
}

// Close cierra la conexión a la base de datos
func (d *Database) Close() error {
	sqlDB, err := d.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// Connect establece la conexión con la base de datos y ejecuta las migraciones
func Connect(cfg *config.Config) (*gorm.DB, error) {
	// Formamos la cadena de conexión
	dsn := fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=disable",
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.DBName,
	)

	// Configuramos el logger
	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Info,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	// Establecemos la conexión
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: newLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("error al conectar con la base de datos: %v", err)
	}

	// Configuramos el pool de conexiones
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("error al obtener el pool de conexiones: %v", err)
	}

	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetMaxOpenConns(100)
	sqlDB.SetConnMaxLifetime(time.Hour)

	// Ejecutamos las migraciones SQL
	if err := runMigrations(cfg); err != nil {
		return nil, fmt.Errorf("error al ejecutar las migraciones SQL: %v", err)
	}

	// Ejecutamos la migración automática de los modelos
	if err := AutoMigrate(db); err != nil {
		return nil, fmt.Errorf("error en la migración automática de modelos: %v", err)
	}

	return db, nil
}

// runMigrations ejecuta las migraciones SQL
func runMigrations(cfg *config.Config) error {
	// Formamos la URL para las migraciones
	dsn := fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		cfg.DB.User,
		cfg.DB.Password,
		cfg.DB.Host,
		cfg.DB.Port,
		cfg.DB.DBName,
	)

	// Creamos la instancia de migración
	m, err := migrate.New(
		"file://migrations",
		dsn,
	)
	if err != nil {
		return fmt.Errorf("error al crear la migración: %v", err)
	}

	// Ejecutamos las migraciones
	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("error al ejecutar las migraciones: %v", err)
	}

	return nil
}

// AutoMigrate ejecuta la migración automática de los modelos
func AutoMigrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Usuario{},
		&models.Cliente{},
		&models.Prestamo{},
		&models.Abono{},
		&models.MovimientoCaja{},
		&models.Liquidacion{},
	)
	if err != nil {
		return fmt.Errorf("error en la migración automática: %v", err)
	}

	return nil
}

// SeedUsuario asegura que el operador exista con su contraseña hasheada
func SeedUsuario(db *gorm.DB, nombre, password string) error {
	var existente models.Usuario
	err := db.Where("nombre = ?", nombre).First(&existente).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	usuario := &models.Usuario{
		Nombre:   nombre,
		Password: string(hash),
	}
	return db.Create(usuario).Error
}
