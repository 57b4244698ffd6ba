package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config representa la configuración de la aplicación. Se construye una sola
// vez en main y se pasa explícitamente a los componentes que la necesitan.
type Config struct {
	Server struct {
		Port int
	}
	DB struct {
		Host     string
		Port     int
		User     string
		Password string
		DBName   string
	}
	JWT struct {
		SecretKey string
		ExpiresIn int // en horas
	}
	SMTP struct {
		Host     string
		Port     int
		Username string
		Password string
		From     string
	}
	App struct {
		Usuario    string // Operador inicial del sistema
		Password   string
		Timezone   string // Zona horaria local del negocio
		NotificarA string // Correo del dueño para notificaciones; vacío = sin notificaciones
	}
}

// NewConfig crea una nueva instancia de configuración leída del entorno
func NewConfig() (*Config, error) {
	v := viper.New()
	v.AutomaticEnv()

	// Valores por defecto
	v.SetDefault("SERVER_PORT", 8080)
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "creditos_db")
	v.SetDefault("JWT_SECRET_KEY", "your-secret-key-here")
	v.SetDefault("JWT_EXPIRES_IN", 24)
	v.SetDefault("SMTP_HOST", "smtp.gmail.com")
	v.SetDefault("SMTP_PORT", 587)
	v.SetDefault("SMTP_USERNAME", "")
	v.SetDefault("SMTP_PASSWORD", "")
	v.SetDefault("SMTP_FROM", "")
	v.SetDefault("APP_USER", "admin")
	v.SetDefault("APP_PASS", "admin123")
	v.SetDefault("APP_TIMEZONE", "America/Santiago")
	v.SetDefault("NOTIFY_EMAIL", "")

	cfg := &Config{}

	// Configuración del servidor
	cfg.Server.Port = v.GetInt("SERVER_PORT")
	if cfg.Server.Port <= 0 {
		return nil, fmt.Errorf("puerto del servidor inválido: %d", cfg.Server.Port)
	}

	// Configuración de la base de datos
	cfg.DB.Host = v.GetString("DB_HOST")
	cfg.DB.Port = v.GetInt("DB_PORT")
	if cfg.DB.Port <= 0 {
		return nil, fmt.Errorf("puerto de la base de datos inválido: %d", cfg.DB.Port)
	}
	cfg.DB.User = v.GetString("DB_USER")
	cfg.DB.Password = v.GetString("DB_PASSWORD")
	cfg.DB.DBName = v.GetString("DB_NAME")

	// Configuración JWT
	cfg.JWT.SecretKey = v.GetString("JWT_SECRET_KEY")
	cfg.JWT.ExpiresIn = v.GetInt("JWT_EXPIRES_IN")
	if cfg.JWT.ExpiresIn <= 0 {
		return nil, fmt.Errorf("tiempo de vida del JWT inválido: %d", cfg.JWT.ExpiresIn)
	}

	// Configuración SMTP
	cfg.SMTP.Host = v.GetString("SMTP_HOST")
	cfg.SMTP.Port = v.GetInt("SMTP_PORT")
	cfg.SMTP.Username = v.GetString("SMTP_USERNAME")
	cfg.SMTP.Password = v.GetString("SMTP_PASSWORD")
	cfg.SMTP.From = v.GetString("SMTP_FROM")

	// Configuración de la aplicación
	cfg.App.Usuario = v.GetString("APP_USER")
	cfg.App.Password = v.GetString("APP_PASS")
	cfg.App.Timezone = v.GetString("APP_TIMEZONE")
	cfg.App.NotificarA = v.GetString("NOTIFY_EMAIL")

	return cfg, nil
}
