package models

import (
	"errors"
	"time"

	"gorm.io/gorm"
)

// Usuario representa al operador del sistema
type Usuario struct {
	ID        uint      `gorm:"primaryKey;autoIncrement"`
	Nombre    string    `gorm:"column:nombre;unique;not null;size:50"`
	Password  string    `gorm:"column:password;not null;size:100"` // Hash bcrypt
	CreatedAt time.Time `gorm:"column:created_at;default:CURRENT_TIMESTAMP"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP"`
}

func (Usuario) TableName() string {
	return "usuarios"
}

// BeforeCreate hook de validación antes de crear
func (u *Usuario) BeforeCreate(tx *gorm.DB) error {
	if len(u.Nombre) < 2 || len(u.Nombre) > 50 {
		return errors.New("el nombre de usuario debe tener entre 2 y 50 caracteres")
	}
	if u.Password == "" {
		return errors.New("el usuario debe tener una contraseña")
	}
	return nil
}
