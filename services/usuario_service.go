package services

import (
	"creditosSystem/models"
	"errors"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type UsuarioService struct {
	db *gorm.DB
}

type CrearUsuarioRequest struct {
	Nombre   string `json:"nombre" validate:"required,min=3,max=50"`
	Password string `json:"password" validate:"required,min=6"`
}

func NewUsuarioService(db *gorm.DB) *UsuarioService {
	return &UsuarioService{db: db}
}

// CrearUsuarioInterno crea un usuario con la contraseña hasheada
func (s *UsuarioService) CrearUsuarioInterno(req CrearUsuarioRequest) (*models.Usuario, error) {
	var existente models.Usuario
	if err := s.db.Where("LOWER(nombre) = LOWER(?)", req.Nombre).First(&existente).Error; err == nil {
		return nil, errors.New("ya existe un usuario con ese nombre")
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, err
	}

	usuario := &models.Usuario{
		Nombre:   req.Nombre,
		Password: string(hash),
	}

	if err := s.db.Create(usuario).Error; err != nil {
		return nil, err
	}

	return usuario, nil
}

// FindByNombre busca un usuario por nombre, ignorando mayúsculas y espacios
func (s *UsuarioService) FindByNombre(nombre string) (*models.Usuario, error) {
	var usuario models.Usuario
	if err := s.db.Where("LOWER(TRIM(nombre)) = LOWER(TRIM(?))", nombre).First(&usuario).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New("usuario no encontrado")
		}
		return nil, err
	}
	return &usuario, nil
}

// Autenticar verifica las credenciales y devuelve el usuario
func (s *UsuarioService) Autenticar(nombre, password string) (*models.Usuario, error) {
	usuario, err := s.FindByNombre(nombre)
	if err != nil {
		return nil, errors.New("usuario o clave incorrectos")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(usuario.Password), []byte(password)); err != nil {
		return nil, errors.New("usuario o clave incorrectos")
	}

	return usuario, nil
}
