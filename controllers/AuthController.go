package controllers

import (
	"creditosSystem/config"
	"creditosSystem/database"
	"creditosSystem/services"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/golang-jwt/jwt/v5"
)

type AuthController struct {
	usuarios *services.UsuarioService
	validate *validator.Validate
	config   *config.Config
}

type LoginRequest struct {
	Usuario string `json:"usuario" validate:"required"`
	Clave   string `json:"clave" validate:"required"`
}

type LoginResponse struct {
	Token   string `json:"token"`
	Usuario string `json:"usuario"`
}

type Claims struct {
	UsuarioID uint   `json:"usuario_id"`
	Nombre    string `json:"nombre"`
	jwt.RegisteredClaims
}

func NewAuthController(db *database.Database, cfg *config.Config) *AuthController {
	return &AuthController{
		usuarios: services.NewUsuarioService(db.GetDB()),
		validate: validator.New(),
		config:   cfg,
	}
}

// Login autentica al usuario y entrega un token JWT
func (c *AuthController) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Método no permitido", http.StatusMethodNotAllowed)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Cuerpo de la petición inválido", http.StatusBadRequest)
		return
	}

	if err := c.validate.Struct(req); err != nil {
		http.Error(w, "Debe indicar usuario y clave", http.StatusBadRequest)
		return
	}

	usuario, err := c.usuarios.Autenticar(req.Usuario, req.Clave)
	if err != nil {
		http.Error(w, "Usuario o clave incorrectos", http.StatusUnauthorized)
		return
	}

	expiracion := time.Now().Add(time.Duration(c.config.JWT.ExpiresIn) * time.Hour)
	claims := &Claims{
		UsuarioID: usuario.ID,
		Nombre:    usuario.Nombre,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expiracion),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(c.config.JWT.SecretKey))
	if err != nil {
		http.Error(w, "No fue posible generar el token", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(LoginResponse{
		Token:   tokenString,
		Usuario: usuario.Nombre,
	})
}

// GetJWTKey devuelve la clave de firma para el middleware
func (c *AuthController) GetJWTKey() string {
	return c.config.JWT.SecretKey
}
