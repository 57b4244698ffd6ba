package middleware

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

type LoggingResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (lrw *LoggingResponseWriter) WriteHeader(code int) {
	lrw.statusCode = code
	lrw.ResponseWriter.WriteHeader(code)
}

// LoggingMiddleware registra método, ruta, estado y duración de cada
// petición
func LoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		lrw := &LoggingResponseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		next.ServeHTTP(lrw, r)

		duracion := time.Since(start)
		log.Printf(
			"Método: %s, Ruta: %s, Estado: %d, Duración: %v",
			r.Method,
			r.URL.Path,
			lrw.statusCode,
			duracion,
		)
	})
}

// AuthMiddleware valida el token JWT y deja los datos del usuario en el
// contexto de la petición
func AuthMiddleware(jwtKey []byte) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tokenString := r.Header.Get("Authorization")
			if tokenString == "" {
				http.Error(w, "Se requiere el encabezado Authorization", http.StatusUnauthorized)
				return
			}

			if len(tokenString) > 7 && tokenString[:7] == "Bearer " {
				tokenString = tokenString[7:]
			}

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("método de firma inesperado: %v", token.Header["alg"])
				}
				return jwtKey, nil
			})

			if err != nil {
				http.Error(w, "Token inválido", http.StatusUnauthorized)
				return
			}

			if claims, ok := token.Claims.(jwt.MapClaims); ok && token.Valid {
				usuarioID, ok := claims["usuario_id"].(float64)
				if !ok {
					http.Error(w, "El token no contiene usuario_id", http.StatusUnauthorized)
					return
				}

				r.Header.Set("X-Usuario-ID", strconv.FormatUint(uint64(usuarioID), 10))

				ctx := r.Context()
				ctx = context.WithValue(ctx, "usuario_id", uint(usuarioID))
				if nombre, ok := claims["nombre"].(string); ok {
					ctx = context.WithValue(ctx, "nombre", nombre)
				}
				r = r.WithContext(ctx)
			} else {
				http.Error(w, "Claims del token inválidos", http.StatusUnauthorized)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// GetUsuarioFromContext obtiene el usuario autenticado desde el contexto
func GetUsuarioFromContext(r *http.Request) (uint, string, error) {
	usuarioID, ok := r.Context().Value("usuario_id").(uint)
	if !ok {
		return 0, "", fmt.Errorf("no hay usuario_id en el contexto")
	}

	nombre, _ := r.Context().Value("nombre").(string)
	return usuarioID, nombre, nil
}
