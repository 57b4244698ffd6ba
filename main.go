package main

import (
	"creditosSystem/config"
	"creditosSystem/controllers"
	"creditosSystem/database"
	"creditosSystem/middleware"
	"creditosSystem/services"
	"creditosSystem/utils"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/mux"
)

func main() {
	// Cargamos la configuración
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatalf("Error al cargar la configuración: %v", err)
	}

	// Zona horaria del negocio
	if err := utils.ConfigurarZona(cfg.App.Timezone); err != nil {
		log.Printf("Zona horaria %s no disponible, se usa la del sistema: %v", cfg.App.Timezone, err)
	}

	// Conexión a la base de datos
	db, err := database.NewDatabase(cfg)
	if err != nil {
		log.Fatalf("Error al conectar con la base de datos: %v", err)
	}
	defer db.Close()

	// Usuario inicial para el login
	if err := database.SeedUsuario(db.DB, cfg.App.Usuario, cfg.App.Password); err != nil {
		log.Fatalf("Error al crear el usuario inicial: %v", err)
	}

	// Servicios
	emailService := services.NewEmailService(cfg)
	liquidacionService := services.NewLiquidacionService(db.DB)
	cajaService := services.NewCajaService(db.DB, liquidacionService)
	clienteService := services.NewClienteService(db.DB, liquidacionService, emailService)
	abonoService := services.NewAbonoService(db.DB, liquidacionService, emailService)
	reporteService := services.NewReporteService(db.DB, liquidacionService)

	// Controladores
	authController := controllers.NewAuthController(db, cfg)
	clienteController := controllers.NewClienteController(clienteService)
	abonoController := controllers.NewAbonoController(abonoService)
	cajaController := controllers.NewCajaController(cajaService, liquidacionService, emailService)
	reporteController := controllers.NewReporteController(reporteService)

	router := mux.NewRouter()

	// Middleware global
	limiter := utils.NewRateLimiter(100, time.Minute)
	router.Use(middleware.RecoveryMiddleware)
	router.Use(middleware.CORSMiddleware)
	router.Use(middleware.LoggingMiddleware)
	router.Use(middleware.MetricsMiddleware)
	router.Use(middleware.RateLimitMiddleware(limiter))

	// Ruta pública
	router.HandleFunc("/api/auth/login", authController.Login).Methods("POST", "OPTIONS")

	// Rutas protegidas
	api := router.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware([]byte(authController.GetJWTKey())))

	// Clientes
	api.HandleFunc("/clientes", clienteController.CrearCliente).Methods("POST")
	api.HandleFunc("/clientes", clienteController.ListarActivos).Methods("GET")
	api.HandleFunc("/clientes/cancelados", clienteController.ListarCancelados).Methods("GET")
	api.HandleFunc("/clientes/codigo", clienteController.GenerarCodigo).Methods("GET")
	api.HandleFunc("/clientes/{id:[0-9]+}", clienteController.EliminarCliente).Methods("DELETE")
	api.HandleFunc("/clientes/{id:[0-9]+}/reactivar", clienteController.ReactivarCliente).Methods("POST")
	api.HandleFunc("/clientes/{id:[0-9]+}/reparar", clienteController.RepararCliente).Methods("POST")
	api.HandleFunc("/clientes/{id:[0-9]+}/orden", clienteController.ActualizarOrden).Methods("PUT")
	api.HandleFunc("/clientes/{id:[0-9]+}/prestamos", clienteController.OtorgarPrestamo).Methods("POST")
	api.HandleFunc("/clientes/{id:[0-9]+}/prestamo", clienteController.ObtenerPrestamo).Methods("GET")
	api.HandleFunc("/clientes/{id:[0-9]+}/prestamo", clienteController.EditarPrestamo).Methods("PUT")

	// Abonos
	api.HandleFunc("/clientes/{id:[0-9]+}/abonos", abonoController.RegistrarDirecto).Methods("POST")
	api.HandleFunc("/clientes/{id:[0-9]+}/abonos", abonoController.Historial).Methods("GET")
	api.HandleFunc("/abonos", abonoController.RegistrarPorCodigo).Methods("POST")
	api.HandleFunc("/abonos/{id:[0-9]+}", abonoController.Eliminar).Methods("DELETE")

	// Caja: las rutas fijas van antes que la genérica por tipo
	api.HandleFunc("/caja/verificar", cajaController.VerificarCaja).Methods("GET")
	api.HandleFunc("/caja/reparar", cajaController.RepararCaja).Methods("POST")
	api.HandleFunc("/caja/movimientos/{id:[0-9]+}", cajaController.EliminarMovimiento).Methods("DELETE")
	api.HandleFunc("/caja/{tipo}", cajaController.RegistrarMovimiento).Methods("POST")

	// Liquidación y tablero
	api.HandleFunc("/liquidacion", cajaController.LiquidacionDelDia).Methods("GET")
	api.HandleFunc("/liquidacion/enviar", cajaController.EnviarLiquidacion).Methods("POST")
	api.HandleFunc("/liquidaciones", cajaController.Liquidaciones).Methods("GET")
	api.HandleFunc("/dashboard", cajaController.Dashboard).Methods("GET")
	api.HandleFunc("/estado", cajaController.Estado).Methods("GET")

	// Reportes
	api.HandleFunc("/reportes/movimientos/{tipo}/{fecha}", reporteController.MovimientosPorDia).Methods("GET")
	api.HandleFunc("/reportes/prestamos/{fecha}", reporteController.PrestamosPorDia).Methods("GET")
	api.HandleFunc("/reportes/liquidaciones.xml", reporteController.LiquidacionesXML).Methods("GET")

	// Mantenimiento
	api.HandleFunc("/admin/reconstruir_prestamos", cajaController.ReconstruirPrestamos).Methods("POST")

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	log.Printf("Servidor escuchando en %s", addr)
	if err := http.ListenAndServe(addr, router); err != nil {
		log.Fatalf("Error del servidor: %v", err)
	}
}
