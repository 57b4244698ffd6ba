package services

import (
	"testing"

	"creditosSystem/config"
	"creditosSystem/models"
	"creditosSystem/utils"
)

// Sin destinatario configurado las notificaciones no intentan conectar al
// servidor SMTP y terminan sin error.
func TestNotificacionesSinDestinatario(t *testing.T) {
	cfg := &config.Config{}
	email := NewEmailService(cfg)

	liq := &models.Liquidacion{
		Fecha:        utils.FechaLocal(),
		Entradas:     150,
		EntradasCaja: 50,
		PrestamosHoy: 300,
		CajaManual:   1000,
		Caja:         900,
	}
	if err := email.SendResumenLiquidacion(liq); err != nil {
		t.Errorf("Sin destinatario el resumen no debe fallar: %v", err)
	}

	cliente := &models.Cliente{Codigo: "500001", Nombre: "Marta"}
	if err := email.SendClienteCancelado(cliente); err != nil {
		t.Errorf("Sin destinatario la cancelación no debe fallar: %v", err)
	}
}
