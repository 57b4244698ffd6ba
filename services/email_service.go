package services

import (
	"creditosSystem/config"
	"creditosSystem/models"
	"creditosSystem/utils"
	"fmt"

	"gopkg.in/gomail.v2"
)

// EmailService provee métodos para enviar notificaciones por correo al
// dueño del negocio. Si no hay destinatario configurado no envía nada.
type EmailService struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmailService crea una nueva instancia de EmailService
func NewEmailService(cfg *config.Config) *EmailService {
	dialer := gomail.NewDialer(
		cfg.SMTP.Host,
		cfg.SMTP.Port,
		cfg.SMTP.Username,
		cfg.SMTP.Password,
	)

	return &EmailService{
		dialer: dialer,
		from:   cfg.SMTP.From,
		to:     cfg.App.NotificarA,
	}
}

// SendEmail envía un correo al destinatario configurado
func (s *EmailService) SendEmail(subject, body string) error {
	if s.to == "" {
		return nil
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", s.to)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("error al enviar el correo: %v", err)
	}

	return nil
}

// SendClienteCancelado notifica que un cliente quedó con saldo en cero y
// pasó a cancelados
func (s *EmailService) SendClienteCancelado(cliente *models.Cliente) error {
	subject := "Cliente cancelado"
	body := fmt.Sprintf(`
		<h2>Cliente cancelado</h2>
		<p>Código: %s</p>
		<p>Nombre: %s</p>
		<p>Fecha: %s</p>
		<p>El cliente quedó con saldo en cero y fue movido a cancelados.</p>
	`, cliente.Codigo, cliente.Nombre, utils.HoraActual().Format("02-01-2006 15:04:05"))

	return s.SendEmail(subject, body)
}

// SendResumenLiquidacion envía el cierre de caja del día
func (s *EmailService) SendResumenLiquidacion(liq *models.Liquidacion) error {
	subject := fmt.Sprintf("Liquidación del %s", liq.Fecha.Format("02-01-2006"))
	body := fmt.Sprintf(`
		<h2>Liquidación del %s</h2>
		<p>Abonos: %.2f</p>
		<p>Entradas manuales: %.2f</p>
		<p>Préstamos del día: %.2f</p>
		<p>Salidas: %.2f</p>
		<p>Gastos: %.2f</p>
		<p>Caja anterior: %.2f</p>
		<p><b>Caja de cierre: %.2f</b></p>
	`, liq.Fecha.Format("02-01-2006"), liq.Entradas, liq.EntradasCaja,
		liq.PrestamosHoy, liq.Salidas, liq.Gastos, liq.CajaManual, liq.Caja)

	return s.SendEmail(subject, body)
}
