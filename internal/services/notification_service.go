// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/bayarlink/bayarlink-backend/internal/config"
	"github.com/bayarlink/bayarlink-backend/internal/models"
)

// NotificationService sends buyer-facing emails. Delivery is best-effort;
// callers fire it from a goroutine and only log failures.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

func NewNotificationService(db *gorm.DB, cfg *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: cfg,
	}
}

const paymentLinkEmailBody = `
<p>Halo {{.CustomerName}},</p>
<p>Berikut link pembayaran untuk <strong>{{.ProductName}}</strong> (Rp {{printf "%.0f" .Price}}):</p>
<p><a href="{{.PaymentURL}}">{{.PaymentURL}}</a></p>
<p>Link ini berlaku sampai {{.ExpiresAt}}. Upload bukti transfer Anda di halaman tersebut.</p>
`

const proofApprovedEmailBody = `
<p>Halo {{.CustomerName}},</p>
<p>Pembayaran Anda untuk <strong>{{.ProductName}}</strong> telah dikonfirmasi.</p>
<p>Download file Anda di sini: <a href="{{.DownloadURL}}">{{.DownloadURL}}</a></p>
`

const proofRejectedEmailBody = `
<p>Halo {{.CustomerName}},</p>
<p>Bukti transfer Anda untuk <strong>{{.ProductName}}</strong> ditolak.</p>
<p>Catatan admin: {{.AdminNotes}}</p>
<p>Silakan upload ulang bukti transfer di <a href="{{.PaymentURL}}">{{.PaymentURL}}</a>.</p>
`

func (s *NotificationService) SendPaymentLinkEmail(link *models.PaymentLink) error {
	product, err := s.productFor(link)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"CustomerName": link.CustomerName,
		"ProductName":  product.Name,
		"Price":        product.Price,
		"PaymentURL":   s.paymentURL(link.Token),
		"ExpiresAt":    link.ExpiresAt.Format("2 January 2006"),
	}

	body, err := renderTemplate(paymentLinkEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Link pembayaran untuk %s", product.Name)
	return s.sendEmail(link.CustomerEmail, subject, body)
}

func (s *NotificationService) SendProofApprovedEmail(link *models.PaymentLink) error {
	product, err := s.productFor(link)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"CustomerName": link.CustomerName,
		"ProductName":  product.Name,
		"DownloadURL":  fmt.Sprintf("%s/download/%s", s.config.Frontend.BaseURL, link.Token),
	}

	body, err := renderTemplate(proofApprovedEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Pembayaran %s dikonfirmasi", product.Name)
	return s.sendEmail(link.CustomerEmail, subject, body)
}

func (s *NotificationService) SendProofRejectedEmail(link *models.PaymentLink, adminNotes string) error {
	product, err := s.productFor(link)
	if err != nil {
		return err
	}

	data := map[string]interface{}{
		"CustomerName": link.CustomerName,
		"ProductName":  product.Name,
		"AdminNotes":   adminNotes,
		"PaymentURL":   s.paymentURL(link.Token),
	}

	body, err := renderTemplate(proofRejectedEmailBody, data)
	if err != nil {
		return fmt.Errorf("failed to render email template: %w", err)
	}

	subject := fmt.Sprintf("Bukti transfer %s ditolak", product.Name)
	return s.sendEmail(link.CustomerEmail, subject, body)
}

func (s *NotificationService) productFor(link *models.PaymentLink) (*models.Product, error) {
	if link.Product.ID != uuid.Nil {
		return &link.Product, nil
	}

	var product models.Product
	if err := s.db.First(&product, "id = ?", link.ProductID).Error; err != nil {
		return nil, fmt.Errorf("failed to load product for email: %w", err)
	}

	return &product, nil
}

func (s *NotificationService) paymentURL(token string) string {
	return fmt.Sprintf("%s/payment/%s", s.config.Frontend.BaseURL, token)
}

func (s *NotificationService) sendEmail(to, subject, body string) error {
	if s.config.Email.SMTPUsername == "" {
		// Email is not configured in local development
		return nil
	}

	from := fmt.Sprintf("%s <%s>", s.config.Email.FromName, s.config.Email.FromEmail)
	msg := []byte(fmt.Sprintf(
		"From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		from, to, subject, body,
	))

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)
	addr := s.config.Email.SMTPHost + ":" + s.config.Email.SMTPPort

	if err := smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

func renderTemplate(tmpl string, data map[string]interface{}) (string, error) {
	t, err := template.New("email").Parse(tmpl)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, data); err != nil {
		return "", err
	}

	return buf.String(), nil
}
