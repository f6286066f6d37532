package notifications

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"io"
	"log"
	"net/http"
	"strings"
	"time"

	config "github.com/anjiri1684/excursion_booking/configs"
	"github.com/anjiri1684/excursion_booking/models"
)

const brevoBaseURL = "https://api.brevo.com"

type BrevoService struct {
	APIKey      string
	SenderEmail string
	SenderName  string
	BaseURL     string
	Client      *http.Client
}

var EmailClient *BrevoService

type brevoPayload struct {
	Sender      map[string]string   `json:"sender"`
	To          []map[string]string `json:"to"`
	Subject     string              `json:"subject"`
	HTMLContent string              `json:"htmlContent"`
}

func InitEmailService(cfg *config.Config) {
	if cfg.BrevoAPIKey == "" || cfg.EmailSender == "" || cfg.EmailSenderName == "" {
		log.Println("⚠️ Email service not configured. Missing API Key, Sender Email, or Sender Name.")
		EmailClient = nil
		return
	}

	EmailClient = &BrevoService{
		APIKey:      cfg.BrevoAPIKey,
		SenderEmail: cfg.EmailSender,
		SenderName:  cfg.EmailSenderName,
		BaseURL:     brevoBaseURL,
		Client:      &http.Client{Timeout: 10 * time.Second},
	}
	log.Printf("✅ Email service initialized successfully, sending as %s.", cfg.EmailSender)
}

func (s *BrevoService) send(toEmail, toName, subject, htmlContent string) error {
	if toEmail == "" || !strings.Contains(toEmail, "@") {
		return fmt.Errorf("invalid recipient email: %s", toEmail)
	}

	recipientName := toName
	if recipientName == "" {
		recipientName = toEmail[:strings.Index(toEmail, "@")]
	}

	payload := brevoPayload{
		Sender:      map[string]string{"name": s.SenderName, "email": s.SenderEmail},
		To:          []map[string]string{{"email": toEmail, "name": recipientName}},
		Subject:     subject,
		HTMLContent: htmlContent,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequest(http.MethodPost, s.BaseURL+"/v3/smtp/email", bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("accept", "application/json")
	req.Header.Set("api-key", s.APIKey)
	req.Header.Set("content-type", "application/json")

	client := s.Client
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	bodyBytes, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusCreated {
		log.Printf("Brevo API error: Status %d, Body: %s", resp.StatusCode, string(bodyBytes))
		return fmt.Errorf("failed to send email via Brevo: status %d", resp.StatusCode)
	}
	return nil
}

func SendEmail(toName, toEmail, subject, htmlContent string) {
	if EmailClient == nil {
		log.Println("Email client not initialized, skipping email send.")
		return
	}

	if err := EmailClient.send(toEmail, toName, subject, htmlContent); err != nil {
		log.Printf("🔥 Failed to send email to %s: %v", toEmail, err)
		return
	}

	log.Printf("✅ Email sent successfully to %s", toEmail)
}

var confirmationTemplate = template.Must(template.New("confirmation").Parse(
	`<h1>Your booking is confirmed</h1>` +
		`<p>Hi {{.Name}},</p>` +
		`<p>Thank you for booking with us. Your reference is <b>{{.Reference}}</b>.</p>` +
		`<p>{{.Adults}} adult(s), {{.Kids}} kid(s) on {{.Date}}.</p>` +
		`<p>Total paid: {{.Total}}</p>`))

func confirmationHTML(booking models.Booking, user models.User) (string, error) {
	data := struct {
		Name      string
		Reference string
		Adults    int
		Kids      int
		Date      string
		Total     string
	}{
		Name:      user.FullName,
		Reference: booking.Reference,
		Adults:    booking.Adults,
		Kids:      booking.Kids,
		Date:      booking.Date.Format("January 2, 2006"),
		Total:     booking.TotalPrice.String(),
	}

	var out bytes.Buffer
	if err := confirmationTemplate.Execute(&out, data); err != nil {
		return "", err
	}
	return out.String(), nil
}

func SendBookingConfirmation(booking models.Booking, user models.User) {
	body, err := confirmationHTML(booking, user)
	if err != nil {
		log.Printf("🔥 Failed to render confirmation for booking %s: %v", booking.ID, err)
		return
	}
	SendEmail(user.FullName, user.Email, "Booking confirmed: "+booking.Reference, body)
}

func SendPaymentDeclined(invoice models.Invoice, user models.User) {
	body := fmt.Sprintf(
		"<h1>Payment declined</h1><p>Hi %s,</p><p>We could not charge %s %s for your booking. Your booking has been kept so you can try another card.</p>",
		template.HTMLEscapeString(user.FullName),
		invoice.Amount.String(),
		template.HTMLEscapeString(invoice.Currency),
	)
	SendEmail(user.FullName, user.Email, "Your payment was declined", body)
}
