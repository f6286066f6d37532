package events

import (
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/google/uuid"
	"github.com/streadway/amqp"
)

const (
	ExchangeBookingConfirmed = "booking_confirmed"
	ExchangePaymentDeclined  = "payment_declined"

	senderID = "excursion_booking"
)

// channel is the subset of *amqp.Channel used for publishing.
type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher fans booking events out to RabbitMQ. A nil *Publisher is valid
// and publishes nothing.
type Publisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       channel
	declared map[string]bool
	now      func() time.Time
}

type BookingConfirmedEvent struct {
	BookingID   uuid.UUID `json:"booking_id"`
	Reference   string    `json:"reference"`
	UserID      uuid.UUID `json:"user_id"`
	Email       string    `json:"email"`
	ExcursionID uint      `json:"excursion_id"`
	Date        time.Time `json:"date"`
	Adults      int       `json:"adults"`
	Kids        int       `json:"kids"`
	TotalCents  int64     `json:"total_cents"`
	IsPartner   bool      `json:"is_partner"`
	Timestamp   time.Time `json:"timestamp"`
}

type PaymentDeclinedEvent struct {
	InvoiceID   uuid.UUID         `json:"invoice_id"`
	UserID      uuid.UUID         `json:"user_id"`
	AmountCents int64             `json:"amount_cents"`
	Currency    string            `json:"currency"`
	Reasons     map[string]string `json:"reasons"`
	Timestamp   time.Time         `json:"timestamp"`
}

// Dial connects to RabbitMQ, retrying while the broker starts up.
func Dial(url string, maxRetries int, retryDelay time.Duration) (*Publisher, error) {
	var conn *amqp.Connection
	var err error
	for i := 0; i < maxRetries; i++ {
		conn, err = amqp.Dial(url)
		if err == nil {
			break
		}
		log.Printf("⚠️ Failed to connect to RabbitMQ (attempt %d/%d): %v", i+1, maxRetries, err)
		time.Sleep(retryDelay)
	}
	if err != nil {
		return nil, fmt.Errorf("connect to rabbitmq: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("open rabbitmq channel: %w", err)
	}

	p := newPublisher(ch)
	p.conn = conn
	log.Println("✅ Connected to RabbitMQ")
	return p, nil
}

func newPublisher(ch channel) *Publisher {
	return &Publisher{ch: ch, declared: map[string]bool{}, now: time.Now}
}

func (p *Publisher) publish(exchange string, event interface{}) error {
	if p == nil {
		return nil
	}

	body, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode %s event: %w", exchange, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.declared[exchange] {
		if err := p.ch.ExchangeDeclare(exchange, "fanout", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", exchange, err)
		}
		p.declared[exchange] = true
	}

	err = p.ch.Publish(exchange, "", false, false, amqp.Publishing{
		DeliveryMode: amqp.Persistent,
		ContentType:  "application/json",
		Body:         body,
		Timestamp:    p.now(),
		Headers:      amqp.Table{"sender_id": senderID},
	})
	if err != nil {
		return fmt.Errorf("publish to %s: %w", exchange, err)
	}
	return nil
}

func (p *Publisher) BookingConfirmed(booking models.Booking, user models.User) {
	if p == nil {
		return
	}
	event := BookingConfirmedEvent{
		BookingID:   booking.ID,
		Reference:   booking.Reference,
		UserID:      user.ID,
		Email:       user.Email,
		ExcursionID: booking.ExcursionID,
		Date:        booking.Date,
		Adults:      booking.Adults,
		Kids:        booking.Kids,
		TotalCents:  int64(booking.TotalPrice),
		IsPartner:   booking.IsPartner,
		Timestamp:   p.now(),
	}
	if err := p.publish(ExchangeBookingConfirmed, event); err != nil {
		log.Printf("🔥 Failed to publish booking %s: %v", booking.ID, err)
	}
}

func (p *Publisher) PaymentDeclined(invoice models.Invoice) {
	if p == nil {
		return
	}
	reasons := map[string]string{}
	if invoice.FailureReasons != "" {
		if err := json.Unmarshal([]byte(invoice.FailureReasons), &reasons); err != nil {
			log.Printf("⚠️ Bad failure reasons on invoice %s: %v", invoice.ID, err)
		}
	}
	event := PaymentDeclinedEvent{
		InvoiceID:   invoice.ID,
		UserID:      invoice.UserID,
		AmountCents: int64(invoice.Amount),
		Currency:    invoice.Currency,
		Reasons:     reasons,
		Timestamp:   p.now(),
	}
	if err := p.publish(ExchangePaymentDeclined, event); err != nil {
		log.Printf("🔥 Failed to publish declined invoice %s: %v", invoice.ID, err)
	}
}

func (p *Publisher) Close() {
	if p == nil {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil {
		p.ch.Close()
	}
	if p.conn != nil {
		p.conn.Close()
	}
}
