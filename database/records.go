package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/anjiri1684/excursion_booking/utils"
	"github.com/anjiri1684/excursion_booking/wizard"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var ErrNotFound = wizard.ErrNotFound

// Records is the GORM-backed store behind the booking wizard.
type Records struct {
	db *gorm.DB
}

var _ wizard.Records = (*Records)(nil)

func NewRecords(db *gorm.DB) *Records {
	return &Records{db: db}
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return err
}

func dayBounds(date time.Time) (time.Time, time.Time) {
	start := models.CalendarDate(date)
	return start, start.AddDate(0, 0, 1)
}

func (r *Records) Cruises(ctx context.Context, ids []uint) ([]models.Cruise, error) {
	var cruises []models.Cruise
	if len(ids) == 0 {
		return cruises, nil
	}
	err := r.db.WithContext(ctx).Where("id IN ?", ids).Order("id").Find(&cruises).Error
	return cruises, err
}

func (r *Records) ExcursionType(ctx context.Context, id uint) (models.ExcursionType, error) {
	var excursionType models.ExcursionType
	err := r.db.WithContext(ctx).First(&excursionType, id).Error
	return excursionType, notFound(err, "excursion type")
}

func (r *Records) UpcomingExcursions(ctx context.Context, from time.Time) ([]models.Excursion, error) {
	var excursions []models.Excursion
	err := r.db.WithContext(ctx).
		Where("date >= ?", from).
		Order("date").Order("start_time").
		Find(&excursions).Error
	return excursions, err
}

// FindExcursions returns the excursions of a type on a day that serve at
// least one of the cruises.
func (r *Records) FindExcursions(ctx context.Context, cruiseIDs []uint, typeID uint, date time.Time) ([]models.Excursion, error) {
	var excursions []models.Excursion
	if len(cruiseIDs) == 0 {
		return excursions, nil
	}

	start, end := dayBounds(date)
	served := r.db.Table("excursion_cruises").Select("excursion_id").Where("cruise_id IN ?", cruiseIDs)

	err := r.db.WithContext(ctx).
		Preload("ExcursionType").
		Preload("Cruises").
		Where("excursion_type_id = ?", typeID).
		Where("date >= ? AND date < ?", start, end).
		Where("id IN (?)", served).
		Order("start_time").Order("id").
		Find(&excursions).Error
	return excursions, err
}

func (r *Records) CreditCards(ctx context.Context, userID uuid.UUID) ([]models.CreditCard, error) {
	var cards []models.CreditCard
	err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("id").Find(&cards).Error
	return cards, err
}

func (r *Records) CreditCard(ctx context.Context, userID uuid.UUID, id uint) (models.CreditCard, error) {
	var card models.CreditCard
	err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&card).Error
	return card, notFound(err, "credit card")
}

func (r *Records) CreateCreditCard(ctx context.Context, card *models.CreditCard) error {
	return r.db.WithContext(ctx).Create(card).Error
}

func (r *Records) Invoice(ctx context.Context, id uuid.UUID) (models.Invoice, error) {
	var invoice models.Invoice
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invoice).Error
	return invoice, notFound(err, "invoice")
}

func (r *Records) CreateInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *Records) SaveInvoice(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Save(invoice).Error
}

func (r *Records) CompleteBooking(ctx context.Context, booking *models.Booking, invoiceID uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var invoice models.Invoice
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", invoiceID).First(&invoice).Error
		if err != nil {
			return notFound(err, "invoice")
		}
		if !invoice.IsPaid {
			return wizard.ErrInvoiceUnpaid
		}
		if invoice.BookingID != nil {
			return wizard.ErrInvoiceBooked
		}

		reference, err := utils.GenerateUniqueBookingReference(tx)
		if err != nil {
			return fmt.Errorf("generate booking reference: %w", err)
		}
		booking.Reference = reference

		if err := tx.Omit("User", "Excursion", "Cruises.*").Create(booking).Error; err != nil {
			return fmt.Errorf("create booking: %w", err)
		}

		return tx.Model(&models.Invoice{}).Where("id = ?", invoice.ID).Update("booking_id", booking.ID).Error
	})
}

// User loads an active user by id.
func (r *Records) User(ctx context.Context, id uuid.UUID) (models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("id = ? AND is_active = ?", id, true).First(&user).Error
	return user, notFound(err, "user")
}
