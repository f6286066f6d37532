package jobs

import (
	"log"
	"time"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"gorm.io/gorm"
)

// ExpireStaleInvoices marks unpaid invoices older than ttl as expired.
func ExpireStaleInvoices(ttl time.Duration) func() {
	return func() {
		log.Println("Running job: ExpireStaleInvoices...")
		expired, err := expireStaleInvoices(database.DB, ttl, time.Now())
		if err != nil {
			log.Printf("Error expiring stale invoices: %v", err)
			return
		}
		if expired > 0 {
			log.Printf("Marked %d invoice(s) as expired.", expired)
		}
	}
}

func expireStaleInvoices(db *gorm.DB, ttl time.Duration, now time.Time) (int64, error) {
	result := db.Model(&models.Invoice{}).
		Where("is_paid = ? AND booking_id IS NULL AND status IN ? AND created_at < ?",
			false, []string{models.InvoiceStatusPending, models.InvoiceStatusDeclined}, now.Add(-ttl)).
		Update("status", models.InvoiceStatusExpired)
	return result.RowsAffected, result.Error
}

// ReportOrphanedPayments logs paid invoices that never turned into a booking,
// so they can be refunded or booked by hand.
func ReportOrphanedPayments(ttl time.Duration) func() {
	return func() {
		log.Println("Running job: ReportOrphanedPayments...")
		orphans, err := orphanedPayments(database.DB, ttl, time.Now())
		if err != nil {
			log.Printf("Error checking for orphaned payments: %v", err)
			return
		}
		for _, invoice := range orphans {
			log.Printf("⚠️ Invoice %s for user %s was paid (%s %s) but has no booking.",
				invoice.ID, invoice.UserID, invoice.Amount, invoice.Currency)
		}
	}
}

func orphanedPayments(db *gorm.DB, ttl time.Duration, now time.Time) ([]models.Invoice, error) {
	var invoices []models.Invoice
	err := db.
		Where("is_paid = ? AND booking_id IS NULL AND updated_at < ?", true, now.Add(-ttl)).
		Order("created_at").
		Find(&invoices).Error
	return invoices, err
}
