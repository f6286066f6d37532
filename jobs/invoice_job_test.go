package jobs

import (
	"testing"
	"time"

	"github.com/anjiri1684/excursion_booking/database"
	"github.com/anjiri1684/excursion_booking/models"
	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func createInvoice(t *testing.T, db *gorm.DB, invoice models.Invoice, age time.Duration, now time.Time) models.Invoice {
	t.Helper()
	invoice.UserID = uuid.New()
	invoice.CreatedAt = now.Add(-age)
	invoice.UpdatedAt = now.Add(-age)
	require.NoError(t, db.Create(&invoice).Error)
	return invoice
}

func TestExpireStaleInvoices(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	booked := uuid.New()

	stale := createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPending}, 2*time.Hour, now)
	declined := createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusDeclined}, 2*time.Hour, now)
	fresh := createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPending}, time.Minute, now)
	paid := createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPaid, IsPaid: true, BookingID: &booked}, 2*time.Hour, now)

	expired, err := expireStaleInvoices(db, time.Hour, now)
	require.NoError(t, err)
	assert.Equal(t, int64(2), expired)

	status := func(id uuid.UUID) string {
		var inv models.Invoice
		require.NoError(t, db.Where("id = ?", id).First(&inv).Error)
		return inv.Status
	}
	assert.Equal(t, models.InvoiceStatusExpired, status(stale.ID))
	assert.Equal(t, models.InvoiceStatusExpired, status(declined.ID))
	assert.Equal(t, models.InvoiceStatusPending, status(fresh.ID))
	assert.Equal(t, models.InvoiceStatusPaid, status(paid.ID))
}

func TestOrphanedPayments(t *testing.T) {
	db := openTestDB(t)
	now := time.Now()
	booked := uuid.New()

	orphan := createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPaid, IsPaid: true}, 2*time.Hour, now)
	createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPaid, IsPaid: true}, time.Minute, now)
	createInvoice(t, db, models.Invoice{Amount: 100, Status: models.InvoiceStatusPaid, IsPaid: true, BookingID: &booked}, 2*time.Hour, now)

	orphans, err := orphanedPayments(db, time.Hour, now)
	require.NoError(t, err)
	require.Len(t, orphans, 1)
	assert.Equal(t, orphan.ID, orphans[0].ID)
}
