package utils

import (
	"strings"
	"testing"

	"github.com/anjiri1684/excursion_booking/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestRandomReferenceAlphabet(t *testing.T) {
	for i := 0; i < 100; i++ {
		ref := randomReference()
		require.Len(t, ref, bookingReferenceLength)
		for _, r := range ref {
			assert.True(t, strings.ContainsRune(letterBytes, r), "unexpected %q in %s", r, ref)
		}
	}
}

func TestGenerateUniqueBookingReference(t *testing.T) {
	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.Booking{}))

	ref, err := GenerateUniqueBookingReference(db)
	require.NoError(t, err)
	assert.Len(t, ref, bookingReferenceLength)
}
