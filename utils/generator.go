package utils

import (
	"errors"
	"math/rand"

	"github.com/anjiri1684/excursion_booking/models"
	"gorm.io/gorm"
)

const bookingReferenceLength = 8

// no 0/O or 1/I, references get read out over the phone
const letterBytes = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

func randomReference() string {
	b := make([]byte, bookingReferenceLength)
	for i := range b {
		b[i] = letterBytes[rand.Intn(len(letterBytes))]
	}
	return string(b)
}

func GenerateUniqueBookingReference(tx *gorm.DB) (string, error) {
	for {
		code := randomReference()

		var booking models.Booking
		err := tx.Select("id").Where("reference = ?", code).First(&booking).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return code, nil
			}
			return "", err
		}
	}
}
