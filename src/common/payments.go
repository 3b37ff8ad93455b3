package common

import (
	"context"
	"fmt"
	"log"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/lib/mailer"
	"tbs/src/models"
	"tbs/src/types"
	"time"

	"gorm.io/gorm"
)

// ReconcilePayment applies a provider-verified status to a payment and
// cascades the transition to the owning booking. The payment row is only
// moved off PENDING by a conditional update, so concurrent or duplicate
// deliveries settle it exactly once: the second delivery sees zero affected
// rows and does nothing, which also keeps the receipt from being sent twice.
// Returns whether this call performed the transition.
func ReconcilePayment(payment *models.Payment, verified *lib.VerifiedPayment) (bool, error) {
	if !verified.Status.Terminal() {
		return false, nil
	}
	transitioned := false
	var booking models.Booking
	db := db.GetDb()
	err := db.Transaction(func(tx *gorm.DB) error {
		res := tx.
			Model(&models.Payment{}).
			Where("id = ? AND status = ?", payment.ID, types.PAYMENT_PENDING).
			Updates(&models.Payment{
				Status:           verified.Status,
				PaymentMethod:    verified.PaymentMethod,
				PaymentAccount:   verified.PaymentAccount,
				ConfirmationCode: verified.ConfirmationCode,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			// Already settled; nothing to cascade.
			return nil
		}
		transitioned = true
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", payment.BookingID).
			First(&booking).
			Error; err != nil {
			return err
		}
		bookingStatus, paymentStatus, ok := types.BookingCascade(verified.Status)
		if !ok {
			return nil
		}
		if err := tx.
			Model(&models.Booking{}).
			Where("id = ?", payment.BookingID).
			Updates(&models.Booking{Status: bookingStatus, PaymentStatus: paymentStatus}).
			Error; err != nil {
			return err
		}
		return nil
	})
	if err != nil {
		return false, err
	}
	if !transitioned {
		return false, nil
	}
	if rd := lib.GetRedisClient(); rd != nil {
		if err := rd.Del(context.Background(), fmt.Sprintf("booking:%s:status", booking.Reference)).Err(); err != nil {
			log.Printf("[redis] Error invalidating status cache for [%s]: %s\n", booking.Reference, err.Error())
		}
	}
	if verified.Status == types.PAYMENT_COMPLETED {
		payment.ConfirmationCode = verified.ConfirmationCode
		payment.PaymentMethod = verified.PaymentMethod
		mailer.SendReceipt(&booking, payment)
	}
	return true, nil
}

const staleCutoff = 72 * time.Hour

// SweepStalePayments re-verifies payments stuck in PENDING past the cutoff,
// once per run, and settles the ones the provider also reports as terminal.
// Providers that cannot be reached are left for the next run.
func SweepStalePayments() {
	db := db.GetDb()
	var payments []models.Payment
	cutoff := time.Now().Add(-staleCutoff)
	err := db.
		Model(&models.Payment{}).
		Where("status = ? AND created_at < ?", types.PAYMENT_PENDING, cutoff).
		Order("created_at asc").
		Limit(100).
		Find(&payments).
		Error
	if err != nil {
		log.Printf("Error retrieving stale payments: %s\n", err.Error())
		return
	}
	if len(payments) == 0 {
		return
	}
	log.Printf("Found %d stale pending payments", len(payments))
	for i := range payments {
		payment := &payments[i]
		provider, err := lib.GetProvider(payment.Provider)
		if err != nil {
			log.Printf("Skipping payment [%s]: %s\n", payment.ID.String(), err.Error())
			continue
		}
		verified, err := provider.VerifyPayment(context.Background(), payment.OrderTrackingID)
		if err != nil {
			log.Printf("Could not verify payment [%s]: %s\n", payment.ID.String(), err.Error())
			continue
		}
		if !verified.Status.Terminal() {
			continue
		}
		if _, err := ReconcilePayment(payment, verified); err != nil {
			log.Printf("Error reconciling payment [%s]: %s\n", payment.ID.String(), err.Error())
		}
	}
}
