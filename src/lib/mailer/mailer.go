package mailer

import (
	"fmt"
	"log"
	"os"
	"strings"
	"tbs/src/lib"
	"tbs/src/models"
)

var sendMail = lib.SendMail

// NewSendMailFunc Replace the mail transport with a custom implementation
func NewSendMailFunc(fn func(*lib.SendMailInput) error) {
	sendMail = fn
}

// SendReceipt notifies the guest that their payment was confirmed. It is a
// best-effort side effect: every failure is logged and swallowed so the
// caller's response never depends on mail delivery.
func SendReceipt(booking *models.Booking, payment *models.Payment) {
	if booking.GuestEmail == "" {
		log.Printf("No guest email on booking [%s], skipping receipt\n", booking.Reference)
		return
	}
	from := os.Getenv("MAIL_FROM")
	if from == "" {
		from = "bookings@localhost"
	}
	input := &lib.SendMailInput{
		From:     from,
		FromName: "Bookings",
		To:       []string{booking.GuestEmail},
		Subject:  fmt.Sprintf("Payment received for booking %s", booking.Reference),
		Body:     receiptBody(booking, payment),
		Html:     true,
	}
	if err := sendMail(input); err != nil {
		log.Printf("Could not send receipt for booking [%s]: %s\n", booking.Reference, err.Error())
	}
}

func receiptBody(booking *models.Booking, payment *models.Payment) string {
	var b strings.Builder
	fmt.Fprintf(&b, "<h2>Thank you, %s!</h2>", booking.GuestName)
	fmt.Fprintf(&b, "<p>We received your payment of <strong>%.2f %s</strong> for booking <strong>%s</strong>.</p>", payment.Amount, payment.Currency, booking.Reference)
	if payment.ConfirmationCode != "" {
		fmt.Fprintf(&b, "<p>Payment confirmation code: %s</p>", payment.ConfirmationCode)
	}
	if payment.PaymentMethod != "" {
		fmt.Fprintf(&b, "<p>Paid via %s</p>", payment.PaymentMethod)
	}
	fmt.Fprintf(&b, "<p>Your booking is confirmed. Keep your reference <strong>%s</strong> to look it up at any time.</p>", booking.Reference)
	return b.String()
}
