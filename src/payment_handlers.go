package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/types"
	"tbs/src/utils"
	"time"

	"github.com/gin-gonic/gin"
)

type bookingStatusPayload struct {
	Reference     string `json:"reference"`
	Status        string `json:"status"`
	PaymentStatus string `json:"payment_status"`
}

func paymentHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/payment/process", func(ctx *gin.Context) {
			var body types.ProcessPaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
				return
			}
			if body.Amount <= 0 {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_AMOUNT", Message: "amount must be greater than zero"})
				return
			}
			providerName := body.Provider
			if providerName == "" {
				providerName = types.PROVIDER_PESAPAL
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Reference: body.BookingReference}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, types.APIError{Code: "BOOKING_NOT_FOUND", Message: "booking not found"})
				return
			}
			provider, err := lib.GetProvider(providerName)
			if err != nil {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_PROVIDER", Message: err.Error()})
				return
			}
			merchantRef := utils.NewMerchantReference(booking.Reference)
			initiated, err := provider.InitiatePayment(ctx, &lib.InitiatePaymentParams{
				Amount:            body.Amount,
				Currency:          body.Currency,
				Description:       fmt.Sprintf("Travel booking %s", booking.Reference),
				MerchantReference: merchantRef,
				CallbackURL:       utils.BuildCallbackURL(booking.Reference),
				CustomerName:      body.Customer.Name,
				CustomerEmail:     body.Customer.Email,
				CustomerPhone:     body.Customer.Phone,
			})
			if err != nil {
				log.Printf("Error initiating payment for [%s]: %s\n", booking.Reference, err.Error())
				if lib.IsNetworkError(err) {
					ctx.JSON(http.StatusInternalServerError, gin.H{"error": "payment provider unavailable"})
					return
				}
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payment := models.Payment{
				BookingID:         booking.ID,
				Provider:          providerName,
				OrderTrackingID:   initiated.TrackingID,
				MerchantReference: merchantRef,
				Status:            types.PAYMENT_PENDING,
				Amount:            body.Amount,
				Currency:          body.Currency,
			}
			// The gateway call is the source of truth for whether initiation
			// succeeded; a failed local write must not hide the redirect URL.
			if err := db.Create(&payment).Error; err != nil {
				log.Printf("Warning: could not persist payment record [%s]: %s\n", merchantRef, err.Error())
			}
			ctx.JSON(http.StatusOK, types.ProcessPaymentResponse{
				TransactionID: initiated.TrackingID,
				PaymentStatus: string(types.PAYMENT_PENDING),
				PaymentURL:    initiated.RedirectURL,
			})
		}).
		GET("/payment/status/:reference", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			cacheKey := fmt.Sprintf("booking:%s:status", reference)
			if rd := lib.GetRedisClient(); rd != nil {
				if cached, err := rd.Get(context.Background(), cacheKey).Result(); err == nil && cached != "" {
					var payload bookingStatusPayload
					if err := json.Unmarshal([]byte(cached), &payload); err == nil {
						ctx.JSON(http.StatusOK, gin.H{"data": payload})
						return
					}
				}
			}
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Reference: reference}).
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			payload := bookingStatusPayload{
				Reference:     booking.Reference,
				Status:        string(booking.Status),
				PaymentStatus: string(booking.PaymentStatus),
			}
			if rd := lib.GetRedisClient(); rd != nil {
				if b, err := json.Marshal(&payload); err == nil {
					// Short TTL: this endpoint is polled every few seconds
					// after redirect-back.
					if err := rd.Set(context.Background(), cacheKey, string(b), 5*time.Second).Err(); err != nil {
						log.Printf("[redis] Error caching status for [%s]: %s\n", reference, err.Error())
					}
				}
			}
			ctx.JSON(http.StatusOK, gin.H{"data": payload})
		})
	return g
}
