package main

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"tbs/src/config"
	"tbs/src/db"
	"tbs/src/models"
	"tbs/src/types"
	"tbs/src/utils"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

func bookingHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		POST("/booking/create", func(ctx *gin.Context) {
			var body types.CreateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
				return
			}
			reference := body.Reference
			if reference == "" {
				reference = utils.NewBookingReference()
			}
			booking := models.Booking{
				Reference:      reference,
				GuestName:      body.GuestDetails.Name,
				GuestEmail:     body.GuestDetails.Email,
				GuestPhone:     body.GuestDetails.Phone,
				GuestCountry:   body.GuestDetails.Country,
				Status:         types.BOOKING_PENDING,
				PaymentStatus:  types.BOOKING_PAYMENT_PENDING,
				BaseAmount:     body.PriceBreakdown.BaseAmount,
				ServiceFee:     body.PriceBreakdown.ServiceFee,
				Taxes:          body.PriceBreakdown.Taxes,
				Discount:       body.PriceBreakdown.Discount,
				TotalAmount:    utils.ComputeTotal(&body.PriceBreakdown),
				Currency:       body.PriceBreakdown.Currency,
				SpecialRequest: body.SpecialRequest,
			}
			for _, item := range body.Items {
				startDate, err := time.Parse(config.DATE_PARSE_FORMAT, item.StartDate)
				if err != nil {
					ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
					return
				}
				var endDate *time.Time
				if item.EndDate != nil {
					parsed, err := time.Parse(config.DATE_PARSE_FORMAT, *item.EndDate)
					if err != nil {
						ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
						return
					}
					endDate = &parsed
				}
				booking.Items = append(booking.Items, &models.BookingItem{
					ItemType:       types.ItemType(item.Type),
					CatalogID:      item.CatalogID,
					Qty:            item.Qty,
					UnitPrice:      item.UnitPrice,
					StartDate:      &startDate,
					EndDate:        endDate,
					SpecialRequest: item.SpecialRequest,
				})
			}
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				return tx.Create(&booking).Error
			})
			if err != nil {
				log.Printf("Error creating booking [%s]: %s\n", reference, err.Error())
				ctx.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Error while creating booking"})
				return
			}
			ctx.JSON(http.StatusCreated, gin.H{"data": booking})
		}).
		GET("/booking/:reference", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			db := db.GetDb()
			var booking models.Booking
			if err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Reference: reference}).
				Preload("Items").
				First(&booking).
				Error; err != nil {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{"data": booking})
		}).
		POST("/booking/lookup", func(ctx *gin.Context) {
			var body types.LookupBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, types.APIError{Code: "INVALID_REQUEST", Message: err.Error()})
				return
			}
			db := db.GetDb()
			var booking models.Booking
			err := db.
				Model(&models.Booking{}).
				Where(&models.Booking{Reference: body.Reference}).
				First(&booking).
				Error
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("Error looking up booking [%s]: %s\n", body.Reference, err.Error())
				ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Error while processing request"})
				return
			}
			// One generic message for both an unknown reference and an email
			// mismatch, so the endpoint cannot be used to enumerate guests.
			if err != nil || !strings.EqualFold(booking.GuestEmail, body.Email) {
				ctx.JSON(http.StatusNotFound, gin.H{"error": "booking not found or email does not match"})
				return
			}
			ctx.JSON(http.StatusOK, gin.H{
				"data": booking,
				"url":  utils.BuildConfirmationURL(booking.Reference),
			})
		}).
		PUT("/booking/:reference/cancel", func(ctx *gin.Context) {
			reference := ctx.Params.ByName("reference")
			db := db.GetDb()
			err := db.Transaction(func(tx *gorm.DB) error {
				res := tx.
					Model(&models.Booking{}).
					Where("reference = ? AND status = ?", reference, types.BOOKING_PENDING).
					Updates(&models.Booking{Status: types.BOOKING_CANCELLED})
				if res.Error != nil {
					return res.Error
				}
				if res.RowsAffected == 0 {
					return errors.New("booking is not pending")
				}
				return nil
			})
			if err != nil {
				log.Printf("Could not cancel booking [%s]: %s\n", reference, err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "Error while processing request"})
				return
			}
			ctx.Status(http.StatusNoContent)
		})
	return g
}
