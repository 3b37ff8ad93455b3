package main

import (
	"errors"
	"io"
	"log"
	"net/http"
	"tbs/src/common"
	"tbs/src/db"
	"tbs/src/lib"
	"tbs/src/models"
	"tbs/src/types"

	"github.com/gin-gonic/gin"
	"github.com/tidwall/gjson"
	"gorm.io/gorm"
)

func ipnHandlers(g *gin.RouterGroup) *gin.RouterGroup {
	g.
		GET("/payment/ipn/pesapal", handlePesapalIPN).
		POST("/payment/ipn/pesapal", handlePesapalIPN).
		GET("/payment/webhook/flutterwave", handleFlutterwaveWebhook).
		POST("/payment/webhook/flutterwave", handleFlutterwaveWebhook)
	return g
}

func handlePesapalIPN(ctx *gin.Context) {
	var req types.IPNRequest
	if ctx.Request.Method == http.MethodGet {
		if err := ctx.ShouldBindQuery(&req); err != nil {
			log.Printf("Error parsing IPN query: %s\n", err.Error())
		}
	} else {
		if err := ctx.ShouldBindJSON(&req); err != nil {
			log.Printf("Error parsing IPN body: %s\n", err.Error())
		}
	}
	processNotification(ctx, &req)
}

func handleFlutterwaveWebhook(ctx *gin.Context) {
	// Flutterwave uses tx_ref (our merchant reference) as the verification
	// key, so it doubles as the tracking id here.
	var req types.IPNRequest
	if ctx.Request.Method == http.MethodGet {
		req.OrderTrackingID = ctx.Query("tx_ref")
		req.OrderMerchantReference = ctx.Query("tx_ref")
		req.OrderNotificationType = ctx.Query("status")
	} else {
		body, err := io.ReadAll(ctx.Request.Body)
		if err != nil {
			log.Printf("Error reading webhook body: %s\n", err.Error())
		}
		req.OrderTrackingID = gjson.GetBytes(body, "data.tx_ref").String()
		req.OrderMerchantReference = gjson.GetBytes(body, "data.tx_ref").String()
		req.OrderNotificationType = gjson.GetBytes(body, "event").String()
	}
	processNotification(ctx, &req)
}

// processNotification is the shared IPN core. The inbound payload is only
// used to identify which transaction to check; the status value itself is
// always re-verified against the provider. Response selection is part of the
// contract: 500 means "retry me later" (provider unreachable), 200 means
// "stop retrying" (handled, or permanently unprocessable).
func processNotification(ctx *gin.Context, req *types.IPNRequest) {
	resp := types.IPNResponse{
		OrderTrackingID:        req.OrderTrackingID,
		OrderMerchantReference: req.OrderMerchantReference,
		OrderNotificationType:  req.OrderNotificationType,
		Status:                 http.StatusOK,
	}
	if req.OrderTrackingID == "" && req.OrderMerchantReference == "" {
		log.Println("IPN received with no transaction identifiers")
		ctx.JSON(http.StatusOK, resp)
		return
	}
	db := db.GetDb()
	var payment models.Payment
	var err error
	if req.OrderTrackingID != "" {
		err = db.
			Model(&models.Payment{}).
			Where("order_tracking_id = ?", req.OrderTrackingID).
			First(&payment).
			Error
	} else {
		// Fallback lookups are constrained to PENDING rows so an ambiguous
		// or reused reference can never match an already-settled payment.
		err = db.
			Model(&models.Payment{}).
			Where("merchant_reference = ? AND status = ?", req.OrderMerchantReference, types.PAYMENT_PENDING).
			First(&payment).
			Error
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			log.Printf("No payment record for IPN [%s/%s]\n", req.OrderTrackingID, req.OrderMerchantReference)
			ctx.JSON(http.StatusOK, resp)
			return
		}
		log.Printf("Error looking up payment for IPN: %s\n", err.Error())
		resp.Status = http.StatusInternalServerError
		ctx.JSON(http.StatusInternalServerError, resp)
		return
	}
	provider, err := lib.GetProvider(payment.Provider)
	if err != nil {
		log.Printf("Payment [%s] references unknown provider: %s\n", payment.ID.String(), err.Error())
		ctx.JSON(http.StatusOK, resp)
		return
	}
	verified, err := provider.VerifyPayment(ctx, payment.OrderTrackingID)
	if err != nil {
		log.Printf("Error verifying payment [%s]: %s\n", payment.ID.String(), err.Error())
		if lib.IsNetworkError(err) {
			resp.Status = http.StatusInternalServerError
			ctx.JSON(http.StatusInternalServerError, resp)
			return
		}
		ctx.JSON(http.StatusOK, resp)
		return
	}
	if _, err := common.ReconcilePayment(&payment, verified); err != nil {
		log.Printf("Error reconciling payment [%s]: %s\n", payment.ID.String(), err.Error())
		resp.Status = http.StatusInternalServerError
		ctx.JSON(http.StatusInternalServerError, resp)
		return
	}
	ctx.JSON(http.StatusOK, resp)
}
