package main

import (
	"log"
	"net/http"
	"vbs/src/boot"
	"vbs/src/controllers"
	"vbs/src/types"

	"github.com/gin-gonic/gin"
)

func transactionHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		POST("/payments", func(ctx *gin.Context) {
			var body types.CompletePaymentRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			payment, status, err := controllers.PaymentComplete(ctx, app.Manager, body.Email)
			if err != nil {
				log.Printf("Error on payment: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": controllers.ErrorMessage(err)})
				return
			}
			ctx.JSON(status, gin.H{"data": payment})
		})
	return g
}
