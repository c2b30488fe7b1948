package main

import (
	"log"
	"net/http"
	"vbs/src/boot"
	"vbs/src/controllers"
	"vbs/src/types"

	"github.com/gin-gonic/gin"
)

func bookingHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		POST("/bookings/validate", func(ctx *gin.Context) {
			var body types.ValidateBookingRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			data, status, err := controllers.BookingValidate(ctx, app.Manager, body.Email)
			if err != nil {
				log.Printf("Error validating booking: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": controllers.ErrorMessage(err)})
				return
			}
			ctx.JSON(status, gin.H{"data": data})
		}).
		GET("/bookings/:email", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, status, err := controllers.BookingLookup(ctx, app.Manager, params.Email)
			if err != nil {
				log.Printf("Error retrieving booking: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": controllers.ErrorMessage(err)})
				return
			}
			ctx.JSON(status, gin.H{"data": booking})
		})
	return g
}
