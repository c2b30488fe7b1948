package main

import (
	"log"
	"net/http"
	"vbs/src/boot"
	"vbs/src/controllers"
	"vbs/src/types"

	"github.com/gin-gonic/gin"
)

func ticketHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		GET("/bookings/:email/eticket", func(ctx *gin.Context) {
			var params types.BookingURIParams
			if err := ctx.ShouldBindUri(&params); err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			png, status, err := controllers.BookingETicket(ctx, app.Manager, app.Renderer, params.Email)
			if err != nil {
				log.Printf("Error on e-ticket: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": controllers.ErrorMessage(err)})
				return
			}
			ctx.Header("Cache-Control", "private, max-age=300")
			ctx.Data(status, "image/png", png)
		})
	return g
}
