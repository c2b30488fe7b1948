package main

import (
	"log"
	"net/http"
	"vbs/src/boot"
	"vbs/src/controllers"
	"vbs/src/types"

	"github.com/gin-gonic/gin"
)

func admissionHandlers(g *gin.RouterGroup, app *boot.App) *gin.RouterGroup {
	g.
		POST("/admissions", func(ctx *gin.Context) {
			var body types.CreateAdmissionRequestBody
			if err := ctx.ShouldBindJSON(&body); err != nil {
				log.Printf("Error validating request: %s\n", err.Error())
				ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
				return
			}
			booking, status, err := controllers.AdmissionVerify(ctx, app.Manager, body.Code)
			if err != nil {
				log.Printf("Error on Ticket admission: %s\n", err.Error())
				ctx.JSON(status, gin.H{"error": controllers.ErrorMessage(err)})
				return
			}
			ctx.JSON(status, gin.H{"data": booking})
		})
	return g
}
