package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path"
	"regexp"
	"strings"
	"syscall"
	"time"
	"vbs/src/boot"
	"vbs/src/config"
	"vbs/src/middlewares"
	"vbs/src/types"

	"github.com/covalenthq/lumberjack"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

const (
	apiPrefix string = "/api/v1"
)

// bookingEmailValidatorFunc accepts a single plain email address, ignoring
// surrounding whitespace.
func bookingEmailValidatorFunc(v *validator.Validate) validator.Func {
	return func(fl validator.FieldLevel) bool {
		email, ok := fl.Field().Interface().(string)
		if !ok {
			return false
		}
		email = strings.TrimSpace(email)
		if strings.ContainsAny(email, "/?#") {
			return false
		}
		return v.Var(email, "required,email,max=254") == nil
	}
}

func registerValidations() {
	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		v.RegisterValidation("bookingemail", bookingEmailValidatorFunc(v))
	}
}

func corsConfig(cfg *config.Config) gin.HandlerFunc {
	if cfg.IsLocal() {
		return cors.Default()
	}
	cc := cors.DefaultConfig()
	cc.AllowMethods = append(cc.AllowMethods, "GET", "POST", "HEAD")
	cc.AllowHeaders = append(cc.AllowHeaders, "Origin", middlewares.RequestIDHeader)
	cc.ExposeHeaders = append(cc.ExposeHeaders, middlewares.RequestIDHeader)
	cc.AllowOriginFunc = func(origin string) bool {
		if cfg.AppHost == "" {
			return false
		}
		match, _ := regexp.MatchString(regexp.QuoteMeta(cfg.AppHost), origin)
		return match
	}
	cc.AllowAllOrigins = false
	return cors.New(cc)
}

func setupRouter(app *boot.App) *gin.Engine {
	cfg := app.Config
	router := gin.Default()
	router.Use(
		middlewares.RequestID,
		middlewares.SecureHeaders,
		corsConfig(cfg),
		middlewares.RequestTimeout(cfg.RequestTimeout),
		middlewares.MaintenanceMode(func() bool { return cfg.MaintenanceMode }),
	)

	router.GET("/health", func(ctx *gin.Context) {
		ctx.JSON(http.StatusOK, gin.H{
			"status":    "healthy",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})
	router.GET("/", func(ctx *gin.Context) {
		var query types.HomeQuery
		if err := ctx.ShouldBindQuery(&query); err == nil {
			if email := strings.TrimSpace(query.Email); email != "" {
				ctx.Redirect(http.StatusFound, fmt.Sprintf("%s/bookings/%s", apiPrefix, url.PathEscape(email)))
				return
			}
		}
		ctx.JSON(http.StatusOK, "ok")
	})

	router.NoRoute(func(ctx *gin.Context) {
		method := ctx.Request.Method
		if (method == http.MethodGet || method == http.MethodHead) && !strings.HasPrefix(ctx.Request.URL.Path, apiPrefix) {
			ctx.Redirect(http.StatusFound, "/")
			return
		}
		ctx.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	})

	apiv1 := router.Group(apiPrefix)
	bookingHandlers(apiv1, app)
	ticketHandlers(apiv1, app)
	transactionHandlers(apiv1, app)
	admissionHandlers(apiv1, app)

	return router
}

func initLogger(cfg *config.Config) {
	if cfg.LogDir == "" {
		return
	}
	if err := os.MkdirAll(cfg.LogDir, 0o755); err != nil {
		log.Printf("Could not create log directory: %s\n", err.Error())
		return
	}
	if !cfg.IsLocal() {
		gin.SetMode(gin.ReleaseMode)
	}
	gin.DefaultWriter = io.MultiWriter(&lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, "api.log"),
		MaxSize:    100,
		MaxBackups: 3,
		MaxAge:     30,
	}, os.Stdout)
	log.SetOutput(io.MultiWriter(&lumberjack.Logger{
		Filename:   path.Join(cfg.LogDir, "server.log"),
		MaxSize:    500,
		MaxBackups: 3,
		MaxAge:     30,
		Compress:   true,
	}, os.Stderr))
}

func main() {
	if os.Getenv("API_ENV") == "local" {
		cwd, _ := os.Getwd()
		if err := godotenv.Load(path.Join(cwd, ".env")); err != nil {
			log.Printf("No .env loaded: %s\n", err.Error())
		}
	}
	cfg := config.Load()
	initLogger(cfg)
	registerValidations()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	app, err := boot.Init(ctx, cfg)
	cancel()
	if err != nil {
		log.Fatalf("Failed to initialize: %s", err)
	}

	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: setupRouter(app),
	}
	go func() {
		log.Printf("Listening on %s\n", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Failed to start server: %s", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down...")

	ctx, cancel = context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Error during shutdown: %s\n", err.Error())
	}
	app.Close()
}
