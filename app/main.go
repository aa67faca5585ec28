package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"

	"github.com/mahapatra12/vitam-cms/config"
	"github.com/mahapatra12/vitam-cms/delivery"
	"github.com/mahapatra12/vitam-cms/middleware"
	"github.com/mahapatra12/vitam-cms/repository"
	"github.com/mahapatra12/vitam-cms/service"
	"github.com/mahapatra12/vitam-cms/utils"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env file not found, using system environment variables")
	}

	if v, ok := binding.Validator.Engine().(*validator.Validate); ok {
		utils.RegisterCustomValidations(v)
	}

	db, err := config.BootDB()
	if err != nil {
		log.Fatal("Failed to boot database: ", err)
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		log.Fatal("REDIS_ADDR not found in env")
	}
	redisClient, err := config.InitRedisDB(redisAddr, os.Getenv("REDIS_PASSWORD"), 0)
	if err != nil {
		log.Fatal("Failed to connect to Redis: ", err)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		log.Fatal("JWT_SECRET not found in env")
	}
	if len(jwtSecret) < 32 {
		log.Fatal("JWT_SECRET must be at least 32 characters. Generate one with: openssl rand -base64 32")
	}

	// Repositories
	userRepo := repository.NewUserRepository(db)
	auditRepo := repository.NewAuditRepository(db)

	// Services
	auditService := service.NewAuditService(auditRepo)
	bypass := service.DevBypassFromEnv(os.Getenv("APP_ENV"), os.Getenv("MFA_DEV_BYPASS_CODE"))
	authService := service.NewAuthService(
		userRepo,
		utils.NewSMSOTPSenderFromEnv(),
		utils.NewEmailOTPSenderFromEnv(),
		auditService,
		jwtSecret,
		bypass,
	)
	userService := service.NewUserService(userRepo, auditService)

	limiter := middleware.NewRateLimiter(redisClient)

	app := gin.New()
	config.InitMiddleware(app)
	app.Use(limiter.GlobalLimit())

	delivery.NewAuthHandler(app, authService, userRepo, limiter)
	delivery.NewUserHandler(app, userService, authService.GetTokenManager(), userRepo)

	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8080"
	}

	srv := &http.Server{
		Addr:           ":" + port,
		Handler:        app,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   15 * time.Second,
		IdleTimeout:    60 * time.Second,
		MaxHeaderBytes: 1 << 20,
	}

	go func() {
		log.Printf("Server running at http://localhost:%s", port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited gracefully")
}
