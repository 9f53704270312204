package router

import (
	"log"
	"os"
	"time"

	"github.com/cambfordable/api/config"
	"github.com/cambfordable/api/database"
	"github.com/cambfordable/api/handlers"
	auth_handlers "github.com/cambfordable/api/handlers/auth"
	chat_handlers "github.com/cambfordable/api/handlers/chat"
	course_handlers "github.com/cambfordable/api/handlers/course"
	homework_handlers "github.com/cambfordable/api/handlers/homework"
	liveclass_handlers "github.com/cambfordable/api/handlers/liveclass"
	payment_handlers "github.com/cambfordable/api/handlers/payment"
	user_handlers "github.com/cambfordable/api/handlers/user"
	"github.com/cambfordable/api/services/payment"
	"github.com/cambfordable/api/services/relay"
	"github.com/cambfordable/api/services/storage"
	"github.com/cambfordable/api/utils/auth"
	"github.com/cambfordable/api/utils/cache"
	"github.com/cambfordable/api/utils/middleware"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func SetupRoutes(app *fiber.App, store database.Storage) {
	getEnv, err := config.Get()
	if err != nil {
		log.Fatal("Failed to read environment configuration")
	}

	if getEnv.JWT_SECRET == "" {
		log.Fatal("JWT_SECRET environment variable is not set")
	}

	jwtIssuer := getEnv.JWT_ISSUER
	if jwtIssuer == "" {
		jwtIssuer = "cambfordable-api"
	}

	// Initialize JWT manager with config
	jwtConfig := auth.JWTConfig{
		Secret:        getEnv.JWT_SECRET,
		Expiry:        30 * time.Minute,   // Access token expires in 30 minutes
		RefreshExpiry: 7 * 24 * time.Hour, // Refresh token expires in 7 days
		Issuer:        jwtIssuer,
	}
	jwtManager := auth.NewJWTManager(jwtConfig)

	// Get DB instance (type assert from interface)
	db, ok := store.GetDB().(*gorm.DB)
	if !ok {
		log.Fatal("Failed to get GORM DB instance")
	}

	// Redis backs both brute force protection and the chat relay, so it is
	// required.
	redisCache, err := cache.NewRedisCache(getEnv.REDIS_URL)
	if err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}

	bruteForceProtection := middleware.NewBruteForceProtection(redisCache)

	// Initialize auth middleware with DB for blacklist checking
	authMiddleware := middleware.NewAuthMiddleware(jwtManager, db)

	// Chat relay fan-out over the Redis pub/sub broker
	chatRelay := relay.New(redisCache)

	// Homework uploads go to Spaces when configured; otherwise submissions
	// record a placeholder path.
	var uploader storage.Uploader
	if getEnv.SPACES_ACCESS_KEY != "" && getEnv.SPACES_BUCKET != "" {
		spacesClient, err := storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: getEnv.SPACES_ACCESS_KEY,
			SecretKey: getEnv.SPACES_SECRET_KEY,
			Bucket:    getEnv.SPACES_BUCKET,
			Region:    getEnv.SPACES_REGION,
			Endpoint:  getEnv.SPACES_ENDPOINT,
		})
		if err != nil {
			log.Printf("Warning: Failed to create Spaces client: %v. Homework uploads will use placeholder paths.", err)
		} else {
			uploader = spacesClient
		}
	}

	paymentService := payment.NewService(payment.Config{
		MerchantID:    getEnv.JAZZCASH_MERCHANT_ID,
		Password:      getEnv.JAZZCASH_PASSWORD,
		IntegritySalt: getEnv.JAZZCASH_INTEGRITY_SALT,
		ReturnURL:     getEnv.JAZZCASH_RETURN_URL,
		PaymentURL:    getEnv.JAZZCASH_PAYMENT_URL,
	})

	// Initialize handlers
	healthHandler := handlers.NewHealthHandler(store)
	authHandler := auth_handlers.NewAuthHandler(db, jwtManager, bruteForceProtection)
	userHandler := user_handlers.NewUserHandler(db)
	courseHandler := course_handlers.NewCourseHandler(db)
	liveClassHandler := liveclass_handlers.NewLiveClassHandler(db)
	homeworkHandler := homework_handlers.NewHomeworkHandler(db, uploader)
	chatHandler := chat_handlers.NewChatHandler(db, chatRelay, authMiddleware)
	paymentHandler := payment_handlers.NewPaymentHandler(db, paymentService)

	// Apply security middleware
	allowedOrigins := os.Getenv("ALLOWED_ORIGINS")
	if allowedOrigins == "" {
		allowedOrigins = "http://localhost:3000,http://localhost:3001"
	}

	middleware.SetupSecurity(app, middleware.SecurityConfig{
		AllowedOrigins:    allowedOrigins,
		RateLimitRequests: 100,             // 100 requests
		RateLimitWindow:   1 * time.Minute, // per minute
	})

	// Health check endpoint (public)
	app.Get("/health", healthHandler.Check)

	// Auth routes
	authGroup := app.Group("/auth")
	authGroup.Post("/signup", authHandler.Signup)
	authGroup.Post("/login", bruteForceProtection.CheckAndRecordAttempt(), authHandler.Login)
	authGroup.Post("/refresh", authHandler.RefreshToken)
	authGroup.Get("/me", authMiddleware.Required(), authHandler.Me)

	// Users routes
	users := app.Group("/users", authMiddleware.Required())
	users.Get("/", authMiddleware.RequireAdmin(), userHandler.List) // Admin only: list all users

	// Courses routes
	courses := app.Group("/courses", authMiddleware.Required())
	courses.Get("/", courseHandler.List)
	courses.Post("/", authMiddleware.RequireAdmin(), courseHandler.Create) // Admin only: create course
	courses.Get("/me", courseHandler.MyCourses)
	courses.Post("/:id/enroll", courseHandler.Enroll)

	// Live classes routes
	liveClasses := app.Group("/live-classes", authMiddleware.Required())
	liveClasses.Post("/", authMiddleware.RequireAdmin(), liveClassHandler.Create) // Admin only: schedule class
	liveClasses.Get("/", authMiddleware.RequireAdmin(), liveClassHandler.List)    // Admin only: list all classes
	liveClasses.Get("/me", liveClassHandler.MyClasses)
	liveClasses.Get("/:id/join", liveClassHandler.Join)

	// Homeworks routes
	homeworks := app.Group("/homeworks", authMiddleware.Required())
	homeworks.Post("/", authMiddleware.RequireAdmin(), homeworkHandler.Create) // Admin only: create homework
	homeworks.Get("/me", homeworkHandler.MySubmissions)
	homeworks.Get("/course/:courseID", homeworkHandler.ListByCourse)
	homeworks.Post("/:id/submit", homeworkHandler.Submit)
	homeworks.Get("/:id/submissions", authMiddleware.RequireAdmin(), homeworkHandler.Submissions) // Admin only

	// Chat routes. The WebSocket endpoint authenticates via ?token= inside
	// the handler, so it sits outside the bearer middleware.
	chat := app.Group("/chat")
	chat.Get("/:liveClassID/messages", authMiddleware.Required(), chatHandler.History)
	chat.Use("/ws", chat_handlers.Upgrade)
	chat.Get("/ws/live-classes/:id/chat", chatHandler.LiveClassChat())

	// Payments routes
	payments := app.Group("/payments", authMiddleware.Required())
	payments.Post("/jazzcash/initiate/:courseID", paymentHandler.InitiateCoursePayment)
	payments.Get("/me", paymentHandler.MyTransactions)
}
