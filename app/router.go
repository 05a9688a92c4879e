// Package app wires the HTTP surface together: middleware chain,
// route groups and the dependency struct the handlers run against
package app

import (
	"fmt"
	"strings"
	"time"

	"mkowalski/todo-api/app/auth"
	"mkowalski/todo-api/app/root"
	"mkowalski/todo-api/app/todo"
	"mkowalski/todo-api/db"
	"mkowalski/todo-api/internal"
	"mkowalski/todo-api/internal/service"
	"mkowalski/todo-api/pkg/middleware"
	"mkowalski/todo-api/pkg/security"

	cache "github.com/chenyahui/gin-cache"
	"github.com/chenyahui/gin-cache/persist"
	"github.com/gin-contrib/cors"
	ginzap "github.com/gin-contrib/zap"
	"github.com/gin-gonic/gin"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	gray  = "\x1b[90m"
	reset = "\x1b[0m"
)

var store = persist.NewMemoryStore(time.Minute)

func NewRouter() (*gin.Engine, error) {
	d := &internal.Deps{}

	database, err := db.New()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database, %w", err)
	}
	d.DB = database

	d.Argon = security.NewFromConfig()
	d.Tokens = security.NewTokenIssuerFromConfig()
	d.Mailer = service.NewMailerFromConfig()
	d.Resets = service.NewResetManager(d.DB, d.Argon, d.Mailer)

	makeLogger()

	router := gin.New()

	origins := strings.Split(viper.GetString("host.cors"), ",")

	router.Use(
		cors.New(cors.Config{
			AllowOrigins:     origins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
			ExposeHeaders:    []string{"Content-Length"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
		gin.Recovery(),
		middleware.NewRequestIDMiddleware(),
		ginzap.GinzapWithConfig(zap.L(), &ginzap.Config{
			TimeFormat: "15:04:05.000",
			UTC:        true,
			Skipper: func(c *gin.Context) bool {
				return c.Request.Method == "HEAD"
			},
			Context: func(c *gin.Context) []zapcore.Field {
				fields := []zapcore.Field{}

				if v := c.GetString("requestID"); v != "" {
					fields = append(fields, zap.String("request_id", v))
				}

				if v := c.GetString("userID"); v != "" {
					fields = append(fields, zap.String("userID", v))
				}

				return fields
			},
		}),
	)

	router.HandleMethodNotAllowed = true
	router.RedirectFixedPath = true

	rateLimit := viper.GetInt("security.rate_limit")

	jwt := middleware.NewJWTMiddleware(d.Tokens)
	rateLimiter := middleware.RateLimiterMiddleware(middleware.RateLimiterConfig{
		RequestsPerSecond: rateLimit,
		Burst:             rateLimit * 2,
		CleanupInterval:   time.Second,
	})

	m := router.Group("/api", rateLimiter)
	{
		// GET /api/health 		-> Used to check if the server is alive
		m.GET("/health", cacheFor(5), root.Health)

		// HEAD /api/heartbeat 		-> Same, without a body
		m.HEAD("/heartbeat", root.Heartbeat)

		// GET /api/validate		-> Validates a session token
		m.GET("/validate", jwt, root.Validate)
	}

	a := m.Group("/auth", middleware.BodySizeLimiter(1<<20))
	{
		// POST /api/auth/register	-> Registers a new account
		a.POST("/register", func(c *gin.Context) { auth.Register(c, d) })

		// POST /api/auth/login		-> Logs in and returns a session token
		a.POST("/login", func(c *gin.Context) { auth.Login(c, d) })

		// POST /api/auth/forgot-password -> Starts a password reset
		a.POST("/forgot-password", func(c *gin.Context) { auth.ForgotPassword(c, d) })

		// POST /api/auth/reset-password  -> Redeems a reset token
		a.POST("/reset-password", func(c *gin.Context) { auth.ResetPassword(c, d) })
	}

	t := m.Group("/todos", jwt, middleware.BodySizeLimiter(1<<20))
	{
		// GET /api/todos		-> Returns the user's todos in bulk
		t.GET("", func(c *gin.Context) { todo.FetchBulk(c, d) })

		// POST /api/todos		-> Creates a new todo
		t.POST("", func(c *gin.Context) { todo.Create(c, d) })

		// GET /api/todos/:id		-> Returns a single todo
		t.GET("/:id", func(c *gin.Context) { todo.Fetch(c, d) })

		// PUT /api/todos/:id		-> Updates a todo
		t.PUT("/:id", func(c *gin.Context) { todo.Edit(c, d) })

		// DELETE /api/todos/:id	-> Deletes a todo
		t.DELETE("/:id", func(c *gin.Context) { todo.Delete(c, d) })
	}

	return router, nil
}

func makeLogger() {
	cfg := zap.NewDevelopmentConfig()
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	cfg.EncoderConfig.EncodeTime = func(t time.Time, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + t.Format("15:04:05.000") + reset)
	}
	cfg.EncoderConfig.EncodeCaller = func(ec zapcore.EntryCaller, pae zapcore.PrimitiveArrayEncoder) {
		pae.AppendString(gray + ec.TrimmedPath() + reset)
	}

	var level zapcore.Level
	if err := level.Set(viper.GetString("app.log_level")); err != nil {
		level = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(level)

	cfg.DisableStacktrace = true

	log, _ := cfg.Build()
	zap.ReplaceGlobals(log)
}

func cacheFor(sec int) gin.HandlerFunc {
	return cache.CacheByRequestURI(store, time.Second*time.Duration(sec))
}
