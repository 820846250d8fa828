package server

import (
	"slices"
	"time"

	"reelshare/domain/model"
	"reelshare/domain/repository"
	httpHandler "reelshare/interfaces/http"
	"reelshare/interfaces/middleware"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

var defaultOrigins = []string{"http://localhost:3000", "http://localhost:5173", "http://localhost:4200"}

func InitiateRouter(
	secretKey string,
	allowOrigins []string,
	accountRepository repository.IAccount,
	accountHandler httpHandler.IAccountHandler,
	reelHandler httpHandler.IReelHandler,
	pushHandler httpHandler.IPushHandler,
	healthHandler httpHandler.IHealthHandler,
) *gin.Engine {
	if len(allowOrigins) == 0 {
		allowOrigins = defaultOrigins
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(cors.New(cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", "X-Requested-With", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: true,
		AllowOriginFunc: func(origin string) bool {
			return slices.Contains(allowOrigins, "*") || slices.Contains(allowOrigins, origin)
		},
		MaxAge: 12 * time.Hour,
	}))

	router.GET("/healthz", healthHandler.Health)
	router.GET("/api/health", healthHandler.Health)

	auth := router.Group("/api/auth")
	auth.POST("/register", accountHandler.Register)
	auth.POST("/login", accountHandler.Login)
	router.GET("/api/push/vapid-key", pushHandler.VAPIDPublicKey)

	api := router.Group("/api")
	api.Use(middleware.Auth(secretKey, accountRepository))
	api.GET("/auth/me", accountHandler.Me)

	sender := middleware.RequireRole(model.RoleSender)
	reels := api.Group("/reels")
	{
		reels.POST("", sender, reelHandler.Submit)
		reels.POST("/bulk", sender, reelHandler.BulkSubmit)
		reels.POST("/resolve", reelHandler.Resolve)
		reels.GET("", reelHandler.List)
		reels.GET("/mine", sender, reelHandler.ListMine)
		reels.GET("/stats", reelHandler.Stats)
		reels.GET("/stream", reelHandler.Stream)
		reels.GET("/:id", reelHandler.Get)
		reels.POST("/:id/retry", sender, reelHandler.Retry)
		reels.DELETE("/:id", sender, reelHandler.Delete)
	}

	push := api.Group("/push")
	{
		push.POST("/subscribe", pushHandler.Subscribe)
		push.DELETE("/subscribe", pushHandler.Unsubscribe)
		push.POST("/send", sender, pushHandler.Send)
	}

	return router
}
