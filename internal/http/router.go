package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// NewRouter configura el router de Gin con middlewares y rutas bajo /api.
func NewRouter(
	logger *zap.Logger,
	jwtMiddleware gin.HandlerFunc,
	optionalJWTMiddleware gin.HandlerFunc,
	authH *AuthHandler,
	characterH *CharacterHandler,
	messageH *MessageHandler,
	uploadH *UploadHandler,
	frontendURL string,
	uploadDir string,
) *gin.Engine {
	r := gin.New()

	// Middlewares basicos: logging, recovery y CORS para el frontend.
	r.Use(zapLoggerMiddleware(logger), gin.Recovery(), corsMiddleware(frontendURL))

	r.GET("/", func(c *gin.Context) {
		respondMessage(c, http.StatusOK, "character chat api")
	})
	r.Static("/uploads", uploadDir)

	api := r.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", authH.Register)
	auth.POST("/login", authH.Login)
	auth.GET("/check-email", authH.CheckEmail)
	auth.GET("/me", jwtMiddleware, authH.Me)

	characters := api.Group("/characters")
	characters.GET("", optionalJWTMiddleware, characterH.List)
	characters.GET("/default", characterH.ListDefaults)
	characters.GET("/user", jwtMiddleware, characterH.ListOwned)
	characters.GET("/check-name", jwtMiddleware, characterH.CheckName)
	characters.GET("/:id", characterH.Get)
	characters.POST("", jwtMiddleware, characterH.Create)
	characters.PUT("/:id", jwtMiddleware, characterH.Update)
	characters.DELETE("/:id", jwtMiddleware, characterH.Delete)

	messages := api.Group("/messages", jwtMiddleware)
	messages.POST("/send", messageH.Send)
	messages.GET("/conversations", messageH.ListConversations)
	messages.GET("/conversations/:characterId", messageH.GetConversation)
	messages.DELETE("/conversations/:characterId", messageH.DeleteConversation)
	messages.DELETE("/:messageId", messageH.DeleteMessage)

	uploads := api.Group("/upload", jwtMiddleware)
	uploads.POST("/image", uploadH.Image)
	uploads.POST("/preview", uploadH.Preview)
	uploads.DELETE("/image", uploadH.DeleteImage)

	return r
}

// zapLoggerMiddleware crea un middleware simple de logging con zap.
func zapLoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("request",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", latency),
			zap.String("client_ip", c.ClientIP()),
		)
	}
}

// corsMiddleware habilita CORS para el origen del frontend; con origen vacío
// no se emiten cabeceras.
func corsMiddleware(frontendURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if frontendURL != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", frontendURL)
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
			c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
			c.Writer.Header().Set("Access-Control-Allow-Headers", "Authorization, Content-Type")
		}
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
