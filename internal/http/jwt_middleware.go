package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"charchat/internal/domain"
	"charchat/internal/service"
)

const authUserKey = "auth_user"

// AuthRequired valida el bearer token, carga el usuario desde la base y lo
// guarda en el contexto. Sin token válido la petición se rechaza con 401.
func AuthRequired(jwtSvc *service.JWTService, authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil || authSvc == nil {
			abortError(c, http.StatusInternalServerError, "auth not configured")
			return
		}

		token, ok := bearerToken(c)
		if !ok {
			abortError(c, http.StatusUnauthorized, "missing token")
			return
		}

		claims, err := jwtSvc.ParseToken(token)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		user, err := authSvc.GetUser(c.Request.Context(), claims.UserID)
		if err != nil {
			abortError(c, http.StatusUnauthorized, "invalid token")
			return
		}

		c.Set(authUserKey, user)
		c.Next()
	}
}

// AuthOptional intenta resolver el usuario si hay token; sin token o con token
// inválido la petición continúa sin usuario.
func AuthOptional(jwtSvc *service.JWTService, authSvc *service.AuthService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if jwtSvc == nil || authSvc == nil {
			c.Next()
			return
		}
		token, ok := bearerToken(c)
		if !ok {
			c.Next()
			return
		}
		claims, err := jwtSvc.ParseToken(token)
		if err != nil {
			c.Next()
			return
		}
		if user, err := authSvc.GetUser(c.Request.Context(), claims.UserID); err == nil {
			c.Set(authUserKey, user)
		}
		c.Next()
	}
}

// CurrentUser obtiene el usuario autenticado desde el contexto.
func CurrentUser(c *gin.Context) (domain.User, bool) {
	val, ok := c.Get(authUserKey)
	if !ok {
		return domain.User{}, false
	}
	user, ok := val.(domain.User)
	return user, ok
}

func currentUserID(c *gin.Context) string {
	user, ok := CurrentUser(c)
	if !ok {
		return ""
	}
	return user.ID
}

func bearerToken(c *gin.Context) (string, bool) {
	header := strings.TrimSpace(c.GetHeader("Authorization"))
	if header == "" || !strings.HasPrefix(strings.ToLower(header), "bearer ") {
		return "", false
	}
	token := strings.TrimSpace(header[len("Bearer "):])
	return token, token != ""
}
