package middleware

import (
	"net/http"
	"strings"

	"socialcast/domain/dto"
	"socialcast/domain/model"
	"socialcast/infrastructure/configuration"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

// Auth verifies the Bearer token and exposes the caller as user_id for
// downstream handlers.
func Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{
				ResponseCode:    "401",
				ResponseMessage: "Missing or malformed authorization header",
			})
			return
		}
		raw := strings.TrimPrefix(header, "Bearer ")

		claims := &model.UserClaims{}
		token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(configuration.C.App.SecretKey), nil
		})
		if err != nil || !token.Valid || claims.UserName == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{
				ResponseCode:    "401",
				ResponseMessage: "Invalid or expired token",
			})
			return
		}

		c.Set("user_id", claims.UserName)
		c.Next()
	}
}
