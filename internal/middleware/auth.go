package middleware

import (
	"codepath_backend/internal/config"
	"codepath_backend/internal/model"
	"codepath_backend/internal/util"
	"codepath_backend/pkg/logger"
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserProvisioner 根据令牌查找或创建本地用户
type UserProvisioner interface {
	EnsureUser(ctx context.Context, claims *util.Claims) (*model.User, error)
}

func bearerToken(c *gin.Context) string {
	tokenString := ""
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		tokenString = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if tokenString == "" {
		tokenString = c.Query("token")
	}
	return tokenString
}

func AuthMiddleware(cfg *config.Config, users UserProvisioner) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := bearerToken(c)
		if tokenString == "" {
			util.Unauthorized(c)
			c.Abort()
			return
		}

		claims, err := util.ParseJWT(tokenString, cfg.JWT.Secret)
		if err != nil {
			logger.Log.Debug("JWT解析错误", zap.Error(err))
			util.Unauthorized(c)
			c.Abort()
			return
		}

		user, err := users.EnsureUser(c.Request.Context(), claims)
		if err != nil {
			util.LogInternalError(c, err)
			c.Abort()
			return
		}

		c.Set(util.CtxClaims, claims)
		c.Set(util.CtxUserID, user.ID)
		c.Next()
	}
}
