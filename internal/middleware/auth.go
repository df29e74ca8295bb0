package middleware

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/monocle-dev/expense-tracker/internal/apperrors"
	"github.com/monocle-dev/expense-tracker/internal/auth"
	applog "github.com/monocle-dev/expense-tracker/internal/log"
	"github.com/monocle-dev/expense-tracker/internal/models"
	"github.com/monocle-dev/expense-tracker/internal/types"
	"github.com/monocle-dev/expense-tracker/internal/utils"
)

// UserLookup resolves the user a token was issued to.
type UserLookup interface {
	GetByID(ctx context.Context, id uint) (*models.User, error)
}

// AuthMiddleware requires a valid bearer token for an active user. Browsers
// cannot set headers on websocket upgrades, so those may pass the token as
// the access_token query parameter instead.
func AuthMiddleware(tokens *auth.TokenManager, users UserLookup, log *applog.Logger) gin.HandlerFunc {
	log = log.WithComponent(applog.ComponentAuth)

	return func(ctx *gin.Context) {
		tokenString, err := bearerToken(ctx)
		if err != nil {
			utils.RespondError(ctx, log, err)
			return
		}

		claims, err := tokens.VerifyJWT(tokenString)
		if err != nil {
			utils.RespondError(ctx, log, apperrors.Unauthorized("Invalid or expired token"))
			return
		}

		user, err := users.GetByID(ctx.Request.Context(), claims.UserID)
		if err != nil {
			if apperrors.KindOf(err) == apperrors.KindNotFound {
				err = apperrors.Unauthorized("User not found")
			}
			utils.RespondError(ctx, log, err)
			return
		}

		if !user.IsActive {
			utils.RespondError(ctx, log, apperrors.Unauthorized("Account is inactive"))
			return
		}

		ctx.Set(types.ContextUserKey, types.AuthenticatedUser{
			ID:       user.ID,
			Email:    user.Email,
			Username: user.Username,
		})
		ctx.Next()
	}
}

func bearerToken(ctx *gin.Context) (string, error) {
	authHeader := ctx.GetHeader("Authorization")

	if authHeader == "" {
		if websocket.IsWebSocketUpgrade(ctx.Request) {
			if token := ctx.Query("access_token"); token != "" {
				return token, nil
			}
		}
		return "", apperrors.Unauthorized("Authorization token is required")
	}

	parts := strings.SplitN(authHeader, " ", 2)

	if len(parts) != 2 || parts[0] != types.TokenType || parts[1] == "" {
		return "", apperrors.Unauthorized("Authorization header format must be Bearer {token}")
	}

	return parts[1], nil
}
