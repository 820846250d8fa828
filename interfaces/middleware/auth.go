package middleware

import (
	"errors"
	"net/http"
	"strings"

	"reelshare/domain/dto"
	"reelshare/domain/model"
	"reelshare/domain/repository"
	"reelshare/infrastructure/logger"
	"reelshare/infrastructure/utils"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt"
)

const (
	KeyUserID   = "user_id"
	KeyUsername = "username"
	KeyRole     = "role"
)

// Auth validates the bearer token and loads the account it names. The
// account's stored role wins over the role carried in the token.
func Auth(secretKey string, accountRepository repository.IAccount) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		authorization := ctx.Request.Header.Get("Authorization")
		token, ok := strings.CutPrefix(authorization, "Bearer ")
		if !ok || strings.TrimSpace(token) == "" {
			unauthorized(ctx, "Unauthorized")
			return
		}

		claims, err := utils.ParseToken(strings.TrimSpace(token), secretKey)
		if err != nil {
			unauthorized(ctx, tokenMessage(err))
			return
		}

		account, err := accountRepository.GetByID(ctx.Request.Context(), claims.Subject)
		if err != nil {
			if !errors.Is(err, repository.ErrNotFound) {
				logger.GetLogger().WithField("error", err).Error("Error while loading account for token")
			}
			unauthorized(ctx, "Unauthorized")
			return
		}

		ctx.Set(KeyUserID, account.ID.Hex())
		ctx.Set(KeyUsername, account.Username)
		ctx.Set(KeyRole, string(account.Role))
		ctx.Next()
	}
}

// RequireRole must run after Auth.
func RequireRole(roles ...model.Role) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		role := model.Role(ctx.GetString(KeyRole))
		for _, r := range roles {
			if r == role {
				ctx.Next()
				return
			}
		}
		ctx.AbortWithStatusJSON(http.StatusForbidden, dto.Res{
			ResponseCode:    "403",
			ResponseMessage: "Access denied for role " + string(role),
		})
	}
}

func unauthorized(ctx *gin.Context, message string) {
	ctx.AbortWithStatusJSON(http.StatusUnauthorized, dto.Res{ResponseCode: "401", ResponseMessage: message})
}

func tokenMessage(err error) string {
	var ve *jwt.ValidationError
	if errors.As(err, &ve) {
		switch {
		case ve.Errors&jwt.ValidationErrorMalformed != 0:
			return "That's not even a token"
		case ve.Errors&(jwt.ValidationErrorExpired|jwt.ValidationErrorNotValidYet) != 0:
			return "Timing is everything"
		}
	}
	return "Couldn't handle this token"
}
