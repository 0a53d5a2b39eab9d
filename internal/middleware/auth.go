package middleware

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/ratelimitpkg"
	"github.com/finbase/ledger-api/pkg/web"
)

const (
	// APIKeyHeaderKey is the inbound header carrying the raw API key.
	APIKeyHeaderKey = "x-api-key"
	// AuthKeyIDKey is the gin context key holding the authenticated key id.
	AuthKeyIDKey = "auth_key_id"
	// AuthAccountIDKey is the gin context key holding the key's account id.
	AuthAccountIDKey = "auth_account_id"
)

// Authenticator resolves a presented raw API key to its stored record.
//
//go:generate mockgen -source auth.go -destination auth_mock.go -package middleware
type Authenticator interface {
	Authenticate(ctx context.Context, rawKey string) (domain.APIKey, error)
}

// AuthMiddleware gates protected routes behind API key authentication and
// per-key rate limiting. Missing, invalid and rate-limited credentials each
// produce a distinct machine-readable code.
func AuthMiddleware(auth Authenticator, limiter *ratelimitpkg.Limiter) gin.HandlerFunc {
	return func(gctx *gin.Context) {
		ctx := gctx.Request.Context()

		rawKey := gctx.GetHeader(APIKeyHeaderKey)
		if rawKey == "" {
			gctx.AbortWithStatusJSON(http.StatusUnauthorized,
				web.Error(web.CodeMissingAPIKey, "Missing x-api-key header"))
			return
		}

		key, err := auth.Authenticate(ctx, rawKey)
		if err != nil {
			switch err {
			case domain.ErrAPIKeyInvalid:
				gctx.AbortWithStatusJSON(http.StatusUnauthorized,
					web.Error(web.CodeInvalidAPIKey, "Invalid API key"))
			case domain.ErrKeyHashCorrupt:
				gctx.AbortWithStatusJSON(http.StatusInternalServerError,
					web.Error(web.CodeCryptoError, "Invalid key hash format"))
			default:
				gctx.AbortWithStatusJSON(http.StatusInternalServerError,
					web.Error(web.CodeDatabaseError, "Failed to validate API key"))
			}

			return
		}

		if !limiter.Allow(key.Fingerprint) {
			gctx.AbortWithStatusJSON(http.StatusTooManyRequests,
				web.Error(web.CodeRateLimited, "Too many requests"))
			return
		}

		gctx.Set(AuthKeyIDKey, key.ID)
		gctx.Set(AuthAccountIDKey, key.AccountID)
		gctx.Next()
	}
}
