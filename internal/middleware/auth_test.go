package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/errorspkg"
	"github.com/finbase/ledger-api/pkg/ratelimitpkg"
	"github.com/finbase/ledger-api/pkg/web"
)

func protectedRouter(auth Authenticator, limiter *ratelimitpkg.Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.GET("/protected", AuthMiddleware(auth, limiter), func(gctx *gin.Context) {
		keyID := gctx.MustGet(AuthKeyIDKey).(uuid.UUID)
		accountID := gctx.MustGet(AuthAccountIDKey).(uuid.UUID)

		gctx.JSON(http.StatusOK, gin.H{"key_id": keyID, "account_id": accountID})
	})

	return router
}

func decodeError(t *testing.T, body []byte) web.ErrorResponse {
	t.Helper()

	var resp web.ErrorResponse
	require.NoError(t, json.Unmarshal(body, &resp))

	return resp
}

func TestAuthMiddleware(t *testing.T) {
	key := domain.APIKey{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Fingerprint: "ab12cd34ef56ab78",
	}

	testCases := []struct {
		name       string
		header     string
		buildStubs func(auth *MockAuthenticator)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "No header",
			header: "",
			buildStubs: func(auth *MockAuthenticator) {
				auth.EXPECT().Authenticate(gomock.Any(), gomock.Any()).Times(0)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   web.CodeMissingAPIKey,
		},
		{
			name:   "Invalid key",
			header: "wrong-key",
			buildStubs: func(auth *MockAuthenticator) {
				auth.EXPECT().Authenticate(gomock.Any(), "wrong-key").
					Return(domain.APIKey{}, domain.ErrAPIKeyInvalid)
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   web.CodeInvalidAPIKey,
		},
		{
			name:   "Corrupt stored hash",
			header: "some-key",
			buildStubs: func(auth *MockAuthenticator) {
				auth.EXPECT().Authenticate(gomock.Any(), "some-key").
					Return(domain.APIKey{}, domain.ErrKeyHashCorrupt)
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   web.CodeCryptoError,
		},
		{
			name:   "Lookup failure",
			header: "some-key",
			buildStubs: func(auth *MockAuthenticator) {
				auth.EXPECT().Authenticate(gomock.Any(), "some-key").
					Return(domain.APIKey{}, errorspkg.ErrInternal)
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   web.CodeDatabaseError,
		},
		{
			name:   "Authenticated",
			header: "valid-key",
			buildStubs: func(auth *MockAuthenticator) {
				auth.EXPECT().Authenticate(gomock.Any(), "valid-key").Return(key, nil)
			},
			wantStatus: http.StatusOK,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			auth := NewMockAuthenticator(ctrl)
			tc.buildStubs(auth)

			router := protectedRouter(auth, ratelimitpkg.New(60, time.Minute))

			req := httptest.NewRequest(http.MethodGet, "/protected", nil)
			if tc.header != "" {
				req.Header.Set(APIKeyHeaderKey, tc.header)
			}

			recorder := httptest.NewRecorder()
			router.ServeHTTP(recorder, req)

			require.Equal(t, tc.wantStatus, recorder.Code)

			if tc.wantCode != "" {
				resp := decodeError(t, recorder.Body.Bytes())
				require.Equal(t, tc.wantCode, resp.Code)
				require.Equal(t, tc.wantCode, resp.Legacy)
			}
		})
	}
}

func TestAuthMiddlewareRateLimited(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	key := domain.APIKey{
		ID:          uuid.New(),
		AccountID:   uuid.New(),
		Fingerprint: "ab12cd34ef56ab78",
	}

	auth := NewMockAuthenticator(ctrl)
	auth.EXPECT().Authenticate(gomock.Any(), "valid-key").Return(key, nil).Times(3)

	// Authentication still runs on the limited request; only the counter
	// decides whether the request proceeds.
	router := protectedRouter(auth, ratelimitpkg.New(2, time.Minute))

	statuses := []int{}

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/protected", nil)
		req.Header.Set(APIKeyHeaderKey, "valid-key")

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, req)

		statuses = append(statuses, recorder.Code)

		if recorder.Code == http.StatusTooManyRequests {
			resp := decodeError(t, recorder.Body.Bytes())
			require.Equal(t, web.CodeRateLimited, resp.Code)
		}
	}

	require.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, statuses)
}
