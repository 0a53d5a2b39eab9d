// Package apikeydelivery manages delivery layer of API keys.
package apikeydelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/web"
)

// Service provides service layer interface needed by API key delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package apikeydelivery
type Service interface {
	Create(ctx context.Context, accountID uuid.UUID) (domain.APIKeyWithSecret, error)
}

// Handler facilitates API key delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns API key handler.
func NewHandler(ks Service) Handler {
	return Handler{service: ks}
}

type data struct {
	APIKey domain.APIKeyWithSecret `json:"api_key"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
}

// Create handles http request to issue an API key. The response carries the
// raw key; it is the only time it will ever be visible.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	key, err := h.service.Create(ctx, uuid.MustParse(req.AccountID))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, "Account not found"))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to create API key"))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{key}})
}
