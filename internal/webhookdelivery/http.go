// Package webhookdelivery manages delivery layer of webhook registration.
package webhookdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/web"
)

// Service provides service layer interface needed by webhook delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package webhookdelivery
type Service interface {
	Create(ctx context.Context, accountID uuid.UUID, url string) (domain.Webhook, error)
	List(ctx context.Context) ([]domain.Webhook, error)
}

// Handler facilitates webhook delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns webhook handler.
func NewHandler(ws Service) Handler {
	return Handler{service: ws}
}

type data struct {
	Webhook domain.Webhook `json:"webhook"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	AccountID string `json:"account_id" binding:"required,uuid"`
	URL       string `json:"url" binding:"required,url"`
}

// Create handles http request to register a webhook. The returned record
// includes the generated signing secret.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	webhook, err := h.service.Create(ctx, uuid.MustParse(req.AccountID), req.URL)
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, "Account not found"))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to create webhook"))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{webhook}})
}

type dataWebhooks struct {
	Webhooks []domain.Webhook `json:"webhooks"`
}

type responseWebhooks struct {
	Data dataWebhooks `json:"data,omitempty"`
}

// List handles http request to list webhooks.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	webhooks, err := h.service.List(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch webhooks"))
		return
	}

	gctx.JSON(http.StatusOK, responseWebhooks{Data: dataWebhooks{webhooks}})
}
