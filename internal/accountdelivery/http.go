// Package accountdelivery manages delivery layer of accounts.
package accountdelivery

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/finbase/ledger-api/internal/domain"
	"github.com/finbase/ledger-api/pkg/web"
)

// Service provides service layer interface needed by account delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package accountdelivery
type Service interface {
	Create(ctx context.Context, businessName string, initialBalance *decimal.Decimal) (domain.Account, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Account, error)
	List(ctx context.Context) ([]domain.Account, error)
	GetBalance(ctx context.Context, id uuid.UUID) (domain.AccountBalance, error)
}

// Handler facilitates account delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns account handler.
func NewHandler(as Service) Handler {
	return Handler{service: as}
}

type data struct {
	Account domain.Account `json:"account"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	BusinessName   string           `json:"business_name" binding:"required"`
	InitialBalance *decimal.Decimal `json:"initial_balance"`
}

// Create handles http request to create an account.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	account, err := h.service.Create(ctx, req.BusinessName, req.InitialBalance)
	if err != nil {
		if err == domain.ErrNegativeInitialBalance {
			gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, err.Error()))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to create account"))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get an account.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	account, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, "Account not found"))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch account"))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{account}})
}

type dataAccounts struct {
	Accounts []domain.Account `json:"accounts"`
}

type responseAccounts struct {
	Data dataAccounts `json:"data,omitempty"`
}

// List handles http request to list accounts.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	accounts, err := h.service.List(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch accounts"))
		return
	}

	gctx.JSON(http.StatusOK, responseAccounts{Data: dataAccounts{accounts}})
}

type dataBalance struct {
	Balance domain.AccountBalance `json:"balance"`
}

type responseBalance struct {
	Data dataBalance `json:"data,omitempty"`
}

// GetBalance handles http request to get an account's balance.
func (h *Handler) GetBalance(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	balance, err := h.service.GetBalance(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrAccountNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, "Account not found"))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch balance"))

		return
	}

	gctx.JSON(http.StatusOK, responseBalance{Data: dataBalance{balance}})
}
