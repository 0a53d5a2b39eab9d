// Package transactiondelivery manages delivery layer of transactions.
package transactiondelivery

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

// Service provides service layer interface needed by transaction delivery layer.
//
//go:generate mockgen -source http.go -destination http_mock.go -package transactiondelivery
type Service interface {
	Create(ctx context.Context, arg domain.CreateTransactionParams) (domain.Transaction, error)
	Get(ctx context.Context, id uuid.UUID) (domain.Transaction, error)
	List(ctx context.Context) ([]domain.Transaction, error)
}

// Handler facilitates transaction delivery layer logic.
type Handler struct {
	service Service
}

// NewHandler returns transaction handler.
func NewHandler(ts Service) Handler {
	return Handler{service: ts}
}

type data struct {
	Transaction domain.Transaction `json:"transaction"`
}

type response struct {
	Data data `json:"data,omitempty"`
}

type createRequest struct {
	TxnType       string          `json:"txn_type" binding:"required"`
	FromAccountID *uuid.UUID      `json:"from_account_id"`
	ToAccountID   *uuid.UUID      `json:"to_account_id"`
	Amount        decimal.Decimal `json:"amount" binding:"required"`
}

// Create handles http request to create a transaction.
func (h *Handler) Create(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req createRequest
	if err := gctx.ShouldBindJSON(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	txn, err := h.service.Create(ctx, domain.CreateTransactionParams{
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		TxnType:       req.TxnType,
	})
	if err != nil {
		code, status := mapCreateError(err)
		gctx.JSON(status, web.Error(code, err.Error()))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}

// mapCreateError pairs each engine error with its stable code and status.
func mapCreateError(err error) (string, int) {
	switch err {
	case domain.ErrInvalidTxnType:
		return web.CodeInvalidTxnType, http.StatusBadRequest
	case domain.ErrCreditHasFromAccount, domain.ErrCreditMissingToAccount:
		return web.CodeInvalidCredit, http.StatusBadRequest
	case domain.ErrDebitMissingFromAccount, domain.ErrDebitHasToAccount:
		return web.CodeInvalidDebit, http.StatusBadRequest
	case domain.ErrTransferMissingAccounts:
		return web.CodeInvalidTransfer, http.StatusBadRequest
	case domain.ErrInvalidAmount:
		return web.CodeInvalidAmount, http.StatusBadRequest
	case domain.ErrInsufficientBalance:
		return web.CodeInsufficientFunds, http.StatusBadRequest
	case domain.ErrAccountNotFound:
		return web.CodeNotFound, http.StatusNotFound
	default:
		return web.CodeDatabaseError, http.StatusInternalServerError
	}
}

type getRequest struct {
	ID string `uri:"id" binding:"required,uuid"`
}

// Get handles http request to get a transaction.
func (h *Handler) Get(gctx *gin.Context) {
	ctx := gctx.Request.Context()
	l := zerolog.Ctx(gctx)

	var req getRequest
	if err := gctx.ShouldBindUri(&req); err != nil {
		l.Info().Err(err).Send()
		gctx.JSON(http.StatusBadRequest, web.Error(web.CodeValidationError, web.BindingErrorMessage(err)))

		return
	}

	txn, err := h.service.Get(ctx, uuid.MustParse(req.ID))
	if err != nil {
		if err == domain.ErrTransactionNotFound {
			gctx.JSON(http.StatusNotFound, web.Error(web.CodeNotFound, "Transaction not found"))
			return
		}

		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch transaction"))

		return
	}

	gctx.JSON(http.StatusOK, response{Data: data{txn}})
}

type dataTransactions struct {
	Transactions []domain.Transaction `json:"transactions"`
}

type responseTransactions struct {
	Data dataTransactions `json:"data,omitempty"`
}

// List handles http request to list transactions.
func (h *Handler) List(gctx *gin.Context) {
	ctx := gctx.Request.Context()

	txns, err := h.service.List(ctx)
	if err != nil {
		gctx.JSON(http.StatusInternalServerError, web.Error(web.CodeDatabaseError, "Failed to fetch transactions"))
		return
	}

	gctx.JSON(http.StatusOK, responseTransactions{Data: dataTransactions{txns}})
}
