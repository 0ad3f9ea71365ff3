package handlers

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sagabat/transaction-manage/internal/core/domain"
	portssvc "github.com/sagabat/transaction-manage/internal/core/ports/services"
	"github.com/sagabat/transaction-manage/internal/dto"
	"github.com/sagabat/transaction-manage/internal/middleware"
)

// transactionHandler handles HTTP requests related to transactions.
type transactionHandler struct {
	tokens       portssvc.TokenSvc
	transactions portssvc.TransactionSvcFacade
	query        portssvc.QuerySvc
	audit        portssvc.AuditSvc
}

func newTransactionHandler(services *portssvc.ServiceContainer) *transactionHandler {
	return &transactionHandler{
		tokens:       services.Token,
		transactions: services.Transaction,
		query:        services.Query,
		audit:        services.Audit,
	}
}

// registerTransactionRoutes registers routes related to transactions.
func registerTransactionRoutes(rg *gin.RouterGroup, services *portssvc.ServiceContainer) {
	h := newTransactionHandler(services)

	txns := rg.Group("/transactions")
	{
		txns.GET("/token", h.issueToken)
		txns.POST("", h.createTransaction)
		txns.GET("", h.listTransactions)
		txns.GET("/outgoing", h.listOutgoing)
		txns.GET("/incoming", h.listIncoming)
		txns.GET("/all", h.listAll)
		txns.PUT("/:transactionID", h.modifyTransaction)
		txns.DELETE("/:transactionID", h.deleteTransaction)
		txns.GET("/:transactionID/audit", h.listAudit)
	}
}

func (h *transactionHandler) issueToken(c *gin.Context) {
	token, expiresAt, err := h.tokens.Issue(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to issue token")
		return
	}
	c.JSON(http.StatusOK, dto.TokenResponse{
		Token:     token,
		ExpiresIn: h.tokens.TTL().String(),
		ExpiresAt: expiresAt.UTC(),
	})
}

func (h *transactionHandler) createTransaction(c *gin.Context) {
	logger := middleware.GetLoggerFromCtx(c.Request.Context())
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactions.CreateTransaction(c.Request.Context(), req)
	if err != nil {
		respondError(c, err, "Failed to create transaction")
		return
	}

	logger.Info("Transaction created", slog.String("transaction_id", txn.ID()))
	c.JSON(http.StatusCreated, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) modifyTransaction(c *gin.Context) {
	transactionID := c.Param("transactionID")
	var req dto.TransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	txn, err := h.transactions.ModifyTransaction(c.Request.Context(), transactionID, req)
	if err != nil {
		respondError(c, err, "Failed to modify transaction")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransactionResponse(txn))
}

func (h *transactionHandler) deleteTransaction(c *gin.Context) {
	if err := h.transactions.DeleteTransaction(c.Request.Context(), c.Param("transactionID")); err != nil {
		respondError(c, err, "Failed to delete transaction")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *transactionHandler) listOutgoing(c *gin.Context) {
	h.listByAccount(c, h.query.ListOutgoing)
}

func (h *transactionHandler) listIncoming(c *gin.Context) {
	h.listByAccount(c, h.query.ListIncoming)
}

func (h *transactionHandler) listAll(c *gin.Context) {
	h.listByAccount(c, h.query.ListAll)
}

type listFunc func(ctx context.Context, accountID string) ([]domain.LedgerLeg, error)

func (h *transactionHandler) listByAccount(c *gin.Context, list listFunc) {
	var params dto.AccountQueryParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	legs, err := list(c.Request.Context(), params.AccountID)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListLegsResponse{Transactions: dto.ToLedgerLegResponses(legs)})
}

func (h *transactionHandler) listTransactions(c *gin.Context) {
	var params dto.ListTransactionsParams
	if err := c.ShouldBindQuery(&params); err != nil {
		respondBindError(c, err)
		return
	}
	legs, err := h.query.ListTransactions(c.Request.Context(), params.AccountID, params.Page, params.Size)
	if err != nil {
		respondError(c, err, "Failed to list transactions")
		return
	}
	c.JSON(http.StatusOK, dto.ListLegsResponse{
		Transactions: dto.ToLedgerLegResponses(legs),
		Page:         &params.Page,
		Size:         &params.Size,
	})
}

func (h *transactionHandler) listAudit(c *gin.Context) {
	entries, err := h.audit.ListByTransaction(c.Request.Context(), c.Param("transactionID"))
	if err != nil {
		respondError(c, err, "Failed to list audit entries")
		return
	}
	c.JSON(http.StatusOK, gin.H{"entries": dto.ToAuditEntryResponses(entries)})
}
