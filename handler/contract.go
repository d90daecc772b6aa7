package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/chrispoponi/contractflowai-web-sub001/middleware"
	"github.com/chrispoponi/contractflowai-web-sub001/pkg/logger"
	"github.com/chrispoponi/contractflowai-web-sub001/service"
)

// ContractHandler serves read-only views of parsed contracts. Every lookup is
// scoped to the caller.
type ContractHandler struct {
	contracts service.ContractRepository
	storage   service.ObjectStorage
}

func NewContractHandler(contracts service.ContractRepository, storage service.ObjectStorage) *ContractHandler {
	return &ContractHandler{
		contracts: contracts,
		storage:   storage,
	}
}

// callerID is the authenticated subject, or the userId query parameter when
// auth is disabled.
func callerID(c *gin.Context) string {
	if id := middleware.GetUserID(c); id != "" {
		return id
	}
	return c.Query("userId")
}

// Get returns a single contract record
func (h *ContractHandler) Get(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	contract, err := h.contracts.Get(c.Request.Context(), c.Param("id"), userID)
	if errors.Is(err, service.ErrContractNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if err != nil {
		logger.Error(c.Request.Context(), "contract lookup failed", "contract_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":           contract.ID,
		"title":        contract.Title,
		"summary":      contract.Summary,
		"summary_path": contract.SummaryPath,
		"updated_at":   contract.UpdatedAt.Format(time.RFC3339),
	})
}

// GetSummary returns the stored summary artifact for a contract verbatim
func (h *ContractHandler) GetSummary(c *gin.Context) {
	userID := callerID(c)
	if userID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "userId is required"})
		return
	}

	ctx := c.Request.Context()
	contract, err := h.contracts.Get(ctx, c.Param("id"), userID)
	if errors.Is(err, service.ErrContractNotFound) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Contract not found"})
		return
	}
	if err != nil {
		logger.Error(ctx, "contract lookup failed", "contract_id", c.Param("id"), "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load contract"})
		return
	}

	if contract.SummaryPath == nil || *contract.SummaryPath == "" {
		c.JSON(http.StatusNotFound, gin.H{"error": "Summary not available"})
		return
	}

	obj, err := h.storage.Download(ctx, *contract.SummaryPath)
	if err != nil {
		logger.Error(ctx, "summary download failed", "contract_id", contract.ID, "key", *contract.SummaryPath, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load summary"})
		return
	}

	c.Data(http.StatusOK, "application/json", obj.Data)
}
