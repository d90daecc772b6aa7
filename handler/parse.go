package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/chrispoponi/contractflowai-web-sub001/middleware"
	"github.com/chrispoponi/contractflowai-web-sub001/pkg/logger"
	"github.com/chrispoponi/contractflowai-web-sub001/service"
)

// ContractParser runs the extraction pipeline.
type ContractParser interface {
	Parse(ctx context.Context, req service.ParseRequest) (*service.ParseResult, error)
}

type ParseHandler struct {
	parser ContractParser
}

func NewParseHandler(parser ContractParser) *ParseHandler {
	return &ParseHandler{parser: parser}
}

// ParseContractRequest is the body of POST /api/parse-contract. Persist
// defaults to true when omitted.
type ParseContractRequest struct {
	ContractID  string `json:"contractId"`
	StoragePath string `json:"storagePath"`
	UserID      string `json:"userId"`
	Persist     *bool  `json:"persist"`
}

// ParseContract handles a synchronous parse request.
func (h *ParseHandler) ParseContract(c *gin.Context) {
	var req ParseContractRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	// a caller may only parse on their own behalf
	if caller := middleware.GetUserID(c); caller != "" && req.UserID != "" && req.StoragePath != "" && req.UserID != caller {
		logger.Warn(c.Request.Context(), "parse request for another user rejected", "body_user_id", req.UserID)
		c.JSON(http.StatusForbidden, gin.H{"error": "userId does not match authenticated user"})
		return
	}

	persist := true
	if req.Persist != nil {
		persist = *req.Persist
	}

	result, err := h.parser.Parse(c.Request.Context(), service.ParseRequest{
		ContractID:  req.ContractID,
		StoragePath: req.StoragePath,
		UserID:      req.UserID,
		Persist:     persist,
	})
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, service.ErrValidation) {
			status = http.StatusBadRequest
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, result)
}
