package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/DataflowSolutions/Oncore-sub001/internal/advancing"
)

type sessionPayload struct {
	ID     string `json:"id"`
	ShowID string `json:"show_id"`
	Title  string `json:"title"`
}

func (h *httpHandler) handleSaveSession(c *gin.Context) {
	var request sessionPayload
	if err := c.ShouldBindJSON(&request); err != nil || request.ShowID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	session := advancing.Session{
		ID:     request.ID,
		ShowID: request.ShowID,
		Title:  request.Title,
	}
	if err := h.advancing.SaveSession(c.Request.Context(), &session); err != nil {
		h.logger.Error("failed to save session", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save_failed"})
		return
	}
	c.JSON(http.StatusOK, session)
}

// handleLoadGrid decodes one grid type. Row ids come from the client via the
// rows query parameter since row membership lives in the document layout.
func (h *httpHandler) handleLoadGrid(c *gin.Context) {
	rowIDs := splitRowIDs(c.Query("rows"))
	rows, err := h.advancing.LoadGrid(c.Request.Context(), c.Param("id"), c.Param("gridType"), rowIDs)
	if err != nil {
		h.logger.Error("failed to load grid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "load_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"rows": rows})
}

type saveGridPayload struct {
	PartyType string              `json:"party_type"`
	Rows      []advancing.GridRow `json:"rows"`
}

func (h *httpHandler) handleSaveGrid(c *gin.Context) {
	var request saveGridPayload
	if err := c.ShouldBindJSON(&request); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_request"})
		return
	}
	outcome, err := h.advancing.SaveGrid(c.Request.Context(), c.Param("id"), c.Param("gridType"), request.PartyType, request.Rows)
	if err != nil {
		var serviceErr *advancing.ServiceError
		if errors.As(err, &serviceErr) && serviceErr.Code() == "advancing.save_grid.encode_failed" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid_grid"})
			return
		}
		h.logger.Error("failed to save grid", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":          "save_failed",
			"inserted":       outcome.Inserted,
			"updated":        outcome.Updated,
			"failed_updates": outcome.FailedUpdates,
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"inserted": outcome.Inserted,
		"updated":  outcome.Updated,
	})
}

func (h *httpHandler) handleSessionScheduleSync(c *gin.Context) {
	outcome, err := h.advancing.SyncSessionEvents(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, advancing.ErrSessionNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "not_found"})
			return
		}
		h.logger.Error("failed to sync session events", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "sync_failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"unchanged": outcome.Unchanged,
		"deleted":   outcome.Deleted,
		"created":   outcome.Created,
		"skipped":   outcome.Skipped,
	})
}

func splitRowIDs(raw string) []string {
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	ids := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			ids = append(ids, trimmed)
		}
	}
	return ids
}
