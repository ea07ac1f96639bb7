package api

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"crisis-service/internal/crisis"
	"crisis-service/internal/db"
	"crisis-service/internal/dispatch"
	"crisis-service/internal/logging"
	"crisis-service/internal/models"
)

type Handler struct {
	crisis   *crisis.Service
	store    db.Store
	dispatch *dispatch.Service
	logger   *logging.Logger
}

func NewHandler(svc *crisis.Service, store db.Store, dsp *dispatch.Service, logger *logging.Logger) *Handler {
	return &Handler{crisis: svc, store: store, dispatch: dsp, logger: logger}
}

// Evaluate runs one input unit through the detection pipeline.
func (h *Handler) Evaluate(c *gin.Context) {
	var req crisis.EvaluateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid evaluate request: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	result, err := h.crisis.EvaluateInput(c.Request.Context(), req)
	if err != nil {
		h.logger.Errorf("Evaluate failed: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, result)
}

type resolveRequest struct {
	HandledBy string `json:"handled_by" binding:"required"`
}

// ResolveAlert marks an alert handled. Idempotent.
func (h *Handler) ResolveAlert(c *gin.Context) {
	id := c.Param("id")
	var req resolveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Errorf("Invalid resolve request for alert %s: %v", id, err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}

	if err := h.crisis.ResolveAlert(c.Request.Context(), id, req.HandledBy); err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Errorf("Resolve alert %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to resolve alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "handled"})
}

func (h *Handler) GetAlert(c *gin.Context) {
	id := c.Param("id")
	alert, err := h.store.GetAlert(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrAlertNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Alert not found"})
			return
		}
		h.logger.Errorf("Get alert %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alert"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alert": alert, "status": alert.Status()})
}

func (h *Handler) GetAlertAudit(c *gin.Context) {
	id := c.Param("id")
	events, err := h.store.AuditEventsByAlert(c.Request.Context(), id)
	if err != nil {
		h.logger.Errorf("Get audit trail for alert %s failed: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get audit trail"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"events": events, "total": len(events)})
}

func (h *Handler) GetAlertsBySubject(c *gin.Context) {
	subjectID := c.Param("subject_id")
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}

	alerts, total, err := h.store.AlertsBySubject(c.Request.Context(), subjectID, limit, offset)
	if err != nil {
		h.logger.Errorf("Get alerts for subject %s failed: %v", subjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get alerts"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"alerts": alerts, "total": total, "limit": limit, "offset": offset})
}

func (h *Handler) GetResources(c *gin.Context) {
	language := c.DefaultQuery("language", "en")
	jurisdiction := c.DefaultQuery("jurisdiction", models.JurisdictionInternational)
	resources := h.crisis.Resources(language, jurisdiction)
	c.JSON(http.StatusOK, gin.H{"resources": resources, "total": len(resources)})
}

func (h *Handler) GetHistory(c *gin.Context) {
	subjectID := c.Param("subject_id")
	snap, err := h.crisis.History(c.Request.Context(), subjectID)
	if err != nil {
		h.logger.Errorf("History lookup for subject %s failed: %v", subjectID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get history"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (h *Handler) CreateContactPoint(c *gin.Context) {
	var cp models.ContactPoint
	if err := c.ShouldBindJSON(&cp); err != nil {
		h.logger.Errorf("Invalid request body for contact point: %v", err)
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body"})
		return
	}
	if cp.Role == "" || cp.Type == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "role and type are required"})
		return
	}
	cp.ID = uuid.New().String()
	cp.CreatedAt = time.Now()
	cp.Status = "active"

	if err := h.store.CreateContactPoint(c.Request.Context(), cp); err != nil {
		h.logger.Errorf("Failed to create contact point: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create contact point"})
		return
	}
	h.logger.Infof("Created contact point: %s (role=%s)", cp.ID, cp.Role)
	c.JSON(http.StatusCreated, cp)
}

func (h *Handler) GetContactPoint(c *gin.Context) {
	id := c.Param("id")
	cp, err := h.store.GetContactPoint(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, db.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact point not found"})
			return
		}
		h.logger.Errorf("Failed to get contact point %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get contact point"})
		return
	}
	c.JSON(http.StatusOK, cp)
}

func (h *Handler) DeleteContactPoint(c *gin.Context) {
	id := c.Param("id")
	if err := h.store.DeleteContactPoint(c.Request.Context(), id); err != nil {
		if errors.Is(err, db.ErrContactNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Contact point not found"})
			return
		}
		h.logger.Errorf("Failed to delete contact point %s: %v", id, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete contact point"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "deleted"})
}
