package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"basketly/models"
	"basketly/services/delivery"
	"basketly/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SessionRegistry opens and closes cart session engines.
type SessionRegistry interface {
	Open(sessionID string) (delivery.SessionEngine, error)
	Close(sessionID string) bool
}

type CartHandler struct {
	Sessions SessionRegistry
}

func NewCartHandler(sessions SessionRegistry) *CartHandler {
	return &CartHandler{Sessions: sessions}
}

type selectSlotRequest struct {
	SlotID string `json:"slotId" binding:"required"`
}

// CreateSession starts a new cart session and returns its id. The body may
// carry the initial cart; slot restore and auto-pick wait until a cart is known.
func (h *CartHandler) CreateSession(c *gin.Context) {
	logger := getLogger(c)

	var cart *models.CartState
	var body models.CartState
	switch err := c.ShouldBindJSON(&body); {
	case err == nil:
		cart = &body
	case errors.Is(err, io.EOF):
	default:
		utils.JSONError(c, http.StatusBadRequest, "Invalid cart payload", err.Error())
		return
	}

	sessionID := delivery.NewSessionID()
	engine, err := h.Sessions.Open(sessionID)
	if err != nil {
		logger.Error("Failed to open cart session", zap.Error(err))
		h.writeError(c, err)
		return
	}

	var snapshot models.SlotSnapshot
	if cart != nil {
		snapshot, err = engine.UpdateCart(c.Request.Context(), *cart)
	} else {
		snapshot, err = engine.Snapshot(c.Request.Context())
	}
	if err != nil {
		h.writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"sessionId": sessionID,
		"slots":     snapshot,
	})
}

// CloseSession tears the session's engine down. The persisted selection survives.
func (h *CartHandler) CloseSession(c *gin.Context) {
	sessionID := c.Param("sessionID")
	if err := delivery.ValidateSessionID(sessionID); err != nil {
		h.writeError(c, err)
		return
	}
	closed := h.Sessions.Close(sessionID)
	c.JSON(http.StatusOK, gin.H{"sessionId": sessionID, "closed": closed})
}

func (h *CartHandler) GetSlots(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	snapshot, err := engine.Snapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// StreamSlots pushes every new snapshot as a server-sent event until the client leaves.
func (h *CartHandler) StreamSlots(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	updates, cancel := engine.Subscribe()
	defer cancel()

	c.Stream(func(w io.Writer) bool {
		select {
		case <-c.Request.Context().Done():
			return false
		case snapshot, open := <-updates:
			if !open {
				return false
			}
			c.SSEvent("slots", snapshot)
			return true
		}
	})
}

// SelectSlot applies a user click. A rejected click is not an error: the
// response carries accepted=false and the unchanged selection.
func (h *CartHandler) SelectSlot(c *gin.Context) {
	logger := getLogger(c)
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	var req selectSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	snapshot, accepted, err := engine.Select(c.Request.Context(), req.SlotID)
	if err != nil {
		h.writeError(c, err)
		return
	}
	if !accepted {
		logger.Info("Slot selection rejected", zap.String("slotID", req.SlotID))
	}

	c.JSON(http.StatusOK, gin.H{
		"accepted": accepted,
		"slots":    snapshot,
	})
}

// RefreshSlots re-fetches the catalog; this is the only recovery from a failed fetch.
func (h *CartHandler) RefreshSlots(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	snapshot, err := engine.Refresh(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

func (h *CartHandler) UpdateCart(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}

	var cart models.CartState
	if err := c.ShouldBindJSON(&cart); err != nil {
		utils.JSONError(c, http.StatusBadRequest, "Invalid cart payload", err.Error())
		return
	}

	snapshot, err := engine.UpdateCart(c.Request.Context(), cart)
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}

// GetQuote returns the checkout total and whether checkout may proceed.
func (h *CartHandler) GetQuote(c *gin.Context) {
	engine, ok := h.engine(c)
	if !ok {
		return
	}
	snapshot, err := engine.Snapshot(c.Request.Context())
	if err != nil {
		h.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"sessionId":      snapshot.SessionID,
		"selectedSlotId": snapshot.SelectedSlotID,
		"pricing":        snapshot.Pricing,
	})
}

// engine opens the session named in the path, writing the error response on failure.
func (h *CartHandler) engine(c *gin.Context) (delivery.SessionEngine, bool) {
	engine, err := h.Sessions.Open(c.Param("sessionID"))
	if err != nil {
		h.writeError(c, err)
		return nil, false
	}
	return engine, true
}

func (h *CartHandler) writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, delivery.ErrInvalidSessionID):
		utils.JSONError(c, http.StatusBadRequest, "Invalid session id", err.Error())
	case errors.Is(err, delivery.ErrEngineClosed):
		utils.JSONError(c, http.StatusServiceUnavailable, "Cart session closed", err.Error())
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		utils.JSONError(c, http.StatusGatewayTimeout, "Request timed out", err.Error())
	default:
		getLogger(c).Error("Cart session failure", zap.Error(err))
		utils.JSONError(c, http.StatusInternalServerError, "Internal Server Error", err.Error())
	}
}
