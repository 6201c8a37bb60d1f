// File: basketly/handlers/bundle.go
package handlers

import "github.com/gin-gonic/gin"

// HandlerBundle groups the endpoint handlers registered by routes.
type HandlerBundle struct {
	// Cart session endpoints
	CreateSession gin.HandlerFunc
	CloseSession  gin.HandlerFunc

	// Delivery slot endpoints
	GetSlots     gin.HandlerFunc
	StreamSlots  gin.HandlerFunc
	SelectSlot   gin.HandlerFunc
	RefreshSlots gin.HandlerFunc

	// Cart / checkout endpoints
	UpdateCart gin.HandlerFunc
	GetQuote   gin.HandlerFunc
}

// NewHandlerBundle wires a CartHandler into a bundle.
func NewHandlerBundle(h *CartHandler) *HandlerBundle {
	return &HandlerBundle{
		CreateSession: h.CreateSession,
		CloseSession:  h.CloseSession,
		GetSlots:      h.GetSlots,
		StreamSlots:   h.StreamSlots,
		SelectSlot:    h.SelectSlot,
		RefreshSlots:  h.RefreshSlots,
		UpdateCart:    h.UpdateCart,
		GetQuote:      h.GetQuote,
	}
}
