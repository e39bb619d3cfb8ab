package http

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/go-faster/errors"

	"github.com/preciolens/backend/internal/domain"
	"github.com/preciolens/backend/internal/infrastructure/export"
)

// ProductResolver resolves one EAN across every source
type ProductResolver interface {
	ResolveProduct(ctx context.Context, ean string) (*domain.Resolution, error)
}

// ServerCatalog manages registered store endpoints
type ServerCatalog interface {
	ListServers(ctx context.Context, checkStatus bool) ([]domain.ServerStatus, error)
	GetServer(ctx context.Context, alias string) (*domain.StoreEndpoint, error)
	SaveServer(ctx context.Context, endpoint domain.StoreEndpoint) error
	UpdateServer(ctx context.Context, alias, address string) error
	RemoveServers(ctx context.Context, aliases ...string) error
}

// Handler holds dependencies for HTTP handlers
type Handler struct {
	resolver ProductResolver
	servers  ServerCatalog
}

// NewHandler creates a new HTTP handler. Nil dependencies make their endpoints answer 501.
func NewHandler(resolver ProductResolver, servers ServerCatalog) *Handler {
	return &Handler{resolver: resolver, servers: servers}
}

type resolveRequest struct {
	EAN string `json:"ean" form:"ean" binding:"required"`
}

type serverRequest struct {
	Alias   string `json:"alias"`
	Address string `json:"ip" binding:"required"`
}

type bulkDeleteRequest struct {
	Aliases []string `json:"aliases" binding:"required,min=1"`
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "preciolens-backend",
		"version": "1.0.0",
	})
}

// GetProduct resolves the EAN in the path
func (h *Handler) GetProduct(c *gin.Context) {
	h.resolve(c, c.Param("ean"))
}

// ResolveProduct resolves the EAN in a JSON or form body
func (h *Handler) ResolveProduct(c *gin.Context) {
	var req resolveRequest
	if err := c.ShouldBind(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "ean is required"})
		return
	}
	h.resolve(c, req.EAN)
}

// ExportProduct resolves the EAN and answers with a spreadsheet
func (h *Handler) ExportProduct(c *gin.Context) {
	res, ok := h.lookup(c, c.Param("ean"))
	if !ok {
		return
	}

	var buf bytes.Buffer
	if err := export.WriteResolution(&buf, res); err != nil {
		log.Printf("[HTTP] Export of %s failed: %v", res.EAN, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "export failed"})
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.xlsx"`, res.EAN))
	c.Data(http.StatusOK, export.ContentType, buf.Bytes())
}

func (h *Handler) resolve(c *gin.Context, ean string) {
	res, ok := h.lookup(c, ean)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, res)
}

// lookup runs the resolution and writes the error response itself when it fails
func (h *Handler) lookup(c *gin.Context, ean string) (*domain.Resolution, bool) {
	if h.resolver == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "product lookup not configured"})
		return nil, false
	}

	res, err := h.resolver.ResolveProduct(c.Request.Context(), ean)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "ean is required"})
			return nil, false
		}
		log.Printf("[HTTP] Resolving %q failed: %v", ean, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return nil, false
	}
	return res, true
}

// ListServers lists registered store endpoints; ?status=true pings each one
func (h *Handler) ListServers(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	servers, err := h.servers.ListServers(c.Request.Context(), c.Query("status") == "true")
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"servers": servers})
}

// GetServer returns one store endpoint
func (h *Handler) GetServer(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	server, err := h.servers.GetServer(c.Request.Context(), c.Param("alias"))
	if err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, server)
}

// SaveServer adds a store endpoint or updates the address of an existing alias
func (h *Handler) SaveServer(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	var req serverRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Alias == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidServer.Error()})
		return
	}

	endpoint := domain.StoreEndpoint{Alias: req.Alias, Address: req.Address}
	if err := h.servers.SaveServer(c.Request.Context(), endpoint); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, endpoint)
}

// UpdateServer changes the address of the alias in the path
func (h *Handler) UpdateServer(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	var req serverRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": domain.ErrInvalidServer.Error()})
		return
	}

	alias := c.Param("alias")
	if err := h.servers.UpdateServer(c.Request.Context(), alias, req.Address); err != nil {
		h.serverError(c, err)
		return
	}
	c.JSON(http.StatusOK, domain.StoreEndpoint{Alias: alias, Address: req.Address})
}

// DeleteServer removes the alias in the path
func (h *Handler) DeleteServer(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	if err := h.servers.RemoveServers(c.Request.Context(), c.Param("alias")); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// BulkDeleteServers removes every listed alias
func (h *Handler) BulkDeleteServers(c *gin.Context) {
	if !h.serversConfigured(c) {
		return
	}

	var req bulkDeleteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "aliases are required"})
		return
	}

	if err := h.servers.RemoveServers(c.Request.Context(), req.Aliases...); err != nil {
		h.serverError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) serversConfigured(c *gin.Context) bool {
	if h.servers == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "server registry not configured"})
		return false
	}
	return true
}

func (h *Handler) serverError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domain.ErrServerNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, domain.ErrInvalidServer), errors.Is(err, domain.ErrInvalidRequest):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		log.Printf("[HTTP] Server registry error: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "server registry error"})
	}
}
