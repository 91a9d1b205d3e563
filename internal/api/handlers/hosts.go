package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/capabilities"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/views"
)

// FetchHostsFailedTitle is the alert title of a failed host table read
const FetchHostsFailedTitle = "Could not fetch hosts"

// HostHandler handles host-related API operations
type HostHandler struct {
	api     installer.API
	actions *services.HostActions
	logger  logger.Interface
}

// NewHostHandler creates a new host handler
func NewHostHandler(api installer.API, actions *services.HostActions, logger logger.Interface) *HostHandler {
	return &HostHandler{
		api:     api,
		actions: actions,
		logger:  logger.WithField("handler", "host"),
	}
}

// SetRoleRequest is the body of a role change
type SetRoleRequest struct {
	Role models.HostRole `json:"role" binding:"required"`
}

// SetHostnameRequest is the body of a rename
type SetHostnameRequest struct {
	Hostname string `json:"hostname" binding:"required"`
}

// List returns the host table of a cluster
func (h *HostHandler) List(c *gin.Context) {
	list := alerts.NewList()
	cluster, err := h.api.GetCluster(c.Request.Context(), c.Param("id"))
	if err != nil {
		list.Add(alerts.Alert{Title: FetchHostsFailedTitle, Message: errors.Message(err)})
		respondError(c, h.logger, list, err)
		return
	}

	rows := views.HostRows(cluster)
	c.JSON(http.StatusOK, gin.H{
		"hosts": rows,
		"count": len(rows),
	})
}

// Action runs enable, disable or reset on a host
func (h *HostHandler) Action(c *gin.Context) {
	var run func(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) (*models.Host, error)
	switch capabilities.Action(c.Param("action")) {
	case capabilities.ActionEnable:
		run = h.actions.Enable
	case capabilities.ActionDisable:
		run = h.actions.Disable
	case capabilities.ActionReset:
		run = h.actions.Reset
	default:
		respondError(c, h.logger, nil, errors.Wrapf(errors.ErrNotFound, "unknown host action %q", c.Param("action")))
		return
	}

	list := alerts.NewList()
	host, err := run(c.Request.Context(), list, c.Param("id"), c.Param("hostId"))
	if err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.JSON(http.StatusOK, host)
}

// Delete deregisters a host
func (h *HostHandler) Delete(c *gin.Context) {
	list := alerts.NewList()
	if err := h.actions.Delete(c.Request.Context(), list, c.Param("id"), c.Param("hostId")); err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// SetRole requests a role for a host and returns the updated host table
func (h *HostHandler) SetRole(c *gin.Context) {
	var req SetRoleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	list := alerts.NewList()
	cluster, err := h.actions.SetRole(c.Request.Context(), list, c.Param("id"), c.Param("hostId"), req.Role)
	if err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hosts": views.HostRows(cluster)})
}

// SetHostname renames a host and returns the updated host table
func (h *HostHandler) SetHostname(c *gin.Context) {
	var req SetHostnameRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}

	list := alerts.NewList()
	cluster, err := h.actions.SetHostname(c.Request.Context(), list, c.Param("id"), c.Param("hostId"), req.Hostname)
	if err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"hosts": views.HostRows(cluster)})
}
