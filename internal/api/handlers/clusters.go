package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/api/middleware"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/services"
	"github.com/dsyorkd/assisted-console/internal/views"
)

// Alert titles of failed reads
const (
	FetchClustersFailedTitle = "Could not fetch clusters"
	FetchClusterFailedTitle  = "Could not fetch the cluster"
	FetchEventsFailedTitle   = "Could not fetch events"
	FetchVersionsFailedTitle = "Could not fetch OpenShift versions"
)

// ClusterHandler handles cluster-related API operations
type ClusterHandler struct {
	api     installer.API
	creator *services.ClusterCreator
	editor  *services.ClusterEditor
	logger  logger.Interface
}

// NewClusterHandler creates a new cluster handler
func NewClusterHandler(api installer.API, creator *services.ClusterCreator, editor *services.ClusterEditor, logger logger.Interface) *ClusterHandler {
	return &ClusterHandler{
		api:     api,
		creator: creator,
		editor:  editor,
		logger:  logger.WithField("handler", "cluster"),
	}
}

// fail alerts title with the installer's reason and writes the error
func (h *ClusterHandler) fail(c *gin.Context, list *alerts.List, title string, err error) {
	list.Add(alerts.Alert{Title: title, Message: errors.Message(err)})
	respondError(c, h.logger, list, err)
}

// List returns the cluster table
func (h *ClusterHandler) List(c *gin.Context) {
	list := alerts.NewList()
	clusters, err := h.api.ListClusters(c.Request.Context())
	if err != nil {
		h.fail(c, list, FetchClustersFailedTitle, err)
		return
	}

	rows := views.ClusterRows(clusters)
	c.JSON(http.StatusOK, gin.H{
		"clusters": rows,
		"count":    len(rows),
	})
}

// New returns the initial cluster creation form
func (h *ClusterHandler) New(c *gin.Context) {
	list := alerts.NewList()
	defaults, err := h.creator.Defaults(c.Request.Context())
	if err != nil {
		h.fail(c, list, FetchVersionsFailedTitle, err)
		return
	}
	c.JSON(http.StatusOK, defaults)
}

// Create submits the cluster creation form
func (h *ClusterHandler) Create(c *gin.Context) {
	var form services.ClusterForm
	if err := c.ShouldBindJSON(&form); err != nil {
		badRequest(c, err)
		return
	}

	list := alerts.NewList()
	submission, err := h.creator.Submit(c.Request.Context(), submitter(c), form, list)
	if err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.JSON(http.StatusCreated, submission)
}

// Get returns the cluster page
func (h *ClusterHandler) Get(c *gin.Context) {
	list := alerts.NewList()
	cluster, err := h.api.GetCluster(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, list, FetchClusterFailedTitle, err)
		return
	}
	c.JSON(http.StatusOK, views.Detail(cluster))
}

// Update applies a partial cluster update
func (h *ClusterHandler) Update(c *gin.Context) {
	var params models.ClusterUpdateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		badRequest(c, err)
		return
	}

	list := alerts.NewList()
	cluster, err := h.editor.Update(c.Request.Context(), list, c.Param("id"), params)
	if err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.JSON(http.StatusOK, views.Detail(cluster))
}

// Delete removes a cluster
func (h *ClusterHandler) Delete(c *gin.Context) {
	list := alerts.NewList()
	if err := h.editor.Delete(c.Request.Context(), list, c.Param("id")); err != nil {
		respondError(c, h.logger, list, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Events returns the event log of a cluster, or of one of its hosts when
// host_id is given
func (h *ClusterHandler) Events(c *gin.Context) {
	list := alerts.NewList()
	events, err := h.api.ListEvents(c.Request.Context(), c.Param("id"), c.Query("host_id"))
	if err != nil {
		h.fail(c, list, FetchEventsFailedTitle, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"events": events,
		"count":  len(events),
	})
}

// Credentials returns the console credentials of an installed cluster
func (h *ClusterHandler) Credentials(c *gin.Context) {
	list := alerts.NewList()
	creds, err := h.api.GetCredentials(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.fail(c, list, FetchClusterFailedTitle, err)
		return
	}
	c.JSON(http.StatusOK, creds)
}

// Versions returns the selectable OpenShift versions, newest first
func (h *ClusterHandler) Versions(c *gin.Context) {
	list := alerts.NewList()
	versions, err := h.api.ListOpenshiftVersions(c.Request.Context())
	if err != nil {
		h.fail(c, list, FetchVersionsFailedTitle, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"versions": services.SortVersions(versions)})
}

// submitter identifies who submits a form: the authenticated user, or the
// client address when authentication is off
func submitter(c *gin.Context) string {
	if userID := middleware.GetUserID(c); userID != "" {
		return "user:" + userID
	}
	return "ip:" + c.ClientIP()
}
