package handlers

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/services"
)

// DownloadHandler streams log archives and kubeconfigs
type DownloadHandler struct {
	api       installer.API
	downloads *services.Downloads
	logger    logger.Interface
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(api installer.API, downloads *services.Downloads, logger logger.Interface) *DownloadHandler {
	return &DownloadHandler{
		api:       api,
		downloads: downloads,
		logger:    logger.WithField("handler", "download"),
	}
}

// attachment writes the response headers on the first write, so a download
// that fails before any byte arrives can still be answered with an error.
type attachment struct {
	c           *gin.Context
	filename    string
	contentType string
	started     bool
}

func (a *attachment) begin() {
	if a.started {
		return
	}
	a.started = true
	a.c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", a.filename))
	a.c.Header("Content-Type", a.contentType)
	a.c.Status(http.StatusOK)
}

func (a *attachment) Write(p []byte) (int, error) {
	a.begin()
	return a.c.Writer.Write(p)
}

// stream runs download into an attachment and reports its failure
func (h *DownloadHandler) stream(c *gin.Context, list *alerts.List, filename, contentType string, download func(w io.Writer) (int64, error)) {
	w := &attachment{c: c, filename: filename, contentType: contentType}
	n, err := download(w)
	if err == nil {
		w.begin()
		c.Writer.WriteHeaderNow()
		return
	}
	if !w.started {
		respondError(c, h.logger, list, err)
		return
	}
	// the status line is gone; cutting the body short is all that is left
	h.logger.WithError(err).Error("Download interrupted", "file", filename, "bytes", n)
	c.Abort()
}

// ClusterLogs streams the installation logs of a cluster
func (h *DownloadHandler) ClusterLogs(c *gin.Context) {
	list := alerts.NewList()
	clusterID := c.Param("id")

	h.stream(c, list, fmt.Sprintf("cluster_%s_logs.tar", clusterID), "application/x-tar", func(w io.Writer) (int64, error) {
		return h.downloads.ClusterLogs(c.Request.Context(), list, clusterID, w)
	})
}

// HostLogs streams the logs of one host
func (h *DownloadHandler) HostLogs(c *gin.Context) {
	list := alerts.NewList()
	clusterID, hostID := c.Param("id"), c.Param("hostId")

	cluster, err := h.api.GetCluster(c.Request.Context(), clusterID)
	if err != nil {
		list.Add(alerts.Alert{Title: services.HostLogsFailedTitle, Message: errors.Message(err)})
		respondError(c, h.logger, list, err)
		return
	}
	host, ok := hosts.ByID(cluster, hostID)
	if !ok {
		respondError(c, h.logger, list, errors.Wrapf(errors.ErrNotFound, "host %s in cluster %s", hostID, clusterID))
		return
	}
	if host.ClusterID == "" {
		host.ClusterID = clusterID
	}

	h.stream(c, list, fmt.Sprintf("host_%s_logs.tar", hostID), "application/x-tar", func(w io.Writer) (int64, error) {
		return h.downloads.HostLogs(c.Request.Context(), list, host, w)
	})
}

// Kubeconfig streams the admin kubeconfig of an installed cluster
func (h *DownloadHandler) Kubeconfig(c *gin.Context) {
	list := alerts.NewList()
	clusterID := c.Param("id")

	h.stream(c, list, "kubeconfig", "application/yaml", func(w io.Writer) (int64, error) {
		return h.downloads.Kubeconfig(c.Request.Context(), list, clusterID, w)
	})
}
