package services

import (
	"context"
	"fmt"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/capabilities"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// HostActions performs user actions on hosts after checking them against the
// capability table
type HostActions struct {
	api installer.API
	log logger.Interface
}

// NewHostActions creates a new host action workflow
func NewHostActions(api installer.API, log logger.Interface) *HostActions {
	return &HostActions{
		api: api,
		log: log.WithField("service", "host-actions"),
	}
}

// locate fetches the cluster snapshot and the host in it
func (h *HostActions) locate(ctx context.Context, clusterID, hostID string) (*models.Cluster, *models.Host, error) {
	cluster, err := h.api.GetCluster(ctx, clusterID)
	if err != nil {
		return nil, nil, err
	}
	host, ok := hosts.ByID(cluster, hostID)
	if !ok {
		return nil, nil, errors.Wrapf(ErrNotFound, "host %s in cluster %s", hostID, clusterID)
	}
	return cluster, host, nil
}

// authorize loads the current state and checks action against it. Lookup
// failures are reported through dispatch.
func (h *HostActions) authorize(ctx context.Context, dispatch alerts.Dispatcher, action capabilities.Action, clusterID, hostID string) (*models.Cluster, *models.Host, error) {
	cluster, host, err := h.locate(ctx, clusterID, hostID)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: failedTitle(action, hostID), Message: errors.Message(err)})
		return nil, nil, err
	}
	if !capabilities.Allowed(action, cluster.Status, host.Status) {
		h.log.Debug("Host action denied", "action", action, "cluster_status", cluster.Status, "host_status", host.Status)
		return nil, nil, errors.Wrapf(ErrActionNotPermitted, "%s host %s (cluster %s, host %s)",
			action, hostLabel(host), cluster.Status, host.Status)
	}
	return cluster, host, nil
}

func failedTitle(action capabilities.Action, host string) string {
	verb := string(action)
	if action == capabilities.ActionEditRole {
		verb = "set the role of"
	}
	return fmt.Sprintf("Failed to %s host %s", verb, host)
}

// hostLabel names a host in alerts, falling back to its id
func hostLabel(host *models.Host) string {
	if name := hosts.Hostname(host); name != "" {
		return name
	}
	return host.ID
}

func (h *HostActions) report(dispatch alerts.Dispatcher, action capabilities.Action, host *models.Host, err error) {
	dispatch.Add(alerts.Alert{Title: failedTitle(action, hostLabel(host)), Message: errors.Message(err)})
	h.log.WithError(err).Error("Host action failed", "action", action, "host_id", host.ID)
}

// Enable re-enables a disabled host
func (h *HostActions) Enable(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) (*models.Host, error) {
	return h.run(ctx, dispatch, capabilities.ActionEnable, clusterID, hostID, h.api.EnableHost)
}

// Disable takes a host out of the installation
func (h *HostActions) Disable(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) (*models.Host, error) {
	return h.run(ctx, dispatch, capabilities.ActionDisable, clusterID, hostID, h.api.DisableHost)
}

// Reset returns a failed host to discovery
func (h *HostActions) Reset(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) (*models.Host, error) {
	return h.run(ctx, dispatch, capabilities.ActionReset, clusterID, hostID, h.api.ResetHost)
}

func (h *HostActions) run(ctx context.Context, dispatch alerts.Dispatcher, action capabilities.Action, clusterID, hostID string,
	call func(ctx context.Context, clusterID, hostID string) (*models.Host, error)) (*models.Host, error) {
	_, host, err := h.authorize(ctx, dispatch, action, clusterID, hostID)
	if err != nil {
		return nil, err
	}
	updated, err := call(ctx, clusterID, hostID)
	if err != nil {
		h.report(dispatch, action, host, err)
		return nil, err
	}
	h.log.Info("Host action completed", "action", action, "host_id", hostID, "status", updated.Status)
	return updated, nil
}

// Delete deregisters a host from its cluster
func (h *HostActions) Delete(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string) error {
	_, host, err := h.authorize(ctx, dispatch, capabilities.ActionDelete, clusterID, hostID)
	if err != nil {
		return err
	}
	if err := h.api.DeregisterHost(ctx, clusterID, hostID); err != nil {
		h.report(dispatch, capabilities.ActionDelete, host, err)
		return err
	}
	h.log.Info("Host deleted", "host_id", hostID, "cluster_id", clusterID)
	return nil
}

// SetRole requests a role for a host through a cluster update
func (h *HostActions) SetRole(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID string, role models.HostRole) (*models.Cluster, error) {
	if !role.Assignable() {
		return nil, errors.NewValidationError("role", role, "must be one of auto-assign, master, worker")
	}
	_, host, err := h.authorize(ctx, dispatch, capabilities.ActionEditRole, clusterID, hostID)
	if err != nil {
		return nil, err
	}
	cluster, err := h.api.UpdateCluster(ctx, clusterID, models.ClusterUpdateParams{
		HostsRoles: []models.HostRoleUpdate{{ID: hostID, Role: role}},
	})
	if err != nil {
		h.report(dispatch, capabilities.ActionEditRole, host, err)
		return nil, err
	}
	h.log.Info("Host role requested", "host_id", hostID, "role", role)
	return cluster, nil
}

// SetHostname requests a new hostname for a host through a cluster update
func (h *HostActions) SetHostname(ctx context.Context, dispatch alerts.Dispatcher, clusterID, hostID, hostname string) (*models.Cluster, error) {
	if !dnsLabelRegex.MatchString(hostname) {
		return nil, errors.NewValidationError("hostname", hostname, MsgNameFormat)
	}
	cluster, host, err := h.locate(ctx, clusterID, hostID)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: "Failed to rename host " + hostID, Message: errors.Message(err)})
		return nil, err
	}
	if !capabilities.CanEditHost(cluster.Status, host.Status) || !capabilities.CanHostnameBeChanged(host.Status) {
		return nil, errors.Wrapf(ErrActionNotPermitted, "rename host %s (cluster %s, host %s)",
			hostLabel(host), cluster.Status, host.Status)
	}
	updated, err := h.api.UpdateCluster(ctx, clusterID, models.ClusterUpdateParams{
		HostsNames: []models.HostNameUpdate{{ID: hostID, Hostname: hostname}},
	})
	if err != nil {
		dispatch.Add(alerts.Alert{Title: "Failed to rename host " + hostLabel(host), Message: errors.Message(err)})
		h.log.WithError(err).Error("Host rename failed", "host_id", hostID)
		return nil, err
	}
	return updated, nil
}
