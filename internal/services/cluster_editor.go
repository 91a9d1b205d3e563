package services

import (
	"context"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// Alert titles of failed cluster edits
const (
	UpdateFailedTitle = "Failed to update the cluster"
	DeleteFailedTitle = "Failed to delete the cluster"
)

// ClusterEditor updates and deletes existing clusters
type ClusterEditor struct {
	api installer.API
	log logger.Interface
}

// NewClusterEditor creates a new cluster editing workflow
func NewClusterEditor(api installer.API, log logger.Interface) *ClusterEditor {
	return &ClusterEditor{
		api: api,
		log: log.WithField("service", "cluster-editor"),
	}
}

// ValidateUpdate checks the fields of an update that can be verified locally
func ValidateUpdate(params models.ClusterUpdateParams) error {
	fields := errors.FieldErrors{}
	if params.Name != nil {
		switch {
		case *params.Name == "":
			fields["name"] = MsgRequired
		case len(*params.Name) > ClusterNameMaxLength:
			fields["name"] = MsgNameLength
		case !dnsLabelRegex.MatchString(*params.Name):
			fields["name"] = MsgNameFormat
		}
	}
	if params.SSHPublicKey != nil && *params.SSHPublicKey != "" && !ValidSSHPublicKey(*params.SSHPublicKey) {
		fields["ssh_public_key"] = MsgSSHKeyFormat
	}
	if params.PullSecret != nil {
		if err := validate.Var(*params.PullSecret, "required,json"); err != nil {
			fields["pull_secret"] = MsgPullSecretFormat
		}
	}
	for _, r := range params.HostsRoles {
		if !r.Role.Assignable() {
			fields["hosts_roles"] = "Role must be one of auto-assign, master, worker"
		}
	}
	for _, n := range params.HostsNames {
		if !dnsLabelRegex.MatchString(n.Hostname) {
			fields["hosts_names"] = MsgNameFormat
		}
	}
	if len(fields) > 0 {
		return fields
	}
	return nil
}

// Update validates and applies a cluster update
func (e *ClusterEditor) Update(ctx context.Context, dispatch alerts.Dispatcher, clusterID string, params models.ClusterUpdateParams) (*models.Cluster, error) {
	dispatch.Clear()
	if err := ValidateUpdate(params); err != nil {
		return nil, err
	}
	cluster, err := e.api.UpdateCluster(ctx, clusterID, params)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: UpdateFailedTitle, Message: errors.Message(err)})
		e.log.WithError(err).Error("Failed to update cluster", "cluster_id", clusterID)
		return nil, err
	}
	e.log.Info("Updated cluster", "cluster_id", clusterID)
	return cluster, nil
}

// Delete removes a cluster and its hosts from the installer
func (e *ClusterEditor) Delete(ctx context.Context, dispatch alerts.Dispatcher, clusterID string) error {
	if err := e.api.DeleteCluster(ctx, clusterID); err != nil {
		dispatch.Add(alerts.Alert{Title: DeleteFailedTitle, Message: errors.Message(err)})
		e.log.WithError(err).Error("Failed to delete cluster", "cluster_id", clusterID)
		return err
	}
	e.log.Info("Deleted cluster", "cluster_id", clusterID)
	return nil
}
