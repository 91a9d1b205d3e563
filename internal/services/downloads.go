package services

import (
	"bytes"
	"context"
	"io"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/dsyorkd/assisted-console/internal/alerts"
	"github.com/dsyorkd/assisted-console/internal/capabilities"
	"github.com/dsyorkd/assisted-console/internal/errors"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// Alert titles of failed downloads
const (
	HostLogsFailedTitle    = "Could not download host logs."
	ClusterLogsFailedTitle = "Could not download cluster installation logs."
	KubeconfigFailedTitle  = "Could not download kubeconfig."
)

// LogsFileName is the presigned file name of log archives
const LogsFileName = "logs"

// Downloads streams log archives and kubeconfig files to a writer
type Downloads struct {
	api       installer.API
	presigned bool
	log       logger.Interface
}

// NewDownloads creates a download workflow. With presigned set, logs are
// fetched from object storage through presigned URLs.
func NewDownloads(api installer.API, presigned bool, log logger.Interface) *Downloads {
	return &Downloads{
		api:       api,
		presigned: presigned,
		log:       log.WithField("service", "downloads"),
	}
}

// HostLogs writes the log archive of one host to w
func (d *Downloads) HostLogs(ctx context.Context, dispatch alerts.Dispatcher, host *models.Host, w io.Writer) (int64, error) {
	if !hosts.CanDownloadHostLogs(host) {
		return 0, errors.Wrapf(ErrActionNotPermitted, "no logs collected for host %s", hostLabel(host))
	}
	n, err := d.logs(ctx, host.ClusterID, host.ID, models.LogsTypeHost, w)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: HostLogsFailedTitle, Message: errors.Message(err)})
		d.log.WithError(err).Error("Host logs download failed", "host_id", host.ID)
		return n, err
	}
	d.log.Debug("Host logs downloaded", "host_id", host.ID, "bytes", n)
	return n, nil
}

// ClusterLogs writes the installation log archive of a cluster to w. The
// cluster must have at least one host with collected logs.
func (d *Downloads) ClusterLogs(ctx context.Context, dispatch alerts.Dispatcher, clusterID string, w io.Writer) (int64, error) {
	cluster, err := d.api.GetCluster(ctx, clusterID)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: ClusterLogsFailedTitle, Message: errors.Message(err)})
		return 0, err
	}
	if !hosts.CanDownloadClusterLogs(cluster) {
		return 0, errors.Wrapf(ErrActionNotPermitted, "no logs collected for cluster %s", cluster.Name)
	}

	n, err := d.logs(ctx, clusterID, "", models.LogsTypeAll, w)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: ClusterLogsFailedTitle, Message: errors.Message(err)})
		d.log.WithError(err).Error("Cluster logs download failed", "cluster_id", clusterID)
		return n, err
	}
	d.log.Debug("Cluster logs downloaded", "cluster_id", clusterID, "bytes", n)
	return n, nil
}

func (d *Downloads) logs(ctx context.Context, clusterID, hostID string, logsType models.LogsType, w io.Writer) (int64, error) {
	if !d.presigned {
		return d.api.DownloadLogs(ctx, clusterID, installer.LogsParams{HostID: hostID, LogsType: logsType}, w)
	}
	presigned, err := d.api.GetPresignedFileURL(ctx, clusterID, installer.PresignedParams{
		FileName: LogsFileName,
		HostID:   hostID,
		LogsType: logsType,
	})
	if err != nil {
		return 0, err
	}
	return d.api.FetchURL(ctx, presigned.URL, w)
}

// Kubeconfig writes the admin kubeconfig of a cluster to w. The file is
// parsed before anything is written.
func (d *Downloads) Kubeconfig(ctx context.Context, dispatch alerts.Dispatcher, clusterID string, w io.Writer) (int64, error) {
	cluster, err := d.api.GetCluster(ctx, clusterID)
	if err != nil {
		dispatch.Add(alerts.Alert{Title: KubeconfigFailedTitle, Message: errors.Message(err)})
		return 0, err
	}
	if !capabilities.CanDownloadKubeconfig(cluster.Status) {
		return 0, errors.Wrapf(ErrActionNotPermitted, "kubeconfig of cluster %s in status %s", cluster.Name, cluster.Status)
	}

	var buf bytes.Buffer
	if _, err := d.api.DownloadKubeconfig(ctx, clusterID, &buf); err != nil {
		dispatch.Add(alerts.Alert{Title: KubeconfigFailedTitle, Message: errors.Message(err)})
		d.log.WithError(err).Error("Kubeconfig download failed", "cluster_id", clusterID)
		return 0, err
	}

	kubeconfig, err := clientcmd.Load(buf.Bytes())
	if err == nil && len(kubeconfig.Clusters) == 0 {
		err = errors.New("kubeconfig defines no clusters")
	}
	if err != nil {
		err = errors.NewAPIError("DownloadKubeconfig", errors.KindMalformed, 0,
			"The installer service returned an invalid kubeconfig.", err)
		dispatch.Add(alerts.Alert{Title: KubeconfigFailedTitle, Message: errors.Message(err)})
		return 0, err
	}

	n, err := buf.WriteTo(w)
	if err != nil {
		return n, errors.Wrap(err, "write kubeconfig")
	}
	d.log.Info("Kubeconfig downloaded", "cluster_id", clusterID, "context", kubeconfig.CurrentContext)
	return n, nil
}
