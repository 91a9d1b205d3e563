package services

import (
	"context"
	"time"

	"k8s.io/apimachinery/pkg/util/wait"

	"github.com/dsyorkd/assisted-console/internal/installer"
	"github.com/dsyorkd/assisted-console/internal/logger"
	"github.com/dsyorkd/assisted-console/internal/models"
)

// DefaultWatchInterval is how often a watched cluster is re-fetched
const DefaultWatchInterval = 10 * time.Second

// Watcher follows a cluster by polling it until it settles
type Watcher struct {
	api      installer.API
	interval time.Duration
	log      logger.Interface
}

// NewWatcher creates a watcher polling every interval
func NewWatcher(api installer.API, interval time.Duration, log logger.Interface) *Watcher {
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	return &Watcher{
		api:      api,
		interval: interval,
		log:      log.WithField("service", "watcher"),
	}
}

// Watch polls the cluster and calls onChange with the first snapshot and with
// every snapshot whose status or status info differs from the previous one.
// It returns the last snapshot once the status is terminal. A failed fetch
// ends the watch with that error.
func (w *Watcher) Watch(ctx context.Context, clusterID string, onChange func(*models.Cluster)) (*models.Cluster, error) {
	var last *models.Cluster
	err := wait.PollUntilContextCancel(ctx, w.interval, true, func(ctx context.Context) (bool, error) {
		cluster, err := w.api.GetCluster(ctx, clusterID)
		if err != nil {
			return false, err
		}
		if last == nil || last.Status != cluster.Status || last.StatusInfo != cluster.StatusInfo {
			w.log.Debug("Cluster changed", "cluster_id", clusterID, "status", cluster.Status)
			if onChange != nil {
				onChange(cluster)
			}
		}
		last = cluster
		return cluster.Status.IsTerminal(), nil
	})
	return last, err
}
