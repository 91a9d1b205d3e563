// Package capabilities decides which host and cluster actions a user may take
// given the current installer statuses. Every decision reads one table; a
// status the table does not list, including one the installer added later,
// denies the action.
package capabilities

import (
	"sort"

	"github.com/dsyorkd/assisted-console/internal/models"
)

// Action is a user action on a host
type Action string

const (
	ActionEnable   Action = "enable"
	ActionDisable  Action = "disable"
	ActionDelete   Action = "delete"
	ActionReset    Action = "reset"
	ActionEditRole Action = "edit-role"
)

// Actions lists every action in the table, in display order
var Actions = []Action{ActionEnable, ActionDisable, ActionDelete, ActionReset, ActionEditRole}

type rule struct {
	clusters map[models.ClusterStatus]struct{}
	hosts    map[models.HostStatus]struct{}
}

func clusterSet(statuses ...models.ClusterStatus) map[models.ClusterStatus]struct{} {
	set := make(map[models.ClusterStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

func hostSet(statuses ...models.HostStatus) map[models.HostStatus]struct{} {
	set := make(map[models.HostStatus]struct{}, len(statuses))
	for _, s := range statuses {
		set[s] = struct{}{}
	}
	return set
}

var editableClusters = clusterSet(
	models.ClusterStatusPendingForInput,
	models.ClusterStatusInsufficient,
	models.ClusterStatusReady,
	models.ClusterStatusAddingHosts,
)

var table = map[Action]rule{
	ActionEnable: {
		clusters: editableClusters,
		hosts:    hostSet(models.HostStatusDisabled),
	},
	ActionDisable: {
		clusters: editableClusters,
		hosts: hostSet(
			models.HostStatusDiscovering,
			models.HostStatusDisconnected,
			models.HostStatusKnown,
			models.HostStatusInsufficient,
			models.HostStatusPendingForInput,
		),
	},
	ActionDelete: {
		clusters: editableClusters,
		hosts: hostSet(
			models.HostStatusDiscovering,
			models.HostStatusKnown,
			models.HostStatusDisconnected,
			models.HostStatusDisabled,
			models.HostStatusInsufficient,
			models.HostStatusResetting,
			models.HostStatusResettingPendingUserAction,
			models.HostStatusInstallingPendingUserAction,
			models.HostStatusPendingForInput,
			models.HostStatusAddedToExistingCluster,
		),
	},
	ActionReset: {
		clusters: clusterSet(models.ClusterStatusAddingHosts),
		hosts: hostSet(
			models.HostStatusError,
			models.HostStatusInstallingPendingUserAction,
		),
	},
	ActionEditRole: {
		clusters: clusterSet(
			models.ClusterStatusPendingForInput,
			models.ClusterStatusInsufficient,
			models.ClusterStatusReady,
		),
		hosts: hostSet(
			models.HostStatusDiscovering,
			models.HostStatusKnown,
			models.HostStatusDisconnected,
			models.HostStatusDisabled,
			models.HostStatusInsufficient,
			models.HostStatusPendingForInput,
		),
	},
}

// Allowed reports whether action may be taken on a host in hs within a cluster in cs
func Allowed(action Action, cs models.ClusterStatus, hs models.HostStatus) bool {
	r, ok := table[action]
	if !ok {
		return false
	}
	if _, ok := r.clusters[cs]; !ok {
		return false
	}
	_, ok = r.hosts[hs]
	return ok
}

// Set is the capability set of one host
type Set map[Action]bool

// For returns the capability set for a (cluster status, host status) pair
func For(cs models.ClusterStatus, hs models.HostStatus) Set {
	set := make(Set, len(Actions))
	for _, a := range Actions {
		set[a] = Allowed(a, cs, hs)
	}
	return set
}

// Permitted returns the allowed actions, sorted
func (s Set) Permitted() []Action {
	var out []Action
	for a, ok := range s {
		if ok {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

func CanEnable(cs models.ClusterStatus, hs models.HostStatus) bool {
	return Allowed(ActionEnable, cs, hs)
}

func CanDisable(cs models.ClusterStatus, hs models.HostStatus) bool {
	return Allowed(ActionDisable, cs, hs)
}

func CanDelete(cs models.ClusterStatus, hs models.HostStatus) bool {
	return Allowed(ActionDelete, cs, hs)
}

func CanReset(cs models.ClusterStatus, hs models.HostStatus) bool {
	return Allowed(ActionReset, cs, hs)
}

func CanEditRole(cs models.ClusterStatus, hs models.HostStatus) bool {
	return Allowed(ActionEditRole, cs, hs)
}

// CanEditHost follows the role rule
func CanEditHost(cs models.ClusterStatus, hs models.HostStatus) bool {
	return CanEditRole(cs, hs)
}

// CanEditDisks follows the role rule
func CanEditDisks(cs models.ClusterStatus, hs models.HostStatus) bool {
	return CanEditRole(cs, hs)
}

var kubeconfigClusters = clusterSet(
	models.ClusterStatusInstalling,
	models.ClusterStatusFinalizing,
	models.ClusterStatusError,
	models.ClusterStatusCancelled,
	models.ClusterStatusInstalled,
)

// CanDownloadKubeconfig reports whether the installer has a kubeconfig to hand out
func CanDownloadKubeconfig(cs models.ClusterStatus) bool {
	_, ok := kubeconfigClusters[cs]
	return ok
}

// CanInstallHost reports whether a single known host can be installed into a day-2 cluster
func CanInstallHost(cluster *models.Cluster, hs models.HostStatus) bool {
	if cluster == nil {
		return false
	}
	return cluster.Kind == models.ClusterKindAddHostsCluster &&
		cluster.Status == models.ClusterStatusAddingHosts &&
		hs == models.HostStatusKnown
}

var renameableHosts = hostSet(
	models.HostStatusDiscovering,
	models.HostStatusKnown,
	models.HostStatusDisconnected,
	models.HostStatusInsufficient,
	models.HostStatusPendingForInput,
)

// CanHostnameBeChanged reports whether a host in hs accepts a new hostname
func CanHostnameBeChanged(hs models.HostStatus) bool {
	_, ok := renameableHosts[hs]
	return ok
}
