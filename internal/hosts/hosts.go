// Package hosts derives display state from installer hosts: installation
// progress, role labels and counts, hardware type and log availability.
package hosts

import (
	"strings"
	"time"

	"github.com/dsyorkd/assisted-console/internal/models"
)

// Dash is shown where a value is unknown
const Dash = "--"

// PreparingInstallation is the stage reported before a host sends any progress
const PreparingInstallation models.HostStage = "Preparing installation"

// DefaultProgressStages is used when a host does not report its own stages
var DefaultProgressStages = []models.HostStage{
	models.HostStageStartingInstallation,
	models.HostStageInstalling,
	models.HostStageWritingImageToDisk,
	models.HostStageRebooting,
	models.HostStageConfiguring,
	models.HostStageJoined,
	models.HostStageDone,
}

// zeroTime is how the installer encodes "logs never collected"
var zeroTime = time.Date(1, time.January, 1, 0, 0, 0, 0, time.UTC)

// RoleOption is a selectable host role
type RoleOption struct {
	Value models.HostRole `json:"value"`
	Label string          `json:"label"`
}

// Roles lists the roles a user can pick, the first being the fallback label
var Roles = []RoleOption{
	{Value: models.HostRoleAutoAssign, Label: "Automatic"},
	{Value: models.HostRoleMaster, Label: "Control plane node"},
	{Value: models.HostRoleWorker, Label: "Worker"},
}

// ProgressStages returns the host's stages, or the default list
func ProgressStages(host *models.Host) []models.HostStage {
	if len(host.ProgressStages) > 0 {
		return host.ProgressStages
	}
	return DefaultProgressStages
}

// Progress returns the host's progress, or a "Preparing installation" placeholder
func Progress(host *models.Host) models.HostProgressInfo {
	if host.Progress != nil {
		return *host.Progress
	}
	return models.HostProgressInfo{CurrentStage: PreparingInstallation}
}

// ProgressStageNumber returns the 1-based position of the first stage named in
// the host's current stage text, or 0 when none matches.
func ProgressStageNumber(host *models.Host) int {
	current := string(Progress(host).CurrentStage)
	for i, stage := range ProgressStages(host) {
		if stage != "" && strings.Contains(current, string(stage)) {
			return i + 1
		}
	}
	return 0
}

// ActiveCount counts the hosts that are not soft deleted
func ActiveCount(hosts []models.Host) int {
	n := 0
	for i := range hosts {
		if !hosts[i].IsDeleted() {
			n++
		}
	}
	return n
}

func roleCount(hosts []models.Host, role models.HostRole) int {
	n := 0
	for i := range hosts {
		if hosts[i].Role == role && !hosts[i].IsDeleted() {
			n++
		}
	}
	return n
}

// MasterCount counts control plane hosts, skipping deleted ones
func MasterCount(hosts []models.Host) int {
	return roleCount(hosts, models.HostRoleMaster)
}

// WorkerCount counts worker hosts, skipping deleted ones
func WorkerCount(hosts []models.Host) int {
	return roleCount(hosts, models.HostRoleWorker)
}

// RoleLabel returns the display label of a host's role
func RoleLabel(host *models.Host) string {
	label := Roles[0].Label
	for _, r := range Roles {
		if r.Value == host.Role {
			label = r.Label
			break
		}
	}
	if host.Bootstrap {
		label += " (bootstrap)"
	}
	return label
}

// Hostname returns the requested hostname, falling back to the discovered one
func Hostname(host *models.Host) string {
	if host.RequestedHostname != "" {
		return host.RequestedHostname
	}
	if inv := host.ParsedInventory(); inv != nil {
		return inv.Hostname
	}
	return ""
}

// HardwareType tells virtual machines from bare metal
func HardwareType(inv *models.Inventory) string {
	if inv == nil || inv.SystemVendor == nil {
		return Dash
	}
	if inv.SystemVendor.Virtual {
		return "Virtual machine"
	}
	return "Bare metal"
}

// CanDownloadHostLogs reports whether the installer collected logs for the host
func CanDownloadHostLogs(host *models.Host) bool {
	return host.LogsCollectedAt != nil && !host.LogsCollectedAt.UTC().Equal(zeroTime)
}

// CanDownloadClusterLogs reports whether any host of the cluster has logs
func CanDownloadClusterLogs(cluster *models.Cluster) bool {
	for i := range cluster.Hosts {
		if CanDownloadHostLogs(&cluster.Hosts[i]) {
			return true
		}
	}
	return false
}

// HasKnownHost reports whether any host of the cluster is known
func HasKnownHost(cluster *models.Cluster) bool {
	for i := range cluster.Hosts {
		if cluster.Hosts[i].Status == models.HostStatusKnown && !cluster.Hosts[i].IsDeleted() {
			return true
		}
	}
	return false
}

// ByID finds a host in a cluster snapshot
func ByID(cluster *models.Cluster, hostID string) (*models.Host, bool) {
	for i := range cluster.Hosts {
		if cluster.Hosts[i].ID == hostID {
			return &cluster.Hosts[i], true
		}
	}
	return nil, false
}
