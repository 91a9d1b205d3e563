// Package views assembles the read models shown by the console backend and
// the CLI from installer clusters and hosts.
package views

import (
	"time"

	"github.com/dsyorkd/assisted-console/internal/capabilities"
	"github.com/dsyorkd/assisted-console/internal/clusters"
	"github.com/dsyorkd/assisted-console/internal/hosts"
	"github.com/dsyorkd/assisted-console/internal/models"
	"github.com/dsyorkd/assisted-console/internal/validations"
)

// ClusterRow is one line of the cluster list
type ClusterRow struct {
	ID               string               `json:"id" yaml:"id"`
	Name             string               `json:"name" yaml:"name"`
	BaseDNSDomain    string               `json:"base_dns_domain" yaml:"base_dns_domain"`
	OpenshiftVersion string               `json:"openshift_version" yaml:"openshift_version"`
	Status           models.ClusterStatus `json:"status" yaml:"status"`
	StatusLabel      string               `json:"status_label" yaml:"status_label"`
	StatusIcon       clusters.Icon        `json:"status_icon" yaml:"status_icon"`
	Hosts            int                  `json:"hosts" yaml:"hosts"`
	Masters          int                  `json:"masters" yaml:"masters"`
	Workers          int                  `json:"workers" yaml:"workers"`
	CreatedAt        *time.Time           `json:"created_at,omitempty" yaml:"created_at,omitempty"`
}

// ClusterRows builds the cluster list, skipping deleted clusters
func ClusterRows(list []models.Cluster) []ClusterRow {
	rows := make([]ClusterRow, 0, len(list))
	for i := range list {
		c := &list[i]
		if c.IsDeleted() {
			continue
		}
		rows = append(rows, ClusterRow{
			ID:               c.ID,
			Name:             c.Name,
			BaseDNSDomain:    c.BaseDNSDomain,
			OpenshiftVersion: c.OpenshiftVersion,
			Status:           c.Status,
			StatusLabel:      clusters.StatusLabel(c.Status),
			StatusIcon:       clusters.StatusIcon(c.Status),
			Hosts:            hosts.ActiveCount(c.Hosts),
			Masters:          hosts.MasterCount(c.Hosts),
			Workers:          hosts.WorkerCount(c.Hosts),
			CreatedAt:        c.CreatedAt,
		})
	}
	return rows
}

// Resources is the compute capacity of the hosts that will run workloads
type Resources struct {
	Topology    string `json:"topology" yaml:"topology"`
	VCPU        int64  `json:"vcpu" yaml:"vcpu"`
	MemoryBytes int64  `json:"memory_bytes" yaml:"memory_bytes"`
}

// ClusterDetail is the cluster page
type ClusterDetail struct {
	ID                    string                      `json:"id" yaml:"id"`
	Name                  string                      `json:"name" yaml:"name"`
	Status                models.ClusterStatus        `json:"status" yaml:"status"`
	StatusInfo            string                      `json:"status_info" yaml:"status_info"`
	StatusLabel           string                      `json:"status_label" yaml:"status_label"`
	StatusIcon            clusters.Icon               `json:"status_icon" yaml:"status_icon"`
	Properties            []clusters.Property         `json:"properties" yaml:"properties"`
	Masters               int                         `json:"masters" yaml:"masters"`
	Workers               int                         `json:"workers" yaml:"workers"`
	Resources             Resources                   `json:"resources" yaml:"resources"`
	Validations           []validations.Group         `json:"validations" yaml:"validations"`
	ValidationSummary     validations.Summary         `json:"validation_summary" yaml:"validation_summary"`
	Progress              *models.ClusterProgressInfo `json:"progress,omitempty" yaml:"progress,omitempty"`
	HasKnownHost          bool                        `json:"has_known_host" yaml:"has_known_host"`
	CanDownloadKubeconfig bool                        `json:"can_download_kubeconfig" yaml:"can_download_kubeconfig"`
	CanDownloadLogs       bool                        `json:"can_download_logs" yaml:"can_download_logs"`
}

// Detail builds the cluster page
func Detail(c *models.Cluster) ClusterDetail {
	info := c.Validations()
	return ClusterDetail{
		ID:          c.ID,
		Name:        c.Name,
		Status:      c.Status,
		StatusInfo:  c.StatusInfo,
		StatusLabel: clusters.StatusLabel(c.Status),
		StatusIcon:  clusters.StatusIcon(c.Status),
		Properties:  clusters.Properties(c),
		Masters:     hosts.MasterCount(c.Hosts),
		Workers:     hosts.WorkerCount(c.Hosts),
		Resources: Resources{
			Topology:    clusters.TopologyOf(c.Hosts).String(),
			VCPU:        clusters.VCPUCount(c),
			MemoryBytes: clusters.MemoryAmount(c),
		},
		Validations:           validations.Groups(info),
		ValidationSummary:     validations.Summarize(info),
		Progress:              c.Progress,
		HasKnownHost:          hosts.HasKnownHost(c),
		CanDownloadKubeconfig: capabilities.CanDownloadKubeconfig(c.Status),
		CanDownloadLogs:       hosts.CanDownloadClusterLogs(c),
	}
}

// HostRow is one line of the host table
type HostRow struct {
	ID              string                `json:"id" yaml:"id"`
	Hostname        string                `json:"hostname" yaml:"hostname"`
	Role            models.HostRole       `json:"role" yaml:"role"`
	RoleLabel       string                `json:"role_label" yaml:"role_label"`
	Status          models.HostStatus     `json:"status" yaml:"status"`
	StatusInfo      string                `json:"status_info" yaml:"status_info"`
	HardwareType    string                `json:"hardware_type" yaml:"hardware_type"`
	CPUCores        int64                 `json:"cpu_cores" yaml:"cpu_cores"`
	MemoryBytes     int64                 `json:"memory_bytes" yaml:"memory_bytes"`
	Disks           int                   `json:"disks" yaml:"disks"`
	Stage           models.HostStage      `json:"stage,omitempty" yaml:"stage,omitempty"`
	StageNumber     int                   `json:"stage_number" yaml:"stage_number"`
	StageCount      int                   `json:"stage_count" yaml:"stage_count"`
	Actions         []capabilities.Action `json:"actions" yaml:"actions"`
	CanRename       bool                  `json:"can_rename" yaml:"can_rename"`
	CanInstall      bool                  `json:"can_install" yaml:"can_install"`
	CanDownloadLogs bool                  `json:"can_download_logs" yaml:"can_download_logs"`
	Validations     []validations.Group   `json:"validations" yaml:"validations"`
}

// HostRows builds the host table of a cluster snapshot, skipping deleted hosts
func HostRows(c *models.Cluster) []HostRow {
	rows := make([]HostRow, 0, len(c.Hosts))
	for i := range c.Hosts {
		h := &c.Hosts[i]
		if h.IsDeleted() {
			continue
		}
		rows = append(rows, hostRow(c, h))
	}
	return rows
}

func hostRow(c *models.Cluster, h *models.Host) HostRow {
	row := HostRow{
		ID:              h.ID,
		Hostname:        hosts.Hostname(h),
		Role:            h.Role,
		RoleLabel:       hosts.RoleLabel(h),
		Status:          h.Status,
		StatusInfo:      h.StatusInfo,
		HardwareType:    hosts.Dash,
		Stage:           hosts.Progress(h).CurrentStage,
		StageNumber:     hosts.ProgressStageNumber(h),
		StageCount:      len(hosts.ProgressStages(h)),
		Actions:         capabilities.For(c.Status, h.Status).Permitted(),
		CanRename:       capabilities.CanEditHost(c.Status, h.Status) && capabilities.CanHostnameBeChanged(h.Status),
		CanInstall:      capabilities.CanInstallHost(c, h.Status),
		CanDownloadLogs: hosts.CanDownloadHostLogs(h),
		Validations:     validations.Groups(h.Validations()),
	}
	if row.Actions == nil {
		row.Actions = []capabilities.Action{}
	}
	if inv := h.ParsedInventory(); inv != nil {
		row.HardwareType = hosts.HardwareType(inv)
		if inv.CPU != nil {
			row.CPUCores = inv.CPU.Count
		}
		if inv.Memory != nil {
			row.MemoryBytes = inv.Memory.PhysicalBytes
		}
		row.Disks = len(inv.Disks)
	}
	return row
}
