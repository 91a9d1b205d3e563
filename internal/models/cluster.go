package models

import (
	"time"
)

// Cluster is an OpenShift cluster as reported by the assisted installer
type Cluster struct {
	ID                   string               `json:"id"`
	Kind                 ClusterKind          `json:"kind"`
	Href                 string               `json:"href"`
	Name                 string               `json:"name,omitempty"`
	UserName             string               `json:"user_name,omitempty"`
	OrgID                string               `json:"org_id,omitempty"`
	OpenshiftVersion     string               `json:"openshift_version,omitempty"`
	OpenshiftClusterID   string               `json:"openshift_cluster_id,omitempty"`
	HighAvailabilityMode HighAvailabilityMode `json:"high_availability_mode,omitempty"`
	Status               ClusterStatus        `json:"status"`
	StatusInfo           string               `json:"status_info"`
	ImageInfo            *ImageInfo           `json:"image_info,omitempty"`

	// Networking
	BaseDNSDomain            string        `json:"base_dns_domain,omitempty"`
	ClusterNetworkCIDR       string        `json:"cluster_network_cidr,omitempty"`
	ClusterNetworkHostPrefix int64         `json:"cluster_network_host_prefix,omitempty"`
	ServiceNetworkCIDR       string        `json:"service_network_cidr,omitempty"`
	MachineNetworkCIDR       string        `json:"machine_network_cidr,omitempty"`
	APIVip                   string        `json:"api_vip,omitempty"`
	APIVipDNSName            string        `json:"api_vip_dnsname,omitempty"`
	IngressVip               string        `json:"ingress_vip,omitempty"`
	VipDhcpAllocation        *bool         `json:"vip_dhcp_allocation,omitempty"`
	UserManagedNetworking    *bool         `json:"user_managed_networking,omitempty"`
	HostNetworks             []HostNetwork `json:"host_networks,omitempty"`
	AdditionalNtpSource      string        `json:"additional_ntp_source,omitempty"`

	// Proxy
	HTTPProxy  string `json:"http_proxy,omitempty"`
	HTTPSProxy string `json:"https_proxy,omitempty"`
	NoProxy    string `json:"no_proxy,omitempty"`

	SSHPublicKey  string `json:"ssh_public_key,omitempty"`
	PullSecretSet bool   `json:"pull_secret_set,omitempty"`

	// Hosts is a snapshot taken when the cluster was fetched
	Hosts           []Host                    `json:"hosts,omitempty"`
	ValidationsInfo Embedded[ValidationsInfo] `json:"validations_info,omitzero"`
	Progress        *ClusterProgressInfo      `json:"progress,omitempty"`

	ControllerLogsCollectedAt *time.Time `json:"controller_logs_collected_at,omitempty"`
	CreatedAt                 *time.Time `json:"created_at,omitempty"`
	UpdatedAt                 *time.Time `json:"updated_at,omitempty"`
	StatusUpdatedAt           *time.Time `json:"status_updated_at,omitempty"`
	InstallStartedAt          *time.Time `json:"install_started_at,omitempty"`
	InstallCompletedAt        *time.Time `json:"install_completed_at,omitempty"`
	DeletedAt                 *time.Time `json:"deleted_at,omitempty"`
}

// ClusterKind distinguishes new clusters from day-2 add-hosts clusters
type ClusterKind string

const (
	ClusterKindCluster            ClusterKind = "Cluster"
	ClusterKindAddHostsCluster    ClusterKind = "AddHostsCluster"
	ClusterKindAddHostsOCPCluster ClusterKind = "AddHostsOCPCluster"
)

// HighAvailabilityMode selects a multi-node (Full) or single-node (None) control plane
type HighAvailabilityMode string

const (
	HighAvailabilityModeFull HighAvailabilityMode = "Full"
	HighAvailabilityModeNone HighAvailabilityMode = "None"
)

// ClusterStatus defines the possible states of a cluster
type ClusterStatus string

const (
	ClusterStatusInsufficient                ClusterStatus = "insufficient"
	ClusterStatusReady                       ClusterStatus = "ready"
	ClusterStatusError                       ClusterStatus = "error"
	ClusterStatusPreparingForInstallation    ClusterStatus = "preparing-for-installation"
	ClusterStatusPendingForInput             ClusterStatus = "pending-for-input"
	ClusterStatusInstalling                  ClusterStatus = "installing"
	ClusterStatusFinalizing                  ClusterStatus = "finalizing"
	ClusterStatusInstalled                   ClusterStatus = "installed"
	ClusterStatusAddingHosts                 ClusterStatus = "adding-hosts"
	ClusterStatusCancelled                   ClusterStatus = "cancelled"
	ClusterStatusInstallingPendingUserAction ClusterStatus = "installing-pending-user-action"
)

// ClusterStatuses lists every cluster status the installer defines
var ClusterStatuses = []ClusterStatus{
	ClusterStatusInsufficient,
	ClusterStatusReady,
	ClusterStatusError,
	ClusterStatusPreparingForInstallation,
	ClusterStatusPendingForInput,
	ClusterStatusInstalling,
	ClusterStatusFinalizing,
	ClusterStatusInstalled,
	ClusterStatusAddingHosts,
	ClusterStatusCancelled,
	ClusterStatusInstallingPendingUserAction,
}

// Known reports whether s is one of the installer's cluster statuses
func (s ClusterStatus) Known() bool {
	for _, known := range ClusterStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// IsTerminal reports whether the cluster will not change status without user action
func (s ClusterStatus) IsTerminal() bool {
	return s == ClusterStatusInstalled || s == ClusterStatusError || s == ClusterStatusCancelled
}

// ClusterProgressInfo is the cluster-level installation progress
type ClusterProgressInfo struct {
	ProgressInfo      string     `json:"progress_info,omitempty"`
	ProgressUpdatedAt *time.Time `json:"progress_updated_at,omitempty"`
}

// ImageInfo describes the discovery ISO generated for the cluster
type ImageInfo struct {
	SSHPublicKey     string     `json:"ssh_public_key,omitempty"`
	SizeBytes        int64      `json:"size_bytes,omitempty"`
	DownloadURL      string     `json:"download_url,omitempty"`
	GeneratorVersion string     `json:"generator_version,omitempty"`
	Type             string     `json:"type,omitempty"`
	CreatedAt        *time.Time `json:"created_at,omitempty"`
	ExpiresAt        *time.Time `json:"expires_at,omitempty"`
}

// HostNetwork groups hosts sharing a network
type HostNetwork struct {
	CIDR    string   `json:"cidr,omitempty"`
	HostIDs []string `json:"host_ids,omitempty"`
}

// IsDeleted returns true if the cluster has been soft deleted
func (c *Cluster) IsDeleted() bool {
	return c.DeletedAt != nil
}

// IsAddHosts returns true for day-2 clusters that only accept new hosts
func (c *Cluster) IsAddHosts() bool {
	return c.Kind == ClusterKindAddHostsCluster || c.Kind == ClusterKindAddHostsOCPCluster
}

// Validations returns the parsed cluster validations, or nil
func (c *Cluster) Validations() ValidationsInfo {
	if v, ok := c.ValidationsInfo.Value(); ok {
		return *v
	}
	return nil
}
