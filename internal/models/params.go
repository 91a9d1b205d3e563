package models

// ClusterCreateParams is the body of a cluster creation request
type ClusterCreateParams struct {
	Name                     string               `json:"name"`
	OpenshiftVersion         string               `json:"openshift_version"`
	PullSecret               string               `json:"pull_secret"`
	HighAvailabilityMode     HighAvailabilityMode `json:"high_availability_mode,omitempty"`
	BaseDNSDomain            string               `json:"base_dns_domain,omitempty"`
	ClusterNetworkCIDR       string               `json:"cluster_network_cidr,omitempty"`
	ClusterNetworkHostPrefix int64                `json:"cluster_network_host_prefix,omitempty"`
	ServiceNetworkCIDR       string               `json:"service_network_cidr,omitempty"`
	IngressVip               string               `json:"ingress_vip,omitempty"`
	SSHPublicKey             string               `json:"ssh_public_key,omitempty"`
	VipDhcpAllocation        *bool                `json:"vip_dhcp_allocation,omitempty"`
	UserManagedNetworking    *bool                `json:"user_managed_networking,omitempty"`
	HTTPProxy                string               `json:"http_proxy,omitempty"`
	HTTPSProxy               string               `json:"https_proxy,omitempty"`
	NoProxy                  string               `json:"no_proxy,omitempty"`
	AdditionalNtpSource      string               `json:"additional_ntp_source,omitempty"`
}

// ClusterUpdateParams is the body of a cluster update; nil fields are left unchanged
type ClusterUpdateParams struct {
	Name                     *string          `json:"name,omitempty"`
	BaseDNSDomain            *string          `json:"base_dns_domain,omitempty"`
	ClusterNetworkCIDR       *string          `json:"cluster_network_cidr,omitempty"`
	ClusterNetworkHostPrefix *int64           `json:"cluster_network_host_prefix,omitempty"`
	ServiceNetworkCIDR       *string          `json:"service_network_cidr,omitempty"`
	MachineNetworkCIDR       *string          `json:"machine_network_cidr,omitempty"`
	APIVip                   *string          `json:"api_vip,omitempty"`
	APIVipDNSName            *string          `json:"api_vip_dnsname,omitempty"`
	IngressVip               *string          `json:"ingress_vip,omitempty"`
	PullSecret               *string          `json:"pull_secret,omitempty"`
	SSHPublicKey             *string          `json:"ssh_public_key,omitempty"`
	VipDhcpAllocation        *bool            `json:"vip_dhcp_allocation,omitempty"`
	UserManagedNetworking    *bool            `json:"user_managed_networking,omitempty"`
	HTTPProxy                *string          `json:"http_proxy,omitempty"`
	HTTPSProxy               *string          `json:"https_proxy,omitempty"`
	NoProxy                  *string          `json:"no_proxy,omitempty"`
	AdditionalNtpSource      *string          `json:"additional_ntp_source,omitempty"`
	HostsRoles               []HostRoleUpdate `json:"hosts_roles,omitempty"`
	HostsNames               []HostNameUpdate `json:"hosts_names,omitempty"`
}

// HostRoleUpdate requests a role for one host
type HostRoleUpdate struct {
	ID   string   `json:"id"`
	Role HostRole `json:"role"`
}

// HostNameUpdate requests a hostname for one host
type HostNameUpdate struct {
	ID       string `json:"id"`
	Hostname string `json:"hostname"`
}

// Credentials are the kubeadmin credentials of an installed cluster
type Credentials struct {
	Username   string `json:"username"`
	Password   string `json:"password"`
	ConsoleURL string `json:"console_url"`
}

// Presigned is a time-limited object storage URL
type Presigned struct {
	URL string `json:"url"`
}

// LogsType selects which logs to download
type LogsType string

const (
	LogsTypeHost       LogsType = "host"
	LogsTypeController LogsType = "controller"
	LogsTypeAll        LogsType = "all"
)

// OpenshiftVersion describes an installable OpenShift release
type OpenshiftVersion struct {
	DisplayName  string `json:"display_name"`
	ReleaseImage string `json:"release_image"`
	RhcosImage   string `json:"rhcos_image"`
	RhcosVersion string `json:"rhcos_version"`
	SupportLevel string `json:"support_level"` // "beta" or "production"
}

// OpenshiftVersions maps a version key such as "4.7" to its release
type OpenshiftVersions map[string]OpenshiftVersion

// InstallerError is the body of an error answer from the installer
type InstallerError struct {
	Kind   string `json:"kind"`
	ID     int32  `json:"id"`
	Href   string `json:"href"`
	Code   string `json:"code"`
	Reason string `json:"reason"`
}
