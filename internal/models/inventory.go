package models

// Inventory is the hardware report a discovery agent sends for its host
type Inventory struct {
	Hostname     string        `json:"hostname,omitempty"`
	BmcAddress   string        `json:"bmc_address,omitempty"`
	BmcV6Address string        `json:"bmc_v6address,omitempty"`
	Interfaces   []Interface   `json:"interfaces,omitempty"`
	Disks        []Disk        `json:"disks,omitempty"`
	Boot         *Boot         `json:"boot,omitempty"`
	SystemVendor *SystemVendor `json:"system_vendor,omitempty"`
	Memory       *Memory       `json:"memory,omitempty"`
	CPU          *CPU          `json:"cpu,omitempty"`
	Timestamp    int64         `json:"timestamp,omitempty"`
}

// Interface is a network interface of a host
type Interface struct {
	Name          string   `json:"name,omitempty"`
	MacAddress    string   `json:"mac_address,omitempty"`
	IPv4Addresses []string `json:"ipv4_addresses,omitempty"`
	IPv6Addresses []string `json:"ipv6_addresses,omitempty"`
	SpeedMbps     int64    `json:"speed_mbps,omitempty"`
	MTU           int64    `json:"mtu,omitempty"`
	HasCarrier    bool     `json:"has_carrier,omitempty"`
	Vendor        string   `json:"vendor,omitempty"`
	Product       string   `json:"product,omitempty"`
	Biosdevname   string   `json:"biosdevname,omitempty"`
	Flags         []string `json:"flags,omitempty"`
}

// Disk is a block device of a host
type Disk struct {
	Name                    string                   `json:"name,omitempty"`
	Path                    string                   `json:"path,omitempty"`
	ByPath                  string                   `json:"by_path,omitempty"`
	DriveType               string                   `json:"drive_type,omitempty"`
	Vendor                  string                   `json:"vendor,omitempty"`
	Model                   string                   `json:"model,omitempty"`
	Serial                  string                   `json:"serial,omitempty"`
	SizeBytes               int64                    `json:"size_bytes,omitempty"`
	Bootable                bool                     `json:"bootable,omitempty"`
	IsInstallationMedia     bool                     `json:"is_installation_media,omitempty"`
	InstallationEligibility *InstallationEligibility `json:"installation_eligibility,omitempty"`
}

// InstallationEligibility says whether a disk can hold the installation
type InstallationEligibility struct {
	Eligible           bool     `json:"eligible,omitempty"`
	NotEligibleReasons []string `json:"not_eligible_reasons,omitempty"`
}

// Boot describes how the host booted
type Boot struct {
	CurrentBootMode string `json:"current_boot_mode,omitempty"`
	PxeInterface    string `json:"pxe_interface,omitempty"`
}

// SystemVendor identifies the machine
type SystemVendor struct {
	Manufacturer string `json:"manufacturer,omitempty"`
	ProductName  string `json:"product_name,omitempty"`
	SerialNumber string `json:"serial_number,omitempty"`
	Virtual      bool   `json:"virtual,omitempty"`
}

// Memory of a host, in bytes
type Memory struct {
	PhysicalBytes int64 `json:"physical_bytes,omitempty"`
	UsableBytes   int64 `json:"usable_bytes,omitempty"`
}

// CPU of a host
type CPU struct {
	Count        int64    `json:"count,omitempty"`
	Frequency    float64  `json:"frequency,omitempty"`
	ModelName    string   `json:"model_name,omitempty"`
	Architecture string   `json:"architecture,omitempty"`
	Flags        []string `json:"flags,omitempty"`
}
