package models

import (
	"time"
)

// Host is a machine that booted the discovery image and registered with a cluster
type Host struct {
	ID                    string                    `json:"id"`
	Kind                  string                    `json:"kind"`
	Href                  string                    `json:"href"`
	ClusterID             string                    `json:"cluster_id,omitempty"`
	Status                HostStatus                `json:"status"`
	StatusInfo            string                    `json:"status_info"`
	Role                  HostRole                  `json:"role,omitempty"`
	Bootstrap             bool                      `json:"bootstrap,omitempty"`
	Inventory             Embedded[Inventory]       `json:"inventory,omitzero"`
	ValidationsInfo       Embedded[ValidationsInfo] `json:"validations_info,omitzero"`
	Progress              *HostProgressInfo         `json:"progress,omitempty"`
	ProgressStages        []HostStage               `json:"progress_stages,omitempty"`
	RequestedHostname     string                    `json:"requested_hostname,omitempty"`
	InstallationDiskPath  string                    `json:"installation_disk_path,omitempty"`
	DiscoveryAgentVersion string                    `json:"discovery_agent_version,omitempty"`
	InstallerVersion      string                    `json:"installer_version,omitempty"`

	LogsCollectedAt *time.Time `json:"logs_collected_at,omitempty"`
	CheckedInAt     *time.Time `json:"checked_in_at,omitempty"`
	StatusUpdatedAt *time.Time `json:"status_updated_at,omitempty"`
	CreatedAt       *time.Time `json:"created_at,omitempty"`
	UpdatedAt       *time.Time `json:"updated_at,omitempty"`
	DeletedAt       *time.Time `json:"deleted_at,omitempty"`
}

// HostStatus defines the possible states of a host
type HostStatus string

const (
	HostStatusDiscovering                 HostStatus = "discovering"
	HostStatusKnown                       HostStatus = "known"
	HostStatusDisconnected                HostStatus = "disconnected"
	HostStatusInsufficient                HostStatus = "insufficient"
	HostStatusDisabled                    HostStatus = "disabled"
	HostStatusPreparingForInstallation    HostStatus = "preparing-for-installation"
	HostStatusPendingForInput             HostStatus = "pending-for-input"
	HostStatusInstalling                  HostStatus = "installing"
	HostStatusInstallingInProgress        HostStatus = "installing-in-progress"
	HostStatusInstallingPendingUserAction HostStatus = "installing-pending-user-action"
	HostStatusResettingPendingUserAction  HostStatus = "resetting-pending-user-action"
	HostStatusInstalled                   HostStatus = "installed"
	HostStatusError                       HostStatus = "error"
	HostStatusResetting                   HostStatus = "resetting"
	HostStatusAddedToExistingCluster      HostStatus = "added-to-existing-cluster"
	HostStatusCancelled                   HostStatus = "cancelled"
)

// HostStatuses lists every host status the installer defines
var HostStatuses = []HostStatus{
	HostStatusDiscovering,
	HostStatusKnown,
	HostStatusDisconnected,
	HostStatusInsufficient,
	HostStatusDisabled,
	HostStatusPreparingForInstallation,
	HostStatusPendingForInput,
	HostStatusInstalling,
	HostStatusInstallingInProgress,
	HostStatusInstallingPendingUserAction,
	HostStatusResettingPendingUserAction,
	HostStatusInstalled,
	HostStatusError,
	HostStatusResetting,
	HostStatusAddedToExistingCluster,
	HostStatusCancelled,
}

// Known reports whether s is one of the installer's host statuses
func (s HostStatus) Known() bool {
	for _, known := range HostStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// HostRole defines the role of a host in the cluster
type HostRole string

const (
	HostRoleAutoAssign HostRole = "auto-assign"
	HostRoleMaster     HostRole = "master"
	HostRoleWorker     HostRole = "worker"
	HostRoleBootstrap  HostRole = "bootstrap"
)

// Assignable reports whether a user may request role r for a host
func (r HostRole) Assignable() bool {
	return r == HostRoleAutoAssign || r == HostRoleMaster || r == HostRoleWorker
}

// HostStage is a step of a host's installation
type HostStage string

const (
	HostStageStartingInstallation        HostStage = "Starting installation"
	HostStageWaitingForControlPlane      HostStage = "Waiting for control plane"
	HostStageStartWaitingForControlPlane HostStage = "Start waiting for control plane"
	HostStageInstalling                  HostStage = "Installing"
	HostStageWritingImageToDisk          HostStage = "Writing image to disk"
	HostStageRebooting                   HostStage = "Rebooting"
	HostStageWaitingForIgnition          HostStage = "Waiting for ignition"
	HostStageConfiguring                 HostStage = "Configuring"
	HostStageJoined                      HostStage = "Joined"
	HostStageDone                        HostStage = "Done"
	HostStageFailed                      HostStage = "Failed"
)

// HostProgressInfo is a host's installation progress
type HostProgressInfo struct {
	CurrentStage   HostStage  `json:"current_stage"`
	ProgressInfo   string     `json:"progress_info,omitempty"`
	StageStartedAt *time.Time `json:"stage_started_at,omitempty"`
	StageUpdatedAt *time.Time `json:"stage_updated_at,omitempty"`
}

// IsDeleted returns true if the host has been soft deleted
func (h *Host) IsDeleted() bool {
	return h.DeletedAt != nil
}

// ParsedInventory returns the host inventory, or nil when absent or unparseable
func (h *Host) ParsedInventory() *Inventory {
	v, _ := h.Inventory.Value()
	return v
}

// Validations returns the parsed host validations, or nil
func (h *Host) Validations() ValidationsInfo {
	if v, ok := h.ValidationsInfo.Value(); ok {
		return *v
	}
	return nil
}
