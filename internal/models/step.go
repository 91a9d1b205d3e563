package models

// StepType names an instruction the discovery agent can run
type StepType string

const (
	StepTypeConnectivityCheck          StepType = "connectivity-check"
	StepTypeExecute                    StepType = "execute"
	StepTypeInventory                  StepType = "inventory"
	StepTypeInstall                    StepType = "install"
	StepTypeFreeNetworkAddresses       StepType = "free-network-addresses"
	StepTypeResetInstallation          StepType = "reset-installation"
	StepTypeDhcpLeaseAllocate          StepType = "dhcp-lease-allocate"
	StepTypeAPIVipConnectivityCheck    StepType = "api-vip-connectivity-check"
	StepTypeNtpSynchronizer            StepType = "ntp-synchronizer"
	StepTypeFioPerfCheck               StepType = "fio-perf-check"
	StepTypeContainerImageAvailability StepType = "container-image-availability"
	StepTypeDomainResolution           StepType = "domain-resolution"
)

// Step is a single agent instruction
type Step struct {
	StepType StepType `json:"step_type,omitempty"`
	StepID   string   `json:"step_id,omitempty"`
	Command  string   `json:"command,omitempty"`
	Args     []string `json:"args,omitempty"`
}

// Steps is the instruction batch returned to an agent
type Steps struct {
	NextInstructionSeconds int64  `json:"next_instruction_seconds,omitempty"`
	PostStepAction         string `json:"post_step_action,omitempty"` // "exit" or "continue"
	Instructions           []Step `json:"instructions,omitempty"`
}

// StepReply is an agent's result for one step
type StepReply struct {
	StepType StepType `json:"step_type,omitempty"`
	StepID   string   `json:"step_id,omitempty"`
	ExitCode int64    `json:"exit_code"`
	Output   string   `json:"output,omitempty"`
	Error    string   `json:"error,omitempty"`
}

// HostCreateParams registers a host with a cluster
type HostCreateParams struct {
	HostID                string `json:"host_id"`
	DiscoveryAgentVersion string `json:"discovery_agent_version,omitempty"`
}

// NextStepRunnerCommand tells a freshly registered agent how to poll for steps
type NextStepRunnerCommand struct {
	Command      string   `json:"command,omitempty"`
	Args         []string `json:"args,omitempty"`
	RetrySeconds int64    `json:"retry_seconds,omitempty"`
}

// HostRegistrationResponse is the host as registered plus agent bootstrap data
type HostRegistrationResponse struct {
	Host
	NextStepRunnerCommand *NextStepRunnerCommand `json:"next_step_runner_command,omitempty"`
}
