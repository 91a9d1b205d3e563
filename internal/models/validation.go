package models

// ValidationStatus is the outcome of a single validation
type ValidationStatus string

const (
	ValidationStatusPending ValidationStatus = "pending"
	ValidationStatusSuccess ValidationStatus = "success"
	ValidationStatusFailure ValidationStatus = "failure"
)

// Validation is one check the installer ran against a cluster or host
type Validation struct {
	ID      string           `json:"id"`
	Status  ValidationStatus `json:"status"`
	Message string           `json:"message"`
}

// ValidationsInfo maps a validation category (network, hardware, ...) to its
// checks, in the order the installer reported them.
type ValidationsInfo map[string][]Validation
