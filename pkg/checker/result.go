package checker

import (
	"time"

	"go.goms.io/aks/AKSupport/pkg/notify"
	"go.goms.io/aks/AKSupport/pkg/policy"
)

// Process exit codes of a check run.
const (
	ExitSupported         = 0
	ExitFailure           = 1
	ExitNotSupported      = 2
	ExitSupportEndingSoon = 3
)

// ExitCode maps a support status to the process exit code.
func ExitCode(status policy.Status) int {
	switch status {
	case policy.Supported:
		return ExitSupported
	case policy.NotSupported:
		return ExitNotSupported
	case policy.SupportEndingSoon:
		return ExitSupportEndingSoon
	default:
		return ExitFailure
	}
}

// Result represents the outcome of one check run
type Result struct {
	ClusterName       string                 `json:"clusterName" yaml:"clusterName"`
	Region            string                 `json:"region" yaml:"region"`
	RunningVersion    string                 `json:"runningVersion,omitempty" yaml:"runningVersion,omitempty"`
	CatalogVersions   []string               `json:"catalogVersions,omitempty" yaml:"catalogVersions,omitempty"`
	Status            *policy.Status         `json:"status,omitempty" yaml:"status,omitempty"`
	ExitCode          int                    `json:"exitCode" yaml:"exitCode"`
	Notifications     *notify.DispatchResult `json:"notifications,omitempty" yaml:"notifications,omitempty"`
	NotificationError string                 `json:"notificationError,omitempty" yaml:"notificationError,omitempty"`
	Error             string                 `json:"error,omitempty" yaml:"error,omitempty"`
	CheckedAt         time.Time              `json:"checkedAt" yaml:"checkedAt"`
	Duration          time.Duration          `json:"duration" yaml:"duration"`
}
