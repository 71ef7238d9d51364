package policy

import "fmt"

// Status is the support classification of a running Kubernetes version.
type Status int

const (
	// Supported means the version is in the catalog and not among the oldest releases.
	Supported Status = iota
	// SupportEndingSoon means the version is still listed but about to leave the support window.
	SupportEndingSoon
	// NotSupported means the version is no longer listed in the catalog.
	NotSupported
)

func (s Status) String() string {
	switch s {
	case Supported:
		return "Supported"
	case SupportEndingSoon:
		return "Support Ending Soon"
	case NotSupported:
		return "Not Supported"
	default:
		return fmt.Sprintf("Status(%d)", int(s))
	}
}

// Description is the operator-facing explanation used in notifications.
func (s Status) Description() string {
	switch s {
	case SupportEndingSoon:
		return "Cluster will soon lose support as per Microsoft's Kubernetes Version Support Policy."
	case NotSupported:
		return "Cluster is no longer covered by Microsoft's Kubernetes Version Support Policy."
	default:
		return "Cluster is covered by Microsoft's Kubernetes Version Support Policy."
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s Status) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}
