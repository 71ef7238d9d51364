package notify

import (
	"fmt"
	"time"

	"go.goms.io/aks/AKSupport/pkg/policy"
)

const (
	// AlertTitle is the headline shared by every channel.
	AlertTitle = `AKSupport Alert: "AKS cluster needs attention"`

	// PolicyURL links to the Kubernetes version support policy of AKS.
	PolicyURL = "https://docs.microsoft.com/en-us/azure/aks/supported-kubernetes-versions#kubernetes-version-support-policy"

	// ProjectURL links to the project home page.
	ProjectURL = "https://github.com/StevenJDH/AKSupport"
)

// Event is the immutable payload handed to every channel for one run.
type Event struct {
	ClusterName    string
	RunningVersion string
	Description    string
	Status         policy.Status
	ClusterURL     string
	Timestamp      time.Time
}

// NewEvent builds the event for a classified cluster.
func NewEvent(clusterName, runningVersion string, status policy.Status, clusterURL string, now time.Time) Event {
	return Event{
		ClusterName:    clusterName,
		RunningVersion: runningVersion,
		Description:    status.Description(),
		Status:         status,
		ClusterURL:     clusterURL,
		Timestamp:      now,
	}
}

// FormattedTimestamp renders the timestamp as "2006/01/02, 15:04 GMT+2".
func (e Event) FormattedTimestamp() string {
	_, offset := e.Timestamp.Zone()
	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	return fmt.Sprintf("%s GMT%s%d", e.Timestamp.Format("2006/01/02, 15:04"), sign, offset/3600)
}
