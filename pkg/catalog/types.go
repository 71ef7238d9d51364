package catalog

import "go.goms.io/aks/AKSupport/pkg/version"

// Upgrade is a version an orchestrator entry can be upgraded to.
type Upgrade struct {
	Version   version.Version `json:"version" yaml:"version"`
	IsPreview *bool           `json:"isPreview,omitempty" yaml:"isPreview,omitempty"`
}

// Entry is one orchestrator release in the provider's support catalog.
type Entry struct {
	Version   version.Version `json:"version" yaml:"version"`
	IsDefault *bool           `json:"isDefault,omitempty" yaml:"isDefault,omitempty"`
	IsPreview *bool           `json:"isPreview,omitempty" yaml:"isPreview,omitempty"`
	Upgrades  []Upgrade       `json:"upgrades,omitempty" yaml:"upgrades,omitempty"`
}

// Catalog lists supported versions in the order returned by the provider,
// which is ascending. It must not be re-sorted.
type Catalog []Entry

// Versions returns the catalog versions as strings, in catalog order.
func (c Catalog) Versions() []string {
	out := make([]string, 0, len(c))
	for _, e := range c {
		out = append(out, e.Version.String())
	}
	return out
}

// orchestrator mirrors one element of the orchestrators array on the wire.
type orchestrator struct {
	OrchestratorType    string    `json:"orchestratorType"`
	OrchestratorVersion string    `json:"orchestratorVersion"`
	Default             *bool     `json:"default"`
	IsPreview           *bool     `json:"isPreview"`
	Upgrades            []upgrade `json:"upgrades"`
}

type upgrade struct {
	OrchestratorType    string `json:"orchestratorType"`
	OrchestratorVersion string `json:"orchestratorVersion"`
	IsPreview           *bool  `json:"isPreview"`
}
