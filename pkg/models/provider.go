// Package models defines the core data types shared across the dispatch
// runtime: provider identities, trigger declarations, event descriptors,
// bundles and dispatch outcomes.
package models

// DefaultAlias is assumed when a bundle configures only one account
// of a provider type and does not name it.
const DefaultAlias = "default"

// Built-in provider types. Additional types (new integrations) need no
// registration here; identity matching is purely structural.
const (
	ProviderBuiltin = "builtin"
	ProviderGitLab  = "gitlab"
	ProviderJira    = "jira"
)

// ProviderIdentity names one configured integration account. Type is the
// integration family, Alias disambiguates multiple accounts of the same
// type (e.g. "work" vs "personal" GitLab).
type ProviderIdentity struct {
	Type  string `json:"type"  yaml:"type"  validate:"required"`
	Alias string `json:"alias" yaml:"alias"`
}

// Normalized returns the identity with an empty alias replaced by
// DefaultAlias. Identity comparison always happens on normalized values.
func (p ProviderIdentity) Normalized() ProviderIdentity {
	if p.Alias == "" {
		p.Alias = DefaultAlias
	}

	return p
}

// Equal reports whether both type and alias match, after normalization.
func (p ProviderIdentity) Equal(other ProviderIdentity) bool {
	return p.Normalized() == other.Normalized()
}

func (p ProviderIdentity) String() string {
	n := p.Normalized()

	return n.Type + "/" + n.Alias
}
