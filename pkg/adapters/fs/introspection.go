package fs

import (
	"github.com/aretw0/introspection"
)

// RepositoryState exposes internal state for observability.
type RepositoryState struct {
	Root    string   `json:"root"`
	Pattern string   `json:"pattern"`
	Exclude []string `json:"exclude,omitempty"`
	Lister  bool     `json:"lister"`
}

// State implements introspection.Introspectable.
func (r *Repository) State() any {
	return RepositoryState{
		Root:    r.Root,
		Pattern: r.config.Pattern,
		Exclude: append([]string(nil), r.config.Exclude...),
		Lister:  r.config.Lister != nil,
	}
}

// ComponentType implements introspection.Component.
func (r *Repository) ComponentType() string {
	return "fs"
}

var _ introspection.Introspectable = (*Repository)(nil)
var _ introspection.Component = (*Repository)(nil)
