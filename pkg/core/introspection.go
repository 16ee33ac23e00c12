package core

import (
	"time"

	"github.com/aretw0/introspection"
)

// ServiceState exposes internal state for observability.
type ServiceState struct {
	Runs           int        `json:"runs"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	ReadPolicy     ReadPolicy `json:"read_policy"`
	Concurrency    int        `json:"concurrency"`
	RepositoryType string     `json:"repository_type"`
}

// State implements introspection.Introspectable.
func (s *Service) State() any {
	s.mu.RLock()
	defer s.mu.RUnlock()

	repoType := "unknown"
	if s.repo != nil {
		repoType = "repository"
		if comp, ok := s.repo.(introspection.Component); ok {
			repoType = comp.ComponentType()
		}
	}

	return ServiceState{
		Runs:           s.runs,
		LastRun:        s.lastRun,
		ReadPolicy:     s.scanner.policy,
		Concurrency:    s.config.Concurrency,
		RepositoryType: repoType,
	}
}

// ComponentType implements introspection.Component.
func (s *Service) ComponentType() string {
	return "service"
}

var _ introspection.Introspectable = (*Service)(nil)
var _ introspection.Component = (*Service)(nil)
