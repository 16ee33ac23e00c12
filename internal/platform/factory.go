package platform

import (
	"context"

	"github.com/aretw0/citeclean/pkg/bibtex"
	"github.com/aretw0/citeclean/pkg/core"
	"github.com/aretw0/citeclean/pkg/report"
)

// New wires a detection service for the project rooted at root.
//
//	svc, err := citeclean.New(ctx, "./thesis", citeclean.WithExclude("build"))
//
// The manuscripts are discovered lazily on every Detect call.
func New(ctx context.Context, root string, opts ...Option) (*core.Service, error) {
	o := applyOptions(opts)

	policy, err := core.ParseReadPolicy(o.readPolicy)
	if err != nil {
		return nil, err
	}

	repo, err := Init(ctx, root, opts...)
	if err != nil {
		return nil, err
	}

	service := core.NewService(bibtex.NewExtractor(), repo, report.NewLocator(), core.Config{
		ReadPolicy:  policy,
		Concurrency: o.concurrency,
		Logger:      o.logger,
	})

	if o.logger != nil {
		o.logger.Debug("service ready", "state", service.State())
	}
	return service, nil
}
