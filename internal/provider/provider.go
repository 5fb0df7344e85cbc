package provider

import (
	"github.com/logai/mergerelay/internal/model"
	"github.com/logai/mergerelay/internal/provider/github"
	"github.com/logai/mergerelay/internal/provider/gitlab"
)

// Registry holds the configured webhook providers keyed by name.
type Registry struct {
	providers map[model.Provider]model.EventProvider
}

// NewRegistry creates providers for all supported VCS platforms.
func NewRegistry(cfg Config) *Registry {
	return &Registry{
		providers: map[model.Provider]model.EventProvider{
			model.ProviderGitHub: github.New(model.ProviderConfig{Secret: cfg.GithubSecret}),
			model.ProviderGitLab: gitlab.New(model.ProviderConfig{Secret: cfg.GitlabSecret}),
		},
	}
}

// Get returns the provider with the given name.
func (r *Registry) Get(name model.Provider) (model.EventProvider, bool) {
	p, ok := r.providers[name]
	return p, ok
}
