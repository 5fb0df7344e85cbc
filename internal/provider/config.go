package provider

// Config represents webhook verification configuration for the supported
// providers. An empty secret disables verification for that provider, which
// is a deliberate permissive default for local development: do not run
// without secrets in production.
type Config struct {
	GithubSecret string `yaml:"github_secret" env:"GITHUB_WEBHOOK_SECRET"`
	GitlabSecret string `yaml:"gitlab_secret" env:"GITLAB_WEBHOOK_SECRET"`
}
