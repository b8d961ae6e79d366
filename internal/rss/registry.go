package rss

import "gopkg.in/yaml.v3"

// Source is one configured news feed.
type Source struct {
	Name     string `yaml:"name"`
	URL      string `yaml:"url"`
	Language string `yaml:"language"`
	Enabled  bool   `yaml:"enabled"`
}

// UnmarshalYAML treats a source without an enabled key as enabled.
func (s *Source) UnmarshalYAML(node *yaml.Node) error {
	type plain Source
	p := plain{Enabled: true}
	if err := node.Decode(&p); err != nil {
		return err
	}
	*s = Source(p)
	return nil
}

// Registry is the static, ordered list of configured sources.
type Registry struct {
	sources []Source
}

// NewRegistry copies sources so later changes to the slice don't leak in.
func NewRegistry(sources []Source) *Registry {
	cp := make([]Source, len(sources))
	copy(cp, sources)
	return &Registry{sources: cp}
}

// All returns every configured source in registration order.
func (r *Registry) All() []Source {
	out := make([]Source, len(r.sources))
	copy(out, r.sources)
	return out
}

// Enabled returns the enabled sources in registration order.
func (r *Registry) Enabled() []Source {
	var out []Source
	for _, s := range r.sources {
		if s.Enabled {
			out = append(out, s)
		}
	}
	return out
}
