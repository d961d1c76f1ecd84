package pronounce

import (
	"context"
	"fmt"

	"github.com/snarg/clipcast/internal/metrics"
)

// Factory builds a fresh provider instance around shared collaborators.
// Each instance owns its own lookup cache, so callers get one per logical
// request.
type Factory func(deps Deps) Provider

// Catalog maps backend identifiers to factories. Dispatch is by exact name.
type Catalog struct {
	deps      Deps
	factories map[string]Factory
	order     []string
}

// NewCatalog creates a catalog with every built-in backend registered.
func NewCatalog(deps Deps) *Catalog {
	c := &Catalog{deps: deps, factories: make(map[string]Factory)}
	c.Register("oxford", func(d Deps) Provider { return NewOxford(d) })
	c.Register("wikicommons", func(d Deps) Provider { return NewWikiCommons(d) })
	c.Register("say", func(d Deps) Provider { return NewSay(d) })
	c.Register("yandex", func(d Deps) Provider { return NewYandex(d) })
	return c
}

// Register adds a factory under name. Later registrations replace earlier
// ones; listing order follows first registration.
func (c *Catalog) Register(name string, f Factory) {
	if _, dup := c.factories[name]; !dup {
		c.order = append(c.order, name)
	}
	c.factories[name] = f
}

// New builds a fresh instance of the named provider.
func (c *Catalog) New(name string) (Provider, error) {
	f, ok := c.factories[name]
	if !ok {
		return nil, fmt.Errorf("unknown provider %q", name)
	}
	return f(c.deps), nil
}

// Names lists the registered backend identifiers in registration order.
func (c *Catalog) Names() []string {
	out := make([]string, len(c.order))
	copy(out, c.order)
	return out
}

// Run dispatches one clip request to the named provider and records the
// outcome. The provider lifecycle surfaces as phase-tagged log events.
func (c *Catalog) Run(ctx context.Context, name, text string, opts map[string]string, dst string) error {
	p, err := c.New(name)
	if err != nil {
		return err
	}

	log := c.deps.Log.With().Str("provider", name).Logger()
	log.Info().Str("phase", "querying").Str("text", truncate(text, 60)).Msg("clip request")

	if err := p.Run(ctx, text, opts, dst); err != nil {
		metrics.ClipsTotal.WithLabelValues(name, "error").Inc()
		log.Warn().Str("phase", "failed").Err(err).Msg("clip request")
		return err
	}

	metrics.ClipsTotal.WithLabelValues(name, "ok").Inc()
	log.Info().Str("phase", "resolved").Str("dst", dst).Msg("clip request")
	return nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "…"
}
