package pronounce

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/transcode"
)

// Provider is the interface for text-to-audio-clip backends.
type Provider interface {
	// Name is the stable identifier used for dispatch.
	Name() string
	// Desc returns a short, static description.
	Desc() string
	// Options declares the configurable parameters Run accepts.
	Options() []OptionSpec
	// Run resolves options, locates or synthesizes audio for text, and
	// writes the clip to dst. On failure dst is left untouched; no partial
	// file is ever visible there.
	Run(ctx context.Context, text string, opts map[string]string, dst string) error
}

// Deps are the shared collaborators injected into every provider instance.
type Deps struct {
	Fetcher    *fetch.Fetcher
	Converter  *transcode.Converter
	Yandex     *YandexSynth // nil when unconfigured
	ScratchDir string       // "" = system temp dir
	Log        zerolog.Logger
}
