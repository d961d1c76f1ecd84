package pronounce

import (
	"context"
	"fmt"
	"os/exec"
	"regexp"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/transcode"
)

const sayTextLimit = 4000

// Inventory lines look like "Alex    en_US    # Most people recognize me".
// The name runs up to the first gap of two or more spaces.
var sayVoiceLine = regexp.MustCompile(`^(.*?\S)\s{2,}(\S+)\s+#`)

// The inventory is discovered once per process; "say -v ?" is not worth
// re-running per request.
var (
	sayOnce      sync.Once
	sayInventory []OptionValue
)

func discoverSayVoices() []OptionValue {
	sayOnce.Do(func() {
		if _, err := exec.LookPath("say"); err != nil {
			return
		}
		out, err := exec.Command("say", "-v", "?").Output()
		if err != nil {
			return
		}
		sayInventory = parseSayVoices(string(out))
	})
	return sayInventory
}

// SayAvailable reports whether local speech synthesis offers any voices.
func SayAvailable() bool {
	return len(discoverSayVoices()) > 0
}

// parseSayVoices extracts (name, language) pairs from "say -v ?" output.
func parseSayVoices(out string) []OptionValue {
	var voices []OptionValue
	for _, line := range strings.Split(out, "\n") {
		m := sayVoiceLine.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		voices = append(voices, OptionValue{Code: m[1], Label: fmt.Sprintf("%s (%s)", m[1], m[2])})
	}
	return voices
}

// Say synthesizes clips with the macOS say command.
type Say struct {
	deps   Deps
	voices []OptionValue
	log    zerolog.Logger
}

var _ Provider = (*Say)(nil)

func NewSay(deps Deps) *Say {
	return &Say{
		deps:   deps,
		voices: discoverSayVoices(),
		log:    deps.Log.With().Str("provider", "say").Logger(),
	}
}

func (p *Say) Name() string { return "say" }

func (p *Say) Desc() string {
	return "macOS speech synthesis via the say command"
}

func (p *Say) Options() []OptionSpec {
	aliases := make(map[string]string, len(p.voices))
	def := ""
	for _, v := range p.voices {
		aliases[normalize(v.Code)] = v.Code
		if def == "" {
			def = v.Code
		}
	}
	return []OptionSpec{{
		Key:       "voice",
		Label:     "Voice",
		Values:    p.voices,
		Default:   def,
		Transform: aliasTransform(aliases, nil),
	}}
}

func (p *Say) Run(ctx context.Context, text string, opts map[string]string, dst string) error {
	if len(p.voices) == 0 {
		return &UnavailableError{Backend: "say", Reason: "say command not available on this host"}
	}
	if n := utf8.RuneCountInString(text); n > sayTextLimit {
		return &TextTooLongError{Limit: sayTextLimit, Length: n}
	}
	resolved, err := Resolve(p.Options(), opts)
	if err != nil {
		return err
	}

	scratch := media.TempPath(p.deps.ScratchDir, "aiff")
	out, err := exec.CommandContext(ctx, "say", "-v", resolved["voice"], "-o", scratch, text).CombinedOutput()
	if err != nil {
		if derr := media.Discard(scratch); derr != nil {
			p.log.Warn().Err(derr).Str("path", scratch).Msg("discard intermediate")
		}
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("say: %s: %w", msg, err)
		}
		return fmt.Errorf("say: %w", err)
	}

	// Convert consumes the scratch file on every exit path.
	return p.deps.Converter.Convert(ctx, scratch, dst, transcode.Requirements{MinSrcSize: 1024})
}
