package pronounce

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/url"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/net/html"

	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/transcode"
)

// Multi-word entries are slugged with dashes. Case is preserved:
// "United-Kingdom" resolves where "united-kingdom" does not.
var oxfordWhitespace = regexp.MustCompile(`[\x00\s]+`)

const oxfordTextLimit = 300

// Oxford looks up pronunciation audio on dictionary entry pages.
type Oxford struct {
	deps    Deps
	baseURL string
	probe   func(io.Reader) (time.Duration, error)
	log     zerolog.Logger
}

var _ Provider = (*Oxford)(nil)

func NewOxford(deps Deps) *Oxford {
	return &Oxford{
		deps:    deps,
		baseURL: "https://www.oxforddictionaries.com",
		probe:   media.MP3Duration,
		log:     deps.Log.With().Str("provider", "oxford").Logger(),
	}
}

func (p *Oxford) Name() string { return "oxford" }

func (p *Oxford) Desc() string {
	return "Oxford Dictionaries (British and American English)"
}

func (p *Oxford) Options() []OptionSpec {
	aliases := make(map[string]string)
	for _, a := range []string{"American", "American English", "English, American", "US", "en-US"} {
		aliases[normalize(a)] = "en-US"
	}
	for _, a := range []string{"British", "British English", "English, British", "English", "en", "en-EU", "en-UK", "EU", "GB", "UK", "en-GB"} {
		aliases[normalize(a)] = "en-GB"
	}

	return []OptionSpec{{
		Key:   "voice",
		Label: "Voice",
		Values: []OptionValue{
			{Code: "en-US", Label: "English, American (en-US)"},
			{Code: "en-GB", Label: "English, British (en-GB)"},
		},
		Default: "en-GB",
		Transform: aliasTransform(aliases, func(raw string) (string, bool) {
			// Any parseable English tag folds onto a dictionary edition;
			// the British one is the default for everything not US.
			base, region, ok := bcp47(raw)
			if !ok || base != "en" {
				return "", false
			}
			if region == "US" {
				return "en-US", true
			}
			return "en-GB", true
		}),
	}}
}

func (p *Oxford) Run(ctx context.Context, text string, opts map[string]string, dst string) error {
	if len(text) > oxfordTextLimit {
		return &TextTooLongError{Limit: oxfordTextLimit, Length: len(text)}
	}
	resolved, err := Resolve(p.Options(), opts)
	if err != nil {
		return err
	}

	edition := "english"
	if resolved["voice"] == "en-US" {
		edition = "american_english"
	}
	slug := oxfordWhitespace.ReplaceAllString(text, "-")
	pageURL := fmt.Sprintf("%s/definition/%s/%s", p.baseURL, edition, url.PathEscape(slug))

	page, err := p.deps.Fetcher.Fetch(ctx, pageURL, fetch.Requirements{})
	if err != nil {
		return err
	}

	sources := extractMP3Sources(page.Body)
	if len(sources) == 0 {
		return &NotFoundError{
			Msg:    "sound not found: " + pageURL,
			Phrase: strings.Contains(text, " "),
		}
	}
	// First match wins on pages carrying several recordings.
	soundURL := sources[0]

	audio, err := p.deps.Fetcher.Fetch(ctx, soundURL, fetch.Requirements{Mime: "audio/mpeg", MinSize: 1024})
	if err != nil {
		return err
	}
	length, err := p.probe(bytes.NewReader(audio.Body))
	if err != nil {
		return fmt.Errorf("verify %s: %w", soundURL, err)
	}
	p.log.Debug().Str("url", soundURL).Dur("length", length).Msg("pronunciation located")

	if strings.EqualFold(filepath.Ext(dst), ".mp3") {
		return media.WriteAtomic(dst, audio.Body)
	}
	scratch := media.TempPath(p.deps.ScratchDir, "mp3")
	if err := media.WriteAtomic(scratch, audio.Body); err != nil {
		return err
	}
	// Convert consumes the scratch file on every exit path.
	return p.deps.Converter.Convert(ctx, scratch, dst, transcode.Requirements{MinSrcSize: 1024})
}

// extractMP3Sources returns every data-src-mp3 attribute value from start
// tags, in document order.
func extractMP3Sources(doc []byte) []string {
	var out []string
	z := html.NewTokenizer(bytes.NewReader(doc))
	for {
		switch z.Next() {
		case html.ErrorToken:
			// io.EOF or a malformed tail; either way the scan is done
			return out
		case html.StartTagToken, html.SelfClosingTagToken:
			_, hasAttr := z.TagName()
			for hasAttr {
				key, val, more := z.TagAttr()
				if string(key) == "data-src-mp3" {
					out = append(out, string(val))
				}
				hasAttr = more
			}
		}
	}
}
