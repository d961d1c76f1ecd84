package pronounce

import (
	"context"
	"crypto/md5"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/lookup"
	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/transcode"
)

// Search prefixes known to be in relatively large abundance on the Commons,
// most common first. The code doubles as the loosest prefix during the
// fallback searches.
type commonsLanguage struct {
	code     string
	name     string
	prefixes []string
}

var commonsLanguages = []commonsLanguage{
	{"de", "German", []string{"de"}},
	{"en", "English", []string{"en", "en-us", "en-uk", "en-gb", "en-au"}},
	{"es", "Spanish", []string{"es", "es-am-lat", "es-chile", "es-us", "es-mx", "es-cl"}},
	{"fr", "French", []string{"fr"}},
	{"it", "Italian", []string{"it"}},
	{"pt", "Portuguese", []string{"pt", "pt-br", "pt-pt"}},
	{"zh", "Chinese", []string{"zh"}},
}

// Links to audio files short enough to be single recordings. Files longer
// than 59 seconds are usually spoken articles rather than the searched word.
var commonsFileLink = regexp.MustCompile(`href="/wiki/File:([^"]+\.ogg)".*sound file, \d{1,2}(\.\d)? s`)

const commonsTextLimit = 100

// WikiCommons searches Wikimedia Commons for recorded pronunciations.
type WikiCommons struct {
	deps      Deps
	cache     *lookup.Cache
	searchURL string
	uploadURL string
	log       zerolog.Logger
}

var _ Provider = (*WikiCommons)(nil)

func NewWikiCommons(deps Deps) *WikiCommons {
	log := deps.Log.With().Str("provider", "wikicommons").Logger()
	return &WikiCommons{
		deps:      deps,
		cache:     lookup.NewCache(log),
		searchURL: "https://commons.wikimedia.org/w/",
		uploadURL: "https://upload.wikimedia.org/wikipedia/commons",
		log:       log,
	}
}

func (p *WikiCommons) Name() string { return "wikicommons" }

func (p *WikiCommons) Desc() string {
	return "File search on Wikimedia Commons; experimental with limited word availability"
}

func (p *WikiCommons) Options() []OptionSpec {
	aliases := make(map[string]string, len(commonsLanguages)*2)
	codes := make(map[string]bool, len(commonsLanguages))
	values := make([]OptionValue, 0, len(commonsLanguages))
	for _, lang := range commonsLanguages {
		aliases[normalize(lang.code)] = lang.code
		aliases[normalize(lang.name)] = lang.code
		codes[lang.code] = true
		values = append(values, OptionValue{Code: lang.code, Label: fmt.Sprintf("%s (%s)", lang.name, lang.code)})
	}

	return []OptionSpec{{
		Key:    "voice",
		Label:  "Voice",
		Values: values,
		Transform: aliasTransform(aliases, func(raw string) (string, bool) {
			if two := normalize(raw); len(two) >= 2 && codes[two[:2]] {
				return two[:2], true
			}
			if base, _, ok := bcp47(raw); ok && codes[base] {
				return base, true
			}
			return "", false
		}),
	}}
}

func (p *WikiCommons) Run(ctx context.Context, text string, opts map[string]string, dst string) error {
	if n := utf8.RuneCountInString(text); n > commonsTextLimit {
		return &TextTooLongError{Limit: commonsTextLimit, Length: n}
	}
	resolved, err := Resolve(p.Options(), opts)
	if err != nil {
		return err
	}
	voice := resolved["voice"]

	// Quotes are reserved by the search syntax.
	text = strings.ReplaceAll(text, `"`, "")

	var queries []string
	for _, lang := range commonsLanguages {
		if lang.code != voice {
			continue
		}
		// Tight searches pinned to known filename prefixes.
		for _, prefix := range lang.prefixes {
			queries = append(queries, fmt.Sprintf(`intitle:.ogg prefix:"file:%s-%s"`, prefix, text))
		}
	}
	// Loose fallbacks: anywhere-in-title, then anywhere at all. A foreign
	// voice code skips the tight tier and lands here as a literal prefix.
	queries = append(queries,
		fmt.Sprintf(`intitle:"%s" intitle:.ogg prefix:file:%s`, text, voice),
		fmt.Sprintf(`%s intitle:.ogg prefix:file:%s`, text, voice),
	)

	res, err := p.cache.First(queries, func(query string) (lookup.Result, error) {
		return p.search(ctx, query)
	})
	if err != nil {
		return err
	}
	if !res.Found {
		if strings.Contains(text, " ") {
			return &NotFoundError{
				Msg:    "cannot find anything on Wikimedia Commons for this phrase; another backend may work better for phrases",
				Phrase: true,
			}
		}
		return &NotFoundError{Msg: "cannot find this word on Wikimedia Commons"}
	}

	// Upload storage shards by the digest of the decoded filename, while
	// the path component keeps the encoded form.
	filename := res.Ref
	decoded := filename
	if d, err := url.PathUnescape(filename); err == nil {
		decoded = d
	}
	digest := fmt.Sprintf("%x", md5.Sum([]byte(decoded)))
	fileURL := fmt.Sprintf("%s/%s/%s/%s", p.uploadURL, digest[0:1], digest[0:2], filename)

	scratch := media.TempPath(p.deps.ScratchDir, "ogg")
	if err := p.deps.Fetcher.Download(ctx, scratch, fileURL, fetch.Requirements{}); err != nil {
		return err
	}
	// Convert consumes the scratch file on every exit path.
	return p.deps.Converter.Convert(ctx, scratch, dst, transcode.Requirements{MinSrcSize: 1024})
}

// search runs one Commons query and extracts the first matching filename.
func (p *WikiCommons) search(ctx context.Context, query string) (lookup.Result, error) {
	u := p.searchURL + "?" + url.Values{"search": {query}}.Encode()
	page, err := p.deps.Fetcher.Fetch(ctx, u, fetch.Requirements{Mime: "text/html", MinSize: 1024})
	if err != nil {
		return lookup.Result{}, err
	}
	if m := commonsFileLink.FindSubmatch(page.Body); m != nil {
		return lookup.Result{Ref: string(m[1]), Found: true}, nil
	}
	return lookup.Result{}, nil
}
