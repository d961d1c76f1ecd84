package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/snarg/clipcast/internal/config"
	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/pronounce"
	"github.com/snarg/clipcast/internal/transcode"
)

var version = "dev"

func usage() {
	fmt.Fprintln(os.Stderr, "Usage: clipcast -provider <name> [flags] <text>")
	fmt.Fprintln(os.Stderr, "       clipcast -list")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Fetches a pronunciation clip for <text> and writes it to -out, or to a")
	fmt.Fprintln(os.Stderr, "content-addressed file in the clip directory when -out is omitted.")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "Flags:")
	flag.PrintDefaults()
}

// parseOpts splits a comma-separated key=value list.
func parseOpts(s string) (map[string]string, error) {
	opts := map[string]string{}
	if s == "" {
		return opts, nil
	}
	for _, pair := range strings.Split(s, ",") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("malformed option %q, want key=value", pair)
		}
		opts[strings.TrimSpace(k)] = strings.TrimSpace(v)
	}
	return opts, nil
}

func listProviders(catalog *pronounce.Catalog) {
	for _, name := range catalog.Names() {
		p, err := catalog.New(name)
		if err != nil {
			continue
		}
		fmt.Printf("%-12s %s\n", p.Name(), p.Desc())
		for _, spec := range p.Options() {
			def := "required"
			if spec.Default != "" {
				def = "default " + spec.Default
			}
			fmt.Printf("  -opt %s=<%s> (%s)\n", spec.Key, spec.Label, def)
			for _, v := range spec.Values {
				fmt.Printf("    %-10s %s\n", v.Code, v.Label)
			}
		}
	}
}

func main() {
	provider := flag.String("provider", "", "pronunciation backend to use")
	optList := flag.String("opt", "", "provider options as key=value, comma-separated")
	out := flag.String("out", "", "output file, extension selects the format")
	list := flag.Bool("list", false, "list providers and their options")
	showVersion := flag.Bool("version", false, "print version and exit")
	envFile := flag.String("env-file", "", "path to .env file")
	logLevel := flag.String("log-level", "", "log level (overrides LOG_LEVEL)")
	flag.Usage = usage
	flag.Parse()

	if *showVersion {
		fmt.Println(version)
		return
	}

	cfg, err := config.Load(config.Overrides{EnvFile: *envFile, LogLevel: *logLevel})
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to load config:", err)
		os.Exit(1)
	}

	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	log := zerolog.New(os.Stderr).With().Timestamp().Logger().Level(level)

	fetcher := fetch.NewFetcher(cfg.UserAgent, cfg.FetchTimeout, cfg.FetchRate, log)
	converter := transcode.NewConverter(cfg.SoxBin, log)

	var yandex *pronounce.YandexSynth
	if cfg.YandexAPIKey != "" && cfg.YandexFolderID != "" {
		yandex, err = pronounce.DialYandex(pronounce.YandexConfig{
			APIKey:   cfg.YandexAPIKey,
			FolderID: cfg.YandexFolderID,
		})
		if err != nil {
			log.Fatal().Err(err).Msg("failed to dial speechkit")
		}
		defer yandex.Close()
	}

	catalog := pronounce.NewCatalog(pronounce.Deps{
		Fetcher:    fetcher,
		Converter:  converter,
		Yandex:     yandex,
		ScratchDir: cfg.ScratchDir,
		Log:        log,
	})

	if *list {
		listProviders(catalog)
		return
	}

	text := strings.TrimSpace(strings.Join(flag.Args(), " "))
	if *provider == "" || text == "" {
		flag.Usage()
		os.Exit(2)
	}

	opts, err := parseOpts(*optList)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Explicit -out wins; otherwise store under the clip directory with the
	// same content-addressed name the daemon uses.
	dst := *out
	if dst == "" {
		p, err := catalog.New(*provider)
		if err != nil {
			log.Fatal().Err(err).Msg("unknown provider")
		}
		resolved, err := pronounce.Resolve(p.Options(), opts)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid options")
		}
		if err := os.MkdirAll(cfg.ClipDir, 0o755); err != nil {
			log.Fatal().Err(err).Msg("failed to create clip directory")
		}
		dst = filepath.Join(cfg.ClipDir, pronounce.ClipName(*provider, text, resolved, "mp3"))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := catalog.Run(ctx, *provider, text, opts, dst); err != nil {
		log.Fatal().Err(err).Msg("clip generation failed")
	}
	fmt.Println(dst)
}
