package pronounce

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/transcode"
)

// fakeTool writes an executable sox stand-in so provider pipelines can run
// end to end without the real binary.
func fakeTool(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell stand-in not runnable on windows")
	}
	path := filepath.Join(t.TempDir(), "fakesox")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+script+"\n"), 0o755); err != nil {
		t.Fatal(err)
	}
	return path
}

// newTestDeps wires real collaborators around a copying converter stand-in.
func newTestDeps(t *testing.T) Deps {
	t.Helper()
	return Deps{
		Fetcher:    fetch.NewFetcher("clipcast-test", 5*time.Second, 0, zerolog.Nop()),
		Converter:  transcode.NewConverter(fakeTool(t, `cp "$1" "$2"`), zerolog.Nop()),
		ScratchDir: t.TempDir(),
		Log:        zerolog.Nop(),
	}
}
