package transcode

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/rs/zerolog"
)

// fakeConverter writes an executable stand-in for sox so the cleanup and
// promotion contracts can be exercised without the real binary.
func fakeConverter(t *testing.T, script string) string {
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

func writeSource(t *testing.T, size int) string {
	t.Helper()
	src := filepath.Join(t.TempDir(), "scratch.ogg")
	if err := os.WriteFile(src, []byte(strings.Repeat("a", size)), 0o644); err != nil {
		t.Fatal(err)
	}
	return src
}

func TestConvert_Success(t *testing.T) {
	bin := fakeConverter(t, `cp "$1" "$2"`)
	src := writeSource(t, 2048)
	dstDir := t.TempDir()
	dst := filepath.Join(dstDir, "clip.mp3")

	c := NewConverter(bin, zerolog.Nop())
	if err := c.Convert(context.Background(), src, dst, Requirements{MinSrcSize: 1024}); err != nil {
		t.Fatalf("Convert() error = %v", err)
	}

	if _, err := os.Stat(dst); err != nil {
		t.Errorf("destination missing after convert: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Errorf("source still present after convert")
	}

	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 1 {
		t.Errorf("destination dir has %d entries, want just the clip", len(entries))
	}
}

func TestConvert_ToolFailure(t *testing.T) {
	bin := fakeConverter(t, `echo "sox FAIL: bad header" >&2; exit 2`)
	src := writeSource(t, 2048)
	dstDir := t.TempDir()
	dst := filepath.Join(dstDir, "clip.mp3")

	c := NewConverter(bin, zerolog.Nop())
	err := c.Convert(context.Background(), src, dst, Requirements{})
	if err == nil {
		t.Fatal("Convert() error = nil, want tool failure")
	}
	if !strings.Contains(err.Error(), "bad header") {
		t.Errorf("error = %v, want tool output included", err)
	}

	if _, serr := os.Stat(src); !os.IsNotExist(serr) {
		t.Errorf("source still present after failed convert")
	}
	if _, serr := os.Stat(dst); !os.IsNotExist(serr) {
		t.Errorf("destination exists after failed convert")
	}
	entries, _ := os.ReadDir(dstDir)
	if len(entries) != 0 {
		t.Errorf("destination dir not empty after failure: %v", entries)
	}
}

func TestConvert_UndersizedSource(t *testing.T) {
	bin := fakeConverter(t, `cp "$1" "$2"`)
	src := writeSource(t, 10)
	dst := filepath.Join(t.TempDir(), "clip.mp3")

	c := NewConverter(bin, zerolog.Nop())
	err := c.Convert(context.Background(), src, dst, Requirements{MinSrcSize: 1024})
	if err == nil {
		t.Fatal("Convert() error = nil, want undersized rejection")
	}
	if !strings.Contains(err.Error(), "at least 1024") {
		t.Errorf("error = %v, want minimum size mentioned", err)
	}

	// Source is consumed even when rejected before the tool runs
	if _, serr := os.Stat(src); !os.IsNotExist(serr) {
		t.Errorf("source still present after rejection")
	}
	if _, serr := os.Stat(dst); !os.IsNotExist(serr) {
		t.Errorf("destination exists after rejection")
	}
}

func TestConvert_MissingSource(t *testing.T) {
	bin := fakeConverter(t, `cp "$1" "$2"`)
	c := NewConverter(bin, zerolog.Nop())

	err := c.Convert(context.Background(), "/nonexistent/scratch.ogg", filepath.Join(t.TempDir(), "clip.mp3"), Requirements{})
	if err == nil {
		t.Fatal("Convert() error = nil, want stat failure")
	}
}

func TestConvert_MissingBinary(t *testing.T) {
	src := writeSource(t, 2048)
	c := NewConverter("definitely-not-a-real-converter-binary", zerolog.Nop())

	err := c.Convert(context.Background(), src, filepath.Join(t.TempDir(), "clip.mp3"), Requirements{})
	if err == nil {
		t.Fatal("Convert() error = nil, want missing binary failure")
	}
	if !strings.Contains(err.Error(), "not found") {
		t.Errorf("error = %v, want PATH failure mentioned", err)
	}
	if _, serr := os.Stat(src); !os.IsNotExist(serr) {
		t.Errorf("source still present after failure")
	}
}

func TestAvailable_Cached(t *testing.T) {
	c := NewConverter("definitely-not-a-real-converter-binary", zerolog.Nop())
	if c.Available() {
		t.Error("Available() = true for a bogus binary")
	}
	// Second call answers from the cached result
	if c.Available() {
		t.Error("Available() flipped on second call")
	}
}
