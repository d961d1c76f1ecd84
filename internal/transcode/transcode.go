package transcode

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/metrics"
)

// Requirements guard a conversion before the external tool is spawned.
type Requirements struct {
	MinSrcSize int // minimum source file size in bytes (0 = any)
}

// Converter rewrites audio containers by driving an external sox binary.
type Converter struct {
	bin   string
	avail *bool
	log   zerolog.Logger
}

// NewConverter creates a converter around the named binary (normally "sox").
func NewConverter(bin string, log zerolog.Logger) *Converter {
	return &Converter{bin: bin, log: log}
}

// Available reports whether the converter binary can be found. Checked once;
// the result is cached for the converter lifetime.
func (c *Converter) Available() bool {
	if c.avail != nil {
		return *c.avail
	}
	_, err := exec.LookPath(c.bin)
	avail := err == nil
	c.avail = &avail
	return avail
}

// Convert rewrites src into dst, with the output format chosen by dst's
// extension. src is an intermediate artifact owned by this call: it is
// removed on every exit path, success or failure. dst is written via a
// sibling temp file and rename, so a failed conversion leaves nothing
// behind at dst.
func (c *Converter) Convert(ctx context.Context, src, dst string, req Requirements) error {
	defer func() {
		if err := media.Discard(src); err != nil {
			c.log.Warn().Err(err).Str("path", src).Msg("discard intermediate")
		}
	}()

	info, err := os.Stat(src)
	if err != nil {
		return fmt.Errorf("stat source: %w", err)
	}
	if req.MinSrcSize > 0 && info.Size() < int64(req.MinSrcSize) {
		return fmt.Errorf("source %s: %d bytes, want at least %d", src, info.Size(), req.MinSrcSize)
	}

	if !c.Available() {
		return fmt.Errorf("converter %q not found in PATH", c.bin)
	}

	tmpDst := media.TempPath(filepath.Dir(dst), filepath.Ext(dst))
	start := time.Now()
	out, err := exec.CommandContext(ctx, c.bin, src, tmpDst).CombinedOutput()
	if err != nil {
		// Clean up partial output
		os.Remove(tmpDst)
		if msg := strings.TrimSpace(string(out)); msg != "" {
			return fmt.Errorf("%s: %s: %w", c.bin, msg, err)
		}
		return fmt.Errorf("%s: %w", c.bin, err)
	}

	if err := os.Rename(tmpDst, dst); err != nil {
		os.Remove(tmpDst)
		return fmt.Errorf("rename: %w", err)
	}

	metrics.TranscodeDuration.Observe(time.Since(start).Seconds())
	c.log.Debug().Str("src", filepath.Base(src)).Str("dst", filepath.Base(dst)).
		Dur("elapsed", time.Since(start)).Msg("transcoded")
	return nil
}
