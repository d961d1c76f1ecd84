package pronounce

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
)

func TestOxfordTransform(t *testing.T) {
	spec := NewOxford(Deps{Log: zerolog.Nop()}).Options()[0]
	if spec.Default != "en-GB" {
		t.Errorf("default = %q, want en-GB", spec.Default)
	}

	tests := []struct{ in, want string }{
		{"American English", "en-US"},
		{"American", "en-US"},
		{"US", "en-US"},
		{"us", "en-US"},
		{"en-US", "en-US"},
		{"British", "en-GB"},
		{"English", "en-GB"},
		{"UK", "en-GB"},
		{"en", "en-GB"},
		{"en-GB", "en-GB"},
		// Explicit English regions other than US fold onto the British
		// edition.
		{"en-AU", "en-GB"},
		{"fr", "fr"},
		{"Norwegian", "Norwegian"},
	}
	for _, tt := range tests {
		if got := spec.Transform(tt.in); got != tt.want {
			t.Errorf("Transform(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestOxford_Run(t *testing.T) {
	payload := strings.Repeat("m", 4096)
	var pagePath, audioPath string

	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/definition/", func(w http.ResponseWriter, r *http.Request) {
		pagePath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><a class="speaker" data-src-mp3="%s/audio/uk.mp3"></a><a data-src-mp3="%s/audio/other.mp3"></a></body></html>`,
			srv.URL, srv.URL)
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		audioPath = r.URL.Path
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, payload)
	})

	p := NewOxford(newTestDeps(t))
	p.baseURL = srv.URL
	p.probe = func(io.Reader) (time.Duration, error) { return time.Second, nil }

	dst := filepath.Join(t.TempDir(), "clip.mp3")
	if err := p.Run(context.Background(), "United Kingdom", map[string]string{"voice": "UK"}, dst); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Multi-word entries keep their case and join with dashes.
	if want := "/definition/english/United-Kingdom"; pagePath != want {
		t.Errorf("page path = %q, want %q", pagePath, want)
	}
	if want := "/audio/uk.mp3"; audioPath != want {
		t.Errorf("audio path = %q, want the first recording %q", audioPath, want)
	}
	got, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("read destination: %v", err)
	}
	if string(got) != payload {
		t.Error("destination content differs from the fetched audio")
	}
}

func TestOxford_Run_AmericanEdition(t *testing.T) {
	var pagePath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		pagePath = r.URL.Path
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>no recordings here</body></html>")
	}))
	defer srv.Close()

	p := NewOxford(newTestDeps(t))
	p.baseURL = srv.URL

	err := p.Run(context.Background(), "color", map[string]string{"voice": "American English"}, filepath.Join(t.TempDir(), "c.mp3"))
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Run() error = %v, want *NotFoundError", err)
	}
	if want := "/definition/american_english/color"; pagePath != want {
		t.Errorf("page path = %q, want %q", pagePath, want)
	}
	if !strings.Contains(nf.Msg, srv.URL) {
		t.Errorf("message %q does not name the page URL", nf.Msg)
	}
	if nf.Phrase {
		t.Error("single word flagged as a phrase")
	}
}

func TestOxford_Run_PhraseNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		io.WriteString(w, "<html><body>nothing</body></html>")
	}))
	defer srv.Close()

	p := NewOxford(newTestDeps(t))
	p.baseURL = srv.URL

	err := p.Run(context.Background(), "ice cream", nil, filepath.Join(t.TempDir(), "c.mp3"))
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("Run() error = %v, want *NotFoundError", err)
	}
	if !nf.Phrase {
		t.Error("multi-word input not flagged as a phrase")
	}
}

func TestOxford_Run_TooLong(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("request escaped to the network")
	}))
	defer srv.Close()

	p := NewOxford(newTestDeps(t))
	p.baseURL = srv.URL

	err := p.Run(context.Background(), strings.Repeat("a", oxfordTextLimit+1), nil, "clip.mp3")
	var tl *TextTooLongError
	if !errors.As(err, &tl) {
		t.Fatalf("Run() error = %v, want *TextTooLongError", err)
	}
	if tl.Limit != oxfordTextLimit {
		t.Errorf("limit = %d, want %d", tl.Limit, oxfordTextLimit)
	}
}

func TestOxford_Run_RejectsUndecodableAudio(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()
	mux.HandleFunc("/definition/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, `<html><body><a data-src-mp3="%s/audio/fake.mp3"></a></body></html>`, srv.URL)
	})
	mux.HandleFunc("/audio/", func(w http.ResponseWriter, r *http.Request) {
		// Right mime and size, but nothing a decoder can sync on.
		w.Header().Set("Content-Type", "audio/mpeg")
		io.WriteString(w, strings.Repeat("<html>not audio</html>", 64))
	})

	p := NewOxford(newTestDeps(t))
	p.baseURL = srv.URL

	dst := filepath.Join(t.TempDir(), "clip.mp3")
	if err := p.Run(context.Background(), "word", nil, dst); err == nil {
		t.Fatal("Run() accepted an undecodable payload")
	}
	if _, err := os.Stat(dst); !os.IsNotExist(err) {
		t.Error("destination exists after a failed run")
	}
}

func TestExtractMP3Sources(t *testing.T) {
	doc := []byte(`<html><body>
		<a class="speaker" data-src-mp3="https://a.example/one.mp3" title="first"></a>
		<div><audio data-src-mp3="https://a.example/two.mp3"/></div>
		<a data-src-ogg="https://a.example/skip.ogg"></a>
	</body></html>`)

	got := extractMP3Sources(doc)
	want := []string{"https://a.example/one.mp3", "https://a.example/two.mp3"}
	if len(got) != len(want) {
		t.Fatalf("extractMP3Sources() = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("source[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}
