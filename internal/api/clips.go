package api

import (
	"errors"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/hlog"

	"github.com/snarg/clipcast/internal/fetch"
	"github.com/snarg/clipcast/internal/media"
	"github.com/snarg/clipcast/internal/pronounce"
)

// clipFormats are the container targets the converter can produce.
var clipFormats = map[string]bool{"mp3": true, "ogg": true, "wav": true}

type ClipRequest struct {
	Provider string            `json:"provider"`
	Text     string            `json:"text"`
	Options  map[string]string `json:"options,omitempty"`
	Format   string            `json:"format,omitempty"`
}

type ClipResponse struct {
	Name      string `json:"name"`
	SizeBytes int64  `json:"size_bytes"`
	Fresh     bool   `json:"fresh"`
	URL       string `json:"url"`
}

type ClipsHandler struct {
	catalog *pronounce.Catalog
	dir     string
}

func NewClipsHandler(catalog *pronounce.Catalog, dir string) *ClipsHandler {
	return &ClipsHandler{catalog: catalog, dir: dir}
}

// Create resolves or generates the requested clip. The filename is a content
// address over (provider, text, resolved options, format), so aliases of one
// request share a file and an existing file short-circuits the provider.
func (h *ClipsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ClipRequest
	if err := DecodeJSON(r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if req.Provider == "" {
		WriteError(w, http.StatusBadRequest, "provider is required")
		return
	}
	if strings.TrimSpace(req.Text) == "" {
		WriteError(w, http.StatusBadRequest, "text is required")
		return
	}
	if req.Format == "" {
		req.Format = "mp3"
	}
	if !clipFormats[req.Format] {
		WriteError(w, http.StatusBadRequest, "unsupported format: "+req.Format)
		return
	}

	p, err := h.catalog.New(req.Provider)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}
	resolved, err := pronounce.Resolve(p.Options(), req.Options)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	name := pronounce.ClipName(req.Provider, req.Text, resolved, req.Format)
	path := filepath.Join(h.dir, name)

	if info, err := os.Stat(path); err == nil {
		WriteJSON(w, http.StatusOK, ClipResponse{
			Name:      name,
			SizeBytes: info.Size(),
			Fresh:     false,
			URL:       "/api/v1/clips/" + name,
		})
		return
	}

	if err := h.catalog.Run(r.Context(), req.Provider, req.Text, req.Options, path); err != nil {
		writeClipError(w, r, err)
		return
	}
	info, err := os.Stat(path)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "clip write failed")
		return
	}
	WriteJSON(w, http.StatusCreated, ClipResponse{
		Name:      name,
		SizeBytes: info.Size(),
		Fresh:     true,
		URL:       "/api/v1/clips/" + name,
	})
}

// writeClipError maps pipeline failures onto transport statuses.
func writeClipError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		optErr  *pronounce.OptionError
		lenErr  *pronounce.TextTooLongError
		nfErr   *pronounce.NotFoundError
		unavail *pronounce.UnavailableError
		valErr  *fetch.ValidationError
	)
	switch {
	case errors.As(err, &optErr), errors.As(err, &lenErr):
		WriteError(w, http.StatusBadRequest, err.Error())
	case errors.As(err, &nfErr):
		WriteError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &unavail):
		WriteError(w, http.StatusServiceUnavailable, err.Error())
	case errors.As(err, &valErr):
		WriteErrorDetail(w, http.StatusBadGateway, "upstream returned an unusable payload", err.Error())
	default:
		hlog.FromRequest(r).Error().Err(err).Msg("clip generation failed")
		WriteError(w, http.StatusInternalServerError, "clip generation failed")
	}
}

// Get serves a stored clip by name.
func (h *ClipsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path := media.ResolveClip(h.dir, name)
	if path == "" {
		WriteError(w, http.StatusNotFound, "clip not found")
		return
	}

	f, err := os.Open(path)
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "clip unreadable")
		return
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		WriteError(w, http.StatusInternalServerError, "clip unreadable")
		return
	}
	head := make([]byte, 512)
	n, _ := io.ReadFull(f, head)
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		WriteError(w, http.StatusInternalServerError, "clip unreadable")
		return
	}

	w.Header().Set("Content-Type", media.Detect(head[:n]))
	http.ServeContent(w, r, name, info.ModTime(), f)
}

// Routes registers clip routes on the given router.
func (h *ClipsHandler) Routes(r chi.Router) {
	r.Post("/clips", h.Create)
	r.Get("/clips/{name}", h.Get)
}
