package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/snarg/clipcast/internal/pronounce"
)

type ProviderOptionValue struct {
	Code  string `json:"code"`
	Label string `json:"label"`
}

type ProviderOption struct {
	Key     string                `json:"key"`
	Label   string                `json:"label"`
	Default string                `json:"default,omitempty"`
	Values  []ProviderOptionValue `json:"values"`
}

type ProviderInfo struct {
	Name    string           `json:"name"`
	Desc    string           `json:"desc"`
	Options []ProviderOption `json:"options"`
}

type ProvidersHandler struct {
	catalog *pronounce.Catalog
}

func NewProvidersHandler(catalog *pronounce.Catalog) *ProvidersHandler {
	return &ProvidersHandler{catalog: catalog}
}

// List returns every registered backend with its option declarations.
func (h *ProvidersHandler) List(w http.ResponseWriter, r *http.Request) {
	names := h.catalog.Names()
	infos := make([]ProviderInfo, 0, len(names))
	for _, name := range names {
		p, err := h.catalog.New(name)
		if err != nil {
			continue
		}
		info := ProviderInfo{Name: p.Name(), Desc: p.Desc()}
		for _, spec := range p.Options() {
			opt := ProviderOption{Key: spec.Key, Label: spec.Label, Default: spec.Default}
			for _, v := range spec.Values {
				opt.Values = append(opt.Values, ProviderOptionValue{Code: v.Code, Label: v.Label})
			}
			info.Options = append(info.Options, opt)
		}
		infos = append(infos, info)
	}

	WriteJSON(w, http.StatusOK, map[string]any{
		"providers": infos,
		"count":     len(infos),
	})
}

// Routes registers provider routes on the given router.
func (h *ProvidersHandler) Routes(r chi.Router) {
	r.Get("/providers", h.List)
}
