package web

import (
	"bytes"
	"embed"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/sonicalchemist/api/internal/catalog"
	"github.com/sonicalchemist/api/internal/composer"
	"github.com/sonicalchemist/api/internal/model"
	"github.com/sonicalchemist/api/internal/notify"
)

//go:embed templates/*.html
var templateFiles embed.FS

const composerTemplate = "composer.html"

// ComposerPage is everything the composer template needs for one render.
type ComposerPage struct {
	SessionID   string
	Catalog     *catalog.Catalog
	State       composer.FormState
	FieldErrors map[string]string
	Toasts      []notify.Notification
	Notice      string
}

// Renderer renders server-side pages from the embedded pongo2 templates.
type Renderer struct {
	mu        sync.RWMutex
	set       *pongo2.TemplateSet
	templates map[string]*pongo2.Template
}

func NewRenderer() (*Renderer, error) {
	sub, err := fs.Sub(templateFiles, "templates")
	if err != nil {
		return nil, fmt.Errorf("web: templates: %w", err)
	}

	return &Renderer{
		set:       pongo2.NewSet("sonicalchemist", pongo2.NewFSLoader(sub)),
		templates: make(map[string]*pongo2.Template),
	}, nil
}

// Composer writes the composer page for page to w.
func (r *Renderer) Composer(w io.Writer, page ComposerPage) error {
	tmpl, err := r.template(composerTemplate)
	if err != nil {
		return err
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(composerContext(page), &buf); err != nil {
		return fmt.Errorf("web: execute %q: %w", composerTemplate, err)
	}
	_, err = buf.WriteTo(w)
	return err
}

func (r *Renderer) template(name string) (*pongo2.Template, error) {
	r.mu.RLock()
	tmpl, ok := r.templates[name]
	r.mu.RUnlock()
	if ok {
		return tmpl, nil
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if tmpl, ok := r.templates[name]; ok {
		return tmpl, nil
	}
	tmpl, err := r.set.FromFile(name)
	if err != nil {
		return nil, fmt.Errorf("web: load %q: %w", name, err)
	}
	r.templates[name] = tmpl
	return tmpl, nil
}

func composerContext(page ComposerPage) pongo2.Context {
	state := page.State
	form := state.Form

	var errorMessage, description, audio string
	if state.Error != nil {
		errorMessage = *state.Error
	}
	if state.Result != nil {
		description = RenderDescription(state.Result.Description)
		audio = state.Result.AudioDataURI
	}

	var genres, moods []catalog.Option
	if page.Catalog != nil {
		genres = page.Catalog.Genres
		moods = page.Catalog.Moods
	}

	fieldErrors := page.FieldErrors
	if fieldErrors == nil {
		fieldErrors = map[string]string{}
	}

	return pongo2.Context{
		"session_id":       page.SessionID,
		"genres":           genres,
		"moods":            moods,
		"lengths":          []int{model.MinLengthMinutes, 2, model.MaxLengthMinutes},
		"form":             form,
		"status":           string(state.Status),
		"is_loading":       state.IsLoading,
		"error":            errorMessage,
		"has_result":       state.Result != nil,
		"description_html": description,
		"audio_src":        audio,
		"has_audio":        audio != "",
		"loop":             state.LoopEnabled,
		"field_errors":     fieldErrors,
		"toasts":           page.Toasts,
		"notice":           page.Notice,
		"export_formats":   model.ValidExportFormats,
	}
}
