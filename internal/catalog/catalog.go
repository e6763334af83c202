package catalog

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/sonicalchemist/api/internal/model"
)

//go:embed catalog.yaml
var embedded []byte

// Option is a selectable value on the composer page.
type Option struct {
	Value string `yaml:"value" json:"value"`
	Label string `yaml:"label" json:"label"`
	Icon  string `yaml:"icon,omitempty" json:"icon,omitempty"`
}

// Catalog lists the genres and moods offered to users.
type Catalog struct {
	Genres []Option `yaml:"genres" json:"genres"`
	Moods  []Option `yaml:"moods" json:"moods"`
}

var (
	defaultOnce    sync.Once
	defaultCatalog *Catalog
	defaultErr     error
)

// Default returns the embedded catalog, parsed once.
func Default() (*Catalog, error) {
	defaultOnce.Do(func() {
		defaultCatalog, defaultErr = Parse(embedded)
	})
	return defaultCatalog, defaultErr
}

// Parse decodes a YAML catalog and checks it against the model enums.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("catalog: decode: %w", err)
	}

	if err := checkOptions("genre", c.Genres, len(model.ValidGenres), model.IsValidGenre); err != nil {
		return nil, err
	}
	if err := checkOptions("mood", c.Moods, len(model.ValidMoods), model.IsValidMood); err != nil {
		return nil, err
	}
	return &c, nil
}

func checkOptions(kind string, opts []Option, want int, valid func(string) bool) error {
	seen := make(map[string]struct{}, len(opts))
	for i := range opts {
		opt := &opts[i]
		opt.Value = strings.TrimSpace(opt.Value)
		if opt.Value == "" {
			return fmt.Errorf("catalog: %s #%d has an empty value", kind, i)
		}
		if !valid(opt.Value) {
			return fmt.Errorf("catalog: unknown %s %q", kind, opt.Value)
		}
		if _, dup := seen[opt.Value]; dup {
			return fmt.Errorf("catalog: duplicate %s %q", kind, opt.Value)
		}
		seen[opt.Value] = struct{}{}
		if opt.Label == "" {
			opt.Label = opt.Value
		}
	}
	if len(opts) != want {
		return fmt.Errorf("catalog: expected %d %ss, got %d", want, kind, len(opts))
	}
	return nil
}
