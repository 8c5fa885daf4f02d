package rates

import (
	"errors"
	"fmt"
	"maps"
	"os"
	"slices"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

const (
	TypeMeat  = "meat"
	TypeFish  = "fish"
	TypeMixed = "mixed"
)

var ErrInvalidRate = errors.New("rate must be between 0 and 1")

// ButcherConfig is the static configuration of one stall.
type ButcherConfig struct {
	ID              string             `toml:"id"`
	Name            string             `toml:"name"`
	Type            string             `toml:"type"`
	Categories      []string           `toml:"categories"`
	CommissionRates map[string]float64 `toml:"commission_rates"`
	MarkupRates     map[string]float64 `toml:"markup_rates"`
	CategorySheets  map[string]string  `toml:"category_sheets"`
}

// Registry is the read-only vendor/category lookup consumed by the
// reconciliation and aggregation code.
type Registry interface {
	Butcher(id string) (ButcherConfig, bool)
	Categories(id string) []string
}

// StaticRegistry is an immutable Registry built once at start-up.
type StaticRegistry struct {
	butchers map[string]ButcherConfig
	ids      []string
}

type registryFile struct {
	Butchers []ButcherConfig `toml:"butchers"`
}

// NewStaticRegistry copies configs so later mutation by the caller has no
// effect on the registry.
func NewStaticRegistry(configs []ButcherConfig) *StaticRegistry {
	r := &StaticRegistry{butchers: make(map[string]ButcherConfig, len(configs))}
	for _, cfg := range configs {
		id := strings.TrimSpace(cfg.ID)
		if id == "" {
			continue
		}
		cfg.ID = id
		if _, exists := r.butchers[id]; !exists {
			r.ids = append(r.ids, id)
		}
		r.butchers[id] = cloneConfig(cfg)
	}
	sort.Strings(r.ids)
	return r
}

// ParseRegistry decodes a TOML document with a [[butchers]] array.
func ParseRegistry(data []byte) (*StaticRegistry, error) {
	var file registryFile
	if err := toml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse butcher registry: %w", err)
	}
	for _, b := range file.Butchers {
		for category, rate := range b.CommissionRates {
			if rate < 0 || rate > 1 {
				return nil, fmt.Errorf("butcher %s commission %s=%v: %w", b.ID, category, rate, ErrInvalidRate)
			}
		}
		for category, rate := range b.MarkupRates {
			if rate < 0 || rate > 1 {
				return nil, fmt.Errorf("butcher %s markup %s=%v: %w", b.ID, category, rate, ErrInvalidRate)
			}
		}
	}
	return NewStaticRegistry(file.Butchers), nil
}

// LoadRegistry reads the registry file at path.
func LoadRegistry(path string) (*StaticRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read butcher registry: %w", err)
	}
	return ParseRegistry(data)
}

func (r *StaticRegistry) Butcher(id string) (ButcherConfig, bool) {
	if r == nil {
		return ButcherConfig{}, false
	}
	cfg, ok := r.butchers[strings.TrimSpace(id)]
	if !ok {
		return ButcherConfig{}, false
	}
	return cloneConfig(cfg), true
}

func (r *StaticRegistry) Categories(id string) []string {
	cfg, ok := r.Butcher(id)
	if !ok {
		return nil
	}
	return cfg.Categories
}

// IDs lists configured butcher ids in ascending order.
func (r *StaticRegistry) IDs() []string {
	if r == nil {
		return nil
	}
	return slices.Clone(r.ids)
}

// ButcherName returns the display name, falling back to the id.
func ButcherName(reg Registry, id string) string {
	if reg != nil {
		if cfg, ok := reg.Butcher(id); ok && strings.TrimSpace(cfg.Name) != "" {
			return cfg.Name
		}
	}
	return id
}

// IsMeatButcher reports whether id is configured as a meat-only stall.
func IsMeatButcher(reg Registry, id string) bool {
	if reg == nil {
		return false
	}
	cfg, ok := reg.Butcher(id)
	return ok && strings.EqualFold(strings.TrimSpace(cfg.Type), TypeMeat)
}

func cloneConfig(cfg ButcherConfig) ButcherConfig {
	cfg.Categories = slices.Clone(cfg.Categories)
	cfg.CommissionRates = maps.Clone(cfg.CommissionRates)
	cfg.MarkupRates = maps.Clone(cfg.MarkupRates)
	cfg.CategorySheets = maps.Clone(cfg.CategorySheets)
	return cfg
}
