// Package catalog loads consolidation input (families, other tokens and the
// legacy list) from TOML, YAML or JSON files. File order is preserved.
package catalog

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/color-game/consolidation/models"
)

type Format string

const (
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
	FormatJSON Format = "json"
)

// FormatFromPath picks a format by file extension.
func FormatFromPath(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML, nil
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".json":
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unsupported palette file extension %q", filepath.Ext(path))
}

// Source is a decoded palette together with where it came from.
type Source struct {
	Path    string
	Format  Format
	Digest  string
	Palette models.Palette
}

// Load reads and decodes a palette file.
func Load(path string) (Source, error) {
	format, err := FormatFromPath(path)
	if err != nil {
		return Source{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Source{}, fmt.Errorf("read palette %s: %w", path, err)
	}
	palette, err := Decode(bytes.NewReader(data), format)
	if err != nil {
		return Source{}, fmt.Errorf("decode palette %s: %w", path, err)
	}
	return Source{
		Path:    path,
		Format:  format,
		Digest:  Digest(data),
		Palette: palette,
	}, nil
}

// Digest is the hex sha256 of raw palette bytes.
func Digest(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}

// Decode reads a palette in the given format. Unknown keys are rejected.
func Decode(r io.Reader, format Format) (models.Palette, error) {
	var f file
	switch format {
	case FormatTOML:
		dec := toml.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return models.Palette{}, err
		}
	case FormatYAML:
		dec := yaml.NewDecoder(r)
		dec.KnownFields(true)
		if err := dec.Decode(&f); err != nil && err != io.EOF {
			return models.Palette{}, err
		}
	case FormatJSON:
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		if err := dec.Decode(&f); err != nil {
			return models.Palette{}, err
		}
	default:
		return models.Palette{}, fmt.Errorf("unsupported palette format %q", format)
	}
	return f.palette()
}

type file struct {
	Families []fileFamily `toml:"family" yaml:"family" json:"family"`
	Others   []fileOther  `toml:"other" yaml:"other" json:"other"`
	Legacy   []fileLegacy `toml:"legacy" yaml:"legacy" json:"legacy"`
}

type fileFamily struct {
	ID                string             `toml:"id" yaml:"id" json:"id"`
	Description       string             `toml:"description" yaml:"description" json:"description"`
	Base100           string             `toml:"base_100" yaml:"base_100" json:"base_100"`
	CrossName         string             `toml:"cross_name" yaml:"cross_name" json:"cross_name"`
	ExistingSolid     map[string]string  `toml:"existing_solid" yaml:"existing_solid" json:"existing_solid"`
	AlphaBase         string             `toml:"alpha_base" yaml:"alpha_base" json:"alpha_base"`
	AlphaLabel        string             `toml:"alpha_label" yaml:"alpha_label" json:"alpha_label"`
	AlphaExisting     map[string]float64 `toml:"alpha_existing" yaml:"alpha_existing" json:"alpha_existing"`
	Refs              []string           `toml:"refs" yaml:"refs" json:"refs"`
	ExtraTokens       []fileExtraToken   `toml:"extra_token" yaml:"extra_token" json:"extra_token"`
	ExtraTokensReason string             `toml:"extra_tokens_reason" yaml:"extra_tokens_reason" json:"extra_tokens_reason"`
	IsNew             bool               `toml:"is_new" yaml:"is_new" json:"is_new"`
	SkipSolidScale    bool               `toml:"skip_solid_scale" yaml:"skip_solid_scale" json:"skip_solid_scale"`
}

type fileExtraToken struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Hex  string `toml:"hex" yaml:"hex" json:"hex"`
}

type fileOther struct {
	ID  string `toml:"id" yaml:"id" json:"id"`
	Hex string `toml:"hex" yaml:"hex" json:"hex"`
}

type fileLegacy struct {
	Name string `toml:"name" yaml:"name" json:"name"`
	Hex  string `toml:"hex" yaml:"hex" json:"hex"`
	Note string `toml:"note" yaml:"note" json:"note"`
}

func (f file) palette() (models.Palette, error) {
	p := models.Palette{
		Families: make([]models.Family, 0, len(f.Families)),
		Others:   make([]models.OtherToken, 0, len(f.Others)),
		Legacy:   make([]models.LegacyColor, 0, len(f.Legacy)),
	}

	for i, ff := range f.Families {
		if ff.ID == "" {
			return models.Palette{}, fmt.Errorf("family #%d has no id", i+1)
		}
		fam := models.Family{
			ID:                ff.ID,
			Description:       ff.Description,
			Base100:           ff.Base100,
			CrossName:         ff.CrossName,
			AlphaBase:         ff.AlphaBase,
			AlphaLabel:        ff.AlphaLabel,
			Refs:              ff.Refs,
			ExtraTokensReason: ff.ExtraTokensReason,
			IsNew:             ff.IsNew,
			SkipSolidScale:    ff.SkipSolidScale,
		}

		if len(ff.ExistingSolid) > 0 {
			fam.ExistingSolid = make(map[models.Step]string, len(ff.ExistingSolid))
			for key, hex := range ff.ExistingSolid {
				step, err := parseStep(key)
				if err != nil {
					return models.Palette{}, fmt.Errorf("family %s existing_solid: %w", ff.ID, err)
				}
				if !step.IsCanonical() {
					return models.Palette{}, fmt.Errorf("family %s existing_solid: step %d is not one of %v", ff.ID, step, models.Steps)
				}
				fam.ExistingSolid[step] = hex
			}
		}
		if len(ff.AlphaExisting) > 0 {
			fam.AlphaExisting = make(map[models.Step]float64, len(ff.AlphaExisting))
			for key, av := range ff.AlphaExisting {
				step, err := parseStep(key)
				if err != nil {
					return models.Palette{}, fmt.Errorf("family %s alpha_existing: %w", ff.ID, err)
				}
				if av < 0 || av > 1 {
					return models.Palette{}, fmt.Errorf("family %s alpha_existing %s: fraction %v outside [0,1]", ff.ID, key, av)
				}
				fam.AlphaExisting[step] = av
			}
		}
		for _, et := range ff.ExtraTokens {
			fam.ExtraTokens = append(fam.ExtraTokens, models.ExtraToken{Name: et.Name, Hex: et.Hex})
		}
		p.Families = append(p.Families, fam)
	}

	for i, o := range f.Others {
		if o.ID == "" {
			return models.Palette{}, fmt.Errorf("other token #%d has no id", i+1)
		}
		p.Others = append(p.Others, models.OtherToken{ID: o.ID, Hex: o.Hex})
	}
	for _, l := range f.Legacy {
		p.Legacy = append(p.Legacy, models.LegacyColor{Name: l.Name, Hex: l.Hex, Note: l.Note})
	}
	return p, nil
}

func parseStep(key string) (models.Step, error) {
	n, err := strconv.Atoi(strings.TrimSpace(key))
	if err != nil {
		return 0, fmt.Errorf("step %q is not an integer", key)
	}
	if n < 1 || n > 100 {
		return 0, fmt.Errorf("step %d outside 1..100", n)
	}
	return models.Step(n), nil
}
