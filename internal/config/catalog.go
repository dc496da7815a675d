package config

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml"
	"gopkg.in/yaml.v3"

	"budgetbuddy/internal/core"
)

// Catalogs holds the expense categories and income sources a deployment
// accepts. Order is kept: it drives budget rows and summary ordering.
type Catalogs struct {
	Categories core.Catalog `json:"categories" yaml:"categories" toml:"categories"`
	Sources    core.Catalog `json:"sources" yaml:"sources" toml:"sources"`
}

// DefaultCatalogs returns the built-in catalogs.
func DefaultCatalogs() Catalogs {
	return Catalogs{
		Categories: append(core.Catalog(nil), core.DefaultExpenseCategories...),
		Sources:    append(core.Catalog(nil), core.DefaultIncomeSources...),
	}
}

// LoadCatalogs reads a TOML, YAML, JSON or plain-text catalog file. An empty
// path yields the defaults, as does an empty list in the file.
//
// Plain-text files hold one entry per line prefixed with "category:" or
// "source:"; blank lines and lines starting with # are skipped.
func LoadCatalogs(path string) (Catalogs, error) {
	if path == "" {
		return DefaultCatalogs(), nil
	}

	info, err := os.Stat(path)
	if err != nil {
		return Catalogs{}, fmt.Errorf("error accessing catalog file: %w", err)
	}
	if info.IsDir() {
		return Catalogs{}, fmt.Errorf("%s is a directory, not a file", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Catalogs{}, fmt.Errorf("error reading catalog file: %w", err)
	}

	var c Catalogs
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".toml":
		if err := toml.Unmarshal(data, &c); err != nil {
			return Catalogs{}, fmt.Errorf("error parsing TOML catalog: %w", err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &c); err != nil {
			return Catalogs{}, fmt.Errorf("error parsing YAML catalog: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &c); err != nil {
			return Catalogs{}, fmt.Errorf("error parsing JSON catalog: %w", err)
		}
	case ".txt":
		c, err = parseTextCatalog(data)
		if err != nil {
			return Catalogs{}, err
		}
	default:
		return Catalogs{}, fmt.Errorf("unsupported catalog file format: %s", ext)
	}

	c.Categories = dedupe(c.Categories)
	c.Sources = dedupe(c.Sources)
	def := DefaultCatalogs()
	if len(c.Categories) == 0 {
		c.Categories = def.Categories
	}
	if len(c.Sources) == 0 {
		c.Sources = def.Sources
	}
	return c, nil
}

func parseTextCatalog(data []byte) (Catalogs, error) {
	var c Catalogs
	sc := bufio.NewScanner(bytes.NewReader(data))
	for n := 1; sc.Scan(); n++ {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		kind, name, ok := strings.Cut(line, ":")
		if !ok {
			return Catalogs{}, fmt.Errorf("catalog line %d: expected 'category:' or 'source:' prefix", n)
		}
		switch strings.ToLower(strings.TrimSpace(kind)) {
		case "category":
			c.Categories = append(c.Categories, name)
		case "source":
			c.Sources = append(c.Sources, name)
		default:
			return Catalogs{}, fmt.Errorf("catalog line %d: unknown kind %q", n, kind)
		}
	}
	return c, sc.Err()
}

// dedupe trims names and drops blanks and repeats, keeping first-seen order.
func dedupe(in core.Catalog) core.Catalog {
	seen := map[string]struct{}{}
	out := make(core.Catalog, 0, len(in))
	for _, v := range in {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
