package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

var ErrInvalidCatalog = errors.New("invalid catalog")

// ComparisonGroup pairs a principal technology with its competitors.
type ComparisonGroup struct {
	Name        string   `yaml:"name"`
	Principal   string   `yaml:"principal"`
	Competitors []string `yaml:"competitors"`
}

// Terms returns the principal followed by the competitors.
func (g ComparisonGroup) Terms() []string {
	return append([]string{g.Principal}, g.Competitors...)
}

type document struct {
	InCurriculum     []string          `yaml:"in_curriculum"`
	OutOfCurriculum  []string          `yaml:"out_of_curriculum"`
	ComparisonGroups []ComparisonGroup `yaml:"comparison_groups"`
	Ranking          struct {
		Frontend []string `yaml:"frontend"`
		Backend  []string `yaml:"backend"`
	} `yaml:"ranking"`
	Databases       []string          `yaml:"databases"`
	DefaultCategory string            `yaml:"default_category"`
	Categories      map[string]string `yaml:"categories"`
}

// Catalog is the immutable set of term tables the reports are computed from.
// Accessors hand out copies.
type Catalog struct {
	doc document
}

// Load reads the catalog from path, or the embedded default when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Parse(defaultCatalog)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parse catalog %s: %w", path, err)
	}
	return c, nil
}

// Default returns the embedded catalog. It panics if the embedded file is broken.
func Default() *Catalog {
	c, err := Parse(defaultCatalog)
	if err != nil {
		panic(err)
	}
	return c
}

// Parse decodes and validates a YAML catalog.
func Parse(data []byte) (*Catalog, error) {
	var doc document
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidCatalog, err)
	}
	if err := validate(&doc); err != nil {
		return nil, err
	}
	return &Catalog{doc: doc}, nil
}

func validate(doc *document) error {
	lists := map[string][]string{
		"in_curriculum":     doc.InCurriculum,
		"out_of_curriculum": doc.OutOfCurriculum,
		"ranking.frontend":  doc.Ranking.Frontend,
		"ranking.backend":   doc.Ranking.Backend,
		"databases":         doc.Databases,
	}
	for name, terms := range lists {
		if err := checkTerms(name, terms); err != nil {
			return err
		}
	}

	if len(doc.ComparisonGroups) == 0 {
		return fmt.Errorf("%w: comparison_groups is empty", ErrInvalidCatalog)
	}
	for _, g := range doc.ComparisonGroups {
		if g.Name == "" || g.Principal == "" {
			return fmt.Errorf("%w: comparison group needs a name and a principal", ErrInvalidCatalog)
		}
		if err := checkTerms("comparison_groups."+g.Name, g.Terms()); err != nil {
			return err
		}
	}

	if doc.DefaultCategory == "" {
		doc.DefaultCategory = "Other"
	}
	for term := range doc.Categories {
		if term != strings.ToLower(term) {
			return fmt.Errorf("%w: category key %q must be lower-case", ErrInvalidCatalog, term)
		}
	}
	return nil
}

func checkTerms(name string, terms []string) error {
	if len(terms) == 0 {
		return fmt.Errorf("%w: %s is empty", ErrInvalidCatalog, name)
	}
	seen := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		if t == "" {
			return fmt.Errorf("%w: %s has an empty term", ErrInvalidCatalog, name)
		}
		if _, dup := seen[t]; dup {
			return fmt.Errorf("%w: %s lists %q twice", ErrInvalidCatalog, name, t)
		}
		seen[t] = struct{}{}
	}
	return nil
}

func (c *Catalog) InCurriculum() []string    { return slices.Clone(c.doc.InCurriculum) }
func (c *Catalog) OutOfCurriculum() []string { return slices.Clone(c.doc.OutOfCurriculum) }
func (c *Catalog) FrontendRanking() []string { return slices.Clone(c.doc.Ranking.Frontend) }
func (c *Catalog) BackendRanking() []string  { return slices.Clone(c.doc.Ranking.Backend) }
func (c *Catalog) Databases() []string       { return slices.Clone(c.doc.Databases) }
func (c *Catalog) DefaultCategory() string   { return c.doc.DefaultCategory }

// ComparisonGroups returns the groups in configuration order.
func (c *Catalog) ComparisonGroups() []ComparisonGroup {
	out := make([]ComparisonGroup, len(c.doc.ComparisonGroups))
	for i, g := range c.doc.ComparisonGroups {
		out[i] = ComparisonGroup{
			Name:        g.Name,
			Principal:   g.Principal,
			Competitors: slices.Clone(g.Competitors),
		}
	}
	return out
}

// ComparisonTerms returns every term of every group, duplicates removed,
// in first-appearance order.
func (c *Catalog) ComparisonTerms() []string {
	var out []string
	for _, g := range c.doc.ComparisonGroups {
		for _, t := range g.Terms() {
			if !slices.Contains(out, t) {
				out = append(out, t)
			}
		}
	}
	return out
}

// Categorize resolves a term to its category label. Lookup is case-insensitive;
// unknown terms fall into the default category.
func (c *Catalog) Categorize(term string) string {
	if cat, ok := c.doc.Categories[strings.ToLower(term)]; ok {
		return cat
	}
	return c.doc.DefaultCategory
}
