package catalog

import (
	_ "embed"
	"fmt"

	"gopkg.in/yaml.v3"
)

//go:embed catalog.yaml
var defaultCatalog []byte

// Family identifies one of the generated tool shapes.
type Family string

const (
	FamilyList      Family = "list"
	FamilyByID      Family = "by-id"
	FamilyByName    Family = "by-name"
	FamilySearch    Family = "search"
	FamilyPaginated Family = "paginated"
	// FamilyRelation only appears as a queryKeys override target.
	FamilyRelation Family = "relation"
)

// Input names accepted by extra tools.
const (
	InputNone = "none"
	InputYear = "year"
)

// Catalog is the declarative source of all tools.
type Catalog struct {
	BasePath  string     `yaml:"basePath"`
	Resources []Resource `yaml:"resources"`
}

// Resource is one upstream collection, e.g. Department.
type Resource struct {
	Slug      string                       `yaml:"slug"`
	Path      string                       `yaml:"path"`
	Singular  string                       `yaml:"singular"`
	Plural    string                       `yaml:"plural"`
	Families  []Family                     `yaml:"families"`
	Relations []Relation                   `yaml:"relations"`
	Extras    []Extra                      `yaml:"extras"`
	QueryKeys map[Family]map[string]string `yaml:"queryKeys"`
}

// Relation is a collection reachable from a resource id, e.g. Department/{id}/cities.
type Relation struct {
	Slug   string `yaml:"slug"`
	Path   string `yaml:"path"`
	Plural string `yaml:"plural"`
}

// Extra is a tool that does not follow a family, e.g. get-holidays-by-year.
type Extra struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
	Path        string `yaml:"path"`
	Input       string `yaml:"input"`
	Context     string `yaml:"context"`
}

// Default returns the embedded catalog.
func Default() (*Catalog, error) {
	return Parse(defaultCatalog)
}

// Parse decodes and checks a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}
	if err := c.check(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) check() error {
	if len(c.Resources) == 0 {
		return fmt.Errorf("catalog has no resources")
	}
	for _, r := range c.Resources {
		if r.Slug == "" || r.Path == "" {
			return fmt.Errorf("resource %q: slug and path are required", r.Slug)
		}
		for _, f := range r.Families {
			if _, ok := families[f]; !ok {
				return fmt.Errorf("resource %s: unknown family %q", r.Slug, f)
			}
		}
		for f := range r.QueryKeys {
			if _, ok := defaultQueryKeys[f]; !ok {
				return fmt.Errorf("resource %s: family %q has no query keys to override", r.Slug, f)
			}
		}
		for _, rel := range r.Relations {
			if rel.Slug == "" || rel.Path == "" {
				return fmt.Errorf("resource %s: relation slug and path are required", r.Slug)
			}
		}
		for _, e := range r.Extras {
			if _, ok := extraInputs[e.Input]; !ok {
				return fmt.Errorf("resource %s: extra %s has unknown input %q", r.Slug, e.Name, e.Input)
			}
		}
	}
	return nil
}
