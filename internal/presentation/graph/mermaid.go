package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/colombia-mcp/pkg/catalog"
)

// GenerateMermaid produces a Mermaid flowchart of the catalog.
// It applies semantic styling:
// - Resource: [Rectangle], labelled with its tool families
// - Relation to a known resource: solid arrow labelled with the relation path
// - Relation to an unlisted collection: dotted arrow to a (Rounded) node
// - Extra tool: [[Subroutine]]
func GenerateMermaid(c *catalog.Catalog) string {
	var sb strings.Builder
	sb.WriteString("graph LR\n")

	known := make(map[string]bool, len(c.Resources))
	for _, r := range c.Resources {
		known[r.Slug] = true
	}

	for _, r := range c.Resources {
		id := sanitizeMermaidID(r.Slug)

		label := r.Path
		if len(r.Families) > 0 {
			families := make([]string, 0, len(r.Families))
			for _, f := range r.Families {
				families = append(families, string(f))
			}
			label += " <br/> " + strings.Join(families, ", ")
		}
		fmt.Fprintf(&sb, "    %s[\"%s\"]\n", id, label)

		for _, rel := range r.Relations {
			if target := resourceOf(rel.Slug); known[target] {
				fmt.Fprintf(&sb, "    %s -- \"%s\" --> %s\n", id, rel.Path, sanitizeMermaidID(target))
				continue
			}
			relID := sanitizeMermaidID(r.Slug + "/" + rel.Slug)
			fmt.Fprintf(&sb, "    %s(\"%s\")\n", relID, rel.Slug)
			fmt.Fprintf(&sb, "    %s -.-> %s\n", id, relID)
		}

		for _, e := range r.Extras {
			extraID := sanitizeMermaidID(e.Name)
			fmt.Fprintf(&sb, "    %s[[\"%s\"]]\n", extraID, e.Name)
			fmt.Fprintf(&sb, "    %s --> %s\n", id, extraID)
		}
	}

	return sb.String()
}

// resourceOf maps a plural relation slug to the singular resource slug.
func resourceOf(slug string) string {
	if s, ok := strings.CutSuffix(slug, "ies"); ok {
		return s + "y"
	}
	return strings.TrimSuffix(slug, "s")
}

func sanitizeMermaidID(id string) string {
	s := strings.ReplaceAll(id, ".", "_")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "/", "_")
	s = strings.ReplaceAll(s, "\\", "_")
	return s
}
