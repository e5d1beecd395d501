package tui

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/aretw0/colombia-mcp/pkg/dispatch"
)

// ToolsMarkdown renders the tool list as a markdown table.
func ToolsMarkdown(tools []dispatch.Tool) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Tools (%d)\n\n", len(tools))
	b.WriteString("| Tool | Arguments | Description |\n")
	b.WriteString("|---|---|---|\n")
	for _, t := range tools {
		fmt.Fprintf(&b, "| `%s` | %s | %s |\n", t.Name, arguments(t), escape(t.Description))
	}
	return b.String()
}

// arguments lists input fields, required ones first and marked with *.
func arguments(t dispatch.Tool) string {
	required := make(map[string]bool)
	for _, name := range t.Input.Required() {
		required[name] = true
	}
	names := t.Input.Names()
	if len(names) == 0 {
		return "-"
	}
	sort.SliceStable(names, func(i, j int) bool {
		return required[names[i]] && !required[names[j]]
	})
	for i, name := range names {
		if required[name] {
			names[i] = name + "*"
		}
	}
	return strings.Join(names, ", ")
}

// ResponseMarkdown renders a tool response, pretty-printing JSON payloads.
func ResponseMarkdown(text string, isError bool) string {
	if isError {
		return "> **Error**\n>\n> " + escape(text) + "\n"
	}
	var pretty strings.Builder
	var v any
	if err := json.Unmarshal([]byte(text), &v); err == nil {
		data, _ := json.MarshalIndent(v, "", "  ")
		pretty.WriteString("```json\n")
		pretty.Write(data)
		pretty.WriteString("\n```\n")
		return pretty.String()
	}
	return text + "\n"
}

func escape(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
