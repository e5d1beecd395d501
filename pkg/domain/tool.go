package domain

import "strings"

// ContentTypeText is the only content block type produced by tools.
const ContentTypeText = "text"

// ToolRequest represents an incoming tool invocation.
// Arguments are kept as decoded JSON values; handlers extract what they need.
type ToolRequest struct {
	Name      string         `json:"name" yaml:"name" mapstructure:"name"`
	Arguments map[string]any `json:"arguments,omitempty" yaml:"arguments,omitempty" mapstructure:"arguments"`
}

// Content is one block of a tool response.
type Content struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// ToolResponse is the envelope returned for every tool call.
type ToolResponse struct {
	Content  []Content      `json:"content"`
	IsError  bool           `json:"isError"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TextResponse builds a successful response carrying a single text block.
func TextResponse(text string) ToolResponse {
	return ToolResponse{
		Content: []Content{{Type: ContentTypeText, Text: text}},
	}
}

// ErrorResponse builds an error-flagged response carrying a single text block.
func ErrorResponse(text string) ToolResponse {
	return ToolResponse{
		Content: []Content{{Type: ContentTypeText, Text: text}},
		IsError: true,
	}
}

// Text joins the text of all content blocks.
func (r ToolResponse) Text() string {
	if len(r.Content) == 1 {
		return r.Content[0].Text
	}
	parts := make([]string, 0, len(r.Content))
	for _, c := range r.Content {
		parts = append(parts, c.Text)
	}
	return strings.Join(parts, "\n")
}
