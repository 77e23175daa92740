package web

import (
	"bytes"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Repository descriptions are a single line, so only inline markup survives:
// block elements are unwrapped to their text and raw HTML is dropped.
var (
	descriptionMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.Linkify, extension.Strikethrough),
	)
	descriptionPolicy = newDescriptionPolicy()
)

func newDescriptionPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("em", "strong", "code", "del")
	p.AllowAttrs("href").OnElements("a")
	p.AllowStandardURLs()
	p.RequireNoFollowOnLinks(true)
	p.AddTargetBlankToFullyQualifiedLinks(true)
	return p
}

// RenderMarkdown converts a repository description to sanitized inline HTML.
// Returns empty string for empty input.
func RenderMarkdown(src string) string {
	src = strings.TrimSpace(src)
	if src == "" {
		return ""
	}

	var buf bytes.Buffer
	if err := descriptionMarkdown.Convert([]byte(src), &buf); err != nil {
		return descriptionPolicy.Sanitize(src)
	}

	return strings.TrimSpace(descriptionPolicy.Sanitize(buf.String()))
}
