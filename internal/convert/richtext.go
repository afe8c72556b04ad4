// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package convert translates Notion pages into Markdown documents: inline
// rich text, the block tree, typed properties, the frontmatter preamble,
// and filesystem-safe file names.
package convert

import (
	"strings"

	"github.com/pdiddy/lotion/internal/notion"
)

// RenderRichText converts a run sequence into one inline Markdown string.
// Each run is rendered independently; adjacent runs with identical styling
// are not merged. Styles nest in a fixed order so output is deterministic:
// code innermost, then bold, italic, strikethrough, with any link wrapping
// the fully styled text. Markdown-reserved characters in the source text
// pass through unescaped; Notion content rarely collides with Markdown
// syntax and a quoting scheme would mangle the common case.
func RenderRichText(runs []notion.RichText) string {
	var b strings.Builder
	for _, run := range runs {
		text := run.PlainText
		a := run.Annotations

		if a.Code {
			text = "`" + text + "`"
		}
		if a.Bold {
			text = "**" + text + "**"
		}
		if a.Italic {
			text = "_" + text + "_"
		}
		if a.Strikethrough {
			text = "~~" + text + "~~"
		}

		if run.Href != "" {
			text = "[" + text + "](" + run.Href + ")"
		}
		b.WriteString(text)
	}
	return b.String()
}
