// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"strings"

	"github.com/pdiddy/lotion/internal/notion"
)

// RenderBlocks walks a fetched block tree and emits block-level Markdown.
// Blocks are joined by newlines with blank renders filtered out, and
// nesting depth translates to two spaces of indentation per level.
func RenderBlocks(blocks []notion.Block, depth int) string {
	indent := strings.Repeat("  ", depth)
	var lines []string

	push := func(s string) {
		if s != "" {
			lines = append(lines, s)
		}
	}

	for _, block := range blocks {
		md, childrenDone, _ := renderBlock(block, indent, depth)
		push(md)
		if !childrenDone && len(block.Children) > 0 {
			push(RenderBlocks(block.Children, depth+1))
		}
	}

	return strings.Join(lines, "\n")
}

// renderBlock emits the Markdown for a single block. childrenDone reports
// whether the block's children were already consumed (embedded, special-
// cased, or deliberately dropped); when false the caller renders them as a
// nested group one level deeper. ok is false only for tags the switch does
// not recognize, which render nothing.
func renderBlock(block notion.Block, indent string, depth int) (md string, childrenDone, ok bool) {
	switch block.Type {
	case "paragraph":
		text := richText(block.Paragraph)
		if text == "" {
			return "", false, true
		}
		return indent + text, false, true

	// Headings are never indented, and their children (Notion's toggle
	// headings) render as a separate nested group.
	case "heading_1":
		return "# " + richText(block.Heading1), false, true
	case "heading_2":
		return "## " + richText(block.Heading2), false, true
	case "heading_3":
		return "### " + richText(block.Heading3), false, true

	case "bulleted_list_item":
		return indent + "- " + richText(block.BulletedListItem) + nested(block, depth), true, true

	case "numbered_list_item":
		return indent + "1. " + richText(block.NumberedListItem) + nested(block, depth), true, true

	case "to_do":
		marker := "- [ ] "
		if block.ToDo != nil && block.ToDo.Checked {
			marker = "- [x] "
		}
		var text string
		if block.ToDo != nil {
			text = RenderRichText(block.ToDo.RichText)
		}
		return indent + marker + text, false, true

	case "toggle":
		return indent + "**" + richText(block.Toggle) + "**" + nested(block, depth), true, true

	case "quote":
		return indent + "> " + richText(block.Quote) + nested(block, depth), true, true

	case "callout":
		var emoji, text string
		if block.Callout != nil {
			if block.Callout.Icon != nil && block.Callout.Icon.Type == "emoji" {
				emoji = block.Callout.Icon.Emoji + " "
			}
			text = RenderRichText(block.Callout.RichText)
		}
		return indent + "> " + emoji + text, true, true

	case "code":
		var lang, text string
		if block.Code != nil {
			lang = block.Code.Language
			text = RenderRichText(block.Code.RichText)
		}
		return "```" + lang + "\n" + text + "\n```", false, true

	case "divider":
		return "---", false, true

	case "equation":
		var expr string
		if block.Equation != nil {
			expr = block.Equation.Expression
		}
		return "$$" + expr + "$$", false, true

	case "image":
		caption := "image"
		var u string
		if block.Image != nil {
			u = block.Image.URL()
			if c := RenderRichText(block.Image.Caption); c != "" {
				caption = c
			}
		}
		return indent + "![" + caption + "](" + u + ")", false, true

	case "video":
		return indent + fileLink("video", block.Video), false, true

	case "file":
		name := "file"
		if block.File != nil && block.File.Name != "" {
			name = block.File.Name
		}
		return indent + fileLink(name, block.File), false, true

	case "pdf":
		return indent + fileLink("PDF", block.PDF), false, true

	case "bookmark":
		return indent + urlLink(block.Bookmark), false, true
	case "embed":
		return indent + urlLink(block.Embed), false, true
	case "link_preview":
		return indent + urlLink(block.LinkPreview), false, true

	case "child_page":
		return indent + "_📄 " + childTitle(block.ChildPage) + "_", true, true
	case "child_database":
		return indent + "_🗄️ " + childTitle(block.ChildDatabase) + "_", true, true

	case "table":
		hasHeader := block.Table != nil && block.Table.HasColumnHeader
		return renderTable(block.Children, hasHeader), true, true

	case "table_row":
		// Consumed by the parent table block.
		return "", true, true

	// Transparent containers contribute nothing themselves; their children
	// render at the same depth.
	case "column_list", "column", "synced_block":
		if len(block.Children) == 0 {
			return "", true, true
		}
		return RenderBlocks(block.Children, depth), true, true

	case "breadcrumb", "table_of_contents", "template", "link_to_page", "unsupported":
		return "", true, true

	default:
		return "", true, false
	}
}

// nested renders a block's children one level deeper, prefixed with a
// newline so they attach to the parent's own line.
func nested(block notion.Block, depth int) string {
	if len(block.Children) == 0 {
		return ""
	}
	md := RenderBlocks(block.Children, depth+1)
	if md == "" {
		return ""
	}
	return "\n" + md
}

func richText(p *notion.TextPayload) string {
	if p == nil {
		return ""
	}
	return RenderRichText(p.RichText)
}

func fileLink(label string, p *notion.FilePayload) string {
	var u string
	if p != nil {
		u = p.URL()
	}
	return "[" + label + "](" + u + ")"
}

func urlLink(p *notion.LinkPayload) string {
	var u string
	if p != nil {
		u = p.URL
	}
	return "[" + u + "](" + u + ")"
}

func childTitle(p *notion.ChildPayload) string {
	if p == nil {
		return ""
	}
	return p.Title
}

// renderTable lays the table_row children out as a Markdown grid. The
// column count is the widest row; short rows pad with empty cells. With a
// header row the first row is followed by a --- separator line.
func renderTable(children []notion.Block, hasHeader bool) string {
	var rows [][]string
	for _, child := range children {
		if child.Type != "table_row" || child.TableRow == nil {
			continue
		}
		var cells []string
		for _, cell := range child.TableRow.Cells {
			cells = append(cells, RenderRichText(cell))
		}
		rows = append(rows, cells)
	}

	if len(rows) == 0 {
		return ""
	}

	colCount := 0
	for _, row := range rows {
		if len(row) > colCount {
			colCount = len(row)
		}
	}

	renderRow := func(cells []string) string {
		var b strings.Builder
		b.WriteByte('|')
		for i := 0; i < colCount; i++ {
			cell := ""
			if i < len(cells) {
				cell = cells[i]
			}
			b.WriteString(" " + cell + " |")
		}
		return b.String()
	}

	var lines []string
	if hasHeader {
		lines = append(lines, renderRow(rows[0]))
		sep := "|" + strings.Repeat(" --- |", colCount)
		lines = append(lines, sep)
		for _, row := range rows[1:] {
			lines = append(lines, renderRow(row))
		}
	} else {
		for _, row := range rows {
			lines = append(lines, renderRow(row))
		}
	}

	return strings.Join(lines, "\n")
}
