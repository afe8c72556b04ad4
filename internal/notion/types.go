// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notion

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Annotations carries the inline styling flags of one rich-text run.
type Annotations struct {
	Bold          bool `json:"bold"`
	Italic        bool `json:"italic"`
	Strikethrough bool `json:"strikethrough"`
	Code          bool `json:"code"`
}

// RichText is one span of text with uniform styling and an optional link.
type RichText struct {
	PlainText   string      `json:"plain_text"`
	Annotations Annotations `json:"annotations"`
	Href        string      `json:"href"`
}

// PlainText concatenates the unstyled text of a run sequence.
func PlainText(runs []RichText) string {
	var b bytes.Buffer
	for _, r := range runs {
		b.WriteString(r.PlainText)
	}
	return b.String()
}

// TextPayload is the shared shape of paragraph, heading, list item, toggle
// and quote blocks.
type TextPayload struct {
	RichText []RichText `json:"rich_text"`
}

// ToDoPayload is the to_do block payload.
type ToDoPayload struct {
	RichText []RichText `json:"rich_text"`
	Checked  bool       `json:"checked"`
}

// Icon is a page or callout icon. Only emoji icons are rendered.
type Icon struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
}

// CalloutPayload is the callout block payload.
type CalloutPayload struct {
	RichText []RichText `json:"rich_text"`
	Icon     *Icon      `json:"icon"`
}

// CodePayload is the code block payload.
type CodePayload struct {
	RichText []RichText `json:"rich_text"`
	Language string     `json:"language"`
}

// EquationPayload is the equation block payload.
type EquationPayload struct {
	Expression string `json:"expression"`
}

// FileRef points at a file, either externally hosted or served by Notion
// through a temporary URL.
type FileRef struct {
	URL string `json:"url"`
}

// FilePayload is the shared shape of image, video, file and pdf blocks.
type FilePayload struct {
	Type     string     `json:"type"`
	External *FileRef   `json:"external"`
	File     *FileRef   `json:"file"`
	Name     string     `json:"name"`
	Caption  []RichText `json:"caption"`
}

// URL returns the external URL or the Notion-hosted URL, whichever the
// subtype carries.
func (p *FilePayload) URL() string {
	switch {
	case p.Type == "external" && p.External != nil:
		return p.External.URL
	case p.File != nil:
		return p.File.URL
	}
	return ""
}

// LinkPayload is the shared shape of bookmark, embed and link_preview blocks.
type LinkPayload struct {
	URL string `json:"url"`
}

// ChildPayload is the child_page / child_database reference payload.
type ChildPayload struct {
	Title string `json:"title"`
}

// TablePayload is the table block payload. Rows arrive as table_row children.
type TablePayload struct {
	TableWidth      int  `json:"table_width"`
	HasColumnHeader bool `json:"has_column_header"`
}

// TableRowPayload is one table row; each cell is a rich-text run sequence.
type TableRowPayload struct {
	Cells [][]RichText `json:"cells"`
}

// Block is one node of a page's content tree. The API tags each block with
// a type string and nests the payload under a field of the same name, so
// exactly one payload pointer is non-nil for a recognized type. Children
// are not part of the wire format; the fetcher attaches them after
// recursively listing each block that reports has_children.
type Block struct {
	ID          string `json:"id"`
	Type        string `json:"type"`
	HasChildren bool   `json:"has_children"`

	Paragraph        *TextPayload     `json:"paragraph,omitempty"`
	Heading1         *TextPayload     `json:"heading_1,omitempty"`
	Heading2         *TextPayload     `json:"heading_2,omitempty"`
	Heading3         *TextPayload     `json:"heading_3,omitempty"`
	BulletedListItem *TextPayload     `json:"bulleted_list_item,omitempty"`
	NumberedListItem *TextPayload     `json:"numbered_list_item,omitempty"`
	ToDo             *ToDoPayload     `json:"to_do,omitempty"`
	Toggle           *TextPayload     `json:"toggle,omitempty"`
	Quote            *TextPayload     `json:"quote,omitempty"`
	Callout          *CalloutPayload  `json:"callout,omitempty"`
	Code             *CodePayload     `json:"code,omitempty"`
	Equation         *EquationPayload `json:"equation,omitempty"`
	Image            *FilePayload     `json:"image,omitempty"`
	Video            *FilePayload     `json:"video,omitempty"`
	File             *FilePayload     `json:"file,omitempty"`
	PDF              *FilePayload     `json:"pdf,omitempty"`
	Bookmark         *LinkPayload     `json:"bookmark,omitempty"`
	Embed            *LinkPayload     `json:"embed,omitempty"`
	LinkPreview      *LinkPayload     `json:"link_preview,omitempty"`
	ChildPage        *ChildPayload    `json:"child_page,omitempty"`
	ChildDatabase    *ChildPayload    `json:"child_database,omitempty"`
	Table            *TablePayload    `json:"table,omitempty"`
	TableRow         *TableRowPayload `json:"table_row,omitempty"`

	Children []Block `json:"-"`
}

// BlockTypes lists every block type the renderer recognizes. New upstream
// types must be added here and given a rendering rule; a test checks the
// two stay in step so an unhandled type fails loudly instead of silently.
var BlockTypes = []string{
	"paragraph",
	"heading_1",
	"heading_2",
	"heading_3",
	"bulleted_list_item",
	"numbered_list_item",
	"to_do",
	"toggle",
	"quote",
	"callout",
	"code",
	"divider",
	"equation",
	"image",
	"video",
	"file",
	"pdf",
	"bookmark",
	"embed",
	"link_preview",
	"child_page",
	"child_database",
	"table",
	"table_row",
	"column_list",
	"column",
	"synced_block",
	"breadcrumb",
	"table_of_contents",
	"template",
	"link_to_page",
	"unsupported",
}

// SelectOption is one select, status or multi_select choice.
type SelectOption struct {
	Name string `json:"name"`
}

// DateValue is a date or date range. End is empty for single dates.
type DateValue struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// Person is a user reference. Name may be absent for bot users or when the
// integration lacks user-info capabilities.
type Person struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Relation references a page in a related data source.
type Relation struct {
	ID string `json:"id"`
}

// FileEntry is one attachment of a files property.
type FileEntry struct {
	Type     string   `json:"type"`
	Name     string   `json:"name"`
	External *FileRef `json:"external"`
	File     *FileRef `json:"file"`
}

// URL returns the entry's URL, or "" when it resolves to neither variant.
func (f FileEntry) URL() string {
	switch {
	case f.Type == "external" && f.External != nil:
		return f.External.URL
	case f.File != nil:
		return f.File.URL
	}
	return ""
}

// Formula is a computed property result. The wrapped value is itself tagged.
type Formula struct {
	Type    string     `json:"type"`
	String  *string    `json:"string"`
	Number  *float64   `json:"number"`
	Boolean *bool      `json:"boolean"`
	Date    *DateValue `json:"date"`
}

// Rollup aggregates a property across related pages. Array rollups wrap
// further property values.
type Rollup struct {
	Type   string     `json:"type"`
	Number *float64   `json:"number"`
	Date   *DateValue `json:"date"`
	Array  []Property `json:"array"`
}

// UniqueID is an auto-incremented page identifier with an optional prefix.
type UniqueID struct {
	Prefix string `json:"prefix"`
	Number int64  `json:"number"`
}

// Verification is the page verification status of wiki pages.
type Verification struct {
	State string `json:"state"`
}

// Property is one typed page property. Like Block, the API nests the value
// under a field named after the type tag.
type Property struct {
	ID   string `json:"id"`
	Type string `json:"type"`

	Title          []RichText     `json:"title,omitempty"`
	RichText       []RichText     `json:"rich_text,omitempty"`
	Select         *SelectOption  `json:"select,omitempty"`
	Status         *SelectOption  `json:"status,omitempty"`
	MultiSelect    []SelectOption `json:"multi_select,omitempty"`
	Date           *DateValue     `json:"date,omitempty"`
	Checkbox       bool           `json:"checkbox,omitempty"`
	Number         *float64       `json:"number,omitempty"`
	People         []Person       `json:"people,omitempty"`
	Relation       []Relation     `json:"relation,omitempty"`
	Files          []FileEntry    `json:"files,omitempty"`
	URL            *string        `json:"url,omitempty"`
	Email          *string        `json:"email,omitempty"`
	PhoneNumber    *string        `json:"phone_number,omitempty"`
	Formula        *Formula       `json:"formula,omitempty"`
	Rollup         *Rollup        `json:"rollup,omitempty"`
	CreatedTime    string         `json:"created_time,omitempty"`
	LastEditedTime string         `json:"last_edited_time,omitempty"`
	CreatedBy      *Person        `json:"created_by,omitempty"`
	LastEditedBy   *Person        `json:"last_edited_by,omitempty"`
	UniqueID       *UniqueID      `json:"unique_id,omitempty"`
	Verification   *Verification  `json:"verification,omitempty"`
}

// PropertyTypes lists every property type the serializer recognizes.
var PropertyTypes = []string{
	"title",
	"rich_text",
	"select",
	"status",
	"multi_select",
	"date",
	"checkbox",
	"number",
	"people",
	"relation",
	"files",
	"url",
	"email",
	"phone_number",
	"formula",
	"rollup",
	"created_time",
	"last_edited_time",
	"created_by",
	"last_edited_by",
	"unique_id",
	"verification",
}

// NamedProperty pairs a property with its user-visible name.
type NamedProperty struct {
	Name     string
	Property Property
}

// PropertyList preserves the API's property order, which matches the
// display order in Notion. A plain map would lose it.
type PropertyList []NamedProperty

// UnmarshalJSON decodes the properties object key by key, keeping the
// order in which keys appear in the document.
func (l *PropertyList) UnmarshalJSON(data []byte) error {
	*l = nil
	dec := json.NewDecoder(bytes.NewReader(data))

	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if tok == nil {
		return nil
	}
	if d, ok := tok.(json.Delim); !ok || d != '{' {
		return fmt.Errorf("properties: expected object, got %v", tok)
	}

	for dec.More() {
		keyTok, err := dec.Token()
		if err != nil {
			return err
		}
		key, ok := keyTok.(string)
		if !ok {
			return fmt.Errorf("properties: expected string key, got %v", keyTok)
		}

		var p Property
		if err := dec.Decode(&p); err != nil {
			return fmt.Errorf("properties[%q]: %w", key, err)
		}
		*l = append(*l, NamedProperty{Name: key, Property: p})
	}

	_, err = dec.Token() // closing brace
	return err
}

// MarshalJSON is the inverse of UnmarshalJSON, used by tests and fixtures.
func (l PropertyList) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, np := range l {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(np.Name)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(np.Property)
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// Page is one remote page: the source of truth for a mirrored document.
type Page struct {
	Object         string       `json:"object"`
	ID             string       `json:"id"`
	URL            string       `json:"url"`
	LastEditedTime string       `json:"last_edited_time"`
	Properties     PropertyList `json:"properties"`
}

// DataSource describes a queryable Notion data source, as returned by the
// global search endpoint.
type DataSource struct {
	Object string     `json:"object"`
	ID     string     `json:"id"`
	URL    string     `json:"url"`
	Title  []RichText `json:"title"`
}

// DisplayTitle returns the data source title, or its id when untitled.
func (d DataSource) DisplayTitle() string {
	if t := PlainText(d.Title); t != "" {
		return t
	}
	return d.ID
}
