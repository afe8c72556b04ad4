// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"fmt"
	"strings"

	"github.com/pdiddy/lotion/internal/notion"
)

// SerializeProperty maps a typed property value to a plain scalar, slice or
// map suitable for frontmatter. Serialization is total: every recognized
// variant yields a value (possibly nil for absent data) and unrecognized
// variants yield nil, never an error.
func SerializeProperty(p notion.Property) any {
	v, _ := serializeProperty(p)
	return v
}

// serializeProperty additionally reports whether the variant tag was
// recognized, which a test uses to keep the switch exhaustive over
// notion.PropertyTypes.
func serializeProperty(p notion.Property) (any, bool) {
	switch p.Type {
	case "title":
		return notion.PlainText(p.Title), true

	case "rich_text":
		return notion.PlainText(p.RichText), true

	case "select":
		if p.Select == nil {
			return nil, true
		}
		return p.Select.Name, true

	case "status":
		if p.Status == nil {
			return nil, true
		}
		return p.Status.Name, true

	case "multi_select":
		names := make([]string, 0, len(p.MultiSelect))
		for _, s := range p.MultiSelect {
			names = append(names, s.Name)
		}
		return names, true

	case "date":
		if p.Date == nil {
			return nil, true
		}
		if p.Date.End != "" {
			return map[string]string{"start": p.Date.Start, "end": p.Date.End}, true
		}
		return p.Date.Start, true

	case "checkbox":
		return p.Checkbox, true

	case "number":
		if p.Number == nil {
			return nil, true
		}
		return *p.Number, true

	case "people":
		names := make([]string, 0, len(p.People))
		for _, person := range p.People {
			names = append(names, personLabel(person))
		}
		return names, true

	case "relation":
		ids := make([]string, 0, len(p.Relation))
		for _, r := range p.Relation {
			ids = append(ids, r.ID)
		}
		return ids, true

	case "files":
		var urls []string
		for _, f := range p.Files {
			if u := f.URL(); u != "" {
				urls = append(urls, u)
			}
		}
		return urls, true

	case "url":
		return optString(p.URL), true
	case "email":
		return optString(p.Email), true
	case "phone_number":
		return optString(p.PhoneNumber), true

	case "formula":
		return serializeFormula(p.Formula), true

	case "rollup":
		return serializeRollup(p.Rollup), true

	case "created_time":
		return p.CreatedTime, true
	case "last_edited_time":
		return p.LastEditedTime, true

	case "created_by":
		return personRef(p.CreatedBy), true
	case "last_edited_by":
		return personRef(p.LastEditedBy), true

	case "unique_id":
		if p.UniqueID == nil {
			return nil, true
		}
		if p.UniqueID.Prefix != "" {
			return fmt.Sprintf("%s-%d", p.UniqueID.Prefix, p.UniqueID.Number), true
		}
		return p.UniqueID.Number, true

	case "verification":
		if p.Verification == nil {
			return nil, true
		}
		return p.Verification.State, true

	default:
		return nil, false
	}
}

// serializeFormula unwraps a formula result, recursing on the inner tag.
func serializeFormula(f *notion.Formula) any {
	if f == nil {
		return nil
	}
	switch f.Type {
	case "string":
		return optString(f.String)
	case "number":
		if f.Number == nil {
			return nil
		}
		return *f.Number
	case "boolean":
		if f.Boolean == nil {
			return nil
		}
		return *f.Boolean
	case "date":
		if f.Date == nil {
			return nil
		}
		return f.Date.Start
	default:
		return nil
	}
}

// serializeRollup unwraps a rollup result. Array rollups serialize each
// wrapped property value through the same dispatch.
func serializeRollup(r *notion.Rollup) any {
	if r == nil {
		return nil
	}
	switch r.Type {
	case "number":
		if r.Number == nil {
			return nil
		}
		return *r.Number
	case "date":
		if r.Date == nil {
			return nil
		}
		return r.Date.Start
	case "array":
		values := make([]any, 0, len(r.Array))
		for _, inner := range r.Array {
			values = append(values, SerializeProperty(inner))
		}
		return values
	default:
		return nil
	}
}

// personLabel prefers the display name, falling back to the user id.
func personLabel(p notion.Person) string {
	if p.Name != "" {
		return p.Name
	}
	return p.ID
}

func personRef(p *notion.Person) any {
	if p == nil {
		return nil
	}
	return personLabel(*p)
}

func optString(s *string) any {
	if s == nil {
		return nil
	}
	return *s
}

// ExtractTitle scans a page's properties for the one tagged title and
// returns its trimmed plain text, or "" when the page has no title
// property.
func ExtractTitle(props notion.PropertyList) string {
	for _, np := range props {
		if np.Property.Type == "title" {
			return strings.TrimSpace(notion.PlainText(np.Property.Title))
		}
	}
	return ""
}
