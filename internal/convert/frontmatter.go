// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/lotion/internal/notion"
)

var (
	whitespaceRuns = regexp.MustCompile(`\s+`)
	nonSnakeChars  = regexp.MustCompile(`[^a-z0-9_]`)
	underscoreRuns = regexp.MustCompile(`_+`)
)

// snakeCase transliterates a property name into a frontmatter key: trim,
// lowercase, whitespace to underscores, anything else outside [a-z0-9_] to
// underscores, runs collapsed, edges stripped.
func snakeCase(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = whitespaceRuns.ReplaceAllString(s, "_")
	s = nonSnakeChars.ReplaceAllString(s, "_")
	s = underscoreRuns.ReplaceAllString(s, "_")
	return strings.Trim(s, "_")
}

// BuildFrontmatter renders the YAML metadata block prepended to every
// document: title first, then every non-title property under its
// snake-cased name in display order (nil values skipped), then the fixed
// notion_id / notion_url / last_synced fields, then caller extras, which
// override on key collision. New extra keys are appended in sorted key
// order so output is deterministic regardless of map iteration; an extra
// overriding an earlier key keeps that key's original position. The block
// is fenced by --- marker lines.
func BuildFrontmatter(page notion.Page, extra map[string]any, now time.Time) (string, error) {
	root := &yaml.Node{Kind: yaml.MappingNode}

	// set replaces an existing key's value in place (keeping its original
	// position) or appends a new pair, matching insertion-order maps.
	set := func(key string, value any) error {
		valNode := &yaml.Node{}
		if err := valNode.Encode(value); err != nil {
			return fmt.Errorf("encoding frontmatter key %q: %w", key, err)
		}
		for i := 0; i < len(root.Content); i += 2 {
			if root.Content[i].Value == key {
				root.Content[i+1] = valNode
				return nil
			}
		}
		keyNode := &yaml.Node{Kind: yaml.ScalarNode, Value: key}
		root.Content = append(root.Content, keyNode, valNode)
		return nil
	}

	if err := set("title", ExtractTitle(page.Properties)); err != nil {
		return "", err
	}

	for _, np := range page.Properties {
		if np.Property.Type == "title" {
			continue
		}
		value := SerializeProperty(np.Property)
		if value == nil {
			continue
		}
		if err := set(snakeCase(np.Name), value); err != nil {
			return "", err
		}
	}

	if err := set("notion_id", page.ID); err != nil {
		return "", err
	}
	if err := set("notion_url", page.URL); err != nil {
		return "", err
	}
	if err := set("last_synced", now.UTC().Format(time.RFC3339)); err != nil {
		return "", err
	}

	extraKeys := make([]string, 0, len(extra))
	for k := range extra {
		extraKeys = append(extraKeys, k)
	}
	sort.Strings(extraKeys)
	for _, k := range extraKeys {
		if err := set(k, extra[k]); err != nil {
			return "", err
		}
	}

	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(2)
	if err := enc.Encode(root); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	return "---\n" + buf.String() + "---\n", nil
}
