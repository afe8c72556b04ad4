// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package secrets resolves the Notion integration token without forcing it
// into the config file. Each file in the secrets directory is one secret:
// the filename is the key name and the trimmed contents are the value.
//
// Supported key files: notion-api-key.
package secrets

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// DefaultDir is the secrets directory searched relative to the working
// directory.
const DefaultDir = ".secrets"

// notionKeyFile holds the integration token.
const notionKeyFile = "notion-api-key"

// Load reads all files in dir and returns a map of filename to trimmed
// contents. A missing directory is not an error; Load returns an empty
// map. Unreadable files produce a warning on stderr but do not abort.
func Load(dir string) (map[string]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return map[string]string{}, nil
		}
		return nil, fmt.Errorf("reading secrets directory %s: %w", dir, err)
	}

	secrets := make(map[string]string)
	for _, entry := range entries {
		if entry.IsDir() || strings.HasPrefix(entry.Name(), ".") {
			continue
		}

		data, err := os.ReadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: could not read secret %s: %v\n", entry.Name(), err)
			continue
		}

		if value := strings.TrimSpace(string(data)); value != "" {
			secrets[entry.Name()] = value
		}
	}

	return secrets, nil
}

// APIKey resolves the Notion token from the first non-empty source:
// the explicit value (config file or flag), the NOTION_API_KEY environment
// variable, then .secrets/notion-api-key.
func APIKey(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if v := os.Getenv("NOTION_API_KEY"); v != "" {
		return v
	}
	loaded, err := Load(DefaultDir)
	if err != nil {
		return ""
	}
	return loaded[notionKeyFile]
}
