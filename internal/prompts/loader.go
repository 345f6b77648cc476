// Package prompts provides a loader for the externalized interviewer question templates.
// Template files are flat JSON objects embedded at compile time.
package prompts

import (
	"embed"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
)

// InterviewFile holds the question templates used by the planner
const InterviewFile = "interview.json"

//go:embed *.json
var templateFiles embed.FS

var (
	cache   = make(map[string]map[string]string)
	cacheMu sync.RWMutex
)

// Get retrieves a template by filename and key.
// The filename should not include the path (e.g., "interview.json").
func Get(filename, key string) (string, error) {
	templates, err := loadFile(filename)
	if err != nil {
		return "", err
	}

	tmpl, ok := templates[key]
	if !ok {
		return "", fmt.Errorf("template key %q not found in %s", key, filename)
	}
	return tmpl, nil
}

// MustGet retrieves a template by filename and key, panicking if not found.
// Only use it for keys shipped in the embedded files.
func MustGet(filename, key string) string {
	tmpl, err := Get(filename, key)
	if err != nil {
		panic(fmt.Sprintf("failed to load template: %v", err))
	}
	return tmpl
}

// Lookup resolves a keyed template family such as "behavioral.<industry>".
// When prefix+"."+variant is missing the prefix+".default" entry is returned.
func Lookup(filename, prefix, variant string) (string, error) {
	if variant != "" {
		if tmpl, err := Get(filename, prefix+"."+variant); err == nil {
			return tmpl, nil
		}
	}
	return Get(filename, prefix+".default")
}

// Format replaces placeholders in the form {{.Key}} with values from data.
// Unknown placeholders are left untouched.
func Format(template string, data map[string]string) string {
	if len(data) == 0 {
		return template
	}
	pairs := make([]string, 0, len(data)*2)
	for key, value := range data {
		pairs = append(pairs, "{{."+key+"}}", value)
	}
	return strings.NewReplacer(pairs...).Replace(template)
}

func loadFile(filename string) (map[string]string, error) {
	cacheMu.RLock()
	templates, ok := cache[filename]
	cacheMu.RUnlock()
	if ok {
		return templates, nil
	}

	data, err := templateFiles.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read template file %s: %w", filename, err)
	}

	if err := json.Unmarshal(data, &templates); err != nil {
		return nil, fmt.Errorf("failed to parse template file %s: %w", filename, err)
	}

	cacheMu.Lock()
	cache[filename] = templates
	cacheMu.Unlock()

	return templates, nil
}

// clearCache drops parsed files
func clearCache() {
	cacheMu.Lock()
	cache = make(map[string]map[string]string)
	cacheMu.Unlock()
}
