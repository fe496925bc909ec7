// Package templates holds the embedded HTML pages.
package templates

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
)

//go:embed *.tmpl
var files embed.FS

// Load parses every embedded template. Pages are looked up by file name,
// for example "page.tmpl".
func Load() (*template.Template, error) {
	funcMap := template.FuncMap{
		"initial": func(name string) string {
			name = strings.TrimSpace(name)
			if name == "" {
				return "?"
			}
			return strings.ToUpper(string([]rune(name)[0]))
		},
	}

	tmpl, err := template.New("").Funcs(funcMap).ParseFS(files, "*.tmpl")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	return tmpl, nil
}
