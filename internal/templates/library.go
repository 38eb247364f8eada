// Package templates loads reference images and matches captured frames
// against them with normalized cross-correlation.
package templates

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gocv.io/x/gocv"
)

// Template is a grayscale reference image, usually a game logo or HUD element.
type Template struct {
	// Name is the lowercased file name without extension.
	Name  string
	Image gocv.Mat
}

// Library is the ordered, read-only set of templates. Order is load order and
// decides which template wins when several score over the threshold.
type Library struct {
	templates []Template
}

// NewLibrary creates a Library from templates in priority order.
func NewLibrary(templates ...Template) *Library {
	return &Library{templates: templates}
}

// LoadDir reads every image file in dir as a grayscale template, in directory
// listing order. A missing directory yields an empty library. Entries that are
// not regular files or cannot be decoded are skipped; if two files share a
// name (logo.png, logo.jpg) the first one is kept.
func LoadDir(dir string, logger *slog.Logger) (*Library, error) {
	if logger == nil {
		logger = slog.Default()
	}

	lib := &Library{}
	if dir == "" {
		return lib, nil
	}

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return lib, nil
	}
	if err != nil {
		return lib, fmt.Errorf("stat templates dir: %w", err)
	}
	if !info.IsDir() {
		return lib, nil
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		return lib, fmt.Errorf("read templates dir: %w", err)
	}

	seen := make(map[string]bool, len(entries))
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		fi, err := os.Stat(path)
		if err != nil || !fi.Mode().IsRegular() {
			continue
		}

		name := strings.ToLower(strings.TrimSuffix(entry.Name(), filepath.Ext(entry.Name())))
		if seen[name] {
			logger.Warn("duplicate template name skipped", "template", name, "path", path)
			continue
		}

		img := gocv.IMRead(path, gocv.IMReadGrayScale)
		if img.Empty() {
			img.Close()
			logger.Debug("unreadable template skipped", "path", path)
			continue
		}

		seen[name] = true
		lib.templates = append(lib.templates, Template{Name: name, Image: img})
	}

	logger.Info("templates loaded", "dir", dir, "count", len(lib.templates))
	return lib, nil
}

// Len returns the number of templates.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.templates)
}

// Templates returns the templates in priority order. The images are shared
// and must not be modified.
func (l *Library) Templates() []Template {
	if l == nil {
		return nil
	}
	out := make([]Template, len(l.templates))
	copy(out, l.templates)
	return out
}

// Names returns template names in priority order.
func (l *Library) Names() []string {
	if l == nil {
		return nil
	}
	names := make([]string, len(l.templates))
	for i, t := range l.templates {
		names[i] = t.Name
	}
	return names
}

// Close releases all template images.
func (l *Library) Close() {
	if l == nil {
		return
	}
	for i := range l.templates {
		l.templates[i].Image.Close()
	}
	l.templates = nil
}
