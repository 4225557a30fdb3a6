package file

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"introxpection-quiz/internal/domain"
	"gopkg.in/yaml.v3"
)

var extensions = []string{".yaml", ".yml", ".json"}

// Loader reads quiz definitions from a directory of YAML or JSON files.
// A definition without an id takes its file name.
type Loader struct {
	dir string
}

func NewLoader(dir string) *Loader {
	return &Loader{dir: dir}
}

// ReadDefinition parses and schema-checks a single file.
func ReadDefinition(path string) (domain.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return domain.Definition{}, err
	}
	stem := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	def, err := ParseDefinition(data, stem)
	if err != nil {
		return domain.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

// ParseDefinition decodes YAML (or JSON, which YAML accepts) into a
// definition after checking it against the definition schema. defaultID is
// used when the document has no id.
func ParseDefinition(data []byte, defaultID string) (domain.Definition, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return domain.Definition{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if err := checkSchema(doc); err != nil {
		return domain.Definition{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	var def domain.Definition
	if err := yaml.Unmarshal(data, &def); err != nil {
		return domain.Definition{}, fmt.Errorf("%w: %v", domain.ErrInvalidConfiguration, err)
	}
	if def.ID == "" {
		def.ID = defaultID
	}
	return def, nil
}

func (l *Loader) LoadQuiz(_ context.Context, quizID string) (domain.Definition, error) {
	if quizID == "" || strings.ContainsAny(quizID, `/\`) {
		return domain.Definition{}, domain.ErrQuizNotFound
	}
	for _, ext := range extensions {
		path := filepath.Join(l.dir, quizID+ext)
		if _, err := os.Stat(path); err == nil {
			def, err := ReadDefinition(path)
			if err != nil {
				return domain.Definition{}, err
			}
			if def.ID == quizID {
				return def, nil
			}
		}
	}

	// The id inside a file may differ from its name.
	paths, err := l.files()
	if err != nil {
		return domain.Definition{}, err
	}
	for _, path := range paths {
		def, err := ReadDefinition(path)
		if err != nil {
			continue
		}
		if def.ID == quizID {
			return def, nil
		}
	}
	return domain.Definition{}, domain.ErrQuizNotFound
}

// ListQuizzes summarizes every readable definition; broken files are logged and skipped.
func (l *Loader) ListQuizzes(_ context.Context) ([]domain.Summary, error) {
	paths, err := l.files()
	if err != nil {
		return nil, err
	}
	out := []domain.Summary{}
	for _, path := range paths {
		def, err := ReadDefinition(path)
		if err != nil {
			log.Printf("skipping quiz file: %v", err)
			continue
		}
		out = append(out, def.Summarize())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// All reads every definition in the directory, stopping at the first broken one.
func (l *Loader) All() ([]domain.Definition, error) {
	paths, err := l.files()
	if err != nil {
		return nil, err
	}
	defs := make([]domain.Definition, 0, len(paths))
	for _, path := range paths {
		def, err := ReadDefinition(path)
		if err != nil {
			return nil, err
		}
		defs = append(defs, def)
	}
	return defs, nil
}

func (l *Loader) files() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var paths []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		for _, want := range extensions {
			if ext == want {
				paths = append(paths, filepath.Join(l.dir, entry.Name()))
				break
			}
		}
	}
	sort.Strings(paths)
	return paths, nil
}
