package persona

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	summaryFile = "summary.txt"
	factsFile   = "facts.txt"
	styleFile   = "style.txt"
)

// FileLoader reads the personality context from plain text files in a
// directory. summary.txt is required; facts.txt and style.txt are optional.
type FileLoader struct {
	dir string
}

func NewFileLoader(dir string) (*FileLoader, error) {
	dir = strings.TrimSpace(dir)
	if dir == "" {
		return nil, errors.New("persona: directory must not be empty")
	}
	return &FileLoader{dir: dir}, nil
}

func (l *FileLoader) Load(_ context.Context) (Persona, error) {
	summary, err := os.ReadFile(filepath.Join(l.dir, summaryFile))
	if err != nil {
		return Persona{}, fmt.Errorf("persona: read %s: %w", summaryFile, err)
	}
	facts, err := readOptional(filepath.Join(l.dir, factsFile))
	if err != nil {
		return Persona{}, fmt.Errorf("persona: read %s: %w", factsFile, err)
	}
	style, err := readOptional(filepath.Join(l.dir, styleFile))
	if err != nil {
		return Persona{}, fmt.Errorf("persona: read %s: %w", styleFile, err)
	}

	p := Persona{
		Summary: strings.TrimSpace(string(summary)),
		Facts:   strings.TrimSpace(facts),
		Style:   strings.TrimSpace(style),
	}
	if p.Summary == "" {
		return Persona{}, errors.New("persona: summary must not be empty")
	}
	return p, nil
}

// readOptional returns an empty string for a missing file.
func readOptional(path string) (string, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}
