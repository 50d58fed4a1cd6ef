// Package tfvars inspects the Terraform variables file before anything is deployed.
//
// The file is owned by the operator and by Terraform. This package only
// checks that it exists and that no template placeholder survived, and
// reads a few scalar values (project_name, aws_region) the deployment
// needs outside Terraform.
package tfvars

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hashicorp/hcl"
	"github.com/spf13/afero"
)

// Well-known variable names read from the file.
const (
	KeyProjectName = "project_name"
	KeyRegion      = "aws_region"
)

// ErrMissing is returned when the tfvars file does not exist.
var ErrMissing = errors.New("tfvars file not found")

// Match is one placeholder occurrence.
type Match struct {
	Marker string
	Line   int
}

// PlaceholderError lists every placeholder still present in the file.
type PlaceholderError struct {
	Path    string
	Matches []Match
}

// Error implements the error interface.
func (e *PlaceholderError) Error() string {
	parts := make([]string, 0, len(e.Matches))
	for _, m := range e.Matches {
		parts = append(parts, fmt.Sprintf("%q (line %d)", m.Marker, m.Line))
	}
	return fmt.Sprintf("%s still contains placeholder values: %s", e.Path, strings.Join(parts, ", "))
}

// Inspector checks tfvars files on a filesystem.
type Inspector struct {
	fs      afero.Fs
	markers []string
}

// NewInspector creates an Inspector that flags any of the given markers.
func NewInspector(fs afero.Fs, markers []string) *Inspector {
	return &Inspector{fs: fs, markers: markers}
}

// Inspect fails when the file is missing or still contains a placeholder.
func (i *Inspector) Inspect(path string) error {
	ok, err := afero.Exists(i.fs, path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s (copy %s.example and fill in your values)", ErrMissing, path, filepath.Base(path))
	}

	data, err := afero.ReadFile(i.fs, path)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}

	if matches := i.scan(data); len(matches) > 0 {
		return &PlaceholderError{Path: path, Matches: matches}
	}

	return nil
}

func (i *Inspector) scan(data []byte) []Match {
	var matches []Match
	// No scanner here: lines of any length must be checked
	for n, text := range bytes.Split(data, []byte("\n")) {
		for _, marker := range i.markers {
			if bytes.Contains(text, []byte(marker)) {
				matches = append(matches, Match{Marker: marker, Line: n + 1})
			}
		}
	}
	return matches
}

// Values parses the file and returns its scalar top-level variables.
// Lists and maps are skipped.
func (i *Inspector) Values(path string) (map[string]string, error) {
	data, err := afero.ReadFile(i.fs, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	var raw map[string]interface{}
	if err := hcl.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for k, v := range raw {
		switch t := v.(type) {
		case string:
			values[k] = t
		case int, int64, float64, bool:
			values[k] = fmt.Sprint(t)
		}
	}
	return values, nil
}
