// Package memedb persists meme template records as one JSON object per
// line in an append-only log. Records are never deleted; repairs are
// written to a sibling file and swapped in by the operator.
package memedb

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"

	"github.com/coinmeme-project/coinmeme/pkg/layout"
	"github.com/coinmeme-project/coinmeme/pkg/utils"
)

type FieldSpec struct {
	Description string `json:"description"`
}

// Template is one meme format: a caption-field schema plus one placement
// box per field. The box mapping's key set must cover the schema's.
type Template struct {
	Name          string                `json:"name"`
	Explanation   string                `json:"explanation"`
	Schema        map[string]FieldSpec  `json:"schema"`
	BoundingBoxes map[string]layout.Box `json:"bounding_boxes"`
}

// AuditView adapts the record for the layout auditor.
func (t Template) AuditView() layout.TemplateBoxes {
	return layout.TemplateBoxes{Name: t.Name, Boxes: t.BoundingBoxes}
}

// Load reads all template records from a JSONL file. Unparsable lines are
// skipped individually with their line number logged; one bad record must
// not abort the whole scan.
func Load(path string) ([]Template, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open template db: %w", err)
	}
	defer file.Close()

	var templates []Template
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var template Template
		if err := json.Unmarshal(line, &template); err != nil {
			log.Printf("Skipping unparsable template at line %d: %v", lineNumber, err)
			continue
		}
		templates = append(templates, template)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan template db: %w", err)
	}
	return templates, nil
}

// Append writes one record to the end of the log. If the name is already
// taken an incrementing counter is suffixed until it is unique; the stored
// (possibly renamed) record is returned.
func Append(path string, template Template) (Template, error) {
	existing, err := Load(path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return Template{}, err
	}

	taken := make(map[string]bool, len(existing))
	for _, t := range existing {
		taken[t.Name] = true
	}
	template.Name = uniqueName(template.Name, taken)

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return Template{}, fmt.Errorf("failed to open template db for append: %w", err)
	}
	defer file.Close()

	line, err := json.Marshal(template)
	if err != nil {
		return Template{}, fmt.Errorf("failed to marshal template: %w", err)
	}
	if _, err := file.Write(append(line, '\n')); err != nil {
		return Template{}, fmt.Errorf("failed to append template: %w", err)
	}
	return template, nil
}

// WriteAll writes a full record set to path, one JSON object per line.
// Used by the offline repair tools, which write to a sibling file rather
// than rewriting the live log.
func WriteAll(path string, templates []Template) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create template db: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, template := range templates {
		line, err := json.Marshal(template)
		if err != nil {
			return fmt.Errorf("failed to marshal template %q: %w", template.Name, err)
		}
		if _, err := writer.Write(append(line, '\n')); err != nil {
			return fmt.Errorf("failed to write template %q: %w", template.Name, err)
		}
	}
	return writer.Flush()
}

func uniqueName(name string, taken map[string]bool) string {
	if !taken[name] {
		return name
	}
	for counter := 1; ; counter++ {
		candidate := fmt.Sprintf("%s_%d", name, counter)
		if !taken[candidate] {
			return candidate
		}
	}
}

// FindByName returns the template with the given unique name.
func FindByName(templates []Template, name string) (Template, bool) {
	for _, t := range templates {
		if t.Name == name {
			return t, true
		}
	}
	return Template{}, false
}

// FieldNames returns the template's schema fields in stable order.
func (t Template) FieldNames() []string {
	return utils.SortedKeys(t.Schema)
}
