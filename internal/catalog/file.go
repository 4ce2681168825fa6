package catalog

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/abhisek/parsons/internal/proof"
)

// SupportedMajor is the only schemaVersion major accepted by Parse.
const SupportedMajor = "v1"

//go:embed schema.json
var fileSchemaJSON []byte

const fileSchemaURL = "https://parsons.local/schema/puzzle-file.json"

var (
	fileSchemaOnce sync.Once
	fileSchema     *jsonschema.Schema
	fileSchemaErr  error
)

func compiledFileSchema() (*jsonschema.Schema, error) {
	fileSchemaOnce.Do(func() {
		var doc any
		if err := json.Unmarshal(fileSchemaJSON, &doc); err != nil {
			fileSchemaErr = fmt.Errorf("parse puzzle file schema: %w", err)
			return
		}
		c := jsonschema.NewCompiler()
		if err := c.AddResource(fileSchemaURL, doc); err != nil {
			fileSchemaErr = fmt.Errorf("add puzzle file schema: %w", err)
			return
		}
		fileSchema, fileSchemaErr = c.Compile(fileSchemaURL)
	})
	return fileSchema, fileSchemaErr
}

// File is one content file: a batch of puzzles sharing a category.
type File struct {
	SchemaVersion string         `json:"schemaVersion"`
	Category      proof.Category `json:"category"`
	Description   string         `json:"description,omitempty"`
	Puzzles       []proof.Puzzle `json:"puzzles"`
}

// Parse decodes and checks a content file. The format is chosen by the
// extension of name: .json, .yaml or .yml. Every puzzle in the file
// inherits its category, and puzzles without a difficulty get "medium".
// All problems found in the file are returned together.
func Parse(name string, data []byte) (*File, error) {
	doc, err := decode(name, data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}

	schema, err := compiledFileSchema()
	if err != nil {
		return nil, err
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%s: schema validation failed: %w", name, err)
	}

	// The document is known to be well formed; re-encode it so a single
	// set of json tags drives decoding for every input format.
	normalized, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	var f File
	if err := json.Unmarshal(normalized, &f); err != nil {
		return nil, fmt.Errorf("%s: decode: %w", name, err)
	}

	var problems []error
	if !semver.IsValid(f.SchemaVersion) || semver.Major(f.SchemaVersion) != SupportedMajor {
		problems = append(problems, fmt.Errorf("unsupported schemaVersion %q (want %s.x.y)", f.SchemaVersion, SupportedMajor))
	}

	seen := make(map[string]bool, len(f.Puzzles))
	for i := range f.Puzzles {
		p := &f.Puzzles[i]
		p.Category = f.Category
		if p.Difficulty == "" {
			p.Difficulty = proof.DifficultyMedium
		}
		if seen[p.ID] {
			problems = append(problems, fmt.Errorf("duplicate puzzle id %q", p.ID))
		}
		seen[p.ID] = true
		if err := p.Check(); err != nil {
			problems = append(problems, err)
		}
	}

	if len(problems) > 0 {
		return nil, fmt.Errorf("%s: %w", name, errors.Join(problems...))
	}
	return &f, nil
}

// decode turns JSON or YAML bytes into a generic document suitable for
// schema validation.
func decode(name string, data []byte) (any, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json":
		var doc any
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse JSON: %w", err)
		}
		return doc, nil
	case ".yaml", ".yml":
		var raw any
		if err := yaml.Unmarshal(data, &raw); err != nil {
			return nil, fmt.Errorf("parse YAML: %w", err)
		}
		// Round-trip through JSON so numbers and maps have the shapes the
		// schema validator expects.
		b, err := json.Marshal(raw)
		if err != nil {
			return nil, fmt.Errorf("convert YAML: %w", err)
		}
		var doc any
		if err := json.Unmarshal(b, &doc); err != nil {
			return nil, fmt.Errorf("convert YAML: %w", err)
		}
		return doc, nil
	default:
		return nil, fmt.Errorf("unsupported file type %q", filepath.Ext(name))
	}
}

// IsContentFile reports whether name has an extension Parse understands.
func IsContentFile(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".json", ".yaml", ".yml":
		return true
	}
	return false
}
