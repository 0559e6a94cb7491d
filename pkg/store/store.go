// Package store persists inventories and detection results.
package store

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fulmenhq/gamescout/pkg/inventory"
	"github.com/fulmenhq/gamescout/pkg/logger"
	"github.com/fulmenhq/gamescout/pkg/safeio"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/afero"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"
)

//go:embed schema/inventory.schema.json
var inventorySchema []byte

// ErrInvalidDocument is wrapped by every schema validation failure.
var ErrInvalidDocument = errors.New("invalid inventory document")

// ValidationError lists the schema violations of a document.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidDocument, strings.Join(e.Problems, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalidDocument }

// tomlDocument is the root table a TOML inventory needs; TOML cannot hold a
// bare array at the top level.
type tomlDocument struct {
	Games []inventory.Entry `toml:"games"`
}

// tomlGamesKey names the only key of a TOML inventory.
const tomlGamesKey = "games"

// Encode serializes the inventory in the given format. JSON and YAML hold the
// entries as the top-level sequence; TOML holds them under "games".
func Encode(entries []inventory.Entry, format Format) ([]byte, error) {
	if entries == nil {
		entries = []inventory.Entry{}
	}
	switch format {
	case JSON:
		data, err := json.MarshalIndent(entries, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case YAML:
		var buf bytes.Buffer
		enc := yaml.NewEncoder(&buf)
		enc.SetIndent(2)
		if err := enc.Encode(entries); err != nil {
			return nil, err
		}
		if err := enc.Close(); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case TOML:
		return toml.Marshal(tomlDocument{Games: entries})
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
}

// Decode validates data against the inventory schema and decodes it.
func Decode(data []byte, format Format) ([]inventory.Entry, error) {
	asJSON, err := toJSON(data, format)
	if err != nil {
		return nil, err
	}
	if err := Validate(asJSON); err != nil {
		return nil, err
	}

	var entries []inventory.Entry
	switch format {
	case JSON:
		err = json.Unmarshal(data, &entries)
	case YAML:
		err = yaml.Unmarshal(data, &entries)
	case TOML:
		var doc tomlDocument
		err = toml.Unmarshal(data, &doc)
		entries = doc.Games
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s inventory: %w", format, err)
	}
	if entries == nil {
		entries = []inventory.Entry{}
	}
	return entries, nil
}

// toJSON converts a YAML or TOML inventory to the JSON array the schema
// describes, so one schema covers all formats.
func toJSON(data []byte, format Format) ([]byte, error) {
	var generic interface{}
	switch format {
	case JSON:
		return data, nil
	case YAML:
		if err := yaml.Unmarshal(data, &generic); err != nil {
			return nil, fmt.Errorf("failed to parse YAML inventory: %w", err)
		}
	case TOML:
		var root map[string]interface{}
		if err := toml.Unmarshal(data, &root); err != nil {
			return nil, fmt.Errorf("failed to parse TOML inventory: %w", err)
		}
		var problems []string
		for key := range root {
			if key != tomlGamesKey {
				problems = append(problems, fmt.Sprintf("(root): additional key %q is not allowed", key))
			}
		}
		games, ok := root[tomlGamesKey]
		if !ok {
			problems = append(problems, fmt.Sprintf("(root): %s is required", tomlGamesKey))
		}
		if len(problems) > 0 {
			sort.Strings(problems)
			return nil, &ValidationError{Problems: problems}
		}
		generic = games
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return json.Marshal(generic)
}

var (
	schemaOnce   sync.Once
	schemaLoaded *gojsonschema.Schema
	schemaErr    error
)

func compiledSchema() (*gojsonschema.Schema, error) {
	schemaOnce.Do(func() {
		schemaLoaded, schemaErr = gojsonschema.NewSchema(gojsonschema.NewBytesLoader(inventorySchema))
	})
	return schemaLoaded, schemaErr
}

// Validate checks a JSON inventory, a top-level array of games, against the
// embedded schema.
func Validate(data []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return fmt.Errorf("failed to compile inventory schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return &ValidationError{Problems: []string{err.Error()}}
	}
	if result.Valid() {
		return nil
	}
	problems := make([]string, 0, len(result.Errors()))
	for _, e := range result.Errors() {
		problems = append(problems, e.String())
	}
	return &ValidationError{Problems: problems}
}

// Save writes the inventory to path atomically.
func Save(fsys afero.Fs, path string, format Format, entries []inventory.Entry) error {
	data, err := Encode(entries, format)
	if err != nil {
		return fmt.Errorf("failed to encode inventory: %w", err)
	}
	if err := safeio.WriteFileAtomic(fsys, path, data); err != nil {
		return err
	}
	logger.Debug("Inventory written",
		logger.String("path", path),
		logger.String("format", string(format)),
		logger.Int("games", len(entries)))
	return nil
}

// Load reads and validates an inventory file; the format follows the extension
// and defaults to JSON.
func Load(fsys afero.Fs, path string) ([]inventory.Entry, error) {
	data, err := afero.ReadFile(fsys, path)
	if err != nil {
		return nil, fmt.Errorf("failed to read inventory %s: %w", path, err)
	}
	format, ok := FormatForPath(path)
	if !ok {
		format = JSON
	}
	return Decode(data, format)
}
