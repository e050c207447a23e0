package strategy

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ErrInvalidOverlay is returned when an overlay fails schema or semantic
// validation.
var ErrInvalidOverlay = errors.New("invalid strategy overlay")

const overlaySchemaURL = "https://pokerkelly.dev/schemas/gto.json"

//go:embed schemas/gto.json
var overlaySchemaJSON string

var (
	overlaySchemaOnce sync.Once
	overlaySchema     *jsonschema.Schema
	overlaySchemaErr  error
)

func compiledOverlaySchema() (*jsonschema.Schema, error) {
	overlaySchemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft2020
		if err := compiler.AddResource(overlaySchemaURL, strings.NewReader(overlaySchemaJSON)); err != nil {
			overlaySchemaErr = fmt.Errorf("failed to add overlay schema: %w", err)
			return
		}
		overlaySchema, overlaySchemaErr = compiler.Compile(overlaySchemaURL)
	})
	return overlaySchema, overlaySchemaErr
}

type overlayFile struct {
	Name    string            `json:"name"`
	Preflop map[string]string `json:"preflop"`
	Default string            `json:"default"`
}

// LoadOverlay parses a GTO chart:
//
//	{"name": "solver-100bb", "preflop": {"AA": "Raise 3x", "72o": "Fold"}, "default": "Fold"}
//
// The document is validated against an embedded JSON schema, then every
// notation must be canonical (higher rank first, pairs unmarked). Hands not
// listed take "default", which is "Fold" when omitted.
func LoadOverlay(data []byte) (*Chart, error) {
	schema, err := compiledOverlaySchema()
	if err != nil {
		return nil, err
	}

	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOverlay, err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOverlay, err)
	}

	var f overlayFile
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidOverlay, err)
	}
	if f.Default == "" {
		f.Default = "Fold"
	}

	fallback, err := ParseAction(f.Default)
	if err != nil {
		return nil, fmt.Errorf("%w: default: %w", ErrInvalidOverlay, err)
	}
	chart := &Chart{
		profile:  GTO,
		name:     f.Name,
		hands:    make(map[string]Action, len(f.Preflop)),
		fallback: fallback,
	}
	for notation, label := range f.Preflop {
		if !canonicalNotation(notation) {
			return nil, fmt.Errorf("%w: %q is not canonical hand notation", ErrInvalidOverlay, notation)
		}
		a, err := ParseAction(label)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrInvalidOverlay, notation, err)
		}
		chart.hands[notation] = a
	}
	return chart, nil
}

// LoadOverlayFile reads and validates an overlay from disk.
func LoadOverlayFile(path string) (*Chart, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read overlay %s: %w", path, err)
	}
	chart, err := LoadOverlay(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return chart, nil
}

func canonicalNotation(s string) bool {
	const ranks = "23456789TJQKA"
	if len(s) < 2 || len(s) > 3 {
		return false
	}
	hi, lo := strings.IndexByte(ranks, s[0]), strings.IndexByte(ranks, s[1])
	if hi < 0 || lo < 0 {
		return false
	}
	if len(s) == 2 {
		return hi == lo
	}
	return hi > lo && (s[2] == 's' || s[2] == 'o')
}
