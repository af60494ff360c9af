package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// Write encodes the trace to w as "yaml" or "json".
func (st *SimulationTrace) Write(w io.Writer, format string) error {
	switch format {
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("encoding trace: %w", err)
		}
		return enc.Close()
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(st); err != nil {
			return fmt.Errorf("encoding trace: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown trace format %q; valid: yaml, json", format)
	}
}

// SaveFile writes the trace to path, picking the format from the extension
// (.json for JSON, anything else for YAML).
func (st *SimulationTrace) SaveFile(path string) error {
	format := "yaml"
	if strings.EqualFold(filepath.Ext(path), ".json") {
		format = "json"
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating trace file: %w", err)
	}
	if err := st.Write(f, format); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

// LoadFile reads a trace written by SaveFile.
func LoadFile(path string) (*SimulationTrace, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading trace file: %w", err)
	}
	var st SimulationTrace
	if strings.EqualFold(filepath.Ext(path), ".json") {
		err = json.Unmarshal(data, &st)
	} else {
		err = yaml.Unmarshal(data, &st)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing trace file: %w", err)
	}
	return &st, nil
}
