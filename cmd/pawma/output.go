package main

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

const (
	outputText = "text"
	outputJSON = "json"
	outputYAML = "yaml"
)

type outputFormat string

func parseOutput(s string) (outputFormat, error) {
	switch s {
	case outputText, outputJSON, outputYAML:
		return outputFormat(s), nil
	default:
		return "", usageError("unknown output format %q (want text, json or yaml)", s)
	}
}

// render writes v as JSON or YAML. Text rendering is per command.
func render(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("render: unsupported format %q", format)
	}
}
