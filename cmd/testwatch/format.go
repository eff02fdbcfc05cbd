package main

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// OutputFormat represents the output format type
type OutputFormat string

const (
	FormatJSON  OutputFormat = "json"
	FormatYAML  OutputFormat = "yaml"
	FormatHuman OutputFormat = "human"
)

// FormatResponse renders a response in the requested machine format.
// Human rendering is per-command.
func FormatResponse(resp interface{}, format OutputFormat) (string, error) {
	switch format {
	case FormatJSON:
		data, err := json.MarshalIndent(resp, "", "  ")
		if err != nil {
			return "", fmt.Errorf("failed to marshal JSON: %w", err)
		}
		return string(data), nil
	case FormatYAML:
		data, err := yaml.Marshal(resp)
		if err != nil {
			return "", fmt.Errorf("failed to marshal YAML: %w", err)
		}
		return string(data), nil
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// printResponse writes resp in the requested format, using human as the
// fallback renderer supplied by the command.
func printResponse(resp interface{}, format string, human func() string) error {
	switch OutputFormat(format) {
	case FormatJSON, FormatYAML:
		out, err := FormatResponse(resp, OutputFormat(format))
		if err != nil {
			return err
		}
		fmt.Println(out)
	default:
		fmt.Println(human())
	}
	return nil
}
