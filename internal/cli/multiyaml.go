package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ParseMultiYAML reads filename ("-" for stdin), expands {{ .ENV.VAR }}
// placeholders and parses every YAML or JSON document in it.
func ParseMultiYAML(filename string) ([]map[string]any, error) {
	data, err := readInput(filename)
	if err != nil {
		return nil, err
	}

	data = replaceTabsWithSpaces(data)

	data, err = PreprocessYAML(data)
	if err != nil {
		return nil, err
	}

	return ParseMultiYAMLFromBytes(data)
}

// ParseMultiYAMLFromBytes parses byte data containing multiple YAML documents
// Returns a slice of maps containing the parsed YAML documents
func ParseMultiYAMLFromBytes(data []byte) ([]map[string]any, error) {
	// If data is empty or contains only whitespace or only --- separators, return empty slice
	content := strings.TrimSpace(string(data))
	if len(content) == 0 || strings.Trim(content, "- \n\t") == "" {
		return []map[string]any{}, nil
	}

	decoder := yaml.NewDecoder(bytes.NewReader(data))
	result := []map[string]any{}

	for {
		var doc any
		if err := decoder.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("failed to decode YAML: %w", err)
		}
		// Skip empty documents (common with trailing ---)
		if doc == nil {
			continue
		}
		m, err := toStringMap(doc)
		if err != nil {
			return nil, err
		}
		if len(m) > 0 {
			result = append(result, m)
		}
	}

	return result, nil
}

func readInput(filename string) ([]byte, error) {
	if filename == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return nil, fmt.Errorf("failed to read stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// toStringMap converts a decoded document into a JSON-encodable object.
func toStringMap(input any) (map[string]any, error) {
	converted, err := convertRecursively(input)
	if err != nil {
		return nil, err
	}
	result, ok := converted.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("expected each document to be an object, got %T", converted)
	}
	return result, nil
}

func convertRecursively(input any) (any, error) {
	switch v := input.(type) {
	case map[any]any:
		result := make(map[string]any, len(v))
		for k, val := range v {
			strKey, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("non-string map key: %v (type %T)", k, k)
			}
			convertedVal, err := convertRecursively(val)
			if err != nil {
				return nil, err
			}
			result[strKey] = convertedVal
		}
		return result, nil

	case map[string]any:
		for k, val := range v {
			convertedVal, err := convertRecursively(val)
			if err != nil {
				return nil, err
			}
			v[k] = convertedVal
		}
		return v, nil

	case []any:
		for i, elem := range v {
			convertedElem, err := convertRecursively(elem)
			if err != nil {
				return nil, err
			}
			v[i] = convertedElem
		}
		return v, nil

	default:
		return v, nil
	}
}

// replaceTabsWithSpaces replaces all tab characters with four spaces in a byte slice
func replaceTabsWithSpaces(b []byte) []byte {
	return bytes.ReplaceAll(b, []byte("\t"), []byte("    "))
}
