package cli

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMultiYAML(t *testing.T) {
	tmpDir := t.TempDir()
	chdir(t, tmpDir)

	tests := []struct {
		name     string
		content  string
		expected []map[string]any
		wantErr  bool
	}{
		{
			name: "two patients",
			content: `---
name: Achieng Odhiambo
weeks_pregnant: 12
---
name: Mary Wambui
weeks_pregnant: 20`,
			expected: []map[string]any{
				{"name": "Achieng Odhiambo", "weeks_pregnant": 12},
				{"name": "Mary Wambui", "weeks_pregnant": 20},
			},
		},
		{
			name: "nested values",
			content: `name: Achieng
preferred_hospitals_ids: [3, 12]
emergency:
  name: Otieno
  phone: "0711000009"`,
			expected: []map[string]any{
				{
					"name":                    "Achieng",
					"preferred_hospitals_ids": []any{3, 12},
					"emergency": map[string]any{
						"name":  "Otieno",
						"phone": "0711000009",
					},
				},
			},
		},
		{
			name:    "json document",
			content: `{"name": "Fatuma", "phone": "0733000003"}`,
			expected: []map[string]any{
				{"name": "Fatuma", "phone": "0733000003"},
			},
		},
		{
			name: "empty documents are skipped",
			content: `---
name: doc1
---
---
name: doc2`,
			expected: []map[string]any{
				{"name": "doc1"},
				{"name": "doc2"},
			},
		},
		{name: "empty file", content: ``, expected: []map[string]any{}},
		{name: "only whitespace", content: "   \n\t  \n", expected: []map[string]any{}},
		{name: "only separators", content: "---\n---\n---", expected: []map[string]any{}},
		{name: "invalid YAML", content: `invalid: yaml: content:`, wantErr: true},
		{name: "top-level list", content: "- a\n- b", wantErr: true},
		{
			name: "one invalid document",
			content: `---
name: valid_doc
---
invalid: yaml: content: with: colons
`,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tmpFile := filepath.Join(tmpDir, "test.yaml")
			assert.NoError(t, os.WriteFile(tmpFile, []byte(tt.content), 0o644))

			result, err := ParseMultiYAML(tmpFile)
			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, result)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}

	t.Run("file not found", func(t *testing.T) {
		result, err := ParseMultiYAML(filepath.Join(tmpDir, "nonexistent.yaml"))
		assert.Error(t, err)
		assert.Nil(t, result)
	})
}

func TestConvertRecursively(t *testing.T) {
	converted, err := toStringMap(map[any]any{
		"hospital": map[any]any{"name": "Ahero", "ids": []any{map[any]any{"id": 1}}},
	})
	assert.NoError(t, err)
	assert.Equal(t, map[string]any{
		"hospital": map[string]any{"name": "Ahero", "ids": []any{map[string]any{"id": 1}}},
	}, converted)

	_, err = toStringMap(map[any]any{1: "x"})
	assert.Error(t, err)
}
