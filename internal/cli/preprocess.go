package cli

import (
	"bytes"
	"fmt"
	"os"
	"regexp"
	"strings"
	"text/template"

	"github.com/joho/godotenv"
)

// TemplateContext is the data available to input file templates.
type TemplateContext struct {
	ENV map[string]string
}

var missingKeyRegex = regexp.MustCompile(`map has no entry for key "(.*?)"`)

// PreprocessYAML replaces {{ .ENV.VAR }} placeholders with values from the
// environment or a .env file in the working directory. The environment wins
// over .env.
func PreprocessYAML(inputRaw []byte) ([]byte, error) {
	envMap, err := godotenv.Read()
	if err != nil {
		// no .env file
		envMap = map[string]string{}
	}
	for _, e := range os.Environ() {
		k, v, ok := strings.Cut(e, "=")
		if ok {
			envMap[k] = v
		}
	}

	tmpl, err := template.New("input").Option("missingkey=error").Parse(string(inputRaw))
	if err != nil {
		return nil, err
	}

	var output bytes.Buffer
	if err := tmpl.Execute(&output, TemplateContext{ENV: envMap}); err != nil {
		if matches := missingKeyRegex.FindStringSubmatch(err.Error()); len(matches) == 2 {
			return nil, fmt.Errorf("missing environment variable: %s (set it in your shell or .env file)", matches[1])
		}
		return nil, fmt.Errorf("template error: %w", err)
	}

	return output.Bytes(), nil
}
