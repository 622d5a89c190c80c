package cli

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"sigs.k8s.io/yaml"
)

var (
	out    io.Writer = os.Stdout
	errOut io.Writer = os.Stderr
)

// printResult prints v as JSON with --json and as YAML otherwise.
func printResult(v any) error {
	if jsonOutput {
		printJSON(v)
		return nil
	}
	yamlBytes, err := yaml.Marshal(v)
	if err != nil {
		return fmt.Errorf("failed to convert to YAML: %v", err)
	}
	fmt.Fprint(out, string(yamlBytes))
	return nil
}

// printTable writes rows under headers, column aligned.
func printTable(headers []string, rows [][]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	upper := make([]string, len(headers))
	for i, h := range headers {
		upper[i] = strings.ToUpper(h)
	}
	fmt.Fprintln(w, strings.Join(upper, "\t"))
	for _, row := range rows {
		fmt.Fprintln(w, strings.Join(row, "\t"))
	}
	w.Flush()
}

// printFields writes label/value pairs, one per line.
func printFields(fields [][2]string) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, f := range fields {
		fmt.Fprintf(w, "%s:\t%s\n", f[0], f[1])
	}
	w.Flush()
}

var titleCaser = cases.Title(language.English)

// metricLabel turns a metric key like "cervical_cancer_screened" into
// "Cervical Cancer Screened".
func metricLabel(metric string) string {
	if label, ok := metricLabels[metric]; ok {
		return label
	}
	return titleCaser.String(strings.ReplaceAll(metric, "_", " "))
}

var metricLabels = map[string]string{
	"new_clients": "New ANC Clients",
	"completed4":  "4th ANC Visit",
	"completed8":  "8th ANC Visit",
	"anc12":       "ANC Before 12 Weeks",
	"ipt3":        "IPT 3rd Dose",
	"fgm":         "FGM Cases",
	"preg_adol":   "Pregnant Adolescents (10-19)",
	"preg_youth":  "Pregnant Youth (20-24)",
}

func formatNumber(v float64) string {
	return fmt.Sprintf("%g", v)
}
