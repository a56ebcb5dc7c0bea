package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// printJSON writes v as JSON, indented when stdout is a terminal.
func printJSON(cmd *cobra.Command, v any) error {
	var (
		data []byte
		err  error
	)
	if isTerminal(cmd.OutOrStdout()) {
		data, err = json.MarshalIndent(v, "", "  ")
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return fmt.Errorf("failed to marshal output: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// newTable returns a borderless table writing to the command output.
func newTable(cmd *cobra.Command, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetBorder(false)
	table.SetAutoWrapText(false)
	return table
}

// parseKeyValues turns repeated key=value flags into a map.
func parseKeyValues(pairs []string) (map[string]any, error) {
	out := make(map[string]any, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid filter %q: expected key=value", pair)
		}
		out[key] = value
	}
	return out, nil
}

// parseObject decodes a JSON object flag. "@file" reads the object from a
// file and "-" from stdin. An empty value yields nil.
func parseObject(cmd *cobra.Command, name, value string) (map[string]any, error) {
	if value == "" {
		return nil, nil
	}

	raw := []byte(value)
	switch {
	case value == "-":
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading --%s from stdin: %w", name, err)
		}
		raw = data
	case strings.HasPrefix(value, "@"):
		data, err := os.ReadFile(value[1:])
		if err != nil {
			return nil, fmt.Errorf("reading --%s: %w", name, err)
		}
		raw = data
	}

	var obj map[string]any
	if err := json.Unmarshal(raw, &obj); err != nil {
		return nil, fmt.Errorf("--%s must be a JSON object: %w", name, err)
	}
	return obj, nil
}

// readBody reads a raw notification body the same way parseObject reads
// objects, without decoding it.
func readBody(cmd *cobra.Command, value string) ([]byte, error) {
	switch {
	case value == "-":
		return io.ReadAll(cmd.InOrStdin())
	case strings.HasPrefix(value, "@"):
		return os.ReadFile(value[1:])
	default:
		return []byte(value), nil
	}
}
