package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const (
	formatText = "text"
	formatJSON = "json"
	formatYAML = "yaml"
)

// OutputOptions selects between human output and structured output.
type OutputOptions struct {
	Format string
}

func AddOutputArg(cmd *cobra.Command, oo *OutputOptions) {
	cmd.Flags().StringVarP(&oo.Format, "output", "o", formatText,
		"Output format. One of 'text', 'json' or 'yaml'.")
}

// Validate rejects unknown formats before any request is made.
func (oo *OutputOptions) Validate() error {
	switch oo.format() {
	case formatText, formatJSON, formatYAML:
		return nil
	default:
		return fmt.Errorf("unknown output format %q", oo.Format)
	}
}

// Structured reports whether v should be encoded instead of rendered as text.
func (oo *OutputOptions) Structured() bool {
	f := oo.format()
	return f == formatJSON || f == formatYAML
}

// Write encodes v as JSON or YAML. YAML keys follow the JSON field names.
func (oo *OutputOptions) Write(w io.Writer, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	if oo.format() != formatYAML {
		_, err = fmt.Fprintln(w, string(b))
		return err
	}

	var generic any
	if err := json.Unmarshal(b, &generic); err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	y, err := yaml.Marshal(generic)
	if err != nil {
		return fmt.Errorf("encode output: %w", err)
	}
	_, err = w.Write(y)
	return err
}

// HandleError prints err as a JSON object in json mode and swallows it, so
// scripts always receive parseable output.
func (oo *OutputOptions) HandleError(w io.Writer, err error) error {
	if err == nil || oo.format() != formatJSON {
		return err
	}
	b, merr := json.Marshal(map[string]string{"error": err.Error()})
	if merr != nil {
		return err
	}
	_, _ = fmt.Fprintln(w, string(b))
	return nil
}

func (oo *OutputOptions) format() string {
	f := strings.ToLower(strings.TrimSpace(oo.Format))
	if f == "" {
		return formatText
	}
	return f
}

func Wrap80(text string) string {
	return Wrap(text, 80)
}

func Wrap(text string, width int) string {
	words := strings.Fields(strings.TrimSpace(text))
	if len(words) == 0 {
		return text
	}
	var b strings.Builder
	b.WriteString(words[0])
	count := width - len(words[0])
	for _, word := range words[1:] {
		if len(word)+1 > count {
			b.WriteString("\n" + word)
			count = width - len(word)
			continue
		}
		b.WriteString(" " + word)
		count -= 1 + len(word)
	}
	return b.String()
}
