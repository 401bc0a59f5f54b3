// Package render writes completion results to a terminal.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"
	"gopkg.in/yaml.v3"
)

// NoContentMessage is printed when a response carries no answer text.
const NoContentMessage = "No response content found in the API response"

// Raw output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Options controls how an answer is printed.
type Options struct {
	// Markdown renders the answer with glamour.
	Markdown bool
	// Style is a glamour standard style name. Empty selects one from the terminal.
	Style string
	// WordWrap is the markdown wrap width. Zero keeps glamour's default.
	WordWrap int
}

// Answer prints the extracted answer under a heading.
func Answer(w io.Writer, content string, opts Options) error {
	if opts.Markdown {
		rendered, err := renderMarkdown(content, opts)
		if err != nil {
			return err
		}
		content = strings.TrimRight(rendered, "\n")
	}
	_, err := fmt.Fprintf(w, "\nGrok Response:\n%s\n", content)
	return err
}

// NoContent prints the message for a response without an answer.
func NoContent(w io.Writer) error {
	_, err := fmt.Fprintf(w, "\n%s\n", NoContentMessage)
	return err
}

// Raw writes the whole decoded response body in the given format.
func Raw(w io.Writer, body any, format string) error {
	switch strings.ToLower(format) {
	case "", FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(body); err != nil {
			return fmt.Errorf("encode response as json: %w", err)
		}
		return nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(body); err != nil {
			return fmt.Errorf("encode response as yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

func renderMarkdown(content string, opts Options) (string, error) {
	rendererOpts := []glamour.TermRendererOption{glamour.WithAutoStyle()}
	if opts.Style != "" {
		rendererOpts = []glamour.TermRendererOption{glamour.WithStandardStyle(opts.Style)}
	}
	if opts.WordWrap > 0 {
		rendererOpts = append(rendererOpts, glamour.WithWordWrap(opts.WordWrap))
	}

	r, err := glamour.NewTermRenderer(rendererOpts...)
	if err != nil {
		return "", fmt.Errorf("create markdown renderer: %w", err)
	}
	out, err := r.Render(content)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
