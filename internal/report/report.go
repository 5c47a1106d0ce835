// Package report renders a scan's findings as console, json, csv, or
// sarif output. A functional-options Manager selects the per-format
// Writer; SARIF documents come from github.com/owenrumney/go-sarif/v2 and
// console severity coloring from github.com/fatih/color.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nyx-scan/nyx/internal/model"
)

// Format names a renderer, matching the default_format config values.
type Format string

const (
	FormatConsole Format = "console"
	FormatJSON    Format = "json"
	FormatCSV     Format = "csv"
	FormatSARIF   Format = "sarif"
)

// ParseFormat parses a --format flag value or config default_format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(s) {
	case "", "console":
		return FormatConsole, nil
	case "json":
		return FormatJSON, nil
	case "csv":
		return FormatCSV, nil
	case "sarif":
		return FormatSARIF, nil
	default:
		return "", fmt.Errorf("report: unsupported format %q", s)
	}
}

// Writer renders a set of findings to w.
type Writer interface {
	Write(w io.Writer, findings []model.Finding) error
}

// Manager selects and configures a Writer.
type Manager struct {
	format Format
	color  bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithFormat sets the render format.
func WithFormat(f Format) Option {
	return func(m *Manager) { m.format = f }
}

// WithColor enables ANSI severity coloring for the console writer.
func WithColor(enabled bool) Option {
	return func(m *Manager) { m.color = enabled }
}

// NewManager builds a Manager defaulting to console, uncolored output.
func NewManager(opts ...Option) *Manager {
	m := &Manager{format: FormatConsole}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Render writes findings through the Manager's configured format.
func (m *Manager) Render(w io.Writer, findings []model.Finding) error {
	writer, err := m.writer()
	if err != nil {
		return err
	}
	return writer.Write(w, findings)
}

func (m *Manager) writer() (Writer, error) {
	switch m.format {
	case FormatConsole:
		return &ConsoleWriter{Color: m.color}, nil
	case FormatJSON:
		return &JSONWriter{}, nil
	case FormatCSV:
		return &CSVWriter{}, nil
	case FormatSARIF:
		return &SARIFWriter{}, nil
	default:
		return nil, fmt.Errorf("report: unsupported format %q", m.format)
	}
}
