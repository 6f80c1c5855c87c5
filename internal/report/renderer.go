// File: internal/report/renderer.go
package report

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"os"

	jsoniter "github.com/json-iterator/go"
)

// Renderer writes the final run report to an output.
type Renderer interface {
	// Write serializes the run. It is called exactly once per run.
	Write(run *Run) error
	// Close finalizes the report and releases the underlying writer.
	Close() error
}

// nopWriteCloser wraps an io.Writer and provides a no-op Close method so
// stdout is never closed by a renderer.
type nopWriteCloser struct {
	io.Writer
}

func (nwc *nopWriteCloser) Close() error { return nil }

// NewRenderer creates a renderer for the given format and output path. An
// empty path, "-" or "stdout" writes to standard output.
func NewRenderer(format, outputPath string) (Renderer, error) {
	var writer io.WriteCloser
	isStdOut := outputPath == "" || outputPath == "-" || outputPath == "stdout"

	if isStdOut {
		writer = &nopWriteCloser{os.Stdout}
	} else {
		f, err := os.Create(outputPath)
		if err != nil {
			return nil, fmt.Errorf("failed to create output file %s: %w", outputPath, err)
		}
		writer = f
	}

	switch format {
	case "html":
		return newHTMLRenderer(writer), nil
	case "json":
		return newJSONRenderer(writer), nil
	default:
		if !isStdOut {
			writer.Close()
		}
		return nil, fmt.Errorf("unsupported report format: %s", format)
	}
}

// -- HTML --

// reportTemplate is the minimal styled table document the run report has
// always been delivered as. It stays human-readable and is not meant for
// machine parsing.
var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>Enrollment Automation Report</title>
<style>
body { font-family: sans-serif; margin: 2em; }
table { border-collapse: collapse; }
th, td { border: 1px solid #999; padding: 0.4em 0.8em; text-align: left; }
th { background: #eee; }
td.PASS { color: #1a7f37; }
td.FAIL { color: #b42318; }
td.INFO { color: #555; }
</style>
</head>
<body>
<h2>Enrollment Automation Report</h2>
<p>Run {{.RunID}} &mdash; started {{.StartedAt.Format "2006-01-02 15:04:05 MST"}}, finished {{.FinishedAt.Format "2006-01-02 15:04:05 MST"}}</p>
<table>
<tr><th>Step</th><th>Status</th></tr>
{{- range .Steps}}
<tr><td>{{.Description}}</td><td class="{{.Status}}">{{.Status}}</td></tr>
{{- end}}
</table>
</body>
</html>
`))

type htmlRenderer struct {
	writer io.WriteCloser
}

func newHTMLRenderer(writer io.WriteCloser) *htmlRenderer {
	return &htmlRenderer{writer: writer}
}

// Write renders the whole document into memory first so the output file is
// produced in a single write.
func (h *htmlRenderer) Write(run *Run) error {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, run); err != nil {
		return fmt.Errorf("failed to render report template: %w", err)
	}
	if _, err := h.writer.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (h *htmlRenderer) Close() error {
	return h.writer.Close()
}

// -- JSON --

var json = jsoniter.ConfigCompatibleWithStandardLibrary

type jsonRenderer struct {
	writer io.WriteCloser
}

func newJSONRenderer(writer io.WriteCloser) *jsonRenderer {
	return &jsonRenderer{writer: writer}
}

func (j *jsonRenderer) Write(run *Run) error {
	out, err := json.MarshalIndent(run, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal report: %w", err)
	}
	out = append(out, '\n')
	if _, err := j.writer.Write(out); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	return nil
}

func (j *jsonRenderer) Close() error {
	return j.writer.Close()
}
