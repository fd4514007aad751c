// Package export downloads rendered reports for a job and saves them
// under a filename taken from the engine's response.
package export

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dandantas/profilewatch/internal/remote"
)

// Export formats
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
	FormatPDF  = "pdf"
	FormatXLSX = "xlsx"
)

var (
	// ErrUnsupportedFormat is returned for formats the engine does not render
	ErrUnsupportedFormat = errors.New("unsupported export format")
	// ErrExportInFlight is returned while another export of the job runs
	ErrExportInFlight = errors.New("an export is already in progress")
)

var dispositionFilename = regexp.MustCompile(`filename="?([^"]+)"?`)

// Downloader is the remote call behind Dispatcher
type Downloader interface {
	GetReport(ctx context.Context, jobID, format string) (*remote.Report, error)
}

// Outcome describes a saved export
type Outcome struct {
	Format      string `json:"format"`
	Filename    string `json:"filename"`
	Path        string `json:"path"`
	ContentType string `json:"content_type"`
	Label       string `json:"label"`
	Message     string `json:"message"`
	Bytes       int    `json:"bytes"`
}

// Failure wraps an export error with its user-facing message
type Failure struct {
	Format  string
	Message string
	Cause   error
}

func (f *Failure) Error() string {
	return fmt.Sprintf("export %s: %v", f.Format, f.Cause)
}

func (f *Failure) Unwrap() error {
	return f.Cause
}

// Dispatcher runs at most one export per job at a time
type Dispatcher struct {
	remote Downloader
	saver  Saver

	mu       sync.Mutex
	inFlight map[string]string
}

// NewDispatcher creates a dispatcher that saves through saver
func NewDispatcher(remote Downloader, saver Saver) *Dispatcher {
	return &Dispatcher{
		remote:   remote,
		saver:    saver,
		inFlight: make(map[string]string),
	}
}

// Exporting returns the format currently exporting for jobID, if any
func (d *Dispatcher) Exporting(jobID string) (string, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	format, ok := d.inFlight[jobID]
	return format, ok
}

// Export downloads jobID in format and saves it
func (d *Dispatcher) Export(ctx context.Context, jobID, format string) (*Outcome, error) {
	format = strings.ToLower(format)
	if !remoteFormat(format) {
		return nil, ErrUnsupportedFormat
	}
	release, err := d.acquire(jobID, format)
	if err != nil {
		return nil, err
	}
	defer release()

	report, err := d.remote.GetReport(ctx, jobID, format)
	if err != nil {
		return nil, d.fail(jobID, format, err)
	}

	contentType := report.ContentType
	if contentType == "" {
		contentType = mimetype.Detect(report.Body).String()
	}
	filename := Filename(report.ContentDisposition, format)

	path, err := d.saver.Save(ctx, filename, report.Body)
	if err != nil {
		return nil, d.fail(jobID, format, err)
	}

	label := Label(contentType, format)
	outcome := &Outcome{
		Format:      format,
		Filename:    filename,
		Path:        path,
		ContentType: contentType,
		Label:       label,
		Message:     label + " exported successfully",
		Bytes:       len(report.Body),
	}
	slog.Info("Export saved",
		"job_id", jobID,
		"format", format,
		"path", path,
		"content_type", contentType,
	)
	return outcome, nil
}

// Save stores locally built bytes under the same in-flight guard
func (d *Dispatcher) Save(ctx context.Context, jobID, format, filename, contentType string, data []byte) (*Outcome, error) {
	release, err := d.acquire(jobID, format)
	if err != nil {
		return nil, err
	}
	defer release()

	path, err := d.saver.Save(ctx, baseName(filename, format), data)
	if err != nil {
		return nil, d.fail(jobID, format, err)
	}
	label := Label(contentType, format)
	return &Outcome{
		Format:      format,
		Filename:    filepath.Base(path),
		Path:        path,
		ContentType: contentType,
		Label:       label,
		Message:     label + " exported successfully",
		Bytes:       len(data),
	}, nil
}

func (d *Dispatcher) acquire(jobID, format string) (func(), error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, busy := d.inFlight[jobID]; busy {
		return nil, ErrExportInFlight
	}
	d.inFlight[jobID] = format
	return func() {
		d.mu.Lock()
		delete(d.inFlight, jobID)
		d.mu.Unlock()
	}, nil
}

func (d *Dispatcher) fail(jobID, format string, err error) error {
	slog.Error("Export failed",
		"job_id", jobID,
		"format", format,
		"error", err.Error(),
	)
	return &Failure{
		Format:  format,
		Message: "Failed to export " + strings.ToUpper(format),
		Cause:   err,
	}
}

func remoteFormat(format string) bool {
	switch format {
	case FormatJSON, FormatCSV, FormatPDF:
		return true
	}
	return false
}

// Filename extracts the suggested filename from a Content-Disposition
// header, falling back to profile_export.<format>.
func Filename(disposition, format string) string {
	if m := dispositionFilename.FindStringSubmatch(disposition); len(m) == 2 {
		return baseName(m[1], format)
	}
	return fallbackName(format)
}

// Label names what was actually exported. The engine serves its PDF
// report as HTML, so the content type wins over the requested format.
func Label(contentType, format string) string {
	if strings.Contains(strings.ToLower(contentType), "html") {
		return "HTML"
	}
	return strings.ToUpper(format)
}

func baseName(name, format string) string {
	name = filepath.Base(filepath.Clean("/" + strings.ReplaceAll(name, `\`, "/")))
	if name == "/" || name == "." || name == "" {
		return fallbackName(format)
	}
	return name
}

func fallbackName(format string) string {
	return "profile_export." + format
}
