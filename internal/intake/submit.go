package intake

import (
	"context"
	"io"
	"log/slog"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/remote"
)

// UploadFailedMessage is shown when the engine gives no detail
const UploadFailedMessage = "Failed to upload file"

// Uploader sends a dataset to the profiling engine
type Uploader interface {
	Upload(ctx context.Context, f remote.UploadFile) (*model.UploadResponse, error)
}

// File is a candidate dataset
type File struct {
	Name     string
	Size     int64
	Body     io.Reader
	Progress func(percent int)
}

// SubmitError is a failed handoff with the text to show the user
type SubmitError struct {
	Message string
	Cause   error
}

func (e *SubmitError) Error() string {
	return "submit failed: " + e.Message
}

func (e *SubmitError) Unwrap() error {
	return e.Cause
}

// Intake validates files and submits them
type Intake struct {
	uploader Uploader
	maxBytes int64
}

// New creates an intake. maxBytes <= 0 selects DefaultMaxBytes.
func New(uploader Uploader, maxBytes int64) *Intake {
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	return &Intake{uploader: uploader, maxBytes: maxBytes}
}

// MaxBytes returns the upload size limit
func (in *Intake) MaxBytes() int64 {
	return in.maxBytes
}

// Validate runs the local pre-flight checks
func (in *Intake) Validate(name string, size int64) error {
	return Validate(name, size, in.maxBytes)
}

// Submit validates f and, if it passes, uploads it. A validation failure
// returns *model.ValidationError and issues no request.
func (in *Intake) Submit(ctx context.Context, f File) (model.JobHandle, error) {
	if err := in.Validate(f.Name, f.Size); err != nil {
		slog.Info("Upload rejected locally", "file", f.Name, "size", f.Size, "error", err)
		return model.JobHandle{}, err
	}

	resp, err := in.uploader.Upload(ctx, remote.UploadFile{
		Name:     f.Name,
		Size:     f.Size,
		Body:     f.Body,
		Progress: f.Progress,
	})
	if err != nil {
		slog.Error("Upload failed", "file", f.Name, "error", err)
		return model.JobHandle{}, &SubmitError{
			Message: remote.UserMessage(err, UploadFailedMessage),
			Cause:   err,
		}
	}

	slog.Info("Upload accepted", "file", f.Name, "job_id", resp.JobID, "size", f.Size)
	return model.JobHandle{ID: resp.JobID, DisplayName: f.Name}, nil
}
