package intake

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dandantas/profilewatch/internal/model"
	"github.com/dandantas/profilewatch/internal/remote"
)

type fakeUploader struct {
	calls int
	resp  *model.UploadResponse
	err   error
}

func (f *fakeUploader) Upload(_ context.Context, _ remote.UploadFile) (*model.UploadResponse, error) {
	f.calls++
	return f.resp, f.err
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		file   string
		size   int64
		reason string
	}{
		{"csv within limit", "data.csv", 1024, ""},
		{"upper case extension", "DATA.XLSX", 1024, ""},
		{"legacy excel", "old.xls", 1024, ""},
		{"json exactly at limit", "rows.json", DefaultMaxBytes, ""},
		{"one byte over", "rows.json", DefaultMaxBytes + 1, model.ReasonTooLarge},
		{"text file", "notes.txt", 10, model.ReasonUnsupportedType},
		{"no extension", "README", 10, model.ReasonUnsupportedType},
		{"type checked before size", "huge.parquet", DefaultMaxBytes * 2, model.ReasonUnsupportedType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.file, tt.size, DefaultMaxBytes)
			if tt.reason == "" {
				assert.NoError(t, err)
				return
			}
			var validation *model.ValidationError
			require.ErrorAs(t, err, &validation)
			assert.Equal(t, tt.reason, validation.Reason)
		})
	}
}

func TestSubmitRejectsOversizedFileWithoutRequest(t *testing.T) {
	uploader := &fakeUploader{resp: &model.UploadResponse{JobID: "never"}}
	in := New(uploader, DefaultMaxBytes)

	_, err := in.Submit(context.Background(), File{Name: "big.csv", Size: 60 * 1024 * 1024, Body: strings.NewReader("")})

	var validation *model.ValidationError
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, model.ReasonTooLarge, validation.Reason)
	assert.Equal(t, 0, uploader.calls)
}

func TestSubmitReturnsHandle(t *testing.T) {
	uploader := &fakeUploader{resp: &model.UploadResponse{JobID: "job-7", Status: "processing"}}
	in := New(uploader, 0)

	handle, err := in.Submit(context.Background(), File{Name: "sales.csv", Size: 10, Body: strings.NewReader("a\n1\n")})

	require.NoError(t, err)
	assert.Equal(t, model.JobHandle{ID: "job-7", DisplayName: "sales.csv"}, handle)
	assert.Equal(t, 1, uploader.calls)
	assert.Equal(t, DefaultMaxBytes, in.MaxBytes())
}

func TestSubmitSurfacesEngineDetail(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"detail", &remote.RemoteError{Op: "upload", StatusCode: 429, Detail: "Too many uploads"}, "Too many uploads"},
		{"no detail", &remote.RemoteError{Op: "upload", StatusCode: 500}, UploadFailedMessage},
		{"transport", &remote.TransportError{Op: "upload", Cause: errors.New("refused")}, UploadFailedMessage},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := New(&fakeUploader{err: tt.err}, 0)

			_, err := in.Submit(context.Background(), File{Name: "a.csv", Size: 1, Body: strings.NewReader("x")})

			var submit *SubmitError
			require.ErrorAs(t, err, &submit)
			assert.Equal(t, tt.want, submit.Message)
			assert.ErrorIs(t, err, tt.err)
		})
	}
}

func TestFileKindAndSize(t *testing.T) {
	kind, ok := FileKind("book.XLS")
	assert.True(t, ok)
	assert.Equal(t, KindExcel, kind)

	_, ok = FileKind("image.png")
	assert.False(t, ok)

	assert.Equal(t, "512 B", FormatSize(512))
	assert.Equal(t, "1.5 KB", FormatSize(1536))
	assert.Equal(t, "2.00 MB", FormatSize(2*1024*1024))
}
