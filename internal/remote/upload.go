package remote

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"mime/multipart"
	"net/http"

	"github.com/dandantas/profilewatch/internal/model"
)

// UploadFile is a dataset handed to the engine
type UploadFile struct {
	Name string
	Size int64
	Body io.Reader

	// Progress, when set, receives the percentage of the body sent so far.
	// It is called from the goroutine streaming the request body.
	Progress func(percent int)
}

// Upload streams the file as multipart field "file" and returns the job
// the engine created for it.
func (c *Client) Upload(ctx context.Context, f UploadFile) (*model.UploadResponse, error) {
	const op = "upload"
	ctx, cancel := bound(ctx, c.timeouts.Transfer)
	defer cancel()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)

	go func() {
		part, err := mw.CreateFormFile("file", f.Name)
		if err == nil {
			_, err = io.Copy(part, &progressReader{r: f.Body, total: f.Size, report: f.Progress, last: -1})
		}
		if err == nil {
			err = mw.Close()
		}
		pw.CloseWithError(err)
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint(nil, "api", "upload"), pr)
	if err != nil {
		pr.CloseWithError(err)
		return nil, fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Accept", "application/json")

	resp, err := c.do(req, op)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	var out model.UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, &TransportError{Op: op, Cause: fmt.Errorf("decode response: %w", err)}
	}
	if out.JobID == "" {
		return nil, &TransportError{Op: op, Cause: errors.New("response carried no job id")}
	}
	return &out, nil
}

// progressReader reports whole-percent progress while the body is read
type progressReader struct {
	r      io.Reader
	total  int64
	read   int64
	last   int
	report func(int)
}

func (p *progressReader) Read(b []byte) (int, error) {
	n, err := p.r.Read(b)
	p.read += int64(n)
	if p.report != nil && p.total > 0 {
		percent := int(math.Round(float64(p.read) * 100 / float64(p.total)))
		if percent > 100 {
			percent = 100
		}
		if percent != p.last {
			p.last = percent
			p.report(percent)
		}
	}
	return n, err
}
