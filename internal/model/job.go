package model

// JobHandle identifies one submitted profiling job
type JobHandle struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name,omitempty"`
}

// IsZero reports whether the handle was never assigned
func (h JobHandle) IsZero() bool {
	return h.ID == ""
}

// JobStatus is the lifecycle phase of a job as seen by the console
type JobStatus string

const (
	JobIdle       JobStatus = "idle"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// JobState is the active state of one job. Result is set only when
// Status is completed and Message only when Status is failed.
type JobState struct {
	Status  JobStatus      `json:"status"`
	Result  *ProfileResult `json:"result,omitempty"`
	Message string         `json:"message,omitempty"`
}

// Idle returns the state before any upload
func Idle() JobState { return JobState{Status: JobIdle} }

// Processing returns the in-flight state
func Processing() JobState { return JobState{Status: JobProcessing} }

// Completed returns the terminal success state
func Completed(result *ProfileResult) JobState {
	return JobState{Status: JobCompleted, Result: result}
}

// Failed returns the terminal failure state
func Failed(message string) JobState {
	return JobState{Status: JobFailed, Message: message}
}

// IsTerminal reports whether no further polling happens for this handle
func (s JobState) IsTerminal() bool {
	return s.Status == JobCompleted || s.Status == JobFailed
}

// StatusResponse is the body of GET /api/profile/{job_id}
type StatusResponse struct {
	JobID    string         `json:"job_id,omitempty"`
	Status   string         `json:"status"`
	Filename string         `json:"filename,omitempty"`
	Result   *ProfileResult `json:"result,omitempty"`
	Error    string         `json:"error,omitempty"`
}

// UploadResponse is the body of POST /api/upload
type UploadResponse struct {
	JobID            string `json:"job_id"`
	Status           string `json:"status,omitempty"`
	Filename         string `json:"filename,omitempty"`
	FileSizeBytes    int64  `json:"file_size_bytes,omitempty"`
	EstimatedTimeSec int    `json:"estimated_time_sec,omitempty"`
	ProgressURL      string `json:"progress_url,omitempty"`
}
