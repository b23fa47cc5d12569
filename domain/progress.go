package domain

// ProgressStatus tags one message in a stage's progress stream.
type ProgressStatus string

const (
	StatusSaving      ProgressStatus = "saving"
	StatusExtracting  ProgressStatus = "extracting"
	StatusRefining    ProgressStatus = "refining"
	StatusGenerating  ProgressStatus = "generating"
	StatusWriting     ProgressStatus = "writing"
	StatusDone        ProgressStatus = "done"
	StatusError       ProgressStatus = "error"
	StatusDownloading ProgressStatus = "downloading"
	StatusFileDone    ProgressStatus = "file_done"
)

// ProgressEvent is one message in the ordered stream a stage invocation
// emits. For a given invocation the terminal event (done or error) is
// always last and unique, and Completed never decreases.
type ProgressEvent struct {
	Status     ProgressStatus `json:"status"`
	Message    string         `json:"message,omitempty"`
	JobID      string         `json:"job_id,omitempty"`
	Stage      Stage          `json:"stage,omitempty"`
	Total      int            `json:"total,omitempty"`
	Completed  int            `json:"completed,omitempty"`
	OutputFile string         `json:"output_file,omitempty"`
	CharCount  int            `json:"char_count,omitempty"`
	File       string         `json:"file,omitempty"`
	Percent    *int           `json:"percent,omitempty"`
}

// Terminal reports whether the event ends its stream.
func (e ProgressEvent) Terminal() bool {
	return e.Status == StatusDone || e.Status == StatusError
}
