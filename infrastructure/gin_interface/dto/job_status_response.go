package dto

import "doc-narrator-api/domain"

type JobStatusResponse struct {
	JobID   string           `json:"job_id"`
	DocName string           `json:"doc_name"`
	OutDir  string           `json:"out_dir"`
	Stages  domain.JobStatus `json:"stages"`
}
