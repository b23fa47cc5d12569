package domain

import "fmt"

// JobRef is a resolved job handle. Dir is the job's working directory for
// the filesystem store and the key prefix for object stores.
type JobRef struct {
	ID      string
	DocName string
	Dir     string
}

// Stage identifies one step of the document narration pipeline.
type Stage string

const (
	StageExtract    Stage = "extract"
	StageRefine     Stage = "refine"
	StageSynthesize Stage = "tts"
)

// JobStatus reports which stage artifacts exist for a job. It is always
// derived from artifact existence, never stored.
type JobStatus struct {
	Extracted   bool `json:"extract"`
	Refined     bool `json:"refine"`
	Synthesized bool `json:"tts"`
}

// Asset names one downloadable model file: where it lives remotely and
// where it must land locally.
type Asset struct {
	Name string
	Dest string
	URL  string
}

func DocumentName(docName string) string {
	return fmt.Sprintf("%s.pdf", docName)
}

func ExtractedName(docName string) string {
	return fmt.Sprintf("%s_extracted.md", docName)
}

func RefinedName(docName string) string {
	return fmt.Sprintf("%s_refined.txt", docName)
}

func AudioName(docName string) string {
	return fmt.Sprintf("%s_audio.wav", docName)
}
