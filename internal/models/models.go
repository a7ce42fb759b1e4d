package models

import (
	"time"

	"github.com/google/uuid"
)

// Enums

// RunStage tracks where an in-flight generation run currently is.
type RunStage string

const (
	RunStageQueued       RunStage = "queued"
	RunStageGenerating   RunStage = "generating"
	RunStageSynthesizing RunStage = "synthesizing"
	RunStageUploading    RunStage = "uploading"
	RunStageAssembling   RunStage = "assembling"
	RunStageRendering    RunStage = "rendering"
	RunStageCompleted    RunStage = "completed"
	RunStageFailed       RunStage = "failed"
)

// RenderStatus is the remote render service's job status.
type RenderStatus string

const (
	RenderStatusQueued    RenderStatus = "queued"
	RenderStatusRendering RenderStatus = "rendering"
	RenderStatusDone      RenderStatus = "done"
	RenderStatusFailed    RenderStatus = "failed"
)

// Terminal reports whether polling should stop at this status. Statuses the
// service invents that we don't know about (fetching, saving, ...) are
// non-terminal by construction.
func (s RenderStatus) Terminal() bool {
	return s == RenderStatusDone || s == RenderStatusFailed
}

// Pipeline data records.
//
// promptIndex is the only linkage between a script segment, its image
// prompt, the synthesized image, and the uploaded asset. Completion order
// of the concurrent stages is unspecified, so nothing downstream may rely
// on slice position.

// ScriptSegment is one timed unit of narration. The wire names match the
// generator's output document.
type ScriptSegment struct {
	Text    string  `json:"text"`
	Seconds float64 `json:"time"`
}

// SynthesizedImage is the raw output of one image synthesis call. It lives
// only between synthesis and upload.
type SynthesizedImage struct {
	PromptIndex int
	Prompt      string
	MimeType    string
	Data        []byte
}

// UploadedAsset is a durably stored image, addressable forever at URL.
type UploadedAsset struct {
	PromptIndex int    `json:"prompt_index"`
	Prompt      string `json:"prompt"`
	URL         string `json:"url"`
}

// RenderJob mirrors the remote service's view of a submitted render.
type RenderJob struct {
	ID        string       `json:"id"`
	Status    RenderStatus `json:"status"`
	ResultURL string       `json:"url,omitempty"`
}

// RunResult is the full bundle a successful run hands back to the caller:
// everything the UI needs to show intermediate artifacts plus the video.
type RunResult struct {
	Script       []ScriptSegment `json:"script"`
	ImagePrompts []string        `json:"image_prompts"`
	Assets       []UploadedAsset `json:"assets"`
	SkippedCount int             `json:"skipped_count"` // prompts without a credential
	Timeline     interface{}     `json:"timeline,omitempty"`
	VideoURL     string          `json:"video_url"`
	RenderJobID  string          `json:"render_job_id"`
}

// Run is the progress-store record for one pipeline run.
type Run struct {
	ID        uuid.UUID  `json:"id"`
	Topic     string     `json:"topic"`
	Stage     RunStage   `json:"stage"`
	Error     *string    `json:"error,omitempty"`
	Result    *RunResult `json:"result,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt time.Time  `json:"updated_at"`
}

// DTOs for API requests/responses

type CreateVideoRequest struct {
	Topic string `json:"topic"`
}

type CreateVideoResponse struct {
	RunID  uuid.UUID `json:"run_id"`
	Status RunStage  `json:"status"`
}

type SpeechRequest struct {
	Text string `json:"text"`
}
