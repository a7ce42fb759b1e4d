package pipeline

import "errors"

// Each stage fails the whole run with its own terminal error; there is no
// cross-stage compensation or rollback (images already uploaded stay
// uploaded if a later stage fails). Callers match with errors.Is.
var (
	// ErrGeneration: a text-model call failed or returned unparsable content.
	ErrGeneration = errors.New("content generation failed")

	// ErrNoCredentials: the image credential pool is empty.
	ErrNoCredentials = errors.New("no image credentials configured")

	// ErrNoImages: every individual synthesis request failed.
	ErrNoImages = errors.New("no images generated")

	// ErrPersistence: a storage write was rejected or unreachable.
	ErrPersistence = errors.New("asset persistence failed")

	// ErrSubmission: the render service rejected the edit or returned no job id.
	ErrSubmission = errors.New("render submission failed")

	// ErrRenderFailed: the render job reached the failed state.
	ErrRenderFailed = errors.New("render job failed")

	// ErrPollingTimeout: the poll attempt budget ran out before a terminal state.
	ErrPollingTimeout = errors.New("render polling timed out")
)
