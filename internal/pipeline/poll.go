package pipeline

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/davitk/edureel/internal/models"
)

// render submits the edit document and then polls the job until it reaches
// a terminal state or the attempt budget runs out.
//
// The loop is a bounded-retry liveness pattern: fixed sub-second interval,
// fixed cap, no backoff. Worst-case wall clock is MaxPollAttempts ×
// PollInterval. A transport or HTTP error during a poll aborts the run —
// polling never silently continues past an explicit error response.
func (p *Pipeline) render(ctx context.Context, edit interface{}) (models.RenderJob, error) {
	jobID, err := p.renderer.Submit(ctx, edit)
	if err != nil {
		return models.RenderJob{}, fmt.Errorf("%w: %v", ErrSubmission, err)
	}
	log.Printf("[Render] submitted job %s", jobID)

	for attempt := 1; attempt <= p.opts.MaxPollAttempts; attempt++ {
		job, err := p.renderer.Status(ctx, jobID)
		if err != nil {
			return models.RenderJob{}, fmt.Errorf("%w: poll attempt %d: %v", ErrRenderFailed, attempt, err)
		}

		switch job.Status {
		case models.RenderStatusDone:
			log.Printf("[Render] job %s done after %d polls", jobID, attempt)
			return job, nil
		case models.RenderStatusFailed:
			return models.RenderJob{}, fmt.Errorf("%w: job %s", ErrRenderFailed, jobID)
		}

		// queued, rendering, and anything else the service invents: keep going
		select {
		case <-ctx.Done():
			return models.RenderJob{}, fmt.Errorf("%w: %v", ErrPollingTimeout, ctx.Err())
		case <-time.After(p.opts.PollInterval):
		}
	}

	return models.RenderJob{}, fmt.Errorf("%w: job %s not terminal after %d attempts", ErrPollingTimeout, jobID, p.opts.MaxPollAttempts)
}
