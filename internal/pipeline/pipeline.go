// Package pipeline runs a topic string through the full generation chain:
// script + image prompts, key-partitioned parallel image synthesis, asset
// persistence, timeline assembly, and the render submit/poll state machine.
package pipeline

import (
	"context"
	"fmt"
	"log"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/davitk/edureel/internal/models"
	"github.com/davitk/edureel/internal/timeline"
)

// Generator produces the narration script and the image-prompt list. The
// two calls are independent and run concurrently.
type Generator interface {
	GenerateScript(ctx context.Context, topic string) ([]models.ScriptSegment, error)
	GenerateImagePrompts(ctx context.Context, topic string) ([]string, error)
}

// ImageClient issues one synthesis request with an explicit credential.
// A (nil, nil, nil) return means the provider produced no image for the
// prompt without reporting an error.
type ImageClient interface {
	Generate(ctx context.Context, apiKey, prompt string) (mimeType string, data []byte, err error)
}

// AssetStore persists image bytes and derives their public URLs.
type AssetStore interface {
	Upload(ctx context.Context, path string, data []byte, contentType string) error
	PublicURL(path string) string
	ObjectName(promptIndex int, mimeType string) string
}

// Renderer is the remote render service boundary.
type Renderer interface {
	Submit(ctx context.Context, edit interface{}) (string, error)
	Status(ctx context.Context, jobID string) (models.RenderJob, error)
}

// Options carries the read-only, per-deployment pipeline configuration.
type Options struct {
	// ImageKeys is the credential pool: prompt i is statically bound to
	// key i; prompts beyond the pool are skipped.
	ImageKeys []string

	PollInterval    time.Duration
	MaxPollAttempts int

	Timeline timeline.Options
}

type Pipeline struct {
	generator Generator
	images    ImageClient
	store     AssetStore
	renderer  Renderer
	opts      Options
}

func New(generator Generator, images ImageClient, store AssetStore, renderer Renderer, opts Options) *Pipeline {
	return &Pipeline{
		generator: generator,
		images:    images,
		store:     store,
		renderer:  renderer,
		opts:      opts,
	}
}

// Run executes one full generation for topic. onStage, when non-nil, is
// invoked as the run moves between stages so the caller can surface
// progress. The returned bundle carries every intermediate artifact plus
// the final video URL; on error, exactly one stage's terminal error is
// returned (match with errors.Is).
func (p *Pipeline) Run(ctx context.Context, topic string, onStage func(models.RunStage)) (*models.RunResult, error) {
	stage := func(s models.RunStage) {
		if onStage != nil {
			onStage(s)
		}
	}

	// Stage 1: content generation — two independent model calls, no retry.
	stage(models.RunStageGenerating)
	script, prompts, err := p.generate(ctx, topic)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGeneration, err)
	}
	log.Printf("[Pipeline] generated %d script segments, %d image prompts", len(script), len(prompts))

	// Stage 2: key-partitioned parallel image synthesis.
	stage(models.RunStageSynthesizing)
	synthesis, err := p.synthesize(ctx, prompts)
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] synthesized %d/%d images (%d skipped: no credential)",
		len(synthesis.Images), len(prompts), synthesis.Skipped)

	// Stage 3: persist surviving images.
	stage(models.RunStageUploading)
	assets, err := p.persist(ctx, synthesis.Images)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrPersistence, err)
	}

	// Stage 4: assemble the timeline document. Pure; cannot fail.
	stage(models.RunStageAssembling)
	edit := timeline.Assemble(script, assets, p.opts.Timeline)

	// Stage 5: submit and poll.
	stage(models.RunStageRendering)
	job, err := p.render(ctx, edit)
	if err != nil {
		return nil, err
	}
	log.Printf("[Pipeline] render complete: %s", job.ResultURL)

	return &models.RunResult{
		Script:       script,
		ImagePrompts: prompts,
		Assets:       assets,
		SkippedCount: synthesis.Skipped,
		Timeline:     edit,
		VideoURL:     job.ResultURL,
		RenderJobID:  job.ID,
	}, nil
}

// generate runs the two generation calls concurrently.
func (p *Pipeline) generate(ctx context.Context, topic string) ([]models.ScriptSegment, []string, error) {
	var (
		script  []models.ScriptSegment
		prompts []string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		script, err = p.generator.GenerateScript(gctx, topic)
		return err
	})
	g.Go(func() error {
		var err error
		prompts, err = p.generator.GenerateImagePrompts(gctx, topic)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return script, prompts, nil
}

// persist uploads every synthesized image concurrently. Any failed write
// aborts the whole batch — there is no partial-success policy here; the
// result preserves each image's prompt index and originating prompt text
// and is returned in prompt-index order.
func (p *Pipeline) persist(ctx context.Context, images []models.SynthesizedImage) ([]models.UploadedAsset, error) {
	assets := make([]models.UploadedAsset, len(images))

	g, gctx := errgroup.WithContext(ctx)
	for i, img := range images {
		i, img := i, img
		g.Go(func() error {
			path := p.store.ObjectName(img.PromptIndex, img.MimeType)
			if err := p.store.Upload(gctx, path, img.Data, img.MimeType); err != nil {
				return fmt.Errorf("upload for prompt %d: %w", img.PromptIndex, err)
			}
			assets[i] = models.UploadedAsset{
				PromptIndex: img.PromptIndex,
				Prompt:      img.Prompt,
				URL:         p.store.PublicURL(path),
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Completion order is unspecified upstream; present assets in prompt
	// order so the assembled timeline follows the narration.
	sort.Slice(assets, func(a, b int) bool {
		return assets[a].PromptIndex < assets[b].PromptIndex
	})

	return assets, nil
}
