package pipeline

import (
	"context"
	"log"
	"sync"

	"github.com/davitk/edureel/internal/models"
)

// SynthesisResult is the outcome of one synthesis batch. Skipped counts
// the prompts that received no credential — surfaced explicitly so the
// caller never has to infer truncation from array-length mismatches.
type SynthesisResult struct {
	Images  []models.SynthesizedImage
	Skipped int
}

// credentialFor is the pool partition function: prompt i is statically
// bound to credential i. Prompts beyond the pool get no credential.
func credentialFor(keys []string, index int) (string, bool) {
	if index < 0 || index >= len(keys) {
		return "", false
	}
	return keys[index], true
}

// synthesize dispatches one request per bound (prompt, credential) pair,
// all at once, and joins. Individual failures are logged and dropped —
// they never abort siblings and are never retried. The batch itself fails
// only when the pool is empty or when nothing at all survived.
func (p *Pipeline) synthesize(ctx context.Context, prompts []string) (*SynthesisResult, error) {
	if len(p.opts.ImageKeys) == 0 {
		return nil, ErrNoCredentials
	}

	result := &SynthesisResult{}
	var mu sync.Mutex
	var wg sync.WaitGroup

	for i, prompt := range prompts {
		key, ok := credentialFor(p.opts.ImageKeys, i)
		if !ok {
			log.Printf("[Imagen] prompt %d skipped: only %d credentials in pool", i, len(p.opts.ImageKeys))
			result.Skipped++
			continue
		}

		wg.Add(1)
		go func(index int, prompt, key string) {
			defer wg.Done()

			mimeType, data, err := p.images.Generate(ctx, key, prompt)
			if err != nil {
				log.Printf("[Imagen] prompt %d failed: %v", index, err)
				return
			}
			if data == nil {
				log.Printf("[Imagen] prompt %d: provider returned no image", index)
				return
			}

			mu.Lock()
			result.Images = append(result.Images, models.SynthesizedImage{
				PromptIndex: index,
				Prompt:      prompt,
				MimeType:    mimeType,
				Data:        data,
			})
			mu.Unlock()
		}(i, prompt, key)
	}

	wg.Wait()

	if len(result.Images) == 0 {
		return nil, ErrNoImages
	}
	return result, nil
}
