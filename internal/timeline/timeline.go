// Package timeline assembles the declarative edit document consumed by the
// render service. Assembly is a pure function of the narration script and
// the surviving uploaded assets; it performs no I/O and never fails on
// well-formed input.
package timeline

import (
	"github.com/davitk/edureel/internal/models"
)

// Edit is the top-level document posted to the render service.
type Edit struct {
	Timeline Timeline `json:"timeline"`
	Output   Output   `json:"output"`
}

type Timeline struct {
	Background string  `json:"background"`
	Tracks     []Track `json:"tracks"`
}

type Track struct {
	Clips []Clip `json:"clips"`
}

type Clip struct {
	Asset      Asset       `json:"asset"`
	Start      float64     `json:"start"`
	Length     float64     `json:"length"`
	Effect     string      `json:"effect,omitempty"`
	Transition *Transition `json:"transition,omitempty"`
}

type Transition struct {
	In string `json:"in"`
}

// Asset is a union over the clip asset types the render service knows:
// "text" (caption), "image" (visual), "text-to-speech" (narration).
type Asset struct {
	Type      string     `json:"type"`
	Text      string     `json:"text,omitempty"`
	Src       string     `json:"src,omitempty"`
	Voice     string     `json:"voice,omitempty"`
	Font      *Font      `json:"font,omitempty"`
	Alignment *Alignment `json:"alignment,omitempty"`
}

type Font struct {
	Family string `json:"family"`
	Size   int    `json:"size"`
	Color  string `json:"color"`
}

type Alignment struct {
	Vertical   string `json:"vertical"`
	Horizontal string `json:"horizontal"`
}

type Output struct {
	Format string `json:"format"`
	Size   Size   `json:"size"`
	FPS    int    `json:"fps"`
}

type Size struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Effect and transition names cycle per clip index — deterministic and
// repeating, never random.
var (
	effects     = []string{"zoomIn", "zoomOut", "slideRight", "slideLeft", "slideUp", "slideDown"}
	transitions = []string{"slideLeft", "slideUp", "fade", "slideDown", "slideRight"}
)

// Options carries the per-deployment knobs of assembly.
type Options struct {
	// DefaultSegmentSeconds is substituted when an asset has no script
	// segment at its prompt index, so the timeline still advances.
	DefaultSegmentSeconds float64

	// NarrationEnabled adds a synthesized-speech track mirroring the
	// caption schedule.
	NarrationEnabled bool
	NarrationVoice   string
}

// entry is one joined (asset, segment) pair in surviving-asset order.
type entry struct {
	url     string
	text    string
	seconds float64
}

// Assemble joins script segments to uploaded assets by prompt index and
// builds the track set. Within every track, clip i starts at the sum of
// the lengths of clips 0..i-1 — contiguous, non-overlapping, and driven by
// the assets that actually survived synthesis and upload: dropped prompts
// compress the overall timeline rather than leaving gaps.
func Assemble(script []models.ScriptSegment, assets []models.UploadedAsset, opts Options) *Edit {
	entries := join(script, assets, opts.DefaultSegmentSeconds)

	tracks := []Track{
		{Clips: captionClips(entries)},
		{Clips: imageClips(entries)},
	}
	if opts.NarrationEnabled {
		tracks = append(tracks, Track{Clips: narrationClips(entries, opts.NarrationVoice)})
	}

	return &Edit{
		Timeline: Timeline{
			Background: "#000000",
			Tracks:     tracks,
		},
		Output: Output{
			Format: "mp4",
			Size:   Size{Width: 720, Height: 1280},
			FPS:    30,
		},
	}
}

func join(script []models.ScriptSegment, assets []models.UploadedAsset, defaultSeconds float64) []entry {
	entries := make([]entry, 0, len(assets))
	for _, asset := range assets {
		e := entry{url: asset.URL, seconds: defaultSeconds}
		if asset.PromptIndex >= 0 && asset.PromptIndex < len(script) {
			e.text = script[asset.PromptIndex].Text
			e.seconds = script[asset.PromptIndex].Seconds
		}
		entries = append(entries, e)
	}
	return entries
}

func captionClips(entries []entry) []Clip {
	clips := make([]Clip, 0, len(entries))
	start := 0.0
	for _, e := range entries {
		clips = append(clips, Clip{
			Asset: Asset{
				Type: "text",
				Text: e.text,
				Font: &Font{
					Family: "Arial",
					Size:   40,
					Color:  "#ffffff",
				},
				Alignment: &Alignment{
					Vertical:   "bottom",
					Horizontal: "center",
				},
			},
			Start:  start,
			Length: e.seconds,
		})
		start += e.seconds
	}
	return clips
}

func imageClips(entries []entry) []Clip {
	clips := make([]Clip, 0, len(entries))
	start := 0.0
	for i, e := range entries {
		clip := Clip{
			Asset: Asset{
				Type: "image",
				Src:  e.url,
			},
			Start:  start,
			Length: e.seconds,
			Effect: effects[i%len(effects)],
		}
		// The first clip has nothing to transition from
		if i > 0 {
			clip.Transition = &Transition{In: transitions[i%len(transitions)]}
		}
		clips = append(clips, clip)
		start += e.seconds
	}
	return clips
}

func narrationClips(entries []entry, voice string) []Clip {
	clips := make([]Clip, 0, len(entries))
	start := 0.0
	for _, e := range entries {
		clips = append(clips, Clip{
			Asset: Asset{
				Type:  "text-to-speech",
				Text:  e.text,
				Voice: voice,
			},
			Start:  start,
			Length: e.seconds,
		})
		start += e.seconds
	}
	return clips
}
