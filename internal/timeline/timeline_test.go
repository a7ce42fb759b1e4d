package timeline

import (
	"fmt"
	"math"
	"reflect"
	"testing"

	"github.com/davitk/edureel/internal/models"
)

func testScript(n int) []models.ScriptSegment {
	script := make([]models.ScriptSegment, n)
	for i := range script {
		script[i] = models.ScriptSegment{
			Text:    fmt.Sprintf("segment %d", i),
			Seconds: float64(i + 3),
		}
	}
	return script
}

func testAssets(indices ...int) []models.UploadedAsset {
	assets := make([]models.UploadedAsset, len(indices))
	for i, idx := range indices {
		assets[i] = models.UploadedAsset{
			PromptIndex: idx,
			Prompt:      fmt.Sprintf("prompt %d", idx),
			URL:         fmt.Sprintf("https://cdn.example.com/image-%d.png", idx),
		}
	}
	return assets
}

func defaultOpts() Options {
	return Options{DefaultSegmentSeconds: 4}
}

func TestStartsArePrefixSums(t *testing.T) {
	edit := Assemble(testScript(10), testAssets(0, 1, 2, 3, 4, 5, 6, 7, 8, 9), defaultOpts())

	for ti, track := range edit.Timeline.Tracks {
		sum := 0.0
		prev := -1.0
		for ci, clip := range track.Clips {
			if math.Abs(clip.Start-sum) > 1e-9 {
				t.Errorf("track %d clip %d: start = %v, want %v", ti, ci, clip.Start, sum)
			}
			if clip.Start < prev {
				t.Errorf("track %d clip %d: start %v decreased below %v", ti, ci, clip.Start, prev)
			}
			prev = clip.Start
			sum += clip.Length
		}
	}
}

func TestAssembleIsIdempotent(t *testing.T) {
	script := testScript(5)
	assets := testAssets(0, 1, 2, 3, 4)

	a := Assemble(script, assets, defaultOpts())
	b := Assemble(script, assets, defaultOpts())

	if !reflect.DeepEqual(a, b) {
		t.Error("two assemblies of the same input differ")
	}
}

func TestSurvivorCompression(t *testing.T) {
	// 3 of 10 prompts failed: only 7 assets survive
	script := testScript(10)
	surviving := []int{0, 1, 3, 5, 6, 8, 9}
	edit := Assemble(script, testAssets(surviving...), defaultOpts())

	wantTotal := 0.0
	for _, idx := range surviving {
		wantTotal += script[idx].Seconds
	}

	for ti, track := range edit.Timeline.Tracks {
		if len(track.Clips) != 7 {
			t.Fatalf("track %d: expected 7 clips, got %d", ti, len(track.Clips))
		}
		last := track.Clips[len(track.Clips)-1]
		if got := last.Start + last.Length; math.Abs(got-wantTotal) > 1e-9 {
			t.Errorf("track %d: total duration = %v, want %v", ti, got, wantTotal)
		}
	}
}

func TestEffectCycleIsDeterministic(t *testing.T) {
	indices := make([]int, 12)
	for i := range indices {
		indices[i] = i
	}
	edit := Assemble(testScript(12), testAssets(indices...), defaultOpts())

	images := edit.Timeline.Tracks[1].Clips

	// Effect list has length 6, so index 7 cycles back to index 1's effect
	if images[7].Effect != images[1].Effect {
		t.Errorf("effect at index 7 (%q) should equal index 1 (%q)", images[7].Effect, images[1].Effect)
	}
	if images[0].Effect != "zoomIn" {
		t.Errorf("first effect = %q, want zoomIn", images[0].Effect)
	}

	// Transition list has length 5: index 6 matches index 1
	if images[6].Transition.In != images[1].Transition.In {
		t.Errorf("transition at index 6 (%q) should equal index 1 (%q)", images[6].Transition.In, images[1].Transition.In)
	}
}

func TestFirstClipHasNoTransition(t *testing.T) {
	edit := Assemble(testScript(3), testAssets(0, 1, 2), defaultOpts())

	images := edit.Timeline.Tracks[1].Clips
	if images[0].Transition != nil {
		t.Error("first image clip must not have an entry transition")
	}
	for i := 1; i < len(images); i++ {
		if images[i].Transition == nil {
			t.Errorf("clip %d missing entry transition", i)
		}
	}
}

func TestMissingSegmentFallsBackToDefault(t *testing.T) {
	// Asset index 5 has no script segment (script only has 3)
	edit := Assemble(testScript(3), testAssets(0, 5), defaultOpts())

	captions := edit.Timeline.Tracks[0].Clips
	if captions[1].Asset.Text != "" {
		t.Errorf("expected empty caption for unmatched asset, got %q", captions[1].Asset.Text)
	}
	if captions[1].Length != 4 {
		t.Errorf("expected default 4s duration, got %v", captions[1].Length)
	}

	// The timeline still advances past the substituted clip
	if captions[1].Start != captions[0].Length {
		t.Errorf("substituted clip start = %v, want %v", captions[1].Start, captions[0].Length)
	}
}

func TestNarrationTrackGating(t *testing.T) {
	script := testScript(2)
	assets := testAssets(0, 1)

	without := Assemble(script, assets, defaultOpts())
	if len(without.Timeline.Tracks) != 2 {
		t.Fatalf("expected 2 tracks without narration, got %d", len(without.Timeline.Tracks))
	}

	with := Assemble(script, assets, Options{
		DefaultSegmentSeconds: 4,
		NarrationEnabled:      true,
		NarrationVoice:        "Joanna",
	})
	if len(with.Timeline.Tracks) != 3 {
		t.Fatalf("expected 3 tracks with narration, got %d", len(with.Timeline.Tracks))
	}

	narration := with.Timeline.Tracks[2].Clips
	captions := with.Timeline.Tracks[0].Clips
	for i := range narration {
		if narration[i].Asset.Type != "text-to-speech" {
			t.Errorf("narration clip %d type = %q", i, narration[i].Asset.Type)
		}
		if narration[i].Asset.Voice != "Joanna" {
			t.Errorf("narration clip %d voice = %q", i, narration[i].Asset.Voice)
		}
		if narration[i].Start != captions[i].Start || narration[i].Length != captions[i].Length {
			t.Errorf("narration clip %d schedule diverges from captions", i)
		}
	}
}

func TestOutputBlock(t *testing.T) {
	edit := Assemble(testScript(1), testAssets(0), defaultOpts())

	if edit.Timeline.Background != "#000000" {
		t.Errorf("background = %q", edit.Timeline.Background)
	}
	out := edit.Output
	if out.Format != "mp4" || out.Size.Width != 720 || out.Size.Height != 1280 || out.FPS != 30 {
		t.Errorf("unexpected output block: %+v", out)
	}
}

func TestCaptionStyling(t *testing.T) {
	edit := Assemble(testScript(1), testAssets(0), defaultOpts())

	caption := edit.Timeline.Tracks[0].Clips[0].Asset
	if caption.Type != "text" {
		t.Fatalf("caption type = %q", caption.Type)
	}
	if caption.Font == nil || caption.Font.Family != "Arial" || caption.Font.Size != 40 || caption.Font.Color != "#ffffff" {
		t.Errorf("unexpected caption font: %+v", caption.Font)
	}
	if caption.Alignment == nil || caption.Alignment.Vertical != "bottom" || caption.Alignment.Horizontal != "center" {
		t.Errorf("unexpected caption alignment: %+v", caption.Alignment)
	}
}
