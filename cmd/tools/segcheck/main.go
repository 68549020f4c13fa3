package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	analysis "github.com/erniesg/aidobe-sub002/internal/analysis/narrative"
	"github.com/erniesg/aidobe-sub002/internal/analysis/scenetiming"
	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
)

// segcheck runs a transcript and its word timings through the splitter and
// the scene allocator, then prints the resulting timeline for manual
// inspection against real alignment data.

type inputFile struct {
	Transcript  string                `json:"transcript"`
	WordTimings []timeline.WordTiming `json:"wordTimings"`
}

func main() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found, using system environment variables: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	inputPath := flag.String("input", "", "path to a JSON file holding {transcript, wordTimings}")
	strategyName := flag.String("strategy", "avatar_composite", "split strategy: sentence, character_limit, time_segment or avatar_composite")
	maxChars := flag.Int("max-chars", 0, "character limit per chunk (0 uses the strategy default)")
	maxDuration := flag.Float64("max-duration", 0, "duration limit per chunk in seconds (time_segment only)")
	target := flag.Float64("target", 0, "target timeline duration in seconds (0 uses the engine default)")
	presetID := flag.String("preset", "", "preset supplying limits and the target duration")
	flag.Parse()

	if *inputPath == "" {
		flag.Usage()
		log.Fatal("Provide -input with the transcript JSON file")
	}

	input, err := loadInput(*inputPath)
	if err != nil {
		log.Fatalf("Failed to load input: %v", err)
	}

	chars, duration := *maxChars, *maxDuration
	targetDuration := *target
	if *presetID != "" {
		p, ok := preset.NewMemoryStore(preset.Seed()).FindByID(*presetID)
		if !ok {
			log.Fatalf("Unknown preset %q", *presetID)
		}
		if chars == 0 {
			chars = p.MaxChunkChars
		}
		if duration == 0 {
			duration = p.MaxSegmentSeconds
		}
		if targetDuration == 0 {
			targetDuration = p.TargetDuration
		}
	}
	if targetDuration == 0 {
		targetDuration = cfg.Engine.DefaultTargetDuration
	}

	strategy, err := resolveStrategy(*strategyName, chars, duration)
	if err != nil {
		log.Fatalf("Failed to resolve strategy: %v", err)
	}

	started := time.Now()

	split, err := splitter.Split(input.Transcript, input.WordTimings, strategy)
	if err != nil {
		log.Fatalf("Split failed: %v", err)
	}

	segments := analysis.Segment(input.Transcript)
	if len(segments) == 0 {
		log.Fatal("Narrative segmentation produced no segments")
	}

	scenes, err := scenetiming.Allocate(segments, targetDuration, input.WordTimings)
	if err != nil {
		log.Fatalf("Scene allocation failed: %v", err)
	}

	continuity, err := scenetiming.ValidateContinuity(scenes)
	if err != nil {
		log.Fatalf("Continuity check failed: %v", err)
	}

	fmt.Printf("Input: %d words, %d timings, span %.2fs\n",
		len(strings.Fields(input.Transcript)), len(input.WordTimings), timeline.SpanSeconds(input.WordTimings))

	fmt.Printf("\nChunks (%s, %d):\n", split.Metadata.SplitStrategy, split.TotalChunks)
	for _, chunk := range split.Chunks {
		fmt.Printf("  [%d] %6.2fs - %6.2fs  %s\n", chunk.ChunkIndex, chunk.StartTime, chunk.EndTime, chunk.Text)
	}

	fmt.Printf("\nNarrative segments:\n")
	for i, seg := range segments {
		fmt.Printf("  [%d] %-11s %s\n", i, seg.Role, seg.Text)
	}

	fmt.Printf("\nScenes (target %.1fs):\n", targetDuration)
	for i, scene := range scenes {
		fmt.Printf("  [%d] %6.2fs - %6.2fs  duration %5.2fs  fades %.1f/%.1f\n",
			i, scene.StartTime, scene.EndTime, scene.Duration, scene.FadeIn, scene.FadeOut)
	}

	fmt.Printf("\nContinuity: %s\n", continuity.Message)
	log.Printf("Done in %s", time.Since(started).Round(time.Millisecond))
}

func loadInput(path string) (*inputFile, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	input := &inputFile{}
	if err := json.Unmarshal(raw, input); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if strings.TrimSpace(input.Transcript) == "" {
		return nil, fmt.Errorf("%s holds no transcript", path)
	}
	return input, nil
}

func resolveStrategy(name string, maxChars int, maxDuration float64) (splitter.Strategy, error) {
	switch name {
	case "sentence":
		return splitter.SentenceStrategy{}, nil
	case "character_limit":
		return splitter.CharacterLimitStrategy{MaxChars: maxChars}, nil
	case "time_segment":
		return splitter.TimeSegmentStrategy{MaxDuration: maxDuration}, nil
	case "avatar_composite":
		return splitter.AvatarStrategy{MaxChars: maxChars}, nil
	default:
		return nil, fmt.Errorf("unknown strategy %q", name)
	}
}
