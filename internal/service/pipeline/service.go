// Package pipeline runs submitted transcripts through the whole
// segmentation pipeline as background jobs with observable progress.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/erniesg/aidobe-sub002/internal/analysis/audiomix"
	analysis "github.com/erniesg/aidobe-sub002/internal/analysis/narrative"
	"github.com/erniesg/aidobe-sub002/internal/analysis/scenetiming"
	"github.com/erniesg/aidobe-sub002/internal/analysis/splitter"
	"github.com/erniesg/aidobe-sub002/internal/config"
	"github.com/erniesg/aidobe-sub002/internal/model/job"
	"github.com/erniesg/aidobe-sub002/internal/model/preset"
	"github.com/erniesg/aidobe-sub002/internal/model/timeline"
	"github.com/erniesg/aidobe-sub002/internal/service/media"
	narrativeservice "github.com/erniesg/aidobe-sub002/internal/service/narrative"
)

var (
	ErrTranscriptRequired = errors.New("transcript is required")
	ErrPresetNotFound     = errors.New("preset not found")
	ErrJobNotFound        = errors.New("job not found")
)

// subscriberBuffer bounds each progress channel; a subscriber that falls
// further behind misses intermediate events but keeps the job record's full
// history.
const subscriberBuffer = 16

// Service owns job state and executes runs in background goroutines.
type Service struct {
	engine    config.EngineConfig
	presets   preset.Store
	narrative *narrativeservice.Service
	media     *media.Client

	mu          sync.RWMutex
	jobs        map[string]*job.Job
	subscribers map[string][]chan job.ProgressEvent
}

// NewService bootstraps the in-memory job service. narrativeSvc and
// mediaClient may be nil; the pipeline then uses the keyword heuristic and
// emits metadata-only audio segments.
func NewService(engine config.EngineConfig, presets preset.Store, narrativeSvc *narrativeservice.Service, mediaClient *media.Client) *Service {
	return &Service{
		engine:      engine,
		presets:     presets,
		narrative:   narrativeSvc,
		media:       mediaClient,
		jobs:        make(map[string]*job.Job),
		subscribers: make(map[string][]chan job.ProgressEvent),
	}
}

// runSettings is one run's fully resolved knobs: engine defaults, overlaid
// by the named preset, overlaid by per-request overrides.
type runSettings struct {
	targetDuration   float64
	avatarCharLimit  int
	minSceneSeconds  float64
	voiceVolume      float64
	musicVolume      float64
	duckingEnabled   bool
	duckingReduction float64
}

func (s *Service) resolveSettings(req job.Request) (runSettings, error) {
	settings := runSettings{
		targetDuration:   s.engine.DefaultTargetDuration,
		avatarCharLimit:  s.engine.AvatarCharLimit,
		minSceneSeconds:  s.engine.MinSceneSeconds,
		voiceVolume:      s.engine.VoiceVolume,
		musicVolume:      s.engine.MusicVolume,
		duckingEnabled:   s.engine.DuckingEnabled,
		duckingReduction: s.engine.DuckingReduction,
	}

	if req.PresetID != "" {
		p, ok := s.presets.FindByID(req.PresetID)
		if !ok {
			return runSettings{}, fmt.Errorf("%w: %s", ErrPresetNotFound, req.PresetID)
		}
		if p.TargetDuration > 0 {
			settings.targetDuration = p.TargetDuration
		}
		if p.AvatarCharLimit > 0 {
			settings.avatarCharLimit = p.AvatarCharLimit
		}
		if p.MinSceneSeconds > 0 {
			settings.minSceneSeconds = p.MinSceneSeconds
		}
		settings.voiceVolume = p.VoiceVolume
		settings.musicVolume = p.MusicVolume
		settings.duckingEnabled = p.DuckingEnabled
	}

	if req.TargetDuration > 0 {
		settings.targetDuration = req.TargetDuration
	}
	if req.VoiceVolume != nil {
		settings.voiceVolume = *req.VoiceVolume
	}
	if req.MusicVolume != nil {
		settings.musicVolume = *req.MusicVolume
	}
	if req.DuckingEnabled != nil {
		settings.duckingEnabled = *req.DuckingEnabled
	}

	return settings, nil
}

// Submit validates the request shape, stores a queued job, and starts the
// run in the background. The returned job is the queued snapshot.
func (s *Service) Submit(_ context.Context, req job.Request) (job.Job, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return job.Job{}, ErrTranscriptRequired
	}

	settings, err := s.resolveSettings(req)
	if err != nil {
		return job.Job{}, err
	}

	stored := &job.Job{
		ID:        uuid.NewString(),
		Status:    job.StatusQueued,
		Request:   req,
		CreatedAt: time.Now().UTC(),
	}

	s.mu.Lock()
	s.jobs[stored.ID] = stored
	queued := cloneJob(stored)
	s.mu.Unlock()

	go s.run(stored.ID, req, settings)

	return queued, nil
}

// Get retrieves a job snapshot by identifier.
func (s *Service) Get(_ context.Context, jobID string) (job.Job, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return job.Job{}, ErrJobNotFound
	}
	return cloneJob(j), nil
}

// List returns snapshots of every known job, newest first.
func (s *Service) List(_ context.Context) []job.Job {
	s.mu.RLock()
	jobs := make([]job.Job, 0, len(s.jobs))
	for _, j := range s.jobs {
		jobs = append(jobs, cloneJob(j))
	}
	s.mu.RUnlock()

	sort.Slice(jobs, func(i, k int) bool {
		return jobs[i].CreatedAt.After(jobs[k].CreatedAt)
	})
	return jobs
}

// Subscribe registers for a job's progress events. history holds everything
// already emitted; the channel carries the rest and is closed after the
// terminal event. cancel detaches the subscriber and is safe to call after
// the channel closed.
func (s *Service) Subscribe(jobID string) (history []job.ProgressEvent, events <-chan job.ProgressEvent, cancel func(), err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return nil, nil, nil, ErrJobNotFound
	}

	history = append([]job.ProgressEvent(nil), j.Events...)

	if j.Status == job.StatusCompleted || j.Status == job.StatusFailed {
		done := make(chan job.ProgressEvent)
		close(done)
		return history, done, func() {}, nil
	}

	ch := make(chan job.ProgressEvent, subscriberBuffer)
	s.subscribers[jobID] = append(s.subscribers[jobID], ch)

	cancel = func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		subs := s.subscribers[jobID]
		for i, sub := range subs {
			if sub == ch {
				s.subscribers[jobID] = append(subs[:i], subs[i+1:]...)
				close(ch)
				break
			}
		}
	}

	return history, ch, cancel, nil
}

func (s *Service) run(jobID string, req job.Request, settings runSettings) {
	ctx := context.Background()

	started := time.Now().UTC()
	s.mu.Lock()
	if j, ok := s.jobs[jobID]; ok {
		j.Status = job.StatusRunning
		j.StartedAt = &started
	}
	s.mu.Unlock()

	result, failedStage, err := s.execute(ctx, jobID, req, settings)
	if err != nil {
		log.Printf("[pipeline] job %s failed at %s: %v", jobID, failedStage, err)
		s.finish(jobID, failedStage, fmt.Sprintf("failed: %v", err), nil, err)
		return
	}

	s.finish(jobID, job.StageCompleted, "timeline ready", result, nil)
}

func (s *Service) execute(ctx context.Context, jobID string, req job.Request, settings runSettings) (*job.Result, job.Stage, error) {
	s.publish(jobID, job.StageValidating, "validating transcript against word timings")
	if err := splitter.ValidateTranscript(req.Transcript, req.WordTimings); err != nil {
		return nil, job.StageValidating, err
	}

	s.publish(jobID, job.StageSegmenting, "classifying narrative roles")
	segments, source := s.segment(ctx, req.Transcript)
	if len(segments) == 0 {
		return nil, job.StageSegmenting, errors.New("no narration segments produced")
	}

	s.publish(jobID, job.StageSplitting, fmt.Sprintf("splitting for avatar renderer (limit %d chars)", settings.avatarCharLimit))
	split, err := splitter.Split(req.Transcript, req.WordTimings, splitter.AvatarStrategy{MaxChars: settings.avatarCharLimit})
	if err != nil {
		return nil, job.StageSplitting, err
	}

	s.publish(jobID, job.StageAllocating, fmt.Sprintf("allocating %d scenes over %.1fs via %s segments", len(segments), settings.targetDuration, source))
	scenes, err := scenetiming.Allocate(segments, settings.targetDuration, req.WordTimings)
	if err != nil {
		return nil, job.StageAllocating, err
	}

	continuity, err := scenetiming.ValidateContinuity(scenes)
	if err != nil {
		return nil, job.StageAllocating, err
	}
	if !continuity.IsValid {
		fixed, fixErr := scenetiming.FixAll(scenes, settings.minSceneSeconds)
		if fixErr != nil {
			return nil, job.StageAllocating, fixErr
		}
		scenes = fixed
		continuity, err = scenetiming.ValidateContinuity(scenes)
		if err != nil {
			return nil, job.StageAllocating, err
		}
	}

	s.publish(jobID, job.StageExtracting, "building audio segments")
	ranges := extractionRanges(split.Chunks)
	batch := audiomix.BuildBatch(ranges, req.WordTimings)
	for _, outcome := range batch.Outcomes {
		if outcome.Err != nil {
			log.Printf("[pipeline] job %s: range %s skipped: %v", jobID, outcome.SceneID, outcome.Err)
		}
	}

	audioSegments := batch.Segments
	if s.media.Enabled() && req.AudioURL != "" && len(ranges) > 0 {
		resp, extractErr := s.media.Extract(ctx, media.ExtractRequest{
			AudioURL: req.AudioURL,
			Ranges:   media.RangesFrom(ranges),
		})
		if extractErr != nil {
			log.Printf("[pipeline] job %s: media extraction failed, keeping metadata-only segments: %v", jobID, extractErr)
		} else {
			audioSegments = media.Apply(audioSegments, resp)
		}
	}

	levels := audiomix.ComputeLevelsReduced(settings.voiceVolume, settings.musicVolume, settings.duckingEnabled, settings.duckingReduction)

	return &job.Result{
		Segments:           segments,
		Split:              split,
		Scenes:             scenes,
		Continuity:         continuity,
		AudioSegments:      audioSegments,
		TotalAudioDuration: batch.TotalDuration,
		Levels:             levels,
	}, job.StageCompleted, nil
}

func (s *Service) segment(ctx context.Context, script string) ([]timeline.ScriptSegment, string) {
	if s.narrative != nil {
		segmentation := s.narrative.Segment(ctx, script)
		return segmentation.Segments, segmentation.Source
	}
	return analysis.Segment(script), "heuristic"
}

// publish appends an event to the job history and fans it out. Sends are
// non-blocking so one stalled subscriber cannot stall the run.
func (s *Service) publish(jobID string, stage job.Stage, message string) {
	event := job.ProgressEvent{
		JobID:     jobID,
		Stage:     stage,
		Progress:  stage.Fraction(),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return
	}
	j.Events = append(j.Events, event)

	for _, ch := range s.subscribers[jobID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// finish records the terminal state and the terminal event in one critical
// section, so a Subscribe can never observe the status without the event,
// then closes every subscriber channel.
func (s *Service) finish(jobID string, stage job.Stage, message string, result *job.Result, runErr error) {
	event := job.ProgressEvent{
		JobID:     jobID,
		Stage:     stage,
		Progress:  stage.Fraction(),
		Message:   message,
		Timestamp: time.Now().UTC(),
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	j, ok := s.jobs[jobID]
	if !ok {
		return
	}

	ended := event.Timestamp
	j.EndedAt = &ended
	if runErr != nil {
		j.Status = job.StatusFailed
		j.Error = runErr.Error()
	} else {
		j.Status = job.StatusCompleted
		j.Result = result
	}
	j.Events = append(j.Events, event)

	for _, ch := range s.subscribers[jobID] {
		select {
		case ch <- event:
		default:
		}
		close(ch)
	}
	delete(s.subscribers, jobID)
}

func extractionRanges(chunks []timeline.TranscriptChunk) []timeline.AudioExtractionRange {
	ranges := make([]timeline.AudioExtractionRange, 0, len(chunks))
	for _, chunk := range chunks {
		if len(chunk.WordTimings) == 0 {
			continue
		}
		ranges = append(ranges, timeline.AudioExtractionRange{
			SceneID:   fmt.Sprintf("scene_%d", chunk.ChunkIndex+1),
			StartTime: chunk.StartTime,
			EndTime:   chunk.EndTime,
			Purpose:   timeline.PurposeAvatar,
			Text:      chunk.Text,
		})
	}
	return ranges
}

func cloneJob(j *job.Job) job.Job {
	out := *j
	if len(j.Events) > 0 {
		out.Events = append([]job.ProgressEvent(nil), j.Events...)
	}
	if j.Result != nil {
		result := *j.Result
		out.Result = &result
	}
	return out
}
