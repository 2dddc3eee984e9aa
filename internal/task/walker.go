package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Saurabhkg03/saraavdata-backend/internal/domain"
	"github.com/Saurabhkg03/saraavdata-backend/internal/events"
	"github.com/Saurabhkg03/saraavdata-backend/internal/generation"
)

// Common errors
var (
	ErrNilGenerator = errors.New("generator cannot be nil")
	ErrNilSearcher  = errors.New("video searcher cannot be nil")
	ErrNilEmitter   = errors.New("emitter cannot be nil")
	ErrNilSaver     = errors.New("snapshot saver cannot be nil")
	ErrNilStopFlag  = errors.New("stop flag cannot be nil")
	ErrNilKeyPool   = errors.New("key pool cannot be nil")
	ErrNilLogger    = errors.New("logger cannot be nil")
)

// Service names used in credential status events.
const (
	groqService    = "Groq"
	youtubeService = "YouTube"
)

// logDivider separates run phases in the message stream.
var logDivider = strings.Repeat("=", 60)

// Checkpoint names a place in the walk where the stop flag is consulted.
// Cancellation takes effect only at these points, never mid-call.
type Checkpoint string

// The walker's checkpoints, in the order they occur per question.
// CheckpointWalkEnd covers a stop request that arrives after the last
// per-question checkpoint but before the summary.
const (
	CheckpointUnitStart        Checkpoint = "unit_start"
	CheckpointBeforeVideo      Checkpoint = "before_video"
	CheckpointAfterQueryGen    Checkpoint = "after_query_generation"
	CheckpointBeforeSolution   Checkpoint = "before_solution"
	CheckpointAfterSolutionGen Checkpoint = "after_solution_generation"
	CheckpointWalkEnd          Checkpoint = "walk_end"
)

// SnapshotSaver is the slice of the persistence layer the walker uses to
// flush progress after each successful mutation.
type SnapshotSaver interface {
	SaveOutput(bank *domain.QuestionBank) error
}

// KeyPool reports the state of a provider credential pool for status
// events. Position is one-based.
type KeyPool interface {
	Position() int
	Len() int
}

// WalkerConfig holds the tunables of the enrichment walk.
type WalkerConfig struct {
	// ForceRegenerateSolutions rewrites solutions even for questions that
	// already carry one. Videos are never regenerated.
	ForceRegenerateSolutions bool

	// AnomalyThreshold is the solution length, in characters, beyond which
	// the output is flagged as a possible hallucination.
	AnomalyThreshold int

	// StepPause is idle time inserted after each provider step to spread
	// request load.
	StepPause time.Duration

	// DefaultMarks stands in for missing or unparseable history entries
	// when deriving the target answer depth.
	DefaultMarks int
}

// DefaultWalkerConfig returns the production settings.
func DefaultWalkerConfig() WalkerConfig {
	return WalkerConfig{
		ForceRegenerateSolutions: true,
		AnomalyThreshold:         8000,
		StepPause:                time.Second,
		DefaultMarks:             7,
	}
}

// Result summarizes one finished walk.
type Result struct {
	// Cancelled reports whether a stop request ended the walk early.
	Cancelled bool

	// CancelledAt names the checkpoint that observed the stop flag.
	CancelledAt Checkpoint

	// Anomalies lists the questions whose solutions exceeded the length
	// threshold, in walk order.
	Anomalies []string
}

// Walker runs the enrichment pipeline over a question bank: one video
// reference and one generated solution per question, flushing the
// snapshot after every successful mutation so an interrupted run resumes
// where it stopped. A single walk runs on one goroutine; nothing here is
// safe for concurrent use.
type Walker struct {
	generator generation.Generator
	searcher  generation.VideoSearcher
	emitter   *events.Emitter
	saver     SnapshotSaver
	stop      *StopFlag
	groqKeys  KeyPool
	ytKeys    KeyPool
	cfg       WalkerConfig
	logger    *slog.Logger

	now   func() time.Time
	sleep func(time.Duration)
}

// NewWalker creates a Walker. Zero AnomalyThreshold and DefaultMarks fall
// back to the production defaults; a zero StepPause disables pausing.
func NewWalker(
	generator generation.Generator,
	searcher generation.VideoSearcher,
	emitter *events.Emitter,
	saver SnapshotSaver,
	stop *StopFlag,
	groqKeys KeyPool,
	ytKeys KeyPool,
	cfg WalkerConfig,
	logger *slog.Logger,
) (*Walker, error) {
	if generator == nil {
		return nil, ErrNilGenerator
	}
	if searcher == nil {
		return nil, ErrNilSearcher
	}
	if emitter == nil {
		return nil, ErrNilEmitter
	}
	if saver == nil {
		return nil, ErrNilSaver
	}
	if stop == nil {
		return nil, ErrNilStopFlag
	}
	if groqKeys == nil || ytKeys == nil {
		return nil, ErrNilKeyPool
	}
	if logger == nil {
		return nil, ErrNilLogger
	}

	if cfg.AnomalyThreshold == 0 {
		cfg.AnomalyThreshold = DefaultWalkerConfig().AnomalyThreshold
	}
	if cfg.DefaultMarks == 0 {
		cfg.DefaultMarks = DefaultWalkerConfig().DefaultMarks
	}

	return &Walker{
		generator: generator,
		searcher:  searcher,
		emitter:   emitter,
		saver:     saver,
		stop:      stop,
		groqKeys:  groqKeys,
		ytKeys:    ytKeys,
		cfg:       cfg,
		logger:    logger.With("component", "bank_walker"),
		now:       time.Now,
		sleep:     time.Sleep,
	}, nil
}

// walkState carries the mutable bookkeeping of one run.
type walkState struct {
	bank    *domain.QuestionBank
	total   int
	counter int
	res     *Result
}

// Run walks every unit and question of the bank, mutating it in place.
// It always emits the final status and returns a Result, whether the walk
// completed or was cancelled at a checkpoint.
func (w *Walker) Run(ctx context.Context, bank *domain.QuestionBank) Result {
	title := bank.Title
	if title == "" {
		title = "Unknown Subject"
	}

	st := &walkState{bank: bank, total: bank.TotalQuestions(), res: &Result{}}

	w.emitter.Message("%s", logDivider)
	w.emitter.Message("STARTING PROCESSING: %s", title)
	w.emitter.Message("Total questions found: %d", st.total)
	w.emitter.Message("%s", logDivider)
	w.logger.Info("starting walk", "subject", title, "total_questions", st.total)

	w.emitter.Progress(0, st.total, "")
	w.emitter.KeyStatus(groqService, w.groqKeys.Position(), w.groqKeys.Len(), events.KeyStateActive)
	w.emitter.KeyStatus(youtubeService, w.ytKeys.Position(), w.ytKeys.Len(), events.KeyStateActive)

	w.walk(ctx, st)
	w.finish(st.res)
	return *st.res
}

func (w *Walker) walk(ctx context.Context, st *walkState) {
	for unitIdx, unit := range st.bank.Units {
		if w.stopped(CheckpointUnitStart, st.res) {
			w.emitter.Message("Process cancelled by user.")
			return
		}

		unitTitle := unit.Title
		if unitTitle == "" {
			unitTitle = fmt.Sprintf("Unit %d", unitIdx+1)
		}

		for qIdx, q := range unit.Questions {
			st.counter++
			if w.processQuestion(ctx, st, unitTitle, unitIdx, qIdx, q) {
				return
			}
		}
	}
}

// processQuestion runs both enrichment steps for one question and reports
// whether the walk was cancelled during them.
func (w *Walker) processQuestion(
	ctx context.Context,
	st *walkState,
	unitTitle string,
	unitIdx, qIdx int,
	q *domain.Question,
) bool {
	text := q.Text
	if text == "" {
		text = "No Text"
	}

	w.emitter.Message("[%d/%d] Unit %d | Q%d: \"%s\"",
		st.counter, st.total, unitIdx+1, qIdx+1, truncateText(text, 60))
	w.emitter.Detail(events.FieldText, text)
	w.emitter.Progress(st.counter, st.total, fmt.Sprintf("Processing Q%d", st.counter))

	modified := false
	questionStart := w.now()

	if w.stopped(CheckpointBeforeVideo, st.res) {
		return true
	}
	if q.Video.Attempted {
		w.emitter.Message("Video already exists. Skipping.")
	} else {
		cancelled, changed := w.videoStep(ctx, st, q, text)
		if cancelled {
			return true
		}
		modified = modified || changed
	}

	if w.stopped(CheckpointBeforeSolution, st.res) {
		return true
	}
	if w.cfg.ForceRegenerateSolutions || !q.HasSolution() {
		cancelled, changed := w.solutionStep(ctx, st, q, text, unitTitle, unitIdx, qIdx)
		if cancelled {
			return true
		}
		modified = modified || changed
	} else {
		w.emitter.Message("Solution already exists. Skipping.")
	}

	if modified {
		elapsed := w.now().Sub(questionStart)
		w.emitter.Message("Progress saved. Total question time: %.1fs", elapsed.Seconds())
		w.emitter.Detail(events.FieldTotalTime, fmt.Sprintf("%.1fs", elapsed.Seconds()))
	}
	return false
}

// videoStep derives a search query from the question text and attaches
// the top video hit. A search that concludes without a result is recorded
// as an explicit empty outcome so resumed runs do not repeat it; a failed
// query generation leaves the question untouched for the next run.
func (w *Walker) videoStep(
	ctx context.Context,
	st *walkState,
	q *domain.Question,
	text string,
) (cancelled, modified bool) {
	w.emitter.Message("Step 1: Video search")
	stepStart := w.now()

	w.emitter.Message("Generating search query...")
	w.emitter.ActiveStep(fmt.Sprintf("Generating Query (Q%d)", st.counter))
	query, err := w.generateQuery(ctx, text)

	if w.stopped(CheckpointAfterQueryGen, st.res) {
		return true, false
	}

	if err != nil || query == "" {
		w.emitter.Message("Failed to generate query.")
		if err != nil {
			w.logger.Warn("query generation failed", "error", err)
		}
	} else {
		w.emitter.Message("Query ready: \"%s\"", query)
		w.emitter.Detail(events.FieldSearchQuery, query)

		w.emitter.Message("Searching YouTube...")
		w.emitter.ActiveStep(fmt.Sprintf("Searching YouTube (Q%d)", st.counter))
		ref, searchErr := w.searcher.Search(ctx, query)
		switch {
		case searchErr != nil:
			q.Video = domain.NoVideoFound()
			w.emitter.Message("No results found.")
			w.logger.Warn("video search failed", "error", searchErr)
		case ref == nil:
			q.Video = domain.NoVideoFound()
			w.emitter.Message("No results found.")
		default:
			q.Video = domain.FoundVideo(ref)
			w.emitter.Message("Found video: %s", ref.VideoID)
			w.flush(st.bank)
			modified = true
		}
	}

	elapsed := w.now().Sub(stepStart)
	w.emitter.Message("Step time: %.1fs", elapsed.Seconds())
	w.emitter.Detail(events.FieldVideoTime, fmt.Sprintf("%.1fs", elapsed.Seconds()))
	w.sleep(w.cfg.StepPause)
	return false, modified
}

// solutionStep generates the written solution and stores it. Oversized
// output is flagged for review but kept; a later failure never erases a
// solution stored by an earlier run.
func (w *Walker) solutionStep(
	ctx context.Context,
	st *walkState,
	q *domain.Question,
	text, unitTitle string,
	unitIdx, qIdx int,
) (cancelled, modified bool) {
	w.emitter.Message("Step 2: Detailed solution")
	w.emitter.ActiveStep(fmt.Sprintf("Generating Solution (Q%d) - Please Wait...", st.counter))
	stepStart := w.now()

	if isComparisonQuestion(text) {
		w.emitter.Message("Detected comparison question. Enforcing table format...")
	} else {
		w.emitter.Message("Generating solution...")
	}

	solution, err := w.generateSolution(ctx, text, unitTitle, q.History)

	if w.stopped(CheckpointAfterSolutionGen, st.res) {
		return true, false
	}

	if err != nil || solution == "" {
		w.emitter.Message("Failed to generate solution.")
		if err != nil {
			w.logger.Warn("solution generation failed", "error", err)
		}
	} else {
		charCount := utf8.RuneCountInString(solution)
		q.Solution = solution
		w.emitter.Message("Generated! (%d chars)", charCount)
		w.emitter.Detail(events.FieldCharCount, fmt.Sprintf("%d chars", charCount))

		if charCount > w.cfg.AnomalyThreshold {
			w.emitter.Message("ANOMALY: unusually large response (%d chars). Possible hallucination!", charCount)
			w.emitter.Detail(events.FieldAnomaly, fmt.Sprintf("Large response (%d chars)", charCount))
			st.res.Anomalies = append(st.res.Anomalies,
				fmt.Sprintf("Unit %d | Q%d: %d chars", unitIdx+1, qIdx+1, charCount))
		}

		w.flush(st.bank)
		modified = true
	}

	elapsed := w.now().Sub(stepStart)
	w.emitter.Message("Step time: %.1fs", elapsed.Seconds())
	w.emitter.Detail(events.FieldSolutionTime, fmt.Sprintf("%.1fs", elapsed.Seconds()))
	w.sleep(w.cfg.StepPause)
	return false, modified
}

// generateQuery asks the completion provider for a video search query.
// Only the part of the question before the first "/" is used; bank files
// join sub-questions with slashes and the lead part names the topic.
func (w *Walker) generateQuery(ctx context.Context, text string) (string, error) {
	searchText := strings.TrimSpace(strings.SplitN(text, "/", 2)[0])
	messages := []generation.Message{
		generation.SystemMessage(queryGenSystemPrompt),
		generation.UserMessage(fmt.Sprintf(queryGenUserPrompt, searchText)),
	}
	return w.generator.Generate(ctx, messages, generation.Params{})
}

// generateSolution asks the completion provider for the written solution,
// steering length by historical marks and format by comparison detection.
func (w *Walker) generateSolution(
	ctx context.Context,
	text, unitTitle string,
	history []domain.MarkRecord,
) (string, error) {
	systemPrompt := solutionSystemPrompt
	if isComparisonQuestion(text) {
		systemPrompt += comparisonFormatRule
	}
	userPrompt := fmt.Sprintf(solutionUserPrompt, unitTitle, w.depthInstruction(history), text)

	messages := []generation.Message{
		generation.SystemMessage(systemPrompt),
		generation.UserMessage(userPrompt),
	}
	return w.generator.Generate(ctx, messages, generation.Params{MaxTokens: solutionMaxTokens})
}

// depthInstruction derives the target answer depth from the mean of the
// question's historical marks. A record without a marks value counts as
// the default; a record whose value does not parse as a whole number
// discards the history entirely and the default mean applies.
func (w *Walker) depthInstruction(history []domain.MarkRecord) string {
	mean := float64(w.cfg.DefaultMarks)
	if len(history) > 0 {
		sum := 0
		usable := true
		for _, record := range history {
			if v, ok := record.Marks.Value(); ok {
				sum += v
				continue
			}
			if record.Marks.IsZero() {
				sum += w.cfg.DefaultMarks
				continue
			}
			usable = false
			break
		}
		if usable {
			mean = float64(sum) / float64(len(history))
		}
	}

	switch {
	case mean < 5:
		return depthConcise
	case mean > 10:
		return depthExtensive
	default:
		return depthComprehensive
	}
}

// stopped consults the stop flag at a named checkpoint. The first
// checkpoint to observe the flag is recorded in the result so tests can
// assert exactly where cancellation took effect.
func (w *Walker) stopped(cp Checkpoint, res *Result) bool {
	if !w.stop.IsSet() {
		return false
	}
	if !res.Cancelled {
		res.Cancelled = true
		res.CancelledAt = cp
		w.logger.Info("stop flag observed", "checkpoint", string(cp))
	}
	return true
}

// flush persists the bank after a successful mutation. Failures are
// reported and the walk continues; the next flush rewrites the full
// document anyway.
func (w *Walker) flush(bank *domain.QuestionBank) {
	if err := w.saver.SaveOutput(bank); err != nil {
		w.emitter.Message("Error saving file: %v", err)
		w.logger.Error("snapshot flush failed", "error", err)
	}
}

// finish emits the watchlist summary and the terminal status. A stop
// request that arrived after the last per-question checkpoint still marks
// the run as stopped.
func (w *Walker) finish(res *Result) {
	if !res.Cancelled && w.stop.IsSet() {
		res.Cancelled = true
		res.CancelledAt = CheckpointWalkEnd
	}

	w.emitter.Message("%s", logDivider)
	if len(res.Anomalies) > 0 {
		w.emitter.Message("HALLUCINATION WATCHLIST SUMMARY:")
		for _, entry := range res.Anomalies {
			w.emitter.Message("  - %s", entry)
		}
		w.emitter.Message("%s", logDivider)
	}

	if res.Cancelled {
		w.emitter.Message("PROCESSING STOPPED BY USER")
		w.emitter.RunStatus(events.StatusStopped)
	} else {
		w.emitter.Message("PROCESSING COMPLETE!")
		w.emitter.RunStatus(events.StatusComplete)
	}
	w.emitter.Message("%s", logDivider)
}

// truncateText shortens display text to max runes, marking the cut.
func truncateText(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}
	return string(runes[:max]) + "..."
}
