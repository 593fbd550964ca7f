package executor

import (
	"context"
	"log"
	"strings"

	"portfolio-assistant-be/internal/constant"
	"portfolio-assistant-be/pkg/llm"
	"portfolio-assistant-be/pkg/rag/contextshift"
	"portfolio-assistant-be/pkg/rag/dedup"
	"portfolio-assistant-be/pkg/rag/diversity"
	"portfolio-assistant-be/pkg/rag/judge"
	"portfolio-assistant-be/pkg/rag/rerank"
	"portfolio-assistant-be/pkg/rag/response"
	"portfolio-assistant-be/pkg/rag/retriever"
	"portfolio-assistant-be/pkg/rag/stage"
	"portfolio-assistant-be/pkg/store"
)

// Stage names as they appear in recorded outcomes.
const (
	StageRetrieve  = "retrieve"
	StageDedup     = "dedup"
	StageDiversity = "diversity"
	StageRerank    = "rerank"
	StageFilter    = "context_filter"
	StageGenerate  = "generate"
	StageJudge     = "judge"
)

// Input is one resolved chat turn ready for the pipeline. Mode must
// already be decided; PreviousQuery and PreviousProject come from the
// session's conversational state and may be empty.
type Input struct {
	Query           string
	Mode            string
	History         []llm.Message
	PreviousQuery   string
	PreviousProject string

	// TokenSink, when set, receives the answer incrementally. Judged
	// modes buffer the revision loop and replay the accepted answer;
	// recruiter mode streams model output live.
	TokenSink func(fragment string)

	// ContextSink, when set, fires exactly once with the final source
	// labels of the retrieval context, before any token is emitted.
	// Empty retrieval fires it with an empty slice.
	ContextSink func(sources []string)
}

// Result is the pipeline's answer for one turn.
type Result struct {
	Reply      string
	Mode       string
	JudgeScore *judge.Score
	Sources    []string
	Decision   contextshift.Decision
	Outcomes   []stage.Outcome
	Revisions  int
}

// Executor runs the full retrieval and generation pipeline with a
// bounded revise loop.
type Executor struct {
	retriever    *retriever.Retriever
	deduplicator *dedup.Deduplicator
	reranker     *rerank.Reranker
	decider      *contextshift.Decider
	generator    *response.Generator
	judge        *judge.Judge
	topK         int
	maxRevisions int
	logger       *log.Logger
}

func NewExecutor(
	ret *retriever.Retriever,
	deduplicator *dedup.Deduplicator,
	reranker *rerank.Reranker,
	decider *contextshift.Decider,
	generator *response.Generator,
	j *judge.Judge,
	topK, maxRevisions int,
	logger *log.Logger,
) *Executor {
	return &Executor{
		retriever:    ret,
		deduplicator: deduplicator,
		reranker:     reranker,
		decider:      decider,
		generator:    generator,
		judge:        j,
		topK:         topK,
		maxRevisions: maxRevisions,
		logger:       logger,
	}
}

// Execute runs one turn end to end. It only errors when the context is
// cancelled; every stage failure degrades into a safe default instead.
func (e *Executor) Execute(ctx context.Context, in Input) (*Result, error) {
	rec := &stage.Recorder{}

	decision := e.decider.Decide(ctx, in.Query, in.History, in.PreviousProject, in.PreviousQuery)

	chunks := e.buildContext(ctx, in.Query, decision, rec)
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if len(chunks) == 0 {
		e.logger.Printf("[PIPELINE] No relevant chunks found")
		if in.ContextSink != nil {
			in.ContextSink([]string{})
		}
		e.emit(in, constant.InsufficientContextMessage)
		return &Result{
			Reply:    constant.InsufficientContextMessage,
			Mode:     in.Mode,
			Sources:  []string{},
			Decision: decision,
			Outcomes: rec.Outcomes(),
		}, nil
	}

	if in.ContextSink != nil {
		in.ContextSink(store.Sources(chunks))
	}

	result, err := e.generate(ctx, in, chunks, rec)
	if err != nil {
		return nil, err
	}
	result.Decision = decision
	result.Sources = store.Sources(chunks)
	result.Outcomes = rec.Outcomes()
	return result, nil
}

// buildContext runs retrieve → dedup → diversity → rerank → filter and
// always returns a usable (possibly empty) chunk set.
func (e *Executor) buildContext(ctx context.Context, query string, decision contextshift.Decision, rec *stage.Recorder) []store.Chunk {
	chunks, err := e.retriever.Retrieve(ctx, query)
	if err != nil {
		e.logger.Printf("[WARN] Retrieval failed: %v", err)
		rec.Record(stage.Degrade(StageRetrieve, err.Error()))
		return nil
	}
	rec.Record(stage.Ok(StageRetrieve))
	if len(chunks) == 0 {
		return nil
	}

	deduplicated, err := e.deduplicator.Deduplicate(chunks)
	if err != nil {
		e.logger.Printf("[WARN] Deduplication failed: %v", err)
		rec.Record(stage.Degrade(StageDedup, err.Error()))
	} else {
		rec.Record(stage.Ok(StageDedup))
	}

	clusters := diversity.ClusterBySource(deduplicated)
	diverse := diversity.SelectDiverse(clusters, e.topK*2)
	rec.Record(stage.Ok(StageDiversity))

	reranked, err := e.reranker.Rerank(diverse, query, e.topK)
	if err != nil {
		e.logger.Printf("[WARN] Re-ranking failed: %v", err)
		rec.Record(stage.Degrade(StageRerank, err.Error()))
	} else {
		rec.Record(stage.Ok(StageRerank))
	}

	// The filter outcome follows the decision that produced it: a run
	// where the intent classifier was unavailable is degraded even when
	// the embedding fallback still picked a direction.
	filterOutcome := stage.Ok(StageFilter)
	if decision.Intent == contextshift.IntentUnknown {
		filterOutcome = stage.Degrade(StageFilter, "intent classifier unavailable")
	}

	if !decision.ShouldFilter {
		rec.Record(filterOutcome)
		return reranked
	}

	filtered := make([]store.Chunk, 0, len(reranked))
	for _, c := range reranked {
		if c.Source == decision.TargetProject {
			filtered = append(filtered, c)
		}
	}
	if len(filtered) == 0 {
		// Filtering away the whole context set would force the
		// insufficient-information answer on a follow-up question, so
		// fall back to the unfiltered set.
		e.logger.Printf("[WARN] Project filter %q emptied the context, keeping unfiltered set", decision.TargetProject)
		rec.Record(stage.Degrade(StageFilter, "filter emptied context"))
		return reranked
	}
	rec.Record(filterOutcome)
	return filtered
}

func (e *Executor) generate(ctx context.Context, in Input, chunks []store.Chunk, rec *stage.Recorder) (*Result, error) {
	// Recruiter mode skips judging, so its answer can stream live.
	if in.Mode == store.ModeRecruiter {
		return e.generateRecruiter(ctx, in, chunks, rec)
	}

	text, err := e.generator.Generate(ctx, in.Query, in.Mode, chunks, in.History, nil)
	if err != nil {
		rec.Record(stage.Degrade(StageGenerate, err.Error()))
		e.emit(in, text)
		return &Result{Reply: text, Mode: in.Mode}, ctx.Err()
	}
	rec.Record(stage.Ok(StageGenerate))

	score := e.judge.Evaluate(ctx, text, chunks, in.Mode)

	revisions := 0
	for score.ShouldRevise() && revisions < e.maxRevisions {
		revisions++
		e.logger.Printf("[PIPELINE] Revision %d/%d - issues: %s", revisions, e.maxRevisions, strings.Join(score.Feedback, "; "))

		revised, err := e.generator.Generate(ctx, in.Query, in.Mode, chunks, in.History, score.Feedback)
		if err != nil {
			rec.Record(stage.Degrade(StageGenerate, err.Error()))
			break
		}
		text = revised
		score = e.judge.Evaluate(ctx, text, chunks, in.Mode)
	}
	rec.Record(stage.Ok(StageJudge))

	if score.ShouldReject() {
		e.logger.Printf("[PIPELINE] Response rejected after %d revisions", revisions)
		text = constant.RejectionPreamble + strings.Join(score.Feedback, ", ") + constant.RejectionSuffix
	}

	e.emit(in, text)
	return &Result{
		Reply:      text,
		Mode:       in.Mode,
		JudgeScore: score,
		Revisions:  revisions,
	}, ctx.Err()
}

func (e *Executor) generateRecruiter(ctx context.Context, in Input, chunks []store.Chunk, rec *stage.Recorder) (*Result, error) {
	if in.TokenSink == nil {
		text, err := e.generator.Generate(ctx, in.Query, in.Mode, chunks, in.History, nil)
		if err != nil {
			rec.Record(stage.Degrade(StageGenerate, err.Error()))
		} else {
			rec.Record(stage.Ok(StageGenerate))
		}
		return &Result{Reply: text, Mode: in.Mode}, ctx.Err()
	}

	stream, err := e.generator.GenerateStream(ctx, in.Query, in.Mode, chunks, in.History)
	if err != nil {
		e.logger.Printf("[ERROR] Stream start failed: %v", err)
		rec.Record(stage.Degrade(StageGenerate, err.Error()))
		e.emit(in, constant.GenerationFailureMessage)
		return &Result{Reply: constant.GenerationFailureMessage, Mode: in.Mode}, ctx.Err()
	}

	var sb strings.Builder
	for chunk := range stream {
		if chunk.Err != nil {
			e.logger.Printf("[ERROR] Stream failed mid-answer: %v", chunk.Err)
			rec.Record(stage.Degrade(StageGenerate, chunk.Err.Error()))
			return &Result{Reply: sb.String(), Mode: in.Mode}, ctx.Err()
		}
		sb.WriteString(chunk.Content)
		in.TokenSink(chunk.Content)
	}
	rec.Record(stage.Ok(StageGenerate))
	return &Result{Reply: sb.String(), Mode: in.Mode}, ctx.Err()
}

// emit replays a buffered answer into the sink in word-sized fragments
// so buffered and live paths look the same to stream consumers.
func (e *Executor) emit(in Input, text string) {
	if in.TokenSink == nil || text == "" {
		return
	}
	words := strings.SplitAfter(text, " ")
	for _, w := range words {
		if w != "" {
			in.TokenSink(w)
		}
	}
}
