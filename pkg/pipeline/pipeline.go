package pipeline

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/document"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// Pipeline runs an ordered list of stages over documents. The stage list is
// validated once at construction; stage N+1 never begins on a sentence until
// stage N has fully completed, including result reassembly, for the whole
// document.
type Pipeline struct {
	stages []Stage
	config Config
	logger *zap.Logger
	tracer trace.Tracer

	initOnce sync.Once
	initErr  error

	mu     sync.Mutex
	closed bool
}

// New validates the stage ordering and creates a pipeline. Validation
// failures are configuration errors naming the offending stage and its
// missing capabilities.
func New(stages []Stage, config Config) (*Pipeline, error) {
	if len(stages) == 0 {
		return nil, apperrors.Configuration("pipeline requires at least one stage", nil)
	}
	config.Validate()
	if err := Validate(stages); err != nil {
		return nil, err
	}
	return &Pipeline{
		stages: stages,
		config: config,
		logger: config.Logger,
		tracer: config.Tracer,
	}, nil
}

// Stages returns the pipeline's ordered stage names.
func (p *Pipeline) Stages() []string {
	names := make([]string, len(p.stages))
	for i, st := range p.stages {
		names[i] = st.Name()
	}
	return names
}

// Run annotates one document, stage by stage. Per-sentence failures are
// collected into the result per the configured failure policy; lifecycle
// failures abort between stages and are returned as an error.
func (p *Pipeline) Run(ctx context.Context, doc *document.Document) (*Result, error) {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil, apperrors.Lifecycle("run on closed pipeline", apperrors.ErrPipelineClosed)
	}
	p.mu.Unlock()

	if err := p.init(ctx); err != nil {
		return nil, err
	}

	if p.tracer != nil {
		var span trace.Span
		ctx, span = p.tracer.Start(ctx, "pipeline.run",
			trace.WithAttributes(
				attribute.String("document.id", doc.ID),
				attribute.Int("document.sentences", len(doc.Sentences)),
			))
		defer span.End()
	}

	result := &Result{Document: doc}
	for _, st := range p.stages {
		p.logger.Debug("running stage",
			zap.String("stage", st.Name()),
			zap.String("document", doc.ID),
			zap.Int("sentences", len(doc.Sentences)),
			zap.Int("engines", p.config.NThreads),
		)

		stageCtx := ctx
		var span trace.Span
		if p.tracer != nil {
			stageCtx, span = p.tracer.Start(ctx, "stage."+st.Name())
		}

		d := &dispatcher{
			stage:    st,
			nThreads: p.config.NThreads,
			policy:   p.config.FailurePolicy,
			logger:   p.logger,
		}
		sentenceErrors, err := d.run(stageCtx, doc)

		if span != nil {
			if err != nil {
				span.RecordError(err)
				span.SetStatus(codes.Error, err.Error())
			}
			span.SetAttributes(attribute.Int("stage.failures", len(sentenceErrors)))
			span.End()
		}
		if err != nil {
			return nil, err
		}
		result.SentenceErrors = append(result.SentenceErrors, sentenceErrors...)
	}
	return result, nil
}

// init runs each stage's one-time Init hook, in order, before any sentence
// is processed.
func (p *Pipeline) init(ctx context.Context) error {
	p.initOnce.Do(func() {
		for _, st := range p.stages {
			initer, ok := st.(Initer)
			if !ok {
				continue
			}
			if err := initer.Init(ctx); err != nil {
				p.initErr = apperrors.Lifecycle("initializing stage", err).WithStage(st.Name())
				return
			}
		}
	})
	return p.initErr
}

// Close releases every stage's resources. It is guaranteed to run each
// stage's Close hook exactly once, regardless of whether processing
// succeeded, failed, or was aborted.
func (p *Pipeline) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return nil
	}
	p.closed = true

	var firstErr error
	for _, st := range p.stages {
		closer, ok := st.(Closer)
		if !ok {
			continue
		}
		if err := closer.Close(); err != nil {
			p.logger.Warn("stage close failed",
				zap.String("stage", st.Name()),
				zap.Error(err),
			)
			if firstErr == nil {
				firstErr = apperrors.Lifecycle("closing stage", err).WithStage(st.Name())
			}
		}
	}
	return firstErr
}
