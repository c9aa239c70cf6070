package pipeline

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/wehubfusion/Daedalus/pkg/document"
	apperrors "github.com/wehubfusion/Daedalus/pkg/errors"
)

// dispatcher fans one stage's work over a document's sentences. It creates
// exactly nThreads engine instances up front, binds each worker exclusively
// to one instance for the stage's entire run, and reassembles results into
// the document's original sentence order. This 1:1 worker/engine binding is
// the mechanism by which non-thread-safe engines are used safely under
// parallelism; no locking is required.
type dispatcher struct {
	stage    Stage
	nThreads int
	policy   FailurePolicy
	logger   *zap.Logger
}

// sentenceJob carries one sentence and its original position.
type sentenceJob struct {
	index    int
	sentence *document.Sentence
}

// sentenceResult carries one outcome back, keyed by original position.
type sentenceResult struct {
	index    int
	sentence *document.Sentence
	err      error
}

// run annotates every sentence of the document in place. Per-sentence
// failures are returned as SentenceErrors; only engine lifecycle failures
// are returned as an error, aborting the stage before any sentence runs.
func (d *dispatcher) run(ctx context.Context, doc *document.Document) ([]SentenceError, error) {
	if len(doc.Sentences) == 0 {
		return nil, nil
	}

	// All engine instances are created before any sentence is processed, so
	// a failing factory aborts without wasted annotation work.
	engines := make([]any, d.nThreads)
	for i := range engines {
		eng, err := d.stage.NewEngine()
		if err != nil {
			d.closeEngines(engines[:i])
			return nil, apperrors.Lifecycle(
				fmt.Sprintf("creating engine instance %d of %d", i+1, d.nThreads), err,
			).WithStage(d.stage.Name()).WithDocument(doc.ID)
		}
		engines[i] = eng
	}
	defer d.closeEngines(engines)

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan sentenceJob, len(doc.Sentences))
	results := make(chan sentenceResult, len(doc.Sentences))

	var wg sync.WaitGroup
	for i := 0; i < d.nThreads; i++ {
		wg.Add(1)
		go d.worker(runCtx, engines[i], jobs, results, &wg, cancel)
	}

	for i, s := range doc.Sentences {
		jobs <- sentenceJob{index: i, sentence: s}
	}
	close(jobs)

	go func() {
		wg.Wait()
		close(results)
	}()

	// Collect every outcome before returning, so one slow or failing
	// sentence cannot starve collection of the rest.
	updated := make([]*document.Sentence, len(doc.Sentences))
	failures := make([]error, len(doc.Sentences))
	for r := range results {
		updated[r.index] = r.sentence
		failures[r.index] = r.err
	}

	var sentenceErrors []SentenceError
	for i, s := range doc.Sentences {
		if failures[i] != nil {
			sentenceErrors = append(sentenceErrors, SentenceError{
				DocumentID: doc.ID,
				SentenceID: s.ID,
				Stage:      d.stage.Name(),
				Err:        failures[i],
			})
			continue
		}
		if updated[i] != nil {
			doc.Sentences[i] = updated[i]
		}
	}
	return sentenceErrors, nil
}

// worker processes sentences one at a time to completion against its
// exclusively owned engine instance.
func (d *dispatcher) worker(ctx context.Context, eng any, jobs <-chan sentenceJob, results chan<- sentenceResult, wg *sync.WaitGroup, cancel context.CancelFunc) {
	defer wg.Done()

	for job := range jobs {
		if err := ctx.Err(); err != nil {
			results <- sentenceResult{index: job.index, err: err}
			continue
		}

		// The stage gets a private clone; the original sentence is swapped
		// out only on success, keeping each stage's edits atomic from the
		// perspective of the next stage.
		annotated, err := d.stage.Annotate(ctx, job.sentence.Clone(), eng)
		if err != nil {
			d.logger.Warn("sentence annotation failed",
				zap.String("stage", d.stage.Name()),
				zap.String("sentence", job.sentence.ID),
				zap.Error(err),
			)
			if d.policy == AbortDocument {
				cancel()
			}
			results <- sentenceResult{index: job.index, err: err}
			continue
		}
		results <- sentenceResult{index: job.index, sentence: annotated}
	}
}

func (d *dispatcher) closeEngines(engines []any) {
	for _, eng := range engines {
		if eng == nil {
			continue
		}
		if closer, ok := eng.(interface{ Close() error }); ok {
			if err := closer.Close(); err != nil {
				d.logger.Warn("engine close failed",
					zap.String("stage", d.stage.Name()),
					zap.Error(err),
				)
			}
		}
	}
}
