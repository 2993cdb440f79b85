package backfill

import (
	"context"
	"time"

	Logger "github.com/campushub/campusnews/utils/log"
)

const (
	// Job messages emitted by the scheduler, one topic per job kind.
	TopicCleanupJob        = "backfill.cleanup"
	TopicTranslationJob    = "backfill.translations"
	TopicCategorizationJob = "backfill.categorizations"

	// Result messages emitted by the executor after a job run.
	TopicJobResult = "backfill.result"

	gracefulRetryDelay = 3 * time.Second
)

// Module is one long-running component of the backfill engine. Each module
// runs in its own goroutine for the lifetime of the engine.
type Module interface {
	// RunModule contains the module logic. It blocks until the context is
	// cancelled and returns an error only on unrecoverable failure.
	RunModule(ctx context.Context) error

	// Name uniquely identifies the module instance.
	Name() string
}

// runModuleWithGracefulRestart restarts a module after a short delay
// whenever it exits with an error, until the context is cancelled.
func runModuleWithGracefulRestart(ctx context.Context, module Module) {
	for {
		err := module.RunModule(ctx)
		if err == nil {
			return
		}
		Logger.Log.Errorf(
			"module %s exited with error %v, retry in %v",
			module.Name(), err, gracefulRetryDelay)

		select {
		case <-ctx.Done():
			return
		case <-time.After(gracefulRetryDelay):
		}
	}
}
