package backfill

import (
	"context"
	"sync"

	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

// Engine manages shared resources and the execution lifecycle of each
// module. Modules communicate over a shared event bus, currently a golang
// channel implementation which could later be substituted by an external
// broker.
type Engine struct {
	Modules []Module

	ctx    context.Context
	cancel context.CancelFunc

	EventBus *gochannel.GoChannel
}

func NewEngine(ms []Module, ctx context.Context, cancel context.CancelFunc, e *gochannel.GoChannel) *Engine {
	return &Engine{
		Modules:  ms,
		ctx:      ctx,
		cancel:   cancel,
		EventBus: e,
	}
}

// Run executes all engine modules and blocks until every module finished.
func (e *Engine) Run() {
	var wg sync.WaitGroup

	for idx := range e.Modules {
		wg.Add(1)
		go func(index int) {
			defer wg.Done()
			Logger.Log.Infof("start engine module %s", e.Modules[index].Name())
			runModuleWithGracefulRestart(e.ctx, e.Modules[index])
			Logger.Log.Infof("module %s finished execution", e.Modules[index].Name())
		}(idx)
	}

	wg.Wait()
}

// Shutdown cancels the root context, letting every module drain and exit.
func (e *Engine) Shutdown() {
	Logger.Log.Infoln("starting graceful shutdown process, goodbye!")
	e.cancel()
	if err := e.EventBus.Close(); err != nil {
		Logger.Log.Error("fail to close event bus: ", err)
	}
}
