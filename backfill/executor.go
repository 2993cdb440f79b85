package backfill

import (
	"context"
	"encoding/json"
	"sync"

	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type ExecutorConfig struct {
	Name string
}

// Executor subscribes to the job topics and runs the matching job for
// every message. Job kinds run concurrently, messages within one kind run
// in order.
type Executor struct {
	Config ExecutorConfig

	Runner *Runner

	EventBus *gochannel.GoChannel
}

func NewExecutor(config ExecutorConfig, runner *Runner, e *gochannel.GoChannel) *Executor {
	return &Executor{
		Config:   config,
		Runner:   runner,
		EventBus: e,
	}
}

func (e *Executor) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := map[string]func(context.Context) Result{
		TopicCleanupJob:        e.Runner.BackfillCleanup,
		TopicTranslationJob:    e.Runner.BackfillTranslations,
		TopicCategorizationJob: e.Runner.BackfillCategorizations,
	}

	var wg sync.WaitGroup
	for topic, job := range jobs {
		messages, err := e.EventBus.Subscribe(ctx, topic)
		if err != nil {
			return err
		}
		wg.Add(1)
		go func(topic string, job func(context.Context) Result, messages <-chan *message.Message) {
			defer wg.Done()
			e.consume(ctx, topic, job, messages)
		}(topic, job, messages)
	}

	wg.Wait()
	return nil
}

func (e *Executor) consume(ctx context.Context, topic string, job func(context.Context) Result, messages <-chan *message.Message) {
	for msg := range messages {
		msg.Ack()

		result := job(ctx)
		Logger.Log.Infof("executor: %s processed=%d failed=%d exhausted=%v",
			topic, result.Processed, result.Failed, result.Exhausted)

		payload, err := json.Marshal(result)
		if err != nil {
			Logger.Log.Error("executor: fail to marshal result: ", err)
			continue
		}
		if err := e.EventBus.Publish(TopicJobResult, message.NewMessage(watermill.NewUUID(), payload)); err != nil {
			Logger.Log.Error("executor: fail to publish result: ", err)
		}
	}
}

func (e *Executor) Name() string {
	return e.Config.Name
}
