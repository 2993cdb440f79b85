package backfill

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/DataDog/datadog-go/statsd"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

const (
	statsdProcessedCounter = "backfill.job.processed"
	statsdFailedCounter    = "backfill.job.failed"
	statsdExhaustedCounter = "backfill.job.exhausted"
)

type ReporterConfig struct {
	Name string
}

// Reporter listens for job results and forwards the counters to Datadog
// for monitoring.
type Reporter struct {
	Config ReporterConfig

	Statsd *statsd.Client

	EventBus *gochannel.GoChannel
}

func NewReporter(config ReporterConfig, statsd *statsd.Client, e *gochannel.GoChannel) *Reporter {
	return &Reporter{
		Config:   config,
		Statsd:   statsd,
		EventBus: e,
	}
}

func (r *Reporter) RunModule(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	messages, err := r.EventBus.Subscribe(ctx, TopicJobResult)
	if err != nil {
		return err
	}

	for msg := range messages {
		msg.Ack()

		var result Result
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			Logger.Log.Error("reporter: fail to unmarshal result: ", err)
			continue
		}
		r.report(&result)
	}
	return nil
}

func (r *Reporter) report(result *Result) {
	tags := []string{fmt.Sprintf("job:%s", result.Job)}

	if err := r.Statsd.Count(statsdProcessedCounter, int64(result.Processed), tags, 1); err != nil {
		Logger.Log.Infoln("cannot report processed count")
	}
	if err := r.Statsd.Count(statsdFailedCounter, int64(result.Failed), tags, 1); err != nil {
		Logger.Log.Infoln("cannot report failed count")
	}
	if result.Exhausted {
		if err := r.Statsd.Incr(statsdExhaustedCounter, tags, 1); err != nil {
			Logger.Log.Infoln("cannot report exhausted state")
		}
	}
}

func (r *Reporter) Name() string {
	return r.Config.Name
}
