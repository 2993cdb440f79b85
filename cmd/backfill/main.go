package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/DataDog/datadog-go/statsd"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/campushub/campusnews/backfill"
	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	. "github.com/campushub/campusnews/utils/log"
)

func newDogStatsdClient() *statsd.Client {
	client, err := statsd.New("127.0.0.1:8125")
	if err != nil {
		panic(err)
	}
	return client
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}

	eventbus := gochannel.NewGoChannel(
		gochannel.Config{
			OutputChannelBuffer:            100,
			BlockPublishUntilSubscriberAck: false,
		},
		watermill.NewStdLogger(false, false),
	)

	ctx, cancel := context.WithCancel(context.Background())

	runner := backfill.NewRunner(db, enrich.NewOpenAIClient())

	modules := []backfill.Module{
		backfill.NewScheduler(backfill.SchedulerConfig{Name: "scheduler"}, eventbus),
		backfill.NewExecutor(backfill.ExecutorConfig{Name: "executor"}, runner, eventbus),
		backfill.NewReporter(backfill.ReporterConfig{Name: "reporter"}, newDogStatsdClient(), eventbus),
	}

	engine := backfill.NewEngine(modules, ctx, cancel, eventbus)

	// Shut down cleanly on SIGINT/SIGTERM.
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		engine.Shutdown()
	}()

	Log.Info("backfill engine starts up")
	engine.Run()
}
