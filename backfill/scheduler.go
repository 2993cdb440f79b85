package backfill

import (
	"context"
	"time"

	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type SchedulerConfig struct {
	Name string

	// Interval between job rounds, defaults to one hour.
	Interval time.Duration
}

// Scheduler periodically emits one job message per job kind. It carries no
// job logic itself, the executor picks the messages up from the bus.
type Scheduler struct {
	Config SchedulerConfig

	EventBus *gochannel.GoChannel
}

func NewScheduler(config SchedulerConfig, e *gochannel.GoChannel) *Scheduler {
	if config.Interval == 0 {
		config.Interval = time.Hour
	}
	return &Scheduler{
		Config:   config,
		EventBus: e,
	}
}

func (s *Scheduler) RunModule(ctx context.Context) error {
	// First round fires immediately so a fresh deploy starts draining the
	// backlog without waiting a full interval.
	s.publishRound()

	ticker := time.NewTicker(s.Config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			s.publishRound()
		}
	}
}

func (s *Scheduler) publishRound() {
	for _, topic := range []string{
		TopicCleanupJob,
		TopicTranslationJob,
		TopicCategorizationJob,
	} {
		msg := message.NewMessage(watermill.NewUUID(), []byte(time.Now().UTC().Format(time.RFC3339)))
		if err := s.EventBus.Publish(topic, msg); err != nil {
			Logger.Log.Errorf("scheduler: fail to publish to %s: %v", topic, err)
			continue
		}
		Logger.Log.Infof("scheduler: published job on %s", topic)
	}
}

func (s *Scheduler) Name() string {
	return s.Config.Name
}
