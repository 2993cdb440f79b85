package sink

import (
	"encoding/json"

	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
)

// StdErrSink logs batches instead of posting them, used for local adapter
// development.
type StdErrSink struct{}

func NewStdErrSink() *StdErrSink {
	return &StdErrSink{}
}

func (s *StdErrSink) Push(entries []model.RawEntry) error {
	for _, entry := range entries {
		serialized, _ := json.MarshalIndent(entry, "", "  ")
		Logger.Log.Info("=== mock pushed to gateway ===\n", string(serialized))
	}
	return nil
}
