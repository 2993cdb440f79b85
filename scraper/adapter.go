// Package scraper holds the per-source adapters that harvest external
// sites and mailboxes and normalize every item into a RawEntry. Adapters
// only produce batches; persisting happens behind the ingest gateway.
package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/campushub/campusnews/model"
	"github.com/campushub/campusnews/scraper/sink"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
)

// Adapter is one source-specific scraper.
type Adapter interface {
	Name() string
	Collect(ctx context.Context) ([]model.RawEntry, error)
}

// CollectAndPush runs one adapter and hands its batch to the sink. Adapter
// failures are logged, one broken source never stops the others.
func CollectAndPush(ctx context.Context, adapter Adapter, s sink.EntrySink) {
	entries, err := adapter.Collect(ctx)
	if err != nil {
		Logger.Log.Error("adapter ", adapter.Name(), " failed: ", err)
		return
	}
	Logger.Log.Infof("adapter %s collected %d entries", adapter.Name(), len(entries))
	if err := s.Push(entries); err != nil {
		Logger.Log.Error("adapter ", adapter.Name(), " failed to push batch: ", err)
	}
}

// ProbeLatestRundmailDate asks the backend for the newest ingested bulletin
// timestamp. The bulletin adapter short-circuits its archive walk at that
// point so every run does bounded work. ok is false when no bulletin has
// ever been ingested.
func ProbeLatestRundmailDate(ctx context.Context) (latest time.Time, ok bool, err error) {
	endpoint := os.Getenv("INGEST_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080/api/news"
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint+"/rundmail/date", nil)
	if err != nil {
		return time.Time{}, false, err
	}
	req.Header.Set("API-Key", os.Getenv("API_KEY"))

	resp, err := (&http.Client{Timeout: 30 * time.Second}).Do(req)
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "date probe failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return time.Time{}, false, nil
	}
	if resp.StatusCode != http.StatusOK {
		return time.Time{}, false, errors.Errorf("date probe responded %s", resp.Status)
	}

	var body struct {
		Date string `json:"date"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return time.Time{}, false, errors.Wrap(err, "fail to decode date probe response")
	}
	parsed, err := time.ParseInLocation(model.WireTimeLayout, body.Date, model.Timezone())
	if err != nil {
		return time.Time{}, false, errors.Wrap(err, "fail to parse probe date")
	}
	return parsed, true, nil
}
