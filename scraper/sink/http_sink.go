package sink

import (
	"bytes"
	"compress/gzip"
	"encoding/json"
	"net/http"
	"os"
	"time"

	"github.com/campushub/campusnews/model"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/pkg/errors"
)

// HTTPSink posts batches to the ingest gateway as gzip-compressed JSON,
// authenticated with the shared collector secret.
type HTTPSink struct {
	endpoint string
	apiKey   string
	client   *http.Client
}

func NewHTTPSink() *HTTPSink {
	endpoint := os.Getenv("INGEST_ENDPOINT")
	if endpoint == "" {
		endpoint = "http://localhost:8080/api/news"
	}
	return &HTTPSink{
		endpoint: endpoint,
		apiKey:   os.Getenv("API_KEY"),
		client: &http.Client{
			// The gateway enriches synchronously, a big bulletin batch can
			// take a while.
			Timeout: 10 * time.Minute,
		},
	}
}

func (s *HTTPSink) Push(entries []model.RawEntry) error {
	if len(entries) == 0 {
		return nil
	}

	payload, err := json.Marshal(entries)
	if err != nil {
		return errors.Wrap(err, "fail to marshal batch")
	}

	var compressed bytes.Buffer
	gz := gzip.NewWriter(&compressed)
	if _, err := gz.Write(payload); err != nil {
		return errors.Wrap(err, "fail to compress batch")
	}
	if err := gz.Close(); err != nil {
		return errors.Wrap(err, "fail to finish compressing batch")
	}

	req, err := http.NewRequest(http.MethodPost, s.endpoint, &compressed)
	if err != nil {
		return errors.Wrap(err, "fail to build ingest request")
	}
	req.Header.Set("API-Key", s.apiKey)
	req.Header.Set("Content-Type", "application/json; charset=utf-8")
	req.Header.Set("Content-Encoding", "gzip")

	resp, err := s.client.Do(req)
	if err != nil {
		return errors.Wrap(err, "ingest request failed")
	}
	defer resp.Body.Close()

	Logger.Log.Infof("pushed %d entries, gateway responded %s", len(entries), resp.Status)
	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("gateway refused batch: %s", resp.Status)
	}
	return nil
}
