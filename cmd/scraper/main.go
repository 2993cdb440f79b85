package main

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/campushub/campusnews/scraper"
	"github.com/campushub/campusnews/scraper/sink"
	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	. "github.com/campushub/campusnews/utils/log"
)

// buildAdapters assembles the adapter set for one run. The bulletin
// adapter gets the date probe so it short-circuits on already-ingested
// issues, the rest re-collect and rely on backend dedup.
func buildAdapters(ctx context.Context) []scraper.Adapter {
	latest, hasLatest, err := scraper.ProbeLatestRundmailDate(ctx)
	if err != nil {
		Log.Warn("fail to probe latest bulletin date, walking full archive: ", err)
	}

	adapters := []scraper.Adapter{
		scraper.NewRundmailAdapter(latest, hasLatest),
		scraper.NewPressemitteilungAdapter(),
	}

	for _, faculty := range strings.Split(os.Getenv("FACHBEREICHE"), ",") {
		if trimmed := strings.TrimSpace(faculty); trimmed != "" {
			adapters = append(adapters, scraper.NewFachbereichAdapter(trimmed))
		}
	}

	if os.Getenv("IMAP_SERVER") != "" {
		adapters = append(adapters, scraper.NewMailinglisteAdapter())
	}
	if os.Getenv("DEKANAT_FEED_URLS") != "" {
		adapters = append(adapters, scraper.NewDekanatRSSAdapter())
	}
	return adapters
}

func main() {
	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	var s sink.EntrySink
	if utils.IsProdEnv() {
		s = sink.NewHTTPSink()
	} else {
		s = sink.NewStdErrSink()
	}

	for _, adapter := range buildAdapters(ctx) {
		scraper.CollectAndPush(ctx, adapter, s)
	}

	Log.Info("scraper run finished")
}
