package main

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/campushub/campusnews/enrich"
	"github.com/campushub/campusnews/ledger"
	"github.com/campushub/campusnews/pipeline"
	"github.com/campushub/campusnews/server"
	"github.com/campushub/campusnews/utils"
	"github.com/campushub/campusnews/utils/dotenv"
	. "github.com/campushub/campusnews/utils/log"
)

func dailyCap() int64 {
	if raw := os.Getenv("TOKEN_DAILY_CAP"); raw != "" {
		if parsed, err := strconv.ParseInt(raw, 10, 64); err == nil && parsed > 0 {
			return parsed
		}
		Log.Warn("invalid TOKEN_DAILY_CAP, falling back to default")
	}
	return ledger.DefaultDailyCap
}

func cleanup() {
	utils.CloseProfiler()
	utils.CloseTracer()
	Log.Info("api server shutdown")
}

func main() {
	defer cleanup()

	if err := dotenv.LoadDotEnvs(); err != nil {
		panic(err)
	}
	utils.InitTracer()
	utils.InitProfiler()

	db, err := utils.GetDBConnection()
	if err != nil {
		panic(err)
	}
	utils.DatabaseSetupAndMigration(db)
	if err := utils.SeedLanguagesFromFile(db, filepath.Join("config", "sprachen.txt")); err != nil {
		Log.Warn("fail to seed languages: ", err)
	}

	dedup, err := utils.GetDedupCache()
	if err != nil {
		Log.Warn("dedup cache unavailable, falling back to database-only dedup: ", err)
	}

	processor := pipeline.NewProcessor(db, enrich.NewOpenAIClient(), dailyCap(), dedup)

	router := server.SetupRouter(server.NewHandler(db, processor))

	Log.Info("api server starts up")
	router.Run(":8080")
}
