package utils

import (
	"github.com/campushub/campusnews/utils/dotenv"
	"github.com/campushub/campusnews/utils/flag"
	Logger "github.com/campushub/campusnews/utils/log"
	"gopkg.in/DataDog/dd-trace-go.v1/profiler"
)

// InitProfiler starts the Datadog profiler. Call once from main, prod only.
func InitProfiler() {
	env := "development"
	if dotenv.Env() == dotenv.ProdEnv {
		env = "production"
	}

	if err := profiler.Start(
		profiler.WithService(flag.ServiceName),
		profiler.WithEnv(env),
		profiler.WithProfileTypes(
			profiler.CPUProfile,
			profiler.HeapProfile,
			// The profiles below are disabled by
			// default to keep overhead low, but
			// can be enabled as needed.
			// profiler.BlockProfile,
			// profiler.MutexProfile,
			// profiler.GoroutineProfile,
		),
	); err != nil {
		Logger.Log.Error("cannot start profiler: ", err)
	}
}

// Stop profiler, OK to be closed multiple times
func CloseProfiler() {
	profiler.Stop()
}
