package utils

import (
	"github.com/campushub/campusnews/utils/dotenv"
	"github.com/campushub/campusnews/utils/flag"
	Logger "github.com/campushub/campusnews/utils/log"
	"github.com/sirupsen/logrus"
	"gopkg.in/DataDog/dd-trace-go.v1/ddtrace/tracer"
)

// InitTracer starts the Datadog tracer. Call once from main.
func InitTracer() {
	env := "development"
	if dotenv.Env() == dotenv.ProdEnv {
		env = "production"
	}

	tracer.Start(
		tracer.WithService(flag.ServiceName),
		tracer.WithEnv(env),
	)

	Logger.Log.WithFields(
		logrus.Fields{"service": flag.ServiceName, "env": env},
	).Info("tracer initialized")
}

// Stop tracer, OK to be closed multiple times
func CloseTracer() {
	tracer.Stop()
}
