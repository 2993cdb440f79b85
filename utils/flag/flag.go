/*
flag Package set up cli flags shared across services

Usage:

	Flags listed in this package are shared across boundaries and service-agnostic
	For service dependent flags please define in their respective package
*/
package flag

import (
	"flag"
	"testing"
)

const (
	APIServer = "api_server"
	Scraper   = "scraper"
	Backfill  = "backfill"
)

var (
	IsDevelopment bool
	ServiceName   string
)

func init() {
	flag.BoolVar(&IsDevelopment, "dev", true, "set to true if the current run is for development. default value is true")
	flag.StringVar(&ServiceName, "service", APIServer, "'api_server', 'scraper' or 'backfill'")
	// Parsing here would reject the -test.* flags registered later by the
	// testing package, so leave parsing to the test framework under `go test`.
	if !testing.Testing() {
		flag.Parse()
	}
}
