package log_test

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/ardnew/varz/log"
)

func Example() {
	logger := log.Make(os.Stdout,
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger.Info("variables loaded", slog.Int("count", 3))
	logger.Debug("not shown")

	// Output:
	// level=INFO msg="variables loaded" count=3
}

func Example_json() {
	logger := log.Make(os.Stdout,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatJSON),
		log.WithPretty(false),
		log.WithTimeLayout("none"))

	logger = logger.With(slog.String("file", "vars.yaml"))
	logger.Trace("resolve variable", slog.String("reference", "${name}"))

	// Output:
	// {"level":"TRACE","msg":"resolve variable","file":"vars.yaml","reference":"${name}"}
}

func ExampleParseLevel() {
	for _, s := range []string{"trace", "WARN", "info+2", "bogus"} {
		fmt.Println(log.ParseLevel(s))
	}

	// Output:
	// trace
	// warn
	// info+2
	// info
}
