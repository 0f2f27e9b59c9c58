package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"

	"github.com/Chapsvision-dev/dataset-ingest/internal/archive"
	"github.com/Chapsvision-dev/dataset-ingest/internal/config"
	"github.com/Chapsvision-dev/dataset-ingest/internal/fetch"
	"github.com/Chapsvision-dev/dataset-ingest/internal/ingest"
	"github.com/Chapsvision-dev/dataset-ingest/internal/logx"
	"github.com/Chapsvision-dev/dataset-ingest/internal/provider"
	"github.com/Chapsvision-dev/dataset-ingest/internal/version"

	_ "github.com/Chapsvision-dev/dataset-ingest/internal/provider/azure"
	_ "github.com/Chapsvision-dev/dataset-ingest/internal/provider/s3"
)

// Test seams, overridden in unit tests. Keep signatures in sync with packages.
var (
	loadConfig  func(sink string) (config.Config, error)                                                       = config.Load
	loadStore   func(sink string) (config.Config, error)                                                       = config.LoadStore
	newProvider func(name string, cfg any) (provider.Provider, error)                                          = provider.New
	uploadRun   func(context.Context, config.Config, provider.Provider, ingest.Options) (ingest.Result, error) = ingest.Upload
	extractRun  func(context.Context, config.Config, ingest.Options) (ingest.Result, error)                    = ingest.Extract
	listRun     func(context.Context, provider.Provider, io.Writer) (ingest.Listing, error)                    = ingest.List
	stdout      io.Writer                                                                                      = os.Stdout
	exit        func(int)                                                                                      = os.Exit
)

const usage = `
Usage:
  ingest upload  [provider]   download the dataset and upload it (provider: azure|s3)
  ingest extract [dir]        download the dataset and extract it locally
  ingest list    [provider]   list what the remote container holds
  ingest version | --version | -v
  ingest help    | --help    | -h

Notes:
  - Configuration comes from the environment (a .env file is loaded if present):
      DATA_SOURCE_URL, AZURE_STORAGE_CONNECTION_STRING, AZURE_CONTAINER_NAME (default patient-data)
      S3_ENDPOINT, S3_ACCESS_KEY, S3_SECRET_KEY, S3_BUCKET, S3_REGION, S3_USE_SSL
      INGEST_PROVIDER (default azure), INGEST_LOCAL_DIR (default data/raw)
  - Failures are reported but exit 0; set INGEST_STRICT_EXIT=true to exit 1 instead.
`

// main wires CLI -> config -> provider -> upload/extract/list.
// Exit codes: 0 success (or reported failure), 1 failure with INGEST_STRICT_EXIT, 2 usage error.
func main() {
	_ = godotenv.Load() // best-effort
	logx.InitFromEnv()

	args := os.Args[1:]
	if len(args) < 1 {
		fmt.Fprint(stdout, usage)
		exit(2)
		return
	}
	action := strings.ToLower(args[0])

	ctx := withSignals(context.Background())

	switch action {
	case "version", "--version", "-v":
		fmt.Fprintln(stdout, version.String())
		exit(0)

	case "help", "--help", "-h":
		fmt.Fprint(stdout, usage)
		exit(0)

	case "upload":
		sink := pickArgOrEnv(2, "INGEST_PROVIDER", config.SinkAzure)
		cfg, err := loadConfig(sink)
		if err != nil {
			fail("config", err, "Something went wrong with the upload")
			return
		}
		p, err := newProvider(cfg.Sink, cfg)
		if err != nil {
			fail("provider", err, "Something went wrong with the upload")
			return
		}

		start := time.Now()
		res, err := uploadRun(ctx, cfg, p, ingest.Options{Out: stdout})
		if err != nil {
			fail("upload", err, "Something went wrong with the upload")
			return
		}
		log.Info().
			Str("action", "upload").
			Str("provider", p.Name()).
			Str("container", p.Container()).
			Int("files", res.Count).
			Int64("bytes", res.TotalBytes).
			Dur("elapsed_ms", time.Since(start)).
			Msg("upload OK")

		// Verification pass; a listing failure does not undo a successful upload.
		if _, err := listRun(ctx, p, stdout); err != nil {
			log.Error().Err(err).Str("action", "list").Str("container", p.Container()).Msg("list failed")
			fmt.Fprintf(stdout, "Couldn't list files: %v\n", err)
		}

	case "extract":
		cfg, err := loadConfig(config.SinkLocal)
		if err != nil {
			fail("config", err, "Something went wrong with the extraction")
			return
		}
		cfg.LocalDir = pickArgOrEnv(2, "INGEST_LOCAL_DIR", cfg.LocalDir)

		start := time.Now()
		res, err := extractRun(ctx, cfg, ingest.Options{Out: stdout})
		if err != nil {
			fail("extract", err, "Something went wrong with the extraction")
			return
		}
		log.Info().
			Str("action", "extract").
			Str("dir", cfg.LocalDir).
			Str("archive", res.Archive).
			Int("files", res.Count).
			Int64("bytes", res.TotalBytes).
			Dur("elapsed_ms", time.Since(start)).
			Msg("extract OK")

	case "list":
		sink := pickArgOrEnv(2, "INGEST_PROVIDER", config.SinkAzure)
		cfg, err := loadStore(sink)
		if err != nil {
			fail("config", err, "Couldn't list files")
			return
		}
		p, err := newProvider(cfg.Sink, cfg)
		if err != nil {
			fail("provider", err, "Couldn't list files")
			return
		}
		if _, err := listRun(ctx, p, stdout); err != nil {
			fail("list", err, "Couldn't list files")
			return
		}

	default:
		fmt.Fprint(stdout, usage)
		exit(2)
	}
}

// fail logs err, prints a human explanation and exits according to INGEST_STRICT_EXIT.
func fail(action string, err error, summary string) {
	log.Error().Err(err).Str("action", action).Msg(action + " failed")
	fmt.Fprintln(stdout, explain(err))
	fmt.Fprintln(stdout, summary)
	if config.StrictExit() {
		exit(1)
		return
	}
	exit(0)
}

// explain maps error kinds to the message printed for the operator.
func explain(err error) string {
	var me *config.MissingError
	var se *fetch.StatusError
	switch {
	case errors.As(err, &me):
		msg := fmt.Sprintf("Error: %s not found in environment variables", me.Key)
		if strings.HasPrefix(me.Key, "AZURE_") {
			msg += "\nMake sure you have a .env file with your Azure connection string"
		}
		return msg
	case errors.As(err, &se):
		return fmt.Sprintf("Failed to download: %d", se.StatusCode)
	case errors.Is(err, archive.ErrArchive):
		return fmt.Sprintf("Error processing files: %v", err)
	case errors.Is(err, context.Canceled):
		return "Interrupted"
	default:
		return fmt.Sprintf("Error: %v", err)
	}
}

func pickArgOrEnv(idx int, env string, def string) string {
	if len(os.Args) > idx && os.Args[idx] != "" {
		return os.Args[idx]
	}
	if v, ok := os.LookupEnv(env); ok && v != "" {
		return v
	}
	return def
}

func withSignals(parent context.Context) context.Context {
	ctx, cancel := context.WithCancel(parent)
	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
		<-ch
		cancel()
	}()
	return ctx
}
