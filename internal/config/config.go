package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
)

// Sink names accepted by Load.
const (
	SinkAzure = "azure"
	SinkS3    = "s3"
	SinkLocal = "local"
)

// Defaults shared by both variants.
const (
	DefaultContainer   = "patient-data"
	DefaultBlobPrefix  = "raw-data"
	DefaultLocalDir    = "data/raw"
	DefaultArchiveName = "diabetes_data"
	DefaultS3Region    = "us-east-1"

	// DefaultLocalSourceURL is the dataset fetched by the local variant when
	// DATA_SOURCE_URL is unset.
	DefaultLocalSourceURL = "https://archive.ics.uci.edu/static/public/296/diabetes+130-us+hospitals+for+years+1999-2008.zip"
)

// ErrMissing is matched by every *MissingError.
var ErrMissing = errors.New("missing configuration")

// MissingError reports a required environment variable that is absent or blank.
type MissingError struct {
	Key string
}

func (e *MissingError) Error() string {
	return fmt.Sprintf("%s not found in environment variables", e.Key)
}

func (e *MissingError) Is(target error) bool { return target == ErrMissing }

type Config struct {
	// Sink selects the destination: azure, s3 or local.
	Sink      string
	SourceURL string

	// BlobPrefix is prepended to every uploaded entry name.
	BlobPrefix  string
	TempDir     string
	LocalDir    string
	ArchiveName string

	Azure AzureConfig
	S3    S3Config
}

type AzureConfig struct {
	ConnectionString string
	Container        string
}

type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Region    string
	UseSSL    bool
}

// Load reads config from environment variables for the given sink, applies
// defaults and validates. It never touches the network.
func Load(sink string) (Config, error) {
	cfg := read(sink)
	if err := cfg.validate(true); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// LoadStore is Load without the DATA_SOURCE_URL requirement, for read-only
// listing of the remote store.
func LoadStore(sink string) (Config, error) {
	cfg := read(sink)
	if err := cfg.validate(false); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func read(sink string) Config {
	sink = strings.ToLower(strings.TrimSpace(sink))
	if sink == "" {
		sink = strings.ToLower(getenv("INGEST_PROVIDER", SinkAzure))
	}

	cfg := Config{
		Sink:        sink,
		SourceURL:   getenv("DATA_SOURCE_URL", ""),
		BlobPrefix:  strings.Trim(getenv("INGEST_BLOB_PREFIX", DefaultBlobPrefix), "/"),
		TempDir:     getenv("INGEST_TEMP_DIR", ""),
		LocalDir:    getenv("INGEST_LOCAL_DIR", DefaultLocalDir),
		ArchiveName: strings.TrimSuffix(getenv("INGEST_ARCHIVE_NAME", DefaultArchiveName), ".zip"),

		Azure: AzureConfig{
			ConnectionString: getenv("AZURE_STORAGE_CONNECTION_STRING", ""),
			Container:        getenv("AZURE_CONTAINER_NAME", DefaultContainer),
		},
		S3: S3Config{
			Endpoint:  getenv("S3_ENDPOINT", ""),
			AccessKey: getenv("S3_ACCESS_KEY", ""),
			SecretKey: getenv("S3_SECRET_KEY", ""),
			Bucket:    getenv("S3_BUCKET", DefaultContainer),
			Region:    getenv("S3_REGION", DefaultS3Region),
			UseSSL:    envBool("S3_USE_SSL", true),
		},
	}

	// The local variant ships with a fixed dataset.
	if cfg.Sink == SinkLocal && cfg.SourceURL == "" {
		cfg.SourceURL = DefaultLocalSourceURL
	}
	return cfg
}

// StrictExit reports whether runtime failures should exit non-zero
// (INGEST_STRICT_EXIT). It is read on its own so it applies even when Load fails.
func StrictExit() bool {
	return envBool("INGEST_STRICT_EXIT", false)
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

func envBool(key string, def bool) bool {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

// validate checks sink-specific requirements, in the order a run needs them.
func (c *Config) validate(needSource bool) error {
	switch c.Sink {
	case SinkAzure:
		if needSource && c.SourceURL == "" {
			return &MissingError{Key: "DATA_SOURCE_URL"}
		}
		if c.Azure.ConnectionString == "" {
			return &MissingError{Key: "AZURE_STORAGE_CONNECTION_STRING"}
		}
	case SinkS3:
		if needSource && c.SourceURL == "" {
			return &MissingError{Key: "DATA_SOURCE_URL"}
		}
		for _, kv := range [][2]string{
			{"S3_ENDPOINT", c.S3.Endpoint},
			{"S3_ACCESS_KEY", c.S3.AccessKey},
			{"S3_SECRET_KEY", c.S3.SecretKey},
		} {
			if kv[1] == "" {
				return &MissingError{Key: kv[0]}
			}
		}
	case SinkLocal:
		if c.LocalDir == "" {
			return &MissingError{Key: "INGEST_LOCAL_DIR"}
		}
	default:
		return errors.New("unsupported provider: " + c.Sink)
	}
	return nil
}

// Container returns the destination container (bucket) name for the remote sinks.
func (c Config) Container() string {
	if c.Sink == SinkS3 {
		return c.S3.Bucket
	}
	return c.Azure.Container
}
