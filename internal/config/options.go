package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/rs/zerolog"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/platform"
)

// Option names shared by flags, environment variables and the config file
const (
	OptDownloadDir     = "download_dir"
	OptChunkSize       = "chunk_size"
	OptRateLimit       = "rate_limit"
	OptMaxSize         = "max_size"
	OptRequestTimeout  = "request_timeout"
	OptProbeTimeout    = "probe_timeout"
	OptReleaseDelay    = "release_delay"
	OptStream          = "stream"
	OptAudioPlayer     = "audio_player"
	OptDefaultAudioURL = "default_audio_url"
	OptLogLevel        = "log_level"
	OptLanguage        = "language"
)

// Config sources
const (
	EnvPrefix      = "DIRECTDL"
	ConfigFileName = "direct-dl"
)

// Default values
const (
	DefaultChunkSize    = "64KiB"
	DefaultProbeTimeout = 15 * time.Second
	DefaultReleaseDelay = 1500 * time.Millisecond
	DefaultStream       = true
	DefaultAudioPlayer  = audio.DefaultPlayerCommand
	DefaultAudioURL     = audio.DefaultRemoteURL
	DefaultLogLevel     = "info"
	DefaultLanguage     = "system"
	FallbackDownloadDir = "."
	minChunkSize        = 1024
	maxChunkSize        = 16 << 20
)

// Options is the runtime configuration. It is read from defaults, an
// optional config file and DIRECTDL_* environment variables, and is never
// written back.
type Options struct {
	DownloadDir     string
	ChunkSize       int
	RateLimit       int64 // bytes per second, 0 = unlimited
	MaxSize         int64 // bytes, 0 = unlimited
	RequestTimeout  time.Duration
	ProbeTimeout    time.Duration
	ReleaseDelay    time.Duration
	Stream          bool
	AudioPlayer     string
	DefaultAudioURL string
	LogLevel        zerolog.Level
	Language        string
}

// NewViper returns a viper instance with defaults, env binding and, when
// present, the config file loaded. configFile may be empty to search the
// working directory and the user config directory.
func NewViper(configFile string) (*viper.Viper, error) {
	v := viper.New()
	if err := Configure(v, configFile); err != nil {
		return nil, err
	}
	return v, nil
}

// Configure applies defaults, env binding and the config file to an existing
// viper instance, e.g. one that already has flags bound
func Configure(v *viper.Viper, configFile string) error {
	SetDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName(ConfigFileName)
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/direct-dl")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config: %w", err)
		}
	}

	return nil
}

// SetDefaults registers the default value of every option
func SetDefaults(v *viper.Viper) {
	v.SetDefault(OptDownloadDir, "")
	v.SetDefault(OptChunkSize, DefaultChunkSize)
	v.SetDefault(OptRateLimit, "0")
	v.SetDefault(OptMaxSize, "0")
	v.SetDefault(OptRequestTimeout, time.Duration(0))
	v.SetDefault(OptProbeTimeout, DefaultProbeTimeout)
	v.SetDefault(OptReleaseDelay, DefaultReleaseDelay)
	v.SetDefault(OptStream, DefaultStream)
	v.SetDefault(OptAudioPlayer, DefaultAudioPlayer)
	v.SetDefault(OptDefaultAudioURL, DefaultAudioURL)
	v.SetDefault(OptLogLevel, DefaultLogLevel)
	v.SetDefault(OptLanguage, DefaultLanguage)
}

// RegisterFlags adds the download options to fs and binds them to v. Flag
// names use dashes; the bound keys keep the underscore option names.
func RegisterFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	fs.StringP("output", "o", "", "download directory")
	fs.String("chunk-size", DefaultChunkSize, "read buffer size, e.g. 64KiB")
	fs.String("rate-limit", "0", "bandwidth cap per second, e.g. 2MB (0 = unlimited)")
	fs.String("max-size", "0", "refuse bodies larger than this, e.g. 1GiB (0 = unlimited)")
	fs.Duration("timeout", 0, "overall request timeout (0 = none)")
	fs.Duration("probe-timeout", DefaultProbeTimeout, "HEAD check timeout")
	fs.Bool("stream", DefaultStream, "stream the body in chunks with progress")
	fs.String("log-level", DefaultLogLevel, "log level (debug, info, warn, error)")

	bindings := map[string]string{
		OptDownloadDir:    "output",
		OptChunkSize:      "chunk-size",
		OptRateLimit:      "rate-limit",
		OptMaxSize:        "max-size",
		OptRequestTimeout: "timeout",
		OptProbeTimeout:   "probe-timeout",
		OptStream:         "stream",
		OptLogLevel:       "log-level",
	}
	for key, flag := range bindings {
		if err := v.BindPFlag(key, fs.Lookup(flag)); err != nil {
			return fmt.Errorf("failed to bind flag %s: %w", flag, err)
		}
	}
	return nil
}

// Load converts the viper values into Options. This is the only function
// that reads option values from viper.
func Load(v *viper.Viper) (Options, error) {
	opts := Options{
		DownloadDir:     strings.TrimSpace(v.GetString(OptDownloadDir)),
		RequestTimeout:  v.GetDuration(OptRequestTimeout),
		ProbeTimeout:    v.GetDuration(OptProbeTimeout),
		ReleaseDelay:    v.GetDuration(OptReleaseDelay),
		Stream:          v.GetBool(OptStream),
		AudioPlayer:     strings.TrimSpace(v.GetString(OptAudioPlayer)),
		DefaultAudioURL: strings.TrimSpace(v.GetString(OptDefaultAudioURL)),
		Language:        strings.TrimSpace(v.GetString(OptLanguage)),
	}

	chunkSize, err := parseSize(OptChunkSize, v.GetString(OptChunkSize))
	if err != nil {
		return Options{}, err
	}
	if chunkSize < minChunkSize {
		return Options{}, fmt.Errorf("%s must be at least %s", OptChunkSize, humanize.IBytes(minChunkSize))
	}
	if chunkSize > maxChunkSize {
		return Options{}, fmt.Errorf("%s must be at most %s", OptChunkSize, humanize.IBytes(maxChunkSize))
	}
	opts.ChunkSize = int(chunkSize)

	if opts.RateLimit, err = parseSize(OptRateLimit, v.GetString(OptRateLimit)); err != nil {
		return Options{}, err
	}
	if opts.MaxSize, err = parseSize(OptMaxSize, v.GetString(OptMaxSize)); err != nil {
		return Options{}, err
	}

	for name, d := range map[string]time.Duration{
		OptRequestTimeout: opts.RequestTimeout,
		OptProbeTimeout:   opts.ProbeTimeout,
		OptReleaseDelay:   opts.ReleaseDelay,
	} {
		if d < 0 {
			return Options{}, fmt.Errorf("%s must not be negative", name)
		}
	}
	if opts.ProbeTimeout == 0 {
		opts.ProbeTimeout = DefaultProbeTimeout
	}

	level, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(v.GetString(OptLogLevel))))
	if err != nil {
		return Options{}, fmt.Errorf("invalid %s: %w", OptLogLevel, err)
	}
	if level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	opts.LogLevel = level

	if opts.AudioPlayer == "" {
		opts.AudioPlayer = DefaultAudioPlayer
	}
	if opts.Language == "" {
		opts.Language = DefaultLanguage
	}

	if opts.DownloadDir == "" {
		opts.DownloadDir = defaultDownloadDir()
	}

	return opts, nil
}

func defaultDownloadDir() string {
	dir, err := platform.GetHomeDownloadsDir()
	if err != nil {
		return FallbackDownloadDir
	}
	return dir
}

// parseSize accepts human sizes such as "64KiB" or "2 MB"; blank means 0
func parseSize(name, value string) (int64, error) {
	value = strings.TrimSpace(value)
	if value == "" || value == "0" {
		return 0, nil
	}
	n, err := humanize.ParseBytes(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", name, value, err)
	}
	return int64(n), nil
}
