// Command direct-dl downloads one direct file URL from the terminal, or
// prints the yt-dlp recipe for URLs that are not direct files.
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

	"github.com/schollz/progressbar/v3"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/ytget/direct-downloader/internal/command"
	"github.com/ytget/direct-downloader/internal/config"
	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/logbook"
	"github.com/ytget/direct-downloader/internal/model"
	"github.com/ytget/direct-downloader/internal/platform"
	"github.com/ytget/direct-downloader/internal/session"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

// Exit codes
const (
	ExitOK           = 0
	ExitFailure      = 1
	ExitUsage        = 2
	ExitTransport    = 3
	ExitHTTP         = 4
	ExitLimit        = 5
	ExitSave         = 6
	ExitCanceled     = 130
	progressThrottle = 65 * time.Millisecond
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

// cliFlags are the flags that only make sense on the command line
type cliFlags struct {
	configFile   string
	filename     string
	printCommand string
	commandDir   string
	headOnly     bool
	inspect      bool
	linkKind     string
	quiet        bool
	showVersion  bool
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	fs := pflag.NewFlagSet("direct-dl", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: direct-dl [flags] URL\n\n")
		fs.PrintDefaults()
	}

	var flags cliFlags
	fs.StringVarP(&flags.configFile, "config", "c", "", "config file (default ./direct-dl.yaml or ~/.config/direct-dl/direct-dl.yaml)")
	fs.StringVarP(&flags.filename, "name", "n", "", "file name to save as (extension is guessed when missing)")
	fs.StringVar(&flags.printCommand, "print-command", "", "print the yt-dlp recipe for URL: audio, video or best")
	fs.StringVar(&flags.commandDir, "command-dir", "", "output folder used in the printed recipe")
	fs.BoolVar(&flags.headOnly, "head", false, "only run the HEAD check")
	fs.BoolVar(&flags.inspect, "inspect", false, "list media links found on an HTML page")
	fs.StringVar(&flags.linkKind, "kind", "", "with --inspect, only list audio, video, source or anchor links")
	fs.BoolVarP(&flags.quiet, "quiet", "q", false, "no progress bar")
	fs.BoolVar(&flags.showVersion, "version", false, "print version and exit")

	v := viper.New()
	if err := config.RegisterFlags(v, fs); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitFailure
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return ExitOK
		}
		return ExitUsage
	}

	if flags.showVersion {
		fmt.Fprintf(stdout, "direct-dl %s\n", version)
		return ExitOK
	}

	if err := config.Configure(v, flags.configFile); err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}
	opts, err := config.Load(v)
	if err != nil {
		fmt.Fprintln(stderr, err)
		return ExitUsage
	}

	url := strings.TrimSpace(strings.Join(fs.Args(), " "))

	// The recipe needs no network and tolerates an empty URL
	if flags.printCommand != "" {
		mode, err := parseMode(flags.printCommand)
		if err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		fmt.Fprintln(stdout, command.Build(url, mode, flags.commandDir))
		return ExitOK
	}

	if url == "" {
		fs.Usage()
		return ExitUsage
	}

	log := config.NewLogger(stderr, opts.LogLevel)
	book := logbook.New(log)

	if err := platform.CreateDirectoryIfNotExists(opts.DownloadDir); err != nil {
		log.Error().Err(err).Str("dir", opts.DownloadDir).Msg("Failed to create download directory")
		return ExitSave
	}

	client := download.NewHTTPClient()
	saver := download.NewFileSaver(download.FileSaverOptions{
		Dir:          opts.DownloadDir,
		Logger:       log,
		ReleaseDelay: opts.ReleaseDelay,
	})
	defer saver.Wait()

	engine := download.NewService(download.Options{
		Client:           client,
		Saver:            saver,
		Journal:          book,
		Logger:           log,
		ChunkSize:        opts.ChunkSize,
		RateLimit:        opts.RateLimit,
		MaxSize:          opts.MaxSize,
		ProbeTimeout:     opts.ProbeTimeout,
		DisableStreaming: !opts.Stream,
	})

	inspector := platform.NewPageParserService(client)
	inspector.SetTimeout(opts.ProbeTimeout)

	sess := session.New(session.Options{
		Engine:         engine,
		Inspector:      inspector,
		Logbook:        book,
		Logger:         log,
		RequestTimeout: opts.RequestTimeout,
	})

	switch {
	case flags.inspect:
		return inspect(ctx, sess, url, model.MediaLinkKind(strings.ToLower(flags.linkKind)), stdout)
	case flags.headOnly:
		if _, err := download.ValidateSourceURL(url); err != nil {
			fmt.Fprintln(stderr, err)
			return ExitUsage
		}
		res := sess.Dispatch(ctx, session.Probe(url))
		if res.Err != nil {
			return exitCode(res.Err)
		}
		return probeExitCode(res.Probe)
	}

	var bar *progressBar
	if !flags.quiet {
		bar = newProgressBar(stderr)
		sess.SetProgressCallback(bar.update)
	}
	engine.SetStatusCallback(func(status model.RetrievalStatus) {
		log.Debug().Stringer("status", status).Msg("Retrieval status changed")
		bar.describe(status)
	})

	res := sess.Dispatch(ctx, session.Download(url, flags.filename))
	bar.done(res.Err == nil)
	if res.Err != nil {
		log.Debug().Err(res.Err).Msg("Download failed")
		return exitCode(res.Err)
	}

	fmt.Fprintln(stdout, res.Outcome.SavedPath)
	return ExitOK
}

func inspect(ctx context.Context, sess *session.Session, url string, kind model.MediaLinkKind, stdout io.Writer) int {
	res := sess.Dispatch(ctx, session.Intent{Kind: session.IntentInspectPage, URL: url})
	if res.Err != nil {
		return exitCode(res.Err)
	}

	links := res.Page.Links
	if kind != "" {
		links = res.Page.LinksOfKind(kind)
	}
	for _, link := range links {
		fmt.Fprintf(stdout, "%s\t%s\n", link.Kind, link.URL)
	}
	return ExitOK
}

func probeExitCode(probe *model.ProbeResult) int {
	switch {
	case probe == nil:
		return ExitFailure
	case probe.OK:
		return ExitOK
	case probe.StatusCode != 0:
		return ExitHTTP
	default:
		return ExitTransport
	}
}

func parseMode(s string) (command.Mode, error) {
	for _, mode := range command.Modes {
		if string(mode) == strings.ToLower(strings.TrimSpace(s)) {
			return mode, nil
		}
	}
	return "", fmt.Errorf("unknown mode %q (use audio, video or best)", s)
}

// exitCode maps a failure to the process exit status
func exitCode(err error) int {
	if errors.Is(err, session.ErrNoURL) {
		return ExitUsage
	}

	var retrievalErr *model.RetrievalError
	if !errors.As(err, &retrievalErr) {
		return ExitFailure
	}

	switch retrievalErr.Kind {
	case model.ErrorKindInvalidInput:
		return ExitUsage
	case model.ErrorKindTransport:
		return ExitTransport
	case model.ErrorKindHTTP:
		return ExitHTTP
	case model.ErrorKindLimitExceeded:
		return ExitLimit
	case model.ErrorKindSave:
		return ExitSave
	case model.ErrorKindCanceled:
		return ExitCanceled
	default:
		return ExitFailure
	}
}

// progressBar renders engine progress events in the terminal. The bar is
// created on the first event, when the total size is known.
type progressBar struct {
	out io.Writer
	bar *progressbar.ProgressBar
}

func newProgressBar(out io.Writer) *progressBar {
	return &progressBar{out: out}
}

func (p *progressBar) update(ev model.ProgressEvent) {
	if p.bar == nil {
		total := ev.TotalBytes
		if ev.Indeterminate || total <= 0 {
			total = -1 // spinner
		}
		p.bar = progressbar.NewOptions64(
			total,
			progressbar.OptionSetWriter(p.out),
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(progressThrottle),
			progressbar.OptionSetWidth(30),
			progressbar.OptionOnCompletion(func() {
				fmt.Fprintln(p.out)
			}),
			progressbar.OptionSetTheme(progressbar.Theme{
				Saucer:        "=",
				SaucerHead:    ">",
				SaucerPadding: " ",
				BarStart:      "[",
				BarEnd:        "]",
			}),
		)
	}

	if ev.IsComplete() && p.bar.GetMax64() != ev.TotalBytes {
		p.bar.ChangeMax64(ev.TotalBytes)
	}
	_ = p.bar.Set64(ev.ReceivedBytes)
}

func (p *progressBar) describe(status model.RetrievalStatus) {
	if p == nil || p.bar == nil || status.IsFinished() {
		return
	}
	p.bar.Describe(strings.ToLower(status.String()))
}

// done finishes the bar on success and leaves it where it stopped otherwise.
// A nil bar is a no-op.
func (p *progressBar) done(ok bool) {
	if p == nil || p.bar == nil || p.bar.IsFinished() {
		return
	}
	if ok {
		_ = p.bar.Finish()
		return
	}
	_ = p.bar.Exit()
}
