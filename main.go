package main

import (
	"fmt"
	"os"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"github.com/spf13/pflag"

	"github.com/ytget/direct-downloader/internal/audio"
	"github.com/ytget/direct-downloader/internal/config"
	"github.com/ytget/direct-downloader/internal/download"
	"github.com/ytget/direct-downloader/internal/logbook"
	"github.com/ytget/direct-downloader/internal/model"
	"github.com/ytget/direct-downloader/internal/platform"
	"github.com/ytget/direct-downloader/internal/session"
	"github.com/ytget/direct-downloader/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.ytget.direct-downloader"
	AppName = "Direct Downloader"

	WindowWidth  = 820
	WindowHeight = 760
)

func main() {
	configFile := pflag.StringP("config", "c", "", "config file (default ./direct-dl.yaml or ~/.config/direct-dl/direct-dl.yaml)")
	pflag.Parse()

	v, err := config.NewViper(*configFile)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	opts, err := config.Load(v)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	log := config.NewLogger(os.Stderr, opts.LogLevel)
	log.Info().Str("version", version).Str("download_dir", opts.DownloadDir).Msg("Direct Downloader starting")

	if err := platform.CreateDirectoryIfNotExists(opts.DownloadDir); err != nil {
		log.Warn().Err(err).Str("dir", opts.DownloadDir).Msg("Failed to ensure downloads dir")
	}

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewCompactTheme())

	myWindow := myApp.NewWindow(fmt.Sprintf("%s v%s", AppName, version))
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	settings := config.NewSettings(myApp)
	book := logbook.New(log)

	player := audio.NewProcessBackend(opts.AudioPlayer, log)
	controller := audio.NewController(audio.ControllerOptions{
		Backend:   player,
		Store:     settings,
		Journal:   book,
		Logger:    log,
		RemoteURL: opts.DefaultAudioURL,
	})
	defer controller.Close()

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
	engine.SetStatusCallback(func(status model.RetrievalStatus) {
		log.Debug().Stringer("status", status).Msg("Retrieval status changed")
	})

	inspector := platform.NewPageParserService(client)
	inspector.SetTimeout(opts.ProbeTimeout)

	sess := session.New(session.Options{
		Engine:         engine,
		Audio:          controller,
		Inspector:      inspector,
		Logbook:        book,
		Logger:         log,
		Reveal:         platform.OpenFileInManager,
		RequestTimeout: opts.RequestTimeout,
	})

	root := ui.NewRootUI(myWindow, myApp, ui.Options{
		Session:     sess,
		Settings:    settings,
		DownloadDir: opts.DownloadDir,
		Language:    opts.Language,
		Logger:      log,
	})
	controller.SetChangeCallback(root.OnAudioChange)

	// Greeting and the first audio attempt run once the window is up, so the
	// log panel receives them
	myApp.Lifecycle().SetOnStarted(func() {
		go sess.Start()
	})

	myWindow.ShowAndRun()
}
