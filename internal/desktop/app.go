package desktop

import (
	"github.com/getlantern/systray"
	"github.com/ncruces/zenity"
	"github.com/pkg/browser"
	"github.com/stwalsh4118/lectern/internal/config"
	"github.com/stwalsh4118/lectern/internal/logger"
)

const logBuffer = 128

// App is the system-tray shell around the Runner.
type App struct {
	cfg    *config.Config
	runner *Runner
	logCh  chan string

	mStatus  *systray.MenuItem
	mStart   *systray.MenuItem
	mStop    *systray.MenuItem
	mBrowser *systray.MenuItem
	mFolder  *systray.MenuItem
	mQuit    *systray.MenuItem
}

// NewApp wires the runner's log callback into the app's channel. The
// callback only enqueues; all UI updates happen on the consumer goroutine.
func NewApp(cfg *config.Config) *App {
	a := &App{
		cfg:   cfg,
		logCh: make(chan string, logBuffer),
	}
	a.runner = NewRunner(cfg, a.enqueueLog)
	return a
}

// EnqueueLog exposes the log channel for the logger's extra writer.
func (a *App) EnqueueLog(line string) {
	a.enqueueLog(line)
}

// Run blocks inside the systray main loop until Quit.
func (a *App) Run() {
	systray.Run(a.onReady, a.onExit)
}

func (a *App) enqueueLog(line string) {
	select {
	case a.logCh <- line:
	default:
		// Dropping is better than blocking the server goroutine.
	}
}

func (a *App) onReady() {
	systray.SetTitle("Lectern")
	systray.SetTooltip("Lectern course player")

	a.mStatus = systray.AddMenuItem("Status: stopped", "Server status")
	a.mStatus.Disable()
	systray.AddSeparator()
	a.mStart = systray.AddMenuItem("Start Server", "Start the course player server")
	a.mStop = systray.AddMenuItem("Stop Server", "Stop the course player server")
	a.mStop.Disable()
	a.mBrowser = systray.AddMenuItem("Open Browser", "Open the course player in a browser")
	a.mBrowser.Disable()
	systray.AddSeparator()
	a.mFolder = systray.AddMenuItem("Select Content Folder...", "Choose the course content directory")
	systray.AddSeparator()
	a.mQuit = systray.AddMenuItem("Quit", "Stop the server and quit")

	go a.consumeLogs()
	go a.eventLoop()

	// Auto-start when a content folder is already configured.
	if root := config.EffectiveContentRoot(a.cfg); root != "" {
		a.enqueueLog("content folder found, auto-starting server")
		go a.startServer()
	} else {
		a.enqueueLog("no content folder configured, select one to begin")
	}
}

func (a *App) onExit() {
	if a.runner.Running() {
		_ = a.runner.Stop()
	}
}

// eventLoop dispatches menu clicks. Runs on its own goroutine; menu item
// mutations are safe off the main loop per the systray API.
func (a *App) eventLoop() {
	for {
		select {
		case <-a.mStart.ClickedCh:
			a.startServer()
		case <-a.mStop.ClickedCh:
			a.stopServer()
		case <-a.mBrowser.ClickedCh:
			a.openBrowser()
		case <-a.mFolder.ClickedCh:
			a.selectFolder()
		case <-a.mQuit.ClickedCh:
			systray.Quit()
			return
		}
	}
}

// consumeLogs is the single place log lines touch the tray UI.
func (a *App) consumeLogs() {
	for line := range a.logCh {
		systray.SetTooltip(line)
	}
}

func (a *App) startServer() {
	root := config.EffectiveContentRoot(a.cfg)
	if root == "" {
		a.warn("No Folder Selected", "Please select a content folder before starting the server.")
		return
	}

	if err := a.runner.Start(root); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to start server")
		a.updateStatus()
		return
	}

	a.updateStatus()
	a.openBrowser()
}

func (a *App) stopServer() {
	if err := a.runner.Stop(); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to stop server")
	}
	a.updateStatus()
}

func (a *App) openBrowser() {
	url := a.runner.URL()
	if url == "" {
		return
	}
	if err := browser.OpenURL(url); err != nil {
		logger.Log.Error().Err(err).Msg("Failed to open browser")
	}
}

// selectFolder shows the native directory picker, validates the choice, and
// persists it. Invalid selections warn the user and change nothing.
func (a *App) selectFolder() {
	start, _ := config.ContentRoot()
	opts := []zenity.Option{zenity.Title("Select Course Content Folder"), zenity.Directory()}
	if start != "" {
		opts = append(opts, zenity.Filename(start))
	}

	folder, err := zenity.SelectFile(opts...)
	if err != nil {
		// Cancelled or no picker available; nothing to change.
		return
	}

	if err := config.SetContentRoot(folder); err != nil {
		logger.Log.Warn().Err(err).Str("folder", folder).Msg("Rejected content folder")
		a.warn("Invalid Folder", "The selected folder is not accessible. Please choose another folder.")
		return
	}

	a.enqueueLog("content folder set to " + folder)

	// Restart to pick up the new folder.
	if a.runner.Running() {
		a.enqueueLog("restarting server to apply new folder")
		a.stopServer()
		a.startServer()
	}
}

func (a *App) warn(title, message string) {
	if err := zenity.Warning(message, zenity.Title(title), zenity.WarningIcon); err != nil {
		logger.Log.Warn().Str("title", title).Msg(message)
	}
}

func (a *App) updateStatus() {
	if a.runner.Running() {
		a.mStatus.SetTitle("Status: running")
		a.mStart.Disable()
		a.mStop.Enable()
		a.mBrowser.Enable()
	} else {
		a.mStatus.SetTitle("Status: stopped")
		a.mStart.Enable()
		a.mStop.Disable()
		a.mBrowser.Disable()
	}
}
