// panedemo hosts a single folder view pane over the local filesystem
// with a system-tray presence: the tray menu shows the current folder,
// selection stats, and storage roots to jump to. It exists to exercise
// the pane end to end outside a real windowing shell.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/getlantern/systray"

	"github.com/redsalamander/folderview/config"
	"github.com/redsalamander/folderview/fsadapter"
	"github.com/redsalamander/folderview/layout"
	"github.com/redsalamander/folderview/logger"
	"github.com/redsalamander/folderview/models"
	"github.com/redsalamander/folderview/pane"
	"github.com/redsalamander/folderview/render"
	"github.com/redsalamander/folderview/utils"
)

const appName = "FolderView Demo"

// Application wires the pane to its demo host surfaces.
type Application struct {
	configMgr *config.Manager
	log       *logger.Logger
	pane      *pane.Pane

	mFolder     *systray.MenuItem
	mSelection  *systray.MenuItem
	mRefresh    *systray.MenuItem
	mExportLogs *systray.MenuItem
	mQuit       *systray.MenuItem

	stop chan struct{}
}

func main() {
	configPath := flag.String("config", "", "Path to configuration file")
	startFolder := flag.String("folder", "", "Folder to open (defaults to the working directory)")
	flag.Parse()

	app := &Application{stop: make(chan struct{})}
	if err := app.init(*configPath); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
		os.Exit(1)
	}

	folder := *startFolder
	if folder == "" {
		if wd, err := os.Getwd(); err == nil {
			folder = wd
		}
	}

	go app.pump()
	go app.handleSignals()

	app.pane.Post(func() {
		app.pane.SetClientSize(1024, 768)
		app.pane.SetFolder(folder)
	})

	systray.Run(func() { app.onTrayReady(folder) }, app.onTrayExit)
}

func (app *Application) init(configPath string) error {
	var err error

	app.configMgr = config.GetManager()
	if configPath == "" {
		configPath, err = config.GetDefaultConfigPath()
		if err != nil {
			configPath = ""
		}
	}
	if err := app.configMgr.Load(configPath); err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg := app.configMgr.Get()
	if errs := cfg.Validate(); len(errs) > 0 {
		for _, e := range errs {
			fmt.Fprintf(os.Stderr, "config: %v\n", e)
		}
	}

	app.log = logger.Get()
	configDir, _ := config.GetConfigDir()
	if err := app.log.Init(&cfg.Logging, configDir); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}

	source := fsadapter.NewLocalFS()
	backend := render.NewNullBackend(1)
	shaper := layout.FixedShaper{CharWidthDip: 7, LineHeightDip: 16}

	app.pane = pane.New(source, backend, shaper, nil, pane.Callbacks{
		PathChanged: func(path string) {
			app.log.Infof("path changed: %s", path)
			app.setFolderTitle(path)
		},
		SelectionChanged: func(stats models.SelectionStats) {
			app.setSelectionTitle(stats)
		},
		EnumerationCompleted: func(folder string) {
			app.log.Enumeration("completed: %s (%d items)", folder, app.pane.Model().Len())
			if app.pane.NeedsPaint() {
				if err := app.pane.RenderFrame(); err != nil {
					app.log.Render("frame: %v", err)
				}
			}
		},
		OpenFileRequest: func(path string) bool {
			app.log.Infof("open file request: %s", path)
			return true
		},
		NavigateUpFromRoot: func() {
			app.log.Info("navigate up from root")
		},
	})

	return nil
}

// pump drives the pane's UI queue on a dedicated goroutine; the demo has
// no real message loop.
func (app *Application) pump() {
	app.pane.Run(app.stop)
}

func (app *Application) handleSignals() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
	<-sig
	systray.Quit()
}

func (app *Application) onTrayReady(folder string) {
	systray.SetTitle(appName)
	systray.SetTooltip(appName)

	app.mFolder = systray.AddMenuItem("Folder: "+folder, "Current folder")
	app.mFolder.Disable()
	app.mSelection = systray.AddMenuItem("Nothing selected", "Selection stats")
	app.mSelection.Disable()
	systray.AddSeparator()

	roots, err := fsadapter.EnumerateRoots()
	if err != nil {
		app.log.Warnf("enumerate roots: %v", err)
	}
	for _, root := range roots {
		root := root
		item := systray.AddMenuItem(root.Path, fmt.Sprintf("%s (%s free)", root.FileSystem, utils.FormatBytes(root.FreeBytes)))
		go func() {
			for range item.ClickedCh {
				app.pane.Post(func() { app.pane.SetFolder(root.Path) })
			}
		}()
	}
	systray.AddSeparator()

	app.mRefresh = systray.AddMenuItem("Refresh", "Re-enumerate the current folder")
	app.mExportLogs = systray.AddMenuItem("Export Logs", "Write the recent log tail to a file")
	app.mQuit = systray.AddMenuItem("Quit", "Exit "+appName)

	go func() {
		for {
			select {
			case <-app.mRefresh.ClickedCh:
				app.pane.Post(app.pane.ForceRefresh)
			case <-app.mExportLogs.ClickedCh:
				app.exportLogs()
			case <-app.mQuit.ClickedCh:
				systray.Quit()
				return
			}
		}
	}()

	app.log.Infof("%s ready on %s", appName, fsadapter.HostDisplayName())
}

func (app *Application) exportLogs() {
	dir, err := config.GetConfigDir()
	if err != nil {
		dir = "."
	}
	path := filepath.Join(dir, fmt.Sprintf("folderview-logs-%s.txt", time.Now().Format("20060102-150405")))
	if err := app.log.ExportLogs(path); err != nil {
		app.log.Errorf("export logs: %v", err)
		return
	}
	app.log.Infof("logs exported to %s", path)
}

func (app *Application) onTrayExit() {
	close(app.stop)
	app.pane.Close()
	app.log.Close()
}

func (app *Application) setFolderTitle(path string) {
	if app.mFolder == nil {
		return
	}
	if path == "" {
		path = "(none)"
	}
	app.mFolder.SetTitle("Folder: " + path)
}

func (app *Application) setSelectionTitle(stats models.SelectionStats) {
	if app.mSelection == nil {
		return
	}
	if stats.SelectedFolders+stats.SelectedFiles == 0 {
		app.mSelection.SetTitle("Nothing selected")
		return
	}
	app.mSelection.SetTitle(fmt.Sprintf("%d folders, %d files (%s)",
		stats.SelectedFolders, stats.SelectedFiles, utils.FormatBytes(stats.SelectedFileBytes)))
}
