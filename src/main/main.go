package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"os"
	"os/signal"
	"runtime"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"screen-snip/src/autostart"
	"screen-snip/src/capture"
	"screen-snip/src/dialog"
	"screen-snip/src/eventloop"
	"screen-snip/src/geom"
	"screen-snip/src/hotkey"
	"screen-snip/src/logutil"
	"screen-snip/src/notification"
	"screen-snip/src/output"
	"screen-snip/src/overlay"
	"screen-snip/src/session"
	"screen-snip/src/settings"
	"screen-snip/src/singleinstance"
	"screen-snip/src/tray"
)

const version = "1.0.0"

const hotkeyName = "PrintScreen"

type cliOptions struct {
	captureClipboard bool
	captureFile      bool
	selectRegion     bool
	openFolder       bool
	showVersion      bool
	registerRun      bool
	unregisterRun    bool
}

func main() {
	// Ensure DPI awareness before creating any windows or querying metrics.
	enableDPIAwareness()

	// The tray and the overlay both need the main OS thread.
	runtime.LockOSThread()

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	return runWithArgs(normalizeLegacyArgs(os.Args))
}

func runWithArgs(args []string) error {
	if len(args) == 0 {
		args = []string{"screen-snip"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts)
	cmd.SetArgs(args[1:])
	return cmd.Execute()
}

func newRootCmd(opts *cliOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "screen-snip",
		Short:         "Screenshot utility with hotkey-driven region selection",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithOptions(*opts)
		},
	}

	cmd.Flags().BoolVar(&opts.captureClipboard, "capture-clipboard", false, "Capture the full desktop to the clipboard and exit")
	cmd.Flags().BoolVar(&opts.captureFile, "capture-file", false, "Capture the full desktop to a PNG file and exit")
	cmd.Flags().BoolVar(&opts.selectRegion, "select", false, "Capture an interactively selected region and exit")
	cmd.Flags().BoolVar(&opts.openFolder, "open-folder", false, "Open the screenshots folder and exit")
	cmd.Flags().BoolVar(&opts.showVersion, "version", false, "Print the version and exit")
	cmd.Flags().BoolVar(&opts.registerRun, "register-autostart", false, "Register autostart for all users and exit")
	cmd.Flags().BoolVar(&opts.unregisterRun, "unregister-autostart", false, "Unregister autostart and exit")

	return cmd
}

// normalizeLegacyArgs maps the historical slash flags onto long flags.
func normalizeLegacyArgs(args []string) []string {
	if len(args) == 0 {
		return args
	}

	normalized := make([]string, len(args))
	copy(normalized, args)

	for i := 1; i < len(normalized); i++ {
		switch strings.ToLower(normalized[i]) {
		case "/ac":
			normalized[i] = "--capture-clipboard"
		case "/af":
			normalized[i] = "--capture-file"
		case "/s":
			normalized[i] = "--select"
		case "/f":
			normalized[i] = "--open-folder"
		case "/v":
			normalized[i] = "--version"
		case "/re":
			normalized[i] = "--register-autostart"
		case "/rd":
			normalized[i] = "--unregister-autostart"
		case "/?":
			normalized[i] = "--help"
		}
	}

	return normalized
}

func runWithOptions(opts cliOptions) error {
	if opts.showVersion {
		fmt.Printf("screen-snip %s\n", version)
		return nil
	}

	if os.Getenv("SCREEN_SNIP_DEBUG_LOG") != "" {
		logutil.Setup(true)
	} else {
		logutil.Setup(false)
	}

	settings.LoadEnv()
	cfg := settings.Open(output.DefaultFolder())

	switch {
	case opts.registerRun:
		if err := autostart.Enable(); err != nil {
			return fmt.Errorf("register autostart: %w", err)
		}
		return nil
	case opts.unregisterRun:
		if err := autostart.Disable(); err != nil {
			return fmt.Errorf("unregister autostart: %w", err)
		}
		return nil
	case opts.openFolder:
		return output.OpenFolder(cfg.OutputFolder())
	case opts.captureClipboard:
		return captureOnce(output.Options{ToClipboard: true})
	case opts.captureFile:
		return captureOnce(output.Options{ToFile: true, Folder: cfg.OutputFolder()})
	case opts.selectRegion:
		return selectOnce(cfg)
	}

	return runResident(cfg)
}

// captureOnce grabs the full virtual desktop with exactly the requested
// target, bypassing the overlay and any resident instance.
func captureOnce(out output.Options) error {
	_, err := session.Execute(context.Background(), session.Options{
		Capture: capture.Start,
		Output:  out,
		Target:  session.SilentTarget{},
	})
	return err
}

// selectOnce runs one interactive capture. A resident instance owns the
// hotkey and the overlay, so the request is delegated when one exists.
func selectOnce(cfg *settings.Store) error {
	ctx := context.Background()

	delegated, detail, err := singleinstance.NewClient().TryCapture(ctx, true)
	if delegated {
		if err != nil {
			return fmt.Errorf("delegated capture: %w", err)
		}
		if detail != "" {
			log.Printf("Resident saved %s", detail)
		}
		return nil
	}

	selector := overlay.NewSelector()
	_, err = session.Execute(ctx, session.Options{
		Interactive: true,
		Capture:     capture.Start,
		SelectRegion: func(ctx context.Context, cap *capture.Session) (geom.Rect, bool, error) {
			return selector.Select(ctx, cap, cfg)
		},
		Output: output.Options{
			ToFile:      cfg.SaveToFile(),
			ToClipboard: cfg.SaveToClipboard(),
			Folder:      cfg.OutputFolder(),
		},
		Target: session.SilentTarget{},
	})
	if errors.Is(err, session.ErrSelectionCancelled) {
		return nil
	}
	return err
}

func runResident(cfg *settings.Store) error {
	// Pre-flight: the first port of the range identifies the resident. If
	// it is taken, another instance already runs.
	startPort, _ := singleinstance.PortRange()
	addr := fmt.Sprintf("127.0.0.1:%d", startPort)
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Printf("Pre-flight: port %d busy, resident already exists", startPort)
		return fmt.Errorf("another instance is already running on port %d", startPort)
	}
	// We claimed the port; release it so the event loop can re-bind.
	_ = listener.Close()
	log.Printf("Pre-flight: port %d free, becoming resident", startPort)

	logMonitorConfiguration()

	tooltip := fmt.Sprintf("Screen Snip - Press %s to capture", hotkeyName)
	tray.SetAboutHotkey(hotkeyName)
	tray.UpdateTooltip(tooltip)

	loop := eventloop.New(cfg)
	loop.SetDefaultTooltip(tooltip)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	loopDone := make(chan error, 1)
	go func() { loopDone <- loop.Run(ctx) }()

	go hotkey.Listen(hotkeyName, loop.HotkeyPressed)

	go func() {
		ch := make(chan os.Signal, 1)
		signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)
		<-ch
		cancel()
		tray.Quit()
	}()

	// Blocks until the tray exits.
	tray.Run(cfg, tray.Handlers{
		CaptureRegion:  func() { loop.Post(eventloop.CmdRegion) },
		CaptureDesktop: func() { loop.Post(eventloop.CmdDesktop) },
		CaptureDelayed: func() { loop.Post(eventloop.CmdDelayed) },
		OpenLast: func() {
			if path := tray.LastPath(); path != "" {
				if err := output.OpenFile(path); err != nil {
					log.Printf("Open last screenshot: %v", err)
				}
			}
		},
		OpenFolder: func() {
			if err := output.OpenFolder(cfg.OutputFolder()); err != nil {
				log.Printf("Open folder: %v", err)
			}
		},
		SelectFolder: func() {
			if path, ok := dialog.SelectFolder("Select the screenshots folder"); ok {
				cfg.SetOutputFolder(path)
			}
		},
		AutostartEnabled: autostart.Enabled,
		SetAutostart: func(enabled bool) error {
			if enabled {
				return autostart.Enable()
			}
			return autostart.Disable()
		},
		About: func() {
			notification.Notify("Screen Snip",
				fmt.Sprintf("Version %s. Press %s to capture a region.", version, hotkeyName))
		},
		OnExit: cancel,
	})

	cancel()
	if err := <-loopDone; err != nil {
		log.Printf("Event loop stopped: %v", err)
		return err
	}
	return nil
}
