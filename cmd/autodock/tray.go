package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/1broseidon/autodock/internal/ipc"
	"github.com/1broseidon/autodock/internal/logging"
	"github.com/1broseidon/autodock/internal/tray"
)

func runTray(args []string) int {
	fs := flag.NewFlagSet("tray", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	logLevel := fs.String("log-level", "info", "Log level (debug, info, warning, error)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: autodock tray [--log-level LEVEL]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show a system tray icon for pausing and resuming the daemon.")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if _, err := logging.ParseLevel(*logLevel); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	logger, _ := logging.New(*logLevel, os.Stderr)
	tray.New(ipc.NewClient(), logger).Run()
	return 0
}
