package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/term"

	"github.com/1broseidon/autodock/internal/ipc"
)

func runStatus(args []string) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print raw JSON (default when stdout is not a terminal)")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: autodock status [--json]")
		fmt.Fprintln(os.Stderr, "")
		fs.PrintDefaults()
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}

	status, err := ipc.NewClient().GetStatus()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if *asJSON || !term.IsTerminal(int(os.Stdout.Fd())) {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	printStatus(os.Stdout, status)
	return 0
}

func printStatus(w io.Writer, st *ipc.StatusData) {
	running := "paused"
	if st.Running {
		running = "running"
	}
	state := st.State
	if !st.StateKnown {
		state += " (unconfirmed)"
	}
	fmt.Fprintf(w, "Controller:  %s\n", running)
	fmt.Fprintf(w, "Dock:        %s\n", state)
	fmt.Fprintf(w, "Backend:     %s\n", st.Backend)
	if st.DryRun {
		fmt.Fprintln(w, "Dry run:     yes")
	}
	r := st.DockRect
	fmt.Fprintf(w, "Geometry:    %dx%d+%d+%d (%s, %s)\n", r.Width, r.Height, r.X, r.Y, st.DockOrientation, st.DockSource)
	fmt.Fprintf(w, "Debounce:    %dms (%d coalesced passes)\n", st.DebounceMs, st.DebouncedPasses)
	fmt.Fprintf(w, "Refresh:     %s\n", st.GeometryRefresh)
	fmt.Fprintf(w, "Passes:      %d (%d transitions)\n", st.Passes, st.Transitions)
	fmt.Fprintf(w, "Uptime:      %s\n", time.Duration(st.DaemonUptimeSeconds)*time.Second)
	if st.ConfigPath != "" {
		fmt.Fprintf(w, "Config:      %s (%d reloads)\n", st.ConfigPath, st.Reloads)
	}
	if d := st.LastDecision; d != nil {
		fmt.Fprintf(w, "Last:        %s (%s)", d.Desired, d.Reason)
		if d.Frontmost != "" {
			fmt.Fprintf(w, " frontmost %s", d.Frontmost)
		}
		fmt.Fprintln(w)
		if d.Error != "" {
			fmt.Fprintf(w, "Last error:  %s\n", d.Error)
		}
	}
}

var controlUsage = map[string]string{
	"start":     "Resume automatic dock hiding.",
	"stop":      "Pause automatic dock hiding. The dock is shown when restore_on_stop is set.",
	"toggle":    "Pause if running, resume if paused.",
	"reconcile": "Re-evaluate the frontmost window now and print the decision.",
	"refresh":   "Re-measure the dock and print its geometry.",
	"reload":    "Reload the daemon configuration from disk.",
}

func runControl(cmd string, args []string) int {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: autodock %s\n\n%s\n", cmd, controlUsage[cmd])
	}
	if code := parseFlags(fs, args); code >= 0 {
		return code
	}
	if fs.NArg() != 0 {
		fmt.Fprintf(os.Stderr, "%s takes no arguments\n", cmd)
		return 2
	}

	client := ipc.NewClient()
	var err error
	switch cmd {
	case "start":
		if err = client.Start(); err == nil {
			fmt.Println("autodock running")
		}
	case "stop":
		if err = client.Stop(); err == nil {
			fmt.Println("autodock paused")
		}
	case "toggle":
		var running bool
		if running, err = client.Toggle(); err == nil {
			if running {
				fmt.Println("autodock running")
			} else {
				fmt.Println("autodock paused")
			}
		}
	case "reconcile":
		var d *ipc.DecisionData
		if d, err = client.Reconcile(); err == nil {
			changed := "unchanged"
			if d.Changed {
				changed = "changed"
			}
			fmt.Printf("%s (%s, %s)\n", d.Desired, d.Reason, changed)
		}
	case "refresh":
		var g *ipc.GeometryData
		if g, err = client.RefreshGeometry(); err == nil {
			r := g.Rect
			fmt.Printf("%dx%d+%d+%d (%s, %s)\n", r.Width, r.Height, r.X, r.Y, g.Orientation, g.Source)
		}
	case "reload":
		if err = client.Reload(); err == nil {
			fmt.Println("config reloaded")
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}
