// Copyright
// SPDX-License-Identifier: MIT
// syncview: side-by-side diff dashboard and sync tool for shared resource trees
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"syncview/internal/config"
	"syncview/internal/diffdir"
	"syncview/internal/gitops"
	"syncview/internal/syncer"
	appTUI "syncview/internal/tui"
	"syncview/internal/watcher"
)

const Version = "0.3.0"

func main() {
	if len(os.Args) < 2 {
		cmdView(nil)
		return
	}
	switch os.Args[1] {
	case "help", "-h", "--help":
		if len(os.Args) > 2 {
			helpTopic(os.Args[2])
		} else {
			usage()
		}
	case "version", "-v", "--version":
		fmt.Println("syncview", Version)
		return
	case "init":
		cmdInit()
	case "view":
		cmdView(os.Args[2:])
	case "status":
		cmdStatus(os.Args[2:])
	case "sync":
		cmdSync(os.Args[2:])
	default:
		usage()
	}
}

func usage() {
	fmt.Print(`syncview ` + Version + `
Keep shared resource directories and their project copies in sync, with a
side-by-side diff dashboard.
USAGE
  syncview [command] [options]
COMMANDS
  view         Open the interactive dashboard (default when no command given)
  status       Print out-of-sync files per mapping, plus git state
  sync         Copy changed files from source to destination
  init         Scaffold a starter syncview.yaml
  help         Show help (try: syncview help sync)
  version      Print version
NOTES
  • Mappings and tuning live in syncview.yaml; see 'syncview init'.
  • All commands read --config PATH to use another file.
`)
}

func helpTopic(name string) {
	switch name {
	case "view":
		fmt.Print(`USAGE
  syncview view [--config PATH] [--no-watch]
DESCRIPTION
  Opens the dashboard: a list of files that differ between each shared
  directory and its project copy. Enter shows a side-by-side diff with
  word-level highlights and folded unchanged regions.
KEYS
  j/k move   enter open   b back   d flip direction   v unified/side-by-side
  f fold     y copy path  s sync file   S sync all   r refresh   q quit
OPTIONS
  --config PATH   Config file (default: syncview.yaml)
  --no-watch      Do not refresh on filesystem changes
`)
	case "sync":
		fmt.Print(`USAGE
  syncview sync [--config PATH] [--reverse] [--dry-run] [--no-backup]
DESCRIPTION
  Applies every pending difference: added and modified files are copied,
  files deleted from the source are removed from the destination.
OPTIONS
  --config PATH   Config file (default: syncview.yaml)
  --reverse       Sync project -> shared instead of shared -> project
  --dry-run       Print what would happen without writing
  --no-backup     Skip .backup copies of overwritten files
`)
	default:
		usage()
	}
}

/* ---------- commands ---------- */

func cmdInit() {
	if _, err := os.Stat(config.DefaultPath); err == nil {
		fmt.Println(config.DefaultPath, "already exists; not overwriting")
		return
	}
	starter := `# syncview configuration
mappings:
  - shared: _shared/commands
    project: .claude/commands
  - shared: _shared/agents
    project: .claude/agents
# exclude:
#   - "*.bak"
# engine:
#   context_lines: 3
#   similarity_threshold: 0.3
# sync:
#   backup: true
#   continue_on_error: true
`
	if err := os.WriteFile(config.DefaultPath, []byte(starter), 0o644); err != nil {
		fmt.Fprintln(os.Stderr, "write config:", err)
		os.Exit(1)
	}
	fmt.Println("Wrote", config.DefaultPath)
}

func cmdView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath, "config file")
	noWatch := fs.Bool("no-watch", false, "disable filesystem watching")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	app := appTUI.App{Config: cfg, Engine: diffdir.NewEngine()}

	if !*noWatch {
		w, err := watcher.New(nil)
		if err != nil {
			fmt.Fprintln(os.Stderr, "watcher:", err)
		} else {
			for _, mp := range cfg.Mappings {
				if err := w.Add(mp.Shared); err != nil {
					fmt.Fprintln(os.Stderr, "watch:", err)
				}
				if err := w.Add(mp.Project); err != nil {
					fmt.Fprintln(os.Stderr, "watch:", err)
				}
			}
			app.Watch = w
			defer w.Close()
		}
	}

	if err := appTUI.Run(app); err != nil {
		fmt.Fprintln(os.Stderr, "tui:", err)
		os.Exit(1)
	}
}

func cmdStatus(args []string) {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath, "config file")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	engine := diffdir.NewEngine()

	total := 0
	for _, mp := range cfg.Mappings {
		extra := append(append([]string(nil), cfg.Exclude...), mp.Exclude...)
		entries, err := engine.Compare(mp.Shared, mp.Project, extra)
		if err != nil {
			fmt.Fprintln(os.Stderr, "compare:", err)
			os.Exit(1)
		}
		fmt.Printf("%s -> %s\n", mp.Shared, mp.Project)
		if len(entries) == 0 {
			fmt.Println("  in sync")
			continue
		}
		for _, e := range entries {
			added, removed, err := diffdir.Stats(e)
			if err != nil {
				fmt.Printf("  %-8s %s\n", e.Status, e.Path)
				continue
			}
			fmt.Printf("  %-8s %s (+%d -%d)\n", e.Status, e.Path, added, removed)
		}
		total += len(entries)
	}
	fmt.Printf("%d file(s) out of sync\n", total)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if st, err := gitops.Load(ctx, "."); err == nil && st.IsRepo {
		fmt.Println("git:")
		if st.Branch != "" {
			fmt.Println("  branch:", st.Branch)
		}
		if st.HasRemote {
			fmt.Printf("  remote: %s (ahead %d, behind %d)\n", st.RemoteURL, st.Ahead, st.Behind)
		}
		if st.Uncommitted {
			fmt.Println("  uncommitted changes present")
		}
	}
}

func cmdSync(args []string) {
	fs := flag.NewFlagSet("sync", flag.ExitOnError)
	cfgPath := fs.String("config", config.DefaultPath, "config file")
	reverse := fs.Bool("reverse", false, "sync project -> shared")
	dryRun := fs.Bool("dry-run", false, "print planned actions only")
	noBackup := fs.Bool("no-backup", false, "skip .backup copies")
	_ = fs.Parse(args)

	cfg := mustLoad(*cfgPath)
	engine := diffdir.NewEngine()

	var all []diffdir.Entry
	for _, mp := range cfg.Mappings {
		src, dst := mp.Shared, mp.Project
		if *reverse {
			src, dst = dst, src
		}
		extra := append(append([]string(nil), cfg.Exclude...), mp.Exclude...)
		entries, err := engine.Compare(src, dst, extra)
		if err != nil {
			fmt.Fprintln(os.Stderr, "compare:", err)
			os.Exit(1)
		}
		all = append(all, entries...)
	}
	if len(all) == 0 {
		fmt.Println("Everything in sync.")
		return
	}

	eng := syncer.New(syncer.Options{
		Backup:          cfg.Sync.Backup && !*noBackup,
		ContinueOnError: cfg.Sync.ContinueOnError,
		DryRun:          *dryRun,
	})
	eng.Logf = func(format string, a ...any) { fmt.Printf(format+"\n", a...) }

	res := eng.SyncAll(all)
	fmt.Printf("synced %d, failed %d, skipped %d\n", res.Synced, res.Failed, res.Skipped)
	for _, e := range res.Errors {
		fmt.Fprintln(os.Stderr, " ", e)
	}
	if res.Failed > 0 {
		os.Exit(1)
	}
}

func mustLoad(path string) *config.Config {
	cfg, err := config.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		fmt.Fprintln(os.Stderr, "run 'syncview init' to scaffold a config")
		os.Exit(1)
	}
	return cfg
}
