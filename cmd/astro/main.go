package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/peterh/liner"
	"github.com/xyproto/env/v2"

	asp "github.com/xyLotus/old-astro"
)

const (
	appName    = "astro"
	promptMain = "==> "
	promptCont = "... "
)

var banner = fmt.Sprintf("Astro Script %s REPL\nCtrl+C cancels input, Ctrl+D exits. Type :quit to exit.", asp.Version)

var useColor = colorEnabled()

// ASTRO_COLOR overrides the NO_COLOR convention when set.
func colorEnabled() bool {
	if env.Has("ASTRO_COLOR") {
		return env.Bool("ASTRO_COLOR")
	}
	return !env.Has("NO_COLOR")
}

func red(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[31m" + s + "\x1b[0m"
}

func blue(s string) string {
	if !useColor {
		return s
	}
	return "\x1b[94m" + s + "\x1b[0m"
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	switch os.Args[1] {
	case "run":
		os.Exit(cmdRun(os.Args[2:]))
	case "repl":
		os.Exit(cmdRepl())
	case "version":
		fmt.Println(asp.Version)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "%s: unknown command %q\n", appName, os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Printf(`usage: %s <command> [args]

commands:
  run <file.asx>   Run an asx script
  repl             Start an interactive session
  version          Print the engine version
`, appName)
}

// -----------------------------------------------------------------------------
// run
// -----------------------------------------------------------------------------

func cmdRun(args []string) int {
	if len(args) != 1 {
		fmt.Fprintf(os.Stderr, "usage: %s run <file.asx>\n", appName)
		return 2
	}
	raw, err := os.ReadFile(args[0])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	src := string(raw)

	ip := asp.NewRuntime()
	if _, err := ip.EvalSource(src); err != nil {
		fmt.Fprintln(os.Stderr, red(asp.WrapErrorWithName(err, filepath.Base(args[0]), src).Error()))
		return 1
	}
	return 0
}

// -----------------------------------------------------------------------------
// repl
// -----------------------------------------------------------------------------

func historyPath() string {
	home, _ := os.UserHomeDir()
	return env.Str("ASTRO_HISTFILE", filepath.Join(home, ".astro_history"))
}

func cmdRepl() int {
	fmt.Println(banner)

	histPath := historyPath()

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)

	defer func() {
		if f, err := os.Create(histPath); err == nil {
			_, _ = ln.WriteHistory(f)
			_ = f.Close()
		}
	}()

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(sigc)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	if f, err := os.Open(histPath); err == nil {
		_, _ = ln.ReadHistory(f)
		_ = f.Close()
	}

	ip := asp.NewRuntime()

	for {
		code, ok := readStatement(ln)
		if !ok {
			fmt.Println()
			break
		}
		trimmed := strings.TrimSpace(code)
		if trimmed == "" {
			continue
		}
		if strings.HasPrefix(trimmed, ":") {
			if strings.EqualFold(trimmed, ":quit") {
				return 0
			}
			fmt.Println("unknown command. Type :quit to exit.")
			continue
		}

		v, err := ip.EvalPersistentSource(code)
		if err != nil {
			fmt.Fprintln(os.Stderr, red(asp.WrapErrorWithName(err, "<repl>", code).Error()))
			continue
		}
		if v.Tag != asp.VTNil {
			fmt.Println(blue(asp.FormatValue(v)))
		}
		ln.AppendHistory(strings.ReplaceAll(code, "\n", " "))
	}

	return 0
}

// readStatement collects one REPL input unit. Block headers (lines ending
// with ':') switch to continuation mode, which an empty line closes; parse
// probing catches the remaining unterminated constructs.
func readStatement(ln *liner.State) (string, bool) {
	var b strings.Builder
	blockMode := false

	for {
		prompt := promptMain
		if b.Len() > 0 {
			prompt = promptCont
		}
		line, err := ln.Prompt(prompt)
		if errors.Is(err, io.EOF) {
			return "", false
		}
		if err != nil {
			return "", true
		}

		if b.Len() > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)

		if strings.HasSuffix(strings.TrimSpace(line), ":") {
			blockMode = true
		}
		if blockMode {
			if strings.TrimSpace(line) == "" {
				return b.String(), true
			}
			continue
		}

		src := b.String()
		if _, err := asp.Parse(src); err != nil && asp.IsIncomplete(err) {
			continue
		}
		return src, true
	}
}
