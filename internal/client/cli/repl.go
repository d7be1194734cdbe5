package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	List(ctx context.Context) error
	Show(ctx context.Context, id string) error
	Add(ctx context.Context) error
	Edit(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Refresh(ctx context.Context) error
	Calendar(ctx context.Context, month string) error
	Locale(ctx context.Context, code string) error
	Theme(ctx context.Context, name string) error
	Prefs(ctx context.Context, cmd string) error
	Export(ctx context.Context, format, path string) error
	Backup(ctx context.Context) error
}

const (
	helpSignedOut = "Available commands: login, locale [code], theme [light|dark], prefs [reset], exit"
	helpSignedIn  = "Available commands: (l)ist, show <id>, add, edit <id>, delete <id>, refresh, " +
		"calendar [YYYY-MM], locale [code], theme [light|dark], prefs [reset], export <json|csv> <path>, backup, logout, exit"
)

var signedInOnly = map[string]bool{
	"l": true, "list": true, "show": true, "add": true, "edit": true, "delete": true,
	"refresh": true, "calendar": true, "export": true, "backup": true, "logout": true,
}

// runREPL starts a simple read-eval-print loop.
//
// It reads a line from reader, parses the first token as the command and
// dispatches to methods on a. The loop exits on EOF or when the user types
// "exit" or "quit". Errors returned by command handlers are reported by the
// handlers themselves.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("chronos%s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]
		arg := func(i int) string {
			if i < len(args) {
				return args[i]
			}
			return ""
		}

		if signedInOnly[cmd] && !a.isLoggedIn() {
			printlnFn("Please login first.")
			continue
		}

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpSignedIn)
			} else {
				printlnFn(helpSignedOut)
			}

		case "login":
			_ = a.Login(ctx)

		case "logout":
			_ = a.Logout(ctx)

		case "l", "list":
			_ = a.List(ctx)

		case "show", "edit", "delete":
			if len(args) != 1 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			switch cmd {
			case "show":
				_ = a.Show(ctx, args[0])
			case "edit":
				_ = a.Edit(ctx, args[0])
			default:
				_ = a.Delete(ctx, args[0])
			}

		case "add":
			_ = a.Add(ctx)

		case "refresh":
			_ = a.Refresh(ctx)

		case "calendar":
			_ = a.Calendar(ctx, arg(0))

		case "locale":
			_ = a.Locale(ctx, arg(0))

		case "theme":
			_ = a.Theme(ctx, arg(0))

		case "prefs":
			_ = a.Prefs(ctx, arg(0))

		case "export":
			if len(args) != 2 {
				printlnFn("Usage: export <json|csv> <path>")
				continue
			}
			_ = a.Export(ctx, args[0], args[1])

		case "backup":
			_ = a.Backup(ctx)

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}
