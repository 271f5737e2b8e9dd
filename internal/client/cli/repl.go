package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/logminer/internal/client/client"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Server(ctx context.Context, id string) error
	StartTailing(ctx context.Context, id string) error
	StopTailing(ctx context.Context, id string) error
	Watch(ctx context.Context, id string) error
}

// runREPL starts a simple read–eval–print loop for the LogMiner CLI.
//
// It reads a line from the provided scanner, parses the first token as the
// command, and dispatches to methods on 'a'. The loop exits on scanner EOF,
// when ctx is done, or when the user types "exit" or "quit".
//
//	Not logged in:
//	  - help           — show available commands
//	  - login          — sign in through the browser
//	  - exit | quit    — leave the program
//
//	Logged in:
//	  - whoami         — show the signed-in user
//	  - server <id>    — show a monitored server
//	  - start <id>     — start tailing a server's logs
//	  - stop <id>      — stop tailing a server's logs
//	  - watch <id>     — stream a server's logs until Enter
//	  - logout         — sign out
//	  - exit | quit    — leave the program
//
// Errors returned by command handlers are printed and the loop continues.
func runREPL(ctx context.Context, a execIface, statusFn func() string, scanner *bufio.Scanner) {
	for ctx.Err() == nil {
		printlnFn(fmt.Sprintf("lm %s> ", statusFn()))
		if !scanner.Scan() {
			return
		}
		parts := strings.Fields(scanner.Text())
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		var err error
		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn("Available commands: whoami, server <id>, start <id>, stop <id>, watch <id>, logout, exit")
			} else {
				printlnFn("Available commands: login, exit")
			}

		case "login":
			err = a.Login(ctx)

		case "logout":
			err = a.Logout(ctx)

		case "whoami":
			err = a.WhoAmI(ctx)

		case "server", "start", "stop", "watch":
			if len(args) == 0 {
				printlnFn(fmt.Sprintf("Usage: %s <id>", cmd))
				continue
			}
			if !a.isLoggedIn() {
				printlnFn("Please login first")
				continue
			}
			err = dispatchServer(ctx, a, cmd, args[0])

		case "exit", "quit":
			printlnFn("Bye!")
			return

		default:
			printlnFn("Unknown command:", cmd)
		}

		if err != nil {
			reportError(err)
		}
	}
}

func dispatchServer(ctx context.Context, a execIface, cmd, id string) error {
	switch cmd {
	case "server":
		return a.Server(ctx, id)
	case "start":
		return a.StartTailing(ctx, id)
	case "stop":
		return a.StopTailing(ctx, id)
	default:
		return a.Watch(ctx, id)
	}
}

func reportError(err error) {
	switch {
	case errors.Is(err, client.ErrUnauthorized):
		printlnFn("Not authorized, please login again")
	case errors.Is(err, client.ErrNotFound):
		printlnFn("Not found")
	case errors.Is(err, client.ErrUnavailable):
		printlnFn("Server unavailable, try again later")
	default:
		printlnFn("Error:", err)
	}
}
