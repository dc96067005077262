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
	Register(ctx context.Context) error
	Login(ctx context.Context) error
	Logout(ctx context.Context) error

	List(ctx context.Context) error
	Next(ctx context.Context) error
	Prev(ctx context.Context) error
	Page(ctx context.Context, args []string) error
	Search(ctx context.Context, args []string) error
	Filter(ctx context.Context, args []string) error

	Add(ctx context.Context) error
	Edit(ctx context.Context, args []string) error
	Delete(ctx context.Context, args []string) error
	Avatar(ctx context.Context, args []string) error
	Show(ctx context.Context, args []string) error
	Sync(ctx context.Context) error
	Discard(ctx context.Context) error
}

const (
	helpLoggedOut = "Available commands: register, login, exit"
	helpLoggedIn  = "Available commands: (l)ist, next, prev, page <n>, search [name], filter all|fullstack|other, " +
		"add, edit <id>, delete <id>, avatar <id> <path>, show <id>, sync, discard, logout, exit"
)

// runREPL starts a simple read-eval-print loop for the devsync CLI.
//
// It reads a line from reader, parses the first token as the command and
// passes the remaining tokens to the handler. Errors returned by handlers are
// printed and the loop goes on. The loop exits on EOF or when the user types
// "exit" or "quit".
//
// Commands that touch developers are refused until the user is logged in.
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("devsync %s> ", statusFn()))
		line, err := reader.ReadString('\n')
		if err != nil && !(errors.Is(err, io.EOF) && line != "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		switch cmd {
		case "help":
			if a.isLoggedIn() {
				printlnFn(helpLoggedIn)
			} else {
				printlnFn(helpLoggedOut)
			}
			continue
		case "register":
			report(a.Register(ctx))
			continue
		case "login":
			report(a.Login(ctx))
			continue
		case "exit", "quit":
			printlnFn("Bye!")
			return
		}

		if !a.isLoggedIn() {
			if isKnownCommand(cmd) {
				printlnFn("Please login first")
			} else {
				printlnFn("Unknown command:", cmd)
			}
			continue
		}

		switch cmd {
		case "l", "list":
			report(a.List(ctx))
		case "next":
			report(a.Next(ctx))
		case "prev":
			report(a.Prev(ctx))
		case "page":
			report(a.Page(ctx, args))
		case "search":
			report(a.Search(ctx, args))
		case "filter":
			report(a.Filter(ctx, args))
		case "add":
			report(a.Add(ctx))
		case "edit":
			report(a.Edit(ctx, args))
		case "delete":
			report(a.Delete(ctx, args))
		case "avatar":
			report(a.Avatar(ctx, args))
		case "show":
			report(a.Show(ctx, args))
		case "sync":
			report(a.Sync(ctx))
		case "discard":
			report(a.Discard(ctx))
		case "logout":
			report(a.Logout(ctx))
		default:
			printlnFn("Unknown command:", cmd)
		}
	}
}

func isKnownCommand(cmd string) bool {
	switch cmd {
	case "l", "list", "next", "prev", "page", "search", "filter",
		"add", "edit", "delete", "avatar", "show", "sync", "discard", "logout":
		return true
	}
	return false
}

func report(err error) {
	if err != nil {
		printlnFn("Error:", err.Error())
	}
}
