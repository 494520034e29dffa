package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
)

const helpText = `commands:
  <text>           submit a query
  /upload <path>   upload a PDF document
  /status          check whether a query is active
  /help            show this help
  /quit            exit`

type commandKind int

const (
	cmdQuery commandKind = iota
	cmdUpload
	cmdStatus
	cmdHelp
	cmdQuit
)

type command struct {
	kind commandKind
	arg  string
}

// parseCommand maps one input line to a command. Anything that is not a
// known slash command is query text.
func parseCommand(line string) command {
	trimmed := strings.TrimSpace(line)
	name, arg, _ := strings.Cut(trimmed, " ")
	arg = strings.TrimSpace(arg)

	switch name {
	case "/quit", "/exit":
		return command{kind: cmdQuit}
	case "/status":
		return command{kind: cmdStatus}
	case "/help":
		return command{kind: cmdHelp}
	case "/upload":
		return command{kind: cmdUpload, arg: arg}
	}
	return command{kind: cmdQuery, arg: line}
}

// actions is the part of the query client the input loop drives.
type actions interface {
	SubmitQuery(ctx context.Context, text string)
	UploadFile(ctx context.Context, path string)
	CheckStatus(ctx context.Context)
}

// console is the part of the terminal the input loop writes to.
type console interface {
	SubmitEnabled() bool
	Notice(msg string)
	Prompt()
}

// runREPL reads commands from in until EOF, /quit or ctx is done.
// Commands run one at a time; a query is refused while submit is disabled.
func runREPL(ctx context.Context, in io.Reader, term console, svc actions) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	lines := make(chan string)
	scanErr := make(chan error, 1)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
		scanErr <- sc.Err()
	}()

	term.Prompt()
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				select {
				case err := <-scanErr:
					if err != nil {
						return fmt.Errorf("read input: %w", err)
					}
				default:
				}
				return nil
			}

			cmd := parseCommand(line)
			switch cmd.kind {
			case cmdQuit:
				return nil
			case cmdHelp:
				term.Notice(helpText)
			case cmdStatus:
				svc.CheckStatus(ctx)
			case cmdUpload:
				svc.UploadFile(ctx, cmd.arg)
			case cmdQuery:
				if !term.SubmitEnabled() {
					term.Notice("submit is disabled while a query is active")
					break
				}
				svc.SubmitQuery(ctx, cmd.arg)
			}
			term.Prompt()
		}
	}
}
