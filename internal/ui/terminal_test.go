package ui

import (
	"bytes"
	"testing"
)

func TestTerminal_StreamsResponse(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.ClearResponse()
	term.AppendResponse("Hel")
	term.AppendResponse("lo")

	if out.String() != "Hello" {
		t.Errorf("output = %q, want %q", out.String(), "Hello")
	}
	if term.Response() != "Hello" {
		t.Errorf("state response = %q", term.Response())
	}
}

func TestTerminal_StatusBreaksReplyLine(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.AppendResponse("partial")
	term.SetMessage("busy")

	want := "partial\n[status] busy\n"
	if out.String() != want {
		t.Errorf("output = %q, want %q", out.String(), want)
	}
}

func TestTerminal_SetMessage_PrintsOnChangeOnly(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.SetMessage("busy")
	term.SetMessage("busy")
	term.SetMessage("")

	if out.String() != "[status] busy\n" {
		t.Errorf("output = %q", out.String())
	}
	if term.Message() != "" {
		t.Errorf("message = %q, want empty", term.Message())
	}
}

func TestTerminal_SubmitTransitions(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.SetSubmitEnabled(true) // already enabled, no output
	term.SetSubmitEnabled(false)
	term.SetSubmitEnabled(true)

	if out.String() != "[status] ready\n" {
		t.Errorf("output = %q", out.String())
	}
	if !term.SubmitEnabled() {
		t.Error("expected submit enabled")
	}
}

func TestTerminal_Prompt(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)

	term.AppendResponse("4")
	term.Prompt()

	if out.String() != "4\n> " {
		t.Errorf("output = %q", out.String())
	}
}

func TestTerminal_NoticeLeavesState(t *testing.T) {
	var out bytes.Buffer
	term := NewTerminal(&out)
	term.SetMessage("kept")
	out.Reset()

	term.Notice("submit is disabled")

	if out.String() != "[status] submit is disabled\n" {
		t.Errorf("output = %q", out.String())
	}
	if term.Message() != "kept" {
		t.Errorf("message = %q, want kept", term.Message())
	}
}
