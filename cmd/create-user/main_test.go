package main

import (
	"bufio"
	"bytes"
	"strings"
	"testing"
)

func TestOrPrompt(t *testing.T) {
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("  alice \nsecret\n"))

	if got := orPrompt(r, &out, "given", "Username: "); got != "given" {
		t.Errorf("orPrompt with value = %q", got)
	}
	if out.Len() != 0 {
		t.Errorf("should not prompt when a value is given, wrote %q", out.String())
	}

	if got := orPrompt(r, &out, "", "Username: "); got != "alice" {
		t.Errorf("orPrompt = %q, want alice", got)
	}
	if got := prompt(r, &out, "Password: "); got != "secret" {
		t.Errorf("prompt = %q", got)
	}
	if out.String() != "Username: Password: " {
		t.Errorf("prompts = %q", out.String())
	}
	if got := prompt(r, &out, "More: "); got != "" {
		t.Errorf("prompt at EOF = %q", got)
	}
}
