package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/chzyer/readline"
)

// ErrPromptCancelled is returned when the user interrupts a prompt.
var ErrPromptCancelled = errors.New("prompt cancelled")

// Prompter asks for input on a terminal.
type Prompter struct {
	in  io.ReadCloser
	out io.Writer
}

// NewPrompter creates a prompter on stdin and stderr.
func NewPrompter() *Prompter {
	return &Prompter{in: os.Stdin, out: os.Stderr}
}

// Ask reads one line. An empty answer returns def.
func (p *Prompter) Ask(prompt, def string) (string, error) {
	if def != "" {
		prompt = fmt.Sprintf("%s [%s]", prompt, def)
	}
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          prompt + ": ",
		Stdin:           p.in,
		Stdout:          p.out,
		InterruptPrompt: "^C",
	})
	if err != nil {
		return "", fmt.Errorf("failed to create prompt: %w", err)
	}
	defer rl.Close()

	line, err := rl.Readline()
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrPromptCancelled
	}
	if err != nil {
		return "", err
	}
	if line = strings.TrimSpace(line); line == "" {
		return def, nil
	}
	return line, nil
}

// Password reads a line without echoing it.
func (p *Prompter) Password(prompt string) (string, error) {
	rl, err := readline.NewEx(&readline.Config{
		Stdin:  p.in,
		Stdout: p.out,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create prompt: %w", err)
	}
	defer rl.Close()

	secret, err := rl.ReadPassword(prompt + ": ")
	if errors.Is(err, readline.ErrInterrupt) || errors.Is(err, io.EOF) {
		return "", ErrPromptCancelled
	}
	if err != nil {
		return "", err
	}
	return string(secret), nil
}

// ReadSecret reads the first line of r, for --password-stdin.
func ReadSecret(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", fmt.Errorf("no password on standard input")
	}
	return line, nil
}
