package auth

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// Prompter asks users for credentials.
type Prompter interface {
	Username() (string, error)
	Password() (string, error)
}

// TerminalPrompter prompts on a terminal.
//
// The password is read without echo when In is a terminal.
type TerminalPrompter struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func NewTerminalPrompter() *TerminalPrompter {
	return &TerminalPrompter{In: os.Stdin, Out: os.Stderr}
}

func (tp *TerminalPrompter) Username() (string, error) {
	fmt.Fprint(tp.Out, "Enter DesignSafe Username: ")
	return tp.readLine()
}

func (tp *TerminalPrompter) Password() (string, error) {
	fmt.Fprint(tp.Out, "Enter DesignSafe Password: ")
	if f, ok := tp.In.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(tp.Out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	return tp.readLine()
}

func (tp *TerminalPrompter) readLine() (string, error) {
	if tp.reader == nil {
		tp.reader = bufio.NewReader(tp.In)
	}
	line, err := tp.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
