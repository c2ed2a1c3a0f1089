package command

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"
)

// prompter reads answers from the app's stdin.
type prompter struct {
	in  io.Reader
	r   *bufio.Reader
	out io.Writer
}

func newPrompter(in io.Reader, out io.Writer) *prompter {
	return &prompter{in: in, r: bufio.NewReader(in), out: out}
}

// line prints label and reads one trimmed line.
func (p *prompter) line(label string) (string, error) {
	fmt.Fprint(p.out, label)
	s, err := p.r.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && s != "") {
		return "", err
	}
	return strings.TrimSpace(s), nil
}

// secret reads a line without echo when stdin is a terminal.
func (p *prompter) secret(label string) (string, error) {
	if f, ok := p.in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		fmt.Fprint(p.out, label)
		b, err := term.ReadPassword(int(f.Fd()))
		fmt.Fprintln(p.out)
		if err != nil {
			return "", err
		}
		return string(b), nil
	}
	s, err := p.line(label)
	return s, err
}

// all reads the rest of stdin, dropping one trailing newline.
func (p *prompter) all() (string, error) {
	b, err := io.ReadAll(p.r)
	if err != nil {
		return "", err
	}
	s := strings.TrimSuffix(string(b), "\n")
	return strings.TrimSuffix(s, "\r"), nil
}
