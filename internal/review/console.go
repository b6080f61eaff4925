package review

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

var (
	bold   = color.New(color.Bold)
	red    = color.New(color.FgRed)
	green  = color.New(color.FgGreen)
	yellow = color.New(color.FgYellow)
)

// Console is the interactive Approver: it prints each proposal with the
// changed text highlighted and reads y / n / all answers.
type Console struct {
	in  *bufio.Reader
	out io.Writer
	// Search and Replacement are highlighted in the before/after views.
	Search      string
	Replacement string
}

// NewConsole creates a console approver reading answers from in.
func NewConsole(in io.Reader, out io.Writer, search, replacement string) *Console {
	return &Console{
		in:          bufio.NewReader(in),
		out:         out,
		Search:      search,
		Replacement: replacement,
	}
}

func (c *Console) Review(p Proposal) (Decision, error) {
	fmt.Fprintf(c.out, "[%d/%d] %s\n", p.Index, p.Total, p.ID)
	fmt.Fprint(c.out, c.Comparison(p))

	answer, err := c.ask(bold.Sprint("Approve?") + " (y/n/all): ")
	if err != nil {
		return Reject, err
	}

	switch answer {
	case "y", "yes":
		return Approve, nil
	case "all":
		return ApproveAll, nil
	default:
		fmt.Fprintln(c.out, red.Sprint("Rejected"))
		return Reject, nil
	}
}

// Confirm asks a yes/no question; only "y" or "yes" counts as yes.
func (c *Console) Confirm(question string) (bool, error) {
	answer, err := c.ask(bold.Sprint(question) + " (y/n): ")
	if err != nil {
		return false, err
	}
	return answer == "y" || answer == "yes", nil
}

// Comparison renders the before/after view of a proposal.
func (c *Console) Comparison(p Proposal) string {
	var b strings.Builder
	b.WriteString(strings.Repeat("-", 10) + "\n")
	b.WriteString(bold.Sprint("Before:") + "\n")
	b.WriteString(highlight(p.Before, c.Search, red) + "\n")
	b.WriteString(bold.Sprint("After:") + "\n")
	b.WriteString(highlight(p.After, c.Replacement, green) + "\n\n")
	return b.String()
}

// Overview prints the comparison of every record.
func (c *Console) Overview(records []Record) {
	for _, r := range records {
		fmt.Fprintf(c.out, "%s [%s]\n", r.ID, r.Decision)
		fmt.Fprint(c.out, c.Comparison(Proposal{ID: r.ID, Before: r.Before, After: r.After}))
	}
}

func (c *Console) ask(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	line, err := c.in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", fmt.Errorf("read answer: %w", err)
	}
	return strings.ToLower(strings.TrimSpace(line)), nil
}

// highlight colors text with base and marks every occurrence of term.
func highlight(text, term string, base *color.Color) string {
	if term == "" {
		return base.Sprint(text)
	}
	parts := strings.Split(text, term)
	for i, part := range parts {
		parts[i] = base.Sprint(part)
	}
	return strings.Join(parts, yellow.Sprint(term))
}
