// Package review implements find-and-replace over the proposed translations
// of a work file. Proposals are decided by a pluggable Approver, so the same
// transform runs interactively, fully automatic, or under test.
package review

import (
	"errors"
	"strings"

	"locmerge/internal/workfile"
)

// ErrEmptyPattern is returned when the search text is empty.
var ErrEmptyPattern = errors.New("search text must not be empty")

// Decision is an approver's answer to one proposal.
type Decision string

const (
	Approve    Decision = "approve"
	Reject     Decision = "reject"
	ApproveAll Decision = "approve-all"
)

// Proposal is one pending replacement shown to an approver.
type Proposal struct {
	ID     string
	Before string
	After  string
	// Index is 1-based; Total is the number of proposals in the run.
	Index int
	Total int
}

// Approver decides proposals.
type Approver interface {
	Review(p Proposal) (Decision, error)
}

// Record is one line of the decision log.
type Record struct {
	ID          string   `json:"id"`
	Search      string   `json:"search"`
	Replacement string   `json:"replacement"`
	Before      string   `json:"before"`
	After       string   `json:"after"`
	Decision    Decision `json:"decision"`
	// Automatic is set when the proposal was approved without asking,
	// following an earlier approve-all answer.
	Automatic bool `json:"automatic"`
}

// Approved reports whether the record changes the work file.
func (r Record) Approved() bool {
	return r.Decision == Approve || r.Decision == ApproveAll
}

// Outcome is the result of a find-and-replace run.
type Outcome struct {
	Search      string
	Replacement string
	Records     []Record
}

// Approved counts the approved proposals.
func (o Outcome) Approved() int {
	n := 0
	for _, r := range o.Records {
		if r.Approved() {
			n++
		}
	}
	return n
}

// Apply writes the approved replacements into wf and returns how many
// entries changed.
func (o Outcome) Apply(wf workfile.WorkFile) int {
	n := 0
	for _, r := range o.Records {
		if !r.Approved() {
			continue
		}
		if e, ok := wf[r.ID]; ok && e != nil {
			e.LocNew = workfile.Str(r.After)
			n++
		}
	}
	return n
}

// Replace proposes replacing every occurrence of search with replacement in
// the proposed translations of wf and asks approver about each, in
// identifier order. wf is not modified; call Outcome.Apply to commit.
//
// Once the approver answers ApproveAll, the remaining proposals are approved
// without asking. If the approver fails, the records collected so far are
// returned with the error.
func Replace(wf workfile.WorkFile, search, replacement string, approver Approver) (Outcome, error) {
	out := Outcome{Search: search, Replacement: replacement}
	if search == "" {
		return out, ErrEmptyPattern
	}

	var ids []string
	for _, id := range wf.IDs() {
		e := wf[id]
		if e != nil && e.LocNew != nil && strings.Contains(*e.LocNew, search) {
			ids = append(ids, id)
		}
	}

	all := false
	for i, id := range ids {
		before := *wf[id].LocNew
		p := Proposal{
			ID:     id,
			Before: before,
			After:  strings.ReplaceAll(before, search, replacement),
			Index:  i + 1,
			Total:  len(ids),
		}

		rec := Record{
			ID:          id,
			Search:      search,
			Replacement: replacement,
			Before:      p.Before,
			After:       p.After,
		}

		if all {
			rec.Decision = Approve
			rec.Automatic = true
			out.Records = append(out.Records, rec)
			continue
		}

		d, err := approver.Review(p)
		if err != nil {
			return out, err
		}
		switch d {
		case ApproveAll:
			all = true
		case Approve:
		default:
			d = Reject
		}
		rec.Decision = d
		out.Records = append(out.Records, rec)
	}

	return out, nil
}

// AutoApprover approves every proposal.
type AutoApprover struct{}

func (AutoApprover) Review(Proposal) (Decision, error) { return ApproveAll, nil }

// RejectAll rejects every proposal.
type RejectAll struct{}

func (RejectAll) Review(Proposal) (Decision, error) { return Reject, nil }
