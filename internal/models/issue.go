package models

import (
	"fmt"
	"time"
)

// IssueState is the lifecycle status of an issue. Transitions are linear
// (NEW to IN_PROGRESS to CLOSED) with one explicit reopen edge
// (CLOSED back to IN_PROGRESS). Everything else is rejected.
type IssueState uint8

const (
	StateNew IssueState = iota
	StateInProgress
	StateClosed
)

var stateNames = map[IssueState]string{
	StateNew:        "NEW",
	StateInProgress: "IN_PROGRESS",
	StateClosed:     "CLOSED",
}

func (s IssueState) String() string {
	if n, ok := stateNames[s]; ok {
		return n
	}
	return fmt.Sprintf("IssueState(%d)", uint8(s))
}

// ParseIssueState decodes the storage/wire representation of a state.
func ParseIssueState(v string) (IssueState, error) {
	for s, name := range stateNames {
		if name == v {
			return s, nil
		}
	}
	return StateNew, fmt.Errorf("unknown issue state %q", v)
}

// CanTransition reports whether moving from s to next is a legal step of the
// state machine. Closing an issue requires it to be in progress first.
func (s IssueState) CanTransition(next IssueState) bool {
	switch {
	case s == StateNew && next == StateInProgress:
		return true
	case s == StateInProgress && next == StateClosed:
		return true
	case s == StateClosed && next == StateInProgress: // explicit reopen
		return true
	}
	return false
}

func (s IssueState) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

func (s *IssueState) UnmarshalJSON(b []byte) error {
	if len(b) < 2 || b[0] != '"' || b[len(b)-1] != '"' {
		return fmt.Errorf("invalid issue state %s", b)
	}
	parsed, err := ParseIssueState(string(b[1 : len(b)-1]))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// Sender records which side of the conversation authored an issue update.
type Sender uint8

const (
	SenderCustomer Sender = iota
	SenderSupport
)

var senderNames = map[Sender]string{
	SenderCustomer: "CUSTOMER",
	SenderSupport:  "SUPPORT",
}

func (s Sender) String() string {
	if n, ok := senderNames[s]; ok {
		return n
	}
	return fmt.Sprintf("Sender(%d)", uint8(s))
}

func ParseSender(v string) (Sender, error) {
	for s, name := range senderNames {
		if name == v {
			return s, nil
		}
	}
	return SenderCustomer, fmt.Errorf("unknown sender %q", v)
}

func (s Sender) MarshalJSON() ([]byte, error) {
	return []byte(`"` + s.String() + `"`), nil
}

// Issue is a customer-reported problem owned by exactly one company.
// CompanyID is immutable after creation. The submitter is either a
// registered user (SubmitterID) or an anonymous guest (GuestEmail),
// never both.
type Issue struct {
	ID           int64         `json:"id"`
	CompanyID    int64         `json:"companyId"`
	SubjectID    *int64        `json:"subjectId,omitempty"`
	SubjectLabel string        `json:"subject"` // copied at creation; survives subject removal
	Description  string        `json:"description"`
	SubmitterID  *int64        `json:"submitterId,omitempty"`
	GuestEmail   *string       `json:"guestEmail,omitempty"`
	State        IssueState    `json:"state"`
	Updates      []IssueUpdate `json:"updates,omitempty"`
	CreatedAt    time.Time     `json:"createdAt"`
	UpdatedAt    time.Time     `json:"updatedAt"`
}

// SubmittedBy reports whether the given user created this issue.
func (i *Issue) SubmittedBy(userID int64) bool {
	return i.SubmitterID != nil && *i.SubmitterID == userID
}

// IssueUpdate is one immutable entry in an issue's conversation history.
type IssueUpdate struct {
	ID         int64     `json:"id"`
	IssueID    int64     `json:"issueId"`
	AuthorID   *int64    `json:"authorId,omitempty"` // nil for guest replies
	AuthorName string    `json:"authorName,omitempty"`
	Sender     Sender    `json:"sender"`
	Text       string    `json:"text"`
	CreatedAt  time.Time `json:"createdAt"`
}
