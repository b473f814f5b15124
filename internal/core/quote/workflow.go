package quote

import (
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
)

var (
	// ErrApprovalRequired blocks sending a quote whose margin is under the threshold.
	ErrApprovalRequired = fmt.Errorf("%w: approval required", apperrors.ErrConflict)
	// ErrApprovalNotRequired rejects an approval request for a quote that can be sent directly.
	ErrApprovalNotRequired = fmt.Errorf("%w: approval not required", apperrors.ErrConflict)
	// ErrInvalidTransition is returned for events that are illegal from the current status.
	ErrInvalidTransition = fmt.Errorf("%w: invalid status transition", apperrors.ErrConflict)
	// ErrQuoteLocked is returned for pricing mutations outside DRAFT and VALIDATION.
	ErrQuoteLocked = fmt.Errorf("%w: quote is locked for editing", apperrors.ErrConflict)
)

// Event names a workflow transition.
type Event string

const (
	EventSubmitForApproval Event = "SUBMIT_FOR_APPROVAL"
	EventAttemptSubmission Event = "ATTEMPT_SUBMISSION"
	EventApprove           Event = "APPROVE"
	EventReject            Event = "REJECT"
	EventMarkAccepted      Event = "MARK_ACCEPTED"
	EventMarkRejected      Event = "MARK_REJECTED"
	EventReopen            Event = "REOPEN"
	EventOverrideStatus    Event = "OVERRIDE_STATUS"
)

// Command is one request to move a quote through its workflow.
type Command struct {
	Event        Event
	Actor        string
	Reason       string             // Reject and MarkRejected
	TargetStatus domain.QuoteStatus // OverrideStatus
}

// State is the part of a quote the workflow reads and writes.
type State struct {
	Status   domain.QuoteStatus
	Approval domain.ApprovalState
}

// Transition applies cmd to state. It is pure: the caller's state is never
// modified, and on error the returned state equals the input.
func Transition(state State, cmd Command, now time.Time) (State, domain.ActivityEntry, error) {
	next := State{Status: state.Status, Approval: copyApproval(state.Approval)}
	entry := domain.ActivityEntry{Actor: cmd.Actor, At: now}

	switch cmd.Event {
	case EventSubmitForApproval:
		if state.Status != domain.QuoteDraft {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		if !state.Approval.RequiresApproval {
			return state, domain.ActivityEntry{}, ErrApprovalNotRequired
		}
		next.Status = domain.QuoteValidation
		next.Approval.RequestedBy = cmd.Actor
		next.Approval.RequestedAt = timePtr(now)
		next.Approval.RejectionReason = ""
		entry.Category, entry.Tone = domain.ActivityApproval, domain.ToneWarning
		entry.Text = fmt.Sprintf("Approval requested: %s", state.Approval.Reason)

	case EventAttemptSubmission:
		if state.Status != domain.QuoteDraft {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		if state.Approval.RequiresApproval {
			return state, domain.ActivityEntry{}, fmt.Errorf("%w: %s", ErrApprovalRequired, state.Approval.Reason)
		}
		next.Status = domain.QuoteSent
		entry.Category, entry.Tone = domain.ActivitySystem, domain.ToneSuccess
		entry.Text = "Quote sent to client"

	case EventApprove:
		if state.Status != domain.QuoteValidation {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		next.Status = domain.QuoteSent
		next.Approval.ApprovedBy = cmd.Actor
		next.Approval.ApprovedAt = timePtr(now)
		next.Approval.RequiresApproval = false
		next.Approval.Reason = ""
		entry.Category, entry.Tone = domain.ActivityApproval, domain.ToneSuccess
		entry.Text = "Margin approved, quote sent to client"

	case EventReject:
		if state.Status != domain.QuoteValidation {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		reason := strings.TrimSpace(cmd.Reason)
		if reason == "" {
			return state, domain.ActivityEntry{}, apperrors.NewValidationError("rejection reason is required")
		}
		next.Status = domain.QuoteDraft
		next.Approval.RejectionReason = reason
		entry.Category, entry.Tone = domain.ActivityApproval, domain.ToneDanger
		entry.Text = fmt.Sprintf("Approval rejected: %s", reason)

	case EventMarkAccepted:
		if state.Status != domain.QuoteSent {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		next.Status = domain.QuoteAccepted
		entry.Category, entry.Tone = domain.ActivitySystem, domain.ToneSuccess
		entry.Text = "Client accepted the quote"

	case EventMarkRejected:
		if state.Status != domain.QuoteSent {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		next.Status = domain.QuoteRejected
		next.Approval.RejectionReason = strings.TrimSpace(cmd.Reason)
		entry.Category, entry.Tone = domain.ActivitySystem, domain.ToneDanger
		entry.Text = "Client declined the quote"
		if next.Approval.RejectionReason != "" {
			entry.Text += ": " + next.Approval.RejectionReason
		}

	case EventReopen:
		if state.Status != domain.QuoteRejected {
			return state, domain.ActivityEntry{}, invalidFrom(cmd.Event, state.Status)
		}
		next.Status = domain.QuoteDraft
		entry.Category, entry.Tone = domain.ActivitySystem, domain.ToneInfo
		entry.Text = "Quote reopened as draft"

	case EventOverrideStatus:
		if !cmd.TargetStatus.IsValid() {
			return state, domain.ActivityEntry{}, apperrors.NewValidationError(fmt.Sprintf("unknown status %q", cmd.TargetStatus))
		}
		next.Status = cmd.TargetStatus
		entry.Category, entry.Tone = domain.ActivitySystem, domain.ToneWarning
		entry.Text = fmt.Sprintf("Status manually changed from %s to %s", state.Status, cmd.TargetStatus)

	default:
		return state, domain.ActivityEntry{}, apperrors.NewValidationError(fmt.Sprintf("unknown workflow event %q", cmd.Event))
	}

	return next, entry, nil
}

func invalidFrom(event Event, status domain.QuoteStatus) error {
	return fmt.Errorf("%w: %s is not allowed from %s", ErrInvalidTransition, event, status)
}

func timePtr(t time.Time) *time.Time {
	return &t
}

func copyApproval(a domain.ApprovalState) domain.ApprovalState {
	out := a
	if a.RequestedAt != nil {
		out.RequestedAt = timePtr(*a.RequestedAt)
	}
	if a.ApprovedAt != nil {
		out.ApprovedAt = timePtr(*a.ApprovedAt)
	}
	return out
}
