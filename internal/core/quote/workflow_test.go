package quote_test

import (
	"testing"
	"time"

	"github.com/SscSPs/freight_quoting_app/internal/apperrors"
	"github.com/SscSPs/freight_quoting_app/internal/core/domain"
	"github.com/SscSPs/freight_quoting_app/internal/core/quote"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2026, 10, 15, 9, 30, 0, 0, time.UTC)

func lowMarginDraft() quote.State {
	return quote.State{
		Status: domain.QuoteDraft,
		Approval: domain.ApprovalState{
			RequiresApproval: true,
			Reason:           "Margin 9.1% is below 15% threshold",
		},
	}
}

func TestTransition_WorkflowGuard(t *testing.T) {
	state := lowMarginDraft()

	blocked, entry, err := quote.Transition(state, quote.Command{Event: quote.EventAttemptSubmission, Actor: "alice"}, fixedNow)
	require.Error(t, err)
	assert.ErrorIs(t, err, quote.ErrApprovalRequired)
	assert.ErrorIs(t, err, apperrors.ErrConflict)
	assert.Contains(t, err.Error(), "9.1%")
	assert.Equal(t, domain.QuoteDraft, blocked.Status)
	assert.Equal(t, state, blocked)
	assert.Empty(t, entry.Text)

	next, entry, err := quote.Transition(state, quote.Command{Event: quote.EventSubmitForApproval, Actor: "alice"}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, domain.QuoteValidation, next.Status)
	require.NotNil(t, next.Approval.RequestedAt)
	assert.Equal(t, fixedNow, *next.Approval.RequestedAt)
	assert.Equal(t, "alice", next.Approval.RequestedBy)
	assert.Equal(t, domain.ActivityApproval, entry.Category)
	assert.Equal(t, domain.ToneWarning, entry.Tone)
	assert.Equal(t, "Approval requested: Margin 9.1% is below 15% threshold", entry.Text)

	// input state untouched
	assert.Nil(t, state.Approval.RequestedAt)
	assert.Equal(t, domain.QuoteDraft, state.Status)
}

func TestTransition_HappyPaths(t *testing.T) {
	tests := []struct {
		name       string
		from       quote.State
		cmd        quote.Command
		wantStatus domain.QuoteStatus
		wantCat    domain.ActivityCategory
		wantTone   domain.ActivityTone
	}{
		{
			name:       "attempt submission without approval",
			from:       quote.State{Status: domain.QuoteDraft},
			cmd:        quote.Command{Event: quote.EventAttemptSubmission},
			wantStatus: domain.QuoteSent,
			wantCat:    domain.ActivitySystem,
			wantTone:   domain.ToneSuccess,
		},
		{
			name:       "approve",
			from:       quote.State{Status: domain.QuoteValidation, Approval: domain.ApprovalState{RequiresApproval: true, Reason: "low"}},
			cmd:        quote.Command{Event: quote.EventApprove, Actor: "manager"},
			wantStatus: domain.QuoteSent,
			wantCat:    domain.ActivityApproval,
			wantTone:   domain.ToneSuccess,
		},
		{
			name:       "reject",
			from:       quote.State{Status: domain.QuoteValidation, Approval: domain.ApprovalState{RequiresApproval: true}},
			cmd:        quote.Command{Event: quote.EventReject, Actor: "manager", Reason: "rework origin charges"},
			wantStatus: domain.QuoteDraft,
			wantCat:    domain.ActivityApproval,
			wantTone:   domain.ToneDanger,
		},
		{
			name:       "client accepts",
			from:       quote.State{Status: domain.QuoteSent},
			cmd:        quote.Command{Event: quote.EventMarkAccepted},
			wantStatus: domain.QuoteAccepted,
			wantCat:    domain.ActivitySystem,
			wantTone:   domain.ToneSuccess,
		},
		{
			name:       "client declines",
			from:       quote.State{Status: domain.QuoteSent},
			cmd:        quote.Command{Event: quote.EventMarkRejected, Reason: "too expensive"},
			wantStatus: domain.QuoteRejected,
			wantCat:    domain.ActivitySystem,
			wantTone:   domain.ToneDanger,
		},
		{
			name:       "reopen",
			from:       quote.State{Status: domain.QuoteRejected},
			cmd:        quote.Command{Event: quote.EventReopen},
			wantStatus: domain.QuoteDraft,
			wantCat:    domain.ActivitySystem,
			wantTone:   domain.ToneInfo,
		},
		{
			name:       "override from accepted",
			from:       quote.State{Status: domain.QuoteAccepted},
			cmd:        quote.Command{Event: quote.EventOverrideStatus, TargetStatus: domain.QuoteDraft},
			wantStatus: domain.QuoteDraft,
			wantCat:    domain.ActivitySystem,
			wantTone:   domain.ToneWarning,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			next, entry, err := quote.Transition(tt.from, tt.cmd, fixedNow)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, next.Status)
			assert.Equal(t, tt.wantCat, entry.Category)
			assert.Equal(t, tt.wantTone, entry.Tone)
			assert.Equal(t, fixedNow, entry.At)
			assert.NotEmpty(t, entry.Text)
		})
	}
}

func TestTransition_ApproveClearsGate(t *testing.T) {
	from := quote.State{Status: domain.QuoteValidation, Approval: domain.ApprovalState{RequiresApproval: true, Reason: "low", RequestedBy: "alice"}}

	next, _, err := quote.Transition(from, quote.Command{Event: quote.EventApprove, Actor: "manager"}, fixedNow)
	require.NoError(t, err)
	assert.False(t, next.Approval.RequiresApproval)
	assert.Empty(t, next.Approval.Reason)
	assert.Equal(t, "manager", next.Approval.ApprovedBy)
	require.NotNil(t, next.Approval.ApprovedAt)
	assert.Equal(t, "alice", next.Approval.RequestedBy)
}

func TestTransition_RejectRecordsReason(t *testing.T) {
	from := quote.State{Status: domain.QuoteValidation, Approval: domain.ApprovalState{RequiresApproval: true}}

	next, entry, err := quote.Transition(from, quote.Command{Event: quote.EventReject, Reason: "  fix freight  "}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "fix freight", next.Approval.RejectionReason)
	assert.Equal(t, "Approval rejected: fix freight", entry.Text)

	_, _, err = quote.Transition(from, quote.Command{Event: quote.EventReject, Reason: " "}, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTransition_OverrideText(t *testing.T) {
	_, entry, err := quote.Transition(quote.State{Status: domain.QuoteSent}, quote.Command{Event: quote.EventOverrideStatus, TargetStatus: domain.QuoteValidation}, fixedNow)
	require.NoError(t, err)
	assert.Equal(t, "Status manually changed from SENT to VALIDATION", entry.Text)

	_, _, err = quote.Transition(quote.State{Status: domain.QuoteSent}, quote.Command{Event: quote.EventOverrideStatus, TargetStatus: "ARCHIVED"}, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestTransition_IllegalSources(t *testing.T) {
	tests := []struct {
		name  string
		state domain.QuoteStatus
		event quote.Event
	}{
		{"submit for approval from validation", domain.QuoteValidation, quote.EventSubmitForApproval},
		{"attempt submission from sent", domain.QuoteSent, quote.EventAttemptSubmission},
		{"approve from draft", domain.QuoteDraft, quote.EventApprove},
		{"reject from sent", domain.QuoteSent, quote.EventReject},
		{"accept from draft", domain.QuoteDraft, quote.EventMarkAccepted},
		{"decline from validation", domain.QuoteValidation, quote.EventMarkRejected},
		{"reopen from accepted", domain.QuoteAccepted, quote.EventReopen},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			from := quote.State{Status: tt.state}
			next, _, err := quote.Transition(from, quote.Command{Event: tt.event, Reason: "x"}, fixedNow)
			assert.ErrorIs(t, err, quote.ErrInvalidTransition)
			assert.Equal(t, from, next)
		})
	}
}

func TestTransition_SubmitForApprovalNotNeeded(t *testing.T) {
	_, _, err := quote.Transition(quote.State{Status: domain.QuoteDraft}, quote.Command{Event: quote.EventSubmitForApproval}, fixedNow)
	assert.ErrorIs(t, err, quote.ErrApprovalNotRequired)
}

func TestTransition_UnknownEvent(t *testing.T) {
	_, _, err := quote.Transition(quote.State{Status: domain.QuoteDraft}, quote.Command{Event: "ARCHIVE"}, fixedNow)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}
