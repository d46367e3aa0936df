package models

import (
	"testing"
	"time"
)

func TestCanTransitionTo(t *testing.T) {
	all := []TemplateStatus{StatusDraft, StatusPendingApproval, StatusActive, StatusRejected, StatusDeprecated}
	allowed := map[TemplateStatus][]TemplateStatus{
		StatusDraft:           {StatusDraft, StatusPendingApproval},
		StatusPendingApproval: {StatusActive, StatusRejected},
		StatusActive:          {StatusDeprecated},
	}

	for _, from := range all {
		for _, to := range all {
			want := false
			for _, s := range allowed[from] {
				if s == to {
					want = true
				}
			}
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestCheckInvariants(t *testing.T) {
	now := time.Now()
	tests := []struct {
		name    string
		tpl     Template
		wantErr bool
	}{
		{"draft", Template{Status: StatusDraft}, false},
		{"unknown status", Template{Status: "LIVE"}, true},
		{"rejected with reason", Template{Status: StatusRejected, RejectionReason: "too broad", ReviewedBy: "c1", ReviewedAt: &now}, false},
		{"rejected without reason", Template{Status: StatusRejected}, true},
		{"draft with reason", Template{Status: StatusDraft, RejectionReason: "x"}, true},
		{"active approved", Template{Status: StatusActive, ApprovedBy: "c1", ApprovedAt: &now}, false},
		{"active without approver", Template{Status: StatusActive}, true},
		{"pending with approver", Template{Status: StatusPendingApproval, ApprovedBy: "c1", ApprovedAt: &now}, true},
		{"deprecated", Template{Status: StatusDeprecated, ApprovedBy: "c1", ApprovedAt: &now, DeprecatedAt: &now}, false},
		{"deprecated without time", Template{Status: StatusDeprecated, ApprovedBy: "c1", ApprovedAt: &now}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tpl.CheckInvariants()
			if (err != nil) != tt.wantErr {
				t.Fatalf("CheckInvariants() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestIsLive(t *testing.T) {
	for _, s := range []TemplateStatus{StatusPendingApproval, StatusActive} {
		if !s.IsLive() {
			t.Errorf("%s should be live", s)
		}
	}
	for _, s := range []TemplateStatus{StatusDraft, StatusRejected, StatusDeprecated} {
		if s.IsLive() {
			t.Errorf("%s should not be live", s)
		}
	}
}
