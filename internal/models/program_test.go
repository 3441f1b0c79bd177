package models

import "testing"

func TestProgram_AcceptsEnrollment(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		// Draft programs enroll participants so the widget installation can
		// be exercised end to end before launch.
		{ProgramDraft, true},
		{ProgramLive, true},
		{ProgramPaused, false},
	}

	for _, tc := range cases {
		p := &Program{Status: tc.status}
		if got := p.AcceptsEnrollment(); got != tc.want {
			t.Errorf("%s: AcceptsEnrollment = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestProgram_RecordsConversions(t *testing.T) {
	cases := []struct {
		status string
		want   bool
	}{
		{ProgramDraft, false},
		{ProgramLive, true},
		{ProgramPaused, false},
	}

	for _, tc := range cases {
		p := &Program{Status: tc.status}
		if got := p.RecordsConversions(); got != tc.want {
			t.Errorf("%s: RecordsConversions = %v, want %v", tc.status, got, tc.want)
		}
	}
}

func TestProgram_DraftCanReachGoLive(t *testing.T) {
	// A draft program must be able to generate the widget traffic that
	// completes the installation step, otherwise launch would deadlock on a
	// required step only live programs could satisfy.
	draft := &Program{Status: ProgramDraft}
	if !draft.AcceptsEnrollment() {
		t.Fatal("a draft program must accept enrollment for installation testing")
	}
	if draft.RecordsConversions() {
		t.Error("draft traffic is testing, it must not count as conversions")
	}
}
