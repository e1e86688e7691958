package dialog

import "testing"

func TestResult(t *testing.T) {
	ok := Confirm("payload")
	if !ok.Confirmed || ok.Payload != "payload" {
		t.Errorf("Unexpected confirmed result %+v", ok)
	}

	no := Cancel[string]()
	if no.Confirmed || no.Payload != "" {
		t.Errorf("Unexpected cancelled result %+v", no)
	}
}

func TestGate(t *testing.T) {
	tests := []struct {
		name      string
		modified  bool
		choice    Choice
		saveOK    bool
		want      bool
		wantSaved bool
	}{
		{"clean document skips prompt", false, ChoiceCancel, false, true, false},
		{"yes and save succeeds", true, ChoiceYes, true, true, true},
		{"yes and save fails", true, ChoiceYes, false, false, true},
		{"no discards", true, ChoiceNo, false, true, false},
		{"cancel aborts", true, ChoiceCancel, true, false, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			saved := false
			got := Gate(tt.modified, tt.choice, func() bool {
				saved = true
				return tt.saveOK
			})
			if got != tt.want {
				t.Errorf("Expected proceed=%v, got %v", tt.want, got)
			}
			if saved != tt.wantSaved {
				t.Errorf("Expected saved=%v, got %v", tt.wantSaved, saved)
			}
		})
	}
}

func TestChoiceString(t *testing.T) {
	if ChoiceYes.String() != "yes" || ChoiceNo.String() != "no" || ChoiceCancel.String() != "cancel" {
		t.Error("Unexpected choice names")
	}
}
