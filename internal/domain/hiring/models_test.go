package hiring

import "testing"

func TestNextStage(t *testing.T) {
	tests := []struct {
		current string
		want    string
		ok      bool
	}{
		{StageApplied, StageScreening, true},
		{StageScreening, StageInterview, true},
		{StageInterview, StageOffer, true},
		{StageOffer, StageHired, true},
		{StageHired, StageHired, false},
		{"garbage", StageScreening, true},
	}
	for _, tt := range tests {
		got, ok := NextStage(tt.current)
		if got != tt.want || ok != tt.ok {
			t.Errorf("NextStage(%q) = %q, %v; want %q, %v", tt.current, got, ok, tt.want, tt.ok)
		}
	}
}
