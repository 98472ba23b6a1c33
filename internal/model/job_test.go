package model

import "testing"

func TestStageProgress(t *testing.T) {
	tests := []struct {
		stage string
		want  int
	}{
		{StageQueued, 0},
		{StageTriage, 20},
		{StageRetrieve, 50},
		{StageRootCause, 75},
		{StageSynthesize, 90},
		{StageDone, 100},
		{StageError, 100},
		{"bogus", 0},
	}
	for _, tt := range tests {
		if got := StageProgress(tt.stage); got != tt.want {
			t.Errorf("StageProgress(%q) = %d, want %d", tt.stage, got, tt.want)
		}
	}
}

func TestIsTerminalStage(t *testing.T) {
	for _, stage := range []string{StageQueued, StageTriage, StageRetrieve, StageRootCause, StageSynthesize} {
		if IsTerminalStage(stage) {
			t.Errorf("%s should not be terminal", stage)
		}
	}
	for _, stage := range []string{StageDone, StageError} {
		if !IsTerminalStage(stage) {
			t.Errorf("%s should be terminal", stage)
		}
	}
}
