package model

import (
	"testing"
	"time"
)

func TestExamStatusAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := time.Date(2026, 3, 1, 11, 0, 0, 0, time.UTC)
	exam := &Exam{StartAt: start, FinishAt: finish}

	tests := []struct {
		name string
		now  time.Time
		want ExamStatus
	}{
		{"before start", start.Add(-time.Hour), ExamUpcoming},
		{"exactly at start", start, ExamOngoing},
		{"between start and finish", start.Add(time.Hour), ExamOngoing},
		{"exactly at finish", finish, ExamFinished},
		{"after finish", finish.Add(time.Minute), ExamFinished},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := exam.StatusAt(tt.now); got != tt.want {
				t.Errorf("StatusAt(%v) = %v, want %v", tt.now, got, tt.want)
			}
		})
	}
}

func TestExamIsOngoingAt(t *testing.T) {
	start := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	finish := start.Add(2 * time.Hour)
	exam := &Exam{StartAt: start, FinishAt: finish}

	if exam.IsOngoingAt(start.Add(-time.Second)) {
		t.Error("exam should not be ongoing before start")
	}
	if !exam.IsOngoingAt(start.Add(time.Minute)) {
		t.Error("exam should be ongoing after start")
	}
	if exam.IsOngoingAt(finish) {
		t.Error("exam should not be ongoing at finish time")
	}
}
