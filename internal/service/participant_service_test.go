package service

import (
	"errors"
	"examroom_backend/internal/model"
	"examroom_backend/internal/util"
	"testing"
	"time"
)

func TestExamRoleCapabilities(t *testing.T) {
	tests := []struct {
		role          ExamRole
		canManage     bool
		canDelete     bool
		isParticipant bool
	}{
		{ExamRoleOwner, true, true, true},
		{ExamRoleAdmin, true, false, true},
		{ExamRoleStudent, false, false, true},
		{ExamRoleNone, false, false, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			if got := tt.role.CanManage(); got != tt.canManage {
				t.Errorf("CanManage() = %v, want %v", got, tt.canManage)
			}
			if got := tt.role.CanDelete(); got != tt.canDelete {
				t.Errorf("CanDelete() = %v, want %v", got, tt.canDelete)
			}
			if got := tt.role.IsParticipant(); got != tt.isParticipant {
				t.Errorf("IsParticipant() = %v, want %v", got, tt.isParticipant)
			}
		})
	}
}

func TestJoinGate(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	margin := 15 * time.Minute
	exam := &model.Exam{
		StartAt:  now.Add(-time.Hour),
		FinishAt: now.Add(time.Hour),
	}
	pkg := model.PackageInfo{MaxParticipant: 5}

	tests := []struct {
		name        string
		exam        *model.Exam
		existing    *model.Participant
		activeCount int64
		pkg         model.PackageInfo
		wantErr     error
	}{
		{
			name:        "open exam admits new participant",
			exam:        exam,
			activeCount: 2,
			pkg:         pkg,
			wantErr:     nil,
		},
		{
			name: "too close to finish",
			exam: &model.Exam{
				StartAt:  now.Add(-time.Hour),
				FinishAt: now.Add(10 * time.Minute),
			},
			activeCount: 0,
			pkg:         pkg,
			wantErr:     util.ErrExamClosed,
		},
		{
			name: "exactly at margin boundary rejected",
			exam: &model.Exam{
				StartAt:  now.Add(-time.Hour),
				FinishAt: now.Add(margin),
			},
			activeCount: 0,
			pkg:         pkg,
			wantErr:     util.ErrExamClosed,
		},
		{
			name:        "blocked beats already joined",
			exam:        exam,
			existing:    &model.Participant{IsBlocked: true},
			activeCount: 2,
			pkg:         pkg,
			wantErr:     util.ErrUserBlocked,
		},
		{
			name:        "already joined",
			exam:        exam,
			existing:    &model.Participant{},
			activeCount: 2,
			pkg:         pkg,
			wantErr:     util.ErrAlreadyJoined,
		},
		{
			name:        "capacity full",
			exam:        exam,
			activeCount: 5,
			pkg:         pkg,
			wantErr:     util.ErrCapacityExceeded,
		},
		{
			name:        "zero capacity default package rejects everyone",
			exam:        exam,
			activeCount: 0,
			pkg:         model.PackageInfo{},
			wantErr:     util.ErrCapacityExceeded,
		},
		{
			name: "closed exam rejected before capacity check",
			exam: &model.Exam{
				StartAt:  now.Add(-2 * time.Hour),
				FinishAt: now.Add(-time.Hour),
			},
			activeCount: 5,
			pkg:         pkg,
			wantErr:     util.ErrExamClosed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := joinGate(tt.exam, tt.existing, tt.activeCount, tt.pkg, now, margin)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("joinGate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestJoinGateZeroMargin(t *testing.T) {
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	exam := &model.Exam{
		StartAt:  now.Add(-time.Hour),
		FinishAt: now.Add(time.Second),
	}
	pkg := model.PackageInfo{MaxParticipant: 5}

	if err := joinGate(exam, nil, 0, pkg, now, 0); err != nil {
		t.Errorf("join just before finish with zero margin should pass, got %v", err)
	}
}
