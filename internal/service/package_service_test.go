package service

import (
	"examroom_backend/internal/model"
	"testing"
)

func TestDefaultPackageInfo(t *testing.T) {
	info := defaultPackageInfo("ghost")

	if info.ID != "ghost" {
		t.Errorf("ID = %q, want ghost", info.ID)
	}
	if info.Label != "No label" {
		t.Errorf("Label = %q, want \"No label\"", info.Label)
	}
	if info.MaxParticipant != 0 || info.MaxQuestion != 0 || info.Price != 0 || info.FreeQuota != 0 {
		t.Errorf("default package must have zero capacities, got %+v", info)
	}
}

func TestMergePackage(t *testing.T) {
	base := defaultPackageInfo("basic")

	t.Run("nil stored keeps default", func(t *testing.T) {
		got := mergePackage(base, nil)
		if got != base {
			t.Errorf("mergePackage(base, nil) = %+v, want %+v", got, base)
		}
	})

	t.Run("stored overrides default", func(t *testing.T) {
		stored := &model.Package{
			ID:             "basic",
			Label:          "Basic",
			MaxParticipant: 40,
			MaxQuestion:    50,
			Price:          49000,
			FreeQuota:      5,
		}
		got := mergePackage(base, stored)
		if got.Label != "Basic" || got.MaxParticipant != 40 || got.MaxQuestion != 50 {
			t.Errorf("mergePackage did not take stored values: %+v", got)
		}
	})

	t.Run("empty stored label keeps default label", func(t *testing.T) {
		stored := &model.Package{ID: "basic", MaxParticipant: 40}
		got := mergePackage(base, stored)
		if got.Label != "No label" {
			t.Errorf("Label = %q, want default kept", got.Label)
		}
		if got.MaxParticipant != 40 {
			t.Errorf("MaxParticipant = %d, want 40", got.MaxParticipant)
		}
	})
}
