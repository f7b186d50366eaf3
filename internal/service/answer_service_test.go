package service

import (
	"encoding/json"
	"examroom_backend/internal/model"
	"reflect"
	"testing"
)

func items(pairs ...string) []model.AnswerItem {
	out := make([]model.AnswerItem, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, model.AnswerItem{QuestionID: pairs[i], Response: pairs[i+1]})
	}
	return out
}

func TestMergeAnswerItems(t *testing.T) {
	tests := []struct {
		name     string
		existing []model.AnswerItem
		incoming []model.AnswerItem
		want     []model.AnswerItem
	}{
		{
			name:     "append to empty",
			existing: nil,
			incoming: items("q1", "a"),
			want:     items("q1", "a"),
		},
		{
			name:     "replace existing keeps position",
			existing: items("q1", "a", "q2", "b"),
			incoming: items("q1", "c"),
			want:     items("q1", "c", "q2", "b"),
		},
		{
			name:     "new question appended at end",
			existing: items("q1", "a"),
			incoming: items("q3", "d"),
			want:     items("q1", "a", "q3", "d"),
		},
		{
			name:     "mixed replace and append",
			existing: items("q1", "a", "q2", "b"),
			incoming: items("q2", "x", "q3", "y"),
			want:     items("q1", "a", "q2", "x", "q3", "y"),
		},
		{
			name:     "later duplicate in same batch wins",
			existing: nil,
			incoming: items("q1", "a", "q1", "b"),
			want:     items("q1", "b"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := mergeAnswerItems(tt.existing, tt.incoming)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("mergeAnswerItems() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestMergeAnswerItemsIdempotent(t *testing.T) {
	existing := items("q1", "a", "q2", "b")
	incoming := items("q2", "x")

	once := mergeAnswerItems(existing, incoming)
	twice := mergeAnswerItems(once, incoming)

	if !reflect.DeepEqual(once, twice) {
		t.Errorf("repeated merge changed result: %v vs %v", once, twice)
	}
}

func TestMergeAnswerItemsDoesNotMutateExisting(t *testing.T) {
	existing := items("q1", "a")
	_ = mergeAnswerItems(existing, items("q1", "changed"))

	if existing[0].Response != "a" {
		t.Error("merge mutated the existing slice")
	}
}

func TestParseSummary(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"empty stays empty", "", ""},
		{"valid object kept as is", `{"spent":30}`, `{"spent":30}`},
		{"valid array kept as is", `[1,2]`, `[1,2]`},
		{"plain text quoted", `hello`, `"hello"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseSummary(tt.in)
			if string(got) != tt.want {
				t.Errorf("parseSummary(%q) = %s, want %s", tt.in, got, tt.want)
			}
		})
	}
}

func TestSummaryRoundTrip(t *testing.T) {
	raw := `{"timeSpent":42,"flags":["review"]}`
	parsed := parseSummary(raw)
	if !json.Valid(parsed) {
		t.Fatal("parsed summary is not valid JSON")
	}
	if renderSummary(parsed) != raw {
		t.Errorf("round trip changed summary: %s", renderSummary(parsed))
	}
	if renderSummary(nil) != "" {
		t.Error("nil summary should render as empty string")
	}
}

func TestSummarize(t *testing.T) {
	questions := []model.Question{
		{UUIDBase: model.UUIDBase{ID: "q1"}, Order: 1},
		{UUIDBase: model.UUIDBase{ID: "q2"}, Order: 2},
		{UUIDBase: model.UUIDBase{ID: "q3"}, Order: 3},
	}
	answers := []model.AnswerItem{
		{QuestionID: "q1", Response: "a"},
		{QuestionID: "q2", Response: "d"},
	}

	result := summarize(questions, answers)

	if result.Total != 3 {
		t.Errorf("Total = %d, want 3", result.Total)
	}
	if result.Answered != 2 {
		t.Errorf("Answered = %d, want 2", result.Answered)
	}
	if !result.Questions[0].Answered || result.Questions[0].Response != "a" {
		t.Errorf("q1 = %+v, want answered with response a", result.Questions[0])
	}
	if result.Questions[2].Answered || result.Questions[2].Response != "" {
		t.Errorf("unanswered q3 = %+v, want empty", result.Questions[2])
	}
	if result.Questions[1].Order != 2 {
		t.Errorf("order preserved from question list, got %d", result.Questions[1].Order)
	}
}
