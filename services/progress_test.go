package services

import (
	"encoding/json"
	"reflect"
	"testing"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

func TestDayGap(t *testing.T) {
	tests := []struct {
		name string
		from string
		to   string
		want int
	}{
		{"same day", "2024-03-10", "2024-03-10", 0},
		{"consecutive days", "2024-03-09", "2024-03-10", 1},
		{"two day gap", "2024-03-08", "2024-03-10", 2},
		{"across month boundary", "2024-02-29", "2024-03-01", 1},
		{"across year boundary", "2023-12-31", "2024-01-01", 1},
		{"empty from", "", "2024-03-10", -1},
		{"garbage from", "not-a-date", "2024-03-10", -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dayGap(tt.from, tt.to); got != tt.want {
				t.Errorf("dayGap(%q, %q) = %d, want %d", tt.from, tt.to, got, tt.want)
			}
		})
	}
}

func TestEvaluateStreak(t *testing.T) {
	tests := []struct {
		name        string
		current     int
		longest     int
		last        string
		today       string
		wantCurrent int
		wantLongest int
	}{
		{"first ever completion", 0, 0, "", "2024-03-10", 1, 1},
		{"consecutive day extends", 3, 5, "2024-03-09", "2024-03-10", 4, 5},
		{"extension breaks record", 5, 5, "2024-03-09", "2024-03-10", 6, 6},
		{"same day leaves streak alone", 2, 4, "2024-03-10", "2024-03-10", 2, 4},
		{"missed a day resets to one", 9, 9, "2024-03-07", "2024-03-10", 1, 9},
		{"longest survives a reset", 1, 30, "2024-01-01", "2024-03-10", 1, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			current, longest := evaluateStreak(tt.current, tt.longest, tt.last, tt.today)
			if current != tt.wantCurrent || longest != tt.wantLongest {
				t.Errorf("evaluateStreak() = (%d, %d), want (%d, %d)",
					current, longest, tt.wantCurrent, tt.wantLongest)
			}
		})
	}
}

func TestEvaluateStreakLongestNeverDecreases(t *testing.T) {
	longest := 10
	for _, last := range []string{"", "2024-03-01", "2024-03-09", "2024-03-10"} {
		_, got := evaluateStreak(1, longest, last, "2024-03-10")
		if got < longest {
			t.Errorf("longest decreased from %d to %d with last=%q", longest, got, last)
		}
	}
}

func TestEvaluateAchievementsFirstSession(t *testing.T) {
	doc := zeroDocument()
	doc.TotalQuizzes = 1
	doc.PerfectScores = 1
	doc.CurrentStreak = 1
	doc.TotalXPEarned = 120

	unlocked := evaluateAchievements(&doc)

	want := map[string]bool{"first_steps": true, "first_perfect": true}
	for _, id := range unlocked {
		if !want[id] {
			t.Errorf("unexpected unlock: %s", id)
		}
		delete(want, id)
	}
	for id := range want {
		t.Errorf("expected unlock missing: %s", id)
	}
}

func TestEvaluateAchievementsIdempotent(t *testing.T) {
	doc := zeroDocument()
	doc.TotalQuizzes = 12
	doc.CurrentStreak = 8
	doc.TotalXPEarned = 1500

	first := evaluateAchievements(&doc)
	if len(first) == 0 {
		t.Fatal("expected at least one unlock")
	}

	doc.Achievements = append(doc.Achievements, first...)
	if again := evaluateAchievements(&doc); len(again) != 0 {
		t.Errorf("re-evaluation unlocked %v again", again)
	}
}

func TestEvaluateAchievementsCategoryMastery(t *testing.T) {
	doc := zeroDocument()
	doc.TotalQuizzes = 5
	doc.Achievements = []string{"first_steps"}
	doc.CategoryStats[shared.CategoryChakras] = dto.CategoryStat{Correct: 20, Total: 25}
	doc.CategoryStats[shared.CategoryCrystals] = dto.CategoryStat{Correct: 19, Total: 30}

	unlocked := evaluateAchievements(&doc)

	found := false
	for _, id := range unlocked {
		if id == "chakra_adept" {
			found = true
		}
		if id == "crystal_keeper" {
			t.Error("crystal_keeper unlocked below its threshold")
		}
	}
	if !found {
		t.Error("chakra_adept not unlocked at 20 correct")
	}
}

func TestCalculateLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 1},
		{99, 1},
		{100, 2},
		{249, 2},
		{250, 3},
		{474, 3},
		{475, 4},
	}

	for _, tt := range tests {
		if got := calculateLevel(tt.xp); got != tt.want {
			t.Errorf("calculateLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestXPToNextLevel(t *testing.T) {
	tests := []struct {
		xp   int
		want int
	}{
		{0, 100},
		{40, 60},
		{100, 150},
		{250, 225},
	}

	for _, tt := range tests {
		if got := xpToNextLevel(tt.xp); got != tt.want {
			t.Errorf("xpToNextLevel(%d) = %d, want %d", tt.xp, got, tt.want)
		}
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	progress := &model.UserProgress{
		UserID:            "u1",
		TotalQuizzes:      7,
		PerfectScores:     2,
		TotalXPEarned:     444,
		CurrentStreak:     3,
		LongestStreak:     5,
		LastCompletedDate: "2024-03-10",
		CategoryStats:     json.RawMessage(`{"Chakras & Energy":{"correct":9,"total":12}}`),
		Achievements:      json.RawMessage(`["first_steps"]`),
		SoundEnabled:      true,
		MusicEnabled:      false,
	}

	doc := toDocument(progress)

	if doc.TotalQuizzes != 7 || doc.CurrentStreak != 3 || doc.LongestStreak != 5 {
		t.Errorf("counters lost in conversion: %+v", doc)
	}
	if doc.LastCompletedDate == nil || *doc.LastCompletedDate != "2024-03-10" {
		t.Error("last completed date lost in conversion")
	}
	if doc.CategoryStats[shared.CategoryChakras].Correct != 9 {
		t.Errorf("category stats lost: %+v", doc.CategoryStats)
	}
	if !reflect.DeepEqual(doc.Achievements, []string{"first_steps"}) {
		t.Errorf("achievements lost: %v", doc.Achievements)
	}
	if doc.Settings.MusicEnabled {
		t.Error("music setting lost in conversion")
	}

	restored := &model.UserProgress{UserID: "u1"}
	if err := applyDocument(restored, &doc); err != nil {
		t.Fatalf("applyDocument: %v", err)
	}
	if restored.TotalXPEarned != 444 || restored.LastCompletedDate != "2024-03-10" {
		t.Errorf("round trip lost fields: %+v", restored)
	}
}

func TestToDocumentCorruptJSON(t *testing.T) {
	progress := &model.UserProgress{
		UserID:        "u1",
		CategoryStats: json.RawMessage(`{broken`),
		Achievements:  json.RawMessage(`[broken`),
	}

	doc := toDocument(progress)

	if doc.CategoryStats == nil || len(doc.CategoryStats) != 0 {
		t.Errorf("corrupt stats should reset to empty map, got %v", doc.CategoryStats)
	}
	if doc.Achievements == nil || len(doc.Achievements) != 0 {
		t.Errorf("corrupt achievements should reset to empty list, got %v", doc.Achievements)
	}
}

func TestFoldCompletionFirstSession(t *testing.T) {
	doc := zeroDocument()
	summary := &CompletionSummary{
		DateKey:      "2026-03-01",
		Score:        105,
		CorrectCount: 4,
		Total:        5,
		CategoryResults: map[string]dto.CategoryStat{
			shared.CategoryChakras: {Correct: 2, Total: 2},
		},
	}

	unlocked := foldCompletion(&doc, summary, func(ids []string) int { return 0 })

	if doc.TotalQuizzes != 1 || doc.TotalXPEarned != 105 {
		t.Errorf("counters = (%d quizzes, %d xp), want (1, 105)", doc.TotalQuizzes, doc.TotalXPEarned)
	}
	if doc.CurrentStreak != 1 || doc.LongestStreak != 1 {
		t.Errorf("streak = (%d, %d), want (1, 1)", doc.CurrentStreak, doc.LongestStreak)
	}
	if doc.LastCompletedDate == nil || *doc.LastCompletedDate != "2026-03-01" {
		t.Errorf("LastCompletedDate = %v, want 2026-03-01", doc.LastCompletedDate)
	}
	if stat := doc.CategoryStats[shared.CategoryChakras]; stat.Correct != 2 || stat.Total != 2 {
		t.Errorf("category stat = %+v, want {2 2}", stat)
	}
	if !reflect.DeepEqual(unlocked, []string{"first_steps"}) {
		t.Errorf("unlocked = %v, want [first_steps]", unlocked)
	}
}

func TestFoldCompletionRewardCascade(t *testing.T) {
	doc := zeroDocument()
	doc.TotalXPEarned = 900

	summary := &CompletionSummary{DateKey: "2026-03-01", Score: 50}

	// A 200 XP reward for first_steps pushes the total past 1000, so xp_1000
	// must unlock on the re-check within the same completion.
	unlocked := foldCompletion(&doc, summary, func(ids []string) int { return 200 * len(ids) })

	if !reflect.DeepEqual(unlocked, []string{"first_steps", "xp_1000"}) {
		t.Errorf("unlocked = %v, want [first_steps xp_1000]", unlocked)
	}
	if doc.TotalXPEarned != 1350 {
		t.Errorf("TotalXPEarned = %d, want 1350", doc.TotalXPEarned)
	}
	if !reflect.DeepEqual(doc.Achievements, []string{"first_steps", "xp_1000"}) {
		t.Errorf("Achievements = %v, want both ids recorded", doc.Achievements)
	}
}

func TestFoldCompletionNoNewUnlocks(t *testing.T) {
	last := "2026-02-28"
	doc := zeroDocument()
	doc.TotalQuizzes = 3
	doc.CurrentStreak = 2
	doc.LongestStreak = 5
	doc.LastCompletedDate = &last
	doc.Achievements = []string{"first_steps"}

	summary := &CompletionSummary{DateKey: "2026-03-01", Score: 40}

	unlocked := foldCompletion(&doc, summary, func(ids []string) int {
		if len(ids) > 0 {
			t.Errorf("grant called with %v, want nothing", ids)
		}
		return 0
	})

	if unlocked == nil || len(unlocked) != 0 {
		t.Errorf("unlocked = %#v, want empty non-nil slice", unlocked)
	}
	if doc.CurrentStreak != 3 || doc.LongestStreak != 5 {
		t.Errorf("streak = (%d, %d), want (3, 5)", doc.CurrentStreak, doc.LongestStreak)
	}
}
