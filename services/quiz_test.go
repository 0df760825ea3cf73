package services

import (
	"net/http"
	"testing"
	"time"

	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

func TestBasePoints(t *testing.T) {
	tests := []struct {
		difficulty string
		want       int
	}{
		{shared.DifficultyEasy, 10},
		{shared.DifficultyMedium, 20},
		{shared.DifficultyHard, 30},
		{"unknown", 0},
		{"", 0},
	}

	for _, tt := range tests {
		if got := basePoints(tt.difficulty); got != tt.want {
			t.Errorf("basePoints(%q) = %d, want %d", tt.difficulty, got, tt.want)
		}
	}
}

func TestSpeedBonus(t *testing.T) {
	const threshold = 10000
	const maxBonus = 10

	tests := []struct {
		name      string
		elapsedMs int
		want      int
	}{
		{"instant answer earns full bonus", 0, 10},
		{"at threshold earns nothing", 10000, 0},
		{"past threshold earns nothing", 25000, 0},
		{"halfway earns half", 5000, 5},
		{"three quarters remaining rounds up", 2500, 8},
		{"just under threshold rounds to zero", 9999, 0},
		{"one quarter remaining rounds down", 7400, 3},
		{"negative elapsed earns nothing", -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := speedBonus(tt.elapsedMs, threshold, maxBonus); got != tt.want {
				t.Errorf("speedBonus(%d) = %d, want %d", tt.elapsedMs, got, tt.want)
			}
		})
	}
}

func TestTallyAnswers(t *testing.T) {
	tests := []struct {
		name        string
		correct     []bool
		wantCorrect int
		wantPerfect bool
	}{
		{"all correct is perfect", []bool{true, true, true}, 3, true},
		{"one timeout forfeits perfect", []bool{true, false, true}, 2, false},
		{"all wrong", []bool{false, false, false}, 0, false},
		{"empty session is not perfect", nil, 0, false},
		{"single correct answer", []bool{true}, 1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var answers []model.AnswerRecord
			for _, c := range tt.correct {
				answers = append(answers, model.AnswerRecord{Correct: c})
			}

			correct, perfect := tallyAnswers(answers)
			if correct != tt.wantCorrect || perfect != tt.wantPerfect {
				t.Errorf("tallyAnswers() = (%d, %v), want (%d, %v)",
					correct, perfect, tt.wantCorrect, tt.wantPerfect)
			}
		})
	}
}

func TestScoringCombined(t *testing.T) {
	// A correct hard answer at 4000ms: 30 base plus round(10*6000/10000) = 6.
	points := basePoints(shared.DifficultyHard) + speedBonus(4000, 10000, 10)
	if points != 36 {
		t.Errorf("hard answer at 4000ms scored %d, want 36", points)
	}

	// A correct easy answer slower than the threshold earns base only.
	points = basePoints(shared.DifficultyEasy) + speedBonus(15000, 10000, 10)
	if points != 10 {
		t.Errorf("slow easy answer scored %d, want 10", points)
	}
}

func TestGradeAnswer(t *testing.T) {
	config := DefaultChallengeConfig()
	question := &model.Question{ID: "chakras-003", Difficulty: shared.DifficultyHard, CorrectIndex: 2}
	now := time.Now()

	tests := []struct {
		name          string
		selectedIndex int
		elapsedMs     int
		servedAt      time.Time
		wantIndex     int
		wantCorrect   bool
		wantElapsed   int
		wantPoints    int
	}{
		{"correct in time earns base and bonus", 2, 4000, now.Add(-5 * time.Second), 2, true, 4000, 36},
		{"wrong choice earns nothing", 0, 4000, now.Add(-5 * time.Second), 0, false, 4000, 0},
		{"late answer is forced to a timeout", 2, 4000, now.Add(-40 * time.Second), -1, false, 30000, 0},
		{"just past the grace window is late", 2, 4000, now.Add(-33 * time.Second), -1, false, 30000, 0},
		{"inside the grace window still counts", 2, 4000, now.Add(-31 * time.Second), 2, true, 4000, 36},
		{"explicit skip is a timeout", -1, 2000, now.Add(-5 * time.Second), -1, false, 30000, 0},
		{"client elapsed is clamped to the timer", 2, 90000, now.Add(-5 * time.Second), 2, true, 30000, 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			record := gradeAnswer(question, tt.selectedIndex, tt.elapsedMs, tt.servedAt, now, config)

			if record.QuestionID != question.ID {
				t.Errorf("QuestionID = %q, want %q", record.QuestionID, question.ID)
			}
			if record.SelectedIndex != tt.wantIndex {
				t.Errorf("SelectedIndex = %d, want %d", record.SelectedIndex, tt.wantIndex)
			}
			if record.Correct != tt.wantCorrect {
				t.Errorf("Correct = %v, want %v", record.Correct, tt.wantCorrect)
			}
			if record.ElapsedMs != tt.wantElapsed {
				t.Errorf("ElapsedMs = %d, want %d", record.ElapsedMs, tt.wantElapsed)
			}
			if record.PointsEarned != tt.wantPoints {
				t.Errorf("PointsEarned = %d, want %d", record.PointsEarned, tt.wantPoints)
			}
		})
	}
}

func TestExpectedQuestion(t *testing.T) {
	ids := []string{"q1", "q2", "q3"}

	if err := expectedQuestion(ids, 1, "q2"); err != nil {
		t.Errorf("in-order answer rejected: %v", err)
	}

	err := expectedQuestion(ids, 1, "q3")
	if err == nil {
		t.Fatal("out-of-order answer accepted")
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("out-of-order answer error = %v, want bad request", err)
	}

	err = expectedQuestion(ids, 3, "q1")
	if err == nil {
		t.Fatal("exhausted session accepted an answer")
	}
	if appErr, ok := shared.GetAppError(err); !ok || appErr.StatusCode != http.StatusConflict {
		t.Errorf("exhausted session error = %v, want conflict", err)
	}
}
