package services

import (
	"fmt"
	"testing"

	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

func TestSeededRandSequence(t *testing.T) {
	r := &seededRand{seed: 1}

	r.next()
	if r.seed != 58598 {
		t.Errorf("after first step seed = %d, want 58598", r.seed)
	}

	r.next()
	if r.seed != 127215 {
		t.Errorf("after second step seed = %d, want 127215", r.seed)
	}
}

func TestSeededRandRange(t *testing.T) {
	r := &seededRand{seed: dateKeySeed("2024-01-01")}
	for i := 0; i < 1000; i++ {
		v := r.next()
		if v < 0 || v >= 1 {
			t.Fatalf("value %d out of range [0,1): %f", i, v)
		}
	}
}

func TestDateKeySeed(t *testing.T) {
	a := dateKeySeed("2024-01-01")
	b := dateKeySeed("2024-01-01")
	c := dateKeySeed("2024-01-02")

	if a != b {
		t.Errorf("same key produced different seeds: %d vs %d", a, b)
	}
	if a == c {
		t.Errorf("different keys produced the same seed: %d", a)
	}
	if a < 0 {
		t.Errorf("seed is negative: %d", a)
	}
}

func makeBank(easy, medium, hard int) []model.Question {
	var bank []model.Question
	add := func(difficulty string, n int) {
		for i := 0; i < n; i++ {
			bank = append(bank, model.Question{
				ID:         fmt.Sprintf("%s-%03d", difficulty, i),
				Difficulty: difficulty,
			})
		}
	}
	add(shared.DifficultyEasy, easy)
	add(shared.DifficultyMedium, medium)
	add(shared.DifficultyHard, hard)
	return bank
}

func questionIDs(questions []model.Question) []string {
	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	return ids
}

func TestShuffleQuestionsDeterministic(t *testing.T) {
	bank := makeBank(4, 3, 3)
	seed := dateKeySeed("2024-01-01")

	first := shuffleQuestions(bank, seed)
	second := shuffleQuestions(bank, seed)

	if len(first) != len(bank) {
		t.Fatalf("shuffle changed length: %d != %d", len(first), len(bank))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same seed produced different orders at %d: %s vs %s",
				i, first[i].ID, second[i].ID)
		}
	}
}

func TestShuffleQuestionsIsPermutation(t *testing.T) {
	bank := makeBank(4, 3, 3)
	shuffled := shuffleQuestions(bank, dateKeySeed("2024-06-15"))

	seen := map[string]bool{}
	for _, q := range shuffled {
		if seen[q.ID] {
			t.Fatalf("duplicate id in shuffle: %s", q.ID)
		}
		seen[q.ID] = true
	}
	for _, q := range bank {
		if !seen[q.ID] {
			t.Errorf("id missing from shuffle: %s", q.ID)
		}
	}
}

func TestShuffleQuestionsDoesNotMutateInput(t *testing.T) {
	bank := makeBank(4, 3, 3)
	original := questionIDs(bank)

	shuffleQuestions(bank, dateKeySeed("2024-01-01"))

	for i, q := range bank {
		if q.ID != original[i] {
			t.Fatalf("input mutated at %d: %s != %s", i, q.ID, original[i])
		}
	}
}

func defaultSlots() []DifficultySlot {
	return []DifficultySlot{
		{Difficulty: shared.DifficultyEasy, Count: 2},
		{Difficulty: shared.DifficultyMedium, Count: 2},
		{Difficulty: shared.DifficultyHard, Count: 1},
	}
}

func TestSelectDailyFillsSlots(t *testing.T) {
	bank := makeBank(4, 3, 3)

	selected := selectDaily(bank, "2024-01-01", defaultSlots())

	if len(selected) != 5 {
		t.Fatalf("selected %d questions, want 5", len(selected))
	}

	counts := map[string]int{}
	seen := map[string]bool{}
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate question selected: %s", q.ID)
		}
		seen[q.ID] = true
		counts[q.Difficulty]++
	}

	if counts[shared.DifficultyEasy] != 2 {
		t.Errorf("easy count = %d, want 2", counts[shared.DifficultyEasy])
	}
	if counts[shared.DifficultyMedium] != 2 {
		t.Errorf("medium count = %d, want 2", counts[shared.DifficultyMedium])
	}
	if counts[shared.DifficultyHard] != 1 {
		t.Errorf("hard count = %d, want 1", counts[shared.DifficultyHard])
	}
}

func TestSelectDailyDeterministic(t *testing.T) {
	bank := makeBank(10, 10, 10)

	first := selectDaily(bank, "2024-01-01", defaultSlots())
	second := selectDaily(bank, "2024-01-01", defaultSlots())

	if len(first) != len(second) {
		t.Fatalf("lengths differ: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i].ID != second[i].ID {
			t.Fatalf("same date produced different selections at %d: %s vs %s",
				i, first[i].ID, second[i].ID)
		}
	}
}

func TestSelectDailyDifferentDates(t *testing.T) {
	bank := makeBank(20, 20, 20)

	a := selectDaily(bank, "2024-01-01", defaultSlots())
	b := selectDaily(bank, "2024-01-02", defaultSlots())

	same := true
	for i := range a {
		if a[i].ID != b[i].ID {
			same = false
			break
		}
	}
	if same {
		t.Error("adjacent dates produced identical selections over a large bank")
	}
}

func TestSelectDailyFallbackWhenTierExhausted(t *testing.T) {
	// No hard questions at all: the hard slot falls back to other tiers
	// without introducing duplicates.
	bank := makeBank(4, 3, 0)

	selected := selectDaily(bank, "2024-01-01", defaultSlots())

	if len(selected) != 5 {
		t.Fatalf("selected %d questions, want 5", len(selected))
	}

	seen := map[string]bool{}
	for _, q := range selected {
		if seen[q.ID] {
			t.Fatalf("duplicate question selected: %s", q.ID)
		}
		seen[q.ID] = true
	}
}

func TestSelectDailyShortBank(t *testing.T) {
	bank := makeBank(1, 1, 1)

	selected := selectDaily(bank, "2024-01-01", defaultSlots())

	if len(selected) != 3 {
		t.Fatalf("selected %d questions from a bank of 3, want 3", len(selected))
	}
}

func TestSelectDailyEmptyBank(t *testing.T) {
	selected := selectDaily(nil, "2024-01-01", defaultSlots())
	if len(selected) != 0 {
		t.Fatalf("selected %d questions from an empty bank", len(selected))
	}
}
