// services/challenge.go
package services

import (
	goContext "context"
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

// ChallengeService builds the daily question set. Selection is a pure
// function of the date key and the active bank, so every request for the
// same day sees the same questions in the same order; redis and the
// daily_challenges table only memoize the result.
type ChallengeService struct {
	context.DefaultService

	sqlSvc   *PostgresService
	redisSvc *RedisService

	config ChallengeConfig
}

type ChallengeConfig struct {
	Slots            []DifficultySlot
	TimerSeconds     int
	SpeedThresholdMs int
	MaxSpeedBonus    int
	PerfectBonus     int
}

type DifficultySlot struct {
	Difficulty string
	Count      int
}

const CHALLENGE_SVC = "challenge_svc"

const dailyCacheTTL = 48 * time.Hour

func (svc ChallengeService) Id() string {
	return CHALLENGE_SVC
}

func DefaultChallengeConfig() ChallengeConfig {
	return ChallengeConfig{
		Slots: []DifficultySlot{
			{Difficulty: shared.DifficultyEasy, Count: 2},
			{Difficulty: shared.DifficultyMedium, Count: 2},
			{Difficulty: shared.DifficultyHard, Count: 1},
		},
		TimerSeconds:     30,
		SpeedThresholdMs: 10000,
		MaxSpeedBonus:    10,
		PerfectBonus:     25,
	}
}

func (svc *ChallengeService) Configure(ctx *context.Context) error {
	svc.config = DefaultChallengeConfig()

	if v := os.Getenv("DAILY_QUESTION_TIMER_SECONDS"); v != "" {
		if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
			svc.config.TimerSeconds = secs
		}
	}

	return svc.DefaultService.Configure(ctx)
}

func (svc *ChallengeService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	return nil
}

func (svc *ChallengeService) Config() ChallengeConfig {
	return svc.config
}

// TodayKey returns the current UTC calendar date key.
func TodayKey() string {
	return time.Now().UTC().Format(shared.DateKeyLayout)
}

// ==================== DETERMINISTIC SHUFFLE ====================

// dateKeySeed hashes a date key into a shuffle seed: hash = hash*31 + byte
// with 32-bit wraparound, then absolute value. Stability across runs is the
// only requirement; collisions are harmless.
func dateKeySeed(dateKey string) int {
	var h int32
	for _, b := range []byte(dateKey) {
		h = h*31 + int32(b)
	}
	if h < 0 {
		h = -h
	}
	return int(h)
}

// seededRand is the fixed linear-congruential generator used for daily
// shuffles. The constants are part of the selection contract: changing them
// changes every historical day's challenge.
type seededRand struct {
	seed int
}

func (r *seededRand) next() float64 {
	r.seed = (r.seed*9301 + 49297) % 233280
	return float64(r.seed) / 233280
}

// shuffleQuestions returns a Fisher-Yates permutation of items driven by the
// seeded generator. The input slice is not modified.
func shuffleQuestions(items []model.Question, seed int) []model.Question {
	out := make([]model.Question, len(items))
	copy(out, items)

	r := &seededRand{seed: seed}
	for i := len(out) - 1; i > 0; i-- {
		j := int(r.next() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}

	return out
}

// ==================== DAILY SELECTION ====================

// selectDaily picks the day's questions from the bank: shuffle with the date
// seed, fill each difficulty slot in order with the first unused matches,
// then top up from the remaining shuffled order when a difficulty tier is
// exhausted. Membership is tracked by id so the fallback pass can never
// duplicate an entry. A bank smaller than the target yields a short result.
func selectDaily(bank []model.Question, dateKey string, slots []DifficultySlot) []model.Question {
	shuffled := shuffleQuestions(bank, dateKeySeed(dateKey))

	target := 0
	for _, slot := range slots {
		target += slot.Count
	}

	picked := make([]model.Question, 0, target)
	used := make(map[string]bool, target)

	for _, slot := range slots {
		taken := 0
		for _, q := range shuffled {
			if taken == slot.Count {
				break
			}
			if used[q.ID] || q.Difficulty != slot.Difficulty {
				continue
			}
			picked = append(picked, q)
			used[q.ID] = true
			taken++
		}
	}

	for _, q := range shuffled {
		if len(picked) == target {
			break
		}
		if used[q.ID] {
			continue
		}
		picked = append(picked, q)
		used[q.ID] = true
	}

	return picked
}

// ==================== CHALLENGE ACCESS ====================

func (svc *ChallengeService) dailyCacheKey(dateKey string) string {
	return fmt.Sprintf("daily:%s", dateKey)
}

// GetDailyQuestions resolves the question set for a date key, memoizing the
// chosen ids in redis and the daily_challenges table.
func (svc *ChallengeService) GetDailyQuestions(dateKey string) ([]model.Question, error) {
	ctx := goContext.Background()

	var cachedIDs []string
	if err := svc.redisSvc.GetJSON(ctx, svc.dailyCacheKey(dateKey), &cachedIDs); err != nil {
		log.WithError(err).WithField("date_key", dateKey).Warn("Daily challenge cache read failed")
	}

	if len(cachedIDs) == 0 {
		if stored, err := svc.sqlSvc.GetDailyChallenge(dateKey); err == nil {
			if err := json.Unmarshal(stored.QuestionIDs, &cachedIDs); err != nil {
				log.WithError(err).WithField("date_key", dateKey).Warn("Stored daily selection is corrupt")
				cachedIDs = nil
			}
		}
	}

	if len(cachedIDs) > 0 {
		questions, err := svc.resolveInOrder(cachedIDs)
		if err == nil && len(questions) == len(cachedIDs) {
			return questions, nil
		}
		log.WithField("date_key", dateKey).Warn("Cached daily selection is stale, recomputing")
	}

	bank, err := svc.sqlSvc.GetActiveQuestions()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load question bank")
	}

	selected := selectDaily(bank, dateKey, svc.config.Slots)
	if len(selected) == 0 {
		return nil, shared.NewServiceUnavailableError(
			fmt.Errorf("question bank is empty"), "No questions available today")
	}

	ids := make([]string, len(selected))
	for i, q := range selected {
		ids[i] = q.ID
	}

	if err := svc.persistSelection(dateKey, ids); err != nil {
		log.WithError(err).WithField("date_key", dateKey).Warn("Failed to persist daily selection")
	}

	if err := svc.redisSvc.Set(ctx, svc.dailyCacheKey(dateKey), ids, dailyCacheTTL); err != nil {
		log.WithError(err).WithField("date_key", dateKey).Warn("Failed to cache daily selection")
	}

	return selected, nil
}

func (svc *ChallengeService) persistSelection(dateKey string, ids []string) error {
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return err
	}

	challengeID, _ := uuid.NewV7()
	return svc.sqlSvc.SaveDailyChallenge(&model.DailyChallenge{
		ID:          challengeID.String(),
		DateKey:     dateKey,
		QuestionIDs: idsJSON,
		CreatedAt:   time.Now(),
	})
}

// resolveInOrder fetches questions by id preserving the given order.
func (svc *ChallengeService) resolveInOrder(ids []string) ([]model.Question, error) {
	questions, err := svc.sqlSvc.GetQuestionsByIDs(ids)
	if err != nil {
		return nil, err
	}

	byID := make(map[string]model.Question, len(questions))
	for _, q := range questions {
		byID[q.ID] = q
	}

	ordered := make([]model.Question, 0, len(ids))
	for _, id := range ids {
		if q, ok := byID[id]; ok {
			ordered = append(ordered, q)
		}
	}

	return ordered, nil
}

// GetDailyChallenge maps the day's questions into the client payload,
// marking whether the user already finished today.
func (svc *ChallengeService) GetDailyChallenge(dateKey string, completed bool) (*dto.DailyChallengeResponse, error) {
	questions, err := svc.GetDailyQuestions(dateKey)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.QuestionResponse, len(questions))
	for i, q := range questions {
		responses[i] = mapQuestionToResponse(&q)
	}

	return &dto.DailyChallengeResponse{
		DateKey:      dateKey,
		Questions:    responses,
		TimerSeconds: svc.config.TimerSeconds,
		Completed:    completed,
	}, nil
}

func mapQuestionToResponse(q *model.Question) dto.QuestionResponse {
	var choices []string
	if q.Choices != nil {
		if err := json.Unmarshal(q.Choices, &choices); err != nil {
			log.Printf("Failed to unmarshal choices for question %s: %v", q.ID, err)
			choices = []string{}
		}
	}

	return dto.QuestionResponse{
		ID:         q.ID,
		Category:   q.Category,
		Difficulty: q.Difficulty,
		Prompt:     q.Prompt,
		Choices:    choices,
	}
}
