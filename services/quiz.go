// services/quiz.go
package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

// QuizService runs the daily session state machine: one active session per
// user per day, answers accepted strictly in question order, one record per
// question. The server clock is authoritative for timeouts; the client's
// elapsed time only feeds the speed bonus and is clamped to the timer.
type QuizService struct {
	context.DefaultService

	sqlSvc       *PostgresService
	challengeSvc *ChallengeService
	contentSvc   *ContentService
	progressSvc  *ProgressService
	monitorSvc   *MonitoringService

	stopJanitor chan struct{}
}

const QUIZ_SVC = "quiz_svc"

// timeoutGrace absorbs network latency before the server rules an answer
// late on its own clock.
const timeoutGrace = 2 * time.Second

func (svc QuizService) Id() string {
	return QUIZ_SVC
}

func (svc *QuizService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.challengeSvc = svc.Service(CHALLENGE_SVC).(*ChallengeService)
	svc.contentSvc = svc.Service(CONTENT_SVC).(*ContentService)
	svc.progressSvc = svc.Service(PROGRESS_SVC).(*ProgressService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)

	svc.stopJanitor = make(chan struct{})
	go svc.janitorLoop()

	return nil
}

func (svc *QuizService) Shutdown() {
	if svc.stopJanitor != nil {
		close(svc.stopJanitor)
	}
}

func (svc *QuizService) janitorLoop() {
	svc.ExpireStaleSessions()

	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			svc.ExpireStaleSessions()
		case <-svc.stopJanitor:
			return
		}
	}
}

// ==================== SCORING ====================

func basePoints(difficulty string) int {
	switch difficulty {
	case shared.DifficultyEasy:
		return 10
	case shared.DifficultyMedium:
		return 20
	case shared.DifficultyHard:
		return 30
	default:
		return 0
	}
}

// speedBonus scales maxBonus linearly down to zero at thresholdMs. Only
// correct answers earn it; callers enforce that.
func speedBonus(elapsedMs, thresholdMs, maxBonus int) int {
	if elapsedMs >= thresholdMs || elapsedMs < 0 {
		return 0
	}
	return int(math.Round(float64(maxBonus) * float64(thresholdMs-elapsedMs) / float64(thresholdMs)))
}

// tallyAnswers counts correct records. A session is perfect only when every
// question was answered correctly, so a single timeout forfeits the bonus.
func tallyAnswers(answers []model.AnswerRecord) (correctCount int, perfect bool) {
	for _, record := range answers {
		if record.Correct {
			correctCount++
		}
	}
	return correctCount, correctCount == len(answers) && len(answers) > 0
}

// ==================== SESSION LIFECYCLE ====================

// StartSession begins or resumes today's session. A user who already
// completed today is refused; an active session from today is resumed at its
// current question with a fresh serve time.
func (svc *QuizService) StartSession(userID string) (*dto.StartSessionResponse, error) {
	dateKey := TodayKey()

	if svc.progressSvc.HasCompletedToday(userID, dateKey) {
		return nil, shared.NewConflictError(nil, "Today's challenge is already complete")
	}

	existing, err := svc.sqlSvc.GetActiveSession(userID, dateKey)
	if err == nil {
		return svc.resumeSession(existing)
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		// A transient lookup failure must not mint a second session for the day.
		return nil, shared.NewServiceUnavailableError(err, "Session store is unavailable")
	}

	questions, err := svc.challengeSvc.GetDailyQuestions(dateKey)
	if err != nil {
		return nil, err
	}

	ids := make([]string, len(questions))
	for i, q := range questions {
		ids[i] = q.ID
	}
	idsJSON, err := json.Marshal(ids)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode session questions")
	}

	now := time.Now()
	sessionID, _ := uuid.NewV7()
	session := &model.QuizSession{
		ID:               sessionID.String(),
		UserID:           userID,
		DateKey:          dateKey,
		QuestionIDs:      idsJSON,
		CurrentIndex:     0,
		Answers:          json.RawMessage("[]"),
		Score:            0,
		Status:           shared.SessionStatusActive,
		QuestionServedAt: now,
		StartedAt:        now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if _, err := svc.sqlSvc.CreateQuizSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to start session")
	}

	svc.monitorSvc.RecordSessionStarted()

	first := mapQuestionToResponse(&questions[0])
	return &dto.StartSessionResponse{
		SessionID:    session.ID,
		DateKey:      dateKey,
		Resumed:      false,
		CurrentIndex: 0,
		Total:        len(questions),
		Question:     &first,
		ServedAt:     now,
	}, nil
}

func (svc *QuizService) resumeSession(session *model.QuizSession) (*dto.StartSessionResponse, error) {
	ids, err := sessionQuestionIDs(session)
	if err != nil {
		return nil, err
	}

	session.QuestionServedAt = time.Now()
	if err := svc.sqlSvc.UpdateQuizSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to resume session")
	}

	resp := &dto.StartSessionResponse{
		SessionID:    session.ID,
		DateKey:      session.DateKey,
		Resumed:      true,
		CurrentIndex: session.CurrentIndex,
		Total:        len(ids),
		ServedAt:     session.QuestionServedAt,
	}

	if session.CurrentIndex < len(ids) {
		question, err := svc.contentSvc.GetQuestion(ids[session.CurrentIndex])
		if err != nil {
			return nil, err
		}
		mapped := mapQuestionToResponse(question)
		resp.Question = &mapped
	}

	return resp, nil
}

func sessionQuestionIDs(session *model.QuizSession) ([]string, error) {
	var ids []string
	if err := json.Unmarshal(session.QuestionIDs, &ids); err != nil {
		return nil, shared.NewInternalError(err, "Session question list is corrupt")
	}
	return ids, nil
}

func sessionAnswers(session *model.QuizSession) ([]model.AnswerRecord, error) {
	var answers []model.AnswerRecord
	if session.Answers != nil {
		if err := json.Unmarshal(session.Answers, &answers); err != nil {
			return nil, shared.NewInternalError(err, "Session answer list is corrupt")
		}
	}
	return answers, nil
}

// ==================== GRADING ====================

// expectedQuestion checks the submitted question id against the session's
// pending slot. Answers are accepted strictly in question order.
func expectedQuestion(ids []string, currentIndex int, questionID string) error {
	if currentIndex >= len(ids) {
		return shared.NewConflictError(nil, "Session has no pending question")
	}
	if questionID != ids[currentIndex] {
		return shared.NewBadRequestError(nil,
			fmt.Sprintf("Expected answer for question %d", currentIndex+1))
	}
	return nil
}

// gradeAnswer judges a submission on the server clock. Past the serve time
// plus timer and grace the answer is forced into a timeout: index -1, the
// full timer elapsed, no points. The client's elapsed time is clamped to the
// timer either way.
func gradeAnswer(question *model.Question, selectedIndex, elapsedMs int, servedAt, now time.Time, config ChallengeConfig) model.AnswerRecord {
	timerMs := config.TimerSeconds * 1000
	if elapsedMs > timerMs {
		elapsedMs = timerMs
	}

	deadline := servedAt.Add(time.Duration(config.TimerSeconds)*time.Second + timeoutGrace)
	if now.After(deadline) || selectedIndex < 0 {
		selectedIndex = -1
		elapsedMs = timerMs
	}

	correct := answerCorrect(question, selectedIndex)

	points := 0
	if correct {
		points = basePoints(question.Difficulty)
		if elapsedMs < config.SpeedThresholdMs {
			points += speedBonus(elapsedMs, config.SpeedThresholdMs, config.MaxSpeedBonus)
		}
	}

	return model.AnswerRecord{
		QuestionID:    question.ID,
		SelectedIndex: selectedIndex,
		Correct:       correct,
		ElapsedMs:     elapsedMs,
		PointsEarned:  points,
	}
}

// ==================== ANSWER SUBMISSION ====================

// SubmitAnswer grades the current question and advances the session. Every
// question produces exactly one record: a timed-out or skipped question is
// recorded as incorrect with no points, never dropped.
func (svc *QuizService) SubmitAnswer(userID string, req *dto.SubmitAnswerRequest) (*dto.AnswerResultResponse, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, dto.NewValidationError(err)
	}

	session, err := svc.sqlSvc.GetQuizSession(req.SessionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}
	if session.UserID != userID {
		return nil, shared.NewForbiddenError(nil, "Session belongs to another user")
	}
	if session.Status != shared.SessionStatusActive {
		return nil, shared.NewConflictError(nil, "Session is no longer active")
	}

	ids, err := sessionQuestionIDs(session)
	if err != nil {
		return nil, err
	}
	if err := expectedQuestion(ids, session.CurrentIndex, req.QuestionID); err != nil {
		return nil, err
	}

	question, err := svc.contentSvc.GetQuestion(req.QuestionID)
	if err != nil {
		return nil, err
	}

	record := gradeAnswer(question, req.SelectedIndex, req.ElapsedMs,
		session.QuestionServedAt, time.Now(), svc.challengeSvc.Config())

	answers, err := sessionAnswers(session)
	if err != nil {
		return nil, err
	}
	answers = append(answers, record)

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode answers")
	}

	session.Answers = answersJSON
	session.Score += record.PointsEarned
	session.CurrentIndex++
	session.QuestionServedAt = time.Now()

	result := &dto.AnswerResultResponse{
		Correct:      record.Correct,
		TimedOut:     record.SelectedIndex < 0,
		CorrectIndex: question.CorrectIndex,
		Explanation:  question.Explanation,
		PointsEarned: record.PointsEarned,
		RunningScore: session.Score,
		NextIndex:    session.CurrentIndex,
	}

	if session.CurrentIndex < len(ids) {
		next, err := svc.contentSvc.GetQuestion(ids[session.CurrentIndex])
		if err != nil {
			return nil, err
		}
		mapped := mapQuestionToResponse(next)
		result.NextQuestion = &mapped

		if err := svc.sqlSvc.UpdateQuizSession(session); err != nil {
			return nil, shared.NewInternalError(err, "Failed to record answer")
		}
		return result, nil
	}

	results, err := svc.completeSession(session, answers)
	if err != nil {
		return nil, err
	}

	result.Complete = true
	result.RunningScore = session.Score
	result.Results = results
	return result, nil
}

// completeSession closes the session, applies the perfect bonus and folds
// the outcome into the user's progress document.
func (svc *QuizService) completeSession(session *model.QuizSession, answers []model.AnswerRecord) (*dto.SessionResults, error) {
	config := svc.challengeSvc.Config()

	correctCount, perfect := tallyAnswers(answers)

	categoryResults := map[string]dto.CategoryStat{}
	for _, record := range answers {
		question, err := svc.contentSvc.GetQuestion(record.QuestionID)
		if err != nil || question.Category == "" {
			continue
		}
		stat := categoryResults[question.Category]
		stat.Total++
		if record.Correct {
			stat.Correct++
		}
		categoryResults[question.Category] = stat
	}

	perfectBonus := 0
	if perfect {
		perfectBonus = config.PerfectBonus
		session.Score += perfectBonus
	}

	now := time.Now()
	session.Status = shared.SessionStatusComplete
	session.CompletedAt = &now

	answersJSON, err := json.Marshal(answers)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode answers")
	}
	session.Answers = answersJSON

	if err := svc.sqlSvc.UpdateQuizSession(session); err != nil {
		return nil, shared.NewInternalError(err, "Failed to complete session")
	}

	svc.monitorSvc.RecordSessionCompleted(perfect)

	completion, err := svc.progressSvc.ApplyCompletion(session.UserID, &CompletionSummary{
		DateKey:         session.DateKey,
		Score:           session.Score,
		CorrectCount:    correctCount,
		Total:           len(answers),
		Perfect:         perfect,
		CategoryResults: categoryResults,
	})
	if err != nil {
		log.WithError(err).WithField(shared.SessionID, session.ID).Error("Failed to apply session to progress")
		return nil, err
	}

	return &dto.SessionResults{
		Score:           session.Score,
		CorrectCount:    correctCount,
		Total:           len(answers),
		Perfect:         perfect,
		PerfectBonus:    perfectBonus,
		NewAchievements: completion.NewAchievements,
		CurrentStreak:   completion.CurrentStreak,
		LongestStreak:   completion.LongestStreak,
		ProgressSaved:   completion.Saved,
	}, nil
}

// GetSessionResults returns the final tally of a completed session. New
// achievements are only reported once, on the completing answer; this view
// reflects the stored streak state instead.
func (svc *QuizService) GetSessionResults(userID string, req *dto.CompleteSessionRequest) (*dto.SessionResults, error) {
	if err := dto.GetValidator().Struct(req); err != nil {
		return nil, dto.NewValidationError(err)
	}

	session, err := svc.sqlSvc.GetQuizSession(req.SessionID)
	if err != nil {
		return nil, shared.NewNotFoundError(err, "Session not found")
	}
	if session.UserID != userID {
		return nil, shared.NewForbiddenError(nil, "Session belongs to another user")
	}
	if session.Status != shared.SessionStatusComplete {
		return nil, shared.NewConflictError(nil, "Session is not complete yet")
	}

	answers, err := sessionAnswers(session)
	if err != nil {
		return nil, err
	}
	correctCount, perfect := tallyAnswers(answers)

	config := svc.challengeSvc.Config()
	perfectBonus := 0
	if perfect {
		perfectBonus = config.PerfectBonus
	}

	results := &dto.SessionResults{
		Score:           session.Score,
		CorrectCount:    correctCount,
		Total:           len(answers),
		Perfect:         perfect,
		PerfectBonus:    perfectBonus,
		NewAchievements: []string{},
		ProgressSaved:   true,
	}

	if progress, err := svc.sqlSvc.GetUserProgress(userID); err == nil {
		results.CurrentStreak = progress.CurrentStreak
		results.LongestStreak = progress.LongestStreak
	}

	return results, nil
}

// ==================== DAILY VIEW ====================

// GetDailyChallenge returns today's question set for the user, flagged when
// they have already completed it.
func (svc *QuizService) GetDailyChallenge(userID string) (*dto.DailyChallengeResponse, error) {
	dateKey := TodayKey()
	completed := svc.progressSvc.HasCompletedToday(userID, dateKey)
	return svc.challengeSvc.GetDailyChallenge(dateKey, completed)
}

// ==================== SESSION JANITOR ====================

// ExpireStaleSessions marks sessions left active from previous days as
// expired. Run at rollover; an expired session never counts toward progress.
func (svc *QuizService) ExpireStaleSessions() {
	expired, err := svc.sqlSvc.ExpireStaleSessions(TodayKey())
	if err != nil {
		log.WithError(err).Error("Failed to expire stale sessions")
		return
	}
	if expired > 0 {
		log.WithField("count", expired).Info("Expired stale quiz sessions")
	}
}
