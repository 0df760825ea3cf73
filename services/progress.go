// services/progress.go
package services

import (
	goContext "context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alphabatem/common/context"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/serenity-path/aura_api/dto"
	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

// ProgressService owns the per-user progress document. The postgres row is
// authoritative; every successful save is copied into the sqlite mirror so
// reads can degrade to a stale snapshot when the primary is down.
type ProgressService struct {
	context.DefaultService

	sqlSvc     *PostgresService
	mirrorSvc  *SqliteService
	redisSvc   *RedisService
	monitorSvc *MonitoringService
}

const PROGRESS_SVC = "progress_svc"

const (
	saveRetryDelay = 500 * time.Millisecond
	playedGuardTTL = 48 * time.Hour
)

func (svc ProgressService) Id() string {
	return PROGRESS_SVC
}

func (svc *ProgressService) Start() error {
	svc.sqlSvc = svc.Service(POSTGRES_SVC).(*PostgresService)
	svc.mirrorSvc = svc.Service(SQLITE_SVC).(*SqliteService)
	svc.redisSvc = svc.Service(REDIS_SVC).(*RedisService)
	svc.monitorSvc = svc.Service(MONITORING_SVC).(*MonitoringService)
	return nil
}

// ==================== STREAK RULES ====================

// evaluateStreak applies the day-gap rules for a completion on todayKey.
// A gap of one calendar day extends the streak, a gap of zero leaves it
// unchanged, anything else resets it to one. lastCompleted empty means this
// is the first ever completion. longestStreak never decreases.
func evaluateStreak(current, longest int, lastCompleted, todayKey string) (int, int) {
	switch dayGap(lastCompleted, todayKey) {
	case 0:
		// Already counted today.
	case 1:
		current++
	default:
		current = 1
	}

	if current > longest {
		longest = current
	}
	return current, longest
}

// dayGap returns the number of calendar days between two date keys.
// An empty or unparsable "from" is treated as an unbounded gap.
func dayGap(from, to string) int {
	if from == "" {
		return -1
	}

	a, errA := time.Parse(shared.DateKeyLayout, from)
	b, errB := time.Parse(shared.DateKeyLayout, to)
	if errA != nil || errB != nil {
		return -1
	}

	return int(b.Sub(a).Hours() / 24)
}

// ==================== ACHIEVEMENT RULES ====================

// achievementDef pairs a stable id with its unlock predicate. Display
// metadata lives in the achievements table and is matched by id; a def with
// no table row still unlocks, it just renders without a badge.
type achievementDef struct {
	ID        string
	Satisfied func(doc *dto.ProgressDocument) bool
}

func categoryCorrect(doc *dto.ProgressDocument, category string, threshold int) bool {
	return doc.CategoryStats[category].Correct >= threshold
}

var achievementDefs = []achievementDef{
	{"first_steps", func(d *dto.ProgressDocument) bool { return d.TotalQuizzes >= 1 }},
	{"first_perfect", func(d *dto.ProgressDocument) bool { return d.PerfectScores >= 1 }},
	{"week_streak", func(d *dto.ProgressDocument) bool { return d.CurrentStreak >= 7 }},
	{"month_streak", func(d *dto.ProgressDocument) bool { return d.CurrentStreak >= 30 }},
	{"devoted_10", func(d *dto.ProgressDocument) bool { return d.TotalQuizzes >= 10 }},
	{"seeker_50", func(d *dto.ProgressDocument) bool { return d.TotalQuizzes >= 50 }},
	{"enlightened_100", func(d *dto.ProgressDocument) bool { return d.TotalQuizzes >= 100 }},
	{"xp_1000", func(d *dto.ProgressDocument) bool { return d.TotalXPEarned >= 1000 }},
	{"chakra_adept", func(d *dto.ProgressDocument) bool { return categoryCorrect(d, shared.CategoryChakras, 20) }},
	{"mindful_master", func(d *dto.ProgressDocument) bool { return categoryCorrect(d, shared.CategoryMeditation, 20) }},
	{"star_reader", func(d *dto.ProgressDocument) bool { return categoryCorrect(d, shared.CategoryAstrology, 20) }},
	{"crystal_keeper", func(d *dto.ProgressDocument) bool { return categoryCorrect(d, shared.CategoryCrystals, 20) }},
	{"scripture_scholar", func(d *dto.ProgressDocument) bool { return categoryCorrect(d, shared.CategorySacred, 20) }},
}

// evaluateAchievements returns ids newly satisfied by doc, in definition
// order. Already-held ids are skipped, so re-evaluating the same document is
// a no-op.
func evaluateAchievements(doc *dto.ProgressDocument) []string {
	held := make(map[string]bool, len(doc.Achievements))
	for _, id := range doc.Achievements {
		held[id] = true
	}

	var unlocked []string
	for _, def := range achievementDefs {
		if held[def.ID] {
			continue
		}
		if def.Satisfied(doc) {
			unlocked = append(unlocked, def.ID)
		}
	}
	return unlocked
}

// ==================== LEVEL CURVE ====================

// calculateLevel converts lifetime XP into a level. Each level requires 1.5x
// the previous one, starting at 100.
func calculateLevel(totalXP int) int {
	level := 1
	required := 100
	for totalXP >= required {
		totalXP -= required
		level++
		required = int(float64(required) * 1.5)
	}
	return level
}

func xpToNextLevel(totalXP int) int {
	required := 100
	for totalXP >= required {
		totalXP -= required
		required = int(float64(required) * 1.5)
	}
	return required - totalXP
}

// ==================== DOCUMENT MAPPING ====================

func toDocument(progress *model.UserProgress) dto.ProgressDocument {
	doc := dto.ProgressDocument{
		TotalQuizzes:  progress.TotalQuizzes,
		PerfectScores: progress.PerfectScores,
		TotalXPEarned: progress.TotalXPEarned,
		CurrentStreak: progress.CurrentStreak,
		LongestStreak: progress.LongestStreak,
		CategoryStats: map[string]dto.CategoryStat{},
		Achievements:  []string{},
		Settings: dto.Settings{
			SoundEnabled: progress.SoundEnabled,
			MusicEnabled: progress.MusicEnabled,
		},
	}

	if progress.LastCompletedDate != "" {
		d := progress.LastCompletedDate
		doc.LastCompletedDate = &d
	}
	if len(progress.CategoryStats) > 0 {
		if err := json.Unmarshal(progress.CategoryStats, &doc.CategoryStats); err != nil {
			log.WithError(err).WithField("user_id", progress.UserID).Warn("Corrupt category stats, resetting")
			doc.CategoryStats = map[string]dto.CategoryStat{}
		}
	}
	if len(progress.Achievements) > 0 {
		if err := json.Unmarshal(progress.Achievements, &doc.Achievements); err != nil {
			log.WithError(err).WithField("user_id", progress.UserID).Warn("Corrupt achievement list, resetting")
			doc.Achievements = []string{}
		}
	}

	return doc
}

func applyDocument(progress *model.UserProgress, doc *dto.ProgressDocument) error {
	statsJSON, err := json.Marshal(doc.CategoryStats)
	if err != nil {
		return err
	}
	achievementsJSON, err := json.Marshal(doc.Achievements)
	if err != nil {
		return err
	}

	progress.TotalQuizzes = doc.TotalQuizzes
	progress.PerfectScores = doc.PerfectScores
	progress.TotalXPEarned = doc.TotalXPEarned
	progress.CurrentStreak = doc.CurrentStreak
	progress.LongestStreak = doc.LongestStreak
	progress.CategoryStats = statsJSON
	progress.Achievements = achievementsJSON
	progress.SoundEnabled = doc.Settings.SoundEnabled
	progress.MusicEnabled = doc.Settings.MusicEnabled

	if doc.LastCompletedDate != nil {
		progress.LastCompletedDate = *doc.LastCompletedDate
	}

	return nil
}

func zeroDocument() dto.ProgressDocument {
	return dto.ProgressDocument{
		CategoryStats: map[string]dto.CategoryStat{},
		Achievements:  []string{},
		Settings:      dto.Settings{SoundEnabled: true, MusicEnabled: true},
	}
}

// ==================== READ PATH ====================

// GetProgress loads the user's document from the primary store, falling back
// to the sqlite mirror when the primary is unreachable. A user with no row
// yet gets a zero document.
func (svc *ProgressService) GetProgress(userID string) (*dto.ProgressResponse, error) {
	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err == nil {
		doc := toDocument(progress)
		return svc.buildResponse(userID, doc, false), nil
	}

	if errors.Is(err, gorm.ErrRecordNotFound) {
		doc := zeroDocument()
		return svc.buildResponse(userID, doc, false), nil
	}

	log.WithError(err).WithField("user_id", userID).Warn("Primary progress read failed, trying mirror")
	svc.monitorSvc.RecordMirrorFallback()

	payload, mirrorErr := svc.mirrorSvc.ReadMirror(userID)
	if mirrorErr != nil {
		return nil, shared.NewServiceUnavailableError(err, "Progress is temporarily unavailable")
	}

	var doc dto.ProgressDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		return nil, shared.NewInternalError(err, "Mirror progress document is corrupt")
	}
	if doc.CategoryStats == nil {
		doc.CategoryStats = map[string]dto.CategoryStat{}
	}
	if doc.Achievements == nil {
		doc.Achievements = []string{}
	}

	return svc.buildResponse(userID, doc, true), nil
}

func (svc *ProgressService) buildResponse(userID string, doc dto.ProgressDocument, stale bool) *dto.ProgressResponse {
	return &dto.ProgressResponse{
		UserID:        userID,
		Progress:      doc,
		Level:         calculateLevel(doc.TotalXPEarned),
		XPToNextLevel: xpToNextLevel(doc.TotalXPEarned),
		Stale:         stale,
	}
}

// HasCompletedToday reports whether the user already finished the given
// day's challenge, consulting the redis guard first.
func (svc *ProgressService) HasCompletedToday(userID, dateKey string) bool {
	ctx := goContext.Background()
	if played, err := svc.redisSvc.Exists(ctx, playedGuardKey(userID, dateKey)); err == nil && played {
		return true
	}

	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err != nil {
		return false
	}
	return progress.LastCompletedDate == dateKey
}

func playedGuardKey(userID, dateKey string) string {
	return fmt.Sprintf("played:%s:%s", userID, dateKey)
}

// ==================== WRITE PATH ====================

// CompletionSummary is what a finished session contributes to the document.
// Score already includes speed and perfect bonuses.
type CompletionSummary struct {
	DateKey         string
	Score           int
	CorrectCount    int
	Total           int
	Perfect         bool
	CategoryResults map[string]dto.CategoryStat
}

type CompletionResult struct {
	NewAchievements []string
	CurrentStreak   int
	LongestStreak   int
	Saved           bool
}

// foldCompletion applies a finished session to the document: counters,
// category tallies, the streak roll and achievement evaluation with one
// re-check after achievement XP, since an XP-threshold unlock can cascade
// once. grant records the unlock rows and returns the XP reward total.
// Returns the ids unlocked by this completion, never nil.
func foldCompletion(doc *dto.ProgressDocument, summary *CompletionSummary, grant func(ids []string) int) []string {
	doc.TotalQuizzes++
	doc.TotalXPEarned += summary.Score
	if summary.Perfect {
		doc.PerfectScores++
	}

	for category, delta := range summary.CategoryResults {
		stat := doc.CategoryStats[category]
		stat.Correct += delta.Correct
		stat.Total += delta.Total
		doc.CategoryStats[category] = stat
	}

	lastCompleted := ""
	if doc.LastCompletedDate != nil {
		lastCompleted = *doc.LastCompletedDate
	}
	doc.CurrentStreak, doc.LongestStreak = evaluateStreak(
		doc.CurrentStreak, doc.LongestStreak, lastCompleted, summary.DateKey)
	doc.LastCompletedDate = &summary.DateKey

	unlocked := evaluateAchievements(doc)
	doc.Achievements = append(doc.Achievements, unlocked...)
	doc.TotalXPEarned += grant(unlocked)

	if cascade := evaluateAchievements(doc); len(cascade) > 0 {
		doc.Achievements = append(doc.Achievements, cascade...)
		doc.TotalXPEarned += grant(cascade)
		unlocked = append(unlocked, cascade...)
	}

	if unlocked == nil {
		unlocked = []string{}
	}
	return unlocked
}

// ApplyCompletion folds a finished session into the user's document, rolls
// the streak, evaluates achievements and persists. A failed primary save is
// retried once; when the primary cannot even be read, the fold degrades to
// the mirror snapshot. Either way the caller gets results, with Saved=false
// whenever the primary write was lost.
func (svc *ProgressService) ApplyCompletion(userID string, summary *CompletionSummary) (*CompletionResult, error) {
	progress, err := svc.loadOrCreate(userID)
	if err != nil {
		return svc.applyToMirror(userID, summary, err), nil
	}

	doc := toDocument(progress)
	unlocked := foldCompletion(&doc, summary, func(ids []string) int {
		return svc.grantAchievements(userID, ids)
	})

	if err := applyDocument(progress, &doc); err != nil {
		return nil, shared.NewInternalError(err, "Failed to encode progress document")
	}

	saved := svc.saveWithRetry(progress)
	svc.writeMirror(userID, &doc)
	svc.markPlayed(userID, summary.DateKey)

	for range unlocked {
		svc.monitorSvc.RecordAchievementUnlocked()
	}

	return &CompletionResult{
		NewAchievements: unlocked,
		CurrentStreak:   doc.CurrentStreak,
		LongestStreak:   doc.LongestStreak,
		Saved:           saved,
	}, nil
}

// applyToMirror degrades a completion when the primary store is unreachable.
// The session row is already closed by the time this runs, so surfacing an
// error would lose the completion outright; instead the fold lands in the
// mirror and the result reports Saved=false.
func (svc *ProgressService) applyToMirror(userID string, summary *CompletionSummary, cause error) *CompletionResult {
	log.WithError(cause).WithField("user_id", userID).Warn("Primary progress store unavailable, folding completion into mirror")
	svc.monitorSvc.RecordMirrorFallback()

	doc := svc.mirrorDocument(userID)
	unlocked := foldCompletion(&doc, summary, func(ids []string) int {
		return svc.grantAchievements(userID, ids)
	})

	svc.writeMirror(userID, &doc)
	svc.markPlayed(userID, summary.DateKey)

	for range unlocked {
		svc.monitorSvc.RecordAchievementUnlocked()
	}

	return &CompletionResult{
		NewAchievements: unlocked,
		CurrentStreak:   doc.CurrentStreak,
		LongestStreak:   doc.LongestStreak,
		Saved:           false,
	}
}

// mirrorDocument reads the last mirrored snapshot, settling for a zero
// document when the mirror has nothing usable.
func (svc *ProgressService) mirrorDocument(userID string) dto.ProgressDocument {
	payload, err := svc.mirrorSvc.ReadMirror(userID)
	if err != nil {
		return zeroDocument()
	}

	var doc dto.ProgressDocument
	if err := json.Unmarshal([]byte(payload), &doc); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Corrupt mirror document, starting fresh")
		return zeroDocument()
	}
	if doc.CategoryStats == nil {
		doc.CategoryStats = map[string]dto.CategoryStat{}
	}
	if doc.Achievements == nil {
		doc.Achievements = []string{}
	}
	return doc
}

func (svc *ProgressService) loadOrCreate(userID string) (*model.UserProgress, error) {
	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err == nil {
		return progress, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, shared.NewServiceUnavailableError(err, "Progress store is unavailable")
	}

	progressID, _ := uuid.NewV7()
	fresh := &model.UserProgress{
		ID:            progressID.String(),
		UserID:        userID,
		CategoryStats: json.RawMessage("{}"),
		Achievements:  json.RawMessage("[]"),
		SoundEnabled:  true,
		MusicEnabled:  true,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}
	return svc.sqlSvc.CreateUserProgress(fresh)
}

func (svc *ProgressService) saveWithRetry(progress *model.UserProgress) bool {
	err := svc.sqlSvc.UpdateUserProgress(progress)
	if err == nil {
		return true
	}

	log.WithError(err).WithField("user_id", progress.UserID).Warn("Progress save failed, retrying once")
	time.Sleep(saveRetryDelay)

	if err = svc.sqlSvc.UpdateUserProgress(progress); err != nil {
		log.WithError(err).WithField("user_id", progress.UserID).Error("Progress save failed after retry")
		return false
	}
	return true
}

func (svc *ProgressService) writeMirror(userID string, doc *dto.ProgressDocument) {
	payload, err := json.Marshal(doc)
	if err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to encode mirror payload")
		return
	}
	if err := svc.mirrorSvc.WriteMirror(userID, string(payload)); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to write progress mirror")
	}
}

func (svc *ProgressService) markPlayed(userID, dateKey string) {
	ctx := goContext.Background()
	if err := svc.redisSvc.Set(ctx, playedGuardKey(userID, dateKey), "1", playedGuardTTL); err != nil {
		log.WithError(err).WithField("user_id", userID).Warn("Failed to set played guard")
	}
}

// grantAchievements records unlock rows and returns the XP reward total.
func (svc *ProgressService) grantAchievements(userID string, ids []string) int {
	reward := 0
	for _, id := range ids {
		if achievement, err := svc.sqlSvc.GetAchievement(id); err == nil {
			reward += achievement.XPReward
		}

		rowID, _ := uuid.NewV7()
		err := svc.sqlSvc.CreateUserAchievement(&model.UserAchievement{
			ID:            rowID.String(),
			UserID:        userID,
			AchievementID: id,
			UnlockedAt:    time.Now(),
			CreatedAt:     time.Now(),
		})
		if err != nil {
			log.WithError(err).WithFields(log.Fields{
				"user_id":        userID,
				"achievement_id": id,
			}).Warn("Failed to record achievement unlock")
		}
	}
	return reward
}

// ==================== SETTINGS ====================

func (svc *ProgressService) GetSettings(userID string) (*dto.Settings, error) {
	progress, err := svc.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}
	return &dto.Settings{
		SoundEnabled: progress.SoundEnabled,
		MusicEnabled: progress.MusicEnabled,
	}, nil
}

func (svc *ProgressService) UpdateSettings(userID string, req *dto.UpdateSettingsRequest) (*dto.Settings, error) {
	progress, err := svc.loadOrCreate(userID)
	if err != nil {
		return nil, err
	}

	if req.SoundEnabled != nil {
		progress.SoundEnabled = *req.SoundEnabled
	}
	if req.MusicEnabled != nil {
		progress.MusicEnabled = *req.MusicEnabled
	}

	if err := svc.sqlSvc.UpdateUserProgress(progress); err != nil {
		return nil, shared.NewInternalError(err, "Failed to update settings")
	}

	svc.writeMirrorFromModel(progress)

	return &dto.Settings{
		SoundEnabled: progress.SoundEnabled,
		MusicEnabled: progress.MusicEnabled,
	}, nil
}

func (svc *ProgressService) writeMirrorFromModel(progress *model.UserProgress) {
	doc := toDocument(progress)
	svc.writeMirror(progress.UserID, &doc)
}

// ==================== ACHIEVEMENT LISTING ====================

func (svc *ProgressService) GetAchievements(userID string) (*dto.AchievementCollectionResponse, error) {
	definitions, err := svc.sqlSvc.GetActiveAchievements()
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load achievements")
	}

	unlocks, err := svc.sqlSvc.GetUserAchievements(userID)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load unlocked achievements")
	}

	unlockedAt := make(map[string]time.Time, len(unlocks))
	for _, ua := range unlocks {
		unlockedAt[ua.AchievementID] = ua.UnlockedAt
	}

	responses := make([]dto.AchievementResponse, len(definitions))
	unlockedCount := 0
	for i, def := range definitions {
		resp := dto.AchievementResponse{
			ID:          def.ID,
			Name:        def.Name,
			Description: def.Description,
			Category:    def.Category,
			BadgeURL:    def.BadgeURL,
			XPReward:    def.XPReward,
		}
		if at, ok := unlockedAt[def.ID]; ok {
			resp.Unlocked = true
			t := at
			resp.UnlockedAt = &t
			unlockedCount++
		}
		responses[i] = resp
	}

	return &dto.AchievementCollectionResponse{
		Achievements: responses,
		Total:        len(responses),
		Unlocked:     unlockedCount,
	}, nil
}

// ==================== LEADERBOARD ====================

func (svc *ProgressService) GetLeaderboard(userID string, limit int) (*dto.LeaderboardResponse, error) {
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	top, err := svc.sqlSvc.GetAllTimeLeaderboard(limit)
	if err != nil {
		return nil, shared.NewInternalError(err, "Failed to load leaderboard")
	}

	topUsers := make([]dto.LeaderboardUserResponse, len(top))
	for i, progress := range top {
		topUsers[i] = dto.LeaderboardUserResponse{
			UserID: progress.UserID,
			Level:  calculateLevel(progress.TotalXPEarned),
			XP:     progress.TotalXPEarned,
			Streak: progress.CurrentStreak,
			Rank:   i + 1,
		}
		if user, err := svc.sqlSvc.GetUser(progress.UserID); err == nil {
			topUsers[i].Username = user.Username
		}
	}

	response := &dto.LeaderboardResponse{
		Period:   "all_time",
		TopUsers: topUsers,
	}

	progress, err := svc.sqlSvc.GetUserProgress(userID)
	if err == nil {
		rank, rankErr := svc.sqlSvc.GetUserRank(userID)
		if rankErr != nil {
			rank = 0
		}
		response.CurrentUser = dto.LeaderboardUserResponse{
			UserID: userID,
			Level:  calculateLevel(progress.TotalXPEarned),
			XP:     progress.TotalXPEarned,
			Streak: progress.CurrentStreak,
			Rank:   rank,
		}
		if user, userErr := svc.sqlSvc.GetUser(userID); userErr == nil {
			response.CurrentUser.Username = user.Username
		}
	}

	return response, nil
}
