// seed/seeders/achievement_seeder.go
package seeders

import (
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/serenity-path/aura_api/model"
)

// Achievement ids must match the unlock predicates in the progress service.
var achievements = []model.Achievement{
	{ID: "first_steps", Name: "First Steps", Description: "Complete your first daily challenge", Category: "sessions", XPReward: 10},
	{ID: "first_perfect", Name: "Pure Light", Description: "Finish a challenge with every answer correct", Category: "sessions", XPReward: 50},
	{ID: "week_streak", Name: "Seven Suns", Description: "Keep a 7 day streak alive", Category: "streak", XPReward: 70},
	{ID: "month_streak", Name: "Lunar Cycle", Description: "Keep a 30 day streak alive", Category: "streak", XPReward: 300},
	{ID: "devoted_10", Name: "Devoted", Description: "Complete 10 daily challenges", Category: "sessions", XPReward: 30},
	{ID: "seeker_50", Name: "Seeker", Description: "Complete 50 daily challenges", Category: "sessions", XPReward: 150},
	{ID: "enlightened_100", Name: "Enlightened", Description: "Complete 100 daily challenges", Category: "sessions", XPReward: 500},
	{ID: "xp_1000", Name: "Radiant Aura", Description: "Earn 1000 lifetime XP", Category: "sessions", XPReward: 100},
	{ID: "chakra_adept", Name: "Chakra Adept", Description: "Answer 20 Chakras & Energy questions correctly", Category: "mastery", XPReward: 80},
	{ID: "mindful_master", Name: "Mindful Master", Description: "Answer 20 Meditation & Mindfulness questions correctly", Category: "mastery", XPReward: 80},
	{ID: "star_reader", Name: "Star Reader", Description: "Answer 20 Astrology & Zodiac questions correctly", Category: "mastery", XPReward: 80},
	{ID: "crystal_keeper", Name: "Crystal Keeper", Description: "Answer 20 Crystals & Healing questions correctly", Category: "mastery", XPReward: 80},
	{ID: "scripture_scholar", Name: "Scripture Scholar", Description: "Answer 20 Sacred Texts & Traditions questions correctly", Category: "mastery", XPReward: 80},
}

func SeedAchievements(db *gorm.DB) error {
	created := 0
	for _, achievement := range achievements {
		var count int64
		if err := db.Model(&model.Achievement{}).Where("id = ?", achievement.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		achievement.IsActive = true
		achievement.CreatedAt = time.Now()
		achievement.UpdatedAt = time.Now()
		if err := db.Create(&achievement).Error; err != nil {
			return err
		}
		created++
	}

	log.Infof("Seeded %d achievements (%d already present)", created, len(achievements)-created)
	return nil
}
