// seed/seeders/question_seeder.go
package seeders

import (
	"encoding/json"
	"time"

	log "github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/serenity-path/aura_api/model"
	"github.com/serenity-path/aura_api/shared"
)

type questionSeed struct {
	ID           string
	Category     string
	Difficulty   string
	Prompt       string
	Choices      []string
	CorrectIndex int
	Explanation  string
}

// Stable ids keep reseeding idempotent and keep historical daily selections
// valid across environments.
var questions = []questionSeed{
	// Chakras & Energy
	{"chakras-001", shared.CategoryChakras, shared.DifficultyEasy,
		"How many primary chakras are there in most traditions?",
		[]string{"5", "7", "9", "12"}, 1,
		"Most systems describe seven primary chakras running from the base of the spine to the crown."},
	{"chakras-002", shared.CategoryChakras, shared.DifficultyEasy,
		"Which color is most associated with the heart chakra?",
		[]string{"Red", "Yellow", "Green", "Violet"}, 2,
		"Anahata, the heart chakra, is traditionally depicted as green."},
	{"chakras-003", shared.CategoryChakras, shared.DifficultyMedium,
		"What is the Sanskrit name of the root chakra?",
		[]string{"Muladhara", "Svadhisthana", "Manipura", "Ajna"}, 0,
		"Muladhara means 'root support' and sits at the base of the spine."},
	{"chakras-004", shared.CategoryChakras, shared.DifficultyMedium,
		"Which chakra is linked to intuition and is often called the third eye?",
		[]string{"Vishuddha", "Ajna", "Sahasrara", "Manipura"}, 1,
		"Ajna, located between the eyebrows, governs intuition and insight."},
	{"chakras-005", shared.CategoryChakras, shared.DifficultyHard,
		"In kundalini yoga, what is said to rise through the chakras when awakened?",
		[]string{"Prana vayu", "Serpent energy", "Ojas", "Tejas"}, 1,
		"Kundalini is described as a coiled serpent energy at the base of the spine that rises through the sushumna channel."},
	{"chakras-006", shared.CategoryChakras, shared.DifficultyHard,
		"How many petals does the crown chakra's lotus traditionally have?",
		[]string{"100", "500", "1000", "10000"}, 2,
		"Sahasrara is depicted as a thousand-petaled lotus."},

	// Meditation & Mindfulness
	{"meditation-001", shared.CategoryMeditation, shared.DifficultyEasy,
		"What is the common name for the meditation practice of focusing on the breath?",
		[]string{"Mantra meditation", "Breath awareness", "Body scan", "Walking meditation"}, 1,
		"Breath awareness, or anapanasati, is one of the oldest and most widely taught practices."},
	{"meditation-002", shared.CategoryMeditation, shared.DifficultyEasy,
		"Which word describes paying attention to the present moment without judgment?",
		[]string{"Mindfulness", "Visualization", "Hypnosis", "Lucidity"}, 0,
		"Mindfulness is present-moment awareness held with an accepting attitude."},
	{"meditation-003", shared.CategoryMeditation, shared.DifficultyMedium,
		"What does the word 'mantra' literally relate to in Sanskrit?",
		[]string{"Sound of water", "Instrument of thought", "Sacred fire", "Inner silence"}, 1,
		"Mantra derives from 'manas' (mind) and 'tra' (tool), an instrument of thought."},
	{"meditation-004", shared.CategoryMeditation, shared.DifficultyMedium,
		"In Zen practice, what is the name for seated meditation?",
		[]string{"Koan", "Zazen", "Kinhin", "Satori"}, 1,
		"Zazen literally means 'seated meditation' and is the heart of Zen training."},
	{"meditation-005", shared.CategoryMeditation, shared.DifficultyHard,
		"Which Buddhist practice cultivates loving-kindness toward all beings?",
		[]string{"Vipassana", "Metta bhavana", "Samatha", "Tonglen"}, 1,
		"Metta bhavana is the deliberate cultivation of loving-kindness."},
	{"meditation-006", shared.CategoryMeditation, shared.DifficultyHard,
		"What are the paradoxical riddles used in Zen training called?",
		[]string{"Sutras", "Koans", "Haikus", "Mudras"}, 1,
		"Koans, like 'the sound of one hand clapping', are used to exhaust conceptual thinking."},

	// Astrology & Zodiac
	{"astrology-001", shared.CategoryAstrology, shared.DifficultyEasy,
		"How many signs are in the Western zodiac?",
		[]string{"10", "12", "13", "24"}, 1,
		"The Western zodiac divides the ecliptic into twelve signs."},
	{"astrology-002", shared.CategoryAstrology, shared.DifficultyEasy,
		"Which zodiac sign is symbolized by the lion?",
		[]string{"Aries", "Taurus", "Leo", "Scorpio"}, 2,
		"Leo, ruled by the Sun, is symbolized by the lion."},
	{"astrology-003", shared.CategoryAstrology, shared.DifficultyMedium,
		"Which planet rules both Gemini and Virgo?",
		[]string{"Venus", "Mercury", "Mars", "Jupiter"}, 1,
		"Mercury, planet of communication and analysis, rules both signs."},
	{"astrology-004", shared.CategoryAstrology, shared.DifficultyMedium,
		"What are the four elements of the zodiac?",
		[]string{"Fire, water, wood, metal", "Fire, earth, air, water", "Sun, moon, stars, sky", "Light, dark, dawn, dusk"}, 1,
		"Each zodiac sign belongs to one of fire, earth, air or water."},
	{"astrology-005", shared.CategoryAstrology, shared.DifficultyHard,
		"What is the astrological term for the sign rising on the eastern horizon at birth?",
		[]string{"Midheaven", "Ascendant", "Descendant", "Nadir"}, 1,
		"The ascendant, or rising sign, marks the eastern horizon at the moment of birth."},
	{"astrology-006", shared.CategoryAstrology, shared.DifficultyHard,
		"Approximately how long does Saturn take to return to its natal position?",
		[]string{"12 years", "18 years", "29 years", "84 years"}, 2,
		"The Saturn return happens roughly every 29.5 years."},

	// Crystals & Healing
	{"crystals-001", shared.CategoryCrystals, shared.DifficultyEasy,
		"Which purple crystal is commonly associated with calm and intuition?",
		[]string{"Citrine", "Amethyst", "Rose quartz", "Obsidian"}, 1,
		"Amethyst, a violet variety of quartz, is the classic stone of calm."},
	{"crystals-002", shared.CategoryCrystals, shared.DifficultyEasy,
		"Rose quartz is most often linked with which theme?",
		[]string{"Protection", "Abundance", "Love", "Grounding"}, 2,
		"Rose quartz is widely called the stone of unconditional love."},
	{"crystals-003", shared.CategoryCrystals, shared.DifficultyMedium,
		"Which black volcanic glass is used for grounding and protection?",
		[]string{"Onyx", "Obsidian", "Hematite", "Tourmaline"}, 1,
		"Obsidian forms when lava cools rapidly and is a traditional protective stone."},
	{"crystals-004", shared.CategoryCrystals, shared.DifficultyMedium,
		"Selenite is named after the Greek goddess of what?",
		[]string{"The sea", "The moon", "The dawn", "The harvest"}, 1,
		"Selenite takes its name from Selene, goddess of the moon."},
	{"crystals-005", shared.CategoryCrystals, shared.DifficultyHard,
		"On the Mohs scale, what is the approximate hardness of quartz?",
		[]string{"3", "5", "7", "9"}, 2,
		"Quartz sits at 7 on the Mohs hardness scale."},
	{"crystals-006", shared.CategoryCrystals, shared.DifficultyHard,
		"Lapis lazuli owes its deep blue color primarily to which mineral?",
		[]string{"Azurite", "Lazurite", "Sodalite", "Kyanite"}, 1,
		"Lazurite is the chief component giving lapis lazuli its intense blue."},

	// Sacred Texts & Traditions
	{"sacred-001", shared.CategorySacred, shared.DifficultyEasy,
		"The Bhagavad Gita is part of which larger epic?",
		[]string{"Ramayana", "Mahabharata", "Rig Veda", "Upanishads"}, 1,
		"The Gita is a 700-verse section of the Mahabharata."},
	{"sacred-002", shared.CategorySacred, shared.DifficultyEasy,
		"The Tao Te Ching is attributed to which sage?",
		[]string{"Confucius", "Laozi", "Zhuangzi", "Mencius"}, 1,
		"Tradition credits Laozi, the 'Old Master', with the Tao Te Ching."},
	{"sacred-003", shared.CategorySacred, shared.DifficultyMedium,
		"What is the oldest of the four Vedas?",
		[]string{"Sama Veda", "Yajur Veda", "Rig Veda", "Atharva Veda"}, 2,
		"The Rig Veda is the oldest, composed over three thousand years ago."},
	{"sacred-004", shared.CategorySacred, shared.DifficultyMedium,
		"In Buddhism, what name is given to the collected discourses of the Buddha?",
		[]string{"Sutras", "Tantras", "Shastras", "Puranas"}, 0,
		"The sutras (suttas in Pali) record the Buddha's teachings."},
	{"sacred-005", shared.CategorySacred, shared.DifficultyHard,
		"The Zohar is the foundational text of which mystical tradition?",
		[]string{"Sufism", "Kabbalah", "Gnosticism", "Hermeticism"}, 1,
		"The Zohar is the central work of Kabbalah, Jewish mysticism."},
	{"sacred-006", shared.CategorySacred, shared.DifficultyHard,
		"Rumi, the mystic poet, belonged to which tradition?",
		[]string{"Vedanta", "Zen", "Sufism", "Taoism"}, 2,
		"Rumi was a 13th century Sufi mystic whose order became the whirling dervishes."},
}

func SeedQuestions(db *gorm.DB) error {
	created := 0
	for _, seed := range questions {
		var count int64
		if err := db.Model(&model.Question{}).Where("id = ?", seed.ID).Count(&count).Error; err != nil {
			return err
		}
		if count > 0 {
			continue
		}

		choicesJSON, err := json.Marshal(seed.Choices)
		if err != nil {
			return err
		}

		question := model.Question{
			ID:           seed.ID,
			Category:     seed.Category,
			Difficulty:   seed.Difficulty,
			Prompt:       seed.Prompt,
			Choices:      choicesJSON,
			CorrectIndex: seed.CorrectIndex,
			Explanation:  seed.Explanation,
			IsActive:     true,
			CreatedAt:    time.Now(),
			UpdatedAt:    time.Now(),
		}
		if err := db.Create(&question).Error; err != nil {
			return err
		}
		created++
	}

	log.Infof("Seeded %d questions (%d already present)", created, len(questions)-created)
	return nil
}
