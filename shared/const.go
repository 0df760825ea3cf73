package shared

const (
	UserID    = "user_id"
	SessionID = "session_id"

	RoleUser  = "user"
	RoleAdmin = "admin"

	DifficultyEasy   = "easy"
	DifficultyMedium = "medium"
	DifficultyHard   = "hard"

	CategoryChakras    = "Chakras & Energy"
	CategoryMeditation = "Meditation & Mindfulness"
	CategoryAstrology  = "Astrology & Zodiac"
	CategoryCrystals   = "Crystals & Healing"
	CategorySacred     = "Sacred Texts & Traditions"

	// Calendar date key format used for challenge seeding and streak bookkeeping.
	DateKeyLayout = "2006-01-02"

	SessionStatusActive   = "active"
	SessionStatusComplete = "complete"
	SessionStatusExpired  = "expired"
)
