package entity

type WaitlistEntry struct {
	Base

	EventID string `gorm:"uniqueIndex:idx_waitlist_event_user"`
	UserID  string `gorm:"uniqueIndex:idx_waitlist_event_user"`
	User    User   `gorm:"foreignKey:UserID"`
	Note    string
}
