package model

import "time"

type User struct {
	ID        string `json:"id" gorm:"primaryKey"`
	Email     string `json:"email" gorm:"unique;not null"`
	Username  string `json:"username" gorm:"unique;not null"`
	Password  string `json:"-"`
	Role      string `json:"role" gorm:"default:user"`
	IsActive  bool   `json:"is_active" gorm:"default:true"`
	LastLogin time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
}
