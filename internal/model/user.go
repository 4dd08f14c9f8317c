package model

import "time"

type Role string

const (
	RoleUser   Role = "user"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

type User struct {
	ID           uint64    `gorm:"primaryKey;autoIncrement"`
	Name         string    `gorm:"size:120;not null"`
	Email        string    `gorm:"size:190;not null;uniqueIndex:uk_users_email"`
	PasswordHash string    `gorm:"column:password_hash;size:255;not null"`
	Image        string    `gorm:"column:image;size:512"`
	Role         Role      `gorm:"column:role;size:16;not null;default:user"`
	Verified     bool      `gorm:"column:verified;not null;default:false"`
	Location     string    `gorm:"column:location;size:255"`
	Telegram     string    `gorm:"column:telegram;size:120"`
	TokenVersion int       `gorm:"column:token_version;not null;default:0"`
	CreatedAt    time.Time `gorm:"autoCreateTime"`
	UpdatedAt    time.Time `gorm:"autoUpdateTime"`
}

func (User) TableName() string {
	return "users"
}
