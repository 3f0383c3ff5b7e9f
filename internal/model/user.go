package model

type User struct {
	BaseModel
	Name         string `gorm:"size:255;not null" json:"name"`
	Email        string `gorm:"size:255;not null;uniqueIndex" json:"email"`
	PasswordHash string `gorm:"size:255;not null" json:"-"`
	AvatarURL    string `gorm:"size:1000" json:"avatar_url,omitempty"`
}

func (User) TableName() string {
	return "users"
}
