package model

import (
	"database/sql/driver"
	"encoding/json"

	"github.com/google/uuid"
)

type Message struct {
	Sender string `json:"sender"`
	Text   string `json:"text"`
}

type MessageList []Message

func (m MessageList) Value() (driver.Value, error) {
	if m == nil {
		return nil, nil
	}
	return json.Marshal(m)
}

func (m *MessageList) Scan(value interface{}) error {
	if value == nil {
		*m = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, m)
}

// ChatHistory is a saved question/answer transcript, optionally tied to the
// document it was asked against.
type ChatHistory struct {
	BaseModel
	UserID     uuid.UUID   `gorm:"type:uuid;not null;index" json:"user_id"`
	DocumentID *uuid.UUID  `gorm:"type:uuid;index" json:"document_id,omitempty"`
	Source     string      `gorm:"size:1000" json:"source,omitempty"`
	Messages   MessageList `gorm:"type:jsonb" json:"messages"`
}

func (ChatHistory) TableName() string {
	return "chat_histories"
}
