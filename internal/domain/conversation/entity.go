package conversation

import (
	"time"

	"github.com/google/uuid"
)

// Conversation types.
const (
	TypePrivate = "private"
	TypeGroup   = "group"
)

// Participant roles. Private-conversation participants carry no role.
const (
	RoleNone   = ""
	RoleMember = "Member"
	RoleAdmin  = "Admin"
)

// Participant statuses.
const (
	StatusActive  = "ACTIVE"
	StatusBlocked = "BLOCKED"
)

// Conversation represents the conversations table. PairKey is set only for
// private conversations: the sorted id pair under a unique index, so at most
// one private conversation can exist between two users even when both create
// it at once.
type Conversation struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	Type          string    `gorm:"not null"`
	Name          *string
	PairKey       *string   `gorm:"uniqueIndex"`
	CreatedBy     uuid.UUID `gorm:"type:uuid"`
	CreatedAt     time.Time
	UpdatedAt     time.Time
	LastMessageAt *time.Time

	// Relationships
	Participants []Participant `gorm:"constraint:OnDelete:CASCADE"`
}

// Participant represents the participants table. Composite key: at most one
// record per (conversation, user) pair. Holds ids, not back-references.
type Participant struct {
	ConversationID uuid.UUID `gorm:"type:uuid;primaryKey"`
	UserID         uuid.UUID `gorm:"type:uuid;primaryKey"`
	Role           string
	Status         string `gorm:"not null;default:ACTIVE"`
	CustomName     *string
	JoinedAt       time.Time
}

// PairKeyFor builds the order-independent key for a private conversation
// between two users.
func PairKeyFor(a, b uuid.UUID) string {
	if a.String() < b.String() {
		return a.String() + ":" + b.String()
	}
	return b.String() + ":" + a.String()
}

func (p Participant) IsAdmin() bool {
	return p.Role == RoleAdmin
}

func (p Participant) IsBlocked() bool {
	return p.Status == StatusBlocked
}

func (Conversation) TableName() string {
	return "conversations"
}

func (Participant) TableName() string {
	return "participants"
}
