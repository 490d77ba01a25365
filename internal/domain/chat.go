package domain

import "time"

// Chat is the GORM model for the chats table. Participants are stored
// canonically ordered (user1_id < user2_id) so the unique index covers
// both orientations of a pair.
type Chat struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	IsPrivate bool      `gorm:"default:true"`
	User1ID   *string   `gorm:"type:varchar(36);index:idx_chats_participants,unique"`
	User2ID   *string   `gorm:"type:varchar(36);index:idx_chats_participants,unique"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Chat) TableName() string { return "chats" }

// OtherParticipant returns the participant that is not userID, or nil
// if the chat has no such participant recorded.
func (c *Chat) OtherParticipant(userID string) *string {
	if c.User1ID != nil && *c.User1ID == userID {
		return c.User2ID
	}
	return c.User1ID
}

// Message is the GORM model for the messages table. Messages are never
// hard-deleted; IsDeleted hides them from history. No endpoint sets the
// flag yet, the read path filters on it regardless.
type Message struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	ChatID    string    `gorm:"type:varchar(36);not null;index"`
	SenderID  string    `gorm:"type:varchar(36);not null"`
	Content   string    `gorm:"type:text"`
	IsDeleted bool      `gorm:"default:false"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Message) TableName() string { return "messages" }

// CreateChatRequest opens (or returns) the chat with a recipient.
type CreateChatRequest struct {
	RecipientID string `json:"recipient_id" binding:"required,uuid"`
}

// SendMessageRequest posts a new message into a chat.
type SendMessageRequest struct {
	Content string `json:"content" binding:"required"`
}

// LastMessagePreview is the newest message shown in the chat list.
type LastMessagePreview struct {
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	SenderID  string    `json:"sender_id"`
}

// ChatSummary is one entry of the current user's chat list.
type ChatSummary struct {
	ID          string              `json:"id"`
	OtherUser   UserInfo            `json:"other_user"`
	LastMessage *LastMessagePreview `json:"last_message"`
	CreatedAt   time.Time           `json:"created_at"`
}

// ChatResponse is returned when a chat is created or fetched.
type ChatResponse struct {
	ID        string    `json:"id"`
	OtherUser UserInfo  `json:"other_user"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageResponse is one history entry, annotated relative to the requester.
type MessageResponse struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	SenderID  string    `json:"sender_id"`
	Sender    UserInfo  `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
	IsOwn     bool      `json:"is_own"`
}

// Event types pushed over live connections.
const (
	EventNewMessage = "new_message"
	EventNewPost    = "new_post"
	EventPosts      = "posts"
)

// MessagePayload is the message shape inside a pushed MessageEvent.
// It carries no is_own flag: the server cannot know each recipient's
// identity at fan-out time, so clients compare sender_id themselves.
type MessagePayload struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	SenderID  string    `json:"sender_id"`
	Sender    UserInfo  `json:"sender"`
	CreatedAt time.Time `json:"created_at"`
}

// MessageEvent is the wire payload dispatched to a chat room.
type MessageEvent struct {
	Type    string         `json:"type"`
	Message MessagePayload `json:"message"`
}

// PostEvent is the wire payload broadcast to the live feed.
type PostEvent struct {
	Type   string `json:"type"`
	PostID string `json:"post_id"`
	UserID string `json:"user_id"`
}
