package domain

import "time"

// Post is the GORM model for the posts table.
type Post struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Text      string    `gorm:"type:text"`
	ImagePath *string   `gorm:"type:varchar(512)"`
	UserID    string    `gorm:"type:varchar(36);not null;index"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (Post) TableName() string { return "posts" }

// PostLike is the GORM model for the post_likes table.
type PostLike struct {
	ID     string `gorm:"type:varchar(36);primaryKey"`
	UserID string `gorm:"type:varchar(36);not null;index:idx_post_likes_user_post,unique"`
	PostID string `gorm:"type:varchar(36);not null;index:idx_post_likes_user_post,unique"`
}

func (PostLike) TableName() string { return "post_likes" }

// PostReply is the GORM model for the post_replies table.
type PostReply struct {
	ID        string    `gorm:"type:varchar(36);primaryKey"`
	Reply     string    `gorm:"type:text;not null"`
	PostID    string    `gorm:"type:varchar(36);not null;index"`
	UserID    string    `gorm:"type:varchar(36);not null"`
	CreatedAt time.Time `gorm:"autoCreateTime"`
}

func (PostReply) TableName() string { return "post_replies" }

// ReplyLike is the GORM model for the reply_likes table.
type ReplyLike struct {
	ID      string `gorm:"type:varchar(36);primaryKey"`
	UserID  string `gorm:"type:varchar(36);not null;index:idx_reply_likes_user_reply,unique"`
	ReplyID string `gorm:"type:varchar(36);not null;index:idx_reply_likes_user_reply,unique"`
}

func (ReplyLike) TableName() string { return "reply_likes" }

// PostAuthor is the reduced user shape embedded in feed entries.
type PostAuthor struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

// PostResponse is one entry of the post feed.
type PostResponse struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	CreatedAt  time.Time  `json:"created_at"`
	LikesCount int64      `json:"likes_count"`
	IsLiked    bool       `json:"is_liked"`
	ImagePath  *string    `json:"image_path"`
	ReplyCount int64      `json:"reply_count"`
	User       PostAuthor `json:"user"`
}

// ReplyResponse is one reply under a post.
type ReplyResponse struct {
	ID        string    `json:"id"`
	Reply     string    `json:"reply"`
	CreatedAt time.Time `json:"created_at"`
	LikeCount int64     `json:"like_count"`
	User      UserInfo  `json:"user"`
}
