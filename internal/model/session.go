package model

type Session struct {
	ID        string `db:"id"`
	UserID    int64  `db:"user_id"`
	ExpiresAt int64  `db:"expires_at"`
	CreatedAt int64  `db:"created_at"`
}
