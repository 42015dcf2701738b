package users

import "time"

type User struct {
	ID           int64
	TelegramID   int64
	Name         string
	PasswordHash string
	Region       string
	JoinDate     time.Time
	LoggedIn     bool
	Approved     bool
}
