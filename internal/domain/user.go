package domain

import "time"

// User представляет учетную запись пользователя
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	IsSuperuser  bool      `json:"is_superuser"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}

// APIKey представляет ключ доступа, привязанный к проекту (а через него к команде)
type APIKey struct {
	ID        int64  `json:"id"`
	Label     string `json:"label"`
	ProjectID int64  `json:"project_id"`
	TeamID    int64  `json:"team_id"`
	UserID    int64  `json:"user_id"`
}

// Identity описывает аутентифицированного вызывающего.
// Key == nil означает обычную пользовательскую сессию.
type Identity struct {
	User *User
	Key  *APIKey
}

// IsAPIKey возвращает true если запрос выполнен с API ключом
func (i *Identity) IsAPIKey() bool {
	return i != nil && i.Key != nil
}

// IsSuperuser возвращает true если вызывающий является суперпользователем
func (i *Identity) IsSuperuser() bool {
	return i != nil && i.User != nil && i.User.IsSuperuser
}
