package model

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// ログイン済みユーザーの識別情報（バックエンド発行のtokenを含む）
type UserIdentity struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	UserID   string `json:"userId"`
	Role     Role   `json:"role"`
	Email    string `json:"email"`
}

func (u UserIdentity) LoggedIn() bool {
	return u.Token != ""
}
