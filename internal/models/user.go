package model

import "time"

// Credential is the username/password record layered on top of an anonymous
// session identity. The document key is the session's user id, so credential,
// profile, settings and leaderboard entry all share one primary key.
type Credential struct {
	UserID    string    `bson:"_id" json:"userId"`
	Username  string    `bson:"username" json:"username"`
	Password  string    `bson:"password" json:"-"` // bcrypt hash, never in JSON
	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

type Profile struct {
	ID              string    `bson:"_id" json:"id"`
	Nickname        string    `bson:"nickname" json:"nickname"`
	AvatarID        string    `bson:"avatarId" json:"avatarId"`
	ExperienceLevel string    `bson:"experienceLevel" json:"experienceLevel"`
	CreatedAt       time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time `bson:"updatedAt" json:"updatedAt"`
}

type NotificationSettings struct {
	Enabled bool `bson:"enabled" json:"enabled"`
}

type AvatarRef struct {
	ID  string `bson:"id" json:"id"`
	URL string `bson:"url,omitempty" json:"url,omitempty"`
}

type Settings struct {
	ID                string               `bson:"_id" json:"id"`
	Notifications     NotificationSettings `bson:"notifications" json:"notifications"`
	ShowOnLeaderboard bool                 `bson:"showOnLeaderboard" json:"showOnLeaderboard"`
	Nickname          string               `bson:"nickname" json:"nickname"`
	Avatar            AvatarRef            `bson:"avatar" json:"avatar"`
	CreatedAt         time.Time            `bson:"createdAt" json:"createdAt"`
	UpdatedAt         time.Time            `bson:"updatedAt" json:"updatedAt"`
}

// Account is the logical union of the four records sharing one session
// identity, plus the session token issued for subsequent requests.
type Account struct {
	UserID   string   `json:"userId"`
	Username string   `json:"username"`
	Token    string   `json:"token,omitempty"`
	Profile  Profile  `json:"profile"`
	Settings Settings `json:"settings"`
}
