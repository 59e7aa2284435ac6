package model

import "time"

// LeaderboardEntry holds a user's scores. The stored rank is not authoritative;
// it is recomputed by sorting whenever a ranking is requested.
type LeaderboardEntry struct {
	UserID       string    `bson:"_id" json:"userId"`
	Rank         int       `bson:"rank" json:"rank"`
	Nickname     string    `bson:"nickname" json:"nickname"`
	AvatarID     string    `bson:"avatarId" json:"avatarId"`
	Score        int       `bson:"score" json:"score"`
	Achievements []string  `bson:"achievements" json:"achievements"`
	WeeklyScore  int       `bson:"weeklyScore" json:"weeklyScore"`
	MonthlyScore int       `bson:"monthlyScore" json:"monthlyScore"`
	AllTimeScore int       `bson:"allTimeScore" json:"allTimeScore"`
	CreatedAt    time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt    time.Time `bson:"updatedAt" json:"updatedAt"`
}

type UserRank struct {
	UserID     string  `json:"userId"`
	Rank       int     `json:"rank"`
	Score      int     `json:"score"`
	TotalUsers int     `json:"totalUsers"`
	Percentile float64 `json:"percentile"`
}

// LeaderboardPage is the API response for a leaderboard listing.
type LeaderboardPage struct {
	Period     string             `json:"period"`
	Entries    []LeaderboardEntry `json:"entries"`
	NextCursor string             `json:"nextCursor,omitempty"`
}
