package models

type DailyCount struct {
	Date  string `json:"date" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

type StatsOverview struct {
	Users        int64            `json:"users"`
	Groups       int64            `json:"groups"`
	Friendships  int64            `json:"friendships"`
	Posts        int64            `json:"posts"`
	Messages     int64            `json:"messages"`
	PostsByMedia map[string]int64 `json:"postsByMediaType"`
	PostsPerDay  []DailyCount     `json:"postsPerDay"`
	OnlineUsers  int              `json:"onlineUsers"`
}

type UserStats struct {
	UserID        uint  `json:"userId"`
	Posts         int64 `json:"posts"`
	LikesReceived int64 `json:"likesReceived"`
	Friends       int64 `json:"friends"`
	Groups        int64 `json:"groups"`
	MessagesSent  int64 `json:"messagesSent"`
}
