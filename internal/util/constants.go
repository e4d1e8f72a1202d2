package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

// gin 上下文中的键
const (
	CtxClaims = "user"
	CtxUserID = "userID"
)

const (
	DefaultRecommendationLimit = 5
	MaxRecommendationLimit     = 20
	DefaultLeaderboardLimit    = 10
	MaxLeaderboardLimit        = 100
	DefaultActivityDays        = 90
	MaxActivityDays            = 366
)

const MimeJSON = "application/json"
