package redis

// Key prefix for all leaderboard data
const keyPrefix = "typerace"

// leaderboardKey returns the Redis key for the results sorted set
func leaderboardKey() string {
	return keyPrefix + ":leaderboard"
}
