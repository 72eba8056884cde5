package common

import "fmt"

const (
	RedisKeyPlatformStatistic = "statistic:platform"
	RedisKeyPopularEvents     = "popular_events"
)

func RedisKeyEventStatistic(eventID string) string {
	return fmt.Sprintf("statistic:event:%s", eventID)
}
