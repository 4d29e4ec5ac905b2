package worker

import "time"

// baseRetryDelay is the delay before the first retry; each further retry
// doubles it: 60s, 120s, 240s.
const baseRetryDelay = 60 * time.Second

// BackoffDelay returns the redelivery delay after a failed attempt.
// retryCount is the number of retries already performed (0 for the first
// failure).
func BackoffDelay(retryCount int) time.Duration {
	if retryCount < 0 {
		retryCount = 0
	}
	return baseRetryDelay * (1 << retryCount)
}
