package queue

import "time"

// maxBackoff caps the redelivery delay. A busy lock usually clears within one refresh.
const maxBackoff = 5 * time.Minute

func backoffDelay(numDelivered uint64) time.Duration {
	// 1st failure -> 5s, 2nd -> 10s, 3rd -> 20s ... capped
	attempt := int(numDelivered)
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 16 {
		attempt = 16
	}
	d := time.Duration(5<<(attempt-1)) * time.Second
	if d > maxBackoff {
		d = maxBackoff
	}
	return d
}
