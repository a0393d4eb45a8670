// internal/services/clock.go
package services

import "time"

// Clock supplies the current time to every expiry comparison and approval
// timestamp. Production wiring passes time.Now; tests pass a fixed value.
type Clock func() time.Time
