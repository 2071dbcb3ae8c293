package lock

import (
	"strconv"
	"time"
)

// NumericIndex derives the integer index AI Client needs (§4.5): the
// lock id itself when numeric, otherwise floor(now_unix_seconds). This
// non-numeric fallback is preserved verbatim per an explicit open
// question in the source design notes — not re-litigated here.
func NumericIndex(lockID string) int64 {
	if n, err := strconv.ParseInt(lockID, 10, 64); err == nil {
		return n
	}
	return time.Now().Unix()
}
