package presence

import "time"

// DayFunc supplies the current calendar day key. One instance is shared
// process-wide; logins and encounters dedupe against the key it returns.
type DayFunc func() string

// UTCDayKey returns today's key in UTC as YYYY-MM-DD. The plaza runs on a
// single global calendar day with no timezone configuration.
func UTCDayKey() string {
	return time.Now().UTC().Format("2006-01-02")
}
