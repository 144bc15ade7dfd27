package shared

import (
	"fmt"
	"time"
)

// UnityDayLockKey builds the advisory lock key serializing admissions for one
// unity on one calendar day.
func UnityDayLockKey(unityID string, day time.Time) string {
	return fmt.Sprintf("unity:%s:day:%s:admission", unityID, day.Format("2006-01-02"))
}
