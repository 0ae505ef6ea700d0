package cache

import "fmt"

// Fixed cache keys, one per logical collection. Every read and write goes
// through these constants so a key-name typo cannot split a collection.
const (
	KeyJobs             = "upkeep:jobs"
	KeyHighPriorityJobs = "upkeep:jobs:high"
	KeyProperties       = "upkeep:properties"
	KeySettings         = "upkeep:settings"
)

func UserPrefsKey(userID string) string {
	return fmt.Sprintf("upkeep:prefs:%s", userID)
}
