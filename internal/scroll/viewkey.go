package scroll

import "strings"

// ViewKey identifies a scrollable context, e.g. "day:2024-01-05" or
// "path:/days".
type ViewKey string

// DayKey is the key for a journal day.
func DayKey(day string) ViewKey {
	return ViewKey("day:" + day)
}

// PathKey is the key for a page that is not tied to a day.
func PathKey(path string) ViewKey {
	return ViewKey("path:" + path)
}

// ResolveKey derives the key from the active day, falling back to path.
func ResolveKey(day, path string) ViewKey {
	if day = strings.TrimSpace(day); day != "" {
		return DayKey(day)
	}
	if path == "" {
		path = "/"
	}
	return PathKey(path)
}

// Day returns the day a key refers to, if it is a day key.
func (k ViewKey) Day() (string, bool) {
	day, ok := strings.CutPrefix(string(k), "day:")
	return day, ok && day != ""
}
