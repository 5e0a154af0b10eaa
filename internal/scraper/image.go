package scraper

import "strings"

// LargestImage returns the URL of the last candidate in a srcset-style
// descriptor list ("a.jpg 100w, b.jpg 400w" yields "b.jpg").
//
// The site lists candidates in ascending size, so the last one is taken as
// the largest. Descriptors are not parsed or compared; an unordered list
// silently yields whatever comes last.
func LargestImage(srcset string) string {
	candidates := strings.Split(srcset, ",")
	for i := len(candidates) - 1; i >= 0; i-- {
		parts := strings.Fields(candidates[i])
		if len(parts) > 0 {
			return parts[0]
		}
	}
	return ""
}
