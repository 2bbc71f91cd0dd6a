package reporter

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var caseIDPattern = regexp.MustCompile(`\[([\d,]+)\]`)

// ExtractCaseID returns the content of the first "[123]" or "[123,456]" tag
// in title, unmodified, or "" when the title carries no tag.
func ExtractCaseID(title string) string {
	m := caseIDPattern.FindStringSubmatch(title)
	if len(m) != 2 {
		return ""
	}
	return m[1]
}

// ParseCaseIDs converts an extracted tag into ids. Empty elements, as in
// "[12,,13]" or "[,12]", are ignored.
func ParseCaseIDs(tag string) ([]int, error) {
	var ids []int
	for _, part := range strings.Split(tag, ",") {
		if part == "" {
			continue
		}
		id, err := strconv.Atoi(part)
		if err != nil {
			return nil, fmt.Errorf("invalid case id %q: %w", part, err)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		return nil, fmt.Errorf("no case id in %q", tag)
	}
	return ids, nil
}
