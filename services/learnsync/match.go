package learnsync

import (
	"fmt"
	"regexp"
	"strings"
	"thuassist-backend/lib/scrapers/weblearn"

	"github.com/antzucaro/matchr"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = strings.Trim(name, " \n\t")
	name = whitespaceRegex.ReplaceAllString(name, "")
	return name
}

// names below this similarity are not considered the same course
const minCourseSimilarity = 0.8

func courseSimilarity(course weblearn.Course, query string) float64 {
	query = NormalizeName(query)
	native := matchr.JaroWinkler(NormalizeName(course.Name), query, false)
	english := matchr.JaroWinkler(NormalizeName(course.EnglishName), query, false)
	if english > native {
		return english
	}
	return native
}

// selectCourses resolves each query against the course list by name
// similarity, checking both the native and the english name. An empty
// query list selects every course.
func selectCourses(available []weblearn.Course, queries []string) ([]weblearn.Course, error) {
	if len(queries) == 0 {
		return available, nil
	}

	selected := make([]weblearn.Course, 0, len(queries))
	seen := map[string]bool{}
	for _, query := range queries {
		best := -1
		bestSimilarity := 0.0
		for i, course := range available {
			similarity := courseSimilarity(course, query)
			if similarity > bestSimilarity {
				best = i
				bestSimilarity = similarity
			}
		}
		if best < 0 || bestSimilarity < minCourseSimilarity {
			return nil, fmt.Errorf("no course matches %q", query)
		}
		if seen[available[best].Id] {
			continue
		}
		seen[available[best].Id] = true
		selected = append(selected, available[best])
	}
	return selected, nil
}
