package validation

import (
	"fmt"
	"regexp"
)

var postSlugRegex = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

// ValidatePostSlug accepts lowercase words joined by single hyphens, which
// covers generated uuid slugs.
func ValidatePostSlug(slug string) error {
	if len(slug) > 120 {
		return fmt.Errorf("slug must not exceed 120 characters")
	}
	if !postSlugRegex.MatchString(slug) {
		return fmt.Errorf("slug may only contain lowercase letters, numbers and single hyphens")
	}
	return nil
}
