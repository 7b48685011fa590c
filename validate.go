package equationshift

import (
	"fmt"
	"regexp"
	"unicode/utf8"
)

var (
	invalidChars = regexp.MustCompile(`[^0-9A-Za-z+*/\-^\s().,]`)
	singleLetter = regexp.MustCompile(`^[A-Za-z]$`)
)

// Validate checks a start equation and returns the first problem found as a
// message, or "" when the equation is acceptable.
func Validate(left, right, target string, cfg Config) string {
	switch {
	case left == "":
		return "The left equation part is empty"
	case right == "":
		return "The right equation part is empty"
	case invalidChars.MatchString(left):
		return "The left equation part includes invalid characters"
	case invalidChars.MatchString(right):
		return "The right equation part includes invalid characters"
	case target == "":
		return "The target variable is empty"
	case utf8.RuneCountInString(target) != 1:
		return "The target variable includes more than one character"
	case !singleLetter.MatchString(target):
		return "The target variable includes invalid characters"
	case !containsVariable(left, target[0]) && !containsVariable(right, target[0]):
		return "Both equation parts do not include the target variable " + target
	}
	if cfg.CheckIfEquationIsSolvable {
		solvable := cfg.withDefaults().IsSolvable
		if !solvable(left, right, target) {
			return fmt.Sprintf("The equation %s = %s is not solvable", left, right)
		}
	}
	return ""
}

// containsVariable reports whether v occurs as a whole identifier, so x does
// not count inside exp.
func containsVariable(s string, v byte) bool {
	for i := 0; i < len(s); i++ {
		if s[i] != v {
			continue
		}
		if (i == 0 || !isLetter(s[i-1])) && (i == len(s)-1 || !isLetter(s[i+1])) {
			return true
		}
	}
	return false
}

func isLetter(b byte) bool { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') }
