package validation

// StrengthChecks holds the five independent password checks. Callers render
// "missing requirement" hints from the raw booleans.
type StrengthChecks struct {
	Length    bool `json:"length"`
	Lowercase bool `json:"lowercase"`
	Uppercase bool `json:"uppercase"`
	Digit     bool `json:"number"`
	Special   bool `json:"special"`
}

// Strength is the result of scoring a candidate password.
type Strength struct {
	Score  int            `json:"score"`
	Label  string         `json:"label"`
	Color  string         `json:"color"`
	Checks StrengthChecks `json:"checks"`
}

var strengthLabels = [6]struct {
	label string
	color string
}{
	{"Very Weak", "red"},
	{"Weak", "red"},
	{"Fair", "orange"},
	{"Good", "yellow"},
	{"Strong", "green"},
	{"Very Strong", "green"},
}

// PasswordStrength scores a candidate password: one point per satisfied
// check, mapped to a discrete label and severity color. The function is
// total — every string, including the empty string, maps to exactly one
// result.
func PasswordStrength(password string) Strength {
	checks := StrengthChecks{
		Length:    len(password) >= 8,
		Lowercase: lowerRe.MatchString(password),
		Uppercase: upperRe.MatchString(password),
		Digit:     digitRe.MatchString(password),
		Special:   specialRe.MatchString(password),
	}

	score := 0
	for _, ok := range []bool{checks.Length, checks.Lowercase, checks.Uppercase, checks.Digit, checks.Special} {
		if ok {
			score++
		}
	}

	return Strength{
		Score:  score,
		Label:  strengthLabels[score].label,
		Color:  strengthLabels[score].color,
		Checks: checks,
	}
}
