package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderTemplate   = "<%s>"
	choiceSeparatorLiteral      = "|"
	choiceUsageEmptyTemplate    = "`%s`"
	choiceUsageFullTemplate     = "`%s` %s"
	unsupportedChoiceTemplate   = "unsupported value %q, expected one of %s"
	choiceListSeparatorConstant = ", "
	emptyChoiceDisplayConstant  = "(empty)"
)

// FormatChoiceUsage builds a usage string listing the choices, with the default one upper-cased.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	displayedChoices := make([]string, 0, len(choices))
	normalizedDefault := normalizeChoice(defaultChoice)
	for _, choice := range uniqueChoices(choices) {
		if len(normalizedDefault) > 0 && normalizeChoice(choice) == normalizedDefault {
			choice = strings.ToUpper(choice)
		}
		displayedChoices = append(displayedChoices, choice)
	}

	placeholder := fmt.Sprintf(choicePlaceholderTemplate, strings.Join(displayedChoices, choiceSeparatorLiteral))
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

// NormalizeChoice matches value against choices ignoring case and surrounding whitespace
// and returns the choice as declared.
func NormalizeChoice(value string, choices []string) (string, error) {
	normalizedValue := normalizeChoice(value)
	declaredChoices := uniqueChoices(choices)
	for _, choice := range declaredChoices {
		if normalizeChoice(choice) == normalizedValue {
			return choice, nil
		}
	}

	displayedValue := strings.TrimSpace(value)
	if len(displayedValue) == 0 {
		displayedValue = emptyChoiceDisplayConstant
	}
	return "", fmt.Errorf(unsupportedChoiceTemplate, displayedValue, strings.Join(declaredChoices, choiceListSeparatorConstant))
}

func uniqueChoices(choices []string) []string {
	unique := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))
	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		normalized := normalizeChoice(trimmedChoice)
		if len(normalized) == 0 {
			continue
		}
		if _, exists := seen[normalized]; exists {
			continue
		}
		seen[normalized] = struct{}{}
		unique = append(unique, trimmedChoice)
	}
	return unique
}

func normalizeChoice(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
