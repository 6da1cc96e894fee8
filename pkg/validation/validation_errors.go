package validation

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldLabels maps struct field names to user-facing labels
var FieldLabels = map[string]string{
	"FullName":       "Full name",
	"DateOfBirth":    "Date of birth",
	"Gender":         "Gender",
	"NationalID":     "National ID",
	"Phone":          "Phone",
	"Address":        "Address",
	"ResumeURL":      "Résumé",
	"PhotoURL":       "Photo",
	"Education":      "Education",
	"Experience":     "Work experience",
	"Skills":         "Skills",
	"Certifications": "Certifications",
	"Degree":         "Degree",
	"Institution":    "Institution",
	"Company":        "Company",
	"StartDate":      "Start date",
	"EndDate":        "End date",
	"Email":          "Email",
	"Password":       "Password",
	"EmploymentType": "Employment type",
	"Requirements":   "Requirements",
	"Deadline":       "Deadline",
	"JobID":          "Job",
	"Status":         "Status",
}

// FormatValidationErrors converts validator.ValidationErrors to user-friendly messages
func FormatValidationErrors(err error) []string {
	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return []string{err.Error()}
	}

	messages := make([]string, 0, len(validationErrors))
	for _, e := range validationErrors {
		messages = append(messages, formatSingleError(e))
	}
	return messages
}

// FormatMessage joins all messages into one line for the error body.
func FormatMessage(err error) string {
	return strings.Join(FormatValidationErrors(err), "; ")
}

func formatSingleError(e validator.FieldError) string {
	label := getFieldLabel(e.Field())
	param := e.Param()

	switch e.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "min":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at least %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at least %s", label, param)
	case "max":
		if e.Kind().String() == "string" {
			return fmt.Sprintf("%s must be at most %s characters", label, param)
		}
		return fmt.Sprintf("%s must be at most %s", label, param)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(param, " ", ", "))
	case "email":
		return fmt.Sprintf("%s must be a valid email address", label)
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "datetime":
		return fmt.Sprintf("%s must use the format %s", label, param)
	case "national_id":
		return fmt.Sprintf("%s must contain exactly 13 digits", label)
	case "valid_name":
		return fmt.Sprintf("%s may only contain letters, spaces and . ' - /", label)
	case "valid_phone":
		return fmt.Sprintf("%s must be 7 to 15 digits, optionally starting with +", label)
	case "no_emoji":
		return fmt.Sprintf("%s must not contain emoji or symbols", label)
	case "max_current_year":
		return fmt.Sprintf("%s cannot be later than this year", label)
	default:
		return fmt.Sprintf("%s is invalid (%s)", label, e.Tag())
	}
}

func getFieldLabel(fieldName string) string {
	if label, ok := FieldLabels[fieldName]; ok {
		return label
	}
	return formatCamelCase(fieldName)
}

// formatCamelCase converts CamelCase to spaced words
func formatCamelCase(s string) string {
	var result strings.Builder
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result.WriteRune(' ')
		}
		result.WriteRune(r)
	}
	return result.String()
}
