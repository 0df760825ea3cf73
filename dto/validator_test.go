package dto

import (
	"net/http"
	"testing"
)

func TestNewValidationError(t *testing.T) {
	err := GetValidator().Struct(&SubmitAnswerRequest{})
	if err == nil {
		t.Fatal("empty submission passed validation")
	}

	appErr := NewValidationError(err)
	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("StatusCode = %d, want %d", appErr.StatusCode, http.StatusBadRequest)
	}
	if appErr.Message != "Validation failed" {
		t.Errorf("Message = %q, want %q", appErr.Message, "Validation failed")
	}

	fields, ok := appErr.Data.([]ValidationError)
	if !ok || len(fields) == 0 {
		t.Fatalf("Data = %#v, want per-field errors", appErr.Data)
	}
	for _, fe := range fields {
		if fe.Field == "" || fe.Message == "" {
			t.Errorf("incomplete field error: %#v", fe)
		}
	}
}

func TestFormatValidationErrors(t *testing.T) {
	err := GetValidator().Struct(&RegisterRequest{
		Username: "ab",
		Email:    "not-an-email",
		Password: "weak",
	})
	if err == nil {
		t.Fatal("bad registration passed validation")
	}

	messages := map[string]string{}
	for _, fe := range FormatValidationErrors(err) {
		messages[fe.Field] = fe.Message
	}

	if messages["Username"] != "Username must be at least 3 characters" {
		t.Errorf("Username message = %q", messages["Username"])
	}
	if messages["Email"] != "Invalid email format" {
		t.Errorf("Email message = %q", messages["Email"])
	}
	if messages["Password"] != "Password must contain at least 8 characters with uppercase, lowercase and number" {
		t.Errorf("Password message = %q", messages["Password"])
	}
}
