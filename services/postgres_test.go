package services

import (
	"errors"
	"testing"

	"gorm.io/gorm"
)

// Callers tell a missing row apart from a store outage with errors.Is, so
// the wrapping must preserve the gorm sentinel.
func TestHandleErrorPreservesCause(t *testing.T) {
	ds := &PostgresService{}

	if err := ds.HandleError(nil); err != nil {
		t.Errorf("HandleError(nil) = %v, want nil", err)
	}

	err := ds.HandleError(gorm.ErrRecordNotFound)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("wrapped not-found lost its cause: %v", err)
	}

	err = ds.HandleError(errors.New("connection refused"))
	if errors.Is(err, gorm.ErrRecordNotFound) {
		t.Errorf("store outage classified as not-found: %v", err)
	}
}
