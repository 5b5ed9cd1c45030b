package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/use-agent/leadmart/config"
	"github.com/use-agent/leadmart/models"
)

func TestRun_RejectsInvalidMobileBeforeBrowser(t *testing.T) {
	tests := []struct {
		name   string
		mobile string
	}{
		{"empty", ""},
		{"too short", "12345"},
		{"letters", "not-a-number"},
		{"too long without prefix", "123456789012345"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// Sess stays nil: validation must fail before any page access.
			f := &Flow{Cfg: config.AuthConfig{Mobile: tt.mobile}}

			err := f.Run(context.Background())
			if err == nil {
				t.Fatal("expected validation error")
			}
			var stageErr *models.StageError
			if !errors.As(err, &stageErr) || stageErr.Code != models.ErrCodeInvalidInput {
				t.Errorf("error = %v, want %s", err, models.ErrCodeInvalidInput)
			}
			if f.State() != StateFailed {
				t.Errorf("state = %v, want %v", f.State(), StateFailed)
			}
		})
	}
}

func TestStateString(t *testing.T) {
	order := []State{
		StateNotStarted, StatePageLoaded, StateIdentifierEntered,
		StateCodeRequested, StateCodeEntered, StateVerified, StateFailed,
	}
	seen := map[string]bool{}
	for _, s := range order {
		name := s.String()
		if name == "" || seen[name] {
			t.Errorf("state %d has empty or duplicate name %q", s, name)
		}
		seen[name] = true
	}
}
