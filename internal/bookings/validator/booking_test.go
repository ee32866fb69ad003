package validator

import (
	"errors"
	"strings"
	"testing"
	"time"

	"roomsched/pkg/logger"
	"roomsched/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{
		Level:   "error",
		Format:  logger.JSON,
		Service: "test",
	})
}

func validRequest() *model.BookingRequest {
	return &model.BookingRequest{
		AttendeesCount: 4,
		Duration:       60,
		PreferredStart: time.Now().Add(2 * time.Hour),
		Flexibility:    30,
		Priority:       model.PriorityNormal,
		RoomName:       "Apollo",
	}
}

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(req *model.BookingRequest)
		wantError string
	}{
		{
			name:   "valid request passes",
			mutate: func(req *model.BookingRequest) {},
		},
		{
			name:   "room name is optional",
			mutate: func(req *model.BookingRequest) { req.RoomName = "" },
		},
		{
			name:      "zero attendees",
			mutate:    func(req *model.BookingRequest) { req.AttendeesCount = 0 },
			wantError: "AttendeesCount",
		},
		{
			name:      "zero duration",
			mutate:    func(req *model.BookingRequest) { req.Duration = 0 },
			wantError: "Duration",
		},
		{
			name:      "duration above a full day",
			mutate:    func(req *model.BookingRequest) { req.Duration = 1441 },
			wantError: "Duration",
		},
		{
			name:      "negative flexibility",
			mutate:    func(req *model.BookingRequest) { req.Flexibility = -5 },
			wantError: "Flexibility",
		},
		{
			name:      "unknown priority",
			mutate:    func(req *model.BookingRequest) { req.Priority = "WHENEVER" },
			wantError: "Priority",
		},
		{
			name:      "missing preferred start",
			mutate:    func(req *model.BookingRequest) { req.PreferredStart = time.Time{} },
			wantError: "PreferredStart",
		},
		{
			name: "whole window in the past",
			mutate: func(req *model.BookingRequest) {
				req.PreferredStart = time.Now().Add(-24 * time.Hour)
				req.Flexibility = 0
			},
			wantError: "PreferredStart",
		},
	}

	v := NewBookingValidator(testLogger())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := validRequest()
			tt.mutate(req)

			err := v.ValidateRequest(req)
			if tt.wantError == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}

			if err == nil {
				t.Fatal("expected a validation error")
			}
			if !strings.Contains(err.Error(), tt.wantError) {
				t.Errorf("expected error to mention %s, got: %v", tt.wantError, err)
			}
			var validationErrs ValidationErrors
			if !errors.As(err, &validationErrs) {
				t.Errorf("expected ValidationErrors, got %T", err)
			}
		})
	}
}

func TestValidateRequest_PastStartWithFlexibilityStillValid(t *testing.T) {
	// The preferred start already passed, but forward flexibility keeps part
	// of the window bookable.
	req := validRequest()
	req.PreferredStart = time.Now().Add(-10 * time.Minute)
	req.Flexibility = 60

	v := NewBookingValidator(testLogger())
	if err := v.ValidateRequest(req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
