package model

import (
	"testing"
	"time"
)

func TestUserPlanTransitions(t *testing.T) {
	all := []UserPlanStatus{
		UserPlanStatusPendingPayment, UserPlanStatusActive, UserPlanStatusTrial,
		UserPlanStatusExpired, UserPlanStatusCancelled, UserPlanStatusSuspended,
	}
	allowed := map[UserPlanStatus]map[UserPlanStatus]bool{
		UserPlanStatusPendingPayment: {
			UserPlanStatusActive: true, UserPlanStatusTrial: true,
			UserPlanStatusCancelled: true, UserPlanStatusExpired: true,
		},
		UserPlanStatusTrial: {
			UserPlanStatusActive: true, UserPlanStatusExpired: true,
			UserPlanStatusCancelled: true, UserPlanStatusSuspended: true,
		},
		UserPlanStatusActive: {
			UserPlanStatusExpired: true, UserPlanStatusCancelled: true,
			UserPlanStatusSuspended: true,
		},
		UserPlanStatusSuspended: {
			UserPlanStatusActive: true, UserPlanStatusCancelled: true,
		},
		UserPlanStatusExpired:   {UserPlanStatusActive: true},
		UserPlanStatusCancelled: {UserPlanStatusPendingPayment: true},
	}
	for _, from := range all {
		for _, to := range all {
			got := from.CanTransition(to)
			want := allowed[from][to]
			if got != want {
				t.Errorf("%s -> %s: got %v, want %v", from, to, got, want)
			}
		}
	}
}

func TestUserPlanEntitled(t *testing.T) {
	entitled := map[UserPlanStatus]bool{
		UserPlanStatusActive: true,
		UserPlanStatusTrial:  true,
	}
	for s := range userPlanTransitions {
		if got := s.Entitled(); got != entitled[s] {
			t.Errorf("%s entitled: got %v, want %v", s, got, entitled[s])
		}
	}
}

func TestUserPlanValidate(t *testing.T) {
	now := time.Now()
	up := &UserPlan{
		UserID:    "user-1",
		PlanID:    "plan-1",
		Status:    UserPlanStatusPendingPayment,
		StartDate: now,
		EndDate:   now.AddDate(0, 1, 0),
	}
	if err := up.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	up.EndDate = up.StartDate
	if err := up.Validate(); err == nil {
		t.Fatal("end date equal to start date should be rejected")
	}
}
