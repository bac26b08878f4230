package models

import "testing"

func TestPaymentStatusTerminal(t *testing.T) {
	tests := []struct {
		name   string
		status PaymentStatus
		want   bool
	}{
		{"pending is open", PaymentPending, false},
		{"approved is terminal", PaymentApproved, true},
		{"rejected is terminal", PaymentRejected, true},
		{"expired is terminal", PaymentExpired, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.status.Terminal(); got != tc.want {
				t.Errorf("Terminal() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestRiskLevelMax(t *testing.T) {
	tests := []struct {
		name string
		a, b RiskLevel
		want RiskLevel
	}{
		{"low vs low", RiskLow, RiskLow, RiskLow},
		{"low vs medium", RiskLow, RiskMedium, RiskMedium},
		{"high vs medium", RiskHigh, RiskMedium, RiskHigh},
		{"medium vs high", RiskMedium, RiskHigh, RiskHigh},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := tc.a.Max(tc.b); got != tc.want {
				t.Errorf("Max() = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestPaymentTypeValid(t *testing.T) {
	known := []PaymentType{
		PaymentAPIFee, PaymentLegalFiling, PaymentSubscription,
		PaymentServiceOrder, PaymentAdSpend, PaymentHardware, PaymentContractor,
	}
	for _, p := range known {
		if !p.Valid() {
			t.Errorf("%q should be valid", p)
		}
	}
	if PaymentType("bribe").Valid() {
		t.Error("unknown payment type should be invalid")
	}
}
