package models

import (
	"testing"

	"github.com/shopspring/decimal"
)

func TestAssetROI(t *testing.T) {
	tests := []struct {
		name          string
		purchaseValue string
		currentValue  string
		want          string
	}{
		{
			name:          "20 percent gain",
			purchaseValue: "5000000",
			currentValue:  "6000000",
			want:          "20",
		},
		{
			name:          "loss",
			purchaseValue: "1000",
			currentValue:  "750",
			want:          "-25",
		},
		{
			name:          "zero purchase value yields zero",
			purchaseValue: "0",
			currentValue:  "6000000",
			want:          "0",
		},
		{
			name:          "negative purchase value yields zero",
			purchaseValue: "-100",
			currentValue:  "500",
			want:          "0",
		},
		{
			name:          "fractional result rounds to two places",
			purchaseValue: "300",
			currentValue:  "400",
			want:          "33.33",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			asset := Asset{
				PurchaseValue: decimal.RequireFromString(tt.purchaseValue),
				CurrentValue:  decimal.RequireFromString(tt.currentValue),
			}
			got := asset.ROI()
			if !got.Equal(decimal.RequireFromString(tt.want)) {
				t.Errorf("ROI() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestOwnershipValid(t *testing.T) {
	userID := int64(1)
	familyID := int64(2)

	tests := []struct {
		name      string
		ownership Ownership
		want      bool
	}{
		{name: "personal", ownership: PersonalOwnership(userID), want: true},
		{name: "family", ownership: FamilyOwnership(familyID), want: true},
		{name: "neither set", ownership: Ownership{}, want: false},
		{name: "both set", ownership: Ownership{OwnerID: &userID, FamilyID: &familyID}, want: false},
		{name: "family flag without family", ownership: Ownership{OwnerID: &userID, IsFamily: true}, want: false},
		{name: "family id without flag", ownership: Ownership{FamilyID: &familyID}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.ownership.Valid(); got != tt.want {
				t.Errorf("Valid() = %v, want %v", got, tt.want)
			}
		})
	}
}
