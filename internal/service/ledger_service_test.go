package service

import (
	"errors"
	"testing"

	"famledger/internal/config"
	"famledger/internal/validation"
)

func TestCreateAssetAssignsOwnership(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	family, _, _ := env.membership.CreateFamily(alice.ID, "Smith", "")

	personal, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Savings", TypeID: 1,
		PurchaseValue: amount("1000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1000"), CurrentCurrencyID: 1,
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}
	if personal.IsFamily || personal.OwnerID == nil || *personal.OwnerID != alice.ID {
		t.Errorf("personal asset ownership = %+v, want owner %d", personal.Ownership, alice.ID)
	}

	shared, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "House", TypeID: 3,
		PurchaseValue: amount("250000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("250000"), CurrentCurrencyID: 1,
		IsFamily:     true, FamilyID: &family.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset() family error: %v", err)
	}
	if !shared.IsFamily || shared.FamilyID == nil || *shared.FamilyID != family.ID || shared.OwnerID != nil {
		t.Errorf("family asset ownership = %+v, want family %d", shared.Ownership, family.ID)
	}

	// A family_id without the is_family flag does not share the record
	unflagged, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Car", TypeID: 2,
		PurchaseValue: amount("12000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("9000"), CurrentCurrencyID: 1,
		FamilyID:     &family.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset() unflagged error: %v", err)
	}
	if unflagged.IsFamily || unflagged.FamilyID != nil ||
		unflagged.OwnerID == nil || *unflagged.OwnerID != alice.ID {
		t.Errorf("unflagged asset ownership = %+v, want personal owner %d", unflagged.Ownership, alice.ID)
	}
}

func TestCreateAssetRejectsForeignFamily(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	_, _, _ = env.membership.CreateFamily(alice.ID, "Smith", "")
	jones, _, _ := env.membership.CreateFamily(bob.ID, "Jones", "")

	_, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Sneaky", TypeID: 1,
		PurchaseValue: amount("1"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1"), CurrentCurrencyID: 1,
		IsFamily:     true, FamilyID: &jones.ID,
	})
	if !errors.Is(err, ErrForbidden) {
		t.Errorf("CreateAsset() into foreign family error = %v, want ErrForbidden", err)
	}
}

func TestUpdateAssetPreservesOwnership(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	family, _, _ := env.membership.CreateFamily(alice.ID, "Smith", "")

	asset, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "House", TypeID: 3,
		PurchaseValue: amount("250000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("250000"), CurrentCurrencyID: 1,
		IsFamily:     true, FamilyID: &family.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}

	// The update input carries no family, but ownership must not flip
	updated, err := env.ledger.UpdateAsset(alice.ID, asset.ID, &AssetInput{
		Name: "House (renovated)", TypeID: 3,
		PurchaseValue: amount("250000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("280000"), CurrentCurrencyID: 1,
	})
	if err != nil {
		t.Fatalf("UpdateAsset() error: %v", err)
	}
	if !updated.IsFamily || updated.FamilyID == nil || *updated.FamilyID != family.ID {
		t.Errorf("ownership changed on update: %+v", updated.Ownership)
	}
	if updated.Name != "House (renovated)" {
		t.Errorf("name = %q", updated.Name)
	}
}

func TestLedgerVisibilityAcrossUsers(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	asset, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Private", TypeID: 1,
		PurchaseValue: amount("100"), PurchaseCurrencyID: 1,
		CurrentValue: amount("100"), CurrentCurrencyID: 1,
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}

	if _, err := env.ledger.GetAsset(bob.ID, asset.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("GetAsset() by stranger error = %v, want ErrNotFound", err)
	}
	if err := env.ledger.DeleteAsset(bob.ID, asset.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAsset() by stranger error = %v, want ErrNotFound", err)
	}
	if _, err := env.ledger.UpdateAsset(bob.ID, asset.ID, &AssetInput{
		Name: "Stolen", TypeID: 1,
		PurchaseValue: amount("1"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1"), CurrentCurrencyID: 1,
	}); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateAsset() by stranger error = %v, want ErrNotFound", err)
	}
}

func TestRecordLiabilityPaymentConflictOnSameDay(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")

	liability, err := env.ledger.CreateLiability(alice.ID, &LiabilityInput{
		Name: "Car loan", TypeID: 1,
		InitialAmount: amount("10000"), CurrencyID: 1,
		OpenDate:    "2025-01-15",
		CurrentDebt: amount("10000"),
	})
	if err != nil {
		t.Fatalf("CreateLiability() error: %v", err)
	}

	updated, err := env.ledger.RecordLiabilityPayment(alice.ID, liability.ID, &PaymentInput{
		Amount: amount("500"), Date: "2026-02-01",
		Principal: amount("400"), Interest: amount("100"),
	})
	if err != nil {
		t.Fatalf("RecordLiabilityPayment() error: %v", err)
	}
	if !updated.CurrentDebt.Equal(amount("9600")) {
		t.Errorf("current debt = %s, want 9600", updated.CurrentDebt)
	}

	_, err = env.ledger.RecordLiabilityPayment(alice.ID, liability.ID, &PaymentInput{
		Amount: amount("500"), Date: "2026-02-01",
		Principal: amount("400"), Interest: amount("100"),
	})
	if !errors.Is(err, ErrConflict) {
		t.Errorf("RecordLiabilityPayment() same day error = %v, want ErrConflict", err)
	}
}

func TestRecordLiabilityPaymentFloorsDebtAtZero(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")

	liability, err := env.ledger.CreateLiability(alice.ID, &LiabilityInput{
		Name: "Small loan", TypeID: 4,
		InitialAmount: amount("1000"), CurrencyID: 1,
		OpenDate:    "2025-06-01",
		CurrentDebt: amount("100"),
	})
	if err != nil {
		t.Fatalf("CreateLiability() error: %v", err)
	}

	updated, err := env.ledger.RecordLiabilityPayment(alice.ID, liability.ID, &PaymentInput{
		Amount: amount("450"), Date: "2026-03-01",
		Principal: amount("400"), Interest: amount("50"),
	})
	if err != nil {
		t.Fatalf("RecordLiabilityPayment() error: %v", err)
	}
	if !updated.CurrentDebt.Equal(amount("0")) {
		t.Errorf("current debt = %s, want 0 after overpayment", updated.CurrentDebt)
	}

	stored, err := env.ledger.GetLiability(alice.ID, liability.ID)
	if err != nil {
		t.Fatalf("GetLiability() error: %v", err)
	}
	if stored.CurrentDebt.IsNegative() {
		t.Errorf("stored debt = %s, must never go negative", stored.CurrentDebt)
	}
	if !stored.CurrentDebt.Equal(amount("0")) {
		t.Errorf("stored debt = %s, want 0", stored.CurrentDebt)
	}
}

func TestAssetShares(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")
	family, _, _ := env.membership.CreateFamily(alice.ID, "Smith", "")

	asset, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "House", TypeID: 3,
		PurchaseValue: amount("250000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("250000"), CurrentCurrencyID: 1,
		IsFamily:     true, FamilyID: &family.ID,
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}

	// No holder named: the caller holds the share. Fractions keep 4 places.
	mine, err := env.ledger.CreateAssetShare(alice.ID, asset.ID, &ShareInput{
		Share: amount("33.333333"), ValidFrom: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("CreateAssetShare() error: %v", err)
	}
	if mine.UserID == nil || *mine.UserID != alice.ID {
		t.Errorf("share holder = %+v, want caller %d", mine, alice.ID)
	}
	if !mine.Share.Equal(amount("33.3333")) {
		t.Errorf("share = %s, want 33.3333 (four decimal places)", mine.Share)
	}

	familyShare, err := env.ledger.CreateAssetShare(alice.ID, asset.ID, &ShareInput{
		Share: amount("66.6667"), HolderFamilyID: &family.ID, ValidFrom: "2025-01-01",
	})
	if err != nil {
		t.Fatalf("CreateAssetShare() family holder error: %v", err)
	}
	if familyShare.FamilyID == nil || *familyShare.FamilyID != family.ID || familyShare.UserID != nil {
		t.Errorf("family share holder = %+v, want family %d", familyShare, family.ID)
	}

	shares, err := env.ledger.ListAssetShares(alice.ID, asset.ID)
	if err != nil {
		t.Fatalf("ListAssetShares() error: %v", err)
	}
	if len(shares) != 2 {
		t.Errorf("ListAssetShares() = %d shares, want 2", len(shares))
	}

	// Strangers cannot see or touch the shares of a hidden asset
	if _, err := env.ledger.ListAssetShares(bob.ID, asset.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListAssetShares() by stranger error = %v, want ErrNotFound", err)
	}
	if err := env.ledger.DeleteAssetShare(bob.ID, asset.ID, mine.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("DeleteAssetShare() by stranger error = %v, want ErrNotFound", err)
	}

	if err := env.ledger.DeleteAssetShare(alice.ID, asset.ID, mine.ID); err != nil {
		t.Fatalf("DeleteAssetShare() error: %v", err)
	}
	shares, err = env.ledger.ListAssetShares(alice.ID, asset.ID)
	if err != nil {
		t.Fatalf("ListAssetShares() error: %v", err)
	}
	if len(shares) != 1 {
		t.Errorf("ListAssetShares() after delete = %d shares, want 1", len(shares))
	}
}

func TestAssetShareValidation(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	family, _, _ := env.membership.CreateFamily(alice.ID, "Smith", "")

	asset, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Boat", TypeID: 7,
		PurchaseValue: amount("5000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("4000"), CurrentCurrencyID: 1,
	})
	if err != nil {
		t.Fatalf("CreateAsset() error: %v", err)
	}

	var validationErr *validation.Error
	tests := []struct {
		name string
		in   ShareInput
	}{
		{"zero share", ShareInput{Share: amount("0"), ValidFrom: "2025-01-01"}},
		{"negative share", ShareInput{Share: amount("-10"), ValidFrom: "2025-01-01"}},
		{"over one hundred", ShareInput{Share: amount("100.0001"), ValidFrom: "2025-01-01"}},
		{"two holders", ShareInput{
			Share: amount("50"), HolderUserID: &alice.ID, HolderFamilyID: &family.ID,
			ValidFrom: "2025-01-01",
		}},
		{"missing valid_from", ShareInput{Share: amount("50")}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.ledger.CreateAssetShare(alice.ID, asset.ID, &tt.in)
			if !errors.As(err, &validationErr) {
				t.Errorf("CreateAssetShare() error = %v, want validation error", err)
			}
		})
	}
}

func TestInputValidationErrors(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")

	var validationErr *validation.Error

	_, err := env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "", TypeID: 1,
		PurchaseValue: amount("1"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1"), CurrentCurrencyID: 1,
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("CreateAsset() empty name error = %v, want validation error", err)
	}

	_, err = env.ledger.CreateAsset(alice.ID, &AssetInput{
		Name: "Negative", TypeID: 1,
		PurchaseValue: amount("-5"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1"), CurrentCurrencyID: 1,
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("CreateAsset() negative amount error = %v, want validation error", err)
	}

	_, err = env.ledger.CreateIncome(alice.ID, &IncomeInput{
		Name: "Salary", Amount: amount("100"), CurrencyID: 1,
		Date: "not-a-date", Type: "regular",
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("CreateIncome() bad date error = %v, want validation error", err)
	}

	_, err = env.ledger.CreateExpense(alice.ID, &ExpenseInput{
		Name: "Stuff", Amount: amount("10"), CurrencyID: 1,
		Date: "2026-01-01", Type: "luxury",
	})
	if !errors.As(err, &validationErr) {
		t.Errorf("CreateExpense() bad type error = %v, want validation error", err)
	}
}

func TestEntityLogVisibility(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	fund, err := env.ledger.CreateFund(alice.ID, &FundInput{
		Name: "Holiday", Goal: amount("3000"), CurrentValue: amount("500"), CurrencyID: 1,
	})
	if err != nil {
		t.Fatalf("CreateFund() error: %v", err)
	}

	entries, err := env.ledger.EntityLog(alice.ID, "fund", fund.ID)
	if err != nil {
		t.Fatalf("EntityLog() error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("EntityLog() = %d entries, want 1", len(entries))
	}

	if _, err := env.ledger.EntityLog(bob.ID, "fund", fund.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("EntityLog() by stranger error = %v, want ErrNotFound", err)
	}
}

func TestEntityLogCoversPayments(t *testing.T) {
	env := setupEnv(t, config.RejoinDeny)
	alice := env.createUser(t, "alice@example.com")
	bob := env.createUser(t, "bob@example.com")

	liability, err := env.ledger.CreateLiability(alice.ID, &LiabilityInput{
		Name: "Car loan", TypeID: 1,
		InitialAmount: amount("10000"), CurrencyID: 1,
		OpenDate:    "2025-01-15",
		CurrentDebt: amount("10000"),
	})
	if err != nil {
		t.Fatalf("CreateLiability() error: %v", err)
	}
	if _, err := env.ledger.RecordLiabilityPayment(alice.ID, liability.ID, &PaymentInput{
		Amount: amount("500"), Date: "2026-02-01",
		Principal: amount("400"), Interest: amount("100"),
	}); err != nil {
		t.Fatalf("RecordLiabilityPayment() error: %v", err)
	}

	payments, err := env.ledger.ListLiabilityPayments(alice.ID, liability.ID)
	if err != nil {
		t.Fatalf("ListLiabilityPayments() error: %v", err)
	}
	if len(payments) != 1 {
		t.Fatalf("ListLiabilityPayments() = %d payments, want 1", len(payments))
	}

	entries, err := env.ledger.EntityLog(alice.ID, "liability_payment", payments[0].ID)
	if err != nil {
		t.Fatalf("EntityLog() for payment error: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("EntityLog() for payment = %d entries, want 1", len(entries))
	}

	// Visibility follows the parent liability
	if _, err := env.ledger.EntityLog(bob.ID, "liability_payment", payments[0].ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("EntityLog() for payment by stranger error = %v, want ErrNotFound", err)
	}
}
