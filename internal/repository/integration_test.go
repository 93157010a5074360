package repository

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/database"
	"famledger/internal/models"
)

func setupTestDB(t *testing.T) *database.DB {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return db
}

func createTestUser(t *testing.T, db *database.DB, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: strings.SplitN(email, "@", 2)[0]}
	if err := NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func createTestFamily(t *testing.T, db *database.DB, name, joinCode string, creatorID int64) *models.NuclearFamily {
	t.Helper()
	family := &models.NuclearFamily{Name: name, JoinCode: joinCode, JoinPasswordHash: "hash"}
	if err := NewFamilyRepository(db).CreateWithAdmin(family, creatorID); err != nil {
		t.Fatalf("failed to create family: %v", err)
	}
	return family
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func TestFamilyCreationEnrollsAdmin(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamilyRepository(db)
	user := createTestUser(t, db, "alice@example.com")
	family := createTestFamily(t, db, "Smith", "SMITH001", user.ID)

	m, err := repo.GetMembership(user.ID, family.ID)
	if err != nil {
		t.Fatalf("GetMembership() error: %v", err)
	}
	if m == nil {
		t.Fatal("GetMembership() = nil, want admin membership")
	}
	if !m.IsAdmin() {
		t.Errorf("creator membership role=%s status=%s, want active admin", m.Role, m.Status)
	}
	for _, c := range models.AllCapabilities {
		if !m.Can(c) {
			t.Errorf("creator membership missing capability %s", c)
		}
	}

	count, err := repo.CountActiveAdmins(family.ID)
	if err != nil {
		t.Fatalf("CountActiveAdmins() error: %v", err)
	}
	if count != 1 {
		t.Errorf("CountActiveAdmins() = %d, want 1", count)
	}

	found, err := repo.GetByJoinCode("SMITH001")
	if err != nil {
		t.Fatalf("GetByJoinCode() error: %v", err)
	}
	if found == nil || found.ID != family.ID {
		t.Errorf("GetByJoinCode() = %+v, want family %d", found, family.ID)
	}
}

func TestDuplicateMembershipRejected(t *testing.T) {
	db := setupTestDB(t)
	repo := NewFamilyRepository(db)
	admin := createTestUser(t, db, "alice@example.com")
	joiner := createTestUser(t, db, "bob@example.com")
	family := createTestFamily(t, db, "Smith", "SMITH001", admin.ID)

	m := &models.FamilyMembership{
		UserID: joiner.ID, FamilyID: family.ID,
		Role: models.RoleParent, Status: models.StatusActive,
	}
	if err := repo.CreateMembership(m); err != nil {
		t.Fatalf("CreateMembership() error: %v", err)
	}

	dup := &models.FamilyMembership{
		UserID: joiner.ID, FamilyID: family.ID,
		Role: models.RoleParent, Status: models.StatusActive,
	}
	if err := repo.CreateMembership(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateMembership() duplicate error = %v, want ErrDuplicate", err)
	}
}

func TestDuplicateJoinCodeRejected(t *testing.T) {
	db := setupTestDB(t)
	user := createTestUser(t, db, "alice@example.com")
	createTestFamily(t, db, "Smith", "SAMECODE", user.ID)

	family := &models.NuclearFamily{Name: "Jones", JoinCode: "SAMECODE", JoinPasswordHash: "hash"}
	err := NewFamilyRepository(db).CreateWithAdmin(family, user.ID)
	if !errors.Is(err, ErrDuplicate) {
		t.Errorf("CreateWithAdmin() duplicate code error = %v, want ErrDuplicate", err)
	}
}

func TestAssetVisibilityScope(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetRepository(db)
	alice := createTestUser(t, db, "alice@example.com")
	bob := createTestUser(t, db, "bob@example.com")
	family := createTestFamily(t, db, "Smith", "SMITH001", alice.ID)

	bobM := &models.FamilyMembership{
		UserID: bob.ID, FamilyID: family.ID,
		Role: models.RoleParent, Status: models.StatusActive,
	}
	if err := NewFamilyRepository(db).CreateMembership(bobM); err != nil {
		t.Fatalf("CreateMembership() error: %v", err)
	}

	personal := &models.Asset{
		Name: "Alice savings", TypeID: 1,
		PurchaseValue: amount("1000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("1000"), CurrentCurrencyID: 1,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := assets.Create(personal, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	shared := &models.Asset{
		Name: "Family home", TypeID: 3,
		PurchaseValue: amount("250000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("300000"), CurrentCurrencyID: 1,
		Ownership: models.FamilyOwnership(family.ID),
	}
	if err := assets.Create(shared, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	bobScope := Scope{UserID: bob.ID, FamilyIDs: []int64{family.ID}}
	visible, err := assets.List(bobScope)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != shared.ID {
		t.Errorf("List() for family member = %d assets, want only the family home", len(visible))
	}

	hidden, err := assets.GetByID(personal.ID, bobScope)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if hidden != nil {
		t.Error("GetByID() returned another member's personal asset")
	}

	// A member whose family membership lapsed sees nothing shared
	leftScope := Scope{UserID: bob.ID}
	visible, err = assets.List(leftScope)
	if err != nil {
		t.Fatalf("List() error: %v", err)
	}
	if len(visible) != 0 {
		t.Errorf("List() without family scope = %d assets, want 0", len(visible))
	}
}

func TestRecordValuationReplacesSameDate(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetRepository(db)
	alice := createTestUser(t, db, "alice@example.com")

	asset := &models.Asset{
		Name: "Brokerage", TypeID: 6,
		PurchaseValue: amount("5000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("5000"), CurrentCurrencyID: 1,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := assets.Create(asset, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	day := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	first := &models.AssetValueHistory{AssetID: asset.ID, Value: amount("5200"), CurrencyID: 1, Date: day}
	if err := assets.RecordValuation(asset, first, alice.ID); err != nil {
		t.Fatalf("RecordValuation() error: %v", err)
	}

	second := &models.AssetValueHistory{AssetID: asset.ID, Value: amount("5400"), CurrencyID: 1, Date: day}
	if err := assets.RecordValuation(asset, second, alice.ID); err != nil {
		t.Fatalf("RecordValuation() same date error: %v", err)
	}

	history, err := assets.ListValuations(asset.ID)
	if err != nil {
		t.Fatalf("ListValuations() error: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("ListValuations() = %d rows, want 1 after same-date revaluation", len(history))
	}
	if !history[0].Value.Equal(amount("5400")) {
		t.Errorf("valuation = %s, want 5400", history[0].Value)
	}

	scope := Scope{UserID: alice.ID}
	refreshed, err := assets.GetByID(asset.ID, scope)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !refreshed.CurrentValue.Equal(amount("5400")) {
		t.Errorf("asset current value = %s, want 5400", refreshed.CurrentValue)
	}
	if refreshed.LastValuationDate == nil {
		t.Error("asset last valuation date not set")
	}
}

func TestRecordPaymentReducesDebt(t *testing.T) {
	db := setupTestDB(t)
	liabilities := NewLiabilityRepository(db)
	alice := createTestUser(t, db, "alice@example.com")

	liability := &models.Liability{
		Name: "Car loan", TypeID: 1,
		InitialAmount: amount("10000"), CurrencyID: 1,
		OpenDate:    time.Date(2025, 1, 15, 0, 0, 0, 0, time.UTC),
		CurrentDebt: amount("10000"),
		Ownership:   models.PersonalOwnership(alice.ID),
	}
	if err := liabilities.Create(liability, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	day := time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC)
	payment := &models.LiabilityPayment{
		LiabilityID: liability.ID,
		Amount:      amount("500"), Date: day,
		Principal: amount("400"), Interest: amount("100"),
	}
	if err := liabilities.RecordPayment(liability, payment, alice.ID); err != nil {
		t.Fatalf("RecordPayment() error: %v", err)
	}
	if !liability.CurrentDebt.Equal(amount("9600")) {
		t.Errorf("current debt = %s, want 9600", liability.CurrentDebt)
	}

	again := &models.LiabilityPayment{
		LiabilityID: liability.ID,
		Amount:      amount("500"), Date: day,
		Principal: amount("400"), Interest: amount("100"),
	}
	if err := liabilities.RecordPayment(liability, again, alice.ID); !errors.Is(err, ErrDuplicate) {
		t.Errorf("RecordPayment() same date error = %v, want ErrDuplicate", err)
	}

	scope := Scope{UserID: alice.ID}
	stored, err := liabilities.GetByID(liability.ID, scope)
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !stored.CurrentDebt.Equal(amount("9600")) {
		t.Errorf("stored debt = %s, want 9600 (duplicate payment must not commit)", stored.CurrentDebt)
	}
	if !stored.TotalPaid().Equal(amount("400")) {
		t.Errorf("TotalPaid() = %s, want 400", stored.TotalPaid())
	}
}

func TestRecordPaymentNeverOverdrawsDebt(t *testing.T) {
	db := setupTestDB(t)
	liabilities := NewLiabilityRepository(db)
	alice := createTestUser(t, db, "alice@example.com")

	liability := &models.Liability{
		Name: "Almost repaid", TypeID: 4,
		InitialAmount: amount("1000"), CurrencyID: 1,
		OpenDate:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		CurrentDebt: amount("100"),
		Ownership:   models.PersonalOwnership(alice.ID),
	}
	if err := liabilities.Create(liability, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	payment := &models.LiabilityPayment{
		LiabilityID: liability.ID,
		Amount:      amount("450"), Date: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
		Principal: amount("400"), Interest: amount("50"),
	}
	if err := liabilities.RecordPayment(liability, payment, alice.ID); err != nil {
		t.Fatalf("RecordPayment() error: %v", err)
	}
	if !liability.CurrentDebt.Equal(amount("0")) {
		t.Errorf("current debt = %s, want 0 when principal exceeds the debt", liability.CurrentDebt)
	}

	stored, err := liabilities.GetByID(liability.ID, Scope{UserID: alice.ID})
	if err != nil {
		t.Fatalf("GetByID() error: %v", err)
	}
	if !stored.CurrentDebt.Equal(amount("0")) {
		t.Errorf("stored debt = %s, want 0", stored.CurrentDebt)
	}
}

func TestCurrencyRateUniquePerDate(t *testing.T) {
	db := setupTestDB(t)
	refdata := NewRefDataRepository(db)

	day := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	rate := &models.CurrencyRate{CurrencyID: 1, Date: day, RateToBase: amount("1.09500000")}
	if err := refdata.RecordRate(rate); err != nil {
		t.Fatalf("RecordRate() error: %v", err)
	}
	if rate.ID == 0 {
		t.Error("RecordRate() did not assign an id")
	}

	dup := &models.CurrencyRate{CurrencyID: 1, Date: day, RateToBase: amount("1.10000000")}
	if err := refdata.RecordRate(dup); !errors.Is(err, ErrDuplicate) {
		t.Errorf("RecordRate() same date error = %v, want ErrDuplicate", err)
	}

	later := &models.CurrencyRate{
		CurrencyID: 1, Date: day.AddDate(0, 0, 1), RateToBase: amount("1.10250000"),
	}
	if err := refdata.RecordRate(later); err != nil {
		t.Fatalf("RecordRate() next day error: %v", err)
	}

	rates, err := refdata.ListRates(1)
	if err != nil {
		t.Fatalf("ListRates() error: %v", err)
	}
	if len(rates) != 2 {
		t.Fatalf("ListRates() = %d rates, want 2", len(rates))
	}
	if !rates[0].RateToBase.Equal(amount("1.1025")) {
		t.Errorf("newest rate = %s, want 1.1025", rates[0].RateToBase)
	}
}

func TestAuditTrailForAssetLifecycle(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetRepository(db)
	logs := NewFinanceLogRepository(db)
	alice := createTestUser(t, db, "alice@example.com")

	asset := &models.Asset{
		Name: "Bike", TypeID: 7,
		PurchaseValue: amount("300"), PurchaseCurrencyID: 1,
		CurrentValue: amount("300"), CurrentCurrencyID: 1,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := assets.Create(asset, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	before := *asset
	after := *asset
	after.Name = "Road bike"
	after.CurrentValue = amount("250")
	if err := assets.Update(&before, &after, alice.ID); err != nil {
		t.Fatalf("Update() error: %v", err)
	}

	if err := assets.Delete(&after, alice.ID); err != nil {
		t.Fatalf("Delete() error: %v", err)
	}

	entries, err := logs.ListForEntity("asset", asset.ID)
	if err != nil {
		t.Fatalf("ListForEntity() error: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("ListForEntity() = %d entries, want 3", len(entries))
	}

	actions := map[string]models.FinanceLog{}
	for _, e := range entries {
		actions[e.Action] = e
	}

	created, ok := actions[models.LogActionCreate]
	if !ok {
		t.Fatal("missing create entry")
	}
	if created.Before != nil {
		t.Error("create entry has a before snapshot")
	}
	var snapshot models.Asset
	if err := json.Unmarshal(created.After, &snapshot); err != nil {
		t.Fatalf("failed to decode after snapshot: %v", err)
	}
	if snapshot.Name != "Bike" {
		t.Errorf("create snapshot name = %q, want Bike", snapshot.Name)
	}
	if created.UserID == nil || *created.UserID != alice.ID {
		t.Error("create entry missing acting user")
	}

	updated, ok := actions[models.LogActionUpdate]
	if !ok {
		t.Fatal("missing update entry")
	}
	if updated.Before == nil || updated.After == nil {
		t.Error("update entry must carry both snapshots")
	}

	deleted, ok := actions[models.LogActionDelete]
	if !ok {
		t.Fatal("missing delete entry")
	}
	if deleted.After != nil {
		t.Error("delete entry has an after snapshot")
	}
}

func TestLiabilitySummariesFlagUnlinkedDebt(t *testing.T) {
	db := setupTestDB(t)
	liabilities := NewLiabilityRepository(db)
	entries := NewEntryRepository(db)
	alice := createTestUser(t, db, "alice@example.com")
	scope := Scope{UserID: alice.ID}

	linked := &models.Liability{
		Name: "Mortgage", TypeID: 2,
		InitialAmount: amount("200000"), CurrencyID: 1,
		OpenDate:    time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		CurrentDebt: amount("190000"),
		Ownership:   models.PersonalOwnership(alice.ID),
	}
	if err := liabilities.Create(linked, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}
	unlinked := &models.Liability{
		Name: "Private loan", TypeID: 4,
		InitialAmount: amount("3000"), CurrencyID: 1,
		OpenDate:    time.Date(2025, 9, 1, 0, 0, 0, 0, time.UTC),
		CurrentDebt: amount("3000"),
		Ownership:   models.PersonalOwnership(alice.ID),
	}
	if err := liabilities.Create(unlinked, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	expense := &models.Expense{
		Name: "Mortgage payment", Amount: amount("1200"), CurrencyID: 1,
		Date:        time.Date(2026, 1, 5, 0, 0, 0, 0, time.UTC),
		LiabilityID: &linked.ID,
		Type:        models.ExpenseMandatory,
		Ownership:   models.PersonalOwnership(alice.ID),
	}
	if err := entries.CreateExpense(expense, alice.ID); err != nil {
		t.Fatalf("CreateExpense() error: %v", err)
	}

	summaries, err := liabilities.ListSummaries(scope)
	if err != nil {
		t.Fatalf("ListSummaries() error: %v", err)
	}
	if len(summaries) != 2 {
		t.Fatalf("ListSummaries() = %d rows, want 2", len(summaries))
	}
	for _, s := range summaries {
		switch s.ID {
		case linked.ID:
			if !s.HasLinkedExpenses {
				t.Error("mortgage should be flagged as linked")
			}
		case unlinked.ID:
			if s.HasLinkedExpenses {
				t.Error("private loan should be flagged as unlinked")
			}
		}
	}

	totals, err := liabilities.SumDebt(scope)
	if err != nil {
		t.Fatalf("SumDebt() error: %v", err)
	}
	if !totals.TotalDebt.Equal(amount("193000")) {
		t.Errorf("total debt = %s, want 193000", totals.TotalDebt)
	}
	if totals.Count != 2 {
		t.Errorf("count = %d, want 2", totals.Count)
	}
}

func TestAssetFlowTotals(t *testing.T) {
	db := setupTestDB(t)
	assets := NewAssetRepository(db)
	entries := NewEntryRepository(db)
	alice := createTestUser(t, db, "alice@example.com")

	asset := &models.Asset{
		Name: "Rental flat", TypeID: 3,
		PurchaseValue: amount("80000"), PurchaseCurrencyID: 1,
		CurrentValue: amount("90000"), CurrentCurrencyID: 1,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := assets.Create(asset, alice.ID); err != nil {
		t.Fatalf("Create() error: %v", err)
	}

	income := &models.Income{
		Name: "Rent", Amount: amount("700"), CurrencyID: 1,
		Date:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		AssetID:   &asset.ID,
		Type:      models.IncomeRegular,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := entries.CreateIncome(income, alice.ID); err != nil {
		t.Fatalf("CreateIncome() error: %v", err)
	}

	expense := &models.Expense{
		Name: "Repairs", Amount: amount("150"), CurrencyID: 1,
		Date:      time.Date(2026, 1, 20, 0, 0, 0, 0, time.UTC),
		AssetID:   &asset.ID,
		Type:      models.ExpenseOptional,
		Ownership: models.PersonalOwnership(alice.ID),
	}
	if err := entries.CreateExpense(expense, alice.ID); err != nil {
		t.Fatalf("CreateExpense() error: %v", err)
	}

	flows, err := entries.AssetFlowTotals(asset.ID)
	if err != nil {
		t.Fatalf("AssetFlowTotals() error: %v", err)
	}
	if !flows.NetIncome().Equal(amount("550")) {
		t.Errorf("NetIncome() = %s, want 550", flows.NetIncome())
	}
}
