package service

import (
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/models"
	"famledger/internal/repository"
	"famledger/internal/validation"
)

// inputDateLayout is the wire format for calendar dates
const inputDateLayout = "2006-01-02"

// LedgerService implements the financial records: assets, funds, liabilities,
// incomes, expenses, categories and budget plans. Every operation resolves
// the caller's visibility scope from live membership rows, and every create
// assigns ownership server-side: a record belongs to the caller unless
// is_family is set together with a family_id, in which case the caller must
// be an active member of that family. Client-supplied owner fields are never
// trusted.
type LedgerService struct {
	membership  *MembershipService
	assets      *repository.AssetRepository
	funds       *repository.FundRepository
	liabilities *repository.LiabilityRepository
	entries     *repository.EntryRepository
	categories  *repository.CategoryRepository
	budgets     *repository.BudgetRepository
	logs        *repository.FinanceLogRepository
}

// NewLedgerService creates a new ledger service
func NewLedgerService(membership *MembershipService,
	assets *repository.AssetRepository, funds *repository.FundRepository,
	liabilities *repository.LiabilityRepository, entries *repository.EntryRepository,
	categories *repository.CategoryRepository, budgets *repository.BudgetRepository,
	logs *repository.FinanceLogRepository) *LedgerService {
	return &LedgerService{
		membership:  membership,
		assets:      assets,
		funds:       funds,
		liabilities: liabilities,
		entries:     entries,
		categories:  categories,
		budgets:     budgets,
		logs:        logs,
	}
}

// resolveOwnership assigns ownership for a new record. The record is family
// scoped only when the client asks for it with is_family and names a family
// the caller is active in; a family_id sent without is_family is ignored and
// the record stays personal.
func (s *LedgerService) resolveOwnership(scope repository.Scope, isFamily bool, familyID *int64) (models.Ownership, error) {
	if !isFamily || familyID == nil {
		return models.PersonalOwnership(scope.UserID), nil
	}
	if !scope.CanSeeFamily(*familyID) {
		return models.Ownership{}, ErrForbidden
	}
	return models.FamilyOwnership(*familyID), nil
}

func (s *LedgerService) scopeFor(userID int64) (repository.Scope, error) {
	return s.membership.ScopeFor(userID)
}

func parseDate(field, value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, validation.NewError(field, "is required")
	}
	d, err := time.Parse(inputDateLayout, value)
	if err != nil {
		return time.Time{}, validation.NewError(field, "must be a YYYY-MM-DD date")
	}
	return d, nil
}

func parseOptionalDate(field, value string) (*time.Time, error) {
	if value == "" {
		return nil, nil
	}
	d, err := time.Parse(inputDateLayout, value)
	if err != nil {
		return nil, validation.NewError(field, "must be a YYYY-MM-DD date")
	}
	return &d, nil
}

// AssetInput carries the client-editable asset fields
type AssetInput struct {
	Name               string          `json:"name"`
	TypeID             int64           `json:"type_id"`
	CategoryID         *int64          `json:"category_id"`
	PurchaseValue      decimal.Decimal `json:"purchase_value"`
	PurchaseCurrencyID int64           `json:"purchase_currency_id"`
	CurrentValue       decimal.Decimal `json:"current_value"`
	CurrentCurrencyID  int64           `json:"current_currency_id"`
	IsFamily           bool            `json:"is_family"`
	FamilyID           *int64          `json:"family_id"`
}

func (in *AssetInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateAmount("purchase_value", in.PurchaseValue); err != nil {
		return err
	}
	return validation.ValidateAmount("current_value", in.CurrentValue)
}

// CreateAsset creates an asset owned by the caller or shared with a family
func (s *LedgerService) CreateAsset(userID int64, in *AssetInput) (*models.Asset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	asset := &models.Asset{
		Name:               in.Name,
		TypeID:             in.TypeID,
		CategoryID:         in.CategoryID,
		PurchaseValue:      in.PurchaseValue,
		PurchaseCurrencyID: in.PurchaseCurrencyID,
		CurrentValue:       in.CurrentValue,
		CurrentCurrencyID:  in.CurrentCurrencyID,
		Ownership:          ownership,
	}
	if err := s.assets.Create(asset, userID); err != nil {
		return nil, err
	}
	return asset, nil
}

// UpdateAsset edits an asset's fields. Ownership never changes after create.
func (s *LedgerService) UpdateAsset(userID, assetID int64, in *AssetInput) (*models.Asset, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.assets.GetByID(assetID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.TypeID = in.TypeID
	after.CategoryID = in.CategoryID
	after.PurchaseValue = in.PurchaseValue
	after.PurchaseCurrencyID = in.PurchaseCurrencyID
	after.CurrentValue = in.CurrentValue
	after.CurrentCurrencyID = in.CurrentCurrencyID

	if err := s.assets.Update(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteAsset removes a visible asset
func (s *LedgerService) DeleteAsset(userID, assetID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.assets.GetByID(assetID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.assets.Delete(existing, userID)
}

// GetAsset returns a visible asset
func (s *LedgerService) GetAsset(userID, assetID int64) (*models.Asset, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	asset, err := s.assets.GetByID(assetID, scope)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, ErrNotFound
	}
	return asset, nil
}

// ListAssets returns all assets visible to the caller
func (s *LedgerService) ListAssets(userID int64) ([]models.Asset, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.assets.List(scope)
}

// ValuationInput books one valuation for an asset on a calendar date
type ValuationInput struct {
	Value      decimal.Decimal `json:"value"`
	CurrencyID int64           `json:"currency_id"`
	Date       string          `json:"date"`
}

// RecordAssetValue books a valuation and refreshes the asset's current value.
// Re-valuing the same date replaces the earlier figure.
func (s *LedgerService) RecordAssetValue(userID, assetID int64, in *ValuationInput) (*models.Asset, error) {
	if err := validation.ValidateAmount("value", in.Value); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	asset, err := s.GetAsset(userID, assetID)
	if err != nil {
		return nil, err
	}

	valuation := &models.AssetValueHistory{
		AssetID:    asset.ID,
		Value:      in.Value,
		CurrencyID: in.CurrencyID,
		Date:       date,
	}
	if err := s.assets.RecordValuation(asset, valuation, userID); err != nil {
		return nil, err
	}
	return asset, nil
}

// ListAssetValuations returns the valuation history of a visible asset
func (s *LedgerService) ListAssetValuations(userID, assetID int64) ([]models.AssetValueHistory, error) {
	if _, err := s.GetAsset(userID, assetID); err != nil {
		return nil, err
	}
	return s.assets.ListValuations(assetID)
}

// ShareInput declares what fraction of an asset a holder owns over a date
// range. The holder is a user or a family; naming neither makes the caller
// the holder.
type ShareInput struct {
	Share          decimal.Decimal `json:"share"`
	HolderUserID   *int64          `json:"user_id"`
	HolderFamilyID *int64          `json:"family_id"`
	ValidFrom      string          `json:"valid_from"`
	ValidTo        string          `json:"valid_to"`
}

func (in *ShareInput) validate() error {
	if !in.Share.IsPositive() {
		return validation.NewError("share", "must be positive")
	}
	if in.Share.GreaterThan(decimal.NewFromInt(100)) {
		return validation.NewError("share", "cannot exceed 100 percent")
	}
	if in.HolderUserID != nil && in.HolderFamilyID != nil {
		return validation.NewError("family_id", "a share is held by a user or a family, not both")
	}
	return nil
}

// CreateAssetShare books a holding share against a visible asset. Share
// fractions keep four decimal places.
func (s *LedgerService) CreateAssetShare(userID, assetID int64, in *ShareInput) (*models.AssetShare, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	validFrom, err := parseDate("valid_from", in.ValidFrom)
	if err != nil {
		return nil, err
	}
	validTo, err := parseOptionalDate("valid_to", in.ValidTo)
	if err != nil {
		return nil, err
	}

	asset, err := s.GetAsset(userID, assetID)
	if err != nil {
		return nil, err
	}

	share := &models.AssetShare{
		AssetID:   asset.ID,
		UserID:    in.HolderUserID,
		FamilyID:  in.HolderFamilyID,
		Share:     in.Share.Round(4),
		ValidFrom: validFrom,
		ValidTo:   validTo,
	}
	if share.UserID == nil && share.FamilyID == nil {
		holder := userID
		share.UserID = &holder
	}
	if err := s.assets.CreateShare(share, userID); err != nil {
		return nil, err
	}
	return share, nil
}

// ListAssetShares returns the holding shares of a visible asset
func (s *LedgerService) ListAssetShares(userID, assetID int64) ([]models.AssetShare, error) {
	if _, err := s.GetAsset(userID, assetID); err != nil {
		return nil, err
	}
	return s.assets.ListShares(assetID)
}

// DeleteAssetShare removes a holding share from a visible asset
func (s *LedgerService) DeleteAssetShare(userID, assetID, shareID int64) error {
	if _, err := s.GetAsset(userID, assetID); err != nil {
		return err
	}
	share, err := s.assets.GetShare(shareID)
	if err != nil {
		return err
	}
	if share == nil || share.AssetID != assetID {
		return ErrNotFound
	}
	return s.assets.DeleteShare(share, userID)
}

// FundInput carries the client-editable fund fields
type FundInput struct {
	Name         string          `json:"name"`
	Goal         decimal.Decimal `json:"goal"`
	TargetDate   string          `json:"target_date"`
	CurrentValue decimal.Decimal `json:"current_value"`
	CurrencyID   int64           `json:"currency_id"`
	IsFamily     bool            `json:"is_family"`
	FamilyID     *int64          `json:"family_id"`
}

func (in *FundInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateAmount("goal", in.Goal); err != nil {
		return err
	}
	return validation.ValidateAmount("current_value", in.CurrentValue)
}

// CreateFund creates a savings fund
func (s *LedgerService) CreateFund(userID int64, in *FundInput) (*models.Fund, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	targetDate, err := parseOptionalDate("target_date", in.TargetDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	fund := &models.Fund{
		Name:         in.Name,
		Goal:         in.Goal,
		TargetDate:   targetDate,
		CurrentValue: in.CurrentValue,
		CurrencyID:   in.CurrencyID,
		Ownership:    ownership,
	}
	if err := s.funds.Create(fund, userID); err != nil {
		return nil, err
	}
	return fund, nil
}

// UpdateFund edits a fund's fields
func (s *LedgerService) UpdateFund(userID, fundID int64, in *FundInput) (*models.Fund, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	targetDate, err := parseOptionalDate("target_date", in.TargetDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.funds.GetByID(fundID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.Goal = in.Goal
	after.TargetDate = targetDate
	after.CurrentValue = in.CurrentValue
	after.CurrencyID = in.CurrencyID

	if err := s.funds.Update(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteFund removes a visible fund
func (s *LedgerService) DeleteFund(userID, fundID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.funds.GetByID(fundID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.funds.Delete(existing, userID)
}

// GetFund returns a visible fund
func (s *LedgerService) GetFund(userID, fundID int64) (*models.Fund, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	fund, err := s.funds.GetByID(fundID, scope)
	if err != nil {
		return nil, err
	}
	if fund == nil {
		return nil, ErrNotFound
	}
	return fund, nil
}

// ListFunds returns all funds visible to the caller
func (s *LedgerService) ListFunds(userID int64) ([]models.Fund, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.funds.List(scope)
}

// LiabilityInput carries the client-editable liability fields
type LiabilityInput struct {
	Name          string           `json:"name"`
	TypeID        int64            `json:"type_id"`
	InitialAmount decimal.Decimal  `json:"initial_amount"`
	CurrencyID    int64            `json:"currency_id"`
	OpenDate      string           `json:"open_date"`
	CloseDate     string           `json:"close_date"`
	InterestRate  *decimal.Decimal `json:"interest_rate"`
	PaymentType   string           `json:"payment_type"`
	CurrentDebt   decimal.Decimal  `json:"current_debt"`
	IsFamily      bool             `json:"is_family"`
	FamilyID      *int64           `json:"family_id"`
}

func (in *LiabilityInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateAmount("initial_amount", in.InitialAmount); err != nil {
		return err
	}
	if err := validation.ValidateAmount("current_debt", in.CurrentDebt); err != nil {
		return err
	}
	if in.PaymentType != "" &&
		in.PaymentType != models.PaymentTypeAnnuity && in.PaymentType != models.PaymentTypeDifferential {
		return validation.NewError("payment_type", "is not a valid payment type")
	}
	return nil
}

// CreateLiability creates a liability
func (s *LedgerService) CreateLiability(userID int64, in *LiabilityInput) (*models.Liability, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	openDate, err := parseDate("open_date", in.OpenDate)
	if err != nil {
		return nil, err
	}
	closeDate, err := parseOptionalDate("close_date", in.CloseDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	liability := &models.Liability{
		Name:          in.Name,
		TypeID:        in.TypeID,
		InitialAmount: in.InitialAmount,
		CurrencyID:    in.CurrencyID,
		OpenDate:      openDate,
		CloseDate:     closeDate,
		InterestRate:  in.InterestRate,
		PaymentType:   in.PaymentType,
		CurrentDebt:   in.CurrentDebt,
		Ownership:     ownership,
	}
	if err := s.liabilities.Create(liability, userID); err != nil {
		return nil, err
	}
	return liability, nil
}

// UpdateLiability edits a liability's fields, current debt included
func (s *LedgerService) UpdateLiability(userID, liabilityID int64, in *LiabilityInput) (*models.Liability, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	openDate, err := parseDate("open_date", in.OpenDate)
	if err != nil {
		return nil, err
	}
	closeDate, err := parseOptionalDate("close_date", in.CloseDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.liabilities.GetByID(liabilityID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.TypeID = in.TypeID
	after.InitialAmount = in.InitialAmount
	after.CurrencyID = in.CurrencyID
	after.OpenDate = openDate
	after.CloseDate = closeDate
	after.InterestRate = in.InterestRate
	after.PaymentType = in.PaymentType
	after.CurrentDebt = in.CurrentDebt

	if err := s.liabilities.Update(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteLiability removes a visible liability. Expenses that referenced it
// stay behind with the link cleared.
func (s *LedgerService) DeleteLiability(userID, liabilityID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.liabilities.GetByID(liabilityID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.liabilities.Delete(existing, userID)
}

// GetLiability returns a visible liability
func (s *LedgerService) GetLiability(userID, liabilityID int64) (*models.Liability, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	liability, err := s.liabilities.GetByID(liabilityID, scope)
	if err != nil {
		return nil, err
	}
	if liability == nil {
		return nil, ErrNotFound
	}
	return liability, nil
}

// ListLiabilities returns all liabilities visible to the caller
func (s *LedgerService) ListLiabilities(userID int64) ([]models.Liability, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.liabilities.List(scope)
}

// PaymentInput books one payment for a liability on a calendar date
type PaymentInput struct {
	Amount    decimal.Decimal `json:"amount"`
	Date      string          `json:"date"`
	Principal decimal.Decimal `json:"principal"`
	Interest  decimal.Decimal `json:"interest"`
}

// RecordLiabilityPayment books a payment and reduces the outstanding debt by
// its principal portion. At most one payment per liability per day; a second
// booking for the same date is a conflict.
func (s *LedgerService) RecordLiabilityPayment(userID, liabilityID int64, in *PaymentInput) (*models.Liability, error) {
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount("principal", in.Principal); err != nil {
		return nil, err
	}
	if err := validation.ValidateAmount("interest", in.Interest); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}

	liability, err := s.GetLiability(userID, liabilityID)
	if err != nil {
		return nil, err
	}

	payment := &models.LiabilityPayment{
		LiabilityID: liability.ID,
		Amount:      in.Amount,
		Date:        date,
		Principal:   in.Principal,
		Interest:    in.Interest,
	}
	if err := s.liabilities.RecordPayment(liability, payment, userID); err != nil {
		if err == repository.ErrDuplicate {
			return nil, ErrConflict
		}
		return nil, err
	}
	return liability, nil
}

// ListLiabilityPayments returns the payment history of a visible liability
func (s *LedgerService) ListLiabilityPayments(userID, liabilityID int64) ([]models.LiabilityPayment, error) {
	if _, err := s.GetLiability(userID, liabilityID); err != nil {
		return nil, err
	}
	return s.liabilities.ListPayments(liabilityID)
}

// IncomeInput carries the client-editable income fields
type IncomeInput struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CurrencyID  int64           `json:"currency_id"`
	Date        string          `json:"date"`
	AssetID     *int64          `json:"asset_id"`
	CategoryID  *int64          `json:"category_id"`
	Type        string          `json:"type"`
	Periodicity string          `json:"periodicity"`
	EndDate     string          `json:"end_date"`
	IsFamily    bool            `json:"is_family"`
	FamilyID    *int64          `json:"family_id"`
}

func (in *IncomeInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return err
	}
	switch in.Type {
	case models.IncomeRegular, models.IncomeTemporary, models.IncomeOccasional:
		return nil
	}
	return validation.NewError("type", "is not a valid income type")
}

// CreateIncome creates an income record
func (s *LedgerService) CreateIncome(userID int64, in *IncomeInput) (*models.Income, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	income := &models.Income{
		Name:        in.Name,
		Amount:      in.Amount,
		CurrencyID:  in.CurrencyID,
		Date:        date,
		AssetID:     in.AssetID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Periodicity: in.Periodicity,
		EndDate:     endDate,
		Ownership:   ownership,
	}
	if err := s.entries.CreateIncome(income, userID); err != nil {
		return nil, err
	}
	return income, nil
}

// UpdateIncome edits an income's fields
func (s *LedgerService) UpdateIncome(userID, incomeID int64, in *IncomeInput) (*models.Income, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	endDate, err := parseOptionalDate("end_date", in.EndDate)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.entries.GetIncomeByID(incomeID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.Amount = in.Amount
	after.CurrencyID = in.CurrencyID
	after.Date = date
	after.AssetID = in.AssetID
	after.CategoryID = in.CategoryID
	after.Type = in.Type
	after.Periodicity = in.Periodicity
	after.EndDate = endDate

	if err := s.entries.UpdateIncome(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteIncome removes a visible income
func (s *LedgerService) DeleteIncome(userID, incomeID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.entries.GetIncomeByID(incomeID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.entries.DeleteIncome(existing, userID)
}

// ListIncomes returns all incomes visible to the caller
func (s *LedgerService) ListIncomes(userID int64) ([]models.Income, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.entries.ListIncomes(scope)
}

// ExpenseInput carries the client-editable expense fields
type ExpenseInput struct {
	Name        string          `json:"name"`
	Amount      decimal.Decimal `json:"amount"`
	CurrencyID  int64           `json:"currency_id"`
	Date        string          `json:"date"`
	AssetID     *int64          `json:"asset_id"`
	LiabilityID *int64          `json:"liability_id"`
	CategoryID  *int64          `json:"category_id"`
	Type        string          `json:"type"`
	IsFamily    bool            `json:"is_family"`
	FamilyID    *int64          `json:"family_id"`
}

func (in *ExpenseInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	if err := validation.ValidateAmount("amount", in.Amount); err != nil {
		return err
	}
	switch in.Type {
	case models.ExpenseMandatory, models.ExpenseOptional:
		return nil
	}
	return validation.NewError("type", "is not a valid expense type")
}

// CreateExpense creates an expense record
func (s *LedgerService) CreateExpense(userID int64, in *ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	expense := &models.Expense{
		Name:        in.Name,
		Amount:      in.Amount,
		CurrencyID:  in.CurrencyID,
		Date:        date,
		AssetID:     in.AssetID,
		LiabilityID: in.LiabilityID,
		CategoryID:  in.CategoryID,
		Type:        in.Type,
		Ownership:   ownership,
	}
	if err := s.entries.CreateExpense(expense, userID); err != nil {
		return nil, err
	}
	return expense, nil
}

// UpdateExpense edits an expense's fields
func (s *LedgerService) UpdateExpense(userID, expenseID int64, in *ExpenseInput) (*models.Expense, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	date, err := parseDate("date", in.Date)
	if err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.entries.GetExpenseByID(expenseID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.Amount = in.Amount
	after.CurrencyID = in.CurrencyID
	after.Date = date
	after.AssetID = in.AssetID
	after.LiabilityID = in.LiabilityID
	after.CategoryID = in.CategoryID
	after.Type = in.Type

	if err := s.entries.UpdateExpense(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteExpense removes a visible expense
func (s *LedgerService) DeleteExpense(userID, expenseID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.entries.GetExpenseByID(expenseID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.entries.DeleteExpense(existing, userID)
}

// ListExpenses returns all expenses visible to the caller
func (s *LedgerService) ListExpenses(userID int64) ([]models.Expense, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.entries.ListExpenses(scope)
}

// CategoryInput carries the client-editable category fields
type CategoryInput struct {
	Name     string `json:"name"`
	ParentID *int64 `json:"parent_id"`
	Type     string `json:"type"`
	IsFamily bool   `json:"is_family"`
	FamilyID *int64 `json:"family_id"`
}

func (in *CategoryInput) validate() error {
	if err := validation.ValidateName(in.Name); err != nil {
		return err
	}
	switch in.Type {
	case models.CategoryAsset, models.CategoryIncome, models.CategoryExpense:
		return nil
	}
	return validation.NewError("type", "is not a valid category type")
}

// CreateCategory creates a category
func (s *LedgerService) CreateCategory(userID int64, in *CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}
	if in.ParentID != nil {
		parent, err := s.categories.GetByID(*in.ParentID, scope)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, validation.NewError("parent_id", "is not a visible category")
		}
	}

	category := &models.Category{
		Name:      in.Name,
		ParentID:  in.ParentID,
		Type:      in.Type,
		Ownership: ownership,
	}
	if err := s.categories.Create(category, userID); err != nil {
		return nil, err
	}
	return category, nil
}

// UpdateCategory edits a category's fields
func (s *LedgerService) UpdateCategory(userID, categoryID int64, in *CategoryInput) (*models.Category, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.categories.GetByID(categoryID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}
	if in.ParentID != nil {
		if *in.ParentID == categoryID {
			return nil, validation.NewError("parent_id", "cannot be the category itself")
		}
		parent, err := s.categories.GetByID(*in.ParentID, scope)
		if err != nil {
			return nil, err
		}
		if parent == nil {
			return nil, validation.NewError("parent_id", "is not a visible category")
		}
	}

	before := *existing
	after := *existing
	after.Name = in.Name
	after.ParentID = in.ParentID
	after.Type = in.Type

	if err := s.categories.Update(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteCategory removes a visible category; children are re-parented to the
// root by the schema.
func (s *LedgerService) DeleteCategory(userID, categoryID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.categories.GetByID(categoryID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.categories.Delete(existing, userID)
}

// ListCategories returns visible categories, optionally filtered by kind
func (s *LedgerService) ListCategories(userID int64, kind string) ([]models.Category, error) {
	if kind != "" {
		switch kind {
		case models.CategoryAsset, models.CategoryIncome, models.CategoryExpense:
		default:
			return nil, validation.NewError("type", "is not a valid category type")
		}
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.categories.List(scope, kind)
}

// BudgetInput carries the client-editable budget plan fields
type BudgetInput struct {
	Period         string          `json:"period"`
	PlannedIncome  decimal.Decimal `json:"planned_income"`
	PlannedExpense decimal.Decimal `json:"planned_expense"`
	IsFamily       bool            `json:"is_family"`
	FamilyID       *int64          `json:"family_id"`
}

func (in *BudgetInput) validate() error {
	if err := validation.ValidatePeriod(in.Period); err != nil {
		return err
	}
	if err := validation.ValidateAmount("planned_income", in.PlannedIncome); err != nil {
		return err
	}
	return validation.ValidateAmount("planned_expense", in.PlannedExpense)
}

// CreateBudgetPlan creates a budget plan
func (s *LedgerService) CreateBudgetPlan(userID int64, in *BudgetInput) (*models.BudgetPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	ownership, err := s.resolveOwnership(scope, in.IsFamily, in.FamilyID)
	if err != nil {
		return nil, err
	}

	plan := &models.BudgetPlan{
		Period:         in.Period,
		PlannedIncome:  in.PlannedIncome,
		PlannedExpense: in.PlannedExpense,
		Ownership:      ownership,
	}
	if err := s.budgets.Create(plan, userID); err != nil {
		return nil, err
	}
	return plan, nil
}

// UpdateBudgetPlan edits a budget plan's fields
func (s *LedgerService) UpdateBudgetPlan(userID, planID int64, in *BudgetInput) (*models.BudgetPlan, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	existing, err := s.budgets.GetByID(planID, scope)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, ErrNotFound
	}

	before := *existing
	after := *existing
	after.Period = in.Period
	after.PlannedIncome = in.PlannedIncome
	after.PlannedExpense = in.PlannedExpense

	if err := s.budgets.Update(&before, &after, userID); err != nil {
		return nil, err
	}
	return &after, nil
}

// DeleteBudgetPlan removes a visible budget plan
func (s *LedgerService) DeleteBudgetPlan(userID, planID int64) error {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return err
	}
	existing, err := s.budgets.GetByID(planID, scope)
	if err != nil {
		return err
	}
	if existing == nil {
		return ErrNotFound
	}
	return s.budgets.Delete(existing, userID)
}

// ListBudgetPlans returns all budget plans visible to the caller
func (s *LedgerService) ListBudgetPlans(userID int64) ([]models.BudgetPlan, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}
	return s.budgets.List(scope)
}

// EntityLog returns the audit trail for one ledger entity after checking the
// caller can see the entity itself. Deleted entities keep their trail but
// are no longer visible, so their logs are not served.
func (s *LedgerService) EntityLog(userID int64, entityType string, entityID int64) ([]models.FinanceLog, error) {
	scope, err := s.scopeFor(userID)
	if err != nil {
		return nil, err
	}

	var visible bool
	switch entityType {
	case "asset":
		a, err := s.assets.GetByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = a != nil
	case "fund":
		f, err := s.funds.GetByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = f != nil
	case "liability":
		l, err := s.liabilities.GetByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = l != nil
	case "liability_payment":
		p, err := s.liabilities.GetPayment(entityID)
		if err != nil {
			return nil, err
		}
		if p != nil {
			l, err := s.liabilities.GetByID(p.LiabilityID, scope)
			if err != nil {
				return nil, err
			}
			visible = l != nil
		}
	case "asset_share":
		sh, err := s.assets.GetShare(entityID)
		if err != nil {
			return nil, err
		}
		if sh != nil {
			a, err := s.assets.GetByID(sh.AssetID, scope)
			if err != nil {
				return nil, err
			}
			visible = a != nil
		}
	case "income":
		in, err := s.entries.GetIncomeByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = in != nil
	case "expense":
		e, err := s.entries.GetExpenseByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = e != nil
	case "category":
		c, err := s.categories.GetByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = c != nil
	case "budget_plan":
		b, err := s.budgets.GetByID(entityID, scope)
		if err != nil {
			return nil, err
		}
		visible = b != nil
	default:
		return nil, validation.NewError("entity_type", "is not a logged entity type")
	}

	if !visible {
		return nil, ErrNotFound
	}
	return s.logs.ListForEntity(entityType, entityID)
}
