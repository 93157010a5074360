package service

import (
	"time"

	"github.com/shopspring/decimal"

	"famledger/internal/models"
	"famledger/internal/repository"
)

// DashboardService computes derived figures over everything the caller can
// see. Nothing here is stored; each call re-reads the ledger.
type DashboardService struct {
	membership  *MembershipService
	assets      *repository.AssetRepository
	funds       *repository.FundRepository
	liabilities *repository.LiabilityRepository
	entries     *repository.EntryRepository
}

// NewDashboardService creates a new dashboard service
func NewDashboardService(membership *MembershipService,
	assets *repository.AssetRepository, funds *repository.FundRepository,
	liabilities *repository.LiabilityRepository, entries *repository.EntryRepository) *DashboardService {
	return &DashboardService{
		membership:  membership,
		assets:      assets,
		funds:       funds,
		liabilities: liabilities,
		entries:     entries,
	}
}

// FundProgress is a fund with its derived goal figures
type FundProgress struct {
	models.Fund
	ProgressPercentage   decimal.Decimal `json:"progress_percentage"`
	RemainingAmount      decimal.Decimal `json:"remaining_amount"`
	DaysUntilTarget      *int            `json:"days_until_target,omitempty"`
	MonthlySavingsNeeded decimal.Decimal `json:"monthly_savings_needed"`
}

// LiabilityOverview is a liability summary with the derived paid figure.
// TotalPaid comes from initial minus current debt, not from the payment rows.
type LiabilityOverview struct {
	repository.LiabilitySummaryRow
	TotalPaid decimal.Decimal `json:"total_paid"`
}

// Overview is the dashboard aggregate. Net worth counts funds as monetary
// assets and subtracts outstanding debt. Liabilities without a linked expense
// are listed as data-quality warnings.
type Overview struct {
	NetWorth            decimal.Decimal            `json:"net_worth"`
	TotalAssets         decimal.Decimal            `json:"total_assets"`
	TotalFunds          decimal.Decimal            `json:"total_funds"`
	TotalDebt           decimal.Decimal            `json:"total_debt"`
	AssetsByType        []repository.TypeAggregate `json:"assets_by_type"`
	Funds               []FundProgress             `json:"funds"`
	Liabilities         []LiabilityOverview        `json:"liabilities"`
	UnlinkedLiabilities []string                   `json:"unlinked_liabilities"`
}

// AssetDetail is one asset with its derived figures
type AssetDetail struct {
	models.Asset
	ROI          decimal.Decimal `json:"roi"`
	TotalIncome  decimal.Decimal `json:"total_income"`
	TotalExpense decimal.Decimal `json:"total_expense"`
	NetIncome    decimal.Decimal `json:"net_income"`
}

// Overview builds the dashboard for a user at a point in time
func (s *DashboardService) Overview(userID int64, now time.Time) (*Overview, error) {
	scope, err := s.membership.ScopeFor(userID)
	if err != nil {
		return nil, err
	}

	totalAssets, err := s.assets.SumCurrentValue(scope)
	if err != nil {
		return nil, err
	}
	totalFunds, err := s.funds.SumCurrentValue(scope)
	if err != nil {
		return nil, err
	}
	debt, err := s.liabilities.SumDebt(scope)
	if err != nil {
		return nil, err
	}
	byType, err := s.assets.AggregateByType(scope)
	if err != nil {
		return nil, err
	}
	funds, err := s.funds.List(scope)
	if err != nil {
		return nil, err
	}
	summaries, err := s.liabilities.ListSummaries(scope)
	if err != nil {
		return nil, err
	}

	overview := &Overview{
		NetWorth:            totalAssets.Add(totalFunds).Sub(debt.TotalDebt),
		TotalAssets:         totalAssets,
		TotalFunds:          totalFunds,
		TotalDebt:           debt.TotalDebt,
		AssetsByType:        byType,
		UnlinkedLiabilities: []string{},
	}

	for _, f := range funds {
		overview.Funds = append(overview.Funds, FundProgress{
			Fund:                 f,
			ProgressPercentage:   f.ProgressPercentage(),
			RemainingAmount:      f.RemainingAmount(),
			DaysUntilTarget:      f.DaysUntilTarget(now),
			MonthlySavingsNeeded: f.MonthlySavingsNeeded(now),
		})
	}

	for _, row := range summaries {
		overview.Liabilities = append(overview.Liabilities, LiabilityOverview{
			LiabilitySummaryRow: row,
			TotalPaid:           row.TotalPaid(),
		})
		if !row.HasLinkedExpenses {
			overview.UnlinkedLiabilities = append(overview.UnlinkedLiabilities, row.Name)
		}
	}

	return overview, nil
}

// FundsProgress returns the derived goal figures for every visible fund
func (s *DashboardService) FundsProgress(userID int64, now time.Time) ([]FundProgress, error) {
	scope, err := s.membership.ScopeFor(userID)
	if err != nil {
		return nil, err
	}
	funds, err := s.funds.List(scope)
	if err != nil {
		return nil, err
	}

	progress := make([]FundProgress, 0, len(funds))
	for _, f := range funds {
		progress = append(progress, FundProgress{
			Fund:                 f,
			ProgressPercentage:   f.ProgressPercentage(),
			RemainingAmount:      f.RemainingAmount(),
			DaysUntilTarget:      f.DaysUntilTarget(now),
			MonthlySavingsNeeded: f.MonthlySavingsNeeded(now),
		})
	}
	return progress, nil
}

// AssetDetail returns a visible asset with its return and flow figures
func (s *DashboardService) AssetDetail(userID, assetID int64) (*AssetDetail, error) {
	scope, err := s.membership.ScopeFor(userID)
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

	flows, err := s.entries.AssetFlowTotals(assetID)
	if err != nil {
		return nil, err
	}

	return &AssetDetail{
		Asset:        *asset,
		ROI:          asset.ROI(),
		TotalIncome:  flows.TotalIncome,
		TotalExpense: flows.TotalExpense,
		NetIncome:    flows.NetIncome(),
	}, nil
}
