package service

import (
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"

	"famledger/internal/config"
	"famledger/internal/database"
	"famledger/internal/models"
	"famledger/internal/repository"
)

type testEnv struct {
	db         *database.DB
	users      *repository.UserRepository
	membership *MembershipService
	circles    *CircleService
	ledger     *LedgerService
	dashboard  *DashboardService
}

func setupEnv(t *testing.T, rejoin config.RejoinPolicy) *testEnv {
	t.Helper()

	db, err := database.Initialize(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to initialize database: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := db.RunMigrations("../../migrations"); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	users := repository.NewUserRepository(db)
	families := repository.NewFamilyRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	assets := repository.NewAssetRepository(db)
	funds := repository.NewFundRepository(db)
	liabilities := repository.NewLiabilityRepository(db)
	entries := repository.NewEntryRepository(db)
	categories := repository.NewCategoryRepository(db)
	budgets := repository.NewBudgetRepository(db)
	logs := repository.NewFinanceLogRepository(db)

	email := &EmailService{} // disabled, drops mail
	membership := NewMembershipService(families, users, email, rejoin)

	return &testEnv{
		db:         db,
		users:      users,
		membership: membership,
		circles:    NewCircleService(circleRepo, families, rejoin),
		ledger:     NewLedgerService(membership, assets, funds, liabilities, entries, categories, budgets, logs),
		dashboard:  NewDashboardService(membership, assets, funds, liabilities, entries),
	}
}

func (e *testEnv) createUser(t *testing.T, email string) *models.User {
	t.Helper()
	user := &models.User{Email: email, Name: email}
	if err := e.users.Create(user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func amount(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}
