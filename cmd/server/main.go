package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"famledger/internal/config"
	"famledger/internal/database"
	"famledger/internal/handlers"
	"famledger/internal/repository"
	"famledger/internal/service"

	"github.com/joho/godotenv"
)

func main() {
	// Load .env if present, then configuration
	if err := godotenv.Load(); err == nil {
		log.Println("Loaded environment from .env")
	}
	cfg := config.Load()

	if cfg.AuthSecret == "" {
		log.Fatal("AUTH_SECRET must be set")
	}

	// Initialize database with config (supports sqlite, postgres, mysql)
	db, err := database.InitializeWithConfig(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	log.Printf("Database connection established (type: %s)", cfg.DatabaseType)

	// Run migrations
	if err := db.RunMigrations(cfg.MigrationsPath); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	log.Println("Migrations completed successfully")

	// Initialize repositories
	userRepo := repository.NewUserRepository(db)
	familyRepo := repository.NewFamilyRepository(db)
	circleRepo := repository.NewCircleRepository(db)
	assetRepo := repository.NewAssetRepository(db)
	fundRepo := repository.NewFundRepository(db)
	liabilityRepo := repository.NewLiabilityRepository(db)
	entryRepo := repository.NewEntryRepository(db)
	categoryRepo := repository.NewCategoryRepository(db)
	budgetRepo := repository.NewBudgetRepository(db)
	logRepo := repository.NewFinanceLogRepository(db)
	refDataRepo := repository.NewRefDataRepository(db)

	// Initialize services
	emailService, err := service.NewEmailService(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize email service: %v", err)
	}
	if emailService.Enabled() {
		log.Printf("Invitation emails enabled (from: %s)", cfg.FromEmail)
	} else {
		log.Println("Invitation emails disabled (SES_FROM_EMAIL not set)")
	}

	membershipService := service.NewMembershipService(familyRepo, userRepo, emailService, cfg.RejoinPolicy)
	circleService := service.NewCircleService(circleRepo, familyRepo, cfg.RejoinPolicy)
	ledgerService := service.NewLedgerService(membershipService,
		assetRepo, fundRepo, liabilityRepo, entryRepo, categoryRepo, budgetRepo, logRepo)
	dashboardService := service.NewDashboardService(membershipService,
		assetRepo, fundRepo, liabilityRepo, entryRepo)

	// Initialize handlers
	middleware := handlers.NewMiddleware(userRepo, cfg.AuthSecret)
	familyHandler := handlers.NewFamilyHandler(membershipService)
	circleHandler := handlers.NewCircleHandler(circleService)
	ledgerHandler := handlers.NewLedgerHandler(ledgerService)
	dashboardHandler := handlers.NewDashboardHandler(dashboardService)
	refDataHandler := handlers.NewRefDataHandler(refDataRepo)

	// Setup routes
	mux := http.NewServeMux()

	// Public routes
	mux.HandleFunc("GET /api/families/search", familyHandler.SearchFamily)
	mux.HandleFunc("GET /api/circles/search", circleHandler.SearchCircle)

	// Family routes
	mux.HandleFunc("POST /api/families", middleware.RequireAuth(familyHandler.CreateFamily))
	mux.HandleFunc("GET /api/families", middleware.RequireAuth(familyHandler.ListFamilies))
	mux.HandleFunc("GET /api/families/{id}", middleware.RequireAuth(familyHandler.GetFamily))
	mux.HandleFunc("PUT /api/families/{id}", middleware.RequireAuth(familyHandler.UpdateFamily))
	mux.HandleFunc("POST /api/families/join", middleware.RequireAuth(familyHandler.JoinFamily))
	mux.HandleFunc("POST /api/families/{id}/leave", middleware.RequireAuth(familyHandler.LeaveFamily))
	mux.HandleFunc("POST /api/families/{id}/credentials", middleware.RequireAuth(familyHandler.RegenerateCredentials))
	mux.HandleFunc("GET /api/families/{id}/members", middleware.RequireAuth(familyHandler.ListMembers))
	mux.HandleFunc("POST /api/families/{id}/invitations", middleware.RequireAuth(familyHandler.InviteMember))
	mux.HandleFunc("PUT /api/families/{id}/members/{memberID}", middleware.RequireAuth(familyHandler.UpdateMembership))
	mux.HandleFunc("GET /api/families/{id}/circles", middleware.RequireAuth(circleHandler.ListForFamily))

	// Circle routes
	mux.HandleFunc("POST /api/circles", middleware.RequireAuth(circleHandler.CreateCircle))
	mux.HandleFunc("POST /api/circles/join", middleware.RequireAuth(circleHandler.JoinCircle))
	mux.HandleFunc("POST /api/circles/{id}/leave", middleware.RequireAuth(circleHandler.LeaveCircle))
	mux.HandleFunc("POST /api/circles/{id}/credentials", middleware.RequireAuth(circleHandler.RegenerateCredentials))
	mux.HandleFunc("GET /api/circles/{id}/families", middleware.RequireAuth(circleHandler.ListFamilies))

	// Asset routes
	mux.HandleFunc("POST /api/assets", middleware.RequireAuth(ledgerHandler.CreateAsset))
	mux.HandleFunc("GET /api/assets", middleware.RequireAuth(ledgerHandler.ListAssets))
	mux.HandleFunc("GET /api/assets/{id}", middleware.RequireAuth(ledgerHandler.GetAsset))
	mux.HandleFunc("PUT /api/assets/{id}", middleware.RequireAuth(ledgerHandler.UpdateAsset))
	mux.HandleFunc("DELETE /api/assets/{id}", middleware.RequireAuth(ledgerHandler.DeleteAsset))
	mux.HandleFunc("POST /api/assets/{id}/valuations", middleware.RequireAuth(ledgerHandler.RecordValuation))
	mux.HandleFunc("GET /api/assets/{id}/valuations", middleware.RequireAuth(ledgerHandler.ListValuations))
	mux.HandleFunc("POST /api/assets/{id}/shares", middleware.RequireAuth(ledgerHandler.CreateShare))
	mux.HandleFunc("GET /api/assets/{id}/shares", middleware.RequireAuth(ledgerHandler.ListShares))
	mux.HandleFunc("DELETE /api/assets/{id}/shares/{shareID}", middleware.RequireAuth(ledgerHandler.DeleteShare))
	mux.HandleFunc("GET /api/assets/{id}/detail", middleware.RequireAuth(dashboardHandler.AssetDetail))

	// Fund routes
	mux.HandleFunc("POST /api/funds", middleware.RequireAuth(ledgerHandler.CreateFund))
	mux.HandleFunc("GET /api/funds", middleware.RequireAuth(ledgerHandler.ListFunds))
	mux.HandleFunc("GET /api/funds/{id}", middleware.RequireAuth(ledgerHandler.GetFund))
	mux.HandleFunc("PUT /api/funds/{id}", middleware.RequireAuth(ledgerHandler.UpdateFund))
	mux.HandleFunc("DELETE /api/funds/{id}", middleware.RequireAuth(ledgerHandler.DeleteFund))

	// Liability routes
	mux.HandleFunc("POST /api/liabilities", middleware.RequireAuth(ledgerHandler.CreateLiability))
	mux.HandleFunc("GET /api/liabilities", middleware.RequireAuth(ledgerHandler.ListLiabilities))
	mux.HandleFunc("GET /api/liabilities/{id}", middleware.RequireAuth(ledgerHandler.GetLiability))
	mux.HandleFunc("PUT /api/liabilities/{id}", middleware.RequireAuth(ledgerHandler.UpdateLiability))
	mux.HandleFunc("DELETE /api/liabilities/{id}", middleware.RequireAuth(ledgerHandler.DeleteLiability))
	mux.HandleFunc("POST /api/liabilities/{id}/payments", middleware.RequireAuth(ledgerHandler.RecordPayment))
	mux.HandleFunc("GET /api/liabilities/{id}/payments", middleware.RequireAuth(ledgerHandler.ListPayments))

	// Income and expense routes
	mux.HandleFunc("POST /api/incomes", middleware.RequireAuth(ledgerHandler.CreateIncome))
	mux.HandleFunc("GET /api/incomes", middleware.RequireAuth(ledgerHandler.ListIncomes))
	mux.HandleFunc("PUT /api/incomes/{id}", middleware.RequireAuth(ledgerHandler.UpdateIncome))
	mux.HandleFunc("DELETE /api/incomes/{id}", middleware.RequireAuth(ledgerHandler.DeleteIncome))
	mux.HandleFunc("POST /api/expenses", middleware.RequireAuth(ledgerHandler.CreateExpense))
	mux.HandleFunc("GET /api/expenses", middleware.RequireAuth(ledgerHandler.ListExpenses))
	mux.HandleFunc("PUT /api/expenses/{id}", middleware.RequireAuth(ledgerHandler.UpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", middleware.RequireAuth(ledgerHandler.DeleteExpense))

	// Category and budget routes
	mux.HandleFunc("POST /api/categories", middleware.RequireAuth(ledgerHandler.CreateCategory))
	mux.HandleFunc("GET /api/categories", middleware.RequireAuth(ledgerHandler.ListCategories))
	mux.HandleFunc("PUT /api/categories/{id}", middleware.RequireAuth(ledgerHandler.UpdateCategory))
	mux.HandleFunc("DELETE /api/categories/{id}", middleware.RequireAuth(ledgerHandler.DeleteCategory))
	mux.HandleFunc("POST /api/budget-plans", middleware.RequireAuth(ledgerHandler.CreateBudgetPlan))
	mux.HandleFunc("GET /api/budget-plans", middleware.RequireAuth(ledgerHandler.ListBudgetPlans))
	mux.HandleFunc("PUT /api/budget-plans/{id}", middleware.RequireAuth(ledgerHandler.UpdateBudgetPlan))
	mux.HandleFunc("DELETE /api/budget-plans/{id}", middleware.RequireAuth(ledgerHandler.DeleteBudgetPlan))

	// Audit trail and dashboard routes
	mux.HandleFunc("GET /api/logs/{entityType}/{id}", middleware.RequireAuth(ledgerHandler.EntityLog))
	mux.HandleFunc("GET /api/dashboard", middleware.RequireAuth(dashboardHandler.Overview))
	mux.HandleFunc("GET /api/dashboard/funds", middleware.RequireAuth(dashboardHandler.FundsProgress))

	// Reference data routes
	mux.HandleFunc("GET /api/currencies", middleware.RequireAuth(refDataHandler.Currencies))
	mux.HandleFunc("POST /api/currencies/{id}/rates", middleware.RequireAuth(refDataHandler.RecordRate))
	mux.HandleFunc("GET /api/currencies/{id}/rates", middleware.RequireAuth(refDataHandler.ListRates))
	mux.HandleFunc("GET /api/asset-types", middleware.RequireAuth(refDataHandler.AssetTypes))
	mux.HandleFunc("GET /api/liability-types", middleware.RequireAuth(refDataHandler.LiabilityTypes))

	// Wrap with logging middleware
	handler := handlers.Logging(mux)

	// Start server
	addr := ":" + cfg.ServerPort
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on http://localhost%s", addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Printf("Shutdown error: %v", err)
	}
}
