package main

import (
	"context"
	"log"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"hourledger/internal/config"
	"hourledger/internal/db"
	"hourledger/internal/model"
	"hourledger/internal/repository"
	"hourledger/internal/service"
)

// seedUser is a demo account with a handful of logged entries.
type seedUser struct {
	name       string
	email      string
	password   string
	contracted int64
	tasks      []seedTask
}

type seedTask struct {
	description string
	hours       int64
	daysAgo     int
	status      model.TaskStatus
}

var demoUsers = []seedUser{
	{
		name: "Admin", email: "admin@example.com", password: "admin123", contracted: 0,
	},
	{
		name: "Acme Corp", email: "acme@example.com", password: "client123", contracted: 40,
		tasks: []seedTask{
			{description: "Landing page revisions", hours: 10, daysAgo: 3, status: model.TaskStatusCompleted},
			{description: "Newsletter template", hours: 6, daysAgo: 7, status: model.TaskStatusInProgress},
			{description: "Logo refresh (scrapped)", hours: 4, daysAgo: 10, status: model.TaskStatusCancelled},
		},
	},
	{
		name: "Globex", email: "globex@example.com", password: "client123", contracted: 20,
		tasks: []seedTask{
			{description: "Checkout bug triage", hours: 8, daysAgo: 1, status: model.TaskStatusCompleted},
			{description: "Quarterly report deck", hours: 5, daysAgo: 14, status: model.TaskStatusPending},
		},
	},
}

func main() {
	log.Println("Starting seed script...")

	cfg := config.Load()

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if err := gormDB.AutoMigrate(&model.User{}, &model.Task{}, &model.LedgerEntry{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	userRepo := repository.NewUserRepository(gormDB)
	taskRepo := repository.NewTaskRepository(gormDB)
	ledgerRepo := repository.NewLedgerEntryRepository(gormDB)

	userService := service.NewUserService(userRepo, taskRepo, nil)
	ledgerService := service.NewLedgerService(taskRepo, userRepo, ledgerRepo, nil)

	ctx := context.Background()
	created, skipped := 0, 0
	for _, demo := range demoUsers {
		existing, err := userRepo.FindByEmail(ctx, demo.email)
		if err != nil && err != gorm.ErrRecordNotFound {
			log.Fatalf("Error checking user %s: %v", demo.email, err)
		}
		if existing != nil {
			log.Printf("User %s already exists, skipping", demo.email)
			skipped++
			continue
		}

		user, err := userService.CreateUser(ctx, service.CreateUserInput{
			Name:            demo.name,
			Email:           demo.email,
			Password:        demo.password,
			ContractedHours: decimal.NewFromInt(demo.contracted),
		})
		if err != nil {
			log.Fatalf("Error creating user %s: %v", demo.email, err)
		}
		created++

		// Tasks go through the ledger service so balances reconcile the
		// same way they would in production.
		for _, t := range demo.tasks {
			date := time.Now().AddDate(0, 0, -t.daysAgo)
			if _, err := ledgerService.CreateTask(ctx, service.CreateTaskInput{
				UserID:      user.ID,
				Description: t.description,
				HoursSpent:  decimal.NewFromInt(t.hours),
				Date:        &date,
				Status:      t.status,
			}); err != nil {
				log.Fatalf("Error creating task for %s: %v", demo.email, err)
			}
		}
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
