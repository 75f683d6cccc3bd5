// Package main provides staff account management for Agora.
package main

import (
	"context"
	"fmt"
	"log"
	"os"

	"agora/internal/config"
	"agora/internal/database"
	"agora/internal/models"
	"agora/internal/repository"
	"agora/internal/service"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage:")
		fmt.Println("  go run ./cmd/admin/main.go create-staff <username> <email> <password>  - Create a staff account (no profile)")
		fmt.Println("  go run ./cmd/admin/main.go promote <username|email>                    - Grant staff")
		fmt.Println("  go run ./cmd/admin/main.go demote <username|email>                     - Revoke staff")
		fmt.Println("  go run ./cmd/admin/main.go list-staff                                  - List staff accounts")
		os.Exit(1)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	users := repository.NewUserRepository(db)
	accounts := service.NewAccountService(users)
	ctx := context.Background()

	switch command := os.Args[1]; command {
	case "create-staff":
		if len(os.Args) < 5 {
			fmt.Println("Usage: go run ./cmd/admin/main.go create-staff <username> <email> <password>")
			os.Exit(1)
		}
		user, err := accounts.Register(ctx, service.RegisterInput{
			Username: os.Args[2],
			Email:    os.Args[3],
			Password: os.Args[4],
			IsStaff:  true,
		})
		if err != nil {
			fail(err)
		}
		fmt.Printf("Created staff account %s (ID: %d)\n", user.Username, user.ID)

	case "promote", "demote":
		if len(os.Args) < 3 {
			fmt.Printf("Usage: go run ./cmd/admin/main.go %s <username|email>\n", command)
			os.Exit(1)
		}
		user, err := accounts.SetStaff(ctx, os.Args[2], command == "promote")
		if err != nil {
			fail(err)
		}
		fmt.Printf("%s (ID: %d) is_staff=%t\n", user.Username, user.ID, user.IsStaff)

	case "list-staff":
		var staff []models.User
		if err := db.Where("is_staff = ?", true).Order("id").Find(&staff).Error; err != nil {
			log.Fatalf("Failed to fetch staff: %v", err)
		}
		if len(staff) == 0 {
			fmt.Println("No staff accounts found")
			return
		}
		for _, u := range staff {
			fmt.Printf("ID: %d | Username: %s | Email: %s\n", u.ID, u.Username, u.Email)
		}

	default:
		fmt.Printf("Unknown command: %s\n", command)
		os.Exit(1)
	}
}

func fail(err error) {
	if appErr, ok := err.(*models.AppError); ok {
		fmt.Printf("%s: %s\n", appErr.Code, appErr.Message)
	} else {
		fmt.Printf("error: %v\n", err)
	}
	os.Exit(1)
}
