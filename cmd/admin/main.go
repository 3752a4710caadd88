// Command admin provides user management utilities for StackIt operators.
package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strconv"

	"stackit/internal/cache"
	"stackit/internal/config"
	"stackit/internal/database"
	"stackit/internal/models"
	"stackit/internal/notifications"
	"stackit/internal/promotion"
	"stackit/internal/repository"
)

func usage() {
	fmt.Println("Usage:")
	fmt.Println("  go run ./cmd/admin promote <user_id>   - Promote user to admin")
	fmt.Println("  go run ./cmd/admin demote <user_id>    - Demote admin to user")
	fmt.Println("  go run ./cmd/admin ban <user_id>       - Ban a user")
	fmt.Println("  go run ./cmd/admin unban <user_id>     - Lift a ban")
	fmt.Println("  go run ./cmd/admin list-admins         - List all admins")
	fmt.Println("  go run ./cmd/admin run-promotions      - Run the promotion job once")
}

func main() {
	if len(os.Args) < 2 {
		usage()
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
	defer func() { _ = database.Close() }()

	// Redis is optional here; when present, cached users are invalidated.
	cache.InitRedis(cfg.RedisURL)
	defer func() { _ = cache.Close() }()

	ctx := context.Background()
	users := repository.NewUserRepository(db)

	switch cmd := os.Args[1]; cmd {
	case "promote":
		setRole(ctx, users, userIDArg(), models.RoleAdmin)
	case "demote":
		setRole(ctx, users, userIDArg(), models.RoleUser)
	case "ban":
		setBanned(ctx, users, userIDArg(), true)
	case "unban":
		setBanned(ctx, users, userIDArg(), false)
	case "list-admins":
		listAdmins(ctx, users)
	case "run-promotions":
		runPromotions(ctx, cfg, users)
	default:
		fmt.Printf("Unknown command: %s\n", cmd)
		usage()
		os.Exit(1)
	}
}

func userIDArg() uint {
	if len(os.Args) < 3 {
		fmt.Printf("Usage: go run ./cmd/admin %s <user_id>\n", os.Args[1])
		os.Exit(1)
	}
	id, err := strconv.ParseUint(os.Args[2], 10, 32)
	if err != nil || id == 0 {
		fmt.Printf("Invalid user ID: %s\n", os.Args[2])
		os.Exit(1)
	}
	return uint(id)
}

func loadUser(ctx context.Context, users repository.UserRepository, id uint) *models.User {
	user, err := users.GetByID(ctx, id)
	if err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			fmt.Printf("User with ID %d not found\n", id)
			os.Exit(1)
		}
		log.Fatalf("Database error: %v", err)
	}
	return user
}

func setRole(ctx context.Context, users repository.UserRepository, id uint, role models.Role) {
	user := loadUser(ctx, users, id)
	if user.Role == role {
		fmt.Printf("User %s (ID: %d) already has role %s\n", user.Username, user.ID, role)
		return
	}
	if err := users.SetRole(ctx, id, role); err != nil {
		log.Fatalf("Failed to change role: %v", err)
	}
	fmt.Printf("Changed role of %s (ID: %d) to %s\n", user.Username, user.ID, role)
}

func setBanned(ctx context.Context, users repository.UserRepository, id uint, banned bool) {
	user := loadUser(ctx, users, id)
	if user.IsBanned == banned {
		fmt.Printf("User %s (ID: %d) already has is_banned=%t\n", user.Username, user.ID, banned)
		return
	}
	if err := users.SetBanned(ctx, id, banned); err != nil {
		log.Fatalf("Failed to update ban: %v", err)
	}
	fmt.Printf("Set is_banned=%t for %s (ID: %d)\n", banned, user.Username, user.ID)
}

func listAdmins(ctx context.Context, users repository.UserRepository) {
	admins, err := users.ListByRole(ctx, models.RoleAdmin)
	if err != nil {
		log.Fatalf("Failed to fetch admins: %v", err)
	}
	if len(admins) == 0 {
		fmt.Println("No admins found")
		return
	}

	fmt.Println("Current admins:")
	for _, admin := range admins {
		fmt.Printf("ID: %d | Username: %s | Email: %s | Banned: %t\n", admin.ID, admin.Username, admin.Email, admin.IsBanned)
	}
}

func runPromotions(ctx context.Context, cfg *config.Config, users repository.UserRepository) {
	notifier := notifications.NewNotifier(cache.GetClient())
	job := promotion.NewJob(users, cfg.PromotionThreshold, notifier)

	promoted, err := job.RunOnce(ctx)
	if err != nil {
		log.Fatalf("Promotion job failed: %v", err)
	}
	fmt.Printf("Promoted %d user(s) with at least %d accepted answers: %v\n", len(promoted), job.Threshold(), promoted)
}
