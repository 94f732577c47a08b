package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/istun/mezunlar-backend/internal/config"
	"github.com/istun/mezunlar-backend/internal/database"
	"github.com/istun/mezunlar-backend/internal/logger"
	"github.com/istun/mezunlar-backend/internal/model"
	"github.com/istun/mezunlar-backend/internal/repository"
	"golang.org/x/crypto/bcrypt"
	"golang.org/x/term"
)

// create-admin bootstraps the first super admin. Running it against an
// existing email grants the role to that account instead of creating one.
func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.MustLoad()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	userRepo := repository.NewUserRepository(pool)
	adminRepo := repository.NewAdminRepository(pool)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)
	ask := func(label string) string {
		fmt.Print(label)
		s, _ := reader.ReadString('\n')
		return strings.TrimSpace(s)
	}

	fmt.Println("=== Create Admin Account ===")

	email := strings.ToLower(ask("Enter Email: "))
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	role := model.RoleSuperAdmin
	if raw := ask("Enter Role (super_admin/content_admin, default super_admin): "); raw != "" {
		r, err := model.ParseAdminRole(raw)
		if err != nil || !r.Assignable() {
			fmt.Println("Error: Role must be super_admin or content_admin")
			return
		}
		role = r
	}

	// Existing account: promote only.
	existing, err := userRepo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		u, err := adminRepo.SetRole(ctx, existing.Email, role)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to assign role")
		}
		fmt.Printf("\nSuccess! '%s' now holds role %s\n", u.Email, u.AdminRole)
		return
	case !errors.Is(err, repository.ErrNotFound):
		log.Fatal().Err(err).Msg("Failed to look up account")
	}

	name := ask("Enter Name: ")
	surname := ask("Enter Surname: ")
	username := ask("Enter Username: ")
	if name == "" || surname == "" || username == "" {
		fmt.Println("Error: Name, surname and username are required")
		return
	}

	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), cfg.BcryptCost)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to hash password")
	}

	// Staff accounts skip the alumni profile and the public roster; placeholders
	// satisfy NOT NULL columns.
	u := &model.User{
		Name:         name,
		Surname:      surname,
		Username:     username,
		Email:        email,
		Phone:        "-",
		TC:           "00000000000",
		WorkStatus:   "Yönetici",
		ClassStatus:  "Yönetici",
		Consent:      true,
		PasswordHash: string(hashedPassword),
		Status:       model.StatusApproved,
		AdminRole:    role,
		Staff:        true,
	}
	if err := userRepo.Create(ctx, u); err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", u.FullName(), u.Email, u.ID)
}
