// adduser creates an account directly against the database. Used to
// bootstrap the first admin before the web UI has anyone to log in.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"

	"github.com/vitos/trade_journal/internal/domain"
	"github.com/vitos/trade_journal/internal/infrastructure/logger"
	"github.com/vitos/trade_journal/internal/infrastructure/storage"
	"github.com/vitos/trade_journal/internal/usecase"
)

func main() {
	dbPath := flag.String("db", "journal.db", "path to sqlite database")
	username := flag.String("username", "", "account username")
	password := flag.String("password", "", "account password")
	admin := flag.Bool("admin", false, "grant the ADMIN role")
	flag.Parse()

	if *username == "" || *password == "" {
		fmt.Println("usage: adduser -username <name> -password <pass> [-admin] [-db journal.db]")
		os.Exit(1)
	}

	log, err := logger.NewLogger("info")
	if err != nil {
		fmt.Printf("Failed to init logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	store, err := storage.NewSQLiteStore(*dbPath)
	if err != nil {
		fmt.Printf("Failed to open database: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	role := domain.RoleUser
	if *admin {
		role = domain.RoleAdmin
	}

	accounts := usecase.NewUserService(store, log)
	user, err := accounts.CreateUser(context.Background(), *username, *password, role)
	if err != nil {
		fmt.Printf("Failed to create user: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Created %s account %s (%s)\n", user.Role, user.Username, user.ID)
}
