// Command usercli is an interactive terminal client for managing users in a
// local store without running the API server.
package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	flags "github.com/jessevdk/go-flags"
	log "github.com/sirupsen/logrus"

	"github.com/cleancodehq/usermgmt/internal/domain/users"
	"github.com/cleancodehq/usermgmt/internal/storage/jsonfile"
	"github.com/cleancodehq/usermgmt/internal/storage/memory"
	"github.com/cleancodehq/usermgmt/internal/storage/sqlite"
)

type options struct {
	File    string `short:"f" long:"file" default:"users.json" description:"Path to the JSON users file"`
	Backend string `short:"b" long:"backend" default:"json" choice:"json" choice:"sqlite" choice:"memory" description:"Storage backend"`
	Verbose bool   `short:"v" long:"verbose" description:"Enable debug logging"`
}

var opts options

func init() {
	log.SetFormatter(&log.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
	log.SetOutput(os.Stderr)
}

func main() {
	if _, err := flags.Parse(&opts); err != nil {
		if flags.WroteHelp(err) {
			return
		}
		os.Exit(1)
	}

	if opts.Verbose {
		log.SetLevel(log.DebugLevel)
	}

	repo, closeRepo, err := openRepository()
	if err != nil {
		log.WithField("err", err).Fatal("failed to open store")
	}
	defer closeRepo()

	svc := users.NewService(repo)

	fmt.Println("Welcome to the user management console.")

	scanner := bufio.NewScanner(os.Stdin)
	for {
		printMenu()
		choice, ok := prompt(scanner, "Enter your choice (1-5): ")
		if !ok {
			fmt.Println()
			return
		}

		switch choice {
		case "1":
			addUser(scanner, svc)
		case "2":
			listUsers(svc)
		case "3":
			showUser(scanner, svc)
		case "4":
			deactivateUser(scanner, svc)
		case "5":
			fmt.Println("Goodbye.")
			return
		default:
			fmt.Println("Invalid choice. Please enter 1-5.")
		}
	}
}

func openRepository() (users.Repository, func(), error) {
	noop := func() {}
	switch opts.Backend {
	case "json":
		repo, err := jsonfile.Open(opts.File)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("file", opts.File).Debug("opened json store")
		return repo, noop, nil
	case "sqlite":
		repo, err := sqlite.Open(opts.File)
		if err != nil {
			return nil, noop, err
		}
		log.WithField("path", opts.File).Debug("opened sqlite store")
		return repo, func() {
			if err := repo.Close(); err != nil {
				log.WithField("err", err).Error("failed to close sqlite store")
			}
		}, nil
	case "memory":
		return memory.NewUserRepository(), noop, nil
	default:
		return nil, noop, fmt.Errorf("unknown backend: %s", opts.Backend)
	}
}

func printMenu() {
	fmt.Println()
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("USER MANAGEMENT")
	fmt.Println(strings.Repeat("=", 50))
	fmt.Println("1. Add User")
	fmt.Println("2. List Users")
	fmt.Println("3. Show User Details")
	fmt.Println("4. Deactivate User")
	fmt.Println("5. Exit")
	fmt.Println(strings.Repeat("=", 50))
}

// prompt reads one trimmed line; ok is false on EOF so piped input exits cleanly.
func prompt(scanner *bufio.Scanner, label string) (string, bool) {
	fmt.Print(label)
	if !scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(scanner.Text()), true
}

func addUser(scanner *bufio.Scanner, svc users.Service) {
	fmt.Println("\n--- ADD USER ---")
	name, ok := prompt(scanner, "Name: ")
	if !ok {
		return
	}
	email, ok := prompt(scanner, "Email: ")
	if !ok {
		return
	}

	user, err := svc.Create(users.CreateInput{Name: name, Email: email})
	if err != nil {
		fmt.Printf("Failed to add user: %v\n", err)
		return
	}
	fmt.Printf("User added with ID %d.\n", user.ID)
}

func listUsers(svc users.Service) {
	fmt.Println("\n--- ALL USERS ---")
	all, err := svc.List(false)
	if err != nil {
		fmt.Printf("Failed to list users: %v\n", err)
		return
	}
	if len(all) == 0 {
		fmt.Println("No users found.")
		return
	}
	for _, u := range all {
		status := "active"
		if !u.Active {
			status = "inactive"
		}
		fmt.Printf("ID: %d | Name: %s | Email: %s | %s\n", u.ID, u.Name, u.Email, status)
	}
}

func showUser(scanner *bufio.Scanner, svc users.Service) {
	fmt.Println("\n--- USER DETAILS ---")
	id, ok := promptID(scanner, "Enter user ID: ")
	if !ok {
		return
	}

	user, err := svc.Get(id)
	if err != nil {
		fmt.Printf("Failed to fetch user %d: %v\n", id, err)
		return
	}

	status := "active"
	if !user.Active {
		status = "inactive"
	}
	fmt.Printf("  ID:      %d\n", user.ID)
	fmt.Printf("  Name:    %s\n", user.Name)
	fmt.Printf("  Email:   %s\n", user.Email)
	fmt.Printf("  Status:  %s\n", status)
	fmt.Printf("  Created: %s\n", user.CreatedAt.Format(time.RFC3339))
}

func deactivateUser(scanner *bufio.Scanner, svc users.Service) {
	fmt.Println("\n--- DEACTIVATE USER ---")
	id, ok := promptID(scanner, "Enter user ID to deactivate: ")
	if !ok {
		return
	}

	confirm, ok := prompt(scanner, fmt.Sprintf("Deactivate user %d? (y/n): ", id))
	if !ok || strings.ToLower(confirm) != "y" {
		fmt.Println("Cancelled.")
		return
	}

	if err := svc.Deactivate(id); err != nil {
		fmt.Printf("Failed to deactivate user %d: %v\n", id, err)
		return
	}
	fmt.Printf("User %d marked as inactive.\n", id)
}

func promptID(scanner *bufio.Scanner, label string) (int64, bool) {
	raw, ok := prompt(scanner, label)
	if !ok {
		return 0, false
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		fmt.Println("Please enter a valid numeric ID.")
		return 0, false
	}
	return id, true
}
