// Command adduser provisions a login credential in the catalog database.
//
//	adduser -db database.db rafay
//
// The password is prompted twice with no echo, hashed, and stored; the
// plaintext never touches the database.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/rafayk/bookcatalog/auth"
	"github.com/rafayk/bookcatalog/datastore"
)

func main() {
	dbPath := flag.String("db", "database.db", "path to the catalog database")
	flag.Parse()

	username := strings.TrimSpace(flag.Arg(0))
	if username == "" || flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "Usage: adduser [-db path] <username>")
		os.Exit(2)
	}

	password, err := readPassword("Enter password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	if password == "" {
		fmt.Fprintln(os.Stderr, "Password must not be empty")
		os.Exit(1)
	}

	confirm, err := readPassword("Confirm password: ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading password: %v\n", err)
		os.Exit(1)
	}
	if password != confirm {
		fmt.Fprintln(os.Stderr, "Passwords do not match")
		os.Exit(1)
	}

	db, err := datastore.Open(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error opening database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	hash, err := auth.NewPasswordHasher().Hash(password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error hashing password: %v\n", err)
		os.Exit(1)
	}

	users := datastore.NewUserRepository(db)
	if err := users.CreateUser(context.Background(), username, hash); err != nil {
		fmt.Fprintf(os.Stderr, "Error creating user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("User %q created.\n", username)
}

// readPassword securely reads a password with no echo.
func readPassword(prompt string) (string, error) {
	fmt.Print(prompt)
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		return "", err
	}
	fmt.Println() // Add newline after password input
	return strings.TrimSpace(string(bytePassword)), nil
}
