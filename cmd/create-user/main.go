// Command create-user creates a user with a bcrypt-hashed password and an
// empty planner profile. Values not given as flags are prompted for.
// Usage: go run ./cmd/create-user [--username u] [--email e]
package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"
)

var (
	username string
	email    string
	diet     string
)

var rootCmd = &cobra.Command{
	Use:          "create-user",
	Short:        "Create a planner user",
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()
		url := os.Getenv("DB_URL")
		if url == "" {
			return fmt.Errorf("DB_URL is not set")
		}

		reader := bufio.NewReader(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		name := orPrompt(reader, out, username, "Username: ")
		mail := orPrompt(reader, out, email, "Email: ")
		password := prompt(reader, out, "Password: ")
		if name == "" || password == "" {
			return fmt.Errorf("username and password are required")
		}

		hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return fmt.Errorf("hash password: %w", err)
		}
		authToken := uuid.New().String()

		ctx := cmd.Context()
		conn, err := pgx.Connect(ctx, url)
		if err != nil {
			return fmt.Errorf("unable to connect to database: %w", err)
		}
		defer conn.Close(ctx)

		tx, err := conn.Begin(ctx)
		if err != nil {
			return err
		}
		defer tx.Rollback(ctx)

		var userID int
		err = tx.QueryRow(ctx,
			`INSERT INTO users (username, email, password, auth_token)
			 VALUES (@username, @email, @password, @token) RETURNING id`,
			pgx.NamedArgs{"username": name, "email": mail, "password": string(hash), "token": authToken},
		).Scan(&userID)
		if err != nil {
			return fmt.Errorf("create user: %w", err)
		}

		var dietArg *string
		if diet != "" {
			dietArg = &diet
		}
		if _, err := tx.Exec(ctx,
			`INSERT INTO user_profiles (user_id, diet_type) VALUES (@userID, @diet)`,
			pgx.NamedArgs{"userID": userID, "diet": dietArg}); err != nil {
			return fmt.Errorf("create profile: %w", err)
		}
		if err := tx.Commit(ctx); err != nil {
			return err
		}

		color.Green("\n✓ User created")
		fmt.Fprintf(out, "  ID:         %d\n", userID)
		fmt.Fprintf(out, "  Username:   %s\n", name)
		fmt.Fprintf(out, "  Auth Token: %s\n", authToken)
		return nil
	},
}

func init() {
	rootCmd.Flags().StringVar(&username, "username", "", "login name")
	rootCmd.Flags().StringVar(&email, "email", "", "email address")
	rootCmd.Flags().StringVar(&diet, "diet", "", "default diet type for meal plans (veg, non_veg, vegan)")
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func prompt(r *bufio.Reader, w io.Writer, label string) string {
	fmt.Fprint(w, label)
	line, _ := r.ReadString('\n')
	return strings.TrimSpace(line)
}

// orPrompt returns v, or asks for it when empty.
func orPrompt(r *bufio.Reader, w io.Writer, v, label string) string {
	if v != "" {
		return v
	}
	return prompt(r, w, label)
}
