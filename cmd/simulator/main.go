package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/dom/snake-game-api/internal/auth"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	// Global flags
	apiURL := "http://localhost:8000"
	if envURL := os.Getenv("API_URL"); envURL != "" {
		apiURL = envURL
	}

	command := os.Args[1]
	args := os.Args[2:]

	var err error
	switch command {
	case "session":
		err = sessionCmd(os.Stdout, apiURL, args)
	case "populate":
		err = populateCmd(os.Stdout, apiURL, args)
	case "check":
		err = checkCmd(os.Stdout, apiURL, args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n\n", command)
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Printf("Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`Session Simulator - Development tool for exercising player accounts

USAGE:
  simulator <command> [options]

COMMANDS:
  session   Register a player and walk through login, refresh, profile and logout
  populate  Register several players and print their credentials
  check     Check whether a username or email is still free
  help      Show this help message

ENVIRONMENT:
  API_URL   Backend API URL (default: http://localhost:8000)

EXAMPLES:
  # Full lifecycle for one generated player
  simulator session

  # Register 5 players named snake_1 .. snake_5
  simulator populate --prefix=snake --count=5

  # Check a name before registering it
  simulator check --username=alice`)
}

// sessionCmd runs the full account lifecycle and fails on the first step
// that does not behave as expected.
func sessionCmd(out io.Writer, apiURL string, args []string) error {
	fs := flag.NewFlagSet("session", flag.ContinueOnError)
	username := fs.String("username", "", "Username to register (default: generated)")
	password := fs.String("password", "testpassword123", "Password for the player")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" {
		*username = "player_" + uuid.New().String()[:8]
	}
	if len(*password) > auth.MaxPasswordBytes {
		return fmt.Errorf("--password must be at most %d bytes", auth.MaxPasswordBytes)
	}
	email := *username + "@example.com"

	client := NewAPIClient(apiURL)

	fmt.Fprintln(out, "=== Session Simulator ===")
	fmt.Fprintln(out)

	// 1. Register
	fmt.Fprintf(out, "Registering %s... ", *username)
	registered, err := client.Register(*username, email, *password)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintln(out, "OK")

	// 2. Login issues a second, independent refresh token
	fmt.Fprint(out, "Logging in... ")
	session, err := client.Login(*username, *password)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	if session.RefreshToken == registered.RefreshToken {
		fmt.Fprintln(out, "FAILED")
		return errors.New("login reused the registration refresh token")
	}
	fmt.Fprintln(out, "OK")

	// 3. Refresh
	fmt.Fprint(out, "Refreshing access token... ")
	access, err := client.Refresh(session.RefreshToken)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintln(out, "OK")

	// 4. Profile
	claims, err := decodeUnverified(access)
	if err != nil {
		return err
	}
	fmt.Fprint(out, "Fetching profile... ")
	user, err := client.GetUser(access, claims.UserID)
	if err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintf(out, "OK (id: %d, email: %s)\n", user.ID, user.Email)

	// 5. Logout revokes only this session
	fmt.Fprint(out, "Logging out... ")
	if err := client.Logout(session.RefreshToken); err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprint(out, "Checking revoked token is rejected... ")
	var statusErr *StatusError
	if _, err := client.Refresh(session.RefreshToken); !errors.As(err, &statusErr) || statusErr.Status != http.StatusUnauthorized {
		fmt.Fprintln(out, "FAILED")
		return fmt.Errorf("expected 401 after logout, got %v", err)
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprint(out, "Checking registration session still refreshes... ")
	if _, err := client.Refresh(registered.RefreshToken); err != nil {
		fmt.Fprintln(out, "FAILED")
		return err
	}
	fmt.Fprintln(out, "OK")

	fmt.Fprintln(out)
	fmt.Fprintln(out, "=========================================")
	fmt.Fprintln(out, "  SESSION LIFECYCLE OK")
	fmt.Fprintln(out, "=========================================")
	return nil
}

func populateCmd(out io.Writer, apiURL string, args []string) error {
	fs := flag.NewFlagSet("populate", flag.ContinueOnError)
	prefix := fs.String("prefix", "player", "Username prefix")
	count := fs.Int("count", 5, "Number of players to register")
	password := fs.String("password", "testpassword123", "Password for every player")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *count < 1 {
		return errors.New("--count must be at least 1")
	}

	client := NewAPIClient(apiURL)

	fmt.Fprintf(out, "Registering %d players...\n\n", *count)

	failed := 0
	for i := 0; i < *count; i++ {
		username := fmt.Sprintf("%s_%d", *prefix, i+1)
		start := time.Now()
		if _, err := client.Register(username, username+"@example.com", *password); err != nil {
			fmt.Fprintf(out, "  [%d/%d] FAILED to register %s: %v\n", i+1, *count, username, err)
			failed++
			continue
		}
		fmt.Fprintf(out, "  [%d/%d] %s registered (%s)\n", i+1, *count, username, time.Since(start).Round(time.Millisecond))
	}

	fmt.Fprintln(out)
	fmt.Fprintf(out, "Done! Password for every player: %s\n", *password)
	if failed > 0 {
		return fmt.Errorf("%d of %d registrations failed", failed, *count)
	}
	return nil
}

func checkCmd(out io.Writer, apiURL string, args []string) error {
	fs := flag.NewFlagSet("check", flag.ContinueOnError)
	username := fs.String("username", "", "Username to check")
	email := fs.String("email", "", "Email to check")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if *username == "" && *email == "" {
		return errors.New("--username or --email is required")
	}

	client := NewAPIClient(apiURL)

	if *username != "" {
		available, err := client.UsernameAvailable(*username)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "username %s: %s\n", *username, availability(available))
	}
	if *email != "" {
		available, err := client.EmailAvailable(*email)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "email %s: %s\n", *email, availability(available))
	}
	return nil
}

func availability(available bool) string {
	if available {
		return "available"
	}
	return "taken"
}

// decodeUnverified reads the claims of an access token without the signing
// secret. The backend still verifies every token it receives.
func decodeUnverified(token string) (*auth.Claims, error) {
	claims := &auth.Claims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("failed to read access token: %w", err)
	}
	return claims, nil
}
