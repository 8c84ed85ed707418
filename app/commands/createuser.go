package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"syscall"

	"golang.org/x/term"

	"github.com/ehime-live/live-schedule/app/auth"
	"github.com/ehime-live/live-schedule/app/cfg"
	"github.com/ehime-live/live-schedule/app/database"
)

type UserCreator interface {
	CreateUser(ctx context.Context, name, password string) (*database.User, error)
}

var _ UserCreator = (*auth.Service)(nil)

// CreateUser handles the create-user subcommand: it prompts for a name and
// a masked password and stores the user in the configured database.
func CreateUser(c *cfg.Cfg) error {
	db, err := database.NewConnection(c.DBPath)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if _, _, err := database.RunMigrations(db); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	svc := auth.NewService(database.NewUserRepository(db), database.NewSessionRepository(db), c.SessionLifetime())

	reader := bufio.NewReader(os.Stdin)
	fmt.Print("Enter name: ")
	name, err := readLine(reader)
	if err != nil {
		return fmt.Errorf("failed to read name: %w", err)
	}

	password := readPasswordWithMask(reader, "Enter password:   ")
	confirm := readPasswordWithMask(reader, "Confirm password: ")

	user, err := createUser(context.Background(), svc, name, password, confirm)
	if err != nil {
		return err
	}

	fmt.Printf("User created: %s (id %d)\n", user.Name, user.ID)
	return nil
}

func createUser(ctx context.Context, creator UserCreator, name, password, confirm string) (*database.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, fmt.Errorf("name cannot be empty")
	}
	if password == "" {
		return nil, fmt.Errorf("password cannot be empty")
	}
	if password != confirm {
		return nil, fmt.Errorf("passwords do not match")
	}

	user, err := creator.CreateUser(ctx, name, password)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}
	return user, nil
}

func readLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// readPasswordWithMask reads a password, echoing asterisks.
func readPasswordWithMask(reader *bufio.Reader, prompt string) string {
	fmt.Print(prompt)

	fd := int(syscall.Stdin)
	if !term.IsTerminal(fd) {
		line, _ := readLine(reader)
		return line
	}

	oldState, err := term.MakeRaw(fd)
	if err != nil {
		password, _ := term.ReadPassword(fd)
		fmt.Println()
		return string(password)
	}
	defer term.Restore(fd, oldState)

	var password []rune

	for {
		char, _, err := reader.ReadRune()
		if err != nil {
			break
		}

		switch char {
		case '\n', '\r':
			fmt.Print("\r\n")
			return string(password)
		case 127, 8: // Backspace or Delete
			if len(password) > 0 {
				password = password[:len(password)-1]
				fmt.Print("\b \b")
			}
		case 3: // Ctrl+C
			term.Restore(fd, oldState)
			fmt.Println()
			os.Exit(1)
		default:
			if char >= 32 {
				password = append(password, char)
				fmt.Print("*")
			}
		}
	}

	fmt.Print("\r\n")
	return string(password)
}
