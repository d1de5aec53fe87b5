// Command forumlogin checks forum credentials from a terminal.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"guestbook/internal/adapter/forum"
	"guestbook/internal/config"
	"guestbook/internal/domain"

	"golang.org/x/term"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(2)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	fc := forum.New(cfg.ForumURL, forum.WithTimeout(cfg.ForumTimeout))
	os.Exit(run(ctx, os.Stdin, os.Stdout, fc, readPassword))
}

// readPassword reads without echo when stdin is a terminal.
func readPassword(in *bufio.Reader) (string, error) {
	fd := int(os.Stdin.Fd())
	if term.IsTerminal(fd) {
		b, err := term.ReadPassword(fd)
		fmt.Println()
		return string(b), err
	}
	return readLine(in)
}

func run(ctx context.Context, stdin io.Reader, out io.Writer, verifier domain.CredentialVerifier, password func(*bufio.Reader) (string, error)) int {
	in := bufio.NewReader(stdin)

	fmt.Fprintln(out, "=== Forum Login ===")
	fmt.Fprint(out, "Username or Email: ")
	username, err := readLine(in)
	if err != nil {
		fmt.Fprintf(out, "read username: %v\n", err)
		return 1
	}
	fmt.Fprint(out, "Password: ")
	pw, err := password(in)
	if err != nil {
		fmt.Fprintf(out, "read password: %v\n", err)
		return 1
	}

	username = strings.TrimSpace(username)
	if username == "" || pw == "" {
		fmt.Fprintln(out, "Username and password are required.")
		return 1
	}

	fmt.Fprintln(out, "Logging in...")
	creds, err := verifier.VerifyCredentials(ctx, username, pw)
	if err != nil {
		var rejected *forum.RejectedError
		var upstream *domain.UpstreamError
		switch {
		case errors.As(err, &rejected):
			fmt.Fprintf(out, "Login failed. Status code: %d\n", rejected.StatusCode)
			if rejected.Body != "" {
				fmt.Fprintf(out, "Response: %s\n", rejected.Body)
			}
		case errors.As(err, &upstream):
			fmt.Fprintf(out, "Connection error: %v\n", upstream.Err)
		default:
			fmt.Fprintf(out, "Login failed: %v\n", err)
		}
		return 1
	}

	fmt.Fprintln(out, "Login successful!")
	fmt.Fprintf(out, "Token: %s\n", creds.Token)
	fmt.Fprintf(out, "User ID: %d\n", creds.UserID)
	return 0
}

func readLine(in *bufio.Reader) (string, error) {
	line, err := in.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && line != "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}
