// accountctl is a small admin client for the accountd HTTP API.
//
// Usage:
//
//	accountctl [-s http://host:8080] [-t token] <register|login|list|deactivate> [args]
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/avolkovs/accountd/internal/common"
)

func main() {
	serverURL := flag.String("s", "http://localhost:8080", "accountd server base URL")
	token := flag.String("t", "", "access token for authenticated commands")
	flag.Parse()

	if flag.NArg() < 1 {
		usage()
		os.Exit(2)
	}

	ctx := context.Background()
	client := newAPIClient(*serverURL, *token)
	reader := bufio.NewReader(os.Stdin)

	var err error
	switch flag.Arg(0) {
	case "register":
		err = runRegister(ctx, client, reader)
	case "login":
		err = runLogin(ctx, client, reader)
	case "list":
		err = runList(ctx, client)
	case "deactivate":
		if flag.NArg() < 2 {
			usage()
			os.Exit(2)
		}
		err = runDeactivate(ctx, client, flag.Arg(1))
	default:
		usage()
		os.Exit(2)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: accountctl [-s url] [-t token] <register|login|list|deactivate id>")
}

func runRegister(ctx context.Context, client *apiClient, reader *bufio.Reader) error {
	username, err := getSimpleText(reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}
	email, err := getSimpleText(reader, "Enter email", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	confirm, err := getPassword("Confirm password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(confirm)

	id, err := client.Register(ctx, &registerPayload{
		Username:        username,
		Email:           email,
		Password:        string(password),
		ConfirmPassword: string(confirm),
	})
	if err != nil {
		return err
	}

	fmt.Printf("Account created: %s\n", id)
	return nil
}

func runLogin(ctx context.Context, client *apiClient, reader *bufio.Reader) error {
	username, err := getSimpleText(reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword("Enter password", os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	pair, err := client.Login(ctx, username, string(password))
	if err != nil {
		return err
	}

	fmt.Printf("Access token:\n%s\n", pair.AccessToken)
	fmt.Printf("Refresh token:\n%s\n", pair.RefreshToken)
	return nil
}

func runList(ctx context.Context, client *apiClient) error {
	accounts, err := client.ListAccounts(ctx)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tUSERNAME\tEMAIL\tCREATED")
	for _, a := range accounts {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", a.ID, a.Username, a.Email, a.CreatedAt.Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runDeactivate(ctx context.Context, client *apiClient, id string) error {
	if err := client.DeactivateAccount(ctx, id); err != nil {
		return err
	}
	fmt.Printf("Account %s deactivated\n", id)
	return nil
}
