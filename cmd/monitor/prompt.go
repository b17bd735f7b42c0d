package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"ppe-monitor-go/internal/app"
)

// promptLogin asks for credentials on the terminal until the monitor is
// running or closed.
func promptLogin(monitor *app.App) {
	in := bufio.NewReader(os.Stdin)
	fmt.Println("PPE Detection System - Login")

	for monitor.State() == app.StateLoggedOut {
		username, err := readLine(in, "Username: ")
		if err != nil {
			return
		}
		password, err := readPassword(in, "Password: ")
		if err != nil {
			return
		}

		err = monitor.Login(username, password)
		switch {
		case err == nil:
			fmt.Println("Login successful")
			return
		case errors.Is(err, app.ErrClosed):
			return
		default:
			fmt.Println(err)
		}
	}
}

func readLine(in *bufio.Reader, label string) (string, error) {
	fmt.Print(label)
	line, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// readPassword reads without echo on a terminal and falls back to a plain
// line read for piped input.
func readPassword(in *bufio.Reader, label string) (string, error) {
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return readLine(in, label)
	}

	fmt.Print(label)
	b, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(b), nil
}
