package main

import (
	"fmt"
	"os"

	"github.com/makquiz/live-server-go/internal/util"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: HOST_TOKEN_SECRET=... go run scripts/sign-host-token.go <hostID>\n")
		os.Exit(1)
	}

	secret := os.Getenv("HOST_TOKEN_SECRET")
	if secret == "" {
		fmt.Fprintf(os.Stderr, "Error: HOST_TOKEN_SECRET is not set\n")
		os.Exit(1)
	}

	fmt.Println(util.SignHostToken(secret, os.Args[1]))
}
