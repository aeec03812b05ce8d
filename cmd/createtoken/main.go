// createtoken issues an identity token from the command line, for smoke
// testing the API without going through the login flow.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"packtrack.app/packtrack/security"
)

func main() {
	login := flag.String("login", "operator", "login to embed in the token")
	role := flag.String("role", "user", "role to embed in the token")
	status := flag.String("status", "Штат", "employee status to embed in the token")
	secret := flag.String("secret", os.Getenv("PACKTRACK_JWT_SECRET"), "base64 signing secret")
	ttl := flag.Duration("ttl", time.Hour, "token lifetime")
	flag.Parse()

	if *secret == "" {
		fmt.Fprintln(os.Stderr, "missing -secret (or PACKTRACK_JWT_SECRET)")
		os.Exit(1)
	}

	token, err := security.CreateIdentityToken(security.Identity{
		Login:          *login,
		Role:           *role,
		EmployeeStatus: *status,
	}, *secret, *ttl)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Println(token)
}
