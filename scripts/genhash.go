//go:build ignore

// Prints a bcrypt hash for ADMIN_PASSWORD_HASH and, with -totp, a fresh
// ADMIN_TOTP_SECRET plus the otpauth URL to enrol an authenticator app.
//
//	go run scripts/genhash.go [-totp] 'my-admin-password'
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/pquerna/otp/totp"
	"golang.org/x/crypto/bcrypt"
)

func main() {
	withTOTP := flag.Bool("totp", false, "also generate an admin TOTP secret")
	account := flag.String("account", "admin", "account name shown in the authenticator app")
	flag.Parse()

	if flag.NArg() != 1 || flag.Arg(0) == "" {
		fmt.Fprintln(os.Stderr, "usage: go run scripts/genhash.go [-totp] <password>")
		os.Exit(2)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(flag.Arg(0)), bcrypt.DefaultCost)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)

	if *withTOTP {
		key, err := totp.Generate(totp.GenerateOpts{Issuer: "careers-backend", AccountName: *account})
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		fmt.Printf("ADMIN_TOTP_SECRET=%s\n", key.Secret())
		fmt.Printf("# enrol: %s\n", key.URL())
	}
}
