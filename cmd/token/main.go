// Command token issues owner bearer tokens for local use and testing.
package main

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/serroba/url-shortener/internal/identity"
	"github.com/serroba/url-shortener/internal/shortener"
)

type Options struct {
	Owner     string `default:""              help:"Owner id placed in the token subject" short:"o"`
	JWTSecret string `default:""              help:"HMAC secret owner tokens are signed with"`
	JWTIssuer string `default:"url-shortener" help:"Issuer of the token"`
	JWTTTL    string `default:"24h"           help:"Lifetime of the token"`
}

func main() {
	_ = godotenv.Load()

	cli := humacli.New(func(hooks humacli.Hooks, options *Options) {
		hooks.OnStart(func() {
			token, err := sign(options)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				os.Exit(1)
			}

			fmt.Println(token)
		})
	})

	cli.Run()
}

func sign(options *Options) (string, error) {
	if options.Owner == "" {
		return "", errors.New("owner is required")
	}

	ttl, err := time.ParseDuration(options.JWTTTL)
	if err != nil {
		return "", fmt.Errorf("parse jwt ttl: %w", err)
	}

	tokens, err := identity.NewHS256(options.JWTSecret, options.JWTIssuer, ttl)
	if err != nil {
		return "", err
	}

	return tokens.Sign(shortener.OwnerID(options.Owner))
}
