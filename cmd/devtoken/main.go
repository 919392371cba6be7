// Package main implements devtoken, a development helper that issues a signed
// access token for a learner using the server's JWT settings.
//
// Identity management lives outside this service; the token lets a developer
// call the review API locally:
//
//	TOKEN=$(devtoken -user learner-1)
//	curl -H "Authorization: Bearer $TOKEN" localhost:8080/review
package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/wordloom/wordloom-api/internal/config"
	"github.com/wordloom/wordloom-api/internal/service/auth"
)

type runOptions struct {
	configFile string
	envFile    string
	userID     string
}

func main() {
	var opts runOptions
	flag.StringVar(&opts.configFile, "config", "", "path to a YAML config file (default: ./config.yaml if present)")
	flag.StringVar(&opts.envFile, "env-file", ".env", "path to an optional .env file")
	flag.StringVar(&opts.userID, "user", "", "user ID to embed in the token (default: a random UUID)")
	flag.Parse()

	if err := run(context.Background(), opts, os.Stdout, os.Stderr); err != nil {
		log.Printf("devtoken: %v", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, opts runOptions, out, info io.Writer) error {
	cfg, err := config.LoadWithOptions(config.Options{
		ConfigFile: opts.configFile,
		EnvFile:    opts.envFile,
	})
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	jwtService, err := auth.NewJWTService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize JWT service: %w", err)
	}

	userID := strings.TrimSpace(opts.userID)
	if userID == "" {
		userID = uuid.NewString()
	}

	token, err := jwtService.GenerateToken(ctx, userID)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	fmt.Fprintf(info, "user %s, valid for %d minutes\n", userID, cfg.Auth.TokenLifetimeMinutes)
	fmt.Fprintln(out, token)
	return nil
}
