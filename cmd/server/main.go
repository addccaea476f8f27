package main

import (
	"bufio"
	"context"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/server"

	"github.com/nimbuslab/gtools/internal/config"
	"github.com/nimbuslab/gtools/internal/credentials"
	"github.com/nimbuslab/gtools/internal/providers/gcal"
	"github.com/nimbuslab/gtools/internal/tools"
)

const version = "0.3.0"

func main() {
	// Load .env files if they exist (cwd or repo root)
	loadEnvFiles()

	// Load configuration
	cfg := config.Load()

	registry := tools.NewRegistry()
	registry.Register(tools.NewMapsTools(cfg)...)
	registry.Register(tools.NewFinanceTool(cfg))
	registry.Register(tools.NewFlightsTool(cfg))
	registry.Register(tools.NewMailTools(cfg)...)
	registry.Register(tools.NewCalendarTools(cfg, loadCalendarCatalog(cfg))...)

	s := server.NewMCPServer("gtools", version,
		server.WithToolCapabilities(false),
	)
	registry.Install(s)

	log.Printf("Serving %d tools on stdio: %s", len(registry.Names()), strings.Join(registry.Names(), ", "))
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// loadCalendarCatalog snapshots the account's calendar list so the calendar
// tools can name the known ids in their parameter descriptions. Startup must
// not depend on Google credentials being present, so any failure here is a
// warning and the tools run with a nil catalog.
func loadCalendarCatalog(cfg *config.Config) *gcal.Catalog {
	cred, err := credentials.Resolve(cfg, credentials.KindGoogleOAuth)
	if err != nil {
		log.Printf("Calendar catalog skipped: %v", err)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := gcal.NewClient(ctx, cred.OAuth)
	if err != nil {
		log.Printf("Calendar catalog skipped: %v", err)
		return nil
	}
	catalog, err := client.LoadCatalog(ctx)
	if err != nil {
		log.Printf("Calendar catalog skipped: %v", err)
		return nil
	}
	log.Printf("Calendar catalog loaded: %d calendars", len(catalog.Entries()))
	return catalog
}

func loadEnvFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		return // File doesn't exist, skip
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		// Only set if not already set
		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}

func loadEnvFiles() {
	cwd, err := os.Getwd()
	if err != nil {
		loadEnvFile(".env")
		return
	}

	paths := []string{filepath.Join(cwd, ".env")}
	if root := findRepoRoot(cwd); root != "" && root != cwd {
		paths = append(paths, filepath.Join(root, ".env"))
	}

	for _, path := range paths {
		loadEnvFile(path)
	}
}

func findRepoRoot(start string) string {
	dir := start
	for i := 0; i < 6; i++ {
		if _, err := os.Stat(filepath.Join(dir, "go.mod")); err == nil {
			return dir
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
	return ""
}
