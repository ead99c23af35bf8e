package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strings"

	"github.com/goliatone/go-sites/cmd/internal/bootstrap"
	"github.com/goliatone/go-sites/internal/provision"
)

var moduleBuilder = bootstrap.BuildModule

func main() {
	if err := runProvision(context.Background(), os.Args[1:], os.Stdout); err != nil {
		log.Fatalf("sites provision: %v", err)
	}
}

func runProvision(ctx context.Context, args []string, out io.Writer) error {
	fs := flag.NewFlagSet("sites-provision", flag.ExitOnError)
	configPath := fs.String("config", "", "Path to a YAML config file (environment variables override it)")
	envFile := fs.String("env-file", ".env", "Optional dotenv file loaded before the config")
	source := fs.String("source", "templates", "Directory holding template folders")
	template := fs.String("template", "", "Template folder under -source, also stored as the project's template key")
	project := fs.String("project", "", "Project slug to create or update")
	name := fs.String("name", "", "Project display name (defaults to the slug)")
	locale := fs.String("locale", "", "Locale for documents outside a locale folder (defaults to the config default locale)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if strings.TrimSpace(*project) == "" {
		return fmt.Errorf("-project is required")
	}

	module, err := moduleBuilder(ctx, bootstrap.Options{
		ConfigPath: *configPath,
		EnvFiles:   []string{*envFile},
	})
	if err != nil {
		return fmt.Errorf("bootstrap module: %w", err)
	}
	defer module.Close()

	defaultLocale := strings.TrimSpace(*locale)
	if defaultLocale == "" {
		defaultLocale = module.Config.DefaultLocale
	}
	result, err := module.Module.Provisioner().Apply(ctx, provision.Request{
		ProjectSlug:   *project,
		ProjectName:   *name,
		TemplateKey:   *template,
		DefaultLocale: defaultLocale,
		Source:        os.DirFS(*source),
		Root:          *template,
	})
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "project %s: created=%t pages_created=%d pages_updated=%d navigation_items=%d\n",
		result.ProjectID, result.ProjectCreated, result.PagesCreated, result.PagesUpdated, result.NavigationItems)
	return nil
}
