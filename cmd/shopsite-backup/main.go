// Command shopsite-backup downloads a backup of a ShopSite store's
// back-office data.
//
// It reads its own TOML configuration file, pulls the back-office URL out
// of the store's .aa configuration, and hands the download itself off to
// curl.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	aa "github.com/argv-minus-one/shopsite-aa-go"
	"github.com/spf13/cobra"
)

type config struct {
	Backup   backupConfig   `toml:"backup"`
	Shopsite shopsiteConfig `toml:"shopsite"`
}

type backupConfig struct {
	// Dir is the directory backup archives are written to.
	Dir string `toml:"dir"`
}

type shopsiteConfig struct {
	// ConfigFile is the path to the store's .aa configuration file.
	ConfigFile string `toml:"config_file"`

	// BoCurlOptions are extra options passed to curl when fetching from
	// the back office, such as credentials.
	BoCurlOptions []string `toml:"bo_curl_options"`
}

// storeConfig is the slice of the store's .aa configuration this tool
// cares about. Everything else in the file is skipped.
type storeConfig struct {
	StoreName string `aa:"store_name"`
	BoURL     string `aa:"bo_url"`
}

func main() {
	cmd := &cobra.Command{
		Use:           "shopsite-backup CONFIG",
		Short:         "Downloads a backup of a ShopSite store's back-office data",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(args[0])
		},
	}

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	var cfg config
	if _, err := toml.DecodeFile(configPath, &cfg); err != nil {
		return fmt.Errorf("reading configuration: %w", err)
	}

	var store storeConfig
	if err := aa.DecodeFile(cfg.Shopsite.ConfigFile, &store); err != nil {
		return fmt.Errorf("reading store configuration: %w", err)
	}
	if store.BoURL == "" {
		return fmt.Errorf("store configuration %s has no bo_url", cfg.Shopsite.ConfigFile)
	}

	name := fmt.Sprintf("shopsite-backup-%s.tar.gz", time.Now().Format("20060102-150405"))
	dest := filepath.Join(cfg.Backup.Dir, name)

	args := append([]string{"--fail", "--silent", "--show-error", "--output", dest},
		cfg.Shopsite.BoCurlOptions...)
	args = append(args, store.BoURL)

	curl := exec.Command("curl", args...)
	curl.Stderr = os.Stderr
	if err := curl.Run(); err != nil {
		return fmt.Errorf("fetching backup: %w", err)
	}

	fmt.Printf("Backup of %s written to %s\n", store.StoreName, dest)
	return nil
}
