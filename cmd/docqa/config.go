package docqa

import (
	"fmt"
	"os"

	"github.com/schardosin/docqa/pkg/config"
	"gopkg.in/yaml.v3"
)

func handleConfigCommand(args []string) error {
	if len(args) < 1 || args[0] == "-h" || args[0] == "--help" {
		printConfigUsage()
		return nil
	}

	switch args[0] {
	case "edit":
		return handleConfigEdit()
	case "show":
		return handleConfigShow()
	case "directory":
		return handleConfigDirectory()
	default:
		return fmt.Errorf("unknown config subcommand: %s", args[0])
	}
}

func printConfigUsage() {
	fmt.Println("usage: docqa config [-h] {edit,show,directory} ...")
	fmt.Println("")
	fmt.Println("positional arguments:")
	fmt.Println("  {edit,show,directory}")
	fmt.Println("                        Configuration management commands")
	fmt.Println("    edit                Open config.yaml in default editor")
	fmt.Println("    show                Print the effective configuration")
	fmt.Println("    directory           Print the configuration directory path")
	fmt.Println("")
	fmt.Println("options:")
	fmt.Println("  -h, --help            show this help message and exit")
}

// handleConfigEdit writes the defaults out first so there is something to edit
func handleConfigEdit() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		if err := config.SaveAppConfigTo(path, config.Default()); err != nil {
			return fmt.Errorf("failed to create config file: %w", err)
		}
	}

	return openInEditor(path)
}

// handleConfigShow prints the config with defaults applied and secrets masked
func handleConfigShow() error {
	path, err := config.GetConfigPath()
	if err != nil {
		return fmt.Errorf("failed to get config path: %w", err)
	}

	cfg, err := config.LoadAppConfigFrom(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		fmt.Println("# Config file does not exist, showing defaults.")
	}

	for _, providerCfg := range cfg.Providers {
		for key, val := range providerCfg {
			if key == "api_key" {
				providerCfg[key] = maskSecret(val)
			}
		}
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

// maskSecret keeps the last 4 characters
func maskSecret(val string) string {
	if len(val) > 4 {
		return "****" + val[len(val)-4:]
	}
	return "****"
}

func handleConfigDirectory() error {
	dir, err := config.GetConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	fmt.Println(dir)
	return nil
}
