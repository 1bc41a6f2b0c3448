package docqa

import (
	"fmt"

	"github.com/charmbracelet/huh"
	"github.com/schardosin/docqa/pkg/config"
	"github.com/schardosin/docqa/pkg/provider"
)

func handleSetupCommand() error {
	cfg, err := config.LoadAppConfig()
	if err != nil {
		fmt.Printf("Error loading config: %v\n", err)
		return err
	}

	environment := cfg.General.Environment
	selectedProvider := cfg.Server.Provider
	model := cfg.Server.Model
	var apiKey, baseURL string

	providerOptions := make([]huh.Option[string], 0)
	for _, id := range provider.GetProviderIDs() {
		providerOptions = append(providerOptions, huh.NewOption(provider.GetProviderDisplayName(id), id))
	}

	needsKey := func() bool {
		_, ok := config.ProviderEnvMapping[selectedProvider]
		return ok
	}
	isLocal := func() bool {
		return selectedProvider == "ollama" || selectedProvider == "lm_studio"
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Which backend should the chat client use?").
				Options(
					huh.NewOption("Local ("+cfg.General.LocalURL+")", config.EnvLocal),
					huh.NewOption("Remote ("+cfg.General.RemoteURL+")", config.EnvRemote),
				).
				Value(&environment),
			huh.NewSelect[string]().
				Title("Which model provider should 'docqa serve' use?").
				Options(providerOptions...).
				Value(&selectedProvider),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("API key").
				Description("Leave empty to keep the current key").
				EchoMode(huh.EchoModePassword).
				Value(&apiKey),
		).WithHideFunc(func() bool { return !needsKey() }),
		huh.NewGroup(
			huh.NewInput().
				Title("Base URL").
				Description("Leave empty for the provider default").
				Value(&baseURL),
		).WithHideFunc(func() bool { return !isLocal() }),
		huh.NewGroup(
			huh.NewInput().
				Title("Model").
				Description("Leave empty for the provider default").
				Value(&model),
		),
	)

	if err := form.Run(); err != nil {
		return err
	}

	cfg.General.Environment = environment
	if selectedProvider != cfg.Server.Provider && model == cfg.Server.Model {
		// the old model most likely does not exist on the new provider
		model = ""
	}
	cfg.Server.Provider = selectedProvider
	cfg.Server.Model = model

	if cfg.Providers[selectedProvider] == nil {
		cfg.Providers[selectedProvider] = make(config.ProviderConfig)
	}
	if apiKey != "" {
		cfg.Providers[selectedProvider]["api_key"] = apiKey
	}
	if baseURL != "" {
		cfg.Providers[selectedProvider]["base_url"] = baseURL
	}

	if cfg.Server.Model == "" {
		if m, err := provider.ResolveModel(selectedProvider, ""); err == nil {
			cfg.Server.Model = m
		} else {
			fmt.Printf("Warning: %v. Set server.model with 'docqa config edit'.\n", err)
		}
	}

	if err := config.SaveAppConfig(cfg); err != nil {
		fmt.Printf("Error saving config: %v\n", err)
		return err
	}

	fmt.Printf("Set %s as provider (model: %s).\n", provider.GetProviderDisplayName(selectedProvider), cfg.Server.Model)
	fmt.Println("Configuration saved successfully!")
	return nil
}
