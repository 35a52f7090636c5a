package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	WhatsApp WhatsAppConfig `mapstructure:"whatsapp"`
	Google   GoogleConfig   `mapstructure:"google"`
}

type ServerConfig struct {
	Port           string `mapstructure:"port"`
	PublicBaseURL  string `mapstructure:"public_base_url"`
	UseMemoryStore bool   `mapstructure:"use_memory_store"`
}

type WhatsAppConfig struct {
	VerifyToken   string `mapstructure:"verify_token"`
	GraphToken    string `mapstructure:"graph_token"`
	GraphBaseURL  string `mapstructure:"graph_base_url"`
	APIVersion    string `mapstructure:"api_version"`
	PhoneNumberID string `mapstructure:"phone_number_id"`
	AppSecret     string `mapstructure:"app_secret"`
	TestingNumber string `mapstructure:"testing_number"`
}

type GoogleConfig struct {
	ClientID     string `mapstructure:"client_id"`
	ClientSecret string `mapstructure:"client_secret"`
	RedirectURI  string `mapstructure:"redirect_uri"`
	Scopes       string `mapstructure:"scopes"`
}

// MessagesEndpoint returns the Graph API messages URL for the configured
// business phone number.
func (w WhatsAppConfig) MessagesEndpoint() string {
	return fmt.Sprintf("%s/%s/%s/messages",
		strings.TrimSuffix(w.GraphBaseURL, "/"), w.APIVersion, w.PhoneNumberID)
}

// LoadConfig reads an optional config file and overlays environment
// variables. A missing file is fine; the deployment surface is env-style.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("server.port", "8080")
	v.SetDefault("server.use_memory_store", false)
	v.SetDefault("whatsapp.graph_base_url", "https://graph.facebook.com")
	v.SetDefault("whatsapp.api_version", "v24.0")
	v.SetDefault("google.scopes", "https://www.googleapis.com/auth/spreadsheets https://www.googleapis.com/auth/drive.file")

	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !strings.Contains(err.Error(), "no such file") {
				return nil, err
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Environment variables take precedence over anything in the file.
	overrides := map[string]*string{
		"PORT":                     &cfg.Server.Port,
		"PUBLIC_BASE_URL":          &cfg.Server.PublicBaseURL,
		"WEBHOOK_VERIFY_TOKEN":     &cfg.WhatsApp.VerifyToken,
		"GRAPH_API_TOKEN":          &cfg.WhatsApp.GraphToken,
		"GRAPH_API_BASE_URL":       &cfg.WhatsApp.GraphBaseURL,
		"WHATSAPP_API_VERSION":     &cfg.WhatsApp.APIVersion,
		"PHONE_NUMBER_ID":          &cfg.WhatsApp.PhoneNumberID,
		"APP_SECRET":               &cfg.WhatsApp.AppSecret,
		"TESTING_NUMBER":           &cfg.WhatsApp.TestingNumber,
		"CLIENT_ID_GOOGLE_API":     &cfg.Google.ClientID,
		"CLIENT_SECRET_GOOGLE_API": &cfg.Google.ClientSecret,
		"REDIRECT_URI_GOOGLE_API":  &cfg.Google.RedirectURI,
		"SCOPES_GOOGLE_API":        &cfg.Google.Scopes,
	}
	for key, dst := range overrides {
		if val := v.GetString(key); val != "" {
			*dst = val
		}
	}
	if v.IsSet("USE_MEMORY_STORE") {
		cfg.Server.UseMemoryStore = v.GetBool("USE_MEMORY_STORE")
	}

	return &cfg, nil
}

// Validate reports the first missing setting the bot cannot run without.
func (c *Config) Validate() error {
	checks := []struct {
		name  string
		value string
	}{
		{"WEBHOOK_VERIFY_TOKEN", c.WhatsApp.VerifyToken},
		{"GRAPH_API_TOKEN", c.WhatsApp.GraphToken},
		{"PHONE_NUMBER_ID", c.WhatsApp.PhoneNumberID},
		{"CLIENT_ID_GOOGLE_API", c.Google.ClientID},
		{"CLIENT_SECRET_GOOGLE_API", c.Google.ClientSecret},
		{"REDIRECT_URI_GOOGLE_API", c.Google.RedirectURI},
	}
	for _, chk := range checks {
		if chk.value == "" {
			return fmt.Errorf("missing required configuration: %s", chk.name)
		}
	}
	return nil
}
