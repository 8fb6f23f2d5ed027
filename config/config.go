package config

import (
	"fmt"
	"os"

	"dario.cat/mergo"
	"gopkg.in/yaml.v3"
)

// DeviceConfig forwards to the radio driver.
type DeviceConfig struct {
	Path        string `yaml:"path"`
	BaudRate    int    `yaml:"baudrate"`
	FlowControl bool   `yaml:"flow_control"`
}

// NetworkConfig is used when auto-forming a network.
type NetworkConfig struct {
	Channel        uint8    `yaml:"channel"`
	Channels       []uint8  `yaml:"channels"`
	PANID          uint16   `yaml:"pan_id"`
	ExtendedPANID  uint64   `yaml:"extended_pan_id"`
	NetworkKey     string   `yaml:"network_key"`
	NetworkKeySeq  byte     `yaml:"network_key_seq"`
	TCLinkKey      string   `yaml:"tc_link_key"`
	TCAddress      uint64   `yaml:"tc_address"`
	UpdateID       byte     `yaml:"update_id"`
}

// OTAConfig names the built-in provider set plus a local directory and
// an aggregate list of extra providers.
type OTAConfig struct {
	OTAUDirectory   string   `yaml:"otau_directory"`
	IKEAProvider    string   `yaml:"ikea_provider"`
	LEDVANCEProvider string  `yaml:"ledvance_provider"`
	SonoffProvider  string   `yaml:"sonoff_provider"`
	InovelliProvider string  `yaml:"inovelli_provider"`
	SalusProvider   string   `yaml:"salus_provider"`
	ExtraProviders  []string `yaml:"extra_providers"`
}

// SourceRoutingConfig toggles source-route relay tracking.
type SourceRoutingConfig struct {
	Enabled bool `yaml:"enabled"`
}

// StartupConfig controls whether start() auto-forms a network when none
// exists.
type StartupConfig struct {
	AutoForm bool `yaml:"auto_form"`
}

// Config is the full configuration surface this core accepts.
type Config struct {
	DatabasePath  string              `yaml:"database_path"`
	Device        DeviceConfig        `yaml:"device"`
	Network       NetworkConfig       `yaml:"network"`
	OTA           OTAConfig           `yaml:"ota"`
	SourceRouting SourceRoutingConfig `yaml:"source_routing"`
	Startup       StartupConfig       `yaml:"startup"`
}

// defaults is merged into every loaded Config for fields left zero in
// the file.
func defaults() Config {
	return Config{
		DatabasePath: "zha.db",
		Device: DeviceConfig{
			BaudRate: 115200,
		},
		Network: NetworkConfig{
			Channel: 15,
		},
		Startup: StartupConfig{
			AutoForm: true,
		},
	}
}

// Load reads a YAML file at path and fills any zero-valued fields from
// defaults() via dario.cat/mergo, so a config file only needs to specify
// the fields it wants to override.
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("config: read %s: %w", path, err)
	}

	cfg := Config{}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("config: parse %s: %w", path, err)
	}

	merged := defaults()
	if err := mergo.Merge(&merged, cfg, mergo.WithOverride); err != nil {
		return Config{}, fmt.Errorf("config: merge defaults: %w", err)
	}
	return merged, nil
}
