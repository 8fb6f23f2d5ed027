package ota

// Built-in first-party vendor index URLs, one HTTP-backed provider per
// manufacturer with a published index, plus the aggregate index.
// config.OTAConfig lets a deployment override each per-vendor URL with
// its own mirror; BuiltinProviders always uses the default aggregate URL.
const (
	DefaultIKEAIndexURL      = "https://fw.ota.homesmart.ikea.net/feed/version_info.json"
	DefaultLEDVANCEIndexURL  = "https://api.update.ledvance.com/v1/zigbee/firmwares"
	DefaultSonoffIndexURL    = "https://zigbee-ota.sonoff.tech/releases/upgrade.json"
	DefaultInovelliIndexURL  = "https://files.inovelli.com/firmware/firmware-zha.json"
	DefaultSalusIndexURL     = "https://eu.salus-ac.com/ota/index.json"
	DefaultKoenkkAggregateURL = "https://raw.githubusercontent.com/Koenkk/zigbee-OTA/master/index.json"
)

// NewIKEAProvider returns the first-party IKEA TRADFRI provider.
func NewIKEAProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("ikea", orDefault(indexURL, DefaultIKEAIndexURL), PriorityFirstParty)
}

// NewLEDVANCEProvider returns the first-party LEDVANCE provider.
func NewLEDVANCEProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("ledvance", orDefault(indexURL, DefaultLEDVANCEIndexURL), PriorityFirstParty)
}

// NewSonoffProvider returns the first-party Sonoff provider.
func NewSonoffProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("sonoff", orDefault(indexURL, DefaultSonoffIndexURL), PriorityFirstParty)
}

// NewInovelliProvider returns the first-party Inovelli provider.
func NewInovelliProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("inovelli", orDefault(indexURL, DefaultInovelliIndexURL), PriorityFirstParty)
}

// NewSalusProvider returns the first-party Salus provider.
func NewSalusProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("salus", orDefault(indexURL, DefaultSalusIndexURL), PriorityFirstParty)
}

// NewKoenkkAggregateProvider returns the community-maintained aggregate
// index covering vendors with no first-party feed of their own. It is
// the lowest tie-break priority since a first-party feed, when present,
// is assumed more current.
func NewKoenkkAggregateProvider(indexURL string) *HTTPProvider {
	return NewHTTPProvider("koenkk-aggregate", orDefault(indexURL, DefaultKoenkkAggregateURL), PriorityAggregate)
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

// BuiltinProviders returns the standard provider set, wired from
// config.Config.OTA: a local directory scanner (when
// a directory is configured) followed by one provider per named
// vendor, plus the aggregate index, plus any extra providers the
// deployment names by URL.
func BuiltinProviders(otauDirectory, ikeaURL, ledvanceURL, sonoffURL, inovelliURL, salusURL string, extraProviderURLs []string) []Provider {
	var providers []Provider
	if otauDirectory != "" {
		providers = append(providers, NewLocalDirectoryProvider(otauDirectory))
	}
	providers = append(providers,
		NewIKEAProvider(ikeaURL),
		NewLEDVANCEProvider(ledvanceURL),
		NewSonoffProvider(sonoffURL),
		NewInovelliProvider(inovelliURL),
		NewSalusProvider(salusURL),
		NewKoenkkAggregateProvider(""),
	)
	for _, url := range extraProviderURLs {
		providers = append(providers, NewHTTPProvider("extra:"+url, url, PriorityAggregate))
	}
	return providers
}
