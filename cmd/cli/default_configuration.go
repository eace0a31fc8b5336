package cli

import (
	"bytes"
	_ "embed"
)

// default_config.yaml holds only settings that are safe to ship. Endpoints, directories and
// the API key source stay out of it so that .env values can still supply their defaults.
//
//go:embed default_config.yaml
var embeddedDefaultConfigurationContent []byte

// EmbeddedDefaultConfiguration returns a copy of the embedded defaults and their format.
func EmbeddedDefaultConfiguration() ([]byte, string) {
	return bytes.Clone(embeddedDefaultConfigurationContent), configurationTypeConstant
}
