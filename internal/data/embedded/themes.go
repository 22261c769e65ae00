// Package embedded provides access to embedded theme configuration files.
package embedded

import _ "embed"

// DarkThemeData contains the embedded dark theme YAML data.
//
//go:embed themes/dark.yaml
var DarkThemeData []byte

// LightThemeData contains the embedded light theme YAML data.
//
//go:embed themes/light.yaml
var LightThemeData []byte
