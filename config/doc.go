// Package config defines the typed configuration surface this core
// accepts and a YAML loader that defaults missing fields.
//
// Config is a plain struct, built either as a literal or by Load; the
// file-loading path layers gopkg.in/yaml.v3 for parsing and
// dario.cat/mergo to merge a loaded document over built-in defaults.
package config
