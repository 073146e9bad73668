// Package config provides configuration types and loading for harmock.
//
// Values come from several sources with the following precedence:
//  1. Command-line flags (highest priority)
//  2. Environment variables (HARMOCK_*)
//  3. Config file (.harmock.yaml in the working directory, or --config)
//  4. Default values (lowest priority)
//
// Sources records where each value came from so `harmock config` can explain
// the effective configuration.
package config
