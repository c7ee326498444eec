// Package config loads, merges and validates the gateway configuration.
//
// Sources, highest priority first:
//  1. Command-line flags
//  2. Environment variables
//  3. JSON or YAML config file
//  4. Built-in defaults
//
// The gateway binary uses [GetGatewayConfig]; the precache manifest is read
// with [LoadManifest].
package config
