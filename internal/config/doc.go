// Package config provides configuration loading, merging, and validation
// facilities for the sanctuary CLI.
//
// Configuration is assembled from multiple sources in the following priority
// order (earlier sources win for every field they set):
//  1. Command-line flags
//  2. Environment variables
//  3. JSON config file
//  4. Built-in defaults
//
// The main entry points are [BindFlags] and [Load].
package config
