// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

package client

import "context"

// Client defines the minimal lifecycle contract for runnable interactive
// applications.
type Client interface {
	// Run starts the application and blocks until exit.
	Run(ctx context.Context) error
}

// Prompter reads user input. Secret input is not echoed when the input is a
// terminal.
type Prompter interface {
	Line(prompt string) (string, error)
	Secret(prompt string) (string, error)
	Confirm(ctx context.Context, prompt string) (bool, error)
}
