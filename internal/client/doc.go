// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package client implements the sanctuary command line application.
//
// It wires configuration, storage, the key lifecycle services and a software
// passkey authenticator into cobra commands, and runs the interactive shell
// with its auto-lock worker.
package client
