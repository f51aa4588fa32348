// Copyright 2026 The Linedesk Authors
// SPDX-License-Identifier: Apache-2.0

// Package config loads the linedesk console configuration.
//
// Configuration comes from a single file named by the --config flag or
// the LINEDESK_CONFIG environment variable. There is no search path.
// Files ending in .json or .jsonc are read as JSON with comments and
// trailing commas allowed; anything else is YAML.
//
// Secrets such as the server token stay out of the file. String
// values may reference the environment as ${VAR} or ${VAR:-default},
// and a dotenv file (by default .env beside the config file) is
// loaded into the environment before expansion. Variables already set
// in the process environment win over the dotenv file.
package config
