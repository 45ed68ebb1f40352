// Copyright (c) RLMBox Authors.
// Licensed under the MIT License.

/*
Package config loads the rlmbox service configuration.

Precedence is defaults → YAML file → environment variables:

	cfg, err := config.NewLoader().
	    WithConfigPath("config.yaml").
	    WithEnvPrefix("RLMBOX").
	    Load()

Environment variable names follow the struct's env tags, joined by
underscores under the prefix, e.g. RLMBOX_SANDBOX_MAX_CALLS.
*/
package config
