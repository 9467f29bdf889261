// Package config loads filesig configuration.
//
// Values come from a YAML file found in the standard search paths (or given
// explicitly), an optional .env file, and FILESIG_ prefixed environment
// variables, lowest precedence first. Nested keys map to underscores, so
// signature.block_size is set by FILESIG_SIGNATURE_BLOCK_SIZE.
//
//	cfg, err := config.Load(config.WithConfigFile("filesig.yml"))
//	if err != nil {
//		return err
//	}
//	params, err := cfg.Signature.Params()
package config
