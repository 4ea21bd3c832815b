// Package config loads hookscope.json.
//
// Every field has a default, so a missing file is not an error for
// LoadOrDefault. Environment variables override file values.
//
// # Configuration File Structure
//
//	{
//	  "debug": true,
//	  "log": {
//	    "level": "debug",
//	    "format": "json"
//	  },
//	  "loop": {
//	    "queueSize": 256,
//	    "microtaskBudget": 1024
//	  },
//	  "server": {
//	    "addr": "localhost:8080",
//	    "allowedOrigins": ["https://example.com"]
//	  },
//	  "metrics": {
//	    "enabled": true,
//	    "namespace": "hookscope"
//	  },
//	  "tracing": {
//	    "enabled": false
//	  }
//	}
//
// # Environment
//
//	HOOKSCOPE_DEBUG      overrides debug
//	HOOKSCOPE_LOG_LEVEL  overrides log.level
//	HOOKSCOPE_ADDR       overrides server.addr
//
// # Usage
//
//	cfg, err := config.LoadOrDefault("hookscope.json")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := cfg.Validate(); err != nil {
//	    log.Fatal(err)
//	}
//	logger := cfg.Logger(os.Stderr)
package config
