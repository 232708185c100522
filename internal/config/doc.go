// Package config loads engine configuration for mutate tools.
//
// Configuration lives in mutate.json, mutate.yaml or mutate.yml. Fields
// that are left out keep their defaults.
//
// # Configuration File Structure
//
//	{
//	  "capability": {"native": true},
//	  "dedupe": {"insertion": true, "removal": true, "attribute": false},
//	  "metrics": {"enabled": true, "namespace": "mutate", "subsystem": "bench"},
//	  "tracing": {"tracerName": "github.com/vango-dev/mutate"},
//	  "log": {"level": "info"}
//	}
//
// # Usage
//
//	cfg, err := config.Load(".")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	err = config.Watch(ctx, cfg.Path(), func(next *config.Config) {
//	    apply(next)
//	})
package config
