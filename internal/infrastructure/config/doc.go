// Package config loads and validates marquee configuration.
//
// Configuration comes from three layers, each overriding the last:
//
//  1. Hardcoded defaults (a 64x32 headless panel against a local broker)
//  2. The YAML file passed to Load
//  3. MARQUEE_* environment variables (secrets and deploy-time overrides)
//
// # Example
//
//	cfg, err := config.Load("configs/config.yaml")
//	if err != nil {
//	    return err
//	}
//	fmt.Println(cfg.Display.Width, cfg.MQTT.Broker.Host)
//
// Display geometry, scroll timing, and the HUB75 pin map are all plain
// configuration: nothing in the rendering core assumes a particular panel
// size.
package config
