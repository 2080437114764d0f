package main

import "testing"

func TestGetConfigPath(t *testing.T) {
	t.Run("default", func(t *testing.T) {
		t.Setenv("MARQUEE_CONFIG", "")
		if got := getConfigPath(); got != defaultConfigPath {
			t.Errorf("getConfigPath() = %q, want %q", got, defaultConfigPath)
		}
	})

	t.Run("env override", func(t *testing.T) {
		t.Setenv("MARQUEE_CONFIG", "/etc/marquee/config.yaml")
		if got := getConfigPath(); got != "/etc/marquee/config.yaml" {
			t.Errorf("getConfigPath() = %q, want env override", got)
		}
	})
}
