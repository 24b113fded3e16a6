package config

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"defaults", func(*Config) {}, ""},
		{"bad override env", func(c *Config) { c.Runtime.OverrideEnv = "MY-JRE" }, "runtime.override_env"},
		{"empty fallback env", func(c *Config) { c.Runtime.FallbackEnv = "" }, "runtime.fallback_env"},
		{"unknown mode", func(c *Config) { c.Options.Mode = "jar" }, "options.mode"},
		{"dotted main class", func(c *Config) { c.Entry.MainClass = "consulo.Main" }, "entry.main_class"},
		{"bad processor class", func(c *Config) { c.Entry.ProcessorClass = "a//b" }, "entry.processor_class"},
		{"missing processor method", func(c *Config) { c.Entry.ProcessorMethod = " " }, "entry.processor_method"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := Default()
			tt.mutate(cfg)

			err := Validate(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}

				return
			}

			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %v, want it to mention %s", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_Nil(t *testing.T) {
	t.Parallel()

	if err := Validate(nil); err == nil {
		t.Error("Validate(nil) should fail")
	}
}

func TestValidate_CollectsAll(t *testing.T) {
	t.Parallel()

	cfg := Default()
	cfg.Runtime.OverrideEnv = "1BAD"
	cfg.Entry.MainClass = ""

	err := Validate(cfg)
	if err == nil {
		t.Fatal("Validate() should fail")
	}

	for _, key := range []string{"runtime.override_env", "entry.main_class"} {
		if !strings.Contains(err.Error(), key) {
			t.Errorf("error %q should mention %s", err, key)
		}
	}
}
