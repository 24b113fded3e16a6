package config

import (
	"maps"
	"slices"
	"strconv"
	"strings"
)

// Change is one setting that differs between two configurations.
type Change struct {
	Key string `json:"key"`
	Old string `json:"old"`
	New string `json:"new"`
}

// DiffConfigs lists the settings that differ between old and updated, keyed
// by their YAML path and sorted by key.
func DiffConfigs(old, updated *Config) []Change {
	before := flatten(old)
	after := flatten(updated)

	keys := make(map[string]struct{}, len(before)+len(after))
	for k := range before {
		keys[k] = struct{}{}
	}

	for k := range after {
		keys[k] = struct{}{}
	}

	var changes []Change

	for _, key := range slices.Sorted(maps.Keys(keys)) {
		if before[key] != after[key] {
			changes = append(changes, Change{Key: key, Old: before[key], New: after[key]})
		}
	}

	return changes
}

// flatten maps every non-empty setting to its YAML path.
func flatten(c *Config) map[string]string {
	out := make(map[string]string)
	if c == nil {
		return out
	}

	set := func(key, value string) {
		if value != "" {
			out[key] = value
		}
	}

	if r := c.Runtime; r != nil {
		set("runtime.override_env", r.OverrideEnv)
		set("runtime.fallback_env", r.FallbackEnv)
		set("runtime.versions", strings.Join(r.Versions, ","))
	}

	if o := c.Options; o != nil {
		set("options.file", o.File)
		set("options.system_file", o.SystemFile)
		set("options.properties_file", o.PropertiesFile)
		set("options.mode", string(o.Mode))
		set("options.boot_jars", strings.Join(o.BootJars, ","))
	}

	if e := c.Entry; e != nil {
		set("entry.main_module", e.MainModule)
		set("entry.main_class", e.MainClass)
		set("entry.processor_class", e.ProcessorClass)
		set("entry.processor_method", e.ProcessorMethod)
	}

	if i := c.Instance; i != nil {
		if i.Disabled {
			set("instance.disabled", strconv.FormatBool(i.Disabled))
		}

		set("instance.prefix", i.Prefix)
	}

	if s := c.Settings; s != nil {
		set("settings.log_level", s.LogLevel)
		set("settings.log_file", s.LogFile)
	}

	return out
}

// HasChanges reports whether updated differs from old in any setting.
func HasChanges(old, updated *Config) bool {
	return len(DiffConfigs(old, updated)) > 0
}
