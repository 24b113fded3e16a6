package config

// Merge overlays override onto base and returns a new configuration.
// Non-empty scalar fields and non-empty lists in override win; an override
// cannot unset a value, only replace it.
func Merge(base, override *Config) *Config {
	if base == nil {
		return override.Clone()
	}

	result := base.Clone()
	if override == nil {
		return result
	}

	result.Runtime = mergeRuntime(result.Runtime, override.Runtime)
	result.Options = mergeOptions(result.Options, override.Options)
	result.Entry = mergeEntry(result.Entry, override.Entry)
	result.Instance = mergeInstance(result.Instance, override.Instance)
	result.Settings = mergeSettings(result.Settings, override.Settings)

	return result
}

func mergeRuntime(base, override *RuntimeConfig) *RuntimeConfig {
	if override == nil {
		return base
	}

	if base == nil {
		base = &RuntimeConfig{}
	}

	base.OverrideEnv = pick(base.OverrideEnv, override.OverrideEnv)
	base.FallbackEnv = pick(base.FallbackEnv, override.FallbackEnv)

	if len(override.Versions) > 0 {
		base.Versions = cloneSlice(override.Versions)
	}

	return base
}

func mergeOptions(base, override *OptionsConfig) *OptionsConfig {
	if override == nil {
		return base
	}

	if base == nil {
		base = &OptionsConfig{}
	}

	base.File = pick(base.File, override.File)
	base.SystemFile = pick(base.SystemFile, override.SystemFile)
	base.PropertiesFile = pick(base.PropertiesFile, override.PropertiesFile)

	if override.Mode != "" {
		base.Mode = override.Mode
	}

	if len(override.BootJars) > 0 {
		base.BootJars = cloneSlice(override.BootJars)
	}

	return base
}

func mergeEntry(base, override *EntryConfig) *EntryConfig {
	if override == nil {
		return base
	}

	if base == nil {
		base = &EntryConfig{}
	}

	base.MainModule = pick(base.MainModule, override.MainModule)
	base.MainClass = pick(base.MainClass, override.MainClass)
	base.ProcessorClass = pick(base.ProcessorClass, override.ProcessorClass)
	base.ProcessorMethod = pick(base.ProcessorMethod, override.ProcessorMethod)

	return base
}

func mergeInstance(base, override *InstanceConfig) *InstanceConfig {
	if override == nil {
		return base
	}

	if base == nil {
		base = &InstanceConfig{}
	}

	// Disabled flag only ever switches on
	if override.Disabled {
		base.Disabled = true
	}

	base.Prefix = pick(base.Prefix, override.Prefix)

	return base
}

func mergeSettings(base, override *Settings) *Settings {
	if override == nil {
		return base
	}

	if base == nil {
		base = DefaultSettings()
	}

	base.LogLevel = pick(base.LogLevel, override.LogLevel)
	base.LogFile = pick(base.LogFile, override.LogFile)

	return base
}

func pick(base, override string) string {
	if override != "" {
		return override
	}

	return base
}
