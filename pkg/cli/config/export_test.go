package config

// SetPath sets the config file path directly, bypassing flag parsing
func (a *AppConfig) SetPath(path string) {
	a.path = path
}
