package upload

// DefaultAllowedExtensions are the accepted upload suffixes. Matching is
// case-sensitive.
var DefaultAllowedExtensions = []string{".mp4", ".mov", ".avi", ".mkv"}

// Config is the upload section of the application config.
type Config struct {
	AllowedExtensions []string `yaml:"allowed_extensions" mapstructure:"allowed_extensions"`
}

// ApplyDefaults fills in zero-valued fields.
func (c *Config) ApplyDefaults() {
	if len(c.AllowedExtensions) == 0 {
		c.AllowedExtensions = append([]string(nil), DefaultAllowedExtensions...)
	}
}
