package driven

// ConfigStore persists settings under dotted keys such as "server.addr".
// Typed getters return the zero value for missing keys and for values of
// another type, so callers apply their own defaults.
type ConfigStore interface {
	Get(key string) (any, bool)
	GetString(key string) string
	GetInt(key string) int

	// GetFloat widens integers.
	GetFloat(key string) float64

	GetBool(key string) bool
	GetStringSlice(key string) []string

	// Set stores and persists a value. A nil value removes the key.
	Set(key string, value any) error

	Save() error

	// Load rereads persisted settings, replacing those held in memory.
	Load() error

	// Path is where settings are persisted.
	Path() string
}
