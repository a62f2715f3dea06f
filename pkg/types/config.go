package types

// Config is the root configuration document.
type Config struct {
	WorkDir  string         `json:"workDir,omitempty"`
	Log      LogConfig      `json:"log,omitempty"`
	Stores   StoresConfig   `json:"stores,omitempty"`
	Search   SearchConfig   `json:"search,omitempty"`
	Provider ProviderConfig `json:"provider,omitempty"`
	Limits   LimitsConfig   `json:"limits,omitempty"`
}

// LogConfig controls the zerolog setup.
type LogConfig struct {
	Level  string `json:"level,omitempty"`
	Pretty bool   `json:"pretty,omitempty"`
}

// StoresConfig names the backing services of the object store. When the
// fast or durable section is absent the store falls back to its local
// backend (in-memory and file-based respectively).
type StoresConfig struct {
	Bucket  string             `json:"bucket,omitempty"`
	Path    string             `json:"path,omitempty"` // base dir for the file backend
	Fast    FastStoreConfig    `json:"fast,omitempty"`
	Durable DurableStoreConfig `json:"durable,omitempty"`
}

// FastStoreConfig configures the redis backend.
type FastStoreConfig struct {
	Addr     string `json:"addr,omitempty"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db,omitempty"`
}

// DurableStoreConfig configures the S3-compatible backend.
type DurableStoreConfig struct {
	Endpoint  string `json:"endpoint,omitempty"`
	AccessKey string `json:"accessKey,omitempty"`
	SecretKey string `json:"secretKey,omitempty"`
	UseSSL    bool   `json:"useSSL,omitempty"`
}

// SearchConfig configures the search index collaborator.
type SearchConfig struct {
	URL        string `json:"url,omitempty"`
	APIKey     string `json:"apiKey,omitempty"`
	Collection string `json:"collection,omitempty"`
}

// ProviderConfig selects and configures the chat model provider.
type ProviderConfig struct {
	ID        string `json:"id,omitempty"` // "openai" or "anthropic"
	Model     string `json:"model,omitempty"`
	APIKey    string `json:"apiKey,omitempty"`
	BaseURL   string `json:"baseUrl,omitempty"`
	MaxTokens int    `json:"maxTokens,omitempty"`
}

// LimitsConfig bounds the orchestration loop.
type LimitsConfig struct {
	// MaxAutoContinue caps consecutive model turns issued without new
	// user input. Zero means the default.
	MaxAutoContinue int `json:"maxAutoContinue,omitempty"`
	// TokenBudget overrides the model's context window for history
	// trimming. Zero means use the catalog value.
	TokenBudget int `json:"tokenBudget,omitempty"`
}
