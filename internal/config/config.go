package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       App       `mapstructure:"app"`
	AI        AI        `mapstructure:"ai"`
	Search    Search    `mapstructure:"search"`
	Images    Images    `mapstructure:"images"`
	Affiliate Affiliate `mapstructure:"affiliate"`
	GitHub    GitHub    `mapstructure:"github"`
	Output    Output    `mapstructure:"output"`
	Pipeline  Pipeline  `mapstructure:"pipeline"`
}

// App holds general application configuration
type App struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
}

// AI holds AI/LLM configuration
type AI struct {
	Gemini GeminiConfig `mapstructure:"gemini"`
}

// GeminiConfig holds Google Gemini configuration
type GeminiConfig struct {
	APIKey          string  `mapstructure:"api_key"`
	BaseURL         string  `mapstructure:"base_url"`
	ProModel        string  `mapstructure:"pro_model"`
	FlashModel      string  `mapstructure:"flash_model"`
	ImageModel      string  `mapstructure:"image_model"`
	Timeout         string  `mapstructure:"timeout"`
	Temperature     float32 `mapstructure:"temperature"`
	TopK            int32   `mapstructure:"top_k"`
	TopP            float32 `mapstructure:"top_p"`
	MaxOutputTokens int32   `mapstructure:"max_output_tokens"`
}

// Search holds web search configuration
type Search struct {
	Provider   string `mapstructure:"provider"`
	JinaAPIKey string `mapstructure:"jina_api_key"`
	MaxResults int    `mapstructure:"max_results"`
	Timeout    string `mapstructure:"timeout"`
}

// Images holds image generation and optimization configuration
type Images struct {
	PacingDelay    string `mapstructure:"pacing_delay"`
	MaxRetries     int    `mapstructure:"max_retries"`
	PCWidth        int    `mapstructure:"pc_width"`
	PCMaxBytes     int    `mapstructure:"pc_max_bytes"`
	MobileWidth    int    `mapstructure:"mobile_width"`
	MobileMaxBytes int    `mapstructure:"mobile_max_bytes"`
}

// Affiliate holds affiliate link configuration
type Affiliate struct {
	AmazonAssociateID  string   `mapstructure:"amazon_associate_id"`
	RakutenAffiliateID string   `mapstructure:"rakuten_affiliate_id"`
	RakutenBoostWords  []string `mapstructure:"rakuten_boost_words"`
	ProductsFile       string   `mapstructure:"products_file"`
}

// GitHub holds publish target configuration
type GitHub struct {
	Token   string `mapstructure:"token"`
	Owner   string `mapstructure:"owner"`
	Repo    string `mapstructure:"repo"`
	Branch  string `mapstructure:"branch"`
	BaseURL string `mapstructure:"base_url"`
	SiteURL string `mapstructure:"site_url"`
}

// Output holds local artifact output configuration
type Output struct {
	Directory string `mapstructure:"directory"`
}

// Pipeline holds orchestration configuration
type Pipeline struct {
	MaxSectionRetries int `mapstructure:"max_section_retries"`
	MinSubHeadings    int `mapstructure:"min_sub_headings"`
	MaxSubHeadings    int `mapstructure:"max_sub_headings"`
}

// Load loads configuration from file, environment variables, and defaults
func Load(configFile string) (*Config, error) {
	// Load .env file if present (ignore errors - file is optional)
	_ = godotenv.Load()

	viper.Reset()

	if configFile != "" {
		viper.SetConfigFile(configFile)
	} else {
		viper.SetConfigName(".autoblog")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home)
		}
	}

	setDefaults()
	bindEnvironmentVariables()

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := postProcessConfig(&config); err != nil {
		return nil, err
	}

	if err := validateConfig(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	// App defaults
	viper.SetDefault("app.debug", false)
	viper.SetDefault("app.log_level", "info")

	// Gemini defaults
	viper.SetDefault("ai.gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	viper.SetDefault("ai.gemini.pro_model", "gemini-2.5-pro")
	viper.SetDefault("ai.gemini.flash_model", "gemini-2.5-flash")
	viper.SetDefault("ai.gemini.image_model", "gemini-2.0-flash-preview-image-generation")
	viper.SetDefault("ai.gemini.timeout", "120s")
	viper.SetDefault("ai.gemini.temperature", 0.7)
	viper.SetDefault("ai.gemini.top_k", 40)
	viper.SetDefault("ai.gemini.top_p", 0.95)
	viper.SetDefault("ai.gemini.max_output_tokens", 8192)

	// Search defaults
	viper.SetDefault("search.provider", "jina")
	viper.SetDefault("search.max_results", 5)
	viper.SetDefault("search.timeout", "30s")

	// Image defaults
	viper.SetDefault("images.pacing_delay", "5s")
	viper.SetDefault("images.max_retries", 5)
	viper.SetDefault("images.pc_width", 800)
	viper.SetDefault("images.pc_max_bytes", 30720)
	viper.SetDefault("images.mobile_width", 350)
	viper.SetDefault("images.mobile_max_bytes", 10240)

	// Affiliate defaults
	viper.SetDefault("affiliate.products_file", "products.html")

	// GitHub defaults
	viper.SetDefault("github.branch", "main")
	viper.SetDefault("github.base_url", "https://api.github.com")

	// Output defaults
	viper.SetDefault("output.directory", "output")

	// Pipeline defaults
	viper.SetDefault("pipeline.max_section_retries", 3)
	viper.SetDefault("pipeline.min_sub_headings", 5)
	viper.SetDefault("pipeline.max_sub_headings", 6)
}

// bindEnvironmentVariables sets up flexible environment variable binding
func bindEnvironmentVariables() {
	bindEnvKeys("ai.gemini.api_key", []string{
		"GEMINI_API_KEY",
		"GOOGLE_GEMINI_API_KEY",
		"GOOGLE_AI_API_KEY",
	})

	bindEnvKeys("search.jina_api_key", []string{
		"JINA_API_KEY",
	})

	bindEnvKeys("github.token", []string{
		"GITHUB_TOKEN",
		"GH_TOKEN",
	})

	bindEnvKeys("github.owner", []string{
		"GITHUB_OWNER",
	})

	bindEnvKeys("github.repo", []string{
		"GITHUB_REPO",
	})

	bindEnvKeys("affiliate.amazon_associate_id", []string{
		"AMAZON_ASSOCIATE_ID",
		"AMAZON_PARTNER_TAG",
	})

	bindEnvKeys("affiliate.rakuten_affiliate_id", []string{
		"RAKUTEN_AFFILIATE_ID",
	})

	bindEnvKeys("app.debug", []string{
		"DEBUG",
		"AUTOBLOG_DEBUG",
	})

	if words := os.Getenv("RAKUTEN_BOOST_KEYWORDS"); words != "" {
		viper.Set("affiliate.rakuten_boost_words", strings.Split(words, ","))
	}
}

// bindEnvKeys binds the first found environment variable to a viper key
func bindEnvKeys(viperKey string, envKeys []string) {
	for _, envKey := range envKeys {
		if value := os.Getenv(envKey); value != "" {
			viper.Set(viperKey, value)
			return
		}
	}
}

// postProcessConfig applies post-processing to configuration values
func postProcessConfig(config *Config) error {
	if config.Output.Directory != "" {
		config.Output.Directory = expandPath(config.Output.Directory)
	}
	if config.Affiliate.ProductsFile != "" {
		config.Affiliate.ProductsFile = expandPath(config.Affiliate.ProductsFile)
	}

	durations := map[string]string{
		"ai.gemini.timeout":   config.AI.Gemini.Timeout,
		"search.timeout":      config.Search.Timeout,
		"images.pacing_delay": config.Images.PacingDelay,
	}
	for key, duration := range durations {
		if duration != "" {
			if _, err := time.ParseDuration(duration); err != nil {
				return fmt.Errorf("invalid duration for %s: %s", key, duration)
			}
		}
	}

	return nil
}

// validateConfig checks that required values are coherent
func validateConfig(config *Config) error {
	if config.Images.PCWidth <= 0 || config.Images.MobileWidth <= 0 {
		return fmt.Errorf("image widths must be positive")
	}
	if config.Pipeline.MaxSubHeadings < config.Pipeline.MinSubHeadings {
		return fmt.Errorf("pipeline.max_sub_headings must be >= pipeline.min_sub_headings")
	}
	return nil
}

// expandPath expands ~ and environment variables in paths
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		path = filepath.Join(home, path[2:])
	}
	return os.ExpandEnv(path)
}

// GeminiTimeout returns the parsed Gemini request timeout.
func (c *Config) GeminiTimeout() time.Duration {
	d, err := time.ParseDuration(c.AI.Gemini.Timeout)
	if err != nil {
		return 120 * time.Second
	}
	return d
}

// ImagePacingDelay returns the parsed delay between image generation calls.
func (c *Config) ImagePacingDelay() time.Duration {
	d, err := time.ParseDuration(c.Images.PacingDelay)
	if err != nil {
		return 5 * time.Second
	}
	return d
}
