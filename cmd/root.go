package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/spigell/job-matcher/internal/jobs"
	"github.com/spigell/job-matcher/internal/providers"
)

const (
	app       = "job-matcher"
	envPrefix = "JOB_MATCHER"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Matching  MatchingConfig  `mapstructure:"matching"`
	AI        AIConfig        `mapstructure:"ai"`
	Providers ProvidersConfig `mapstructure:"providers"`
	Salary    SalaryConfig    `mapstructure:"salary"`
	Exclude   ExcludeConfig   `mapstructure:"exclude"`
}

type ServerConfig struct {
	Listen       string        `mapstructure:"listen" validate:"required"`
	BodyLimit    int           `mapstructure:"body-limit" validate:"gte=0"`
	ReadTimeout  time.Duration `mapstructure:"read-timeout" validate:"gte=0"`
	WriteTimeout time.Duration `mapstructure:"write-timeout" validate:"gte=0"`
}

type MatchingConfig struct {
	Deadline   time.Duration `mapstructure:"deadline" validate:"gt=0"`
	MaxResults int           `mapstructure:"max-results" validate:"gt=0,lte=50"`
}

type AIConfig struct {
	Provider     string        `mapstructure:"provider" validate:"oneof=gemini openai none"`
	Timeout      time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxLogLength int           `mapstructure:"max-log-length" validate:"gte=0"`
	Gemini       GeminiConfig  `mapstructure:"gemini"`
	OpenAI       OpenAIConfig  `mapstructure:"openai"`
}

type GeminiConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	MaxRetries int    `mapstructure:"max-retries" validate:"gte=0,lte=10"`
}

type OpenAIConfig struct {
	APIKey     string `mapstructure:"api-key"`
	APIKeyFile string `mapstructure:"api-key-file"`
	Model      string `mapstructure:"model"`
	BaseURL    string `mapstructure:"base-url" validate:"omitempty,url"`
}

// ProviderConfig holds the settings shared by every job provider.
type ProviderConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	URL        string        `mapstructure:"url" validate:"omitempty,url"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"gte=0"`
	MaxRetries int           `mapstructure:"max-retries" validate:"gte=0,lte=5"`
	Rate       float64       `mapstructure:"rate" validate:"gte=0"`
}

type ProvidersConfig struct {
	Adzuna     AdzunaConfig     `mapstructure:"adzuna"`
	JSearch    JSearchConfig    `mapstructure:"jsearch"`
	ArbeitNow  ArbeitNowConfig  `mapstructure:"arbeitnow"`
	HeadHunter HeadHunterConfig `mapstructure:"headhunter"`
}

type AdzunaConfig struct {
	ProviderConfig `mapstructure:",squash"`
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Host           string `mapstructure:"host"`
	ResultsPerPage int    `mapstructure:"results-per-page" validate:"gte=0,lte=50"`
	Currency       string `mapstructure:"currency" validate:"omitempty,len=3"`
}

type JSearchConfig struct {
	ProviderConfig `mapstructure:",squash"`
	APIKey         string `mapstructure:"api-key"`
	APIKeyFile     string `mapstructure:"api-key-file"`
	Country        string `mapstructure:"country" validate:"omitempty,len=2"`
	DatePosted     string `mapstructure:"date-posted" validate:"omitempty,oneof=all today 3days week month"`
	Limit          int    `mapstructure:"limit" validate:"gte=0"`
}

type ArbeitNowConfig struct {
	ProviderConfig `mapstructure:",squash"`
	Scan           int `mapstructure:"scan" validate:"gte=0"`
	Limit          int `mapstructure:"limit" validate:"gte=0"`
}

type HeadHunterConfig struct {
	ProviderConfig `mapstructure:",squash"`
	UserAgent      string `mapstructure:"user-agent"`
	PerPage        int    `mapstructure:"per-page" validate:"gte=0,lte=100"`
	Areas          []int  `mapstructure:"areas"`
}

type SalaryConfig struct {
	Currency string             `mapstructure:"currency" validate:"len=3"`
	Rates    map[string]float64 `mapstructure:"rates" validate:"dive,gt=0"`
}

type ExcludeConfig struct {
	Employers []string `mapstructure:"employers"`
}

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:   app,
		Short: "job-matcher finds job listings that fit a resume across several job boards",
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is job-matcher.yaml in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

func initConfig() {
	// A missing .env is fine; the environment may already be populated.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("loading .env file: %v", err)
	}

	setDefaults(viper.GetViper())

	viper.SetEnvPrefix(envPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.AddConfigPath(".")
		viper.SetConfigName(app)
		viper.SetConfigType("yaml")
	}

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Defaults are enough when no config file was asked for explicitly.
		if cfgFile == "" && errors.As(err, &notFound) {
			return
		}
		// We can't proceed if the config file parsed with error.
		log.Fatal(err)
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.listen", ":8080")
	v.SetDefault("server.body-limit", 10<<20)
	v.SetDefault("server.read-timeout", 30*time.Second)
	v.SetDefault("server.write-timeout", 60*time.Second)

	v.SetDefault("matching.deadline", 20*time.Second)
	v.SetDefault("matching.max-results", 50)

	v.SetDefault("ai.provider", "gemini")
	v.SetDefault("ai.timeout", 30*time.Second)
	v.SetDefault("ai.max-log-length", 200)
	v.SetDefault("ai.gemini.api-key", "")
	v.SetDefault("ai.gemini.api-key-file", "")
	v.SetDefault("ai.gemini.model", "gemini-2.5-flash")
	v.SetDefault("ai.gemini.max-retries", 2)
	v.SetDefault("ai.openai.api-key", "")
	v.SetDefault("ai.openai.api-key-file", "")
	v.SetDefault("ai.openai.model", "gpt-4o-mini")
	v.SetDefault("ai.openai.base-url", "")

	for name, enabled := range map[string]bool{
		"adzuna":     true,
		"jsearch":    true,
		"arbeitnow":  true,
		"headhunter": false,
	} {
		prefix := "providers." + name + "."
		v.SetDefault(prefix+"enabled", enabled)
		v.SetDefault(prefix+"url", "")
		v.SetDefault(prefix+"timeout", 10*time.Second)
		v.SetDefault(prefix+"max-retries", 1)
		v.SetDefault(prefix+"rate", 2)
	}

	v.SetDefault("providers.adzuna.api-key", "")
	v.SetDefault("providers.adzuna.api-key-file", "")
	v.SetDefault("providers.adzuna.url", providers.AdzunaURL)
	v.SetDefault("providers.adzuna.host", providers.AdzunaHost)
	v.SetDefault("providers.adzuna.results-per-page", 20)
	v.SetDefault("providers.adzuna.currency", jobs.DefaultCurrency)

	v.SetDefault("providers.jsearch.api-key", "")
	v.SetDefault("providers.jsearch.api-key-file", "")
	v.SetDefault("providers.jsearch.url", providers.JSearchURL)
	v.SetDefault("providers.jsearch.country", "us")
	v.SetDefault("providers.jsearch.date-posted", "month")
	v.SetDefault("providers.jsearch.limit", 20)

	v.SetDefault("providers.arbeitnow.url", providers.ArbeitNowURL)
	v.SetDefault("providers.arbeitnow.scan", 50)
	v.SetDefault("providers.arbeitnow.limit", 15)

	v.SetDefault("providers.headhunter.url", "https://api.hh.ru")
	v.SetDefault("providers.headhunter.user-agent", "")
	v.SetDefault("providers.headhunter.per-page", 20)

	v.SetDefault("salary.currency", jobs.DefaultCurrency)
	v.SetDefault("salary.rates", map[string]float64{})
	v.SetDefault("exclude.employers", []string{})
}

func getConfig() (*Config, error) {
	return decodeConfig(viper.GetViper())
}

func decodeConfig(v *viper.Viper) (*Config, error) {
	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if err := validator.New().Struct(&config); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &config, nil
}
