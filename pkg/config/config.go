package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"causalUplift/domain"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Uplift    UpliftConfig
	Predictor PredictorConfig
	Artifact  ArtifactConfig
}

type AppConfig struct {
	Name        string
	Version     string
	Environment string
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	Enabled  bool
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

type JWTConfig struct {
	SecretKey string
}

type UpliftConfig struct {
	InputPath   string   `validate:"required"`
	ResultsDir  string   `validate:"required"`
	TestRatio   float64  `validate:"gt=0,lt=1"`
	Seed        int64    `validate:"gte=0"`
	LeakColumns []string `validate:"dive,required"`
	ChartKey    string   `validate:"required"`
}

const (
	PredictorLinear = "linear"
	PredictorHTTP   = "http"
)

type PredictorConfig struct {
	Kind              string `validate:"oneof=linear http"`
	ModelPath         string `validate:"required_if=Kind linear"`
	URL               string `validate:"required_if=Kind http"`
	BasicAuthUsername string
	BasicAuthPassword string
	Timeout           time.Duration
}

type ArtifactConfig struct {
	Driver        string `validate:"oneof=fs s3 memory"`
	S3Bucket      string `validate:"required_if=Driver s3"`
	S3Region      string
	S3Endpoint    string
	S3Prefix      string
	S3AccessKeyID string
	S3SecretKey   string
	S3PathStyle   bool
}

var validate = validator.New()

func Load() (*Config, error) {
	_ = godotenv.Load()

	testRatio, err := getFloat("UPLIFT_TEST_RATIO", 0.2)
	if err != nil {
		return nil, err
	}
	seed, err := getInt("UPLIFT_SEED", 42)
	if err != nil {
		return nil, err
	}
	timeout, err := getDuration("PREDICTOR_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "Causal Uplift Evaluator"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
			Environment: getEnv("APP_ENV", "development"),
		},
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
		},
		Database: DatabaseConfig{
			Enabled:  getBool("DB_ENABLED"),
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", "causal_uplift"),
			SSLMode:  getEnv("DB_SSL_MODE", "disable"),
		},
		JWT: JWTConfig{
			SecretKey: getEnv("JWT_SECRET", ""),
		},
		Uplift: UpliftConfig{
			InputPath:   getEnv("UPLIFT_INPUT_PATH", "artifacts/customer_data.csv"),
			ResultsDir:  getEnv("UPLIFT_RESULTS_DIR", "results"),
			TestRatio:   testRatio,
			Seed:        seed,
			LeakColumns: getList("UPLIFT_LEAK_COLUMNS", []string{domain.ColumnConversion, domain.ColumnSpend, domain.ColumnVisit}),
			ChartKey:    getEnv("UPLIFT_CHART_KEY", "uplift_decile_chart.png"),
		},
		Predictor: PredictorConfig{
			Kind:              getEnv("PREDICTOR_KIND", PredictorLinear),
			ModelPath:         getEnv("PREDICTOR_MODEL_PATH", "artifacts/uplift_model.json"),
			URL:               getEnv("PREDICTOR_URL", ""),
			BasicAuthUsername: getEnv("PREDICTOR_BASIC_AUTH_USERNAME", ""),
			BasicAuthPassword: getEnv("PREDICTOR_BASIC_AUTH_PASSWORD", ""),
			Timeout:           timeout,
		},
		Artifact: ArtifactConfig{
			Driver:        getEnv("ARTIFACT_DRIVER", "fs"),
			S3Bucket:      getEnv("ARTIFACT_S3_BUCKET", ""),
			S3Region:      getEnv("ARTIFACT_S3_REGION", "us-east-1"),
			S3Endpoint:    getEnv("ARTIFACT_S3_ENDPOINT", ""),
			S3Prefix:      getEnv("ARTIFACT_S3_PREFIX", ""),
			S3AccessKeyID: getEnv("ARTIFACT_S3_ACCESS_KEY_ID", ""),
			S3SecretKey:   getEnv("ARTIFACT_S3_SECRET_ACCESS_KEY", ""),
			S3PathStyle:   getBool("ARTIFACT_S3_PATH_STYLE"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Database.Enabled && cfg.Database.Password == "" {
		return nil, &domain.ConfigurationError{Field: "DB_PASSWORD", Reason: "required when DB_ENABLED=true"}
	}

	return cfg, nil
}

// Validate checks the tagged sections and reports the first failure.
func (c *Config) Validate() error {
	for _, section := range []any{c.Uplift, c.Predictor, c.Artifact} {
		if err := validate.Struct(section); err != nil {
			var fieldErrs validator.ValidationErrors
			if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
				fe := fieldErrs[0]
				return &domain.ConfigurationError{
					Field:  fe.Namespace(),
					Reason: fmt.Sprintf("failed %s %s (got %v)", fe.Tag(), fe.Param(), fe.Value()),
				}
			}
			return &domain.ConfigurationError{Field: "config", Reason: err.Error()}
		}
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return defaultVal
}

func getBool(key string) bool {
	v, _ := strconv.ParseBool(os.Getenv(key))
	return v
}

func getFloat(key string, defaultVal float64) (float64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, &domain.ConfigurationError{Field: key, Reason: fmt.Sprintf("not a number: %q", raw)}
	}
	return v, nil
}

func getInt(key string, defaultVal int64) (int64, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, &domain.ConfigurationError{Field: key, Reason: fmt.Sprintf("not an integer: %q", raw)}
	}
	return v, nil
}

func getDuration(key string, defaultVal time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal, nil
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, &domain.ConfigurationError{Field: key, Reason: fmt.Sprintf("not a duration: %q", raw)}
	}
	return v, nil
}

// getList splits a comma separated value, dropping blanks.
func getList(key string, defaultVal []string) []string {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultVal
	}
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
