// Package cfgloader loads the service configuration from a YAML file at startup.
//
// The file is ./config/${ENVIRONMENT}.yaml. Before decoding, ${VAR}
// references are replaced from the environment (a .env file is loaded first
// when present). Fields left empty take their `default` tag, then the result
// is checked against its `validate` tags. Fields tagged `mask:"true"` are
// masked when the loaded config is printed.
//
//	type Config struct {
//	    Host      string `yaml:"host" validate:"required"`
//	    Port      int    `yaml:"port" default:"8080"`
//	    SecretKey string `yaml:"secret_key" mask:"true"`
//	}
package cfgloader

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"slices"
	"strings"

	"github.com/code19m/errx"
	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environments accepted in ENVIRONMENT.
const (
	EnvProduction = "production"
	EnvStaging    = "staging"
	EnvDev        = "dev"
	EnvLocal      = "local"
	EnvTest       = "test"
)

const codeInvalidConfig = "INVALID_CONFIG"

var environments = []string{EnvProduction, EnvStaging, EnvDev, EnvLocal, EnvTest}

// MustLoad loads the config of the current ENVIRONMENT. Any failure is
// logged and the process exits with status 1.
func MustLoad[T any](opts ...Option) T {
	_ = godotenv.Load()

	env := os.Getenv("ENVIRONMENT")
	if !slices.Contains(environments, env) {
		slog.Error("[cfgloader]: ENVIRONMENT is not set or invalid", "choices", strings.Join(environments, ", "))
		os.Exit(1)
	}

	config, err := Load[T](fmt.Sprintf("./config/%s.yaml", env), opts...)
	if err != nil {
		slog.Error(fmt.Sprintf("[cfgloader]: %s config: %v", env, err))
		os.Exit(1)
	}
	return config
}

// Load reads the YAML file at path into T, expanding env references,
// applying defaults and validating the result. T must not be a pointer.
func Load[T any](path string, opts ...Option) (T, error) {
	var config T

	o := Options{}
	for _, opt := range opts {
		opt(&o)
	}

	if reflect.TypeFor[T]().Kind() == reflect.Pointer {
		return config, errx.New("[cfgloader]: type argument must not be a pointer")
	}

	if err := decode(path, &config); err != nil {
		return config, err
	}

	if err := validateConfig(&config); err != nil {
		return config, err
	}

	if !o.Silent {
		printConfig(config)
	}
	return config, nil
}

func decode(path string, config any) error {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return errx.New(
			"[cfgloader]: config file not found",
			errx.WithCode(codeInvalidConfig),
			errx.WithDetails(errx.D{"path": path}),
		)
	}
	if err != nil {
		return errx.Wrap(err, errx.WithDetails(errx.D{"path": path}))
	}

	expanded := os.ExpandEnv(string(data))
	if err = yaml.Unmarshal([]byte(expanded), config); err != nil {
		return errx.Wrap(err, errx.WithCode(codeInvalidConfig), errx.WithDetails(errx.D{"path": path}))
	}

	if err = defaults.Set(config); err != nil {
		return errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}
	return nil
}

func validateConfig(config any) error {
	err := validator.New(validator.WithRequiredStructEnabled()).Struct(config)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return errx.Wrap(err, errx.WithCode(codeInvalidConfig))
	}

	failed := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		rule := fe.Tag()
		if fe.Param() != "" {
			rule += "=" + fe.Param()
		}
		failed = append(failed, fe.Namespace()+": "+rule)
	}

	return errx.New(
		"[cfgloader]: invalid fields -> "+strings.Join(failed, ", "),
		errx.WithCode(codeInvalidConfig),
		errx.WithDetails(errx.D{"fields": failed}),
	)
}
