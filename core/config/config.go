package config

import (
	_ "embed"
	"fmt"
	"os"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"sigs.k8s.io/yaml"
)

var (
	//go:embed default/config.yaml
	defaultConfigData []byte
)

const (
	ConfigurationName = "config.yaml"
)

type Configuration struct {
	Color            string   `json:"color" validate:"oneof=auto always never"`
	Verbose          bool     `json:"verbose"`
	EventLog         string   `json:"event_log"`
	RedirectFileMode string   `json:"redirect_file_mode" validate:"required,filemode"`
	EnvFiles         []string `json:"env_files" validate:"dive,required"`
}

// Validate the configuration for basic semantic errors.
func (c *Configuration) Validate() error {
	validate := validator.New()
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		return name
	})
	if err := validate.RegisterValidation("filemode", func(fl validator.FieldLevel) bool {
		_, err := parseFileMode(fl.Field().String())
		return err == nil
	}); err != nil {
		return err
	}

	return validate.Struct(c)
}

// FileMode returns the permission bits for redirection targets.
func (c *Configuration) FileMode() os.FileMode {
	mode, err := parseFileMode(c.RedirectFileMode)
	if err != nil {
		return 0666
	}
	return mode
}

func parseFileMode(s string) (os.FileMode, error) {
	mode, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	if mode > 0777 {
		return 0, fmt.Errorf("mode %q has bits outside 0777", s)
	}
	return os.FileMode(mode), nil
}

// Default returns the built in configuration.
func Default() *Configuration {
	var out Configuration
	if err := yaml.UnmarshalStrict(defaultConfigData, &out); err != nil {
		panic(err)
	}
	return &out
}
