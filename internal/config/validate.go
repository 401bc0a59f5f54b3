package config

import (
	_ "embed"
	"fmt"
	"sort"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

//go:embed schema.json
var schemaJSON string

// ValidateSettings validates raw settings, as merged from defaults, config
// file and environment, against the JSON schema.
func ValidateSettings(settings map[string]any) error {
	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schemaJSON),
		gojsonschema.NewGoLoader(settings),
	)
	if err != nil {
		return fmt.Errorf("validate config schema: %w", err)
	}
	if result.Valid() {
		return nil
	}

	envs := EnvBindings()
	errs := make([]string, 0, len(result.Errors()))
	for _, schemaErr := range result.Errors() {
		errs = append(errs, describeSchemaError(schemaErr, envs))
	}
	sort.Strings(errs)

	return fmt.Errorf("config schema validation failed: %s", strings.Join(errs, "; "))
}

// Validate checks constraints the schema cannot express.
func (c Config) Validate() error {
	if c.Retry.MinWait > c.Retry.MaxWait {
		return fmt.Errorf("retry.min_wait (%s) must not exceed retry.max_wait (%s)", c.Retry.MinWait, c.Retry.MaxWait)
	}
	return nil
}

// describeSchemaError names the offending key and, when the key can come
// from the environment, the variable that sets it.
func describeSchemaError(schemaErr gojsonschema.ResultError, envs map[string]string) string {
	key := schemaErr.Field()
	msg := fmt.Sprintf("%s: %s", key, schemaErr.Description())
	if env, ok := envs[key]; ok {
		msg += fmt.Sprintf(" (env %s)", env)
	}
	return msg
}
