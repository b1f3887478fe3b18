package persistence

import (
	"fmt"
	"os"
	"regexp"

	"inframap/internal/canonicalize"
	"inframap/internal/core"
)

// envRefPattern matches a whole-value environment-variable reference:
// "<SOME_VAR>". Anything not matching this exact shape is treated as a
// literal value, not a reference (§6.2).
var envRefPattern = regexp.MustCompile(`^<([A-Za-z_][A-Za-z0-9_]*)>$`)

// CredentialResolutionError reports a referenced environment variable
// that was unset at resolution time, carrying enough context (table,
// field, variable) for the caller to fix the deployment (§7).
type CredentialResolutionError struct {
	Table    string
	Field    string
	Variable string
}

func (e *CredentialResolutionError) Error() string {
	return fmt.Sprintf("persistence: table %q field %q references unset environment variable %q", e.Table, e.Field, e.Variable)
}

// ResolveRuntimeCredentialsFromEnv walks every table with an S3-family
// engine and every Kafka-style setting, resolving `<ENV_REF>`-shaped
// values from the process environment (§6.2). It mutates m in place —
// unlike MaskCredentials, this is the one place the live map is changed
// by this package, since the resolved map is what execution actually
// uses, never what gets persisted back to JSON. On success it recomputes
// EngineParamsHash/TableSettingsHash for every table whose resolved
// inputs may have changed. Returns the first unresolved reference as a
// *CredentialResolutionError; the caller decides whether to abort
// execution entirely.
func ResolveRuntimeCredentialsFromEnv(m *core.InfraMap) error {
	for _, t := range m.Tables {
		if err := resolveTableCredentials(t); err != nil {
			return err
		}
	}
	canonicalize.CanonicalizeTables(m)
	return nil
}

func resolveTableCredentials(t *core.Table) error {
	switch {
	case t.Engine.S3Queue != nil:
		if err := resolveField(t.Name, "engine.s3Queue.awsAccessKeyId", &t.Engine.S3Queue.AWSAccessKeyID); err != nil {
			return err
		}
		if err := resolveField(t.Name, "engine.s3Queue.awsSecretKey", &t.Engine.S3Queue.AWSSecretKey); err != nil {
			return err
		}
	case t.Engine.S3 != nil:
		if err := resolveField(t.Name, "engine.s3.awsAccessKeyId", &t.Engine.S3.AWSAccessKeyID); err != nil {
			return err
		}
		if err := resolveField(t.Name, "engine.s3.awsSecretKey", &t.Engine.S3.AWSSecretKey); err != nil {
			return err
		}
	case t.Engine.IcebergS3 != nil:
		if err := resolveField(t.Name, "engine.icebergS3.awsAccessKeyId", &t.Engine.IcebergS3.AWSAccessKeyID); err != nil {
			return err
		}
		if err := resolveField(t.Name, "engine.icebergS3.awsSecretKey", &t.Engine.IcebergS3.AWSSecretKey); err != nil {
			return err
		}
	}

	for _, field := range []string{"kafka_sasl_username", "kafka_sasl_password"} {
		v, ok := t.Settings[field]
		if !ok {
			continue
		}
		resolved, err := resolveValue(t.Name, "settings."+field, v)
		if err != nil {
			return err
		}
		t.Settings[field] = resolved
	}

	return nil
}

func resolveField(table, field string, value *string) error {
	resolved, err := resolveValue(table, field, *value)
	if err != nil {
		return err
	}
	*value = resolved
	return nil
}

func resolveValue(table, field, value string) (string, error) {
	m := envRefPattern.FindStringSubmatch(value)
	if m == nil {
		return value, nil
	}
	varName := m[1]
	resolved, ok := os.LookupEnv(varName)
	if !ok {
		return "", &CredentialResolutionError{Table: table, Field: field, Variable: varName}
	}
	return resolved, nil
}
