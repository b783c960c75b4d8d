package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ErrMissingCredentials is returned when the SMTP credentials are not set.
var ErrMissingCredentials = errors.New("missing SMTP credentials")

// Credentials holds the SMTP login read from the environment.
type Credentials struct {
	Username string `env:"GMAIL_USERNAME,required,notEmpty"`
	Password string `env:"GMAIL_PASSWORD,required,notEmpty"`
}

// String hides the password so credentials can be logged safely.
func (c Credentials) String() string {
	return c.Username + ":********"
}

// LoadCredentials reads the credentials from the process environment.
func LoadCredentials() (Credentials, error) {
	return LoadCredentialsFrom(nil)
}

// LoadCredentialsFrom reads the credentials from environ, or from the
// process environment when environ is nil.
func LoadCredentialsFrom(environ map[string]string) (Credentials, error) {
	var creds Credentials
	if err := env.ParseWithOptions(&creds, env.Options{Environment: environ}); err != nil {
		return Credentials{}, fmt.Errorf("%w: %w", ErrMissingCredentials, err)
	}
	return creds, nil
}

// LoadEnvFile loads a dotenv file into the process environment.
// Variables that are already set are left untouched.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("failed to load env file %s: %w", path, err)
	}
	return nil
}
