package googlesheets

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"

	sheettable "github.com/ideamans/go-sheettable"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"
)

// ErrInvalidCredentials is returned when credentials are incomplete
var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials selects how a Source authenticates. The first set field wins,
// in the order TokenSource, ServiceAccount, JSONKey, JSONKeyFile. When none
// is set, Application Default Credentials are used.
type Credentials struct {
	TokenSource    oauth2.TokenSource
	ServiceAccount *ServiceAccount
	JSONKey        []byte // service account or authorized user JSON
	JSONKeyFile    string // path to the same JSON
	ReadOnly       bool   // request the read-only spreadsheets scope
}

// ServiceAccount is a service account identity without its JSON key file
type ServiceAccount struct {
	Email        string
	PrivateKey   string // PEM
	PrivateKeyID string
	TokenURL     string // google.JWTTokenURL when empty
}

// ServiceAccountFromJSON reads the identity out of a service account key
func ServiceAccountFromJSON(data []byte) (*ServiceAccount, error) {
	cfg, err := google.JWTConfigFromJSON(data)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse service account key: %w", sheettable.ErrFormat, err)
	}
	return &ServiceAccount{
		Email:        cfg.Email,
		PrivateKey:   string(cfg.PrivateKey),
		PrivateKeyID: cfg.PrivateKeyID,
		TokenURL:     cfg.TokenURL,
	}, nil
}

func (c *Credentials) validate() error {
	if sa := c.ServiceAccount; c.TokenSource == nil && sa != nil && (sa.Email == "" || sa.PrivateKey == "") {
		return fmt.Errorf("%w: %w: service account email and private key are required", sheettable.ErrInvalidArgument, ErrInvalidCredentials)
	}
	return nil
}

func (c *Credentials) scope() string {
	if c.ReadOnly {
		return sheets.SpreadsheetsReadonlyScope
	}
	return sheets.SpreadsheetsScope
}

// clientOption resolves the credentials. Key problems other than an
// unreadable or malformed key surface on the first API call.
func (c *Credentials) clientOption(ctx context.Context) (option.ClientOption, error) {
	switch {
	case c.TokenSource != nil:
		return option.WithTokenSource(c.TokenSource), nil

	case c.ServiceAccount != nil:
		return option.WithTokenSource(c.ServiceAccount.tokenSource(ctx, c.scope())), nil

	case len(c.JSONKey) > 0:
		return c.fromJSON(ctx, c.JSONKey)

	case c.JSONKeyFile != "":
		data, err := os.ReadFile(c.JSONKeyFile)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return nil, fmt.Errorf("%w: key file %s: %w", sheettable.ErrIO, c.JSONKeyFile, err)
			}
			return nil, fmt.Errorf("%w: failed to read key file: %w", sheettable.ErrIO, err)
		}
		return c.fromJSON(ctx, data)

	default:
		ts, err := google.DefaultTokenSource(ctx, c.scope())
		if err != nil {
			return nil, fmt.Errorf("%w: no default credentials: %w", sheettable.ErrIO, err)
		}
		return option.WithTokenSource(ts), nil
	}
}

func (c *Credentials) fromJSON(ctx context.Context, data []byte) (option.ClientOption, error) {
	creds, err := google.CredentialsFromJSON(ctx, data, c.scope())
	if err != nil {
		return nil, fmt.Errorf("%w: failed to parse credentials: %w", sheettable.ErrFormat, err)
	}
	return option.WithCredentials(creds), nil
}

func (sa *ServiceAccount) tokenSource(ctx context.Context, scope string) oauth2.TokenSource {
	tokenURL := sa.TokenURL
	if tokenURL == "" {
		tokenURL = google.JWTTokenURL
	}
	cfg := &jwt.Config{
		Email:        sa.Email,
		PrivateKey:   []byte(sa.PrivateKey),
		PrivateKeyID: sa.PrivateKeyID,
		Scopes:       []string{scope},
		TokenURL:     tokenURL,
	}
	return cfg.TokenSource(ctx)
}

// NewWithJSONKeyFile creates a source authenticated by a JSON key file.
// An empty path falls back to GOOGLE_APPLICATION_CREDENTIALS.
func NewWithJSONKeyFile(ctx context.Context, config Config, path string) (*Source, error) {
	if path == "" {
		path = os.Getenv("GOOGLE_APPLICATION_CREDENTIALS")
		if path == "" {
			return nil, fmt.Errorf("%w: %w: no key file and GOOGLE_APPLICATION_CREDENTIALS not set", sheettable.ErrInvalidArgument, ErrInvalidCredentials)
		}
	}
	config.Credentials = &Credentials{JSONKeyFile: path}
	return NewSource(ctx, config)
}

// NewWithServiceAccountKey creates a source from a service account email and
// PEM private key
func NewWithServiceAccountKey(ctx context.Context, config Config, email, privateKey string) (*Source, error) {
	config.Credentials = &Credentials{ServiceAccount: &ServiceAccount{Email: email, PrivateKey: privateKey}}
	return NewSource(ctx, config)
}
