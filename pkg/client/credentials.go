package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"

	"github.com/aretw0/enlyst/pkg/schema"
)

// DefaultBaseURL is the hosted Enlyst API.
const DefaultBaseURL = "https://enlyst.app/api"

// Credentials authenticate requests against an Enlyst instance.
type Credentials struct {
	BaseURL     string `json:"baseUrl" yaml:"baseUrl" mapstructure:"baseUrl"`
	AccessToken string `json:"accessToken" yaml:"accessToken" mapstructure:"accessToken"`
}

// Validate checks that the credentials are usable.
func (c Credentials) Validate() error {
	if c.AccessToken == "" {
		return errors.New("credentials: access token is required")
	}
	if c.BaseURL == "" {
		return errors.New("credentials: base URL is required")
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("credentials: invalid base URL: %w", err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("credentials: base URL %q must be an absolute http(s) URL", c.BaseURL)
	}
	return nil
}

// AuthorizationHeader returns the value sent in the Authorization header.
func (c Credentials) AuthorizationHeader() string {
	return "Bearer " + c.AccessToken
}

// CredentialDescriptor lists the fields a host asks for when configuring credentials.
func CredentialDescriptor() schema.Collection {
	return schema.Collection{
		{
			Name:        "baseUrl",
			DisplayName: "Base URL",
			Type:        schema.FieldString,
			Required:    true,
			Default:     DefaultBaseURL,
			Description: "The base URL of your Enlyst instance",
		},
		{
			Name:        "accessToken",
			DisplayName: "Access Token",
			Type:        schema.FieldString,
			Required:    true,
			Password:    true,
			Default:     "",
			Description: "Your Enlyst API access token",
		},
	}
}

// TestCredentials performs the credential test request (GET /projects).
func (c *Client) TestCredentials(ctx context.Context) error {
	_, err := c.call(ctx, request{op: "credentials.test", method: http.MethodGet, path: "/projects"})
	return err
}
