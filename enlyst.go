package enlyst

import (
	_ "embed"

	"github.com/aretw0/enlyst/pkg/client"
	"github.com/aretw0/enlyst/pkg/node"
)

// Version is the release of this module.
//
//go:embed VERSION
var Version string

// Option configures New.
type Option func(*settings)

type settings struct {
	clientOpts []client.Option
	nodeOpts   []node.Option
}

// WithClientOptions forwards options to the API client.
func WithClientOptions(opts ...client.Option) Option {
	return func(s *settings) {
		s.clientOpts = append(s.clientOpts, opts...)
	}
}

// WithNodeOptions forwards options to the action node.
func WithNodeOptions(opts ...node.Option) Option {
	return func(s *settings) {
		s.nodeOpts = append(s.nodeOpts, opts...)
	}
}

// New creates an action node bound to the Enlyst API described by creds.
func New(creds client.Credentials, opts ...Option) (*node.Node, error) {
	var s settings
	for _, opt := range opts {
		opt(&s)
	}
	c, err := client.New(creds, s.clientOpts...)
	if err != nil {
		return nil, err
	}
	return node.New(c, s.nodeOpts...), nil
}
