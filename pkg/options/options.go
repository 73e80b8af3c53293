package options

import (
	"context"
	"log/slog"
	"net/http"
	"os"

	"github.com/google/uuid"
)

type Options struct {
	Logger           *slog.Logger
	Context          context.Context
	HTTPClient       *http.Client
	DeviceIdentifier string
	DeviceName       string
	PushService      string
}

type Option func(*Options)

func WithLogger(logger *slog.Logger) Option {
	return func(opts *Options) {
		opts.Logger = logger
	}
}

func WithContext(ctx context.Context) Option {
	return func(opts *Options) {
		opts.Context = ctx
	}
}

func WithHTTPClient(client *http.Client) Option {
	return func(opts *Options) {
		opts.HTTPClient = client
	}
}

// WithDeviceIdentifier sets the local identifier sent to the enrollment
// service. Without it every client instance gets a fresh random identifier.
func WithDeviceIdentifier(identifier string) Option {
	return func(opts *Options) {
		opts.DeviceIdentifier = identifier
	}
}

func WithDeviceName(name string) Option {
	return func(opts *Options) {
		opts.DeviceName = name
	}
}

// WithPushService sets the push_credentials service name reported during
// enrollment, e.g. "APNS" or "GCM".
func WithPushService(service string) Option {
	return func(opts *Options) {
		opts.PushService = service
	}
}

func NewOptions(opts ...Option) *Options {
	oo := &Options{
		Logger:           slog.Default(),
		Context:          context.Background(),
		HTTPClient:       http.DefaultClient,
		DeviceIdentifier: uuid.NewString(),
		DeviceName:       defaultDeviceName(),
		PushService:      "APNS",
	}

	for _, opt := range opts {
		opt(oo)
	}

	return oo
}

func defaultDeviceName() string {
	name, err := os.Hostname()
	if err != nil {
		return "guardian-device"
	}
	return name
}
