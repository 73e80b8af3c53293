package main

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"fmt"
	"log/slog"
	"os"

	"github.com/samber/mo"

	"github.com/go-guardian/guardian/pkg/api"
	"github.com/go-guardian/guardian/pkg/guardian"
	"github.com/go-guardian/guardian/pkg/guardiantypes"
	"github.com/go-guardian/guardian/pkg/options"
	"github.com/go-guardian/guardian/pkg/totp"
)

func main() {
	if len(os.Args) < 4 {
		fmt.Fprintf(os.Stderr, "usage: %s <base-url> <enrollment-uri> <notification-token>\n", os.Args[0])
		os.Exit(2)
	}

	lvl := new(slog.LevelVar)
	lvl.Set(slog.LevelDebug)
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: lvl,
	}))

	// The key pair would normally live in a platform keystore; an ephemeral
	// P-256 key keeps the example self-contained.
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		panic(err)
	}

	apiClient, err := api.NewClient(os.Args[1], options.WithLogger(logger))
	if err != nil {
		panic(err)
	}

	client := guardian.NewClient(apiClient,
		options.WithDeviceName("example-device"),
	)

	results := make(chan mo.Result[*guardiantypes.Enrollment], 1)
	client.Enroll(guardiantypes.EnrollmentRequest{
		URI:               mo.Some(os.Args[2]),
		NotificationToken: os.Args[3],
		PublicKey:         key.Public(),
		SigningKey:        key,
	}, func(result mo.Result[*guardiantypes.Enrollment]) {
		results <- result
	})

	enrollment, err := (<-results).Get()
	if err != nil {
		panic(err)
	}
	fmt.Printf("Enrolled as %s\n", enrollment.ID)

	if params, ok := enrollment.TOTP.Get(); ok {
		gen, err := totp.New(params)
		if err != nil {
			panic(err)
		}
		fmt.Printf("Fallback code: %s\n", gen.Now())
	}

	if err := apiClient.Device(enrollment.ID, enrollment.DeviceToken).Delete(context.Background()); err != nil {
		panic(err)
	}
	fmt.Println("Un-enrolled")
}
