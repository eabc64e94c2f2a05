// Package clients wires the ledger and activity providers from config.
package clients

import (
	"log/slog"
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers/baywheels"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers/monarch"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers/uber"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/config"
)

// Clients bundles every remote dependency of a reconcile run. Disabled
// providers are nil.
type Clients struct {
	Credentials credentials.Provider
	Ledger      providers.Ledger
	Rides       providers.RideSource
	Deliveries  providers.DeliverySource
	BikeShares  providers.BikeShareSource
}

// NewClients builds the clients. Session headers come from the credentials
// file; a Monarch API token from config or MONARCH_TOKEN is used when no
// session was captured.
func NewClients(cfg *config.Config, logger *slog.Logger) (*Clients, error) {
	if logger == nil {
		logger = slog.Default()
	}
	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	monarchToken := cfg.GetAPIKey(cfg.Monarch.APIKey, "MONARCH_TOKEN")
	creds := credentials.Chain{
		credentials.NewFileStore(cfg.Credentials.Path),
		credentials.MonarchToken(monarchToken),
	}

	c := &Clients{Credentials: creds}

	monarchLogger := logger.With("system", "monarch")
	ledgerClient := graphql.NewClient(cfg.Monarch.Endpoint, credentials.ServiceMonarch, creds,
		graphql.WithInterval(cfg.Monarch.Interval()),
		graphql.WithLogger(monarchLogger))
	c.Ledger = monarch.NewLedger(ledgerClient, cfg.Monarch.Limit, cfg.Monarch.MerchantIDs, monarchLogger)
	uberLogger := logger.With("system", "uber")

	if p := cfg.Providers.UberRides; p.Enabled {
		client := graphql.NewClient(p.Endpoint, credentials.ServiceUberRides, creds,
			graphql.WithInterval(p.Interval()),
			graphql.WithHeader("x-csrf-token", "x"),
			graphql.WithLogger(uberLogger))
		c.Rides = uber.NewRidesProvider(client, uber.RidesConfig{
			PageSize:          p.PageSize,
			MaxPages:          p.MaxPages,
			DetailConcurrency: p.DetailConcurrency,
			Location:          loc,
			Now:               time.Now,
		}, uberLogger)
	}

	if p := cfg.Providers.UberEats; p.Enabled {
		client := graphql.NewClient(p.Endpoint, credentials.ServiceUberEats, creds,
			graphql.WithInterval(p.Interval()),
			graphql.WithHeader("x-csrf-token", "x"),
			graphql.WithLogger(uberLogger))
		c.Deliveries = uber.NewEatsProvider(client, p.MaxPages, uberLogger)
	}

	if p := cfg.Providers.BayWheels; p.Enabled {
		bikeLogger := logger.With("system", "baywheels")
		client := graphql.NewClient(p.Endpoint, credentials.ServiceBayWheels, creds,
			graphql.WithInterval(p.Interval()),
			graphql.WithLogger(bikeLogger))
		c.BikeShares = baywheels.NewProvider(client, baywheels.Config{
			MaxPages:          p.MaxPages,
			DetailConcurrency: p.DetailConcurrency,
		}, bikeLogger)
	}

	return c, nil
}
