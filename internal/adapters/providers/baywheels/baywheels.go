// Package baywheels fetches ride history from the Bay Wheels member site.
package baywheels

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

const (
	defaultMaxPages          = 20
	defaultDetailConcurrency = 4
	// cursorStepMs matches how the member site steps back between pages.
	cursorStepMs = 30_000
)

const ridesQuery = `query GetCurrentUserRides($startTimeMs: String, $memberId: String) {
  member(id: $memberId) {
    id
    rideHistory(startTimeMs: $startTimeMs) {
      limit
      hasMore
      rideHistoryList {
        rideId
        startTimeMs
        endTimeMs
        price { formatted }
      }
    }
  }
}`

const rideDetailsQuery = `query GetCurrentUserRideDetails($rideId: String!) {
  me {
    id
    rideDetails(rideId: $rideId) {
      rideId
      startAddressStr
      endAddressStr
    }
  }
}`

// Config tunes pagination and detail enrichment.
type Config struct {
	MaxPages          int
	DetailConcurrency int
	Now               func() time.Time
}

// Provider implements providers.BikeShareSource.
type Provider struct {
	client *graphql.Client
	config Config
	logger *slog.Logger
}

var _ providers.BikeShareSource = (*Provider)(nil)

// NewProvider creates a Bay Wheels fetcher.
func NewProvider(client *graphql.Client, config Config, logger *slog.Logger) *Provider {
	if logger == nil {
		logger = slog.Default()
	}
	if config.MaxPages <= 0 {
		config.MaxPages = defaultMaxPages
	}
	if config.DetailConcurrency <= 0 {
		config.DetailConcurrency = defaultDetailConcurrency
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &Provider{
		client: client,
		config: config,
		logger: logger.With(slog.String("provider", "baywheels")),
	}
}

// Name returns the provider identifier
func (p *Provider) Name() string {
	return "baywheels"
}

type ridesData struct {
	Member struct {
		RideHistory struct {
			HasMore         bool `json:"hasMore"`
			RideHistoryList []struct {
				RideID      string `json:"rideId"`
				StartTimeMs string `json:"startTimeMs"`
				Price       struct {
					Formatted string `json:"formatted"`
				} `json:"price"`
			} `json:"rideHistoryList"`
		} `json:"rideHistory"`
	} `json:"member"`
}

type detailsData struct {
	Me struct {
		RideDetails struct {
			StartAddressStr string `json:"startAddressStr"`
			EndAddressStr   string `json:"endAddressStr"`
		} `json:"rideDetails"`
	} `json:"me"`
}

// FetchBikeShares pages backwards from now until a page ends before
// opts.Cutoff or the server reports no more rides.
func (p *Provider) FetchBikeShares(ctx context.Context, opts providers.FetchOptions) ([]activity.BikeShareRecord, error) {
	p.logger.Info("fetching bike rides", slog.Time("cutoff", opts.Cutoff))

	cursor := strconv.FormatInt(p.config.Now().UnixMilli(), 10)
	var all []activity.BikeShareRecord
	for request := 0; request < p.config.MaxPages; request++ {
		var data ridesData
		err := p.client.Do(ctx, graphql.Request{
			OperationName: "GetCurrentUserRides",
			Variables:     map[string]string{"startTimeMs": cursor},
			Query:         ridesQuery,
		}, &data)
		if err != nil {
			return nil, fmt.Errorf("fetch bike rides page %d: %w", request+1, err)
		}

		history := data.Member.RideHistory
		if len(history.RideHistoryList) == 0 {
			break
		}

		records := make([]activity.BikeShareRecord, 0, len(history.RideHistoryList))
		for _, ride := range history.RideHistoryList {
			started, err := providers.ParseTimestamp(ride.StartTimeMs)
			if err != nil {
				return nil, fmt.Errorf("bike ride %s: %w", ride.RideID, err)
			}
			records = append(records, activity.BikeShareRecord{
				ID:        ride.RideID,
				Cost:      ride.Price.Formatted,
				StartedAt: started,
			})
		}
		if err := p.enrich(ctx, records); err != nil {
			return nil, err
		}
		all = append(all, records...)

		last := records[len(records)-1].StartedAt
		p.logger.Debug("fetched bike rides page",
			slog.Int("page", request+1),
			slog.Int("rides", len(records)),
			slog.Time("last_start", last))

		if last.Before(opts.Cutoff) || !history.HasMore {
			break
		}
		cursor = strconv.FormatInt(last.UnixMilli()-cursorStepMs, 10)
	}

	p.logger.Info("fetched bike rides", slog.Int("total", len(all)))
	return all, nil
}

// enrich fills in start and end addresses. A failed lookup is recorded on
// the ride instead of failing the page.
func (p *Provider) enrich(ctx context.Context, records []activity.BikeShareRecord) error {
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.DetailConcurrency)
	for i := range records {
		g.Go(func() error {
			var data detailsData
			err := p.client.Do(gctx, graphql.Request{
				OperationName: "GetCurrentUserRideDetails",
				Variables:     map[string]string{"rideId": records[i].ID},
				Query:         rideDetailsQuery,
			}, &data)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("ride details unavailable",
					slog.String("ride_id", records[i].ID),
					slog.String("error", err.Error()))
				records[i].Error = err.Error()
				return nil
			}
			records[i].Details = &activity.BikeTripDetails{
				StartAddress: data.Me.RideDetails.StartAddressStr,
				EndAddress:   data.Me.RideDetails.EndAddressStr,
			}
			return nil
		})
	}
	return g.Wait()
}
