// Package uber fetches trip history from the Uber riders site and order
// history from Uber Eats.
package uber

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

const (
	defaultPageSize          = 50
	defaultDetailConcurrency = 4
	// endTimePadding extends the activity window past the newest ledger date,
	// since a charge can post before the trip shows up as completed.
	endTimePadding = 5 * 24 * time.Hour
)

const activitiesQuery = `query Activities($cityID: Int, $endTimeMs: Float, $includePast: Boolean = true, $limit: Int = 5, $nextPageToken: String, $orderTypes: [RVWebCommonActivityOrderType!] = [RIDES, TRAVEL], $profileType: RVWebCommonActivityProfileType = PERSONAL, $startTimeMs: Float) {
  activities(cityID: $cityID) {
    past(endTimeMs: $endTimeMs, limit: $limit, nextPageToken: $nextPageToken, orderTypes: $orderTypes, profileType: $profileType, startTimeMs: $startTimeMs) @include(if: $includePast) {
      activities { description subtitle title uuid }
      nextPageToken
    }
  }
}`

const getTripQuery = `query GetTrip($tripUUID: String!) {
  getTrip(tripUUID: $tripUUID) {
    trip { beginTripTime dropoffTime waypoints fare }
    mapURL
  }
}`

// RidesConfig tunes pagination and detail enrichment.
type RidesConfig struct {
	PageSize          int
	MaxPages          int
	DetailConcurrency int
	Location          *time.Location
	Now               func() time.Time
}

// RidesProvider implements providers.RideSource.
type RidesProvider struct {
	client *graphql.Client
	config RidesConfig
	logger *slog.Logger
}

var _ providers.RideSource = (*RidesProvider)(nil)

// NewRidesProvider creates a ride fetcher on top of a GraphQL client.
func NewRidesProvider(client *graphql.Client, config RidesConfig, logger *slog.Logger) *RidesProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if config.PageSize <= 0 {
		config.PageSize = defaultPageSize
	}
	if config.DetailConcurrency <= 0 {
		config.DetailConcurrency = defaultDetailConcurrency
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	return &RidesProvider{
		client: client,
		config: config,
		logger: logger.With(slog.String("provider", "uber_rides")),
	}
}

// Name returns the provider identifier
func (p *RidesProvider) Name() string {
	return "uber_rides"
}

type activitiesVariables struct {
	IncludePast   bool     `json:"includePast"`
	Limit         int      `json:"limit"`
	NextPageToken *string  `json:"nextPageToken"`
	OrderTypes    []string `json:"orderTypes"`
	ProfileType   string   `json:"profileType"`
	EndTimeMs     *int64   `json:"endTimeMs,omitempty"`
}

type activityEntry struct {
	Description string `json:"description"`
	Subtitle    string `json:"subtitle"`
	Title       string `json:"title"`
	UUID        string `json:"uuid"`
}

type activitiesData struct {
	Activities struct {
		Past struct {
			Activities    []activityEntry `json:"activities"`
			NextPageToken *string         `json:"nextPageToken"`
		} `json:"past"`
	} `json:"activities"`
}

type tripData struct {
	GetTrip struct {
		Trip struct {
			BeginTripTime string   `json:"beginTripTime"`
			DropoffTime   string   `json:"dropoffTime"`
			Waypoints     []string `json:"waypoints"`
			Fare          string   `json:"fare"`
		} `json:"trip"`
		MapURL string `json:"mapURL"`
	} `json:"getTrip"`
}

// FetchRides pages backwards through trip history. The number of pages is
// derived from opts.Limit and capped by MaxPages. Pagination stops at the
// last page, once enough rides were seen, on an empty page, or when a page
// ends before opts.Cutoff.
func (p *RidesProvider) FetchRides(ctx context.Context, opts providers.FetchOptions) ([]activity.RideRecord, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = p.config.PageSize
	}
	maxRequests := limit/p.config.PageSize + 1
	if p.config.MaxPages > 0 && maxRequests > p.config.MaxPages {
		maxRequests = p.config.MaxPages
	}

	vars := activitiesVariables{
		IncludePast: true,
		Limit:       limit,
		OrderTypes:  []string{"RIDES", "TRAVEL"},
		ProfileType: "PERSONAL",
	}
	if !opts.Newest.IsZero() {
		end := opts.Newest.Add(endTimePadding).UnixMilli()
		vars.EndTimeMs = &end
	}

	p.logger.Info("fetching rides",
		slog.Time("cutoff", opts.Cutoff),
		slog.Int("limit", limit),
		slog.Int("max_requests", maxRequests))

	var all []activity.RideRecord
	fetched := 0
	for request := 0; request < maxRequests; request++ {
		var data activitiesData
		err := p.client.Do(ctx, graphql.Request{
			OperationName: "Activities",
			Variables:     vars,
			Query:         activitiesQuery,
		}, &data)
		if err != nil {
			return nil, fmt.Errorf("fetch rides page %d: %w", request+1, err)
		}

		page := data.Activities.Past
		fetched += len(page.Activities)
		rides, err := p.enrich(ctx, page.Activities)
		if err != nil {
			return nil, err
		}
		rides = dropUnchargedRides(rides)
		all = append(all, rides...)

		p.logger.Debug("fetched rides page",
			slog.Int("page", request+1),
			slog.Int("activities", len(page.Activities)),
			slog.Int("kept", len(rides)))

		if page.NextPageToken == nil || fetched >= limit || len(rides) == 0 {
			break
		}
		last := rides[len(rides)-1].StartTime()
		if !last.IsZero() && last.Before(opts.Cutoff) {
			break
		}
		vars.NextPageToken = page.NextPageToken
	}

	p.logger.Info("fetched rides", slog.Int("total", len(all)))
	return all, nil
}

// enrich looks up trip details for every activity. A failed lookup is kept
// on the record rather than failing the page.
func (p *RidesProvider) enrich(ctx context.Context, entries []activityEntry) ([]activity.RideRecord, error) {
	rides := make([]activity.RideRecord, len(entries))
	now := p.config.Now()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.config.DetailConcurrency)
	for i, entry := range entries {
		rides[i] = activity.RideRecord{
			UUID:     entry.UUID,
			Location: entry.Title,
			Subtitle: entry.Subtitle,
			Cost:     entry.Description,
		}
		if requested, ok := providers.ParseSubtitleDate(entry.Subtitle, now, p.config.Location); ok {
			rides[i].RequestedAt = requested
		}
		g.Go(func() error {
			details, err := p.tripDetails(gctx, entry.UUID)
			if err != nil {
				if gctx.Err() != nil {
					return gctx.Err()
				}
				p.logger.Warn("trip details unavailable",
					slog.String("uuid", entry.UUID),
					slog.String("error", err.Error()))
				rides[i].Error = err.Error()
				return nil
			}
			rides[i].Details = details
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return rides, nil
}

func (p *RidesProvider) tripDetails(ctx context.Context, uuid string) (*activity.RideDetails, error) {
	var data tripData
	err := p.client.Do(ctx, graphql.Request{
		OperationName: "GetTrip",
		Variables:     map[string]string{"tripUUID": uuid},
		Query:         getTripQuery,
	}, &data)
	if err != nil {
		return nil, err
	}

	trip := data.GetTrip.Trip
	details := &activity.RideDetails{
		MapURL:    data.GetTrip.MapURL,
		Waypoints: trip.Waypoints,
		Fare:      trip.Fare,
	}
	if details.Waypoints == nil {
		details.Waypoints = []string{}
	}
	if t, err := providers.ParseTimestamp(trip.BeginTripTime); err == nil {
		details.StartTime = t
	}
	if t, err := providers.ParseTimestamp(trip.DropoffTime); err == nil {
		details.EndTime = t
	}
	return details, nil
}

// dropUnchargedRides removes canceled requests: zero cost and no fare.
func dropUnchargedRides(rides []activity.RideRecord) []activity.RideRecord {
	kept := rides[:0]
	for _, r := range rides {
		if strings.HasPrefix(r.Cost, "$0.00") && (r.Details == nil || r.Details.Fare == "") {
			continue
		}
		kept = append(kept, r)
	}
	return kept
}
