package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/clients"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/location"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/config"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

// ErrMatchInProgress is returned when a second match starts before the
// first finished.
var ErrMatchInProgress = errors.New("a match is already running")

// NotLoggedInError reports which services are missing session headers.
// No fetch is attempted when it is returned.
type NotLoggedInError struct {
	Statuses []credentials.Status
}

func (e *NotLoggedInError) Error() string {
	var names []string
	for _, svc := range credentials.Missing(e.Statuses) {
		names = append(names, svc.DisplayName())
	}
	return "not logged in: " + strings.Join(names, ", ")
}

// MatchOptions controls a single match run.
type MatchOptions struct {
	Progress providers.ProgressFunc
}

// MatchResult is the outcome of a match run.
type MatchResult struct {
	RunID        string               `json:"run_id"`
	Rows         []matcher.MatchedRow `json:"rows"`
	Skipped      int                  `json:"skipped"` // ledger lines from unrelated merchants
	Matched      int                  `json:"matched"`
	SoftMatched  int                  `json:"soft_matched"`
	RidesFetched int                  `json:"rides_fetched"`
	Deliveries   int                  `json:"deliveries_fetched"`
	BikeShares   int                  `json:"bike_shares_fetched"`
}

// ReconcileService runs matches and records the user's decisions.
type ReconcileService struct {
	cfg     *config.Config
	clients *clients.Clients
	storage storage.Repository
	logger  *slog.Logger
	now     func() time.Time

	// only one match at a time; providers rate limit per session
	running sync.Mutex
}

// NewReconcileService creates a new reconcile service.
func NewReconcileService(cfg *config.Config, clients *clients.Clients, store storage.Repository, logger *slog.Logger) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReconcileService{
		cfg:     cfg,
		clients: clients,
		storage: store,
		logger:  logger.With(slog.String("system", "reconcile")),
		now:     time.Now,
	}
}

// requiredServices lists Monarch plus every enabled provider.
func (s *ReconcileService) requiredServices() []credentials.Service {
	services := []credentials.Service{credentials.ServiceMonarch}
	if s.clients.Rides != nil {
		services = append(services, credentials.ServiceUberRides)
	}
	if s.clients.Deliveries != nil {
		services = append(services, credentials.ServiceUberEats)
	}
	if s.clients.BikeShares != nil {
		services = append(services, credentials.ServiceBayWheels)
	}
	return services
}

// CredentialStatus reports which services have usable session headers.
func (s *ReconcileService) CredentialStatus(ctx context.Context) ([]credentials.Status, error) {
	return credentials.Check(ctx, s.clients.Credentials, credentials.AllServices...)
}

// Match fetches pending ledger charges and provider activity, pairs them,
// and records the run.
func (s *ReconcileService) Match(ctx context.Context, opts MatchOptions) (*MatchResult, error) {
	if !s.running.TryLock() {
		return nil, ErrMatchInProgress
	}
	defer s.running.Unlock()

	statuses, err := credentials.Check(ctx, s.clients.Credentials, s.requiredServices()...)
	if err != nil {
		return nil, err
	}
	if len(credentials.Missing(statuses)) > 0 {
		return nil, &NotLoggedInError{Statuses: statuses}
	}

	run := &storage.MatchRun{
		ID:        uuid.NewString(),
		StartedAt: s.now(),
		Status:    storage.RunStatusRunning,
	}
	if err := s.storage.StartRun(run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	logger := s.logger.With(slog.String("run_id", run.ID))
	logger.Info("match started")

	result, err := s.match(ctx, logger, run, opts.Progress)
	if err != nil {
		logger.Error("match failed", slog.String("error", err.Error()))
		if failErr := s.storage.FailRun(run.ID, err.Error()); failErr != nil {
			logger.Error("failed to record run failure", slog.String("error", failErr.Error()))
		}
		return nil, err
	}

	completed := s.now()
	run.CompletedAt = &completed
	if err := s.storage.CompleteRun(run); err != nil {
		return nil, fmt.Errorf("record run: %w", err)
	}
	logger.Info("match completed",
		slog.Int("transactions", run.Transactions),
		slog.Int("matched", run.Matched),
		slog.Int("soft_matched", run.SoftMatched),
		slog.Duration("took", completed.Sub(run.StartedAt)))
	return result, nil
}

func (s *ReconcileService) match(ctx context.Context, logger *slog.Logger, run *storage.MatchRun, progress providers.ProgressFunc) (*MatchResult, error) {
	result := &MatchResult{RunID: run.ID, Rows: []matcher.MatchedRow{}}

	progress.Report("Fetching pending transactions from Monarch…")
	all, err := s.clients.Ledger.PendingTransactions(ctx)
	if err != nil {
		return nil, err
	}
	txns := make([]activity.LedgerTransaction, 0, len(all))
	for _, tx := range all {
		if tx.Merchant.Known() {
			txns = append(txns, tx)
		}
	}
	result.Skipped = len(all) - len(txns)
	if result.Skipped > 0 {
		logger.Debug("skipped unrelated transactions", slog.Int("count", result.Skipped))
	}
	if len(txns) == 0 {
		return result, nil
	}

	progress.Report("Fetching Uber and Lyft data…")
	batch, err := s.fetchActivity(ctx, logger, txns)
	if err != nil {
		return nil, err
	}
	result.RidesFetched = len(batch.Rides)
	result.Deliveries = len(batch.Deliveries)
	result.BikeShares = len(batch.BikeShares)

	aliases, err := s.storage.ListLocations()
	if err != nil {
		return nil, fmt.Errorf("load location aliases: %w", err)
	}
	mcfg, err := s.matcherConfig()
	if err != nil {
		return nil, err
	}

	progress.Report("Matching transactions…")
	rows, err := matcher.NewMatcher(mcfg, location.NewShortener(aliases, s.cfg.Locations.HomeNames)).Match(txns, batch)
	if err != nil {
		return nil, err
	}
	result.Rows = rows
	for _, row := range rows {
		if !row.Matched() {
			if row.Transaction.Merchant == activity.MerchantBikeShare {
				logger.Debug("unresolved bike-share charge",
					slog.String("txn", row.Transaction.ID),
					slog.String("amount", row.Transaction.Amount.String()))
			}
			continue
		}
		result.Matched++
		if row.Warn {
			result.SoftMatched++
			logger.Debug("soft match",
				slog.String("txn", row.Transaction.ID),
				slog.String("note", row.SuggestedNote))
		}
	}

	run.Transactions = len(txns)
	run.Matched = result.Matched
	run.SoftMatched = result.SoftMatched
	run.RidesFetched = result.RidesFetched
	run.DeliveriesFetched = result.Deliveries
	run.BikeSharesFetched = result.BikeShares
	run.Rows = rows
	return result, nil
}

// window is the span of ledger dates for one merchant class.
type window struct {
	oldest, newest time.Time
}

func ledgerWindows(txns []activity.LedgerTransaction) map[activity.MerchantClass]window {
	out := make(map[activity.MerchantClass]window)
	for _, tx := range txns {
		w, ok := out[tx.Merchant]
		if !ok {
			out[tx.Merchant] = window{oldest: tx.Date, newest: tx.Date}
			continue
		}
		if tx.Date.Before(w.oldest) {
			w.oldest = tx.Date
		}
		if tx.Date.After(w.newest) {
			w.newest = tx.Date
		}
		out[tx.Merchant] = w
	}
	return out
}

// fetchActivity queries only the providers that have ledger lines to
// explain, each bounded to a few days before its oldest line.
func (s *ReconcileService) fetchActivity(ctx context.Context, logger *slog.Logger, txns []activity.LedgerTransaction) (activity.Batch, error) {
	windows := ledgerWindows(txns)
	fetchOpts := func(class activity.MerchantClass, pc config.ProviderConfig) providers.FetchOptions {
		w := windows[class]
		return providers.FetchOptions{
			Cutoff: w.oldest.AddDate(0, 0, -pc.LookbackPaddingDays),
			Newest: w.newest,
			Limit:  s.cfg.Monarch.Limit,
		}
	}
	skip := func(class activity.MerchantClass, enabled bool) bool {
		if _, ok := windows[class]; !ok {
			return true
		}
		if !enabled {
			logger.Warn("provider disabled, charges stay unmatched", slog.String("merchant", string(class)))
			return true
		}
		return false
	}

	var batch activity.Batch
	g, gctx := errgroup.WithContext(ctx)
	if !skip(activity.MerchantRide, s.clients.Rides != nil) {
		opts := fetchOpts(activity.MerchantRide, s.cfg.Providers.UberRides)
		g.Go(func() error {
			rides, err := s.clients.Rides.FetchRides(gctx, opts)
			batch.Rides = rides
			return err
		})
	}
	if !skip(activity.MerchantDelivery, s.clients.Deliveries != nil) {
		opts := fetchOpts(activity.MerchantDelivery, s.cfg.Providers.UberEats)
		g.Go(func() error {
			orders, err := s.clients.Deliveries.FetchDeliveries(gctx, opts)
			batch.Deliveries = orders
			return err
		})
	}
	if !skip(activity.MerchantBikeShare, s.clients.BikeShares != nil) {
		opts := fetchOpts(activity.MerchantBikeShare, s.cfg.Providers.BayWheels)
		g.Go(func() error {
			rides, err := s.clients.BikeShares.FetchBikeShares(gctx, opts)
			batch.BikeShares = rides
			return err
		})
	}
	if err := g.Wait(); err != nil {
		return activity.Batch{}, err
	}
	return batch, nil
}

func (s *ReconcileService) matcherConfig() (matcher.Config, error) {
	loc, err := s.cfg.Location()
	if err != nil {
		return matcher.Config{}, err
	}
	m := s.cfg.Matching
	mcfg := matcher.DefaultConfig()
	mcfg.RideWindowDays = m.RideWindowDays
	mcfg.TipWindowDays = m.TipWindowDays
	mcfg.DeliveryWindowDays = m.DeliveryWindowDays
	mcfg.BikeShareWindowDays = m.BikeShareWindowDays
	mcfg.RideMinTolerance = decimal.NewFromFloat(m.RideMinTolerance)
	mcfg.DeliveryMinTolerance = decimal.NewFromFloat(m.DeliveryMinTolerance)
	mcfg.TolerancePercent = decimal.NewFromFloat(m.TolerancePercent)
	mcfg.BikeShareSumEpsilon = decimal.NewFromFloat(m.BikeShareSumEpsilon)
	mcfg.RecentTripAge = time.Duration(m.RecentTripDays) * 24 * time.Hour
	mcfg.Location = loc
	mcfg.Now = s.now
	return mcfg, nil
}
