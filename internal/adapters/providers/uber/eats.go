package uber

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

const defaultEatsMaxPages = 100

// EatsProvider implements providers.DeliverySource against the past-orders
// endpoint, which takes a plain JSON body rather than a GraphQL envelope.
type EatsProvider struct {
	client   *graphql.Client
	maxPages int
	logger   *slog.Logger
}

var _ providers.DeliverySource = (*EatsProvider)(nil)

// NewEatsProvider creates a delivery fetcher. maxPages <= 0 uses the default of 100.
func NewEatsProvider(client *graphql.Client, maxPages int, logger *slog.Logger) *EatsProvider {
	if logger == nil {
		logger = slog.Default()
	}
	if maxPages <= 0 {
		maxPages = defaultEatsMaxPages
	}
	return &EatsProvider{
		client:   client,
		maxPages: maxPages,
		logger:   logger.With(slog.String("provider", "uber_eats")),
	}
}

// Name returns the provider identifier
func (p *EatsProvider) Name() string {
	return "uber_eats"
}

type pastOrdersRequest struct {
	LastWorkflowUUID string `json:"lastWorkflowUUID"`
}

type pastOrdersResponse struct {
	Data struct {
		OrderUUIDs []string             `json:"orderUuids"`
		OrdersMap  map[string]eatsOrder `json:"ordersMap"`
		Meta       struct {
			HasMore bool `json:"hasMore"`
		} `json:"meta"`
	} `json:"data"`
}

type eatsOrder struct {
	StoreInfo struct {
		Title string `json:"title"`
	} `json:"storeInfo"`
	FareInfo struct {
		TotalPrice   float64 `json:"totalPrice"`
		CheckoutInfo []struct {
			Label    string   `json:"label"`
			RawValue *float64 `json:"rawValue"`
		} `json:"checkoutInfo"`
	} `json:"fareInfo"`
	BaseEaterOrder struct {
		UUID         string              `json:"uuid"`
		CompletedAt  providers.Timestamp `json:"completedAt"`
		ShoppingCart struct {
			Items []struct {
				Title    string  `json:"title"`
				Quantity float64 `json:"quantity"`
			} `json:"items"`
		} `json:"shoppingCart"`
	} `json:"baseEaterOrder"`
}

// FetchDeliveries pages through order history, newest first, until a page
// ends before opts.Cutoff or the server reports no more orders.
func (p *EatsProvider) FetchDeliveries(ctx context.Context, opts providers.FetchOptions) ([]activity.DeliveryRecord, error) {
	p.logger.Info("fetching deliveries", slog.Time("cutoff", opts.Cutoff))

	var all []activity.DeliveryRecord
	body := pastOrdersRequest{}
	for request := 0; request < p.maxPages; request++ {
		var resp pastOrdersResponse
		if err := p.client.PostJSON(ctx, body, &resp); err != nil {
			return nil, fmt.Errorf("fetch deliveries page %d: %w", request+1, err)
		}

		orders := orderedRecords(resp.Data.OrderUUIDs, resp.Data.OrdersMap)
		all = append(all, orders...)
		p.logger.Debug("fetched deliveries page",
			slog.Int("page", request+1),
			slog.Int("orders", len(orders)))

		if len(orders) == 0 || len(resp.Data.OrderUUIDs) == 0 {
			break
		}
		if orders[len(orders)-1].CompletedAt.Before(opts.Cutoff) || !resp.Data.Meta.HasMore {
			break
		}
		body.LastWorkflowUUID = resp.Data.OrderUUIDs[len(resp.Data.OrderUUIDs)-1]
	}

	p.logger.Info("fetched deliveries", slog.Int("total", len(all)))
	return all, nil
}

// orderedRecords converts the order map following the server's uuid list.
// Orders missing from the list are appended in key order.
func orderedRecords(uuids []string, orders map[string]eatsOrder) []activity.DeliveryRecord {
	seen := make(map[string]bool, len(uuids))
	records := make([]activity.DeliveryRecord, 0, len(orders))
	for _, id := range uuids {
		order, ok := orders[id]
		if !ok || seen[id] {
			continue
		}
		seen[id] = true
		records = append(records, toDeliveryRecord(id, order))
	}

	var rest []string
	for id := range orders {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	sort.Strings(rest)
	for _, id := range rest {
		records = append(records, toDeliveryRecord(id, orders[id]))
	}
	return records
}

func toDeliveryRecord(id string, order eatsOrder) activity.DeliveryRecord {
	record := activity.DeliveryRecord{
		OrderUUID:   id,
		StoreName:   order.StoreInfo.Title,
		CostCents:   int64(math.Round(order.FareInfo.TotalPrice)),
		CompletedAt: order.BaseEaterOrder.CompletedAt.Time,
		Items:       make([]activity.LineItem, 0, len(order.BaseEaterOrder.ShoppingCart.Items)),
	}
	for _, line := range order.FareInfo.CheckoutInfo {
		if line.Label == "Tip" && line.RawValue != nil {
			tip := decimal.NewFromFloat(*line.RawValue)
			record.Tip = &tip
			break
		}
	}
	for _, item := range order.BaseEaterOrder.ShoppingCart.Items {
		record.Items = append(record.Items, activity.LineItem{
			Title:    item.Title,
			Quantity: int(math.Round(item.Quantity)),
		})
	}
	return record
}
