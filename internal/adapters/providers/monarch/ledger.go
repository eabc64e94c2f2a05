// Package monarch reads pending rideshare charges and household tags from
// the Monarch GraphQL API and writes review decisions back.
package monarch

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/graphql"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/providers"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
)

const defaultLimit = 200

const transactionsQuery = `query Web_GetTransactionsList($offset: Int, $limit: Int, $filters: TransactionFilterInput, $orderBy: TransactionOrdering) {
  allTransactions(filters: $filters) {
    totalCount
    results(offset: $offset, limit: $limit, orderBy: $orderBy) {
      id
      amount
      date
      notes
      needsReview
      dataProviderDescription
      merchant { id name }
      tags { id name color order }
      account { id displayName }
    }
  }
}`

const tagsQuery = `query Common_GetHouseholdTransactionTags($search: String, $limit: Int, $includeTransactionCount: Boolean = false) {
  householdTransactionTags(search: $search, limit: $limit) {
    id
    name
    color
    order
    transactionCount @include(if: $includeTransactionCount)
  }
}`

const updateTransactionMutation = `mutation Web_TransactionDrawerUpdateTransaction($input: UpdateTransactionMutationInput!) {
  updateTransaction(input: $input) {
    transaction { id notes needsReview }
    errors { message code }
  }
}`

const setTagsMutation = `mutation Web_SetTransactionTags($input: SetTransactionTagsInput!) {
  setTransactionTags(input: $input) {
    errors { message code }
    transaction { id tags { id } }
  }
}`

// Ledger implements providers.Ledger.
type Ledger struct {
	client      *graphql.Client
	limit       int
	merchantIDs []string
	logger      *slog.Logger
}

var _ providers.Ledger = (*Ledger)(nil)

// NewLedger creates a Monarch ledger. merchantIDs narrows the transaction
// query to the rideshare merchants; limit <= 0 uses 200.
func NewLedger(client *graphql.Client, limit int, merchantIDs []string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = slog.Default()
	}
	if limit <= 0 {
		limit = defaultLimit
	}
	if merchantIDs == nil {
		merchantIDs = []string{}
	}
	return &Ledger{
		client:      client,
		limit:       limit,
		merchantIDs: merchantIDs,
		logger:      logger.With(slog.String("provider", "monarch")),
	}
}

type transactionFilters struct {
	Search     string   `json:"search"`
	Categories []string `json:"categories"`
	Accounts   []string `json:"accounts"`
	Tags       []string `json:"tags"`
	Merchants  []string `json:"merchants"`
}

type transactionsVariables struct {
	OrderBy string             `json:"orderBy"`
	Limit   int                `json:"limit"`
	Filters transactionFilters `json:"filters"`
}

type transaction struct {
	ID                      string  `json:"id"`
	Amount                  float64 `json:"amount"`
	Date                    string  `json:"date"`
	DataProviderDescription string  `json:"dataProviderDescription"`
	Account                 *struct {
		DisplayName string `json:"displayName"`
	} `json:"account"`
}

type transactionsData struct {
	AllTransactions struct {
		Results []transaction `json:"results"`
	} `json:"allTransactions"`
}

// PendingTransactions returns the most recent charges from the configured
// merchants, newest first. The merchant class is resolved here from the
// card processor description.
func (l *Ledger) PendingTransactions(ctx context.Context) ([]activity.LedgerTransaction, error) {
	var data transactionsData
	err := l.client.Do(ctx, graphql.Request{
		OperationName: "Web_GetTransactionsList",
		Variables: transactionsVariables{
			OrderBy: "date",
			Limit:   l.limit,
			Filters: transactionFilters{
				Categories: []string{},
				Accounts:   []string{},
				Tags:       []string{},
				Merchants:  l.merchantIDs,
			},
		},
		Query: transactionsQuery,
	}, &data)
	if err != nil {
		return nil, fmt.Errorf("fetch transactions: %w", err)
	}

	txns := make([]activity.LedgerTransaction, 0, len(data.AllTransactions.Results))
	for _, raw := range data.AllTransactions.Results {
		date, err := activity.ParseDate(raw.Date)
		if err != nil {
			return nil, fmt.Errorf("transaction %s: invalid date %q: %w", raw.ID, raw.Date, err)
		}
		txn := activity.LedgerTransaction{
			ID:             raw.ID,
			Amount:         decimal.NewFromFloat(raw.Amount),
			Date:           date,
			RawDescription: raw.DataProviderDescription,
			Merchant:       activity.ClassifyDescription(raw.DataProviderDescription),
		}
		if raw.Account != nil {
			txn.AccountName = raw.Account.DisplayName
		}
		txns = append(txns, txn)
	}

	l.logger.Info("fetched transactions", slog.Int("count", len(txns)))
	return txns, nil
}

type tagsData struct {
	HouseholdTransactionTags []struct {
		ID    string `json:"id"`
		Name  string `json:"name"`
		Color string `json:"color"`
		Order int    `json:"order"`
	} `json:"householdTransactionTags"`
}

// Tags returns the household transaction tags.
func (l *Ledger) Tags(ctx context.Context) ([]activity.Tag, error) {
	var data tagsData
	err := l.client.Do(ctx, graphql.Request{
		OperationName: "Common_GetHouseholdTransactionTags",
		Variables:     map[string]bool{"includeTransactionCount": false},
		Query:         tagsQuery,
	}, &data)
	if err != nil {
		return nil, fmt.Errorf("fetch tags: %w", err)
	}

	tags := make([]activity.Tag, 0, len(data.HouseholdTransactionTags))
	for _, t := range data.HouseholdTransactionTags {
		tags = append(tags, activity.Tag{ID: t.ID, Name: t.Name, Color: t.Color, Order: t.Order})
	}
	return tags, nil
}

type payloadErrors struct {
	Errors *struct {
		Message string `json:"message"`
		Code    string `json:"code"`
	} `json:"errors"`
}

// ApplyDecision sets the note and marks the transaction reviewed, then
// applies the tag when one is given. The tag replaces any existing tags.
func (l *Ledger) ApplyDecision(ctx context.Context, d activity.Decision) error {
	var updated struct {
		UpdateTransaction payloadErrors `json:"updateTransaction"`
	}
	err := l.client.Do(ctx, graphql.Request{
		OperationName: "Web_TransactionDrawerUpdateTransaction",
		Variables: map[string]any{
			"input": map[string]any{
				"id":       d.TransactionID,
				"notes":    d.Note,
				"reviewed": true,
			},
		},
		Query: updateTransactionMutation,
	}, &updated)
	if err != nil {
		return fmt.Errorf("update transaction %s: %w", d.TransactionID, err)
	}
	if e := updated.UpdateTransaction.Errors; e != nil && e.Message != "" {
		return fmt.Errorf("update transaction %s: %s", d.TransactionID, e.Message)
	}

	if d.TagID == "" {
		l.logger.Info("applied decision", slog.String("txn", d.TransactionID))
		return nil
	}

	var tagged struct {
		SetTransactionTags payloadErrors `json:"setTransactionTags"`
	}
	err = l.client.Do(ctx, graphql.Request{
		OperationName: "Web_SetTransactionTags",
		Variables: map[string]any{
			"input": map[string]any{
				"tagIds":        []string{d.TagID},
				"transactionId": d.TransactionID,
			},
		},
		Query: setTagsMutation,
	}, &tagged)
	if err != nil {
		return fmt.Errorf("tag transaction %s: %w", d.TransactionID, err)
	}
	if e := tagged.SetTransactionTags.Errors; e != nil && e.Message != "" {
		return fmt.Errorf("tag transaction %s: %s", d.TransactionID, e.Message)
	}

	l.logger.Info("applied decision",
		slog.String("txn", d.TransactionID),
		slog.String("tag", d.TagID))
	return nil
}
