package handlers

import (
	"time"

	"github.com/eshaffer321/monarch-rideshare-sync/internal/adapters/credentials"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/api/dto"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/activity"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/domain/matcher"
	"github.com/eshaffer321/monarch-rideshare-sync/internal/infrastructure/storage"
)

const dateLayout = "2006-01-02"

func toRowResponses(rows []matcher.MatchedRow) []dto.RowResponse {
	out := make([]dto.RowResponse, 0, len(rows))
	for _, row := range rows {
		out = append(out, toRowResponse(row))
	}
	return out
}

func toRowResponse(row matcher.MatchedRow) dto.RowResponse {
	tx := row.Transaction
	resp := dto.RowResponse{
		Transaction: dto.TransactionResponse{
			ID:          tx.ID,
			Amount:      tx.Amount.InexactFloat64(),
			Date:        tx.Date.Format(dateLayout),
			AccountName: tx.AccountName,
			Description: tx.Description,
			Merchant:    string(tx.Merchant),
		},
		Warn:          row.Warn,
		Ride:          toCandidateResponse(row.Ride),
		Delivery:      toCandidateResponse(row.Delivery),
		BikeShare:     make([]dto.BikeRideResponse, 0, len(row.BikeShare)),
		SuggestedNote: row.SuggestedNote,
	}
	for _, b := range row.BikeShare {
		resp.BikeShare = append(resp.BikeShare, toBikeRideResponse(b))
	}
	return resp
}

func toCandidateResponse(c *matcher.Candidate) *dto.CandidateResponse {
	if c == nil {
		return nil
	}
	resp := &dto.CandidateResponse{
		Kind:        string(c.Kind),
		Amount:      c.Amount.InexactFloat64(),
		Date:        c.Date.Format(dateLayout),
		Description: c.Description,
		IsTip:       c.IsTip,
		DisplayName: c.DisplayName,
		DisplayCost: c.DisplayCost,
	}
	switch {
	case c.Ride != nil:
		resp.SourceID = c.Ride.UUID
		if c.Ride.Details != nil {
			resp.MapURL = c.Ride.Details.MapURL
		}
	case c.Delivery != nil:
		resp.SourceID = c.Delivery.OrderUUID
		resp.Items = c.Delivery.ItemStrings()
	}
	return resp
}

func toBikeRideResponse(b activity.BikeShareRecord) dto.BikeRideResponse {
	resp := dto.BikeRideResponse{
		ID:        b.ID,
		Cost:      b.Cost,
		StartedAt: b.StartedAt.Format(time.RFC3339),
		Error:     b.Error,
	}
	if b.Details != nil {
		resp.StartAddress = b.Details.StartAddress
		resp.EndAddress = b.Details.EndAddress
	}
	return resp
}

func toRunResponse(run storage.MatchRun) dto.RunResponse {
	resp := dto.RunResponse{
		ID:                run.ID,
		StartedAt:         run.StartedAt.Format(time.RFC3339),
		Status:            run.Status,
		Transactions:      run.Transactions,
		Matched:           run.Matched,
		SoftMatched:       run.SoftMatched,
		RidesFetched:      run.RidesFetched,
		DeliveriesFetched: run.DeliveriesFetched,
		BikeSharesFetched: run.BikeSharesFetched,
		ErrorMessage:      run.ErrorMessage,
	}
	if run.CompletedAt != nil {
		resp.CompletedAt = run.CompletedAt.Format(time.RFC3339)
	}
	if len(run.Rows) > 0 {
		resp.Rows = toRowResponses(run.Rows)
	}
	return resp
}

func toDecisionResponse(d activity.Decision) dto.DecisionResponse {
	return dto.DecisionResponse{
		TransactionID: d.TransactionID,
		Note:          d.Note,
		TagID:         d.TagID,
		DecidedAt:     d.DecidedAt.Format(time.RFC3339),
	}
}

func toTagResponses(tags []activity.Tag) []dto.TagResponse {
	out := make([]dto.TagResponse, 0, len(tags))
	for _, t := range tags {
		out = append(out, dto.TagResponse{ID: t.ID, Name: t.Name, Color: t.Color, Order: t.Order, Checked: t.Checked})
	}
	return out
}

func toCredentialResponses(statuses []credentials.Status) []dto.CredentialStatusResponse {
	out := make([]dto.CredentialStatusResponse, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, dto.CredentialStatusResponse{
			Service:     string(s.Service),
			DisplayName: s.Service.DisplayName(),
			LoggedIn:    s.LoggedIn,
		})
	}
	return out
}
