package dto

import "github.com/letehaha/currency-rates/internal/core/domain"

// SyncResultResponse reports the outcome of one provider's sync run.
type SyncResultResponse struct {
	Provider string `json:"provider"`
	Status   string `json:"status"`
	Days     int    `json:"days"`
	Records  int64  `json:"records"`
	Message  string `json:"message,omitempty"`
}

// SyncResponse is the payload for the manual sync endpoints.
type SyncResponse struct {
	Results []SyncResultResponse `json:"results"`
}

// ToSyncResultResponse converts a sync run into its payload shape.
func ToSyncResultResponse(run domain.SyncRun) SyncResultResponse {
	return SyncResultResponse{
		Provider: run.Provider,
		Status:   run.Status,
		Days:     run.DaysCount,
		Records:  run.RecordsCount,
		Message:  run.Message,
	}
}

// ToSyncResponse converts a batch of sync runs into the payload shape.
func ToSyncResponse(runs []domain.SyncRun) SyncResponse {
	resp := SyncResponse{Results: make([]SyncResultResponse, 0, len(runs))}
	for _, run := range runs {
		resp.Results = append(resp.Results, ToSyncResultResponse(run))
	}
	return resp
}
