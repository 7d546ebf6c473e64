// HistoryData is a paginated response payload for the prediction history.
package dto

import "catdog/internal/model"

type HistoryData struct {
	Predictions []model.Prediction `json:"predictions"`
	Pending     int                `json:"pending"`
	Length      int                `json:"length"`
	TotalPages  int                `json:"totalPages"`
	CurrentPage int                `json:"currentPage"`
	Limit       int                `json:"pageSize"`
}
