package contracts

import (
	"herdbook/internal/countdown"
	"herdbook/internal/exporter"
)

// ExportRequest is the body of POST /api/export.
type ExportRequest struct {
	Filename string            `json:"filename" validate:"required,filename"`
	Format   string            `json:"format,omitempty" validate:"omitempty,exportformat"`
	Columns  []exporter.Column `json:"columns,omitempty" validate:"omitempty,dive"`
	Records  exporter.Dataset  `json:"records"`
}

// CountdownItem is one sale target in a batch classification.
type CountdownItem struct {
	ID     string `json:"id" validate:"required,max=128"`
	Target string `json:"target" validate:"required,saledate"`
}

// CountdownBatchRequest is the body of POST /api/countdown/batch.
type CountdownBatchRequest struct {
	Items []CountdownItem `json:"items" validate:"required,min=1,max=1000,dive"`
}

// CountdownResult pairs a batch item with its status.
type CountdownResult struct {
	ID     string           `json:"id"`
	Status countdown.Status `json:"status"`
}

// CountdownBatchResponse is the reply to POST /api/countdown/batch.
type CountdownBatchResponse struct {
	Now     string            `json:"now"`
	Results []CountdownResult `json:"results"`
}

// ExportReceipt is returned when an export is stored server side.
type ExportReceipt struct {
	Name   string `json:"name"`
	Format string `json:"format"`
	Rows   int    `json:"rows"`
	Bytes  int    `json:"bytes"`
}
