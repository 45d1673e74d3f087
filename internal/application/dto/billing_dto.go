package dto

import "github.com/shopspring/decimal"

// CreateClientRequest body para POST /api/clients.
type CreateClientRequest struct {
	Name             string `json:"name"`
	TaxID            string `json:"tax_id"`
	BillingEmail     string `json:"billing_email,omitempty"`
	UnitsInStock     int64  `json:"units_in_stock,omitempty"`
	StorageStartDate string `json:"storage_start_date,omitempty"` // "2006-01-02"
}

// UpdateClientRequest body para PUT /api/clients/:id.
type UpdateClientRequest struct {
	Name             string `json:"name"`
	TaxID            string `json:"tax_id"`
	BillingEmail     string `json:"billing_email,omitempty"`
	UnitsInStock     int64  `json:"units_in_stock"`
	StorageStartDate string `json:"storage_start_date,omitempty"`
}

// ClientResponse cliente em respostas.
type ClientResponse struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	TaxID            string `json:"tax_id"`
	BillingEmail     string `json:"billing_email,omitempty"`
	UnitsInStock     int64  `json:"units_in_stock"`
	StorageStartDate string `json:"storage_start_date,omitempty"`
}

// CreatePriceItemRequest body para POST /api/price-items.
// Exatamente um entre MarginPercent e SalePrice deve vir preenchido; o outro é
// derivado de UnitCost.
type CreatePriceItemRequest struct {
	ClientID      string           `json:"client_id,omitempty"` // vazio = tabela global
	Category      string           `json:"category"`
	Subcategory   string           `json:"subcategory,omitempty"`
	Description   string           `json:"description"`
	UnitMetric    string           `json:"unit_metric,omitempty"`
	UnitCost      decimal.Decimal  `json:"unit_cost"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
}

// UpdatePriceItemRequest body para PUT /api/price-items/:id.
// Campos nil não são alterados; a tríade custo/margem/preço é rederivada a
// partir do que veio.
type UpdatePriceItemRequest struct {
	Category      *string          `json:"category,omitempty"`
	Subcategory   *string          `json:"subcategory,omitempty"`
	Description   *string          `json:"description,omitempty"`
	UnitMetric    *string          `json:"unit_metric,omitempty"`
	UnitCost      *decimal.Decimal `json:"unit_cost,omitempty"`
	MarginPercent *decimal.Decimal `json:"margin_percent,omitempty"`
	SalePrice     *decimal.Decimal `json:"sale_price,omitempty"`
}

// PriceItemResponse item da tabela de preços em respostas.
type PriceItemResponse struct {
	ID            string          `json:"id"`
	ClientID      string          `json:"client_id,omitempty"`
	Category      string          `json:"category"`
	Subcategory   string          `json:"subcategory,omitempty"`
	Description   string          `json:"description"`
	UnitMetric    string          `json:"unit_metric,omitempty"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	MarginPercent decimal.Decimal `json:"margin_percent"`
	SalePrice     decimal.Decimal `json:"sale_price"`
	IsTemplate    bool            `json:"is_template"`
}

// BulkMarginRequest body para POST /api/price-items/bulk-margin.
// Category vazia com ApplyToTemplates=true atinge todos os itens template.
type BulkMarginRequest struct {
	ClientID         string          `json:"client_id,omitempty"`
	Category         string          `json:"category,omitempty"`
	ApplyToTemplates bool            `json:"apply_to_templates,omitempty"`
	MarginPercent    decimal.Decimal `json:"margin_percent"`
}

// AdditionalCostRequest custo manual anexado na geração da cobrança.
type AdditionalCostRequest struct {
	Description string          `json:"description"`
	Value       decimal.Decimal `json:"value"`
	Category    string          `json:"category,omitempty"`
}

// GenerateInvoiceRequest body para POST /api/invoices/generate.
// Os CSVs chegam como texto (upload multipart já decodificado pelo handler).
type GenerateInvoiceRequest struct {
	ClientID        string                  `json:"client_id"`
	ReferenceMonth  string                  `json:"reference_month"` // "Outubro/2025"
	DueDate         string                  `json:"due_date"`        // "2006-01-02"
	TrackingCSV     string                  `json:"tracking_csv"`
	CostsCSV        string                  `json:"costs_csv"`
	AdditionalCosts []AdditionalCostRequest `json:"additional_costs,omitempty"`
	ExtraCosts      decimal.Decimal         `json:"extra_costs,omitempty"`
}

// LineItemResponse linha da cobrança em respostas.
type LineItemResponse struct {
	ID           string          `json:"id"`
	Date         string          `json:"date"`
	TrackingCode string          `json:"tracking_code,omitempty"`
	OrderCode    string          `json:"order_code,omitempty"`
	PriceItemID  string          `json:"price_item_id,omitempty"`
	Description  string          `json:"description,omitempty"`
	Category     string          `json:"category,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Kind         string          `json:"kind"` // QUANTIDADE | VALOR_BRUTO
	UnitPrice    decimal.Decimal `json:"unit_price"`
	Subtotal     decimal.Decimal `json:"subtotal"`
	PostalCode   string          `json:"postal_code,omitempty"`
	StateCode    string          `json:"state_code,omitempty"`
}

// InvoiceResponse cobrança com totais e diagnóstico da geração.
type InvoiceResponse struct {
	ID              string          `json:"id"`
	ClientID        string          `json:"client_id"`
	ClientName      string          `json:"client_name,omitempty"`
	ReferenceMonth  string          `json:"reference_month"`
	DueDate         string          `json:"due_date"`
	Status          string          `json:"status"`
	TotalShipping   decimal.Decimal `json:"total_shipping"`
	TotalStorage    decimal.Decimal `json:"total_storage"`
	TotalLogistics  decimal.Decimal `json:"total_logistics"`
	TotalAdditional decimal.Decimal `json:"total_additional"`
	TotalExtra      decimal.Decimal `json:"total_extra"`
	TotalCost       decimal.Decimal `json:"total_cost"`
	GrandTotal      decimal.Decimal `json:"grand_total"`

	Lines []LineItemResponse `json:"lines,omitempty"`

	UnmatchedTrackingIDs []string         `json:"unmatched_tracking_ids,omitempty"`
	UnmatchedCostIDs     []string         `json:"unmatched_cost_ids,omitempty"`
	DroppedCosts         []DroppedCostDTO `json:"dropped_costs,omitempty"`
	Warnings             []string         `json:"warnings,omitempty"`
	DetectedDateRange    string           `json:"detected_date_range,omitempty"`
}

// DroppedCostDTO custo descartado por falta de item correspondente.
type DroppedCostDTO struct {
	OrderID string          `json:"order_id"`
	Column  string          `json:"column"`
	Value   decimal.Decimal `json:"value"`
	Reason  string          `json:"reason"`
}

// UpdateInvoiceStatusRequest body para PATCH /api/invoices/:id/status.
type UpdateInvoiceStatusRequest struct {
	Status string `json:"status"` // Pendente | Enviada | Paga | Atrasada
}
