package bms

import (
	domain "github.com/opsdash/backend/internal/domain/bms"
)

// loginRequest is the credential payload for the platform login endpoint
type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// loginResponse carries the bearer token the platform issued
type loginResponse struct {
	Token string `json:"token"`
}

// listMeta is the pagination block the platform attaches to list responses.
// Total is only trustworthy on the first page; later pages repeat it.
type listMeta struct {
	Total int `json:"total"`
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

type orderListResponse struct {
	Data []domain.PurchaseOrder `json:"data"`
	Meta listMeta               `json:"meta"`
}

type receptionListResponse struct {
	Data []domain.Reception `json:"data"`
	Meta listMeta           `json:"meta"`
}

type supplierListResponse struct {
	Data []domain.Supplier `json:"data"`
	Meta listMeta          `json:"meta"`
}
