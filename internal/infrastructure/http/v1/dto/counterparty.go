package dto

import (
	"stocklot/internal/domain/catalogs/counterparty"
)

// --- Request DTOs ---

// CreateCounterpartyRequest is the request body for creating a counterparty.
type CreateCounterpartyRequest struct {
	Code    string                        `json:"code"`
	Name    string                        `json:"name" binding:"required"`
	Type    counterparty.CounterpartyType `json:"type" binding:"required"`
	Phone   *string                       `json:"phone"`
	Email   *string                       `json:"email"`
	Comment *string                       `json:"comment"`
}

// ToEntity converts DTO to domain entity.
func (r *CreateCounterpartyRequest) ToEntity() *counterparty.Counterparty {
	item := counterparty.NewCounterparty(r.Code, r.Name, r.Type)
	item.Phone = r.Phone
	item.Email = r.Email
	item.Comment = r.Comment
	return item
}

// UpdateCounterpartyRequest is the request body for updating a counterparty.
type UpdateCounterpartyRequest struct {
	Code    string                        `json:"code"`
	Name    string                        `json:"name" binding:"required"`
	Type    counterparty.CounterpartyType `json:"type" binding:"required"`
	Phone   *string                       `json:"phone"`
	Email   *string                       `json:"email"`
	Comment *string                       `json:"comment"`
	Version int                           `json:"version" binding:"required"`
}

// ApplyTo applies update DTO to existing entity.
func (r *UpdateCounterpartyRequest) ApplyTo(item *counterparty.Counterparty) {
	item.Code = r.Code
	item.Name = r.Name
	item.Type = r.Type
	item.Phone = r.Phone
	item.Email = r.Email
	item.Comment = r.Comment
	item.Version = r.Version
}

// --- Response DTOs ---

// CounterpartyResponse is the response body for a counterparty.
type CounterpartyResponse struct {
	ID           string                        `json:"id"`
	Code         string                        `json:"code"`
	Name         string                        `json:"name"`
	Type         counterparty.CounterpartyType `json:"type"`
	Phone        *string                       `json:"phone,omitempty"`
	Email        *string                       `json:"email,omitempty"`
	Comment      *string                       `json:"comment,omitempty"`
	DeletionMark bool                          `json:"deletionMark"`
	Version      int                           `json:"version"`
}

// FromCounterparty creates response DTO from domain entity.
func FromCounterparty(item *counterparty.Counterparty) *CounterpartyResponse {
	return &CounterpartyResponse{
		ID:           item.ID.String(),
		Code:         item.Code,
		Name:         item.Name,
		Type:         item.Type,
		Phone:        item.Phone,
		Email:        item.Email,
		Comment:      item.Comment,
		DeletionMark: item.DeletionMark,
		Version:      item.Version,
	}
}
