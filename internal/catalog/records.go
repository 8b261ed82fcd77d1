package catalog

import (
	"fmt"
	"strings"

	"github.com/agrosoja/agrosoja/internal/docstore"
	"github.com/agrosoja/agrosoja/internal/model"
)

// Stored field names.
const (
	fieldTitle       = "titulo"
	fieldDescription = "descricao"
	fieldCategory    = "categoria"
	fieldImageURL    = "imagemUrl"

	fieldPhone   = "telefone"
	fieldEmail   = "email"
	fieldAddress = "endereco"

	fieldName    = "nome"
	fieldMessage = "mensagem"
)

// Input limits.
const (
	MaxTitleLength       = 120
	MaxDescriptionLength = 4000
	MaxNameLength        = 120
	MaxMessageLength     = 2000
)

// str returns the string stored under key, or "" for any other type.
func str(fields map[string]any, key string) string {
	s, _ := fields[key].(string)
	return s
}

// decodeProduct validates a stored product document.
func decodeProduct(rec docstore.Record) (model.Product, error) {
	p := model.Product{
		ID:          rec.ID,
		Title:       strings.TrimSpace(str(rec.Fields, fieldTitle)),
		Description: str(rec.Fields, fieldDescription),
		Category:    model.Category(str(rec.Fields, fieldCategory)),
		CreatedAt:   rec.CreatedAt,
		UpdatedAt:   rec.UpdatedAt,
	}
	if p.Title == "" {
		return p, fmt.Errorf("%w: empty title", ErrInvalidInput)
	}
	if !p.Category.Valid() {
		return p, fmt.Errorf("%w: unknown category %q", ErrInvalidInput, p.Category)
	}
	if u := str(rec.Fields, fieldImageURL); u != "" {
		p.ImageURL = &u
	}
	return p, nil
}

func decodeContact(fields map[string]any) model.ContactInfo {
	return model.ContactInfo{
		Phone:   str(fields, fieldPhone),
		Email:   str(fields, fieldEmail),
		Address: str(fields, fieldAddress),
	}
}

func contactFields(c model.ContactInfo) map[string]any {
	return map[string]any{
		fieldPhone:   c.Phone,
		fieldEmail:   c.Email,
		fieldAddress: c.Address,
	}
}

func decodeMessage(rec docstore.Record) model.Message {
	return model.Message{
		ID:        rec.ID,
		Name:      str(rec.Fields, fieldName),
		Phone:     str(rec.Fields, fieldPhone),
		Body:      str(rec.Fields, fieldMessage),
		CreatedAt: rec.CreatedAt,
	}
}
