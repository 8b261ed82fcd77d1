package catalog

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/agrosoja/agrosoja/internal/model"
)

// Contact returns the site contact details, falling back to defaults for
// anything not stored yet.
func (s *Service) Contact(ctx context.Context) (model.ContactInfo, error) {
	rec, err := s.docs.GetSingleton(ctx, CollectionSettings, ContactKey)
	if err != nil {
		return model.DefaultContact, fmt.Errorf("getting contact: %w", err)
	}
	if rec == nil {
		return model.DefaultContact, nil
	}
	return decodeContact(rec.Fields).WithDefaults(), nil
}

// SaveContact overwrites the contact details.
func (s *Service) SaveContact(ctx context.Context, c model.ContactInfo) (model.ContactInfo, error) {
	c.Phone = strings.TrimSpace(c.Phone)
	c.Email = strings.TrimSpace(c.Email)
	c.Address = strings.TrimSpace(c.Address)
	if c.Email != "" {
		if _, err := mail.ParseAddress(c.Email); err != nil {
			return c, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, c.Email)
		}
	}

	if err := s.docs.SetSingleton(ctx, CollectionSettings, ContactKey, contactFields(c)); err != nil {
		return c, fmt.Errorf("saving contact: %w", err)
	}
	return c.WithDefaults(), nil
}

// MessageInput is a visitor message from the contact form.
type MessageInput struct {
	Name  string
	Phone string
	Body  string
}

// SubmitMessage stores a visitor message.
func (s *Service) SubmitMessage(ctx context.Context, in MessageInput) (*model.Message, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Phone = strings.TrimSpace(in.Phone)
	in.Body = strings.TrimSpace(in.Body)
	switch {
	case in.Name == "":
		return nil, fmt.Errorf("%w: name is required", ErrInvalidInput)
	case in.Body == "":
		return nil, fmt.Errorf("%w: message is required", ErrInvalidInput)
	case utf8.RuneCountInString(in.Name) > MaxNameLength:
		return nil, fmt.Errorf("%w: name exceeds %d characters", ErrInvalidInput, MaxNameLength)
	case utf8.RuneCountInString(in.Body) > MaxMessageLength:
		return nil, fmt.Errorf("%w: message exceeds %d characters", ErrInvalidInput, MaxMessageLength)
	}

	id, err := s.docs.Create(ctx, CollectionMessages, map[string]any{
		fieldName:    in.Name,
		fieldPhone:   in.Phone,
		fieldMessage: in.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("storing message: %w", err)
	}

	rec, err := s.docs.Get(ctx, CollectionMessages, id)
	if err != nil {
		return nil, fmt.Errorf("getting message: %w", err)
	}
	if rec == nil {
		return nil, ErrNotFound
	}
	m := decodeMessage(*rec)
	return &m, nil
}

// ListMessages returns visitor messages, newest first.
func (s *Service) ListMessages(ctx context.Context) ([]model.Message, error) {
	recs, err := s.docs.FetchAll(ctx, CollectionMessages)
	if err != nil {
		return nil, fmt.Errorf("listing messages: %w", err)
	}
	msgs := make([]model.Message, len(recs))
	for i, rec := range recs {
		msgs[len(recs)-1-i] = decodeMessage(rec)
	}
	return msgs, nil
}

// DeleteMessage removes a visitor message.
func (s *Service) DeleteMessage(ctx context.Context, id string) error {
	if err := s.docs.Delete(ctx, CollectionMessages, id); err != nil {
		return fmt.Errorf("deleting message: %w", err)
	}
	return nil
}
