// Package submissions holds the contact-form and quotation-request intake:
// thin write/read accessors over the record store.
package submissions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/store"
)

const (
	ContactKey   = "contact-submissions"
	QuotationKey = "quotation-requests"
)

type Contact struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Subject     string    `json:"subject,omitempty"`
	Message     string    `json:"message"`
	SubmittedAt time.Time `json:"submittedAt"`
}

type Quotation struct {
	ID          string    `json:"id"`
	Company     string    `json:"company"`
	Name        string    `json:"name"`
	Email       string    `json:"email"`
	Country     string    `json:"country"`
	Product     string    `json:"product"`
	Quantity    string    `json:"quantity"`
	Grind       string    `json:"grind,omitempty"`
	Notes       string    `json:"notes,omitempty"`
	SubmittedAt time.Time `json:"submittedAt"`
}

// Storage is the slice of the record store the intake needs.
type Storage interface {
	Load(ctx context.Context, key string) (store.Collection, store.Version, error)
	Append(ctx context.Context, key string, record any) error
}

type Service struct {
	store Storage
	log   *logger.Logger
}

func NewService(s Storage, log *logger.Logger) *Service {
	return &Service{store: s, log: log}
}

func newID(prefix string) string {
	return fmt.Sprintf("%s-%d-%s", prefix, time.Now().UnixMilli(), uuid.NewString()[:8])
}

// AddContact validates and stores one contact-form submission, returning the
// assigned id.
func (s *Service) AddContact(ctx context.Context, c Contact) (string, error) {
	missing := []string{}
	if strings.TrimSpace(c.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(c.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(c.Message) == "" {
		missing = append(missing, "message")
	}
	if len(missing) > 0 {
		return "", errs.NewValidation(missing...)
	}

	c.ID = newID("sub")
	c.SubmittedAt = time.Now().UTC()
	if err := s.store.Append(ctx, ContactKey, c); err != nil {
		return "", err
	}
	s.log.LogStore("APPEND", ContactKey, fmt.Sprintf("contact submission %s stored", c.ID))
	return c.ID, nil
}

// AddQuotation validates and stores one quotation request.
func (s *Service) AddQuotation(ctx context.Context, q Quotation) (string, error) {
	missing := []string{}
	if strings.TrimSpace(q.Company) == "" {
		missing = append(missing, "company")
	}
	if strings.TrimSpace(q.Name) == "" {
		missing = append(missing, "name")
	}
	if strings.TrimSpace(q.Email) == "" {
		missing = append(missing, "email")
	}
	if strings.TrimSpace(q.Country) == "" {
		missing = append(missing, "country")
	}
	if strings.TrimSpace(q.Product) == "" {
		missing = append(missing, "product")
	}
	if strings.TrimSpace(q.Quantity) == "" {
		missing = append(missing, "quantity")
	}
	if len(missing) > 0 {
		return "", errs.NewValidation(missing...)
	}

	q.ID = newID("quo")
	q.SubmittedAt = time.Now().UTC()
	if err := s.store.Append(ctx, QuotationKey, q); err != nil {
		return "", err
	}
	s.log.LogStore("APPEND", QuotationKey, fmt.Sprintf("quotation request %s stored", q.ID))
	return q.ID, nil
}

// ListContacts returns every stored contact submission, oldest first.
// Empty or unreadable storage lists as empty.
func (s *Service) ListContacts(ctx context.Context) ([]Contact, error) {
	c, _, err := s.store.Load(ctx, ContactKey)
	if err != nil {
		return nil, err
	}
	return store.DecodeAll[Contact](c)
}

// ListQuotations returns every stored quotation request, oldest first.
func (s *Service) ListQuotations(ctx context.Context) ([]Quotation, error) {
	c, _, err := s.store.Load(ctx, QuotationKey)
	if err != nil {
		return nil, err
	}
	return store.DecodeAll[Quotation](c)
}
