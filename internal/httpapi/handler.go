package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/aromas-andinas/storefront/internal/checkout"
	"github.com/aromas-andinas/storefront/internal/errs"
	"github.com/aromas-andinas/storefront/internal/logger"
	"github.com/aromas-andinas/storefront/internal/payment"
	"github.com/aromas-andinas/storefront/internal/submissions"
)

// CheckoutAPI is implemented by checkout.Service.
type CheckoutAPI interface {
	Checkout(ctx context.Context, req checkout.Request) (*checkout.Response, error)
}

// IntakeAPI is implemented by submissions.Service.
type IntakeAPI interface {
	AddContact(ctx context.Context, c submissions.Contact) (string, error)
	AddQuotation(ctx context.Context, q submissions.Quotation) (string, error)
	ListContacts(ctx context.Context) ([]submissions.Contact, error)
	ListQuotations(ctx context.Context) ([]submissions.Quotation, error)
}

// PaymentsAPI is the read side of the payment repository.
type PaymentsAPI interface {
	List(ctx context.Context) ([]payment.Payment, error)
}

type Handler struct {
	Checkout   CheckoutAPI
	Intake     IntakeAPI
	Payments   PaymentsAPI
	AdminToken string
	Logger     *logger.Logger
}

// Routes builds the service router.
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(requestLogger(h.Logger))

	r.Get("/healthz", h.health)

	r.Route("/api", func(r chi.Router) {
		r.Post("/checkout", h.handleCheckout)
		r.Post("/contact", h.handleContact)
		r.Post("/quotation", h.handleQuotation)

		r.Route("/admin", func(r chi.Router) {
			r.Use(adminOnly(h.AdminToken))
			r.Get("/payments", h.listPayments)
			r.Get("/contact", h.listContacts)
			r.Get("/quotations", h.listQuotations)
		})
	})

	return r
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) handleCheckout(w http.ResponseWriter, r *http.Request) {
	// Gateway credentials absent means no checkout, checked before any
	// record is persisted.
	if h.Checkout == nil {
		writeError(w, http.StatusServiceUnavailable, "Payment service unavailable", "")
		return
	}

	var req checkout.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	resp, err := h.Checkout.Checkout(r.Context(), req)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleContact(w http.ResponseWriter, r *http.Request) {
	var c submissions.Contact
	if err := json.NewDecoder(r.Body).Decode(&c); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	id, err := h.Intake.AddContact(r.Context(), c)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

func (h *Handler) handleQuotation(w http.ResponseWriter, r *http.Request) {
	var q submissions.Quotation
	if err := json.NewDecoder(r.Body).Decode(&q); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request payload", err.Error())
		return
	}

	id, err := h.Intake.AddQuotation(r.Context(), q)
	if err != nil {
		h.respondError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"id": id})
}

// Admin listings degrade to empty rather than erroring when storage is empty
// or misconfigured; only decode failures surface.
func (h *Handler) listPayments(w http.ResponseWriter, r *http.Request) {
	payments, err := h.Payments.List(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if payments == nil {
		payments = []payment.Payment{}
	}
	writeJSON(w, http.StatusOK, payments)
}

func (h *Handler) listContacts(w http.ResponseWriter, r *http.Request) {
	contacts, err := h.Intake.ListContacts(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if contacts == nil {
		contacts = []submissions.Contact{}
	}
	writeJSON(w, http.StatusOK, contacts)
}

func (h *Handler) listQuotations(w http.ResponseWriter, r *http.Request) {
	quotations, err := h.Intake.ListQuotations(r.Context())
	if err != nil {
		h.respondError(w, err)
		return
	}
	if quotations == nil {
		quotations = []submissions.Quotation{}
	}
	writeJSON(w, http.StatusOK, quotations)
}

func (h *Handler) respondError(w http.ResponseWriter, err error) {
	status, message, details := statusFor(err)
	var persistErr *errs.PersistenceError
	if errors.As(err, &persistErr) {
		// Backend names and wrapped causes stay out of responses.
		h.Logger.Error("HTTP", fmt.Sprintf("persistence failure on %s backend: %v", persistErr.Backend, persistErr.Err))
	} else if status >= 500 {
		h.Logger.Error("HTTP", fmt.Sprintf("%s: %v", message, err))
	}
	writeError(w, status, message, details)
}
