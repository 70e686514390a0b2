// Package enquiry accepts corporate-order requests and contact messages.
package enquiry

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/fjod/nutstore/internal/domain"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrInvalid = errors.New("invalid enquiry")

type Repository interface {
	Save(ctx context.Context, e domain.Enquiry) error
	List(ctx context.Context, t domain.EnquiryType) ([]domain.Enquiry, error)
}

type Service struct {
	repo Repository
	log  *zap.Logger
	now  func() time.Time
}

func NewService(repo Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, log: log, now: time.Now}
}

// Submit validates e, assigns its id and timestamp and stores it.
func (s *Service) Submit(ctx context.Context, e domain.Enquiry) (domain.Enquiry, error) {
	e = normalize(e)
	if err := Validate(e); err != nil {
		return domain.Enquiry{}, err
	}

	e.ID = uuid.NewString()
	e.CreatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, e); err != nil {
		return domain.Enquiry{}, fmt.Errorf("save enquiry: %w", err)
	}

	s.log.Info("enquiry received",
		zap.String("enquiry_id", e.ID),
		zap.String("type", string(e.Type)))
	return e, nil
}

// List returns stored enquiries of one type, oldest first.
func (s *Service) List(ctx context.Context, t domain.EnquiryType) ([]domain.Enquiry, error) {
	if t != domain.EnquiryCorporate && t != domain.EnquiryContact {
		return nil, fmt.Errorf("%w: unknown type %q", ErrInvalid, t)
	}
	out, err := s.repo.List(ctx, t)
	if err != nil {
		return nil, fmt.Errorf("list enquiries: %w", err)
	}
	if out == nil {
		out = []domain.Enquiry{}
	}
	return out, nil
}

// Validate reports every missing or malformed field at once.
func Validate(e domain.Enquiry) error {
	var problems []string
	required := func(name, value string) {
		if strings.TrimSpace(value) == "" {
			problems = append(problems, name+" is required")
		}
	}

	switch e.Type {
	case domain.EnquiryCorporate:
		required("company", e.Company)
		required("name", e.Name)
		required("email", e.Email)
		required("phone", e.Phone)
		if e.Quantity < 0 {
			problems = append(problems, "quantity must not be negative")
		}
	case domain.EnquiryContact:
		required("name", e.Name)
		required("email", e.Email)
		required("subject", e.Subject)
		required("message", e.Message)
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalid, e.Type)
	}

	if e.Email != "" && !strings.Contains(e.Email, "@") {
		problems = append(problems, "email is malformed")
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalid, strings.Join(problems, "; "))
	}
	return nil
}

func normalize(e domain.Enquiry) domain.Enquiry {
	e.Name = strings.TrimSpace(e.Name)
	e.Company = strings.TrimSpace(e.Company)
	e.Email = strings.TrimSpace(e.Email)
	e.Phone = strings.TrimSpace(e.Phone)
	e.Subject = strings.TrimSpace(e.Subject)
	e.Message = strings.TrimSpace(e.Message)
	return e
}
