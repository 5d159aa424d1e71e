// Package table manages tenant tables, their QR codes and seating sessions.
package table

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	qrcode "github.com/skip2/go-qrcode"

	"ordermenu/internal/apperr"
	"ordermenu/internal/logger"
	"ordermenu/internal/models"
	"ordermenu/internal/repository"
)

const qrSize = 256

// Input is the create/update body. Update only touches the fields that were sent.
type Input struct {
	Code     *string `json:"code"`
	Name     *string `json:"name"`
	Capacity *int    `json:"capacity"`
}

func (in Input) apply(t *models.Table, creating bool) error {
	verr := &apperr.ValidationError{}
	if in.Code != nil {
		t.Code = strings.TrimSpace(*in.Code)
	}
	if (creating || in.Code != nil) && t.Code == "" {
		verr.Add("code", "code is required")
	}
	if in.Name != nil {
		t.Name = strings.TrimSpace(*in.Name)
	}
	if (creating || in.Name != nil) && t.Name == "" {
		verr.Add("name", "name is required")
	}
	if in.Capacity != nil {
		t.Capacity = *in.Capacity
	}
	if (creating || in.Capacity != nil) && t.Capacity <= 0 {
		verr.Add("capacity", "capacity must be greater than 0")
	}
	return verr.OrNil()
}

// QRCode is a table's scannable link rendered as a PNG data URL
type QRCode struct {
	QRCode string        `json:"qrCode"`
	URL    string        `json:"url"`
	Table  *models.Table `json:"table"`
}

type Service struct {
	tables  repository.TableRepository
	baseURL string
	logger  *logger.Logger
}

// NewService creates the table service. baseURL prefixes the links encoded in QR codes.
func NewService(tables repository.TableRepository, baseURL string, log *logger.Logger) *Service {
	return &Service{tables: tables, baseURL: strings.TrimRight(baseURL, "/"), logger: log}
}

func (s *Service) List(ctx context.Context, tenantID string) ([]models.Table, error) {
	return s.tables.List(ctx, tenantID)
}

func (s *Service) Get(ctx context.Context, tenantID, id string) (*models.Table, error) {
	return s.tables.Get(ctx, tenantID, id)
}

func (s *Service) Create(ctx context.Context, tenant *models.Tenant, in Input, requestID string) (*models.Table, error) {
	t := &models.Table{TenantID: tenant.ID, QRCodeToken: uuid.NewString()}
	if err := in.apply(t, true); err != nil {
		return nil, err
	}
	if err := s.tables.Create(ctx, t); err != nil {
		return nil, errors.Wrap(err, "failed to create table")
	}
	s.logger.Info("table_created", "Table created", requestID, map[string]interface{}{
		"tenant": tenant.Slug,
		"code":   t.Code,
	})
	return t, nil
}

func (s *Service) Update(ctx context.Context, tenant *models.Tenant, id string, in Input) (*models.Table, error) {
	t, err := s.tables.Get(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	if err := in.apply(t, false); err != nil {
		return nil, err
	}
	if err := s.tables.Update(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

func (s *Service) Delete(ctx context.Context, tenant *models.Tenant, id string) error {
	return s.tables.Delete(ctx, tenant.ID, id)
}

// MenuURL is the customer link a table's QR code points at
func (s *Service) MenuURL(tenant *models.Tenant, t *models.Table) string {
	return fmt.Sprintf("%s/%s/menu?table=%s", s.baseURL, tenant.Slug, t.QRCodeToken)
}

func (s *Service) QRCode(ctx context.Context, tenant *models.Tenant, id string) (*QRCode, error) {
	t, err := s.tables.Get(ctx, tenant.ID, id)
	if err != nil {
		return nil, err
	}
	url := s.MenuURL(tenant, t)
	png, err := qrcode.Encode(url, qrcode.Medium, qrSize)
	if err != nil {
		return nil, errors.Wrap(err, "failed to encode qr code")
	}
	return &QRCode{
		QRCode: "data:image/png;base64," + base64.StdEncoding.EncodeToString(png),
		URL:    url,
		Table:  t,
	}, nil
}

// OpenSession resolves a scanned QR token to the table's active session,
// starting one if none is open.
func (s *Service) OpenSession(ctx context.Context, tenant *models.Tenant, token, requestID string) (*models.TableSession, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, apperr.Invalid("qrcodeToken", "qr code token is required")
	}
	t, err := s.tables.GetByToken(ctx, tenant.ID, token)
	if err != nil {
		return nil, err
	}
	session, err := s.tables.OpenSession(ctx, tenant.ID, t.ID)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open table session")
	}
	session.Table = t
	s.logger.Debug("table_session_opened", "Table session opened", requestID, map[string]interface{}{
		"tenant":     tenant.Slug,
		"table":      t.Code,
		"session_id": session.ID,
	})
	return session, nil
}

func (s *Service) CloseSession(ctx context.Context, tenant *models.Tenant, id, requestID string) error {
	if err := s.tables.CloseSession(ctx, tenant.ID, id); err != nil {
		return err
	}
	s.logger.Info("table_session_closed", "Table session closed", requestID, map[string]interface{}{
		"tenant":     tenant.Slug,
		"session_id": id,
	})
	return nil
}
