package repository

import (
	"context"
	"errors"
	"fmt"

	"chauffeur-booking/internal/data/entity"
	"chauffeur-booking/pkg/database"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

type EmailTemplateRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*entity.EmailTemplate, error)
	FindByName(ctx context.Context, name string) (*entity.EmailTemplate, error)
	// FindFirstActiveContaining returns the oldest active template whose name contains fragment.
	FindFirstActiveContaining(ctx context.Context, fragment string) (*entity.EmailTemplate, error)
	List(ctx context.Context) ([]*entity.EmailTemplate, error)
}

type emailTemplateRepository struct {
	db  database.Querier
	log *zap.Logger
}

func NewEmailTemplateRepository(db database.Querier, log *zap.Logger) EmailTemplateRepository {
	return &emailTemplateRepository{
		db:  db,
		log: log.With(zap.String("repository", "email_template")),
	}
}

const emailTemplateColumns = `id, template_name, subject, body_html, is_active, created_at`

func scanEmailTemplate(row pgx.Row) (*entity.EmailTemplate, error) {
	var t entity.EmailTemplate
	if err := row.Scan(&t.ID, &t.TemplateName, &t.Subject, &t.BodyHTML, &t.IsActive, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *emailTemplateRepository) findOne(ctx context.Context, query string, args ...any) (*entity.EmailTemplate, error) {
	tpl, err := scanEmailTemplate(r.db.QueryRow(ctx, query, args...))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		r.log.Error("Failed to find email template", zap.Error(err), zap.Any("args", args))
		return nil, fmt.Errorf("find email template: %w", err)
	}
	return tpl, nil
}

func (r *emailTemplateRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.EmailTemplate, error) {
	return r.findOne(ctx, `SELECT `+emailTemplateColumns+` FROM email_templates WHERE id = $1`, id)
}

func (r *emailTemplateRepository) FindByName(ctx context.Context, name string) (*entity.EmailTemplate, error) {
	return r.findOne(ctx, `SELECT `+emailTemplateColumns+` FROM email_templates WHERE template_name = $1`, name)
}

func (r *emailTemplateRepository) FindFirstActiveContaining(ctx context.Context, fragment string) (*entity.EmailTemplate, error) {
	return r.findOne(ctx, `
		SELECT `+emailTemplateColumns+`
		FROM email_templates
		WHERE is_active AND template_name ILIKE $1
		ORDER BY created_at ASC
		LIMIT 1
	`, "%"+fragment+"%")
}

func (r *emailTemplateRepository) List(ctx context.Context) ([]*entity.EmailTemplate, error) {
	rows, err := r.db.Query(ctx, `SELECT `+emailTemplateColumns+` FROM email_templates ORDER BY template_name`)
	if err != nil {
		r.log.Error("Failed to list email templates", zap.Error(err))
		return nil, fmt.Errorf("list email templates: %w", err)
	}
	defer rows.Close()

	var templates []*entity.EmailTemplate
	for rows.Next() {
		tpl, err := scanEmailTemplate(rows)
		if err != nil {
			return nil, fmt.Errorf("scan email template row: %w", err)
		}
		templates = append(templates, tpl)
	}
	return templates, rows.Err()
}
