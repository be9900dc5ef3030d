package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/bandera-print/backoffice-api/internal/domain"
)

// ClientFilters narrows client listings
type ClientFilters struct {
	Type domain.ClientType
}

var clientSortableFields = map[string]string{
	"createdAt": "created_at",
	"updatedAt": "updated_at",
	"name":      "name",
	"city":      "city",
	"status":    "status",
}

// ClientRepository handles client and contact data access
type ClientRepository struct {
	db *gorm.DB
}

// NewClientRepository creates a new client repository
func NewClientRepository(db *gorm.DB) *ClientRepository {
	return &ClientRepository{db: db}
}

// Create inserts the client and its contacts
func (r *ClientRepository) Create(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Create(client).Error
}

func (r *ClientRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	var client domain.Client
	err := r.db.WithContext(ctx).
		Preload("Contacts", func(db *gorm.DB) *gorm.DB { return db.Order("name ASC") }).
		Where("id = ?", id).
		First(&client).Error
	if err != nil {
		return nil, err
	}
	return &client, nil
}

// Update saves the client and replaces its contact list
func (r *ClientRepository) Update(ctx context.Context, client *domain.Client) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(client).Error; err != nil {
			return err
		}
		if err := tx.Where("client_id = ?", client.ID).Delete(&domain.ClientContact{}).Error; err != nil {
			return err
		}
		for i := range client.Contacts {
			client.Contacts[i].ID = uuid.Nil
			client.Contacts[i].ClientID = client.ID
		}
		if len(client.Contacts) == 0 {
			return nil
		}
		return tx.Create(&client.Contacts).Error
	})
}

// List returns a page of clients matching name, email, phone or tax id
func (r *ClientRepository) List(ctx context.Context, opts ListOptions, filters ClientFilters) ([]domain.Client, int64, error) {
	opts.Normalize()
	query := r.db.WithContext(ctx).Model(&domain.Client{})
	if opts.Search != "" {
		p := searchPattern(opts.Search)
		query = query.Where("LOWER(name) LIKE ? OR LOWER(email) LIKE ? OR phone LIKE ? OR tax_id LIKE ?", p, p, p, p)
	}
	if opts.Status != "" {
		query = query.Where("status = ?", opts.Status)
	}
	if filters.Type != "" {
		query = query.Where("type = ?", filters.Type)
	}
	var clients []domain.Client
	total, err := paginate(query, opts, clientSortableFields, "name", &clients, "Contacts")
	return clients, total, err
}
