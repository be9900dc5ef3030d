package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/bandera-print/backoffice-api/internal/auth"
	"github.com/bandera-print/backoffice-api/internal/domain"
	"github.com/bandera-print/backoffice-api/internal/mapper"
	"github.com/bandera-print/backoffice-api/internal/metrics"
	"github.com/bandera-print/backoffice-api/internal/repository"
)

// QuoteMailer delivers a sent quote to the client
type QuoteMailer interface {
	Enabled() bool
	SendQuote(ctx context.Context, q *domain.Quote) error
}

// QuoteDefaults are applied to quotes that do not set their own values
type QuoteDefaults struct {
	TaxRate      decimal.Decimal
	ValidityDays int
}

// QuoteService drives the quote lifecycle. Confirming a quote creates its order.
type QuoteService struct {
	db          *gorm.DB
	quoteRepo   *repository.QuoteRepository
	clientRepo  *repository.ClientRepository
	productRepo *repository.ProductRepository
	numbers     *NumberSequenceService
	activities  *ActivityService
	mailer      QuoteMailer
	metrics     *metrics.Recorder
	defaults    QuoteDefaults
	logger      *zap.Logger
}

// NewQuoteService creates a QuoteService. mailer and recorder may be nil.
func NewQuoteService(
	db *gorm.DB,
	quoteRepo *repository.QuoteRepository,
	clientRepo *repository.ClientRepository,
	productRepo *repository.ProductRepository,
	numbers *NumberSequenceService,
	activities *ActivityService,
	mailer QuoteMailer,
	recorder *metrics.Recorder,
	defaults QuoteDefaults,
	logger *zap.Logger,
) *QuoteService {
	return &QuoteService{
		db:          db,
		quoteRepo:   quoteRepo,
		clientRepo:  clientRepo,
		productRepo: productRepo,
		numbers:     numbers,
		activities:  activities,
		mailer:      mailer,
		metrics:     recorder,
		defaults:    defaults,
		logger:      logger,
	}
}

func (s *QuoteService) getQuote(ctx context.Context, repo *repository.QuoteRepository, id uuid.UUID) (*domain.Quote, error) {
	quote, err := repo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrQuoteNotFound, "get quote")
	}
	return quote, nil
}

func (s *QuoteService) getClient(ctx context.Context, id uuid.UUID) (*domain.Client, error) {
	client, err := s.clientRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, ErrClientNotFound, "get client")
	}
	return client, nil
}

// buildItems turns request lines into priced line items. Lines that reference a
// product take missing description and unit price from the catalogue.
func (s *QuoteService) buildItems(ctx context.Context, reqs []domain.QuoteItemRequest) ([]domain.LineItem, error) {
	items := make([]domain.LineItem, len(reqs))
	products := make(map[uuid.UUID]*domain.Product)

	for i, r := range reqs {
		item := domain.LineItem{
			ProductID:   r.ProductID,
			VariantID:   r.VariantID,
			Description: strings.TrimSpace(r.Description),
			Quantity:    r.Quantity,
			Discount:    r.Discount,
		}

		if r.ProductID != nil {
			product, ok := products[*r.ProductID]
			if !ok {
				p, err := s.productRepo.GetByID(ctx, *r.ProductID)
				if err != nil {
					return nil, notFound(err, ErrProductNotFound, "get product")
				}
				product = p
				products[p.ID] = p
			}
			price, desc, ok := product.PriceFor(r.VariantID)
			if !ok {
				if r.VariantID == nil && product.HasVariants {
					return nil, domain.NewValidationError("items.variantId", "is required for products with variants")
				}
				return nil, ErrVariantNotFound
			}
			if item.Description == "" {
				item.Description = desc
			}
			if r.UnitPrice == nil {
				item.UnitPrice = price
			}
		} else if r.VariantID != nil {
			return nil, domain.NewValidationError("items.variantId", "requires productId")
		}

		if r.UnitPrice != nil {
			item.UnitPrice = *r.UnitPrice
		} else if r.ProductID == nil {
			return nil, domain.NewValidationError("items.unitPrice", "is required for lines without a product")
		}
		items[i] = item
	}
	return items, nil
}

func (s *QuoteService) defaultValidUntil(now time.Time) *time.Time {
	if s.defaults.ValidityDays <= 0 {
		return nil
	}
	d := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).AddDate(0, 0, s.defaults.ValidityDays)
	return &d
}

func stampCreator(ctx context.Context, q *domain.Quote) {
	if user, ok := auth.FromContext(ctx); ok {
		q.CreatedByID = user.UserID
		q.CreatedByName = user.DisplayName
		q.UpdatedByID = user.UserID
		q.UpdatedByName = user.DisplayName
	}
}

func stampUpdater(ctx context.Context, q *domain.Quote) {
	if user, ok := auth.FromContext(ctx); ok {
		q.UpdatedByID = user.UserID
		q.UpdatedByName = user.DisplayName
	}
}

// insertNumbered allocates a quote number and inserts the quote in one transaction
func (s *QuoteService) insertNumbered(ctx context.Context, quote *domain.Quote) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		number, err := s.numbers.withRepo(repository.NewNumberSequenceRepository(tx)).Next(ctx, domain.SequenceQuote)
		if err != nil {
			return err
		}
		quote.Number = number
		if err := repository.NewQuoteRepository(tx).Create(ctx, quote); err != nil {
			return fmt.Errorf("failed to create quote: %w", err)
		}
		return nil
	})
}

// Create prices the items and stores a new draft quote with the next PRE number
func (s *QuoteService) Create(ctx context.Context, req *domain.CreateQuoteRequest) (*domain.QuoteDTO, error) {
	client, err := s.getClient(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	items, err := s.buildItems(ctx, req.Items)
	if err != nil {
		return nil, err
	}

	taxRate := s.defaults.TaxRate
	if req.TaxRate != nil {
		taxRate = *req.TaxRate
	}

	quote, err := domain.NewQuote("", client, items, taxRate, req.Discount)
	if err != nil {
		return nil, err
	}
	quote.Notes = strings.TrimSpace(req.Notes)
	quote.ValidUntil = req.ValidUntil
	if quote.ValidUntil == nil {
		quote.ValidUntil = s.defaultValidUntil(time.Now())
	}
	stampCreator(ctx, quote)

	if err := s.insertNumbered(ctx, quote); err != nil {
		return nil, err
	}

	s.logger.Info("quote created",
		zap.String("quoteID", quote.ID.String()),
		zap.String("number", quote.Number),
		zap.String("clientID", client.ID.String()),
		zap.String("total", quote.Total.StringFixed(domain.MoneyScale)))
	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID, "Quote created",
		fmt.Sprintf("Quote %s was created for '%s'", quote.Number, quote.ClientName))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) GetByID(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, s.quoteRepo, id)
	if err != nil {
		return nil, err
	}
	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

func (s *QuoteService) List(ctx context.Context, opts repository.ListOptions, filters repository.QuoteFilters) (*domain.PaginatedResponse, error) {
	opts.Normalize()
	if opts.Status != "" && !domain.QuoteStatus(opts.Status).IsValid() {
		return nil, domain.NewValidationError("status", "unknown quote status")
	}
	quotes, total, err := s.quoteRepo.List(ctx, opts, filters)
	if err != nil {
		return nil, fmt.Errorf("failed to list quotes: %w", err)
	}

	dtos := make([]domain.QuoteDTO, len(quotes))
	for i := range quotes {
		dtos[i] = mapper.ToQuoteDTO(&quotes[i])
	}
	return domain.NewPaginatedResponse(dtos, total, opts.Page, opts.PageSize), nil
}

// Update edits a draft quote. Any other status fails with domain.ErrQuoteLocked.
func (s *QuoteService) Update(ctx context.Context, id uuid.UUID, req *domain.UpdateQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, s.quoteRepo, id)
	if err != nil {
		return nil, err
	}
	if !quote.IsEditable() {
		return nil, domain.ErrQuoteLocked
	}

	if req.ClientID != nil && *req.ClientID != quote.ClientID {
		client, err := s.getClient(ctx, *req.ClientID)
		if err != nil {
			return nil, err
		}
		if err := quote.SetClient(client); err != nil {
			return nil, err
		}
	}

	itemsChanged := req.Items != nil
	var items []domain.LineItem
	if itemsChanged {
		if items, err = s.buildItems(ctx, req.Items); err != nil {
			return nil, err
		}
	}

	if itemsChanged || req.TaxRate != nil || req.Discount != nil {
		taxRate, discount := quote.TaxRate, quote.Discount
		if req.TaxRate != nil {
			taxRate = *req.TaxRate
		}
		if req.Discount != nil {
			discount = *req.Discount
		}
		if err := quote.Reprice(items, taxRate, discount); err != nil {
			return nil, err
		}
	}

	if req.ValidUntil != nil {
		quote.ValidUntil = req.ValidUntil
	}
	if req.Notes != nil {
		quote.Notes = strings.TrimSpace(*req.Notes)
	}
	stampUpdater(ctx, quote)

	if itemsChanged {
		err = s.quoteRepo.UpdateWithItems(ctx, quote)
	} else {
		err = s.quoteRepo.Update(ctx, quote)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Send moves a draft to sent and emails the client when mail is enabled.
// Mail failures are logged and do not undo the transition.
func (s *QuoteService) Send(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, s.quoteRepo, id)
	if err != nil {
		return nil, err
	}
	if err := quote.Send(time.Now().UTC()); err != nil {
		return nil, err
	}
	stampUpdater(ctx, quote)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}
	s.metrics.QuoteTransition(domain.QuoteStatusSent)
	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID, "Quote sent",
		fmt.Sprintf("Quote %s was sent to '%s'", quote.Number, quote.ClientName))

	if s.mailer != nil && s.mailer.Enabled() && quote.ClientEmail != "" {
		if err := s.mailer.SendQuote(ctx, quote); err != nil {
			s.logger.Warn("failed to email quote",
				zap.String("quoteID", quote.ID.String()),
				zap.String("number", quote.Number),
				zap.Error(err))
		}
	}

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Confirm accepts a sent quote and creates its order. The status change, the
// order number and the order row are committed together or not at all.
func (s *QuoteService) Confirm(ctx context.Context, id uuid.UUID) (*domain.ConfirmQuoteResponse, error) {
	var quote *domain.Quote
	var order *domain.Order

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		quoteRepo := repository.NewQuoteRepository(tx)
		orderRepo := repository.NewOrderRepository(tx)
		numbers := s.numbers.withRepo(repository.NewNumberSequenceRepository(tx))

		q, err := s.getQuote(ctx, quoteRepo, id)
		if err != nil {
			return err
		}
		if err := q.Confirm(time.Now().UTC()); err != nil {
			return err
		}

		number, err := numbers.Next(ctx, domain.SequenceOrder)
		if err != nil {
			return err
		}
		o, err := domain.NewOrderFromQuote(q, number)
		if err != nil {
			return err
		}
		if err := orderRepo.Create(ctx, o); err != nil {
			return fmt.Errorf("failed to create order: %w", err)
		}

		q.OrderID = &o.ID
		stampUpdater(ctx, q)
		if err := quoteRepo.Update(ctx, q); err != nil {
			return fmt.Errorf("failed to update quote: %w", err)
		}

		quote, order = q, o
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.QuoteTransition(domain.QuoteStatusConfirmed)
	s.logger.Info("quote confirmed",
		zap.String("quoteID", quote.ID.String()),
		zap.String("orderID", order.ID.String()),
		zap.String("orderNumber", order.Number))
	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID, "Quote confirmed",
		fmt.Sprintf("Quote %s was confirmed; order %s created", quote.Number, order.Number))
	s.activities.Record(ctx, domain.ActivityTargetOrder, order.ID, "Order created",
		fmt.Sprintf("Order %s was created from quote %s", order.Number, quote.Number))

	return &domain.ConfirmQuoteResponse{
		Quote: mapper.ToQuoteDTO(quote),
		Order: mapper.ToOrderDTO(order),
	}, nil
}

// Reject closes a sent quote as declined
func (s *QuoteService) Reject(ctx context.Context, id uuid.UUID, req *domain.RejectQuoteRequest) (*domain.QuoteDTO, error) {
	quote, err := s.getQuote(ctx, s.quoteRepo, id)
	if err != nil {
		return nil, err
	}
	if err := quote.Reject(time.Now().UTC(), req.Reason); err != nil {
		return nil, err
	}
	stampUpdater(ctx, quote)

	if err := s.quoteRepo.Update(ctx, quote); err != nil {
		return nil, fmt.Errorf("failed to update quote: %w", err)
	}
	s.metrics.QuoteTransition(domain.QuoteStatusRejected)

	body := fmt.Sprintf("Quote %s was rejected", quote.Number)
	if quote.RejectionReason != "" {
		body += ": " + quote.RejectionReason
	}
	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID, "Quote rejected", body)

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// AddComment appends a comment in any status
func (s *QuoteService) AddComment(ctx context.Context, id uuid.UUID, req *domain.AddQuoteCommentRequest) (*domain.QuoteCommentDTO, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, domain.NewValidationError("text", "is required")
	}
	if _, err := s.getQuote(ctx, s.quoteRepo, id); err != nil {
		return nil, err
	}

	comment := &domain.QuoteComment{
		QuoteID:    id,
		Text:       text,
		IsInternal: req.IsInternal,
		AuthorName: auth.ActorName(ctx),
	}
	if err := s.quoteRepo.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}

	dto := mapper.ToQuoteCommentDTO(comment)
	return &dto, nil
}

// Duplicate copies any quote into a new draft with a fresh number. Line prices
// are copied as they are; the client snapshot is refreshed when the client still exists.
func (s *QuoteService) Duplicate(ctx context.Context, id uuid.UUID) (*domain.QuoteDTO, error) {
	source, err := s.getQuote(ctx, s.quoteRepo, id)
	if err != nil {
		return nil, err
	}

	client, err := s.clientRepo.GetByID(ctx, source.ClientID)
	if err != nil {
		client = &domain.Client{
			Name:  source.ClientName,
			Email: source.ClientEmail,
			Phone: source.ClientPhone,
			TaxID: source.ClientTaxID,
		}
		client.ID = source.ClientID
	}

	quote, err := domain.NewQuote("", client, source.LineItems(), source.TaxRate, source.Discount)
	if err != nil {
		return nil, err
	}
	quote.Notes = source.Notes
	quote.ValidUntil = s.defaultValidUntil(time.Now())
	stampCreator(ctx, quote)

	if err := s.insertNumbered(ctx, quote); err != nil {
		return nil, err
	}

	s.activities.Record(ctx, domain.ActivityTargetQuote, quote.ID, "Quote created",
		fmt.Sprintf("Quote %s was duplicated from %s", quote.Number, source.Number))

	dto := mapper.ToQuoteDTO(quote)
	return &dto, nil
}

// Activities returns the quote timeline
func (s *QuoteService) Activities(ctx context.Context, id uuid.UUID) ([]domain.ActivityDTO, error) {
	if _, err := s.getQuote(ctx, s.quoteRepo, id); err != nil {
		return nil, err
	}
	return s.activities.List(ctx, domain.ActivityTargetQuote, id)
}
