package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	orderdomain "returns-portal/internal/features/orders/domain"
	orderports "returns-portal/internal/features/orders/ports"
	"returns-portal/internal/features/returns/domain"
	"returns-portal/internal/features/returns/ports"
	settingsdomain "returns-portal/internal/features/settings/domain"

	"returns-portal/internal/core/logger"

	"go.uber.org/zap"
)

// ErrOrderNotFound is returned when the batch references an unknown order.
var ErrOrderNotFound = errors.New("order not found")

// ErrManualReviewRequired is returned when the fraud assessment flags the
// submission and the tenant does not auto-approve high-risk returns.
var ErrManualReviewRequired = errors.New("submission requires manual review")

// fraudReviewTag marks flagged orders in the commerce platform.
const fraudReviewTag = "fraud-review"

// returnReason sent to the platform for customer-initiated portal returns.
const returnReason = "customer_return"

// SubmissionService drives batch return/exchange submissions: it validates
// the batch, scores it for fraud, runs the per-item platform workflows and
// records an audit trail.
type SubmissionService struct {
	provider orderports.OrderProvider
	platform ports.ReturnPlatform
	repo     ports.ReturnRepository
	scorer   *FraudScorer
	// now is replaceable for tests.
	now func() time.Time
}

// NewSubmissionService creates a new SubmissionService.
func NewSubmissionService(provider orderports.OrderProvider, platform ports.ReturnPlatform, repo ports.ReturnRepository, scorer *FraudScorer) *SubmissionService {
	return &SubmissionService{
		provider: provider,
		platform: platform,
		repo:     repo,
		scorer:   scorer,
		now:      time.Now,
	}
}

// Submit processes a batch of return/exchange items for one order.
//
// Gate failures (validation, order fetch, fraud block) abort the whole batch
// before any platform mutation. Once item processing starts, failures are
// isolated per item: each item's workflow either completes or records an
// error, and siblings are unaffected.
func (s *SubmissionService) Submit(ctx context.Context, tenantID string, settings *settingsdomain.TenantSettings, items []domain.SubmissionItem) (*domain.SubmissionResult, error) {
	if err := domain.ValidateBatch(items); err != nil {
		return nil, err
	}

	orderID := items[0].OrderID

	order, err := s.provider.GetOrder(ctx, orderID)
	if err != nil {
		if errors.Is(err, orderports.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("failed to fetch order: %w", err)
	}
	if order == nil {
		return nil, ErrOrderNotFound
	}

	// Dedup before any mutation: a repeated line item id is processed only
	// on its first occurrence.
	deduped := domain.Deduplicate(items)

	fraud := s.scorer.Assess(ctx, tenantID, order, deduped, settings)

	if fraud.IsHighRisk {
		// Flag the order for review regardless of whether the submission is
		// ultimately blocked. A tagging failure is logged, not fatal.
		if err := s.flagOrder(ctx, order); err != nil {
			logger.Get().Warn("Failed to flag high-risk order",
				zap.String("order_id", order.ID),
				zap.Error(err),
			)
		}

		if !settings.FraudPrevention.AutoApproveHighRisk {
			s.persistAudit(ctx, tenantID, order, deduped, fraud, domain.StatusManualReview)
			return nil, ErrManualReviewRequired
		}
	}

	result := &domain.SubmissionResult{
		OrderID: order.ID,
		Fraud:   fraud,
	}

	for _, item := range deduped {
		result.Items = append(result.Items, s.processItem(ctx, order, settings, item))
	}

	if result.AllSucceeded() {
		result.Status = domain.StatusCompleted
	} else {
		result.Status = domain.StatusPartial
	}

	s.persistAudit(ctx, tenantID, order, deduped, fraud, result.Status)

	return result, nil
}

// GetReturnRequest returns one audit record for the tenant, or nil.
func (s *SubmissionService) GetReturnRequest(ctx context.Context, tenantID, id string) (*domain.ReturnRequest, error) {
	return s.repo.Get(ctx, tenantID, id)
}

// ListReturnRequests returns the tenant's audit records, newest first.
func (s *SubmissionService) ListReturnRequests(ctx context.Context, tenantID string) ([]*domain.ReturnRequest, error) {
	return s.repo.ListByTenant(ctx, tenantID)
}

// processItem runs one item's workflow. Any failure is captured in the
// result; it never propagates to sibling items.
func (s *SubmissionService) processItem(ctx context.Context, order *orderdomain.Order, settings *settingsdomain.TenantSettings, item domain.SubmissionItem) domain.ItemResult {
	result := domain.ItemResult{
		LineItemID: item.LineItemID,
		Option:     item.Option,
	}

	if item.Option == domain.OptionExchange && !settings.AllowExchanges {
		result.Error = "exchanges are disabled for this store"
		return result
	}

	returnID, err := s.processReturn(ctx, order, item)
	if err != nil {
		result.Error = fmt.Sprintf("item %s: %v", item.LineItemID, err)
		return result
	}
	result.ReturnID = returnID

	if item.Option == domain.OptionExchange {
		exchangeOrderID, err := s.processExchange(ctx, order, item)
		if err != nil {
			result.Error = fmt.Sprintf("item %s: %v", item.LineItemID, err)
			return result
		}
		result.ExchangeOrderID = exchangeOrderID
	}

	result.Success = true
	return result
}

// processReturn runs the return call sequence: locate the fulfillment line
// item handle, request the return, approve it.
func (s *SubmissionService) processReturn(ctx context.Context, order *orderdomain.Order, item domain.SubmissionItem) (string, error) {
	fli := order.FulfillmentLineItemFor(item.LineItemID)
	if fli == nil {
		return "", errors.New("fulfillment line item not found")
	}

	returnID, err := s.platform.RequestReturn(ctx, order.ID, fli.ID, item.Quantity, returnReason)
	if err != nil {
		return "", fmt.Errorf("failed to request return: %w", err)
	}
	if returnID == "" {
		// Approving an empty identifier would silently no-op on the
		// platform side; treat it as a hard failure instead.
		return "", errors.New("platform returned no return id")
	}

	if err := s.platform.ApproveReturn(ctx, returnID); err != nil {
		return "", fmt.Errorf("failed to approve return: %w", err)
	}

	return returnID, nil
}

// processExchange creates and completes the replacement order, then writes a
// back-reference onto the original order's note.
func (s *SubmissionService) processExchange(ctx context.Context, order *orderdomain.Order, item domain.SubmissionItem) (string, error) {
	draftOrderID, err := s.platform.CreateExchangeOrder(ctx, item.ExchangeVariantID, item.Quantity)
	if err != nil {
		return "", fmt.Errorf("failed to create exchange order: %w", err)
	}

	exchangeOrderID, err := s.platform.CompleteExchangeOrder(ctx, draftOrderID)
	if err != nil {
		return "", fmt.Errorf("failed to complete exchange order: %w", err)
	}

	annotation := fmt.Sprintf("Exchange order %s created for line item %s", exchangeOrderID, item.LineItemID)
	note := strings.TrimSpace(order.Note + "\n" + annotation)
	if err := s.platform.AnnotateOrder(ctx, order.ID, note); err != nil {
		return "", fmt.Errorf("failed to annotate original order: %w", err)
	}
	order.Note = note

	return exchangeOrderID, nil
}

// flagOrder adds the fraud review tag to the order in the commerce platform.
func (s *SubmissionService) flagOrder(ctx context.Context, order *orderdomain.Order) error {
	if order.HasTag(fraudReviewTag) {
		return nil
	}
	tags := append(append([]string{}, order.Tags...), fraudReviewTag)
	return s.platform.UpdateOrderTags(ctx, order.ID, tags)
}

// persistAudit stores the submission outcome. Audit storage failures are
// logged but never fail the submission itself.
func (s *SubmissionService) persistAudit(ctx context.Context, tenantID string, order *orderdomain.Order, items []domain.SubmissionItem, fraud domain.FraudAssessment, status domain.SubmissionStatus) {
	request := domain.NewReturnRequest(tenantID, order.ID, order.Email, items, fraud, status, s.now())
	if err := s.repo.Save(ctx, request); err != nil {
		logger.Get().Warn("Failed to persist return request audit record",
			zap.String("tenant_id", tenantID),
			zap.String("order_id", order.ID),
			zap.Error(err),
		)
	}
}
