package sync

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/opsdash/backend/internal/domain/bms"
	"github.com/opsdash/backend/internal/domain/purchasing"
	"github.com/opsdash/backend/internal/domain/shared"
	"github.com/opsdash/backend/internal/infrastructure/persistence"
	"github.com/opsdash/backend/internal/infrastructure/telemetry"
)

// SupplierSyncResult summarizes one supplier reconciliation run
type SupplierSyncResult struct {
	Fetched int
	Created int
	Updated int
	Linked  int
}

// SupplierSyncService mirrors the platform's supplier directory into the
// local one. Suppliers are matched by external id first, then by code so a
// locally created supplier gets linked instead of duplicated.
type SupplierSyncService struct {
	db      *persistence.Database
	gateway bms.Gateway
	logger  *zap.Logger
	metrics *telemetry.BusinessMetrics
}

// NewSupplierSyncService creates a new SupplierSyncService
func NewSupplierSyncService(db *persistence.Database, gateway bms.Gateway, logger *zap.Logger) *SupplierSyncService {
	return &SupplierSyncService{
		db:      db,
		gateway: gateway,
		logger:  logger.Named("supplier-sync"),
	}
}

// SetBusinessMetrics sets the business metrics collector
func (s *SupplierSyncService) SetBusinessMetrics(bm *telemetry.BusinessMetrics) {
	s.metrics = bm
}

// SyncSuppliers runs one reconciliation pass, discarding the counters
func (s *SupplierSyncService) SyncSuppliers(ctx context.Context) error {
	_, err := s.Run(ctx)
	return err
}

// Run fetches the supplier directory and upserts every entry. Supplier
// records carry no timestamps upstream, so every run processes the full
// list and the watermark only records when the directory was last mirrored.
func (s *SupplierSyncService) Run(ctx context.Context) (*SupplierSyncResult, error) {
	start := time.Now()

	externalSuppliers, err := s.gateway.ListSuppliers(ctx)
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	result := &SupplierSyncResult{Fetched: len(externalSuppliers)}

	err = s.db.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		suppliers := persistence.NewGormSupplierRepository(tx)
		syncState := persistence.NewGormSyncStateRepository(tx)

		for _, external := range externalSuppliers {
			outcome, err := s.reconcileSupplier(ctx, suppliers, external)
			if err != nil {
				return err
			}
			switch outcome {
			case outcomeCreated:
				result.Created++
			case outcomeUpdated:
				result.Updated++
			case outcomeLinked:
				result.Linked++
			}
		}

		return syncState.Set(ctx, purchasing.SyncKeySuppliers, time.Now().UTC())
	})
	if err != nil {
		s.recordRun(ctx, start, true)
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeSuppliers, telemetry.SyncOutcomeCreated, result.Created)
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeSuppliers, telemetry.SyncOutcomeUpdated, result.Updated)
		s.metrics.RecordSyncRecords(ctx, telemetry.SyncTypeSuppliers, telemetry.SyncOutcomeLinked, result.Linked)
	}
	s.recordRun(ctx, start, false)

	s.logger.Info("supplier sync finished",
		zap.Int("fetched", result.Fetched),
		zap.Int("created", result.Created),
		zap.Int("updated", result.Updated),
		zap.Int("linked", result.Linked))

	return result, nil
}

func (s *SupplierSyncService) recordRun(ctx context.Context, start time.Time, failed bool) {
	if s.metrics == nil {
		return
	}
	s.metrics.RecordSyncRun(ctx, telemetry.SyncTypeSuppliers, time.Since(start), failed)
}

const outcomeLinked reconcileOutcome = outcomeSkipped + 1

func (s *SupplierSyncService) reconcileSupplier(ctx context.Context, suppliers purchasing.SupplierRepository, external bms.Supplier) (reconcileOutcome, error) {
	existing, err := suppliers.FindByExternalID(ctx, external.ID)
	switch {
	case err == nil:
		existing.Name = external.Name
		existing.UpdateContact(existing.ContactName, external.Phone, external.Email)
		if err := suppliers.Save(ctx, existing); err != nil {
			return 0, err
		}
		return outcomeUpdated, nil
	case errors.Is(err, shared.ErrNotFound):
	default:
		return 0, err
	}

	// Not linked yet. A supplier with the same code was created locally
	// before the platform knew it; link rather than duplicate. Codes are
	// stored uppercased.
	if external.Code != "" {
		byCode, err := suppliers.FindByCode(ctx, strings.ToUpper(external.Code))
		switch {
		case err == nil:
			byCode.LinkExternal(external.ID)
			byCode.Name = external.Name
			byCode.UpdateContact(byCode.ContactName, external.Phone, external.Email)
			if err := suppliers.Save(ctx, byCode); err != nil {
				return 0, err
			}
			return outcomeLinked, nil
		case errors.Is(err, shared.ErrNotFound):
		default:
			return 0, err
		}
	}

	code := external.Code
	if code == "" {
		code = external.ID
	}
	supplier, err := purchasing.NewSupplier(code, external.Name)
	if err != nil {
		return 0, err
	}
	supplier.LinkExternal(external.ID)
	supplier.UpdateContact("", external.Phone, external.Email)
	if err := suppliers.Save(ctx, supplier); err != nil {
		return 0, err
	}
	return outcomeCreated, nil
}
