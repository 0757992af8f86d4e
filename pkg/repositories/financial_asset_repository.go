package repositories

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/shefa-net/steward-engine/pkg/apperrors"
	"github.com/shefa-net/steward-engine/pkg/database"
	"github.com/shefa-net/steward-engine/pkg/models"
)

// FinancialAssetRepository provides data access for financial assets.
// Income streams and obligations are stored as JSONB documents on the asset
// row, matching the whole-document read-modify-write shape of resources.
type FinancialAssetRepository interface {
	Create(ctx context.Context, asset *models.FinancialAsset) error

	// GetByID returns the asset, or (nil, nil) when it does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*models.FinancialAsset, error)

	// Update persists the asset with an optimistic version check.
	Update(ctx context.Context, asset *models.FinancialAsset) error

	ListBySteward(ctx context.Context, stewardID string) ([]*models.FinancialAsset, error)
}

type financialAssetRepository struct {
	db *database.DB
}

// NewFinancialAssetRepository creates a new FinancialAssetRepository.
func NewFinancialAssetRepository(db *database.DB) FinancialAssetRepository {
	return &financialAssetRepository{db: db}
}

var _ FinancialAssetRepository = (*financialAssetRepository)(nil)

const financialAssetColumns = `
	id, steward_id, asset_type, currency_code, name, account_balance,
	account_status, income_streams, obligations, version, created_at, updated_at`

func (r *financialAssetRepository) Create(ctx context.Context, asset *models.FinancialAsset) error {
	if asset.ID == uuid.Nil {
		asset.ID = uuid.New()
	}
	now := time.Now().UTC()
	asset.CreatedAt = now
	asset.UpdatedAt = now
	asset.Version = 1
	if asset.AccountStatus == "" {
		asset.AccountStatus = models.AccountStatusActive
	}

	streamsJSON, err := json.Marshal(asset.IncomeStreams)
	if err != nil {
		return fmt.Errorf("failed to marshal income streams: %w", err)
	}
	obligationsJSON, err := json.Marshal(asset.Obligations)
	if err != nil {
		return fmt.Errorf("failed to marshal obligations: %w", err)
	}

	query := `
		INSERT INTO financial_assets (
			id, steward_id, asset_type, currency_code, name, account_balance,
			account_status, income_streams, obligations, version, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

	_, err = r.db.Exec(ctx, query,
		asset.ID,
		asset.StewardID,
		asset.AssetType,
		asset.CurrencyCode,
		asset.Name,
		asset.AccountBalance,
		asset.AccountStatus,
		streamsJSON,
		obligationsJSON,
		asset.Version,
		asset.CreatedAt,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create financial asset: %w", err)
	}

	return nil
}

func (r *financialAssetRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.FinancialAsset, error) {
	query := `SELECT ` + financialAssetColumns + ` FROM financial_assets WHERE id = $1`

	asset, err := scanFinancialAsset(r.db.QueryRow(ctx, query, id))
	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get financial asset: %w", err)
	}
	return asset, nil
}

func (r *financialAssetRepository) Update(ctx context.Context, asset *models.FinancialAsset) error {
	streamsJSON, err := json.Marshal(asset.IncomeStreams)
	if err != nil {
		return fmt.Errorf("failed to marshal income streams: %w", err)
	}
	obligationsJSON, err := json.Marshal(asset.Obligations)
	if err != nil {
		return fmt.Errorf("failed to marshal obligations: %w", err)
	}

	asset.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE financial_assets SET
			asset_type = $3, currency_code = $4, name = $5, account_balance = $6,
			account_status = $7, income_streams = $8, obligations = $9,
			version = version + 1, updated_at = $10
		WHERE id = $1 AND version = $2`

	tag, err := r.db.Exec(ctx, query,
		asset.ID,
		asset.Version,
		asset.AssetType,
		asset.CurrencyCode,
		asset.Name,
		asset.AccountBalance,
		asset.AccountStatus,
		streamsJSON,
		obligationsJSON,
		asset.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update financial asset: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("financial asset %s: %w", asset.ID, &apperrors.VersionConflict{Entity: "financial_asset"})
	}

	asset.Version++
	return nil
}

func (r *financialAssetRepository) ListBySteward(ctx context.Context, stewardID string) ([]*models.FinancialAsset, error) {
	query := `SELECT ` + financialAssetColumns + `
		FROM financial_assets
		WHERE steward_id = $1
		ORDER BY created_at ASC`

	rows, err := r.db.Query(ctx, query, stewardID)
	if err != nil {
		return nil, fmt.Errorf("failed to list financial assets: %w", err)
	}
	defer rows.Close()

	var assets []*models.FinancialAsset
	for rows.Next() {
		asset, err := scanFinancialAsset(rows)
		if err != nil {
			return nil, err
		}
		assets = append(assets, asset)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating financial assets: %w", err)
	}

	return assets, nil
}

func scanFinancialAsset(row pgx.Row) (*models.FinancialAsset, error) {
	var asset models.FinancialAsset
	var streamsJSON, obligationsJSON []byte

	err := row.Scan(
		&asset.ID,
		&asset.StewardID,
		&asset.AssetType,
		&asset.CurrencyCode,
		&asset.Name,
		&asset.AccountBalance,
		&asset.AccountStatus,
		&streamsJSON,
		&obligationsJSON,
		&asset.Version,
		&asset.CreatedAt,
		&asset.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("failed to scan financial asset: %w", err)
	}

	if len(streamsJSON) > 0 && string(streamsJSON) != "null" {
		if err := json.Unmarshal(streamsJSON, &asset.IncomeStreams); err != nil {
			return nil, fmt.Errorf("failed to unmarshal income streams: %w", err)
		}
	}
	if len(obligationsJSON) > 0 && string(obligationsJSON) != "null" {
		if err := json.Unmarshal(obligationsJSON, &asset.Obligations); err != nil {
			return nil, fmt.Errorf("failed to unmarshal obligations: %w", err)
		}
	}

	return &asset, nil
}
