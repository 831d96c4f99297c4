package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/smartcycle/discounts/internal/domain/campaign"
	"github.com/smartcycle/discounts/internal/domain/condition"
	"github.com/smartcycle/discounts/internal/domain/discount"
)

const (
	campaignColumns = `id, name, status, priority, starts_at, ends_at, logic,
		discount_config, created_at, updated_at`

	insertCampaignSQL = `INSERT INTO campaigns
		(id, name, status, priority, starts_at, ends_at, logic, discount_config)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	insertConditionSQL = `INSERT INTO campaign_conditions
		(campaign_id, condition_type, operator, value, value2, mode, sort_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	selectConditionsSQL = `SELECT campaign_id, condition_type, operator, value, value2, mode
		FROM campaign_conditions WHERE campaign_id = ANY($1)
		ORDER BY campaign_id, sort_order`

	updateStatusSQL = `UPDATE campaigns SET status = $2, updated_at = NOW() WHERE id = $1`
)

var _ campaign.Repository = (*CampaignRepository)(nil)

// CampaignRepository implements campaign.Repository backed by PostgreSQL.
// The discount configuration is stored as the JSONB blob produced by
// discount.EncodeConfig; conditions live in child rows ordered by
// sort_order.
type CampaignRepository struct {
	pool *pgxpool.Pool
}

// NewCampaignRepository returns a CampaignRepository that uses the given pool.
func NewCampaignRepository(pool *pgxpool.Pool) *CampaignRepository {
	return &CampaignRepository{pool: pool}
}

// Create persists the campaign and its condition rows in one transaction.
func (r *CampaignRepository) Create(ctx context.Context, c *campaign.Campaign) error {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck // rollback after commit is a no-op

	_, err = tx.Exec(ctx, insertCampaignSQL,
		c.ID, c.Name, string(c.Status), c.Priority,
		c.StartsAt, c.EndsAt, string(c.Logic),
		discount.EncodeConfig(c.Discount),
	)
	if err != nil {
		return fmt.Errorf("inserting campaign %q: %w", c.ID, err)
	}

	for i, cond := range c.Conditions {
		op, value := condition.EncodeStored(cond.Operator, cond.Value)

		var value2 *string
		if cond.Value2 != "" {
			value2 = &cond.Value2
		}

		_, err = tx.Exec(ctx, insertConditionSQL,
			c.ID, string(cond.Property), op, value, value2, string(cond.Mode), i,
		)
		if err != nil {
			return fmt.Errorf("inserting condition %d for campaign %q: %w", i, c.ID, err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing campaign %q: %w", c.ID, err)
	}
	return nil
}

// GetByID loads a campaign with its ordered conditions.
func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*campaign.Campaign, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+campaignColumns+` FROM campaigns WHERE id = $1`, id)
	if err != nil {
		return nil, fmt.Errorf("getting campaign %q: %w", id, err)
	}

	c, err := pgx.CollectExactlyOneRow(rows, scanCampaign)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, campaign.ErrNotFound
		}
		return nil, fmt.Errorf("getting campaign %q: %w", id, err)
	}

	if err := r.attachConditions(ctx, []*campaign.Campaign{&c}); err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns every campaign with conditions attached.
func (r *CampaignRepository) List(ctx context.Context) ([]campaign.Campaign, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns ORDER BY priority DESC, created_at`)
	if err != nil {
		return nil, fmt.Errorf("listing campaigns: %w", err)
	}
	return r.collectWithConditions(ctx, rows)
}

// ListActive returns campaigns applicable at the given instant, highest
// priority first.
func (r *CampaignRepository) ListActive(ctx context.Context, at time.Time) ([]campaign.Campaign, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+campaignColumns+` FROM campaigns
		WHERE status = 'active'
		  AND (starts_at IS NULL OR starts_at <= $1)
		  AND (ends_at IS NULL OR ends_at >= $1)
		ORDER BY priority DESC, created_at`, at)
	if err != nil {
		return nil, fmt.Errorf("listing active campaigns: %w", err)
	}
	return r.collectWithConditions(ctx, rows)
}

// UpdateStatus transitions a campaign's lifecycle state.
func (r *CampaignRepository) UpdateStatus(ctx context.Context, id string, status campaign.Status) error {
	tag, err := r.pool.Exec(ctx, updateStatusSQL, id, string(status))
	if err != nil {
		return fmt.Errorf("updating status for campaign %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return campaign.ErrNotFound
	}
	return nil
}

func (r *CampaignRepository) collectWithConditions(ctx context.Context, rows pgx.Rows) ([]campaign.Campaign, error) {
	campaigns, err := pgx.CollectRows(rows, scanCampaign)
	if err != nil {
		return nil, fmt.Errorf("scanning campaigns: %w", err)
	}

	refs := make([]*campaign.Campaign, len(campaigns))
	for i := range campaigns {
		refs[i] = &campaigns[i]
	}
	if err := r.attachConditions(ctx, refs); err != nil {
		return nil, err
	}
	return campaigns, nil
}

// attachConditions loads the condition rows for the given campaigns in one
// query, decoding stored operator symbols (LIKE wildcard patterns included)
// back into engine operators.
func (r *CampaignRepository) attachConditions(ctx context.Context, campaigns []*campaign.Campaign) error {
	if len(campaigns) == 0 {
		return nil
	}

	ids := make([]string, len(campaigns))
	byID := make(map[string]*campaign.Campaign, len(campaigns))
	for i, c := range campaigns {
		ids[i] = c.ID
		byID[c.ID] = c
	}

	rows, err := r.pool.Query(ctx, selectConditionsSQL, ids)
	if err != nil {
		return fmt.Errorf("loading campaign conditions: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			campaignID string
			condType   string
			storedOp   string
			value      string
			value2     *string
			mode       string
		)
		if err := rows.Scan(&campaignID, &condType, &storedOp, &value, &value2, &mode); err != nil {
			return fmt.Errorf("scanning campaign condition: %w", err)
		}

		op, bare, err := condition.ParseStored(storedOp, value)
		if err != nil {
			return fmt.Errorf("decoding condition for campaign %q: %w", campaignID, err)
		}

		cond := condition.Condition{
			Property: condition.Property(condType),
			Operator: op,
			Value:    bare,
			Mode:     condition.Mode(mode),
		}
		if value2 != nil {
			cond.Value2 = *value2
		}

		if c, ok := byID[campaignID]; ok {
			c.Conditions = append(c.Conditions, cond)
		}
	}
	return rows.Err()
}

func scanCampaign(row pgx.CollectableRow) (campaign.Campaign, error) {
	var (
		c          campaign.Campaign
		status     string
		logic      string
		configJSON []byte
	)
	err := row.Scan(
		&c.ID, &c.Name, &status, &c.Priority,
		&c.StartsAt, &c.EndsAt, &logic,
		&configJSON, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return c, err
	}

	c.Status = campaign.Status(status)
	c.Logic = condition.Logic(logic)

	cfg, err := discount.DecodeConfig(configJSON)
	if err != nil {
		return c, fmt.Errorf("decoding discount config for campaign %q: %w", c.ID, err)
	}
	c.Discount = cfg
	return c, nil
}
