package repositories

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cottonwood-backend/internal/membership"
	"cottonwood-backend/internal/models"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrNotFound is returned when a lookup matches no row
var ErrNotFound = errors.New("record not found")

type MemberRepository struct {
	DB *pgxpool.Pool
}

func NewMemberRepository(db *pgxpool.Pool) *MemberRepository {
	return &MemberRepository{DB: db}
}

const memberColumns = `
	id, COALESCE(shopify_customer_id, ''), email, name, phone,
	join_date, last_renewal_date, renewal_override_date, has_override,
	has_quack_tag, tags, notes, last_order_number, created_at, updated_at
`

func scanMember(row pgx.Row) (*models.Member, error) {
	m := &models.Member{}
	var id uuid.UUID
	err := row.Scan(
		&id, &m.ShopifyCustomerID, &m.Email, &m.Name, &m.Phone,
		&m.JoinDate, &m.LastRenewalDate, &m.RenewalOverrideDate, &m.HasOverride,
		&m.HasQuackTag, &m.Tags, &m.Notes, &m.LastOrderNumber, &m.CreatedAt, &m.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	m.ID = id.String()
	return m, nil
}

// ListAll returns every member with its membership orders
func (r *MemberRepository) ListAll(ctx context.Context) ([]*models.Member, error) {
	rows, err := r.DB.Query(ctx, `SELECT `+memberColumns+` FROM members ORDER BY LOWER(name), id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	byID := make(map[string]*models.Member)
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
		byID[m.ID] = m
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	orderRows, err := r.DB.Query(ctx, `
		SELECT member_id, shopify_order_id, order_number, order_date, is_original_order
		FROM member_orders
		ORDER BY member_id, order_date, order_number
	`)
	if err != nil {
		return nil, err
	}
	defer orderRows.Close()

	for orderRows.Next() {
		var memberID uuid.UUID
		var o models.MemberOrder
		if err := orderRows.Scan(&memberID, &o.ShopifyOrderID, &o.OrderNumber, &o.OrderDate, &o.IsOriginalOrder); err != nil {
			return nil, err
		}
		if m, ok := byID[memberID.String()]; ok {
			m.Orders = append(m.Orders, o)
		}
	}
	return members, orderRows.Err()
}

// Get returns one member with its orders
func (r *MemberRepository) Get(ctx context.Context, id string) (*models.Member, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}
	m, err := scanMember(r.DB.QueryRow(ctx, `SELECT `+memberColumns+` FROM members WHERE id = $1`, uid))
	if err != nil {
		return nil, err
	}
	m.Orders, err = r.orders(ctx, r.DB, uid)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GetMany returns the members with the given ids; unknown ids are skipped
func (r *MemberRepository) GetMany(ctx context.Context, ids []string) ([]*models.Member, error) {
	uids := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if uid, err := uuid.Parse(id); err == nil {
			uids = append(uids, uid)
		}
	}
	if len(uids) == 0 {
		return nil, nil
	}

	rows, err := r.DB.Query(ctx, `SELECT `+memberColumns+` FROM members WHERE id = ANY($1)`, uids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var members []*models.Member
	for rows.Next() {
		m, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		members = append(members, m)
	}
	return members, rows.Err()
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *MemberRepository) orders(ctx context.Context, q querier, memberID uuid.UUID) ([]models.MemberOrder, error) {
	rows, err := q.Query(ctx, `
		SELECT shopify_order_id, order_number, order_date, is_original_order
		FROM member_orders
		WHERE member_id = $1
		ORDER BY order_date, order_number
	`, memberID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.MemberOrder
	for rows.Next() {
		var o models.MemberOrder
		if err := rows.Scan(&o.ShopifyOrderID, &o.OrderNumber, &o.OrderDate, &o.IsOriginalOrder); err != nil {
			return nil, err
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

// Update applies notes and override edits in a single statement so the
// override flag and date can never disagree.
func (r *MemberRepository) Update(ctx context.Context, id string, u models.MemberUpdate) (*models.Member, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	query := `
		UPDATE members SET
			notes = COALESCE($2, notes),
			renewal_override_date = CASE
				WHEN $3 THEN NULL
				WHEN $4::date IS NOT NULL THEN $4::date
				ELSE renewal_override_date END,
			has_override = CASE
				WHEN $3 THEN FALSE
				WHEN $4::date IS NOT NULL THEN TRUE
				ELSE has_override END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + memberColumns

	m, err := scanMember(r.DB.QueryRow(ctx, query, uid, u.Notes, u.ClearOverride, u.OverrideDate))
	if err != nil {
		return nil, err
	}
	m.Orders, err = r.orders(ctx, r.DB, uid)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// SetTag sets the enrollment flag and adds or removes tag from the tag list
func (r *MemberRepository) SetTag(ctx context.Context, id, tag string, tagged bool) (*models.Member, error) {
	uid, err := uuid.Parse(id)
	if err != nil {
		return nil, ErrNotFound
	}

	query := `
		UPDATE members SET
			has_quack_tag = $2,
			tags = CASE
				WHEN $2 AND NOT ($3 = ANY(tags)) THEN array_append(tags, $3)
				WHEN NOT $2 THEN array_remove(tags, $3)
				ELSE tags END,
			updated_at = NOW()
		WHERE id = $1
		RETURNING ` + memberColumns

	return scanMember(r.DB.QueryRow(ctx, query, uid, tagged, tag))
}

// matchMemberQuery finds the row a snapshot belongs to. A customer id match
// beats an email match; the comparison is NULL for rows without a customer id,
// so those must sort last or they would shadow the id match.
const matchMemberQuery = `
	SELECT id FROM members
	WHERE shopify_customer_id = $1 OR email = $2
	ORDER BY (shopify_customer_id = $1) DESC NULLS LAST
	LIMIT 1
	FOR UPDATE
`

// UpsertSnapshot creates or refreshes one member from sync data inside its own
// transaction. Notes and override columns are never written here.
func (r *MemberRepository) UpsertSnapshot(ctx context.Context, snap models.MemberSnapshot) (models.UpsertOutcome, error) {
	var out models.UpsertOutcome
	email := strings.ToLower(strings.TrimSpace(snap.Email))
	if email == "" {
		return out, fmt.Errorf("customer %s has no email", snap.ShopifyCustomerID)
	}

	tx, err := r.DB.Begin(ctx)
	if err != nil {
		return out, err
	}
	defer tx.Rollback(ctx)

	var uid uuid.UUID
	err = tx.QueryRow(ctx, matchMemberQuery, snap.ShopifyCustomerID, email).Scan(&uid)

	switch {
	case errors.Is(err, pgx.ErrNoRows):
		uid = uuid.New()
		out.Created = true
		_, err = tx.Exec(ctx, `
			INSERT INTO members (id, shopify_customer_id, email, name, phone, tags, has_quack_tag)
			VALUES ($1, NULLIF($2, ''), $3, $4, $5, $6, $7)
		`, uid, snap.ShopifyCustomerID, email, snap.Name, snap.Phone, nonNil(snap.Tags), snap.HasQuackTag)
		if err != nil {
			return out, fmt.Errorf("insert member %s: %w", email, err)
		}
	case err != nil:
		return out, err
	}
	out.MemberID = uid.String()

	existing, err := r.orders(ctx, tx, uid)
	if err != nil {
		return out, err
	}
	orders, join, lastRenewal := membership.NormalizeOrders(membership.MergeOrders(existing, snap.Orders))

	for _, o := range orders {
		_, err = tx.Exec(ctx, `
			INSERT INTO member_orders (member_id, shopify_order_id, order_number, order_date, is_original_order)
			VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (member_id, shopify_order_id)
			DO UPDATE SET order_number = $3, order_date = $4, is_original_order = $5
		`, uid, o.ShopifyOrderID, o.OrderNumber, o.OrderDate, o.IsOriginalOrder)
		if err != nil {
			return out, fmt.Errorf("upsert order %s: %w", o.OrderNumber, err)
		}
	}

	_, err = tx.Exec(ctx, `
		UPDATE members SET
			shopify_customer_id = COALESCE(NULLIF($2, ''), shopify_customer_id),
			email = CASE
				WHEN EXISTS (SELECT 1 FROM members o WHERE o.email = $3 AND o.id <> $1) THEN email
				ELSE $3 END,
			name = $4,
			phone = $5,
			tags = $6,
			has_quack_tag = $7,
			join_date = $8,
			last_renewal_date = $9,
			last_order_number = $10,
			updated_at = NOW()
		WHERE id = $1
	`, uid, snap.ShopifyCustomerID, email, snap.Name, snap.Phone, nonNil(snap.Tags), snap.HasQuackTag,
		join, lastRenewal, membership.LastOrderNumber(orders))
	if err != nil {
		return out, fmt.Errorf("update member %s: %w", email, err)
	}

	return out, tx.Commit(ctx)
}

// DemoteMissing clears the enrollment flag on tagged members whose customer id
// is not in keep. Records are retained.
func (r *MemberRepository) DemoteMissing(ctx context.Context, tag string, keep []string) (int, error) {
	tag = strings.TrimSpace(tag)
	result, err := r.DB.Exec(ctx, `
		UPDATE members SET
			has_quack_tag = FALSE,
			tags = array_remove(tags, $2),
			updated_at = NOW()
		WHERE has_quack_tag
		  AND (shopify_customer_id IS NULL OR NOT (shopify_customer_id = ANY($1)))
	`, nonNil(keep), tag)
	if err != nil {
		return 0, err
	}
	return int(result.RowsAffected()), nil
}

// TagCounts aggregates tag usage across stored members, most used first
func (r *MemberRepository) TagCounts(ctx context.Context) ([]models.TagCount, error) {
	rows, err := r.DB.Query(ctx, `
		SELECT tag, COUNT(*)
		FROM members, unnest(tags) AS tag
		GROUP BY tag
		ORDER BY COUNT(*) DESC, tag
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := []models.TagCount{}
	for rows.Next() {
		var tc models.TagCount
		if err := rows.Scan(&tc.Name, &tc.Count); err != nil {
			return nil, err
		}
		counts = append(counts, tc)
	}
	return counts, rows.Err()
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
