package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"items-api/internal/domain"

	"github.com/jackc/pgx/v5"
)

const itemColumns = "id, name, description, price, category, stock, created_at, updated_at"

// patchColumns maps patch field names onto table columns
var patchColumns = map[string]string{
	domain.FieldName:        "name",
	domain.FieldDescription: "description",
	domain.FieldPrice:       "price",
	domain.FieldCategory:    "category",
	domain.FieldStock:       "stock",
}

type postgresItemRepository struct {
	db    *sql.DB
	table string
}

// NewPostgresItemRepository creates an ItemRepository backed by a Postgres table
func NewPostgresItemRepository(db *sql.DB, table string) ItemRepository {
	return &postgresItemRepository{
		db:    db,
		table: pgx.Identifier{table}.Sanitize(),
	}
}

// Put inserts the item or replaces every column of an existing row
func (r *postgresItemRepository) Put(ctx context.Context, item *domain.Item) error {
	query := fmt.Sprintf(`
		INSERT INTO %s (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			price = EXCLUDED.price,
			category = EXCLUDED.category,
			stock = EXCLUDED.stock,
			created_at = EXCLUDED.created_at,
			updated_at = EXCLUDED.updated_at
	`, r.table, itemColumns)

	_, err := r.db.ExecContext(
		ctx,
		query,
		item.ID,
		item.Name,
		nullableString(item.Description),
		item.Price,
		nullableCategory(item.Category),
		nullableInt(item.Stock),
		item.CreatedAt,
		item.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put item: %w", err)
	}

	return nil
}

func (r *postgresItemRepository) Get(ctx context.Context, id string) (*domain.Item, error) {
	query := fmt.Sprintf(`SELECT %s FROM %s WHERE id = $1`, itemColumns, r.table)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get item: %w", err)
	}

	return item, nil
}

// Scan pages through the table by primary key, starting after the cursor
func (r *postgresItemRepository) Scan(ctx context.Context, limit int, cursor *Cursor) (*ScanResult, error) {
	var (
		rows *sql.Rows
		err  error
	)

	// One extra row tells whether another page follows
	if cursor != nil && cursor.ID != "" {
		query := fmt.Sprintf(`SELECT %s FROM %s WHERE id > $1 ORDER BY id LIMIT $2`, itemColumns, r.table)
		rows, err = r.db.QueryContext(ctx, query, cursor.ID, limit+1)
	} else {
		query := fmt.Sprintf(`SELECT %s FROM %s ORDER BY id LIMIT $1`, itemColumns, r.table)
		rows, err = r.db.QueryContext(ctx, query, limit+1)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan items: %w", err)
	}
	defer rows.Close()

	items := []*domain.Item{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating items: %w", err)
	}

	result := &ScanResult{Items: items}
	if len(items) > limit {
		result.Items = items[:limit]
		result.Next = &Cursor{ID: result.Items[limit-1].ID}
	}
	result.Count = len(result.Items)

	return result, nil
}

// Update builds a SET clause from the present patch fields
func (r *postgresItemRepository) Update(ctx context.Context, id string, patch domain.ItemPatch, updatedAt time.Time) (*domain.Item, error) {
	fields := patch.Fields()
	sets := make([]string, 0, len(fields)+1)
	args := make([]interface{}, 0, len(fields)+2)
	args = append(args, id)

	for _, f := range fields {
		column, ok := patchColumns[f.Name]
		if !ok {
			return nil, fmt.Errorf("failed to update item: unknown field %q", f.Name)
		}
		args = append(args, columnValue(f.Value))
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	args = append(args, updatedAt)
	sets = append(sets, fmt.Sprintf("updated_at = $%d", len(args)))

	query := fmt.Sprintf(`UPDATE %s SET %s WHERE id = $1 RETURNING %s`,
		r.table, strings.Join(sets, ", "), itemColumns)

	item, err := scanItem(r.db.QueryRowContext(ctx, query, args...))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrItemNotFound
		}
		return nil, fmt.Errorf("failed to update item: %w", err)
	}

	return item, nil
}

func (r *postgresItemRepository) Delete(ctx context.Context, id string) error {
	query := fmt.Sprintf(`DELETE FROM %s WHERE id = $1`, r.table)

	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	return nil
}

func (r *postgresItemRepository) Exists(ctx context.Context, id string) (bool, error) {
	return exists(ctx, r, id)
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanItem(row rowScanner) (*domain.Item, error) {
	var (
		item        domain.Item
		description sql.NullString
		category    sql.NullString
		stock       sql.NullInt64
	)

	err := row.Scan(
		&item.ID,
		&item.Name,
		&description,
		&item.Price,
		&category,
		&stock,
		&item.CreatedAt,
		&item.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if description.Valid {
		item.Description = &description.String
	}
	if category.Valid {
		c := domain.Category(category.String)
		item.Category = &c
	}
	if stock.Valid {
		s := int(stock.Int64)
		item.Stock = &s
	}
	item.CreatedAt = item.CreatedAt.UTC()
	item.UpdatedAt = item.UpdatedAt.UTC()

	return &item, nil
}

func columnValue(v any) any {
	if c, ok := v.(domain.Category); ok {
		return string(c)
	}
	return v
}

func nullableString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullableCategory(c *domain.Category) sql.NullString {
	if c == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: string(*c), Valid: true}
}

func nullableInt(i *int) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*i), Valid: true}
}
