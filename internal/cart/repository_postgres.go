package cart

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/product"
)

type PostgresRepository struct {
	db  *sql.DB
	log logrus.FieldLogger
}

const (
	insertCartQuery = `INSERT INTO carts DEFAULT VALUES RETURNING id`
	getCartQuery    = `SELECT id FROM carts WHERE id = $1`
	lockCartQuery   = `SELECT id FROM carts WHERE id = $1 FOR UPDATE`
	getItemsQuery   = `
		SELECT ci.id, ci.quantity, p.id, p.title, p.price
		FROM cart_items ci
		JOIN products p ON p.id = ci.product_id
		WHERE ci.cart_id = $1
		ORDER BY ci.id
	`
	deleteStaleItemsQuery = `
		DELETE FROM cart_items
		WHERE cart_id = $1 AND NOT (id = ANY($2::int[]))
	`
	insertItemQuery = `
		INSERT INTO cart_items (cart_id, product_id, quantity)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	updateItemQuery = `
		UPDATE cart_items
		SET quantity = $1
		WHERE id = $2 AND cart_id = $3
	`
)

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func NewPostgresRepository(db *sql.DB, log logrus.FieldLogger) *PostgresRepository {
	return &PostgresRepository{db: db, log: log}
}

func (r *PostgresRepository) Create(ctx context.Context) (*Cart, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, insertCartQuery).Scan(&id); err != nil {
		return nil, fmt.Errorf("insert cart: %w", err)
	}
	r.log.WithField("cart_id", id).Info("cart created")
	return Restore(id, nil), nil
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (*Cart, error) {
	return load(ctx, r.db, getCartQuery, id)
}

// Mutate locks the cart row for the length of the transaction, so concurrent
// mutations of one cart run one after another.
func (r *PostgresRepository) Mutate(ctx context.Context, id int, fn func(*Cart) error) (*Cart, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin cart tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	c, err := load(ctx, tx, lockCartQuery, id)
	if err != nil {
		return nil, err
	}
	if err := fn(c); err != nil {
		return nil, err
	}
	if err := saveItems(ctx, tx, c); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit cart %d: %w", id, err)
	}
	return c, nil
}

func load(ctx context.Context, q queryer, cartQuery string, id int) (*Cart, error) {
	var cartID int
	if err := q.QueryRowContext(ctx, cartQuery, id).Scan(&cartID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("find cart %d: %w", id, err)
	}

	rows, err := q.QueryContext(ctx, getItemsQuery, cartID)
	if err != nil {
		return nil, fmt.Errorf("load cart %d items: %w", cartID, err)
	}
	defer rows.Close()

	items := []*CartItem{}
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan cart item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("load cart %d items: %w", cartID, err)
	}
	return Restore(cartID, items), nil
}

func saveItems(ctx context.Context, tx *sql.Tx, c *Cart) error {
	items := c.Items()
	keep := make([]int64, 0, len(items))
	for _, item := range items {
		if item.ID != 0 {
			keep = append(keep, int64(item.ID))
		}
	}
	if _, err := tx.ExecContext(ctx, deleteStaleItemsQuery, c.ID, pq.Array(keep)); err != nil {
		return fmt.Errorf("prune cart %d items: %w", c.ID, err)
	}

	for _, item := range items {
		if item.Product == nil {
			return ErrMissingProduct
		}
		if item.ID == 0 {
			if err := tx.QueryRowContext(ctx, insertItemQuery, c.ID, item.Product.ID, item.Quantity).Scan(&item.ID); err != nil {
				return fmt.Errorf("insert cart item: %w", err)
			}
			continue
		}
		if _, err := tx.ExecContext(ctx, updateItemQuery, item.Quantity, item.ID, c.ID); err != nil {
			return fmt.Errorf("update cart item %d: %w", item.ID, err)
		}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanItem(scanner rowScanner) (*CartItem, error) {
	item := &CartItem{}
	p := product.Product{}
	if err := scanner.Scan(&item.ID, &item.Quantity, &p.ID, &p.Title, &p.Price); err != nil {
		return nil, err
	}
	item.Product = &p
	return item, nil
}
