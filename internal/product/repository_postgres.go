package product

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/wichananm65/catalog-cart-backend/internal/database"
)

type PostgresRepository struct {
	db  *sql.DB
	log logrus.FieldLogger
}

const (
	getProductByIDQuery = `
		SELECT id, title, price
		FROM products
		WHERE id = $1
	`
	getProductByTitleQuery = `
		SELECT id, title, price
		FROM products
		WHERE title = $1
	`
	countProductsQuery = `SELECT COUNT(*) FROM products`
	listProductsQuery  = `
		SELECT id, title, price
		FROM products
		ORDER BY id
		LIMIT $1 OFFSET $2
	`
	insertProductQuery = `
		INSERT INTO products (title, price)
		VALUES ($1, $2)
		RETURNING id
	`
	updateProductQuery = `
		UPDATE products
		SET title = $1,
			price = $2
		WHERE id = $3
	`
	deleteProductQuery = `DELETE FROM products WHERE id = $1`
)

func NewPostgresRepository(db *sql.DB, log logrus.FieldLogger) *PostgresRepository {
	return &PostgresRepository{db: db, log: log}
}

func (r *PostgresRepository) FindByID(ctx context.Context, id int) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByIDQuery, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("find product %d: %w", id, err)
	}
	return p, nil
}

func (r *PostgresRepository) FindOneByTitle(ctx context.Context, title string) (Product, error) {
	p, err := scanProduct(r.db.QueryRowContext(ctx, getProductByTitleQuery, title))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Product{}, ErrNotFound
		}
		return Product{}, fmt.Errorf("find product by title: %w", err)
	}
	return p, nil
}

func (r *PostgresRepository) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, countProductsQuery).Scan(&n); err != nil {
		return 0, fmt.Errorf("count products: %w", err)
	}
	return n, nil
}

func (r *PostgresRepository) List(ctx context.Context, limit, offset int) ([]Product, error) {
	rows, err := r.db.QueryContext(ctx, listProductsQuery, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	defer rows.Close()

	out := make([]Product, 0, limit)
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return out, nil
}

func (r *PostgresRepository) Create(ctx context.Context, p Product) (Product, error) {
	var id int
	if err := r.db.QueryRowContext(ctx, insertProductQuery, p.Title, p.Price).Scan(&id); err != nil {
		if database.IsUniqueViolation(err) {
			r.log.Warnf("product title %q already exists", p.Title)
			return Product{}, ErrTitleTaken
		}
		return Product{}, fmt.Errorf("insert product: %w", err)
	}
	p.ID = id
	r.log.WithField("product_id", id).Info("product created")
	return p, nil
}

func (r *PostgresRepository) Update(ctx context.Context, p Product) (Product, error) {
	result, err := r.db.ExecContext(ctx, updateProductQuery, p.Title, p.Price, p.ID)
	if err != nil {
		if database.IsUniqueViolation(err) {
			return Product{}, ErrTitleTaken
		}
		return Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return Product{}, fmt.Errorf("update product %d: %w", p.ID, err)
	}
	if affected == 0 {
		return Product{}, ErrNotFound
	}
	return p, nil
}

func (r *PostgresRepository) Delete(ctx context.Context, id int) error {
	result, err := r.db.ExecContext(ctx, deleteProductQuery, id)
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete product %d: %w", id, err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	r.log.WithField("product_id", id).Info("product deleted")
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(scanner rowScanner) (Product, error) {
	p := Product{}
	if err := scanner.Scan(&p.ID, &p.Title, &p.Price); err != nil {
		return Product{}, err
	}
	return p, nil
}
