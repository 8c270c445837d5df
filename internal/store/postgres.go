package store

import (
	"context"
	"fmt"
	"time"

	"github.com/Syed-Shayan-ALi33/company-plus/internal/db"
)

// PostgresStore keeps the document in four tables but preserves the Store
// contract: Load reads the whole document, Save rewrites it inside one
// transaction. List ordering survives through an explicit position column.
type PostgresStore struct {
	db db.DB
}

func NewPostgresStore(database db.DB) *PostgresStore {
	return &PostgresStore{db: database}
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
    username TEXT PRIMARY KEY,
    password TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS sessions (
    token TEXT PRIMARY KEY,
    username TEXT NOT NULL,
    created_at TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS orders (
    position INT NOT NULL,
    id TEXT PRIMARY KEY,
    customer TEXT NOT NULL,
    phone TEXT NOT NULL DEFAULT '',
    product TEXT NOT NULL DEFAULT '',
    amount NUMERIC NOT NULL,
    status TEXT NOT NULL,
    date_label TEXT NOT NULL,
    visibility TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS chart_data (
    position INT NOT NULL,
    name TEXT PRIMARY KEY,
    conversations INT NOT NULL,
    sales DOUBLE PRECISION NOT NULL
);`

// EnsureSchema creates the tables and seeds the document if empty.
func (p *PostgresStore) EnsureSchema(ctx context.Context) error {
	if _, err := p.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	var count int
	if err := p.db.ExecQueryRow(ctx, "SELECT COUNT(*) FROM chart_data").Scan(&count); err != nil {
		return fmt.Errorf("failed to check seed state: %w", err)
	}
	if count == 0 {
		return p.Save(ctx, Seed())
	}
	return nil
}

type orderRow struct {
	Position   int     `db:"position"`
	ID         string  `db:"id"`
	Customer   string  `db:"customer"`
	Phone      string  `db:"phone"`
	Product    string  `db:"product"`
	Amount     float64 `db:"amount"`
	Status     string  `db:"status"`
	DateLabel  string  `db:"date_label"`
	Visibility string  `db:"visibility"`
}

type chartRow struct {
	Position      int     `db:"position"`
	Name          string  `db:"name"`
	Conversations int     `db:"conversations"`
	Sales         float64 `db:"sales"`
}

func (p *PostgresStore) Load(ctx context.Context) (*Document, error) {
	doc := &Document{
		Users:    []User{},
		Sessions: []Session{},
		Orders:   []Order{},
	}

	if err := p.db.Select(ctx, &doc.Users, "SELECT username, password FROM users"); err != nil {
		return nil, fmt.Errorf("failed to load users: %w", err)
	}

	type sessionRow struct {
		Token     string    `db:"token"`
		Username  string    `db:"username"`
		CreatedAt time.Time `db:"created_at"`
	}

	var sessRows []sessionRow
	if err := p.db.Select(ctx, &sessRows, "SELECT token, username, created_at FROM sessions"); err != nil {
		return nil, fmt.Errorf("failed to load sessions: %w", err)
	}
	for _, r := range sessRows {
		doc.Sessions = append(doc.Sessions, Session{Token: r.Token, Username: r.Username, CreatedAt: r.CreatedAt})
	}

	var orderRows []orderRow
	if err := p.db.Select(ctx, &orderRows, "SELECT position, id, customer, phone, product, amount, status, date_label, visibility FROM orders ORDER BY position"); err != nil {
		return nil, fmt.Errorf("failed to load orders: %w", err)
	}
	for _, r := range orderRows {
		doc.Orders = append(doc.Orders, Order{
			ID:         r.ID,
			Customer:   r.Customer,
			Phone:      r.Phone,
			Product:    r.Product,
			Amount:     r.Amount,
			Status:     OrderStatus(r.Status),
			Date:       r.DateLabel,
			Visibility: Visibility(r.Visibility),
		})
	}

	var chartRows []chartRow
	if err := p.db.Select(ctx, &chartRows, "SELECT position, name, conversations, sales FROM chart_data ORDER BY position"); err != nil {
		return nil, fmt.Errorf("failed to load chart data: %w", err)
	}
	for _, r := range chartRows {
		doc.ChartData = append(doc.ChartData, ChartPoint{Name: r.Name, Conversations: r.Conversations, Sales: r.Sales})
	}

	return doc, nil
}

func (p *PostgresStore) Save(ctx context.Context, doc *Document) error {
	tx, err := p.db.BeginTx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin save transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback(context.Background())
	}()

	for _, table := range []string{"users", "sessions", "orders", "chart_data"} {
		if _, err := tx.Exec(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	for _, u := range doc.Users {
		if _, err := tx.Exec(ctx, "INSERT INTO users (username, password) VALUES ($1, $2)", u.Username, u.Password); err != nil {
			return fmt.Errorf("failed to save user: %w", err)
		}
	}
	for _, s := range doc.Sessions {
		if _, err := tx.Exec(ctx, "INSERT INTO sessions (token, username, created_at) VALUES ($1, $2, $3)", s.Token, s.Username, s.CreatedAt); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}
	}
	for i, o := range doc.Orders {
		if _, err := tx.Exec(ctx, `
            INSERT INTO orders (position, id, customer, phone, product, amount, status, date_label, visibility)
            VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
        `, i, o.ID, o.Customer, o.Phone, o.Product, o.Amount, string(o.Status), o.Date, string(o.Visibility)); err != nil {
			return fmt.Errorf("failed to save order: %w", err)
		}
	}
	for i, c := range doc.ChartData {
		if _, err := tx.Exec(ctx, "INSERT INTO chart_data (position, name, conversations, sales) VALUES ($1, $2, $3, $4)", i, c.Name, c.Conversations, c.Sales); err != nil {
			return fmt.Errorf("failed to save chart point: %w", err)
		}
	}

	return tx.Commit(ctx)
}
