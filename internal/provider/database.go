package provider

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5"

	"kv-shepherd.io/multiauth/internal/guard"
)

// DriverDatabase reads users from a PostgreSQL table.
const DriverDatabase = "database"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*(\.[A-Za-z_][A-Za-z0-9_]*)?$`)

type databaseDriver struct{}

func (databaseDriver) Type() string { return DriverDatabase }

func (databaseDriver) Describe() DriverDescriptor {
	return DriverDescriptor{
		Type:        DriverDatabase,
		DisplayName: "Database",
		Description: "Users stored in a PostgreSQL table with id and username columns",
		BuiltIn:     true,
	}
}

func (databaseDriver) New(name string, cfg guard.ProviderConfig, deps Deps) (UserProvider, error) {
	if deps.DB == nil {
		return nil, fmt.Errorf("provider %q: database driver requires a database connection", name)
	}
	table := strings.TrimSpace(cfg.Table)
	if table == "" {
		table = name
	}
	if !tableNamePattern.MatchString(table) {
		return nil, fmt.Errorf("provider %q: invalid table name %q", name, table)
	}
	return &DatabaseProvider{
		name:  name,
		table: pgx.Identifier(strings.Split(table, ".")).Sanitize(),
		db:    deps.DB,
	}, nil
}

// DatabaseProvider is a UserProvider backed by one table.
type DatabaseProvider struct {
	name  string
	table string // sanitized, quoted identifier
	db    Querier
}

func (p *DatabaseProvider) Name() string   { return p.name }
func (p *DatabaseProvider) Driver() string { return DriverDatabase }

// Table returns the quoted table identifier.
func (p *DatabaseProvider) Table() string { return p.table }

func (p *DatabaseProvider) RetrieveByUsername(ctx context.Context, username string) (*User, error) {
	query := fmt.Sprintf("SELECT id::text, username FROM %s WHERE username = $1 LIMIT 1", p.table)

	u := &User{Provider: p.name}
	if err := p.db.QueryRow(ctx, query, username).Scan(&u.ID, &u.Username); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s/%s", ErrUserNotFound, p.name, username)
		}
		return nil, fmt.Errorf("query provider %q: %w", p.name, err)
	}
	return u, nil
}

// Check verifies the table is readable.
func (p *DatabaseProvider) Check(ctx context.Context) error {
	var one int
	err := p.db.QueryRow(ctx, fmt.Sprintf("SELECT 1 FROM %s LIMIT 1", p.table)).Scan(&one)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("check provider %q: %w", p.name, err)
	}
	return nil
}
