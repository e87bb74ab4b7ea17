package testutil

import (
	"context"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/dimitrije/relayo-api/internal/database"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	postgresImage = "postgres:16-alpine"
	postgresUser  = "relayo"
	postgresDB    = "relayo_test"
)

// Postgres is one migrated database container shared by a test package.
// Tests take a clean view of it through Fresh.
type Postgres struct {
	container testcontainers.Container
	db        *database.DB
}

// TestDB is the per-test handle on the shared database.
type TestDB struct {
	DB *database.DB
}

// StartPostgres boots the container and applies the schema. Call it from
// TestMain and Terminate it once the package is done.
func StartPostgres(ctx context.Context) (*Postgres, error) {
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        postgresImage,
			ExposedPorts: []string{"5432/tcp"},
			Env: map[string]string{
				"POSTGRES_USER":     postgresUser,
				"POSTGRES_PASSWORD": postgresUser,
				"POSTGRES_DB":       postgresDB,
			},
			WaitingFor: wait.ForAll(
				wait.ForLog("database system is ready to accept connections").WithOccurrence(2),
				wait.ForListeningPort("5432/tcp"),
			).WithDeadline(90 * time.Second),
		},
		Started: true,
	})
	if err != nil {
		return nil, fmt.Errorf("start postgres: %w", err)
	}

	pg := &Postgres{container: container}
	if err := pg.connect(ctx); err != nil {
		_ = container.Terminate(ctx)
		return nil, err
	}
	return pg, nil
}

func (p *Postgres) connect(ctx context.Context) error {
	endpoint, err := p.container.PortEndpoint(ctx, "5432/tcp", "")
	if err != nil {
		return fmt.Errorf("resolve postgres endpoint: %w", err)
	}

	url := fmt.Sprintf("postgres://%s:%s@%s/%s?sslmode=disable", postgresUser, postgresUser, endpoint, postgresDB)
	db, err := database.New(ctx, url)
	if err != nil {
		return err
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return fmt.Errorf("migrate: %w", err)
	}
	p.db = db
	return nil
}

// Fresh empties every table in the public schema and hands the database to
// the test.
func (p *Postgres) Fresh(t *testing.T) *TestDB {
	t.Helper()
	ctx := context.Background()

	rows, err := p.db.Pool.Query(ctx, `SELECT tablename FROM pg_tables WHERE schemaname = 'public'`)
	if err != nil {
		t.Fatalf("list tables: %v", err)
	}
	var tables []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			rows.Close()
			t.Fatalf("scan table name: %v", err)
		}
		tables = append(tables, name)
	}
	rows.Close()

	if len(tables) > 0 {
		stmt := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
		if _, err := p.db.Pool.Exec(ctx, stmt); err != nil {
			t.Fatalf("truncate: %v", err)
		}
	}
	return &TestDB{DB: p.db}
}

func (p *Postgres) Terminate(ctx context.Context) error {
	p.db.Close()
	return p.container.Terminate(ctx)
}
