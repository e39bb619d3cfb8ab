package stores

import (
	"context"
	"database/sql"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	_ "github.com/microsoft/go-mssqldb" // registers the "sqlserver" driver

	"github.com/preciolens/backend/internal/domain"
)

// Connector opens a ready-to-query database handle for one store endpoint.
// The caller closes the returned handle.
type Connector interface {
	Connect(ctx context.Context, endpoint domain.StoreEndpoint) (*sql.DB, error)
}

// Credentials are shared by every store endpoint
type Credentials struct {
	User     string
	Password string
	Database string
}

// SQLServerConnector connects to store endpoints over the SQL Server protocol
type SQLServerConnector struct {
	credentials Credentials
	dialTimeout time.Duration
}

// NewSQLServerConnector creates a connector using one credential set for all endpoints
func NewSQLServerConnector(credentials Credentials, dialTimeout time.Duration) *SQLServerConnector {
	return &SQLServerConnector{
		credentials: credentials,
		dialTimeout: dialTimeout,
	}
}

// DSN builds the sqlserver:// connection URL for an endpoint address.
// Addresses may be "host", "host:port" or "host\instance".
func (c *SQLServerConnector) DSN(address string) string {
	host, instance, _ := strings.Cut(address, `\`)

	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(c.credentials.User, c.credentials.Password),
		Host:   host,
	}
	if instance != "" {
		u.Path = "/" + instance
	}

	// the driver only takes whole seconds; the context deadline enforces anything finer
	seconds := strconv.Itoa(int(math.Ceil(c.dialTimeout.Seconds())))

	q := url.Values{}
	q.Set("database", c.credentials.Database)
	q.Set("dial timeout", seconds)
	q.Set("connection timeout", seconds)
	q.Set("app name", "preciolens")
	u.RawQuery = q.Encode()

	return u.String()
}

// Connect opens and pings a single-connection pool for the endpoint
func (c *SQLServerConnector) Connect(ctx context.Context, endpoint domain.StoreEndpoint) (*sql.DB, error) {
	db, err := sql.Open("sqlserver", c.DSN(endpoint.Address))
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	db.SetMaxOpenConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "ping")
	}

	return db, nil
}
