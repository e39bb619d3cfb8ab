package stores

import (
	"context"
	"database/sql"
	"log"
	"time"

	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/preciolens/backend/internal/domain"
	"github.com/preciolens/backend/internal/infrastructure/pricing"
)

// productLookupQuery matches the EAN against any of the four identifier columns.
// The single named parameter is reused by every comparison.
const productLookupQuery = `SELECT Descripcion, Precio_Venta
FROM Productos
WHERE Id_Producto = @ean OR Id_Producto1 = @ean OR Id_Producto2 = @ean OR Id_Producto3 = @ean`

const (
	defaultEndpointTimeout = time.Second
	defaultMaxConcurrency  = 8
)

// Options tune the fan-out
type Options struct {
	// EndpointTimeout bounds connect and query for one endpoint.
	EndpointTimeout time.Duration
	// StatusTimeout bounds a reachability check.
	StatusTimeout time.Duration
	// MaxConcurrency caps the number of endpoints queried at once.
	MaxConcurrency int
}

// FanOut queries many store endpoints independently and merges their rows
type FanOut struct {
	connector       Connector
	endpointTimeout time.Duration
	statusTimeout   time.Duration
	maxConcurrency  int
}

// NewFanOut creates a fan-out over the given connector
func NewFanOut(connector Connector, opts Options) *FanOut {
	if opts.EndpointTimeout <= 0 {
		opts.EndpointTimeout = defaultEndpointTimeout
	}
	if opts.StatusTimeout <= 0 {
		opts.StatusTimeout = opts.EndpointTimeout
	}
	if opts.MaxConcurrency <= 0 {
		opts.MaxConcurrency = defaultMaxConcurrency
	}

	return &FanOut{
		connector:       connector,
		endpointTimeout: opts.EndpointTimeout,
		statusTimeout:   opts.StatusTimeout,
		maxConcurrency:  opts.MaxConcurrency,
	}
}

// QueryAll looks the EAN up at every endpoint. Failed endpoints are logged and
// contribute nothing. Items are ordered by endpoint, then by row order.
func (f *FanOut) QueryAll(ctx context.Context, ean string, endpoints []domain.StoreEndpoint) []domain.LineItem {
	slots := make([][]domain.LineItem, len(endpoints))

	var g errgroup.Group
	g.SetLimit(f.maxConcurrency)

	for i, endpoint := range endpoints {
		g.Go(func() error {
			start := time.Now()
			items, err := f.queryEndpoint(ctx, ean, endpoint)
			if err != nil {
				log.Printf("[Stores] %s (%s) failed after %s: %v", endpoint.Alias, endpoint.Address, time.Since(start).Round(time.Millisecond), err)
				return nil
			}
			slots[i] = items
			return nil
		})
	}
	// workers never return errors; failures stay local to their slot
	_ = g.Wait()

	total := 0
	for _, items := range slots {
		total += len(items)
	}

	merged := make([]domain.LineItem, 0, total)
	for _, items := range slots {
		merged = append(merged, items...)
	}
	return merged
}

func (f *FanOut) queryEndpoint(ctx context.Context, ean string, endpoint domain.StoreEndpoint) ([]domain.LineItem, error) {
	ctx, cancel := context.WithTimeout(ctx, f.endpointTimeout)
	defer cancel()

	db, err := f.connector.Connect(ctx, endpoint)
	if err != nil {
		return nil, errors.Wrapf(domain.ErrEndpoint, "connect: %v", err)
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, productLookupQuery, sql.Named("ean", ean))
	if err != nil {
		return nil, errors.Wrapf(domain.ErrEndpoint, "query: %v", err)
	}
	defer rows.Close()

	var items []domain.LineItem
	for rows.Next() {
		var (
			name  sql.NullString
			price any
		)
		if err := rows.Scan(&name, &price); err != nil {
			return nil, errors.Wrapf(domain.ErrEndpoint, "scan: %v", err)
		}
		items = append(items, rowToLineItem(ean, endpoint.Alias, name.String, price))
	}
	if err := rows.Err(); err != nil {
		return nil, errors.Wrapf(domain.ErrEndpoint, "rows: %v", err)
	}

	return items, nil
}

func rowToLineItem(ean, alias, name string, price any) domain.LineItem {
	item := domain.LineItem{
		EAN:         ean,
		ProductName: name,
		Source:      alias,
	}

	amount, err := pricing.ParseValue(price)
	if err != nil {
		log.Printf("[Stores] %s: %v", alias, err)
		item.PriceText = domain.PriceParseErrorMarker
		return item
	}

	item.Price = &amount
	item.PriceText = pricing.Format(amount)
	return item
}

// Ping reports whether the endpoint accepts a connection within the status timeout
func (f *FanOut) Ping(ctx context.Context, endpoint domain.StoreEndpoint) bool {
	if endpoint.Address == "" {
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, f.statusTimeout)
	defer cancel()

	db, err := f.connector.Connect(ctx, endpoint)
	if err != nil {
		return false
	}
	db.Close()
	return true
}
