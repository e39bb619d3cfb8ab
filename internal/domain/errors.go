package domain

import "github.com/go-faster/errors"

var (
	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrPriceParse is returned when a price text or column value cannot be normalized
	ErrPriceParse = errors.New("could not parse price")

	// ErrFetch is returned when the reference source cannot be reached or answers with a non-success status
	ErrFetch = errors.New("reference source request failed")

	// ErrEndpoint is returned when a store endpoint fails to connect, authenticate or answer in time
	ErrEndpoint = errors.New("store endpoint query failed")

	// ErrComputation is returned when no usable reference price exists to derive a suggested price
	ErrComputation = errors.New("suggested price could not be computed")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")

	// ErrServerNotFound is returned when a registry alias does not exist
	ErrServerNotFound = errors.New("store server not found")

	// ErrInvalidServer is returned when a store endpoint lacks an alias or address
	ErrInvalidServer = errors.New("store server requires alias and address")
)
