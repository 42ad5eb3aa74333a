// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

package product

import "context"

// Repository defines the read-only data access contract the collection
// domain has against the product subsystem.
type Repository interface {

	/*
		Exists reports whether a product with the given ID is present.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - bool: true if the product exists
		  - error: Database retrieval failures
	*/
	Exists(context context.Context, id string) (bool, error)

	/*
		FindSummary retrieves the compact projection of a single product.

		Parameters:
		  - context: context.Context
		  - id: string (UUIDv7)

		Returns:
		  - *Summary: Hydrated projection
		  - error: apperr.NotFound if missing
	*/
	FindSummary(context context.Context, id string) (*Summary, error)
}
