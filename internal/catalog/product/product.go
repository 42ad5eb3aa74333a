// Copyright (c) 2026 Prostore. All rights reserved.
// Author: youssef.ahmed.dev@gmail.com

/*
Package product exposes the read-only product collaborator used by the
collection domain.

Product lifecycle (creation, pricing, inventory, reviews) is owned by a
separate subsystem. The collection domain only needs two capabilities:

  - Existence: verifying a product reference before adding it to a collection.
  - Projection: materializing the compact summary shown inside collection views.

No HTTP surface is exposed from this package.
*/
package product

// Summary is the read projection of a product embedded in collection
// responses. It is intentionally a subset of the full product record.
type Summary struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Image      string  `json:"image"`
	Price      float64 `json:"price"`
	Rating     float64 `json:"rating"`
	NumReviews int     `json:"numReviews"`
}
