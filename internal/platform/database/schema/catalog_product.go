package schema

// ProductTable represents the 'catalog.product' table
type ProductTable struct {
	Table      string
	ID         string
	Name       string
	Image      string
	Price      string
	Rating     string
	NumReviews string
	CreatedAt  string
	UpdatedAt  string
}

// Product is the schema definition for catalog.product
var Product = ProductTable{
	Table:      "catalog.product",
	ID:         "id",
	Name:       "name",
	Image:      "image",
	Price:      "price",
	Rating:     "rating",
	NumReviews: "numreviews",
	CreatedAt:  "createdat",
	UpdatedAt:  "updatedat",
}
