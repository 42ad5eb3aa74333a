package schema

// CollectionProductTable represents the 'catalog.collectionproduct' table
type CollectionProductTable struct {
	Table        string
	CollectionID string
	ProductID    string
	SortOrder    string
	AddedAt      string
}

// CollectionProduct is the schema definition for catalog.collectionproduct
var CollectionProduct = CollectionProductTable{
	Table:        "catalog.collectionproduct",
	CollectionID: "collectionid",
	ProductID:    "productid",
	SortOrder:    "sortorder",
	AddedAt:      "addedat",
}
