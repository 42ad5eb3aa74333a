package schema

// CollectionTable represents the 'catalog.collection' table
type CollectionTable struct {
	Table          string
	ID             string
	OwnerID        string
	Name           string
	Slug           string
	Description    string
	Image          string
	ParentID       string
	IsActive       string
	RequiresCode   string
	AccessCodeHash string
	CreatedAt      string
	UpdatedAt      string
}

// Collection is the schema definition for catalog.collection
var Collection = CollectionTable{
	Table:          "catalog.collection",
	ID:             "id",
	OwnerID:        "ownerid",
	Name:           "name",
	Slug:           "slug",
	Description:    "description",
	Image:          "image",
	ParentID:       "parentid",
	IsActive:       "isactive",
	RequiresCode:   "requirescode",
	AccessCodeHash: "accesscodehash",
	CreatedAt:      "createdat",
	UpdatedAt:      "updatedat",
}
