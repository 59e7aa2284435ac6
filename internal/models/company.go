package model

// Company is a boycott-directory record. Read-only from the app's perspective;
// the collection is seeded offline (cmd/seed) and never mutated by handlers.
type Company struct {
	ID                   string   `bson:"_id" json:"id"`
	Name                 string   `bson:"name" json:"name"`
	Logo                 string   `bson:"logo,omitempty" json:"logo,omitempty"`
	Category             string   `bson:"category" json:"category"`
	Reason               string   `bson:"reason" json:"reason"`
	StartDate            string   `bson:"startDate" json:"startDate"`
	Description          string   `bson:"description" json:"description"`
	AlternativeCompanies []string `bson:"alternativeCompanies,omitempty" json:"alternativeCompanies,omitempty"`
	Link                 string   `bson:"link,omitempty" json:"link,omitempty"`
}

// CompanyPage is the API response for a directory listing.
type CompanyPage struct {
	Companies  []Company `json:"companies"`
	NextCursor string    `json:"nextCursor,omitempty"`
}
