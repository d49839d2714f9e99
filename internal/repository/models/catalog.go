package models

import (
	"database/sql"
	"time"
)

// Product is a row of the products table.
type Product struct {
	ID             string          `db:"ID"`
	Slug           string          `db:"SLUG"`
	Name           string          `db:"NAME"`
	Description    sql.NullString  `db:"DESCRIPTION"`
	Price          float64         `db:"PRICE"`
	CompareAtPrice sql.NullFloat64 `db:"COMPARE_AT_PRICE"`
	CategoryID     sql.NullString  `db:"CATEGORY_ID"`
	Status         string          `db:"STATUS"`
	Featured       bool            `db:"FEATURED"`
	Images         StringSlice     `db:"IMAGES"`
	Rating         sql.NullFloat64 `db:"RATING"`
	ReviewCount    int             `db:"REVIEW_COUNT"`
	CreatedAt      time.Time       `db:"CREATED_AT"`
	UpdatedAt      time.Time       `db:"UPDATED_AT"`
}

// Category is a row of the categories table joined with its product count.
type Category struct {
	ID           string         `db:"ID"`
	Slug         string         `db:"SLUG"`
	Name         string         `db:"NAME"`
	Description  sql.NullString `db:"DESCRIPTION"`
	ParentID     sql.NullString `db:"PARENT_ID"`
	ProductCount int            `db:"PRODUCT_COUNT"`
}

// Review is a row of the reviews table.
type Review struct {
	ID        string         `db:"ID"`
	ProductID string         `db:"PRODUCT_ID"`
	UserID    string         `db:"USER_ID"`
	Rating    int            `db:"RATING"`
	Title     sql.NullString `db:"TITLE"`
	Body      sql.NullString `db:"BODY"`
	CreatedAt time.Time      `db:"CREATED_AT"`
}

// Inventory is a row of the inventory table.
type Inventory struct {
	ProductID string    `db:"PRODUCT_ID"`
	Quantity  int       `db:"QUANTITY"`
	Reserved  int       `db:"RESERVED"`
	UpdatedAt time.Time `db:"UPDATED_AT"`
}

// ComboDeal is a row of the combo_deals table.
type ComboDeal struct {
	ID            string      `db:"ID"`
	Slug          string      `db:"SLUG"`
	Name          string      `db:"NAME"`
	ProductIDs    StringSlice `db:"PRODUCT_IDS"`
	Price         float64     `db:"PRICE"`
	OriginalPrice float64     `db:"ORIGINAL_PRICE"`
	StartsAt      time.Time   `db:"STARTS_AT"`
	EndsAt        time.Time   `db:"ENDS_AT"`
}

// User is a row of the users table.
type User struct {
	ID        string         `db:"ID"`
	Email     string         `db:"EMAIL"`
	Name      sql.NullString `db:"NAME"`
	Role      string         `db:"ROLE"`
	CreatedAt time.Time      `db:"CREATED_AT"`
	DeletedAt sql.NullTime   `db:"DELETED_AT"`
}
