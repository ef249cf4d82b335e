package client

import "time"

type Client struct {
	ID         int64
	FirstName  string
	LastName   string
	NationalID string
	Phone      *string
	Address    *string
	Email      *string
	PhotoURL   *string
	Active     bool
	CreatedBy  int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (c *Client) FullName() string {
	if c.LastName == "" {
		return c.FirstName
	}
	return c.FirstName + " " + c.LastName
}

// ClientPatch lists the columns an update may touch. Nil fields are left alone.
type ClientPatch struct {
	FirstName  *string
	LastName   *string
	NationalID *string
	Phone      *string
	Address    *string
	Email      *string
	PhotoURL   *string
	Active     *bool
}

func (p ClientPatch) IsEmpty() bool {
	return p.FirstName == nil && p.LastName == nil && p.NationalID == nil && p.Phone == nil &&
		p.Address == nil && p.Email == nil && p.PhotoURL == nil && p.Active == nil
}
