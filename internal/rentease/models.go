package rentease

import (
	"fmt"
	"strings"
	"time"
)

// Role identifies the kind of account a user holds.
type Role string

const (
	RoleLandlord Role = "LANDLORD"
	RoleTenant   Role = "TENANT"
	RoleAdmin    Role = "ADMIN"
)

// PropertyStatus is the moderation/availability state of a listing.
type PropertyStatus string

const (
	PropertyPending  PropertyStatus = "PENDING"
	PropertyApproved PropertyStatus = "APPROVED"
	PropertyRejected PropertyStatus = "REJECTED"
	PropertyRented   PropertyStatus = "RENTED"
	PropertyInactive PropertyStatus = "INACTIVE"
)

// BookingStatus is the lifecycle state of a booking request.
type BookingStatus string

const (
	BookingPending   BookingStatus = "PENDING"
	BookingApproved  BookingStatus = "APPROVED"
	BookingRejected  BookingStatus = "REJECTED"
	BookingCancelled BookingStatus = "CANCELLED"
	BookingCompleted BookingStatus = "COMPLETED"
)

// Date is a calendar date serialized as "2006-01-02" on the wire, matching
// the backend's date fields.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

// Today returns the current date in UTC.
func Today() Date {
	return Date{time.Now().UTC().Truncate(24 * time.Hour)}
}

func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.Trim(string(data), `"`)
	if s == "null" || s == "" {
		d.Time = time.Time{}
		return nil
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("parsing date %q: %w", s, err)
	}
	d.Time = t
	return nil
}

// String returns the wire format of the date.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.Format(dateLayout)
}

// User is an account on the rentease backend.
type User struct {
	ID        int64  `json:"id"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
	Role      Role   `json:"role"`
	Enabled   bool   `json:"enabled"`
}

// Property is a rental listing as returned by the backend.
type Property struct {
	ID                int64          `json:"id"`
	Title             string         `json:"title"`
	Type              string         `json:"type"`
	Description       string         `json:"description"`
	Address           string         `json:"address"`
	Neighborhood      string         `json:"neighborhood"`
	City              string         `json:"city"`
	District          string         `json:"district"`
	Bedrooms          int            `json:"bedrooms"`
	Bathrooms         float64        `json:"bathrooms"`
	Area              float64        `json:"area"`
	YearBuilt         int            `json:"yearBuilt"`
	ParkingSpaces     int            `json:"parkingSpaces"`
	Furnished         string         `json:"furnished"`
	Amenities         []string       `json:"amenities"`
	MainPhoto         string         `json:"mainPhoto"`
	AdditionalPhotos  []string       `json:"additionalPhotos"`
	VideoURL          string         `json:"videoUrl"`
	Price             float64        `json:"price"`
	Deposit           float64        `json:"deposit"`
	AvailableFrom     Date           `json:"availableFrom"`
	MinLeaseMonths    int            `json:"minLeaseMonths"`
	UtilitiesIncluded []string       `json:"utilitiesIncluded"`
	Pets              string         `json:"pets"`
	Smoking           string         `json:"smoking"`
	Events            string         `json:"events"`
	MaxOccupants      int            `json:"maxOccupants"`
	LandlordID        int64          `json:"landlordId"`
	LandlordName      string         `json:"landlordName"`
	Status            PropertyStatus `json:"status"`
}

// Favorite is a tenant-to-property relation. The backend returns the full
// property under each favorite.
type Favorite struct {
	Property Property `json:"property"`
}

// Booking is a tenant's booking request for a property.
type Booking struct {
	ID        int64         `json:"id"`
	StartDate Date          `json:"startDate"`
	EndDate   Date          `json:"endDate"`
	Status    BookingStatus `json:"status"`
	Property  Property      `json:"property"`
	Tenant    User          `json:"tenant"`
}

// Chat is a tenant-landlord conversation about a property.
type Chat struct {
	ID        int64     `json:"id"`
	Property  Property  `json:"property"`
	Tenant    User      `json:"tenant"`
	Landlord  User      `json:"landlord"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Message is a single chat message.
type Message struct {
	ID        int64     `json:"id"`
	ChatID    int64     `json:"chatId"`
	SenderID  int64     `json:"senderId"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}

// AuthResult is the backend's response to a successful login or signup.
type AuthResult struct {
	User  User   `json:"user"`
	Token string `json:"token"`
}
