package purchasing

import (
	"strings"
	"time"

	"github.com/opsdash/backend/internal/domain/shared"
)

// Default purchasing parameters applied to suppliers that don't override them
const (
	DefaultAnalysisMonths = 6
	DefaultCoverageMonths = 2
)

// Supplier represents a goods supplier. Suppliers are created manually or
// by synchronization from the external fulfillment platform.
type Supplier struct {
	shared.BaseEntity
	ExternalID     *string `gorm:"type:varchar(50);uniqueIndex"`
	Code           string  `gorm:"type:varchar(50);not null;uniqueIndex"`
	Name           string  `gorm:"type:varchar(200);not null"`
	ContactName    string  `gorm:"type:varchar(100)"`
	Phone          string  `gorm:"type:varchar(50)"`
	Email          string  `gorm:"type:varchar(200)"`
	AnalysisMonths int     `gorm:"not null;default:6"` // sales history window for demand analysis
	CoverageMonths int     `gorm:"not null;default:2"` // months of demand a new order should cover
	LeadTimeDays   int     `gorm:"not null;default:0"`
	Notes          string  `gorm:"type:text"`
}

// TableName returns the table name for GORM
func (Supplier) TableName() string {
	return "suppliers"
}

// NewSupplier creates a new supplier with required fields
func NewSupplier(code, name string) (*Supplier, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return nil, shared.NewDomainError("INVALID_CODE", "Supplier code cannot be empty")
	}
	if strings.TrimSpace(name) == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Supplier name cannot be empty")
	}

	return &Supplier{
		BaseEntity:     shared.NewBaseEntity(),
		Code:           strings.ToUpper(code),
		Name:           name,
		AnalysisMonths: DefaultAnalysisMonths,
		CoverageMonths: DefaultCoverageMonths,
	}, nil
}

// LinkExternal records the supplier's identity on the external platform
func (s *Supplier) LinkExternal(externalID string) {
	s.ExternalID = &externalID
	s.UpdatedAt = time.Now()
}

// UpdateContact updates the supplier contact information
func (s *Supplier) UpdateContact(contactName, phone, email string) {
	s.ContactName = contactName
	s.Phone = phone
	s.Email = email
	s.UpdatedAt = time.Now()
}
