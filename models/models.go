package models

import (
	"time"

	"github.com/google/uuid"
)

type TenderStatus string

const (
	TenderCreated   TenderStatus = "Created"
	TenderPublished TenderStatus = "Published"
	TenderClosed    TenderStatus = "Closed"
)

func (s TenderStatus) Valid() bool {
	switch s {
	case TenderCreated, TenderPublished, TenderClosed:
		return true
	}
	return false
}

type ServiceType string

const (
	ServiceConstruction ServiceType = "Construction"
	ServiceDelivery     ServiceType = "Delivery"
	ServiceManufacture  ServiceType = "Manufacture"
)

func (t ServiceType) Valid() bool {
	switch t {
	case ServiceConstruction, ServiceDelivery, ServiceManufacture:
		return true
	}
	return false
}

type BidStatus string

const (
	BidCreated   BidStatus = "Created"
	BidPublished BidStatus = "Published"
	BidCanceled  BidStatus = "Canceled"
)

func (s BidStatus) Valid() bool {
	switch s {
	case BidCreated, BidPublished, BidCanceled:
		return true
	}
	return false
}

type AuthorType string

const (
	AuthorOrganization AuthorType = "Organization"
	AuthorUser         AuthorType = "User"
)

func (t AuthorType) Valid() bool {
	return t == AuthorOrganization || t == AuthorUser
}

type Decision string

const (
	DecisionApproved Decision = "Approved"
	DecisionRejected Decision = "Rejected"
)

func (d Decision) Valid() bool {
	return d == DecisionApproved || d == DecisionRejected
}

type OrganizationType string

const (
	OrganizationIE  OrganizationType = "IE"
	OrganizationLLC OrganizationType = "LLC"
	OrganizationJSC OrganizationType = "JSC"
)

func (t OrganizationType) Valid() bool {
	switch t {
	case OrganizationIE, OrganizationLLC, OrganizationJSC:
		return true
	}
	return false
}

// Сущность Пользователя
type Employee struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Username  string    `db:"username" json:"username"`
	FirstName string    `db:"first_name" json:"firstName"`
	LastName  string    `db:"last_name" json:"lastName"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time `db:"updated_at" json:"-"`
}

// Сущность Организации
type Organization struct {
	ID          uuid.UUID        `db:"id" json:"id"`
	Name        string           `db:"name" json:"name"`
	Description string           `db:"description" json:"description"`
	Type        OrganizationType `db:"type" json:"type"`
	CreatedAt   time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time        `db:"updated_at" json:"-"`
}

// Связь "ответственный за организацию". Дубликаты допустимы.
type OrganizationResponsible struct {
	ID             uuid.UUID `db:"id" json:"id"`
	OrganizationID uuid.UUID `db:"organization_id" json:"organizationId"`
	UserID         uuid.UUID `db:"user_id" json:"userId"`
}

// Сущность Тендера: идентичность и статус. Содержимое хранится в версиях.
type Tender struct {
	ID             uuid.UUID    `db:"id"`
	Status         TenderStatus `db:"status"`
	OrganizationID uuid.UUID    `db:"organization_id"`
	CreatorID      uuid.UUID    `db:"creator_id"`
	CreatedAt      time.Time    `db:"created_at"`
	UpdatedAt      time.Time    `db:"updated_at"`
}

// Версионируемые поля тендера
type TenderContent struct {
	Name        string      `db:"name"`
	Description string      `db:"description"`
	ServiceType ServiceType `db:"service_type"`
}

// Частичное изменение тендера: nil-поля сохраняют прежнее значение.
type TenderPatch struct {
	Name        *string      `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string      `json:"description" validate:"omitempty,min=1,max=500"`
	ServiceType *ServiceType `json:"serviceType" validate:"omitempty,oneof=Construction Delivery Manufacture"`
}

// MergeTender copies only the fields present in p over c.
func MergeTender(c TenderContent, p TenderPatch) TenderContent {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	if p.ServiceType != nil {
		c.ServiceType = *p.ServiceType
	}
	return c
}

// Представление тендера для чтения: тендер + его текущая версия.
type TenderView struct {
	ID          uuid.UUID    `db:"id" json:"id"`
	Name        string       `db:"name" json:"name"`
	Description string       `db:"description" json:"description"`
	Status      TenderStatus `db:"status" json:"status"`
	ServiceType ServiceType  `db:"service_type" json:"serviceType"`
	Version     int          `db:"version" json:"version"`
	CreatedAt   time.Time    `db:"created_at" json:"createdAt"`

	OrganizationID uuid.UUID `db:"organization_id" json:"-"`
	CreatorID      uuid.UUID `db:"creator_id" json:"-"`
}

func (v TenderView) Tender() Tender {
	return Tender{
		ID:             v.ID,
		Status:         v.Status,
		OrganizationID: v.OrganizationID,
		CreatorID:      v.CreatorID,
		CreatedAt:      v.CreatedAt,
	}
}

// Сущность Предложения
type Bid struct {
	ID         uuid.UUID  `db:"id"`
	Status     BidStatus  `db:"status"`
	TenderID   uuid.UUID  `db:"tender_id"`
	AuthorType AuthorType `db:"author_type"`
	AuthorID   uuid.UUID  `db:"author_id"`
	CreatedAt  time.Time  `db:"created_at"`
	UpdatedAt  time.Time  `db:"updated_at"`
}

type BidContent struct {
	Name        string `db:"name"`
	Description string `db:"description"`
}

type BidPatch struct {
	Name        *string `json:"name" validate:"omitempty,min=1,max=100"`
	Description *string `json:"description" validate:"omitempty,min=1,max=500"`
}

func MergeBid(c BidContent, p BidPatch) BidContent {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Description != nil {
		c.Description = *p.Description
	}
	return c
}

type BidView struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	Name        string     `db:"name" json:"name"`
	Description string     `db:"description" json:"description"`
	Status      BidStatus  `db:"status" json:"status"`
	TenderID    uuid.UUID  `db:"tender_id" json:"tenderId"`
	AuthorType  AuthorType `db:"author_type" json:"authorType"`
	AuthorID    uuid.UUID  `db:"author_id" json:"authorId"`
	Version     int        `db:"version" json:"version"`
	CreatedAt   time.Time  `db:"created_at" json:"createdAt"`
}

func (v BidView) Bid() Bid {
	return Bid{
		ID:         v.ID,
		Status:     v.Status,
		TenderID:   v.TenderID,
		AuthorType: v.AuthorType,
		AuthorID:   v.AuthorID,
		CreatedAt:  v.CreatedAt,
	}
}

// Сущность Отзыва на предложение
type BidFeedback struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BidID       uuid.UUID `db:"bid_id" json:"bidId"`
	Description string    `db:"feedback" json:"description"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
}

// Решение ответственного по предложению
type BidDecision struct {
	ID         uuid.UUID `db:"id" json:"id"`
	BidID      uuid.UUID `db:"bid_id" json:"bidId"`
	EmployeeID uuid.UUID `db:"employee_id" json:"employeeId"`
	Decision   Decision  `db:"decision" json:"decision"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
