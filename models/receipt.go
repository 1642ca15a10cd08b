package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// FineRebate is a penalty (positive) or rebate line on a receipt
type FineRebate struct {
	Label  string  `json:"headName"`
	Amount float64 `json:"amount"`
}

// PaymentReceipt is a SAF fee payment
type PaymentReceipt struct {
	ID            uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	SafID         uuid.UUID      `gorm:"type:uuid;index;not null" json:"safId"`
	TranNo        string         `gorm:"size:50;uniqueIndex" json:"tranNo"`
	TranDate      JSONTime       `json:"tranDate"`
	PaymentMode   string         `gorm:"size:30" json:"paymentMode"`
	ChequeNo      string         `gorm:"size:30" json:"chequeNo"`
	ChequeDate    string         `gorm:"size:30" json:"chequeDate"`
	BankName      string         `gorm:"size:100" json:"bankName"`
	BranchName    string         `gorm:"size:100" json:"branchName"`
	FromFy        string         `gorm:"size:10" json:"fromFy"`
	FromQtr       int            `json:"fromQtr"`
	UptoFy        string         `gorm:"size:10" json:"uptoFy"`
	UptoQtr       int            `json:"uptoQtr"`
	HoldingTax    float64        `json:"holdingTax"`
	WaterTax      float64        `json:"waterTax"`
	EducationCess float64        `json:"educationCess"`
	HealthCess    float64        `json:"healthCess"`
	LatrineTax    float64        `json:"latrineTax"`
	RwhPenalty    float64        `json:"rwhPenalty"`
	FineRebates   datatypes.JSON `json:"fineRebates"`
	TotalAmount   float64        `json:"totalAmount"`
	ReceivedBy    string         `gorm:"size:100" json:"receivedBy"`
	CreatedAt     time.Time      `json:"createdAt"`
}

func (p *PaymentReceipt) BeforeCreate(tx *gorm.DB) (err error) {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return
}

// SamMemo is the tax demand memo issued after assessment
type SamMemo struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	SafID         uuid.UUID `gorm:"type:uuid;index;not null" json:"safId"`
	MemoNo        string    `gorm:"size:50;uniqueIndex" json:"memoNo"`
	MemoDate      JSONTime  `json:"memoDate"`
	FromFy        string    `gorm:"size:10" json:"fromFy"`
	FromQtr       int       `json:"fromQtr"`
	Arv           float64   `json:"arv"`
	HoldingTax    float64   `json:"holdingTax"`
	WaterTax      float64   `json:"waterTax"`
	EducationCess float64   `json:"educationCess"`
	HealthCess    float64   `json:"healthCess"`
	LatrineTax    float64   `json:"latrineTax"`
	RwhPenalty    float64   `json:"rwhPenalty"`
	QuarterlyTax  float64   `json:"quarterlyTax"`
	CreatedAt     time.Time `json:"createdAt"`
}

func (s *SamMemo) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return
}
