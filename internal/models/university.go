package models

import (
	"time"

	"gorm.io/gorm"
)

type University struct {
	ID      uint    `json:"id" gorm:"primaryKey"`
	Name    string  `json:"name" gorm:"not null;size:200;uniqueIndex" validate:"required,min=1,max=200"`
	Region  string  `json:"region" gorm:"size:100" validate:"omitempty,max=100"`
	Country string  `json:"country" gorm:"size:100;index" validate:"omitempty,max=100"`
	Website *string `json:"website" gorm:"size:255" validate:"omitempty,url"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `json:"-" gorm:"index"`
}

func (University) TableName() string {
	return "universities"
}
