package models

import "time"

// Rating rows are never removed; IsActive=false excludes them from aggregation.
type Rating struct {
	ID        uint `json:"id" gorm:"primaryKey"`
	Grade     int  `json:"grade" gorm:"not null"`
	UserID    uint `json:"user_id" gorm:"not null;index"`
	ProductID uint `json:"product_id" gorm:"not null;index"`
	IsActive  bool `json:"is_active" gorm:"not null"`

	User    *User    `json:"-" gorm:"foreignKey:UserID"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
}

type Review struct {
	ID          uint      `json:"id" gorm:"primaryKey"`
	UserID      uint      `json:"user_id" gorm:"not null;index"`
	ProductID   uint      `json:"product_id" gorm:"not null;index"`
	RatingID    uint      `json:"rating_id" gorm:"not null;uniqueIndex"`
	Comment     string    `json:"comment" gorm:"type:text"`
	CommentDate time.Time `json:"comment_date" gorm:"not null;autoCreateTime"`
	IsActive    bool      `json:"is_active" gorm:"not null"`

	User    *User    `json:"-" gorm:"foreignKey:UserID"`
	Product *Product `json:"-" gorm:"foreignKey:ProductID"`
	Rating  *Rating  `json:"-" gorm:"foreignKey:RatingID"`
}
