package models

import (
	"time"
	"vbs/src/types"
)

type Payment struct {
	BookingID string              `gorm:"primarykey" firestore:"booking_id" json:"booking_id"`
	Identity  string              `gorm:"index" firestore:"identity" json:"identity"`
	Email     string              `firestore:"email" json:"email"`
	Status    types.PaymentStatus `firestore:"status" json:"status"`
	CreatedAt time.Time           `firestore:"created_at" json:"created_at"`
}
