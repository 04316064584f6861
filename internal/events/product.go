// Package events defines the product lifecycle events published to the message broker.
package events

import (
	"encoding/json"
	"time"

	"github.com/JobsonDeveloper/Product-Microservice/pkg/messaging"
)

const (
	SubjectProductCreated   = "products.created"
	SubjectProductUpdated   = "products.updated"
	SubjectProductDeleted   = "products.deleted"
	SubjectProductPurchased = "products.purchased"

	// SubjectAll matches every product subject.
	SubjectAll = "products.>"
)

var _ messaging.Event = (*ProductEvent)(nil)

// ProductEvent carries the product state relevant to subscribers.
type ProductEvent struct {
	subject string

	ProductID         string    `json:"productId"`
	BarCode           int64     `json:"barCode"`
	Quantity          int64     `json:"quantity"`
	QuantityPurchased int64     `json:"quantityPurchased,omitempty"`
	OccurredAt        time.Time `json:"occurredAt"`
}

func (e *ProductEvent) Subject() string {
	return e.subject
}

func (e *ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}

func ProductCreated(id string, barCode, quantity int64, at time.Time) *ProductEvent {
	return &ProductEvent{subject: SubjectProductCreated, ProductID: id, BarCode: barCode, Quantity: quantity, OccurredAt: at}
}

func ProductUpdated(id string, barCode, quantity int64, at time.Time) *ProductEvent {
	return &ProductEvent{subject: SubjectProductUpdated, ProductID: id, BarCode: barCode, Quantity: quantity, OccurredAt: at}
}

func ProductDeleted(id string, barCode int64, at time.Time) *ProductEvent {
	return &ProductEvent{subject: SubjectProductDeleted, ProductID: id, BarCode: barCode, OccurredAt: at}
}

// ProductPurchased reports the remaining quantity after a purchase of purchased units.
func ProductPurchased(id string, barCode, remaining, purchased int64, at time.Time) *ProductEvent {
	return &ProductEvent{
		subject:           SubjectProductPurchased,
		ProductID:         id,
		BarCode:           barCode,
		Quantity:          remaining,
		QuantityPurchased: purchased,
		OccurredAt:        at,
	}
}
