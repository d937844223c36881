package amqp

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// OccurrenceDueMessage announces that the materializer recorded a new pay day
// for an item. Consumers fetch the full item from storage if they need more.
type OccurrenceDueMessage struct {
	ItemID       uuid.UUID `json:"item_id"`
	OccurrenceID uuid.UUID `json:"occurrence_id"`
	PayDay       time.Time `json:"pay_day"`
	Timestamp    time.Time `json:"timestamp"`
}

func NewOccurrenceDueMessage(itemID, occurrenceID uuid.UUID, payDay time.Time) *OccurrenceDueMessage {
	return &OccurrenceDueMessage{
		ItemID:       itemID,
		OccurrenceID: occurrenceID,
		PayDay:       payDay,
		Timestamp:    time.Now(),
	}
}

func (m *OccurrenceDueMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func OccurrenceDueMessageFromJSON(data []byte) (*OccurrenceDueMessage, error) {
	var msg OccurrenceDueMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}

// ItemDeletedMessage announces that an item and its occurrences were removed.
type ItemDeletedMessage struct {
	ItemID    uuid.UUID `json:"item_id"`
	Timestamp time.Time `json:"timestamp"`
}

func NewItemDeletedMessage(itemID uuid.UUID) *ItemDeletedMessage {
	return &ItemDeletedMessage{
		ItemID:    itemID,
		Timestamp: time.Now(),
	}
}

func (m *ItemDeletedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func ItemDeletedMessageFromJSON(data []byte) (*ItemDeletedMessage, error) {
	var msg ItemDeletedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
