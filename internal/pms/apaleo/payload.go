package apaleo

import (
	"errors"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const (
	Name = "apaleo"

	hotelIDField            = "HotelId"
	eventsField             = "Events"
	eventReservationUpdated = "ReservationUpdated"
)

// The envelope check only covers what normalization needs. Event structure is
// checked by the reconciler.
const webhookSchemaJSON = `{
  "type": "object",
  "required": ["HotelId"],
  "properties": {
    "HotelId": {"type": "string", "minLength": 1}
  }
}`

var webhookSchema = mustCompileSchema("apaleo-webhook.json", webhookSchemaJSON)

func mustCompileSchema(url, src string) *jsonschema.Schema {
	doc, err := jsonschema.UnmarshalJSON(strings.NewReader(src))
	if err != nil {
		panic(fmt.Sprintf("apaleo: parse schema: %v", err))
	}
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		panic(fmt.Sprintf("apaleo: add schema: %v", err))
	}
	return c.MustCompile(url)
}

type event struct {
	Name          string
	ReservationID string
}

type header struct {
	HotelID string
	Events  []event
}

var errMalformedHeader = errors.New("malformed webhook header")

// parseHeader extracts the vendor hotel id and the event list. A missing event
// list is an empty one; a non-list is malformed. Entries that are not objects
// come back with an empty name so the event filter drops them.
func parseHeader(data map[string]any) (header, error) {
	var h header
	hid, ok := data[hotelIDField].(string)
	if !ok || strings.TrimSpace(hid) == "" {
		return h, fmt.Errorf("%w: %s missing", errMalformedHeader, hotelIDField)
	}
	h.HotelID = hid

	raw, present := data[eventsField]
	if !present || raw == nil {
		return h, nil
	}
	list, ok := raw.([]any)
	if !ok {
		return h, fmt.Errorf("%w: %s is %T, not a list", errMalformedHeader, eventsField, raw)
	}
	h.Events = make([]event, 0, len(list))
	for _, it := range list {
		obj, ok := it.(map[string]any)
		if !ok {
			h.Events = append(h.Events, event{})
			continue
		}
		name, _ := obj["Name"].(string)
		h.Events = append(h.Events, event{Name: name, ReservationID: lookupID(obj, "Value.ReservationId")})
	}
	return h, nil
}

type reservationDetail struct {
	HotelID       string `json:"HotelId"`
	ReservationID string `json:"ReservationId"`
	GuestID       string `json:"GuestId"`
	Status        string `json:"Status"`
	CheckInDate   string `json:"CheckInDate"`
	CheckOutDate  string `json:"CheckOutDate"`
}

type guestDetail struct {
	GuestID string `json:"GuestId"`
	Phone   string `json:"Phone"`
	Name    string `json:"Name"`
	Country string `json:"Country"`
}
