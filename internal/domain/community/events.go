package community

import "time"

// AlertEvent is the record published for every alert the backend accepts.
type AlertEvent struct {
	Timestamp   time.Time    `json:"timestamp"`
	AlertID     string       `json:"alertId"`
	CommunityID string       `json:"communityId"`
	Action      string       `json:"action"`
	Payload     AlertPayload `json:"payload"`
	Recipients  int          `json:"recipients"`
}

// AlertPayload carries the alert fields published with the event.
type AlertPayload struct {
	UserID      string   `json:"userId"`
	UserName    string   `json:"userName,omitempty"`
	Tipo        string   `json:"tipo"`
	Descripcion string   `json:"descripcion"`
	Direccion   string   `json:"direccion"`
	Lat         *float64 `json:"lat,omitempty"`
	Lon         *float64 `json:"lon,omitempty"`
	MapLink     string   `json:"mapLink"`
}

const ActionAlertRaised = "alert_raised"
