package models

const (
	ReservationReserved  = "reserved"
	ReservationCancelled = "cancelled"
)

// RecordedDateLayout is the layout of Reservation.RecordedDate.
const RecordedDateLayout = "2006-01-02"

// Reservation is an entry of the reservation history. TableID is a plain identifier; the table
// it names may no longer exist.
type Reservation struct {
	TableID             string `json:"tableId"`
	CustomerName        string `json:"customerName"`
	Phone               string `json:"phone"`
	Email               string `json:"email"`
	StartTime           string `json:"startTime"`
	EndTime             string `json:"endTime"`
	Status              string `json:"status"`
	TransferTargetTable string `json:"transferTargetTable,omitempty"`
	ReservationDate     string `json:"reservationDate"`
	RecordedDate        string `json:"recordedDate"`
}
