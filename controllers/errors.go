package controllers

// CustomError adalah error dengan pesan yang aman ditampilkan ke client.
type CustomError struct {
	Message string
}

func (e *CustomError) Error() string {
	return e.Message
}

var (
	ErrTableNotFound       = &CustomError{"table not found"}
	ErrUnknownArea         = &CustomError{"unknown area"}
	ErrTablesLocked        = &CustomError{"tables are locked"}
	ErrTableNotInArea      = &CustomError{"table does not belong to this area"}
	ErrReservationNotFound = &CustomError{"reservation not found or already cancelled"}
	ErrInvalidIndex        = &CustomError{"reservation index must be a number"}
)
