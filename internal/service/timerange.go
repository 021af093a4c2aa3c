package service

import (
	"fmt"
	"time"
)

const localTimeLayout = "2006-01-02 15:04"

// The APIs log in Bogotá wall-clock time. The zone has no DST, so a fixed
// offset avoids depending on the host's tzdata.
var bogota = time.FixedZone("America/Bogota", -5*60*60)

// ConvertTimeRange turns two local "YYYY-MM-DD HH:MM" bounds into the UTC
// epoch seconds the backend expects. An inverted range is not rejected; it
// simply matches zero rows.
func ConvertTimeRange(startLocal, endLocal string) (start, end int64, err error) {
	st, err := time.ParseInLocation(localTimeLayout, startLocal, bogota)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fechaInicio/horaInicio %q: %v", ErrInvalidTimeRange, startLocal, err)
	}
	et, err := time.ParseInLocation(localTimeLayout, endLocal, bogota)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: fechaFin/horaFin %q: %v", ErrInvalidTimeRange, endLocal, err)
	}
	return st.Unix(), et.Unix(), nil
}
