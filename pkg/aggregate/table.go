// pkg/aggregate/table.go
package aggregate

import (
	"github.com/David-Botos/contact-chronicle/pkg/converter"
	"github.com/David-Botos/contact-chronicle/pkg/model"
)

// Row is one line of the connections table. Every column is filled;
// missing optional values read "Not specified".
type Row struct {
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	URL          string `json:"url"`
	EmailAddress string `json:"email_address"`
	Company      string `json:"company"`
	Position     string `json:"position"`
	ConnectedOn  string `json:"connected_on"`
	Location     string `json:"location"`
}

// TableRow renders a connection for display
func TableRow(c model.Connection) Row {
	connected := Placeholder(c.ConnectedOn)
	if connected != NotSpecified {
		connected = converter.FormatDisplayDate(connected)
	}
	return Row{
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		URL:          Placeholder(c.URL),
		EmailAddress: Placeholder(c.EmailAddress),
		Company:      Placeholder(c.Company),
		Position:     Placeholder(c.Position),
		ConnectedOn:  connected,
		Location:     Placeholder(c.Location),
	}
}

// TableRows renders records in order
func TableRows(records []model.Connection) []Row {
	rows := make([]Row, 0, len(records))
	for _, c := range records {
		rows = append(rows, TableRow(c))
	}
	return rows
}
