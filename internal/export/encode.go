// AngelaMos | 2026
// encode.go

package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/carterperez-dev/roadassist-api/internal/account"
)

// Format selects the export encoding.
type Format string

const (
	FormatCSV    Format = "csv"
	FormatNDJSON Format = "ndjson"
)

func (f Format) IsValid() bool {
	return f == FormatCSV || f == FormatNDJSON
}

func (f Format) ContentType() string {
	if f == FormatCSV {
		return "text/csv; charset=utf-8"
	}
	return "application/x-ndjson"
}

func (f Format) Extension() string {
	return string(f)
}

// Encode streams the account list to w in the requested format. The rows
// reflect exactly what the caller's filtered, sorted view contained.
func Encode(w io.Writer, format Format, accounts []account.Account) error {
	switch format {
	case FormatCSV:
		return encodeCSV(w, accounts)
	case FormatNDJSON:
		return encodeNDJSON(w, accounts)
	}
	return fmt.Errorf("unknown export format %q", format)
}

var csvHeader = []string{
	"id", "type", "name", "email", "phone", "status",
	"created_at", "last_active", "detail",
}

func encodeCSV(w io.Writer, accounts []account.Account) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(csvHeader); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}

	for i := range accounts {
		a := &accounts[i]
		row := []string{
			a.ID,
			string(a.Type),
			a.Name,
			a.Email,
			a.Phone,
			string(a.Status),
			a.CreatedAt.Format("2006-01-02"),
			a.LastActive,
			detailColumn(a),
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}

	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// detailColumn condenses the variant profile into one human-readable cell,
// the way the dashboard's summary column renders it.
func detailColumn(a *account.Account) string {
	switch {
	case a.Customer != nil:
		return fmt.Sprintf("%s membership, %d services",
			a.Customer.MembershipType, a.Customer.TotalServices)
	case a.Technician != nil:
		online := "offline"
		if a.Technician.IsOnline {
			online = "online"
		}
		return fmt.Sprintf("rating %s, %d jobs, %s",
			a.Technician.Rating, a.Technician.CompletedJobs, online)
	case a.Partner != nil:
		return fmt.Sprintf("%s (%s plan, %s users)",
			a.Partner.CompanyName, a.Partner.Plan,
			strconv.Itoa(a.Partner.ActiveUsers))
	case a.Admin != nil:
		return fmt.Sprintf("%s [%s]",
			a.Admin.Role, strings.Join(a.Admin.Permissions, " "))
	}
	return ""
}

func encodeNDJSON(w io.Writer, accounts []account.Account) error {
	enc := json.NewEncoder(w)
	for i := range accounts {
		resp := account.ToAccountResponse(&accounts[i])
		if err := enc.Encode(resp); err != nil {
			return fmt.Errorf("encode ndjson row: %w", err)
		}
	}
	return nil
}
