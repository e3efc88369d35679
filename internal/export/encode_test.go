// AngelaMos | 2026
// encode_test.go

package export

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/carterperez-dev/roadassist-api/internal/account"
)

func exportFixture() []account.Account {
	created := time.Date(2026, 2, 14, 9, 30, 0, 0, time.UTC)
	return []account.Account{
		{
			ID: "customer-1", Type: account.TypeCustomer,
			Name: "Sarah, Mitchell", Email: "sarah.m@email.com",
			Phone: "+1 555-0101", Status: account.StatusActive,
			CreatedAt: created, LastActive: "2 hours ago",
			Customer: &account.CustomerProfile{
				MembershipType: account.MembershipPremium,
				TotalServices:  12,
			},
		},
		{
			ID: "tech-1", Type: account.TypeTechnician,
			Name: "Mike Rodriguez", Email: "mike.r@roadassist.com",
			Status: account.StatusActive, CreatedAt: created,
			LastActive: "Online now",
			Technician: &account.TechnicianProfile{
				Rating: "4.9", CompletedJobs: 310, IsOnline: true,
			},
		},
	}
}

func TestEncodeCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatCSV, exportFixture()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	records, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}

	if len(records) != 3 {
		t.Fatalf("expected header + 2 rows, got %d records", len(records))
	}
	if records[0][0] != "id" || records[0][8] != "detail" {
		t.Errorf("unexpected header %v", records[0])
	}

	// The comma inside the name must survive the round trip.
	if records[1][2] != "Sarah, Mitchell" {
		t.Errorf("name mangled: %q", records[1][2])
	}
	if records[1][8] != "Premium membership, 12 services" {
		t.Errorf("customer detail: %q", records[1][8])
	}
	if records[2][8] != "rating 4.9, 310 jobs, online" {
		t.Errorf("technician detail: %q", records[2][8])
	}
}

func TestEncodeNDJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatNDJSON, exportFixture()); err != nil {
		t.Fatalf("encode: %v", err)
	}

	scanner := bufio.NewScanner(&buf)
	var lines int
	for scanner.Scan() {
		lines++
		var row account.AccountResponse
		if err := json.Unmarshal(scanner.Bytes(), &row); err != nil {
			t.Fatalf("line %d is not valid JSON: %v", lines, err)
		}
		if row.ID == "" {
			t.Errorf("line %d missing id", lines)
		}
	}

	if lines != 2 {
		t.Fatalf("expected 2 lines, got %d", lines)
	}
}

func TestEncode_UnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, Format("pdf"), nil)
	if err == nil || !strings.Contains(err.Error(), "unknown export format") {
		t.Fatalf("expected unknown format error, got %v", err)
	}
}

func TestEncode_EmptyListStillWritesHeader(t *testing.T) {
	var buf bytes.Buffer
	if err := Encode(&buf, FormatCSV, nil); err != nil {
		t.Fatalf("encode: %v", err)
	}
	if !strings.HasPrefix(buf.String(), "id,type,name") {
		t.Fatalf("header missing: %q", buf.String())
	}
}
