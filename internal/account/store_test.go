// AngelaMos | 2026
// store_test.go

package account

import (
	"testing"
)

func TestStore_SnapshotIsDeepCopy(t *testing.T) {
	store := NewStore(sampleDirectory())

	snap := store.Snapshot()
	snap[0].Name = "mutated"
	snap[0].Customer.MembershipType = "mutated"

	orig, _ := store.Get("customer-1")
	if orig.Name == "mutated" || orig.Customer.MembershipType == "mutated" {
		t.Fatal("snapshot mutation leaked into the store")
	}
}

func TestStore_InsertionOrderPreserved(t *testing.T) {
	dir := sampleDirectory()
	store := NewStore(dir)

	snap := store.Snapshot()
	if len(snap) != len(dir) {
		t.Fatalf("expected %d records, got %d", len(dir), len(snap))
	}
	for i := range dir {
		if snap[i].ID != dir[i].ID {
			t.Fatalf("order broken at %d: %s vs %s", i, snap[i].ID, dir[i].ID)
		}
	}
}

func TestStore_AddRejectsDuplicate(t *testing.T) {
	store := NewStore(sampleDirectory())

	dup := Account{ID: "customer-1", Type: TypeCustomer}
	if store.Add(dup) {
		t.Fatal("duplicate id should be rejected")
	}
}

func TestStore_RemoveReindexes(t *testing.T) {
	store := NewStore(sampleDirectory())

	if !store.Remove("customer-2") {
		t.Fatal("remove failed")
	}
	if store.Has("customer-2") {
		t.Fatal("removed record still present")
	}

	// Records after the removal point must still resolve.
	if _, ok := store.Get("partner-2"); !ok {
		t.Fatal("index broken after removal")
	}
	if store.Len() != len(sampleDirectory())-1 {
		t.Fatalf("unexpected length %d", store.Len())
	}
}

func TestStore_ReplaceUnknownID(t *testing.T) {
	store := NewStore(nil)
	if store.Replace(Account{ID: "ghost-1"}) {
		t.Fatal("replace of unknown id should report false")
	}
}
